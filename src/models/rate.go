package models

import (
	"hrs/src/types"
	"time"
)

// RoomRate is the nightly price for a (room type, night), optionally varying
// by rate plan. Once a confirmed booking references a night, the price lives
// on in the BookingItem snapshot; rate rows may change freely afterwards.
type RoomRate struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	RoomTypeID   uint      `gorm:"index:idx_rate_room_night" json:"room_type_id"`
	Date         time.Time `gorm:"type:date;index:idx_rate_room_night" json:"date"`
	RatePlanID   *uint     `json:"rate_plan_id,omitempty"`
	PriceCents   int64     `json:"price_cents"`
	CurrencyCode string    `gorm:"default:'USD'" json:"currency_code"`
	MinStay      *int      `json:"min_stay,omitempty"`
	MaxStay      *int      `json:"max_stay,omitempty"`
	Closed       bool      `gorm:"default:false" json:"closed"`

	RoomType RoomType `json:"-"`

	types.Timestamps
}
