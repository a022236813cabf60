package models

import (
	"hrs/src/types"
	"time"
)

// PromoCode usage is monotonic: UsageCount moves up on successful
// confirmation and is never given back on cancellation. Whether a cancelled
// booking should free its usage slot is an open product decision; the
// recorded behavior is increment-only.
type PromoCode struct {
	ID               uint             `gorm:"primarykey" json:"id"`
	Code             string           `gorm:"uniqueIndex" json:"code"`
	HotelID          uint             `json:"hotel_id"`
	Type             types.AmountType `json:"type"`
	Value            int64            `json:"value"`
	StartDate        *time.Time       `gorm:"type:date" json:"start_date,omitempty"`
	EndDate          *time.Time       `gorm:"type:date" json:"end_date,omitempty"`
	MinNights        *int             `json:"min_nights,omitempty"`
	MinAmountCents   *int64           `json:"min_amount_cents,omitempty"`
	MaxDiscountCents *int64           `json:"max_discount_cents,omitempty"`
	UsageLimit       *int             `json:"usage_limit,omitempty"`
	UsageCount       int              `json:"usage_count"`
	Active           bool             `gorm:"default:true" json:"active"`

	types.Timestamps
}
