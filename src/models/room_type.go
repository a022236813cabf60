package models

import (
	"hrs/src/types"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type RoomType struct {
	ID           uint    `gorm:"primarykey" json:"id"`
	HotelID      uint    `json:"hotel_id,omitempty"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug,omitempty"`
	Description  *string `json:"description,omitempty"`
	MaxOccupancy int     `gorm:"default:2" json:"max_occupancy"`
	NumBeds      int     `gorm:"default:1" json:"num_beds,omitempty"`

	Hotel     Hotel      `json:"-"`
	Amenities []*Amenity `gorm:"many2many:room_type_amenities;" json:"amenities,omitempty"`
	AddOns    []AddOn    `json:"add_ons,omitempty"`

	types.Timestamps
}

func (rt *RoomType) BeforeCreate(tx *gorm.DB) error {
	if rt.Slug == "" {
		rt.Slug = slug.Make(rt.Name)
	}
	return nil
}

// AddOn is a bookable extra attached to a room type. Quantity is bounded per
// stay by MinQty/MaxQty.
type AddOn struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	RoomTypeID uint   `json:"room_type_id,omitempty"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	MinQty     int    `gorm:"default:1" json:"min_qty"`
	MaxQty     int    `gorm:"default:10" json:"max_qty"`
	Active     bool   `gorm:"default:true" json:"active"`

	types.Timestamps
}
