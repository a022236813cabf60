package models

import (
	"hrs/src/types"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type Hotel struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	Name        string  `json:"name"`
	Slug        string  `gorm:"uniqueIndex" json:"slug,omitempty"`
	About       *string `json:"about,omitempty"`
	City        string  `json:"city,omitempty"`
	CountryCode string  `json:"country_code,omitempty"`
	Timezone    string  `gorm:"default:'UTC'" json:"timezone,omitempty"`

	RoomTypes []RoomType `json:"room_types,omitempty"`

	types.Timestamps
}

func (h *Hotel) BeforeCreate(tx *gorm.DB) error {
	if h.Slug == "" {
		h.Slug = slug.Make(h.Name)
	}
	return nil
}

type Amenity struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Code string `gorm:"uniqueIndex" json:"code"`
	Name string `json:"name,omitempty"`

	types.Timestamps
}
