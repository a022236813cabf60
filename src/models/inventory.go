package models

import (
	"hrs/src/types"
	"time"
)

// RoomInventory is the per (room type, night) stock ledger. TotalRooms is the
// provisioned ceiling; AvailableRooms never drops below zero and never rises
// above TotalRooms. Oversold nights consume the overbook headroom instead,
// tracked in Overbooked.
type RoomInventory struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	RoomTypeID     uint      `gorm:"uniqueIndex:idx_inventory_room_night" json:"room_type_id"`
	Date           time.Time `gorm:"type:date;uniqueIndex:idx_inventory_room_night" json:"date"`
	TotalRooms     int       `json:"total_rooms"`
	AvailableRooms int       `json:"available_rooms"`
	OverbookLimit  int       `json:"overbook_limit"`
	Overbooked     int       `json:"-"`
	Closed         bool      `gorm:"default:false" json:"closed"`

	RoomType RoomType `json:"-"`

	types.Timestamps
}

// EffectiveCapacity is how many more rooms can still be sold for this night.
func (ri *RoomInventory) EffectiveCapacity() int {
	if ri.Closed {
		return 0
	}
	return ri.AvailableRooms + ri.OverbookLimit - ri.Overbooked
}
