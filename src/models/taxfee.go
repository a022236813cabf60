package models

import (
	"hrs/src/types"
)

// TaxFeeRule is read-only during booking. Scope picks the multiplier applied
// to the computed amount: 1 for per_stay, the night count for per_night, the
// party size for per_person. Rules already folded into nightly prices carry
// IncludedInPrice and are reported but not added to the total.
type TaxFeeRule struct {
	ID              uint             `gorm:"primarykey" json:"id"`
	HotelID         uint             `json:"hotel_id"`
	Name            string           `json:"name"`
	Kind            types.RuleKind   `json:"kind"`
	Type            types.AmountType `json:"type"`
	Value           int64            `json:"value"`
	Scope           types.RuleScope  `gorm:"default:'per_stay'" json:"scope"`
	IncludedInPrice bool             `gorm:"default:false" json:"included_in_price"`
	Active          bool             `gorm:"default:true" json:"active"`

	types.Timestamps
}
