package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"hrs/src/types"
	"time"
)

type AddOnSelections []types.DraftAddOnSelection

func (a AddOnSelections) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *AddOnSelections) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

// Draft is a priced, not-yet-binding reservation intent. It claims no
// inventory; the price snapshot is informational and gets recomputed at
// confirmation time. One draft per session key, updated in place.
type Draft struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	SessionKey string          `gorm:"uniqueIndex" json:"session_key"`
	RoomTypeID uint            `json:"room_type_id"`
	RatePlanID *uint           `json:"rate_plan_id,omitempty"`
	CheckIn    time.Time       `gorm:"type:date" json:"check_in"`
	CheckOut   time.Time       `gorm:"type:date" json:"check_out"`
	Adults     int             `json:"adults"`
	Children   int             `json:"children"`
	AddOns     AddOnSelections `gorm:"type:jsonb" json:"add_ons,omitempty"`
	PromoCode  *string         `json:"promo_code,omitempty"`
	Breakdown  *types.JSONB    `gorm:"type:jsonb" json:"breakdown,omitempty"`
	Status     string          `gorm:"default:'draft'" json:"status"`
	ExpiresAt  time.Time       `json:"expires_at"`

	RoomType RoomType `json:"-"`

	types.Timestamps
}

func (d *Draft) Expired(now time.Time) bool {
	return now.After(d.ExpiresAt)
}
