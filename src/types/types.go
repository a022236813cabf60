package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Status string

type BookingStatus string

const (
	BOOKING_DRAFT       BookingStatus = "draft"
	BOOKING_RESERVED    BookingStatus = "reserved"
	BOOKING_CONFIRMED   BookingStatus = "confirmed"
	BOOKING_CHECKED_IN  BookingStatus = "checked_in"
	BOOKING_CHECKED_OUT BookingStatus = "checked_out"
	BOOKING_CANCELLED   BookingStatus = "cancelled"
	BOOKING_NO_SHOW     BookingStatus = "no_show"
)

// AmountType covers both promo discounts and tax/fee rules: a value is either
// a percentage of the taxable base or a fixed amount of cents.
type AmountType string

const (
	AMOUNT_PERCENT AmountType = "percent"
	AMOUNT_FIXED   AmountType = "fixed"
)

type RuleKind string

const (
	RULE_TAX RuleKind = "tax"
	RULE_FEE RuleKind = "fee"
)

type RuleScope string

const (
	SCOPE_PER_STAY   RuleScope = "per_stay"
	SCOPE_PER_NIGHT  RuleScope = "per_night"
	SCOPE_PER_PERSON RuleScope = "per_person"
)

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type AvailabilityQuery struct {
	HotelID    uint     `form:"hotel"`
	RoomTypeID uint     `form:"room_type"`
	CheckIn    string   `form:"check_in" binding:"required,staydate"`
	CheckOut   string   `form:"check_out" binding:"required,staydate,afterdate=CheckIn"`
	Guests     int      `form:"guests"`
	MinPrice   int64    `form:"min_price"`
	MaxPrice   int64    `form:"max_price"`
	Amenities  []string `form:"amenities"`
}

type DraftAddOnSelection struct {
	AddOnID  uint `json:"add_on_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1"`
}

type CreateDraftRequestBody struct {
	RoomTypeID uint                  `json:"room_type_id" binding:"required"`
	RatePlanID *uint                 `json:"rate_plan_id,omitempty"`
	CheckIn    string                `json:"check_in" binding:"required,staydate"`
	CheckOut   string                `json:"check_out" binding:"required,staydate,afterdate=CheckIn"`
	Adults     int                   `json:"adults" binding:"required,min=1"`
	Children   int                   `json:"children,omitempty" binding:"omitempty,min=0"`
	AddOns     []DraftAddOnSelection `json:"add_ons,omitempty" binding:"omitempty,dive"`
	PromoCode  *string               `json:"promo_code,omitempty"`
}

type GuestInfo struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone,omitempty"`
}

type ConfirmBookingRequestBody struct {
	// Either a previously priced draft is referenced by its session key,
	// or the stay is supplied inline.
	DraftKey *string                 `json:"draft_key,omitempty"`
	Stay     *CreateDraftRequestBody `json:"stay,omitempty" binding:"omitempty"`

	Guest         GuestInfo `json:"guest" binding:"required"`
	GuestRef      *uint     `json:"guest_ref,omitempty"`
	PaymentIntent *string   `json:"payment_intent,omitempty"`
}

type CancelBookingRequestBody struct {
	Reason string `json:"reason,omitempty"`
}
