package models

import (
	"hrs/src/lib"
	"hrs/src/types"
	"log"
	"time"
)

type Booking struct {
	ID            uint                `gorm:"primarykey" json:"id"`
	ReferenceCode string              `gorm:"uniqueIndex" json:"reference_code"`
	HotelID       uint                `json:"hotel_id"`
	RoomTypeID    uint                `json:"room_type_id"`
	RatePlanID    *uint               `json:"rate_plan_id,omitempty"`
	GuestRef      *uint               `json:"guest_ref,omitempty"`
	GuestName     string              `json:"guest_name"`
	GuestEmail    string              `json:"guest_email"`
	GuestPhone    string              `json:"guest_phone,omitempty"`
	CheckIn       time.Time           `gorm:"type:date" json:"check_in"`
	CheckOut      time.Time           `gorm:"type:date" json:"check_out"`
	Adults        int                 `json:"adults"`
	Children      int                 `json:"children"`
	Status        types.BookingStatus `gorm:"default:'reserved'" json:"status"`

	BaseCents        int64   `json:"base_cents"`
	AddOnsCents      int64   `json:"add_ons_cents"`
	DiscountCents    int64   `json:"discount_cents"`
	TaxCents         int64   `json:"tax_cents"`
	FeeCents         int64   `json:"fee_cents"`
	TotalAmountCents int64   `json:"total_amount_cents"`
	BalanceDueCents  int64   `json:"balance_due_cents"`
	CurrencyCode     string  `gorm:"default:'USD'" json:"currency_code"`
	PromoCode        *string `json:"promo_code,omitempty"`
	PaymentIntentID  *string `json:"-"`

	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`

	Hotel    Hotel          `json:"-"`
	RoomType RoomType       `json:"room_type,omitempty"`
	Items    []BookingItem  `json:"items,omitempty"`
	AddOns   []BookingAddOn `json:"add_ons,omitempty"`

	types.Timestamps
}

func (b *Booking) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}

// BookingItem is the per-night price snapshot taken at confirmation time.
type BookingItem struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	BookingID  uint      `gorm:"index" json:"booking_id,omitempty"`
	Date       time.Time `gorm:"type:date" json:"date"`
	PriceCents int64     `json:"price_cents"`
	TaxCents   int64     `json:"tax_cents"`
	FeeCents   int64     `json:"fee_cents"`

	types.Timestamps
}

type BookingAddOn struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	BookingID       uint   `gorm:"index" json:"booking_id,omitempty"`
	AddOnID         uint   `json:"add_on_id"`
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	UnitPriceCents  int64  `json:"unit_price_cents"`
	TotalPriceCents int64  `json:"total_price_cents"`

	types.Timestamps
}

func BookingConfirmedProducer(id uint, payload map[string]any) error {
	err := lib.KafkaProduceMessage("booking_confirmed_producer", "booking-confirmations", payload)
	if err != nil {
		log.Printf("Error on producing message: %s\n", err.Error())
		return err
	}
	return nil
}

func BookingCancelledProducer(id uint, payload map[string]any) error {
	err := lib.KafkaProduceMessage("booking_cancelled_producer", "booking-cancellations", payload)
	if err != nil {
		log.Printf("Error on producing message: %s\n", err.Error())
		return err
	}
	return nil
}
