// Package pricing computes a stay's cost breakdown. Everything here is pure:
// integer-cent arithmetic over rows the caller already fetched, no storage
// access and no mutation.
package pricing

import (
	"fmt"
	"hrs/src/models"
	"hrs/src/types"
	"time"
)

type AddOnSelection struct {
	AddOn    models.AddOn
	Quantity int
}

type QuoteInput struct {
	CheckIn   time.Time
	CheckOut  time.Time
	Rates     []models.RoomRate
	AddOns    []AddOnSelection
	Promo     *models.PromoCode
	Rules     []models.TaxFeeRule
	PartySize int
	// AmountPaidCents is 0 at draft time; payment recording may re-quote
	// with a non-zero value to refresh the balance.
	AmountPaidCents int64
	Now             time.Time
}

type NightCharge struct {
	Date       time.Time `json:"date"`
	PriceCents int64     `json:"price_cents"`
	TaxCents   int64     `json:"tax_cents"`
	FeeCents   int64     `json:"fee_cents"`
}

type AddOnCharge struct {
	AddOnID         uint   `json:"add_on_id"`
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	UnitPriceCents  int64  `json:"unit_price_cents"`
	TotalPriceCents int64  `json:"total_price_cents"`
}

type AppliedRule struct {
	Name            string           `json:"name"`
	Kind            types.RuleKind   `json:"kind"`
	AmountCents     int64            `json:"amount_cents"`
	IncludedInPrice bool             `json:"included_in_price"`
	Scope           types.RuleScope  `json:"scope"`
	Type            types.AmountType `json:"type"`
}

type Breakdown struct {
	Nights []NightCharge `json:"nights"`
	AddOns []AddOnCharge `json:"add_ons,omitempty"`
	Rules  []AppliedRule `json:"rules,omitempty"`

	BaseCents       int64  `json:"base_cents"`
	AddOnsCents     int64  `json:"add_ons_cents"`
	DiscountCents   int64  `json:"discount_cents"`
	TaxCents        int64  `json:"tax_cents"`
	FeeCents        int64  `json:"fee_cents"`
	TotalCents      int64  `json:"total_cents"`
	BalanceDueCents int64  `json:"balance_due_cents"`
	CurrencyCode    string `json:"currency_code"`
}

// percentOf computes pct% of base in integer cents, rounding half up.
func percentOf(pct int64, base int64) int64 {
	return (pct*base + 50) / 100
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// Quote runs the full pipeline: nightly base, add-ons, promo discount,
// tax/fee rules, total. Any eligibility failure comes back as a typed error,
// never as a silent zero line.
func Quote(in QuoteInput) (*Breakdown, error) {
	nights := int(in.CheckOut.Sub(in.CheckIn).Hours() / 24)
	if nights < 1 {
		return nil, fmt.Errorf("check-out %s is not after check-in %s", in.CheckOut.Format("2006-01-02"), in.CheckIn.Format("2006-01-02"))
	}

	bd := &Breakdown{CurrencyCode: "USD"}

	// Base: every night inside [checkIn, checkOut) must have a rate row.
	for d := in.CheckIn; d.Before(in.CheckOut); d = d.AddDate(0, 0, 1) {
		var rate *models.RoomRate
		for i := range in.Rates {
			if sameDay(in.Rates[i].Date, d) {
				rate = &in.Rates[i]
				break
			}
		}
		if rate == nil {
			return nil, fmt.Errorf("%w: %s", ErrRateMissing, d.Format("2006-01-02"))
		}
		if rate.CurrencyCode != "" {
			bd.CurrencyCode = rate.CurrencyCode
		}
		bd.Nights = append(bd.Nights, NightCharge{Date: rate.Date, PriceCents: rate.PriceCents})
		bd.BaseCents += rate.PriceCents
	}

	for _, sel := range in.AddOns {
		if !sel.AddOn.Active {
			return nil, fmt.Errorf("%w: %s", ErrAddOnInactive, sel.AddOn.Name)
		}
		if sel.Quantity < sel.AddOn.MinQty || sel.Quantity > sel.AddOn.MaxQty {
			return nil, fmt.Errorf("%w: %s wants %d, allowed %d-%d", ErrAddOnQuantity, sel.AddOn.Name, sel.Quantity, sel.AddOn.MinQty, sel.AddOn.MaxQty)
		}
		total := sel.AddOn.PriceCents * int64(sel.Quantity)
		bd.AddOns = append(bd.AddOns, AddOnCharge{
			AddOnID:         sel.AddOn.ID,
			Name:            sel.AddOn.Name,
			Quantity:        sel.Quantity,
			UnitPriceCents:  sel.AddOn.PriceCents,
			TotalPriceCents: total,
		})
		bd.AddOnsCents += total
	}

	discountable := bd.BaseCents + bd.AddOnsCents

	if in.Promo != nil {
		discount, err := promoDiscount(in.Promo, nights, discountable, in.Now)
		if err != nil {
			return nil, err
		}
		bd.DiscountCents = discount
	}

	for _, rule := range in.Rules {
		if !rule.Active {
			continue
		}
		var amount int64
		switch rule.Type {
		case types.AMOUNT_PERCENT:
			amount = percentOf(rule.Value, discountable)
		default:
			amount = rule.Value
		}
		switch rule.Scope {
		case types.SCOPE_PER_NIGHT:
			amount *= int64(nights)
		case types.SCOPE_PER_PERSON:
			amount *= int64(in.PartySize)
		}
		bd.Rules = append(bd.Rules, AppliedRule{
			Name:            rule.Name,
			Kind:            rule.Kind,
			AmountCents:     amount,
			IncludedInPrice: rule.IncludedInPrice,
			Scope:           rule.Scope,
			Type:            rule.Type,
		})
		if rule.IncludedInPrice {
			// Already folded into nightly prices, reported only.
			continue
		}
		if rule.Kind == types.RULE_FEE {
			bd.FeeCents += amount
		} else {
			bd.TaxCents += amount
		}
	}

	spreadOverNights(bd)

	bd.TotalCents = bd.BaseCents + bd.AddOnsCents + bd.TaxCents + bd.FeeCents - bd.DiscountCents
	bd.BalanceDueCents = bd.TotalCents - in.AmountPaidCents

	return bd, nil
}

// promoDiscount validates eligibility and returns the clamped discount.
func promoDiscount(promo *models.PromoCode, nights int, discountable int64, now time.Time) (int64, error) {
	if !promo.Active {
		return 0, fmt.Errorf("%w: %s", ErrPromoInactive, promo.Code)
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if promo.StartDate != nil && day.Before(*promo.StartDate) {
		return 0, fmt.Errorf("%w: %s", ErrPromoNotStarted, promo.Code)
	}
	if promo.EndDate != nil && day.After(*promo.EndDate) {
		return 0, fmt.Errorf("%w: %s", ErrPromoExpired, promo.Code)
	}
	if promo.MinNights != nil && nights < *promo.MinNights {
		return 0, fmt.Errorf("%w: %s needs %d nights", ErrPromoMinNights, promo.Code, *promo.MinNights)
	}
	if promo.MinAmountCents != nil && discountable < *promo.MinAmountCents {
		return 0, fmt.Errorf("%w: %s", ErrPromoMinAmount, promo.Code)
	}
	if promo.UsageLimit != nil && promo.UsageCount >= *promo.UsageLimit {
		return 0, fmt.Errorf("%w: %s", ErrPromoUsageLimit, promo.Code)
	}

	var discount int64
	switch promo.Type {
	case types.AMOUNT_PERCENT:
		discount = percentOf(promo.Value, discountable)
	default:
		discount = promo.Value
	}
	if promo.MaxDiscountCents != nil && discount > *promo.MaxDiscountCents {
		discount = *promo.MaxDiscountCents
	}
	if discount > discountable {
		discount = discountable
	}
	return discount, nil
}

// spreadOverNights distributes the additive tax and fee totals across the
// night lines so per-night snapshots sum back to the stay totals. The
// remainder of the integer division lands on the first night.
func spreadOverNights(bd *Breakdown) {
	n := int64(len(bd.Nights))
	if n == 0 {
		return
	}
	taxShare, taxRem := bd.TaxCents/n, bd.TaxCents%n
	feeShare, feeRem := bd.FeeCents/n, bd.FeeCents%n
	for i := range bd.Nights {
		bd.Nights[i].TaxCents = taxShare
		bd.Nights[i].FeeCents = feeShare
	}
	bd.Nights[0].TaxCents += taxRem
	bd.Nights[0].FeeCents += feeRem
}
