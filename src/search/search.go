// Package search answers "which room types can host this stay" by checking
// full night-by-night coverage against the inventory and rate ledgers.
package search

import (
	"context"
	"errors"
	"hrs/src/models"
	"hrs/src/store"
	"time"
)

var (
	ErrInvalidDateRange = errors.New("check-in date must be before check-out date")

	// ErrNotAvailable means at least one night in the range lacks an open
	// inventory or rate row. A normal outcome for search, a retryable
	// conflict for confirmation.
	ErrNotAvailable = errors.New("room type is not available for the requested stay")
)

type Params struct {
	HotelID       uint
	RoomTypeID    uint
	RatePlanID    *uint
	CheckIn       time.Time
	CheckOut      time.Time
	Guests        int
	MinPriceCents int64
	MaxPriceCents int64
	Amenities     []string
}

type NightPrice struct {
	Date       time.Time `json:"date"`
	PriceCents int64     `json:"price_cents"`
}

type RoomTypeResult struct {
	RoomType       models.RoomType `json:"room_type"`
	AvailableCount int             `json:"available_count"`
	Nights         []NightPrice    `json:"nights"`
	TotalBaseCents int64           `json:"total_base_cents"`
	CurrencyCode   string          `json:"currency_code"`
}

// StayEvaluation is the per-night view of one candidate; search and the
// confirmation-time re-check share it.
type StayEvaluation struct {
	Inventory      []models.RoomInventory
	Rates          []models.RoomRate
	AvailableCount int
}

type Service struct {
	inventory store.InventoryStore
	catalog   store.CatalogRepo
}

func NewService(inventory store.InventoryStore, catalog store.CatalogRepo) *Service {
	return &Service{inventory: inventory, catalog: catalog}
}

// Search returns every eligible room type for the stay. An empty slice is a
// normal outcome. No ordering is guaranteed beyond "eligible candidates
// only"; callers sort as they see fit.
func (s *Service) Search(ctx context.Context, p Params) ([]RoomTypeResult, error) {
	if !p.CheckIn.Before(p.CheckOut) {
		return nil, ErrInvalidDateRange
	}

	candidates, err := s.catalog.FindRoomTypes(ctx, p.HotelID, p.RoomTypeID, p.Guests)
	if err != nil {
		return nil, err
	}

	results := []RoomTypeResult{}
	for _, rt := range candidates {
		if !hasAllAmenities(&rt, p.Amenities) {
			continue
		}
		eval, err := s.EvaluateStay(ctx, rt.ID, p.RatePlanID, p.CheckIn, p.CheckOut)
		if err != nil {
			if errors.Is(err, ErrNotAvailable) {
				continue
			}
			return nil, err
		}
		if !withinPriceBand(eval.Rates, p.MinPriceCents, p.MaxPriceCents) {
			continue
		}

		result := RoomTypeResult{
			RoomType:       rt,
			AvailableCount: eval.AvailableCount,
			CurrencyCode:   "USD",
		}
		for _, rate := range eval.Rates {
			result.Nights = append(result.Nights, NightPrice{Date: rate.Date, PriceCents: rate.PriceCents})
			result.TotalBaseCents += rate.PriceCents
			if rate.CurrencyCode != "" {
				result.CurrencyCode = rate.CurrencyCode
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// EvaluateStay enforces full coverage: exactly one open inventory row and
// one applicable open rate row for every night of [checkIn, checkOut). A
// single missing or closed night disqualifies the whole stay.
func (s *Service) EvaluateStay(ctx context.Context, roomTypeID uint, ratePlanID *uint, checkIn time.Time, checkOut time.Time) (*StayEvaluation, error) {
	if !checkIn.Before(checkOut) {
		return nil, ErrInvalidDateRange
	}
	nights := int(checkOut.Sub(checkIn).Hours() / 24)

	inventory, err := s.inventory.GetInventory(ctx, roomTypeID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	rates, err := s.inventory.GetRates(ctx, roomTypeID, checkIn, checkOut, ratePlanID)
	if err != nil {
		return nil, err
	}

	invByDay := map[string]*models.RoomInventory{}
	invCount := map[string]int{}
	for i := range inventory {
		key := dayKey(inventory[i].Date)
		invByDay[key] = &inventory[i]
		invCount[key]++
	}
	rateByDay := map[string]*models.RoomRate{}
	rateCount := map[string]int{}
	for i := range rates {
		key := dayKey(rates[i].Date)
		rateByDay[key] = &rates[i]
		rateCount[key]++
	}

	eval := &StayEvaluation{Inventory: inventory, Rates: rates}
	minCapacity := -1
	for d := checkIn; d.Before(checkOut); d = d.AddDate(0, 0, 1) {
		key := dayKey(d)
		if invCount[key] != 1 || rateCount[key] != 1 {
			return nil, ErrNotAvailable
		}
		inv := invByDay[key]
		rate := rateByDay[key]
		if inv.Closed || rate.Closed {
			return nil, ErrNotAvailable
		}
		if rate.MinStay != nil && nights < *rate.MinStay {
			return nil, ErrNotAvailable
		}
		if rate.MaxStay != nil && *rate.MaxStay > 0 && nights > *rate.MaxStay {
			return nil, ErrNotAvailable
		}
		capacity := inv.EffectiveCapacity()
		if minCapacity < 0 || capacity < minCapacity {
			minCapacity = capacity
		}
	}
	if minCapacity <= 0 {
		return nil, ErrNotAvailable
	}
	eval.AvailableCount = minCapacity
	return eval, nil
}

// hasAllAmenities requires the room type to carry every requested amenity
// code. Overlap is not enough.
func hasAllAmenities(rt *models.RoomType, required []string) bool {
	if len(required) == 0 {
		return true
	}
	have := map[string]bool{}
	for _, amenity := range rt.Amenities {
		have[amenity.Code] = true
	}
	for _, code := range required {
		if !have[code] {
			return false
		}
	}
	return true
}

// withinPriceBand checks every per-night price against the band, not the
// stay aggregate.
func withinPriceBand(rates []models.RoomRate, minCents int64, maxCents int64) bool {
	for _, rate := range rates {
		if minCents > 0 && rate.PriceCents < minCents {
			return false
		}
		if maxCents > 0 && rate.PriceCents > maxCents {
			return false
		}
	}
	return true
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
