package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hrs/src/config"
	"hrs/src/models"
	"hrs/src/pricing"
	"hrs/src/search"
	"hrs/src/store"
	"hrs/src/types"
	"time"

	"gorm.io/gorm"
)

// DraftManager prices reservation intents without claiming inventory. One
// draft per session key; repeated calls update in place.
type DraftManager struct {
	drafts  store.DraftRepo
	promos  store.PromoRepo
	catalog store.CatalogRepo
	search  *search.Service
	ttl     time.Duration
}

func NewDraftManager(drafts store.DraftRepo, promos store.PromoRepo, catalog store.CatalogRepo, searchSvc *search.Service) *DraftManager {
	return &DraftManager{
		drafts:  drafts,
		promos:  promos,
		catalog: catalog,
		search:  searchSvc,
		ttl:     config.DraftTTL(),
	}
}

func parseStayDates(checkIn string, checkOut string) (time.Time, time.Time, error) {
	in, err := time.Parse(config.DATE_PARSE_FORMAT, checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: bad check-in date %q", ErrValidation, checkIn)
	}
	out, err := time.Parse(config.DATE_PARSE_FORMAT, checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: bad check-out date %q", ErrValidation, checkOut)
	}
	if !in.Before(out) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrValidation, search.ErrInvalidDateRange)
	}
	return in, out, nil
}

// priceStay runs availability + pricing for a stay request and returns the
// room type alongside the breakdown. Shared by draft creation and the
// confirmation-time re-quote.
func (m *DraftManager) priceStay(ctx context.Context, req *types.CreateDraftRequestBody, now time.Time) (*models.RoomType, *pricing.Breakdown, error) {
	checkIn, checkOut, err := parseStayDates(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, nil, err
	}

	roomType, err := m.catalog.GetRoomType(ctx, req.RoomTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: unknown room type %d", ErrValidation, req.RoomTypeID)
		}
		return nil, nil, err
	}

	eval, err := m.search.EvaluateStay(ctx, req.RoomTypeID, req.RatePlanID, checkIn, checkOut)
	if err != nil {
		if errors.Is(err, search.ErrNotAvailable) {
			return nil, nil, ErrInsufficientInventory
		}
		return nil, nil, err
	}

	selections, err := resolveAddOns(ctx, m.catalog, req)
	if err != nil {
		return nil, nil, err
	}

	var promo *models.PromoCode
	if req.PromoCode != nil && *req.PromoCode != "" {
		promo, err = m.promos.GetByCode(ctx, *req.PromoCode, roomType.HotelID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, fmt.Errorf("%w: %s", ErrInvalidPromoCode, *req.PromoCode)
			}
			return nil, nil, err
		}
	}

	rules, err := m.catalog.GetTaxFeeRules(ctx, roomType.HotelID)
	if err != nil {
		return nil, nil, err
	}

	breakdown, err := pricing.Quote(pricing.QuoteInput{
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Rates:     eval.Rates,
		AddOns:    selections,
		Promo:     promo,
		Rules:     rules,
		PartySize: req.Adults + req.Children,
		Now:       now,
	})
	if err != nil {
		return nil, nil, err
	}
	return roomType, breakdown, nil
}

func resolveAddOns(ctx context.Context, catalog store.CatalogRepo, req *types.CreateDraftRequestBody) ([]pricing.AddOnSelection, error) {
	if len(req.AddOns) == 0 {
		return nil, nil
	}
	ids := make([]uint, 0, len(req.AddOns))
	for _, sel := range req.AddOns {
		ids = append(ids, sel.AddOnID)
	}
	addOns, err := catalog.GetAddOns(ctx, req.RoomTypeID, ids)
	if err != nil {
		return nil, err
	}
	byID := map[uint]models.AddOn{}
	for _, addOn := range addOns {
		byID[addOn.ID] = addOn
	}
	selections := make([]pricing.AddOnSelection, 0, len(req.AddOns))
	for _, sel := range req.AddOns {
		addOn, ok := byID[sel.AddOnID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown add-on %d for room type %d", ErrValidation, sel.AddOnID, req.RoomTypeID)
		}
		selections = append(selections, pricing.AddOnSelection{AddOn: addOn, Quantity: sel.Quantity})
	}
	return selections, nil
}

// CreateOrUpdate re-runs availability and pricing synchronously and stores
// the snapshot. No inventory is touched.
func (m *DraftManager) CreateOrUpdate(ctx context.Context, sessionKey string, req *types.CreateDraftRequestBody) (*models.Draft, error) {
	now := time.Now()
	_, breakdown, err := m.priceStay(ctx, req, now)
	if err != nil {
		return nil, err
	}

	checkIn, checkOut, err := parseStayDates(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	snapshot, err := breakdownJSONB(breakdown)
	if err != nil {
		return nil, err
	}

	draft := &models.Draft{
		SessionKey: sessionKey,
		RoomTypeID: req.RoomTypeID,
		RatePlanID: req.RatePlanID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Adults:     req.Adults,
		Children:   req.Children,
		AddOns:     models.AddOnSelections(req.AddOns),
		PromoCode:  req.PromoCode,
		Breakdown:  snapshot,
		Status:     string(types.BOOKING_DRAFT),
		ExpiresAt:  now.Add(m.ttl),
	}
	if err := m.drafts.Upsert(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Get returns an unexpired draft; expired drafts are inert.
func (m *DraftManager) Get(ctx context.Context, sessionKey string) (*models.Draft, error) {
	draft, err := m.drafts.GetByKey(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if draft.Expired(time.Now()) {
		return nil, ErrDraftExpired
	}
	return draft, nil
}

func breakdownJSONB(breakdown *pricing.Breakdown) (*types.JSONB, error) {
	raw, err := json.Marshal(breakdown)
	if err != nil {
		return nil, err
	}
	var snapshot types.JSONB
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
