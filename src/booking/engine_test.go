package booking

import (
	"context"
	"errors"
	"fmt"
	"hrs/src/models"
	"hrs/src/pricing"
	"hrs/src/search"
	"hrs/src/store"
	"hrs/src/types"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memLedger mirrors the conditional-update semantics of the gorm inventory
// store: every decrement and increment is a single guarded mutation under
// one lock, so concurrent confirms race exactly like they do against the
// database.
type memLedger struct {
	mu        sync.Mutex
	inventory map[string]*models.RoomInventory
	rates     map[string]*models.RoomRate

	// failAfter errors every decrement once decrements have succeeded, to
	// simulate storage falling over mid-loop. Negative disables it.
	failAfter  int
	decrements int
}

func ledgerKey(roomTypeID uint, date time.Time) string {
	return fmt.Sprintf("%d|%s", roomTypeID, date.Format("2006-01-02"))
}

func newMemLedger() *memLedger {
	return &memLedger{
		inventory: map[string]*models.RoomInventory{},
		rates:     map[string]*models.RoomRate{},
		failAfter: -1,
	}
}

func (m *memLedger) stock(roomTypeID uint, date time.Time, total, available, overbookLimit int, priceCents int64) {
	m.inventory[ledgerKey(roomTypeID, date)] = &models.RoomInventory{
		RoomTypeID: roomTypeID, Date: date,
		TotalRooms: total, AvailableRooms: available, OverbookLimit: overbookLimit,
	}
	m.rates[ledgerKey(roomTypeID, date)] = &models.RoomRate{
		RoomTypeID: roomTypeID, Date: date, PriceCents: priceCents, CurrencyCode: "USD",
	}
}

func (m *memLedger) GetInventory(ctx context.Context, roomTypeID uint, from time.Time, to time.Time) ([]models.RoomInventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.RoomInventory{}
	for _, ri := range m.inventory {
		if ri.RoomTypeID == roomTypeID && !ri.Date.Before(from) && ri.Date.Before(to) {
			out = append(out, *ri)
		}
	}
	return out, nil
}

func (m *memLedger) GetRates(ctx context.Context, roomTypeID uint, from time.Time, to time.Time, ratePlanID *uint) ([]models.RoomRate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.RoomRate{}
	for _, r := range m.rates {
		if r.RoomTypeID == roomTypeID && !r.Date.Before(from) && r.Date.Before(to) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memLedger) DecrementOneRoom(ctx context.Context, roomTypeID uint, date time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAfter >= 0 && m.decrements >= m.failAfter {
		return false, errors.New("storage unavailable")
	}
	m.decrements++
	ri, ok := m.inventory[ledgerKey(roomTypeID, date)]
	if !ok || ri.Closed {
		return false, nil
	}
	if ri.AvailableRooms+ri.OverbookLimit-ri.Overbooked <= 0 {
		return false, nil
	}
	if ri.AvailableRooms > 0 {
		ri.AvailableRooms--
	} else {
		ri.Overbooked++
	}
	return true, nil
}

func (m *memLedger) IncrementOneRoom(ctx context.Context, roomTypeID uint, date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ri, ok := m.inventory[ledgerKey(roomTypeID, date)]
	if !ok {
		return errors.New("no inventory row")
	}
	if ri.Overbooked > 0 {
		ri.Overbooked--
	} else if ri.AvailableRooms < ri.TotalRooms {
		ri.AvailableRooms++
	}
	return nil
}

func (m *memLedger) available(roomTypeID uint, date time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inventory[ledgerKey(roomTypeID, date)].AvailableRooms
}

func (m *memLedger) overbooked(roomTypeID uint, date time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inventory[ledgerKey(roomTypeID, date)].Overbooked
}

type memDrafts struct {
	mu     sync.Mutex
	drafts map[string]*models.Draft
}

func newMemDrafts() *memDrafts {
	return &memDrafts{drafts: map[string]*models.Draft{}}
}

func (m *memDrafts) Upsert(ctx context.Context, draft *models.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *draft
	m.drafts[draft.SessionKey] = &copied
	return nil
}

func (m *memDrafts) GetByKey(ctx context.Context, key string) (*models.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	draft, ok := m.drafts[key]
	if !ok {
		return nil, store.ErrDraftNotFound
	}
	copied := *draft
	return &copied, nil
}

func (m *memDrafts) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for key, draft := range m.drafts {
		if draft.Expired(now) {
			delete(m.drafts, key)
			n++
		}
	}
	return n, nil
}

// memBookings reproduces the transactional contract of the gorm repo:
// booking insert, promo usage bump and draft delete all succeed or all fail.
type memBookings struct {
	mu       sync.Mutex
	nextID   uint
	bookings map[uint]*models.Booking
	drafts   *memDrafts
	promos   *memPromos

	markCancelledHook func() (bool, error)
}

func newMemBookings(drafts *memDrafts, promos *memPromos) *memBookings {
	return &memBookings{nextID: 1, bookings: map[uint]*models.Booking{}, drafts: drafts, promos: promos}
}

func (m *memBookings) CreateConfirmed(ctx context.Context, booking *models.Booking, promoCode *string, draftKey *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if promoCode != nil {
		if err := m.promos.consume(*promoCode); err != nil {
			return err
		}
	}
	if draftKey != nil {
		m.drafts.mu.Lock()
		_, ok := m.drafts.drafts[*draftKey]
		if !ok {
			m.drafts.mu.Unlock()
			if promoCode != nil {
				m.promos.release(*promoCode)
			}
			return store.ErrDraftNotFound
		}
		delete(m.drafts.drafts, *draftKey)
		m.drafts.mu.Unlock()
	}

	booking.ID = m.nextID
	m.nextID++
	copied := *booking
	m.bookings[booking.ID] = &copied
	return nil
}

func (m *memBookings) GetByID(ctx context.Context, id uint) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *booking
	return &copied, nil
}

func (m *memBookings) MarkCancelled(ctx context.Context, booking *models.Booking) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markCancelledHook != nil {
		return m.markCancelledHook()
	}
	stored, ok := m.bookings[booking.ID]
	if !ok {
		return false, nil
	}
	if !stored.Cancellable() {
		return false, nil
	}
	stored.Status = types.BOOKING_CANCELLED
	stored.CancelledAt = booking.CancelledAt
	stored.CancellationReason = booking.CancellationReason
	return true, nil
}

func (m *memBookings) MarkNoShows(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, booking := range m.bookings {
		if booking.Status == types.BOOKING_RESERVED && booking.CheckIn.Before(before) {
			booking.Status = types.BOOKING_NO_SHOW
			n++
		}
	}
	return n, nil
}

type memPromos struct {
	mu     sync.Mutex
	promos map[string]*models.PromoCode
}

func newMemPromos(promos ...*models.PromoCode) *memPromos {
	m := &memPromos{promos: map[string]*models.PromoCode{}}
	for _, promo := range promos {
		m.promos[promo.Code] = promo
	}
	return m
}

func (m *memPromos) GetByCode(ctx context.Context, code string, hotelID uint) (*models.PromoCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	promo, ok := m.promos[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *promo
	return &copied, nil
}

func (m *memPromos) consume(code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	promo, ok := m.promos[code]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if promo.UsageLimit != nil && promo.UsageCount >= *promo.UsageLimit {
		return pricing.ErrPromoUsageLimit
	}
	promo.UsageCount++
	return nil
}

func (m *memPromos) release(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if promo, ok := m.promos[code]; ok && promo.UsageCount > 0 {
		promo.UsageCount--
	}
}

type memCatalog struct {
	roomTypes []models.RoomType
	addOns    []models.AddOn
	rules     []models.TaxFeeRule
}

func (m *memCatalog) FindRoomTypes(ctx context.Context, hotelID uint, roomTypeID uint, guests int) ([]models.RoomType, error) {
	return m.roomTypes, nil
}

func (m *memCatalog) GetRoomType(ctx context.Context, id uint) (*models.RoomType, error) {
	for i := range m.roomTypes {
		if m.roomTypes[i].ID == id {
			return &m.roomTypes[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memCatalog) GetAddOns(ctx context.Context, roomTypeID uint, ids []uint) ([]models.AddOn, error) {
	out := []models.AddOn{}
	for _, addOn := range m.addOns {
		for _, id := range ids {
			if addOn.ID == id && addOn.RoomTypeID == roomTypeID {
				out = append(out, addOn)
			}
		}
	}
	return out, nil
}

func (m *memCatalog) GetTaxFeeRules(ctx context.Context, hotelID uint) ([]models.TaxFeeRule, error) {
	return m.rules, nil
}

type recordingPayments struct {
	mu        sync.Mutex
	created   []string
	cancelled []string
	failNext  bool
}

func (p *recordingPayments) CreateIntent(ctx context.Context, amountCents int64, currency string, referenceCode string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failNext {
		return "", errors.New("gateway down")
	}
	id := fmt.Sprintf("pi_%d", len(p.created)+1)
	p.created = append(p.created, id)
	return id, nil
}

func (p *recordingPayments) CancelIntent(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled = append(p.cancelled, id)
	return nil
}

type testEnv struct {
	ledger   *memLedger
	drafts   *memDrafts
	promos   *memPromos
	bookings *memBookings
	catalog  *memCatalog
	payments *recordingPayments
	engine   *Engine
	manager  *DraftManager
}

func checkInDate() time.Time {
	return time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
}

func newTestEnv(available int, promos ...*models.PromoCode) *testEnv {
	ledger := newMemLedger()
	checkIn := checkInDate()
	for i := 0; i < 3; i++ {
		ledger.stock(1, checkIn.AddDate(0, 0, i), 5, available, 0, 10000)
	}
	drafts := newMemDrafts()
	promoRepo := newMemPromos(promos...)
	bookings := newMemBookings(drafts, promoRepo)
	catalog := &memCatalog{
		roomTypes: []models.RoomType{{ID: 1, HotelID: 1, Name: "Deluxe", MaxOccupancy: 4}},
		addOns:    []models.AddOn{{ID: 7, RoomTypeID: 1, Name: "Breakfast", PriceCents: 1500, MinQty: 1, MaxQty: 4, Active: true}},
	}
	payments := &recordingPayments{}
	searchSvc := search.NewService(ledger, catalog)
	engine := NewEngine(ledger, bookings, drafts, promoRepo, catalog, searchSvc, WithPayments(payments))
	manager := NewDraftManager(drafts, promoRepo, catalog, searchSvc)
	return &testEnv{
		ledger: ledger, drafts: drafts, promos: promoRepo, bookings: bookings,
		catalog: catalog, payments: payments, engine: engine, manager: manager,
	}
}

func stayRequest() *types.CreateDraftRequestBody {
	checkIn := checkInDate()
	return &types.CreateDraftRequestBody{
		RoomTypeID: 1,
		CheckIn:    checkIn.Format("2006-01-02"),
		CheckOut:   checkIn.AddDate(0, 0, 3).Format("2006-01-02"),
		Adults:     2,
	}
}

func guest() types.GuestInfo {
	return types.GuestInfo{Name: "Ada Guest", Email: "ada@example.com"}
}

func TestConfirmInlineStay(t *testing.T) {
	env := newTestEnv(3)

	result, err := env.engine.Confirm(context.Background(), ConfirmInput{Stay: stayRequest(), Guest: guest()})
	require.NoError(t, err)
	assert.NotZero(t, result.ID)
	assert.Contains(t, result.ReferenceCode, "BK-")
	assert.Equal(t, types.BOOKING_RESERVED, result.Status)
	assert.Equal(t, int64(30000), result.TotalAmountCents)
	assert.Len(t, result.Items, 3)
	require.NotNil(t, result.PaymentIntentID)
	assert.Equal(t, "pi_1", *result.PaymentIntentID)

	checkIn := checkInDate()
	for i := 0; i < 3; i++ {
		assert.Equal(t, 2, env.ledger.available(1, checkIn.AddDate(0, 0, i)))
	}
}

func TestConfirmExternalPaymentIntentConfirmsImmediately(t *testing.T) {
	env := newTestEnv(3)
	intent := "pi_external"

	result, err := env.engine.Confirm(context.Background(), ConfirmInput{
		Stay: stayRequest(), Guest: guest(), PaymentIntent: &intent,
	})
	require.NoError(t, err)
	assert.Equal(t, types.BOOKING_CONFIRMED, result.Status)
	require.NotNil(t, result.PaymentIntentID)
	assert.Equal(t, intent, *result.PaymentIntentID)
	assert.Empty(t, env.payments.created)
}

func TestConfirmPaymentGatewayFailureKeepsBooking(t *testing.T) {
	env := newTestEnv(3)
	env.payments.failNext = true

	result, err := env.engine.Confirm(context.Background(), ConfirmInput{Stay: stayRequest(), Guest: guest()})
	require.NoError(t, err)
	assert.Nil(t, result.PaymentIntentID)
	assert.Equal(t, types.BOOKING_RESERVED, result.Status)
}

func TestConfirmRejectsBadGuest(t *testing.T) {
	env := newTestEnv(3)

	_, err := env.engine.Confirm(context.Background(), ConfirmInput{
		Stay: stayRequest(), Guest: types.GuestInfo{Name: "", Email: "nobody"},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestConfirmInsufficientInventoryCompensates(t *testing.T) {
	env := newTestEnv(1)
	// Last night is already gone; the first two decrements must be undone.
	checkIn := checkInDate()
	env.ledger.inventory[ledgerKey(1, checkIn.AddDate(0, 0, 2))].AvailableRooms = 0

	_, err := env.engine.Confirm(context.Background(), ConfirmInput{Stay: stayRequest(), Guest: guest()})
	assert.ErrorIs(t, err, ErrInsufficientInventory)

	assert.Equal(t, 1, env.ledger.available(1, checkIn))
	assert.Equal(t, 1, env.ledger.available(1, checkIn.AddDate(0, 0, 1)))
	assert.Equal(t, 0, env.ledger.available(1, checkIn.AddDate(0, 0, 2)))
}

func TestConfirmStorageFaultCompensates(t *testing.T) {
	env := newTestEnv(2)
	checkIn := checkInDate()

	// Two nights claim fine, then storage goes away on the third.
	env.ledger.failAfter = 2
	_, err := env.engine.Confirm(context.Background(), ConfirmInput{Stay: stayRequest(), Guest: guest()})
	require.Error(t, err)
	env.ledger.failAfter = -1

	for i := 0; i < 3; i++ {
		assert.Equal(t, 2, env.ledger.available(1, checkIn.AddDate(0, 0, i)))
	}
}

func TestConfirmConcurrentLastRoom(t *testing.T) {
	env := newTestEnv(1)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.engine.Confirm(context.Background(), ConfirmInput{Stay: stayRequest(), Guest: guest()})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		if err == nil {
			wins++
		} else if errors.Is(err, ErrInsufficientInventory) {
			conflicts++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)

	checkIn := checkInDate()
	for i := 0; i < 3; i++ {
		assert.Equal(t, 0, env.ledger.available(1, checkIn.AddDate(0, 0, i)))
		assert.Equal(t, 0, env.ledger.overbooked(1, checkIn.AddDate(0, 0, i)))
	}
}

func TestConfirmPromoAppliedAndConsumed(t *testing.T) {
	limit := 5
	promo := &models.PromoCode{
		Code: "SUMMER25", HotelID: 1, Type: types.AMOUNT_PERCENT, Value: 25,
		UsageLimit: &limit, Active: true,
	}
	env := newTestEnv(3, promo)

	req := stayRequest()
	code := "SUMMER25"
	req.PromoCode = &code

	result, err := env.engine.Confirm(context.Background(), ConfirmInput{Stay: req, Guest: guest()})
	require.NoError(t, err)
	assert.Equal(t, int64(7500), result.DiscountCents)
	assert.Equal(t, int64(22500), result.TotalAmountCents)
	assert.Equal(t, 1, promo.UsageCount)
}

func TestConfirmPromoUsageLimitCompensates(t *testing.T) {
	// The second confirm finds the single usage slot gone after its nights
	// are already claimed; the claims must come back.
	limit := 1
	promo := &models.PromoCode{
		Code: "LASTONE", HotelID: 1, Type: types.AMOUNT_FIXED, Value: 1000,
		UsageLimit: &limit, Active: true,
	}
	env := newTestEnv(3, promo)

	req := stayRequest()
	code := "LASTONE"
	req.PromoCode = &code

	_, err := env.engine.Confirm(context.Background(), ConfirmInput{Stay: req, Guest: guest()})
	require.NoError(t, err)

	_, err = env.engine.Confirm(context.Background(), ConfirmInput{Stay: req, Guest: guest()})
	require.ErrorIs(t, err, pricing.ErrPromoUsageLimit)

	checkIn := checkInDate()
	for i := 0; i < 3; i++ {
		assert.Equal(t, 2, env.ledger.available(1, checkIn.AddDate(0, 0, i)))
	}
}

func TestConfirmFromDraftDeletesDraft(t *testing.T) {
	env := newTestEnv(3)

	draft, err := env.manager.CreateOrUpdate(context.Background(), "sess-1", stayRequest())
	require.NoError(t, err)
	require.NotNil(t, draft.Breakdown)

	key := "sess-1"
	result, err := env.engine.Confirm(context.Background(), ConfirmInput{DraftKey: &key, Guest: guest()})
	require.NoError(t, err)
	assert.Equal(t, int64(30000), result.TotalAmountCents)

	_, err = env.drafts.GetByKey(context.Background(), "sess-1")
	assert.ErrorIs(t, err, store.ErrDraftNotFound)
}

func TestConfirmConsumedDraftCompensates(t *testing.T) {
	env := newTestEnv(3)

	_, err := env.manager.CreateOrUpdate(context.Background(), "sess-1", stayRequest())
	require.NoError(t, err)

	key := "sess-1"
	_, err = env.engine.Confirm(context.Background(), ConfirmInput{DraftKey: &key, Guest: guest()})
	require.NoError(t, err)

	// Second confirm with the same key must not find the draft and must not
	// hold any inventory afterwards.
	_, err = env.engine.Confirm(context.Background(), ConfirmInput{DraftKey: &key, Guest: guest()})
	assert.ErrorIs(t, err, ErrDraftNotFound)

	checkIn := checkInDate()
	for i := 0; i < 3; i++ {
		assert.Equal(t, 2, env.ledger.available(1, checkIn.AddDate(0, 0, i)))
	}
}

func TestConfirmExpiredDraft(t *testing.T) {
	env := newTestEnv(3)

	draft, err := env.manager.CreateOrUpdate(context.Background(), "sess-1", stayRequest())
	require.NoError(t, err)

	env.drafts.mu.Lock()
	env.drafts.drafts[draft.SessionKey].ExpiresAt = time.Now().Add(-time.Minute)
	env.drafts.mu.Unlock()

	key := "sess-1"
	_, err = env.engine.Confirm(context.Background(), ConfirmInput{DraftKey: &key, Guest: guest()})
	assert.ErrorIs(t, err, ErrDraftExpired)
}

func TestConfirmNeitherDraftNorStay(t *testing.T) {
	env := newTestEnv(3)
	_, err := env.engine.Confirm(context.Background(), ConfirmInput{Guest: guest()})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDraftCreateOrUpdateReplacesInPlace(t *testing.T) {
	env := newTestEnv(3)

	first, err := env.manager.CreateOrUpdate(context.Background(), "sess-1", stayRequest())
	require.NoError(t, err)

	req := stayRequest()
	req.AddOns = []types.DraftAddOnSelection{{AddOnID: 7, Quantity: 2}}
	second, err := env.manager.CreateOrUpdate(context.Background(), "sess-1", req)
	require.NoError(t, err)

	assert.Equal(t, first.SessionKey, second.SessionKey)
	stored, err := env.manager.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Len(t, []types.DraftAddOnSelection(stored.AddOns), 1)
}

func TestDraftRejectsUnknownAddOn(t *testing.T) {
	env := newTestEnv(3)

	req := stayRequest()
	req.AddOns = []types.DraftAddOnSelection{{AddOnID: 99, Quantity: 1}}
	_, err := env.manager.CreateOrUpdate(context.Background(), "sess-1", req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDraftUnknownPromoCode(t *testing.T) {
	env := newTestEnv(3)

	req := stayRequest()
	code := "NOPE"
	req.PromoCode = &code
	_, err := env.manager.CreateOrUpdate(context.Background(), "sess-1", req)
	assert.ErrorIs(t, err, ErrInvalidPromoCode)
}

func TestSweepRemovesOnlyExpiredDrafts(t *testing.T) {
	env := newTestEnv(3)

	_, err := env.manager.CreateOrUpdate(context.Background(), "fresh", stayRequest())
	require.NoError(t, err)
	_, err = env.manager.CreateOrUpdate(context.Background(), "stale", stayRequest())
	require.NoError(t, err)
	env.drafts.mu.Lock()
	env.drafts.drafts["stale"].ExpiresAt = time.Now().Add(-time.Hour)
	env.drafts.mu.Unlock()

	n, err := env.drafts.DeleteExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = env.drafts.GetByKey(context.Background(), "fresh")
	assert.NoError(t, err)
}
