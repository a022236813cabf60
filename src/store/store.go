// Package store wraps every persistence path the reservation core touches.
// The interfaces exist so the engine can run against fakes in tests; the
// shipped implementations are gorm-backed.
package store

import (
	"context"
	"hrs/src/models"
	"time"
)

// InventoryStore is the shared room-night ledger. DecrementOneRoom is the
// only way stock is consumed and IncrementOneRoom the only way it comes
// back; both are single conditional writes, never read-then-write.
type InventoryStore interface {
	GetInventory(ctx context.Context, roomTypeID uint, from time.Time, to time.Time) ([]models.RoomInventory, error)
	GetRates(ctx context.Context, roomTypeID uint, from time.Time, to time.Time, ratePlanID *uint) ([]models.RoomRate, error)

	// DecrementOneRoom consumes one room for the night. It succeeds iff the
	// night's effective capacity is still positive at the moment of the
	// write and mutates nothing otherwise.
	DecrementOneRoom(ctx context.Context, roomTypeID uint, date time.Time) (bool, error)

	// IncrementOneRoom gives one room back. It never raises available stock
	// above the provisioned ceiling and never fails short of a storage error.
	IncrementOneRoom(ctx context.Context, roomTypeID uint, date time.Time) error
}

type DraftRepo interface {
	Upsert(ctx context.Context, draft *models.Draft) error
	GetByKey(ctx context.Context, key string) (*models.Draft, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// BookingRepo persists confirmed bookings. CreateConfirmed writes the
// booking with its item and add-on snapshots, consumes one promo usage slot
// and deletes the originating draft in a single transaction; all of it
// commits or none of it does.
type BookingRepo interface {
	CreateConfirmed(ctx context.Context, booking *models.Booking, promoCode *string, draftKey *string) error
	GetByID(ctx context.Context, id uint) (*models.Booking, error)

	// MarkCancelled flips a still-cancellable booking to cancelled. The
	// false return means another caller got there first.
	MarkCancelled(ctx context.Context, booking *models.Booking) (bool, error)
	MarkNoShows(ctx context.Context, before time.Time) (int64, error)
}

type PromoRepo interface {
	GetByCode(ctx context.Context, code string, hotelID uint) (*models.PromoCode, error)
}

// CatalogRepo is the read-only catalog collaborator: display data and
// booking-time lookups that never decide eligibility on their own.
type CatalogRepo interface {
	FindRoomTypes(ctx context.Context, hotelID uint, roomTypeID uint, guests int) ([]models.RoomType, error)
	GetRoomType(ctx context.Context, id uint) (*models.RoomType, error)
	GetAddOns(ctx context.Context, roomTypeID uint, ids []uint) ([]models.AddOn, error)
	GetTaxFeeRules(ctx context.Context, hotelID uint) ([]models.TaxFeeRule, error)
}
