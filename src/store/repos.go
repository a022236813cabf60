package store

import (
	"context"
	"errors"
	"hrs/src/models"
	"hrs/src/pricing"
	"hrs/src/types"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDraftNotFound also covers the duplicate-confirm race: the losing
// attempt finds the draft already deleted inside its transaction and the
// whole write rolls back.
var ErrDraftNotFound = errors.New("draft not found")

type GormDraftRepo struct {
	db *gorm.DB
}

func NewDraftRepo(db *gorm.DB) *GormDraftRepo {
	return &GormDraftRepo{db: db}
}

func (r *GormDraftRepo) Upsert(ctx context.Context, draft *models.Draft) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"room_type_id", "rate_plan_id", "check_in", "check_out",
				"adults", "children", "add_ons", "promo_code", "breakdown",
				"expires_at", "updated_at",
			}),
		}).
		Create(draft).
		Error
}

func (r *GormDraftRepo) GetByKey(ctx context.Context, key string) (*models.Draft, error) {
	var draft models.Draft
	err := r.db.WithContext(ctx).
		Where(&models.Draft{SessionKey: key}).
		First(&draft).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDraftNotFound
		}
		return nil, err
	}
	return &draft, nil
}

func (r *GormDraftRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.Draft{})
	return res.RowsAffected, res.Error
}

type GormBookingRepo struct {
	db *gorm.DB
}

func NewBookingRepo(db *gorm.DB) *GormBookingRepo {
	return &GormBookingRepo{db: db}
}

func (r *GormBookingRepo) CreateConfirmed(ctx context.Context, booking *models.Booking, promoCode *string, draftKey *string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(booking).Error; err != nil {
			return err
		}
		if promoCode != nil {
			res := tx.Model(&models.PromoCode{}).
				Where("code = ? AND active = true", *promoCode).
				Where("usage_limit IS NULL OR usage_count < usage_limit").
				UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return pricing.ErrPromoUsageLimit
			}
		}
		if draftKey != nil {
			res := tx.Where("session_key = ?", *draftKey).Delete(&models.Draft{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrDraftNotFound
			}
		}
		return nil
	})
}

func (r *GormBookingRepo) GetByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Where(&models.Booking{ID: id}).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("booking_items.date asc")
		}).
		Preload("AddOns").
		Preload("RoomType").
		First(&booking).
		Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *GormBookingRepo) MarkCancelled(ctx context.Context, booking *models.Booking) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status IN ?", booking.ID, []types.BookingStatus{types.BOOKING_RESERVED, types.BOOKING_CONFIRMED}).
		Updates(map[string]any{
			"status":              booking.Status,
			"cancelled_at":        booking.CancelledAt,
			"cancellation_reason": booking.CancellationReason,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormBookingRepo) MarkNoShows(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("status = ? AND check_in < ?", types.BOOKING_RESERVED, before).
		Update("status", types.BOOKING_NO_SHOW)
	return res.RowsAffected, res.Error
}

type GormPromoRepo struct {
	db *gorm.DB
}

func NewPromoRepo(db *gorm.DB) *GormPromoRepo {
	return &GormPromoRepo{db: db}
}

func (r *GormPromoRepo) GetByCode(ctx context.Context, code string, hotelID uint) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := r.db.WithContext(ctx).
		Where(&models.PromoCode{Code: code, HotelID: hotelID}).
		First(&promo).
		Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

type GormCatalogRepo struct {
	db *gorm.DB
}

func NewCatalogRepo(db *gorm.DB) *GormCatalogRepo {
	return &GormCatalogRepo{db: db}
}

func (r *GormCatalogRepo) FindRoomTypes(ctx context.Context, hotelID uint, roomTypeID uint, guests int) ([]models.RoomType, error) {
	q := r.db.WithContext(ctx).Model(&models.RoomType{}).Preload("Amenities")
	if hotelID != 0 {
		q = q.Where("hotel_id = ?", hotelID)
	}
	if roomTypeID != 0 {
		q = q.Where("id = ?", roomTypeID)
	}
	if guests > 0 {
		q = q.Where("max_occupancy >= ?", guests)
	}
	var roomTypes []models.RoomType
	if err := q.Find(&roomTypes).Error; err != nil {
		return nil, err
	}
	return roomTypes, nil
}

func (r *GormCatalogRepo) GetRoomType(ctx context.Context, id uint) (*models.RoomType, error) {
	var roomType models.RoomType
	err := r.db.WithContext(ctx).
		Where(&models.RoomType{ID: id}).
		Preload("Amenities").
		First(&roomType).
		Error
	if err != nil {
		return nil, err
	}
	return &roomType, nil
}

func (r *GormCatalogRepo) GetAddOns(ctx context.Context, roomTypeID uint, ids []uint) ([]models.AddOn, error) {
	if len(ids) == 0 {
		return []models.AddOn{}, nil
	}
	var addOns []models.AddOn
	err := r.db.WithContext(ctx).
		Where("room_type_id = ? AND id IN ?", roomTypeID, ids).
		Find(&addOns).
		Error
	if err != nil {
		return nil, err
	}
	return addOns, nil
}

func (r *GormCatalogRepo) GetTaxFeeRules(ctx context.Context, hotelID uint) ([]models.TaxFeeRule, error) {
	var rules []models.TaxFeeRule
	err := r.db.WithContext(ctx).
		Where(&models.TaxFeeRule{HotelID: hotelID, Active: true}).
		Find(&rules).
		Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}
