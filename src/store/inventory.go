package store

import (
	"context"
	"hrs/src/models"
	"time"

	"gorm.io/gorm"
)

type GormInventoryStore struct {
	db *gorm.DB
}

func NewInventoryStore(db *gorm.DB) *GormInventoryStore {
	return &GormInventoryStore{db: db}
}

func (s *GormInventoryStore) GetInventory(ctx context.Context, roomTypeID uint, from time.Time, to time.Time) ([]models.RoomInventory, error) {
	var rows []models.RoomInventory
	err := s.db.WithContext(ctx).
		Model(&models.RoomInventory{}).
		Where("room_type_id = ? AND date >= ? AND date < ?", roomTypeID, from, to).
		Order("date asc").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormInventoryStore) GetRates(ctx context.Context, roomTypeID uint, from time.Time, to time.Time, ratePlanID *uint) ([]models.RoomRate, error) {
	q := s.db.WithContext(ctx).
		Model(&models.RoomRate{}).
		Where("room_type_id = ? AND date >= ? AND date < ?", roomTypeID, from, to)
	if ratePlanID != nil {
		q = q.Where("rate_plan_id = ?", *ratePlanID)
	} else {
		q = q.Where("rate_plan_id IS NULL")
	}
	var rows []models.RoomRate
	if err := q.Order("date asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// decrementSQL is a single conditional write: the capacity check and the
// mutation happen in one statement, which closes the check-then-act race
// that would otherwise oversell a night. Overbooked nights consume the
// headroom counter instead of pushing available_rooms negative.
const decrementSQL = `
UPDATE room_inventories
SET available_rooms = CASE WHEN available_rooms > 0 THEN available_rooms - 1 ELSE available_rooms END,
    overbooked      = CASE WHEN available_rooms > 0 THEN overbooked ELSE overbooked + 1 END,
    updated_at      = now()
WHERE room_type_id = ? AND date = ?
  AND closed = false
  AND deleted_at IS NULL
  AND available_rooms + overbook_limit - overbooked > 0`

func (s *GormInventoryStore) DecrementOneRoom(ctx context.Context, roomTypeID uint, date time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Exec(decrementSQL, roomTypeID, date)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// incrementSQL releases overbook headroom first and only then restocks
// available_rooms, capped at the provisioned ceiling in total_rooms.
const incrementSQL = `
UPDATE room_inventories
SET available_rooms = CASE WHEN overbooked > 0 THEN available_rooms
                           WHEN available_rooms < total_rooms THEN available_rooms + 1
                           ELSE available_rooms END,
    overbooked      = CASE WHEN overbooked > 0 THEN overbooked - 1 ELSE overbooked END,
    updated_at      = now()
WHERE room_type_id = ? AND date = ?
  AND deleted_at IS NULL`

func (s *GormInventoryStore) IncrementOneRoom(ctx context.Context, roomTypeID uint, date time.Time) error {
	return s.db.WithContext(ctx).Exec(incrementSQL, roomTypeID, date).Error
}
