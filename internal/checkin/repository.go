package checkin

import (
	"context"
	"time"

	"wedly/internal/guests"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// MarkCheckedIn is the atomic transition NOT_ARRIVED -> CHECKED_IN.
	// Returns false when the guard matched no row, i.e. a concurrent caller
	// already won the transition.
	MarkCheckedIn(ctx context.Context, guestID uuid.UUID, companions int, note string, at time.Time) (bool, error)

	// UndoCheckIn reverses the transition. Returns false when the guest was
	// not checked in.
	UndoCheckIn(ctx context.Context, guestID uuid.UUID) (bool, error)

	CheckinCounts(ctx context.Context, eventID uuid.UUID) (total, checkedIn int64, err error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// MarkCheckedIn uses a conditional update as compare-and-swap: the status
// guard in the WHERE clause lets exactly one concurrent caller through.
func (r *repository) MarkCheckedIn(ctx context.Context, guestID uuid.UUID, companions int, note string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&guests.Guest{}).
		Where("id = ? AND status = ?", guestID, guests.StatusNotArrived).
		Updates(map[string]interface{}{
			"status":          guests.StatusCheckedIn,
			"companion_count": companions,
			"checkin_note":    note,
			"checked_in_at":   at,
		})

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) UndoCheckIn(ctx context.Context, guestID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&guests.Guest{}).
		Where("id = ? AND status = ?", guestID, guests.StatusCheckedIn).
		Updates(map[string]interface{}{
			"status":          guests.StatusNotArrived,
			"companion_count": 0,
			"checkin_note":    "",
			"checked_in_at":   nil,
		})

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CheckinCounts(ctx context.Context, eventID uuid.UUID) (total, checkedIn int64, err error) {
	base := r.db.WithContext(ctx).Model(&guests.Guest{}).Where("event_id = ?", eventID)

	if err = base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err = base.Session(&gorm.Session{}).
		Where("status = ?", guests.StatusCheckedIn).
		Count(&checkedIn).Error
	return total, checkedIn, err
}
