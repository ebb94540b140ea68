package guests

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// Guest CRUD
	CreateGuest(ctx context.Context, guest *Guest) error
	CreateGuests(ctx context.Context, guests []Guest) error
	GetGuestByID(ctx context.Context, id uuid.UUID) (*Guest, error)
	ListGuests(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]Guest, int64, error)
	UpdateGuest(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	SoftDeleteGuest(ctx context.Context, id uuid.UUID) error

	// Identity resolution
	GetGuestByScanCode(ctx context.Context, eventID uuid.UUID, code string) (*Guest, error)
	SearchGuests(ctx context.Context, eventID uuid.UUID, query string, limit int) ([]Guest, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// GUEST CRUD

func (r *repository) CreateGuest(ctx context.Context, guest *Guest) error {
	return r.db.WithContext(ctx).Create(guest).Error
}

func (r *repository) CreateGuests(ctx context.Context, guests []Guest) error {
	return r.db.WithContext(ctx).CreateInBatches(&guests, 200).Error
}

func (r *repository) GetGuestByID(ctx context.Context, id uuid.UUID) (*Guest, error) {
	var guest Guest
	err := r.db.WithContext(ctx).First(&guest, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &guest, nil
}

func (r *repository) ListGuests(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]Guest, int64, error) {
	var guests []Guest
	var total int64

	base := r.db.WithContext(ctx).Model(&Guest{}).Where("event_id = ?", eventID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&guests).Error

	return guests, total, err
}

func (r *repository) UpdateGuest(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&Guest{}).Where("id = ?", id).Updates(updates).Error
}

func (r *repository) SoftDeleteGuest(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Guest{}, "id = ?", id).Error
}

// IDENTITY RESOLUTION

func (r *repository) GetGuestByScanCode(ctx context.Context, eventID uuid.UUID, code string) (*Guest, error) {
	var guest Guest
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND scan_code = ?", eventID, code).
		First(&guest).Error
	if err != nil {
		return nil, err
	}
	return &guest, nil
}

func (r *repository) SearchGuests(ctx context.Context, eventID uuid.UUID, query string, limit int) ([]Guest, error) {
	var guests []Guest
	searchTerm := "%" + strings.ToLower(query) + "%"

	// Un-checked-in guests surface first, then alphabetical.
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Where("LOWER(name) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(email) LIKE ?",
			searchTerm, searchTerm, searchTerm).
		Order("(status = 'CHECKED_IN') ASC").
		Order("name ASC").
		Limit(limit).
		Find(&guests).Error

	return guests, err
}
