package seating

import (
	"context"
	"errors"
	"fmt"

	"wedly/internal/guests"
	"wedly/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Resource CRUD
	CreateResource(ctx context.Context, resource *SeatingResource) error
	GetResourceByID(ctx context.Context, id uuid.UUID) (*SeatingResource, error)
	ListResources(ctx context.Context, eventID uuid.UUID) ([]SeatingResource, error)
	ListActiveResources(ctx context.Context, eventID uuid.UUID) ([]SeatingResource, error)
	UpdateResource(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error

	// Occupancy
	OccupantCount(ctx context.Context, resourceID uuid.UUID) (int64, error)
	OccupantCounts(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]int, error)

	// Assignment
	AssignGuest(ctx context.Context, eventID, guestID, resourceID uuid.UUID) error
	UnassignGuest(ctx context.Context, eventID, guestID uuid.UUID) error
	ListUnassignedGuests(ctx context.Context, eventID uuid.UUID) ([]guests.Guest, error)
	BulkAssign(ctx context.Context, plan []PlannedAssignment) (applied, rejected, skipped []PlannedAssignment, err error)
}

// PlannedAssignment pairs one guest with the resource picked for them by the
// auto-assign pass.
type PlannedAssignment struct {
	GuestID    uuid.UUID
	ResourceID uuid.UUID
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// forUpdate locks the selected rows for the rest of the transaction, so a
// capacity check and the write it guards see the same occupancy.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// RESOURCE CRUD

func (r *repository) CreateResource(ctx context.Context, resource *SeatingResource) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

func (r *repository) GetResourceByID(ctx context.Context, id uuid.UUID) (*SeatingResource, error) {
	var resource SeatingResource
	err := r.db.WithContext(ctx).First(&resource, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

func (r *repository) ListResources(ctx context.Context, eventID uuid.UUID) ([]SeatingResource, error) {
	var resources []SeatingResource
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("sort_order ASC, created_at ASC").
		Find(&resources).Error
	return resources, err
}

func (r *repository) ListActiveResources(ctx context.Context, eventID uuid.UUID) ([]SeatingResource, error) {
	var resources []SeatingResource
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND active = ?", eventID, true).
		Order("sort_order ASC, created_at ASC").
		Find(&resources).Error
	return resources, err
}

func (r *repository) UpdateResource(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&SeatingResource{}).Where("id = ?", id).Updates(updates).Error
}

// OCCUPANCY

func (r *repository) OccupantCount(ctx context.Context, resourceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&guests.Guest{}).
		Where("seating_resource_id = ?", resourceID).
		Count(&count).Error
	return count, err
}

func (r *repository) OccupantCounts(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []struct {
		SeatingResourceID uuid.UUID
		Occupied          int
	}
	err := r.db.WithContext(ctx).Model(&guests.Guest{}).
		Select("seating_resource_id, COUNT(*) AS occupied").
		Where("event_id = ? AND seating_resource_id IS NOT NULL", eventID).
		Group("seating_resource_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		counts[row.SeatingResourceID] = row.Occupied
	}
	return counts, nil
}

// ASSIGNMENT

// AssignGuest records a seat assignment atomically: the resource row is
// locked for the capacity check, and the single seat reference column means
// a reassignment releases the prior seat in the same write. A guest is never
// counted against two resources.
func (r *repository) AssignGuest(ctx context.Context, eventID, guestID, resourceID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var resource SeatingResource
		err := forUpdate(tx).
			Where("id = ? AND event_id = ?", resourceID, eventID).
			First(&resource).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrResourceNotFound
			}
			return fmt.Errorf("failed to lock seating resource: %w", err)
		}

		var guest guests.Guest
		err = tx.First(&guest, "id = ? AND event_id = ?", guestID, eventID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("failed to load guest: %w", err)
		}

		// Re-assigning to the seat the guest already holds is a no-op.
		if guest.SeatingResourceID != nil && *guest.SeatingResourceID == resourceID {
			return nil
		}

		if !resource.Allows(guest.GuestType) {
			return apperrors.ErrTypeNotAllowed
		}

		var occupied int64
		err = tx.Model(&guests.Guest{}).
			Where("seating_resource_id = ?", resourceID).
			Count(&occupied).Error
		if err != nil {
			return fmt.Errorf("failed to count occupants: %w", err)
		}

		if occupied >= int64(resource.Capacity) {
			return &apperrors.CapacityError{
				ResourceID: resource.ID.String(),
				Capacity:   resource.Capacity,
			}
		}

		return tx.Model(&guests.Guest{}).
			Where("id = ?", guestID).
			Update("seating_resource_id", resourceID).Error
	})
}

func (r *repository) UnassignGuest(ctx context.Context, eventID, guestID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&guests.Guest{}).
		Where("id = ? AND event_id = ?", guestID, eventID).
		Update("seating_resource_id", nil)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *repository) ListUnassignedGuests(ctx context.Context, eventID uuid.UUID) ([]guests.Guest, error) {
	var unassigned []guests.Guest
	// Creation order: first-registered guests get first pick of capacity.
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND seating_resource_id IS NULL", eventID).
		Order("created_at ASC, id ASC").
		Find(&unassigned).Error
	return unassigned, err
}

// BulkAssign applies an auto-assign plan in one transaction. Each involved
// resource row is locked and its occupancy recounted: a manual assignment
// that slipped in between snapshot and commit shrinks the applicable plan
// instead of breaking the capacity invariant. Overflowing entries come back
// as rejected; guests who picked up a seat mid-pass come back as skipped
// and never consume a slot.
func (r *repository) BulkAssign(ctx context.Context, plan []PlannedAssignment) ([]PlannedAssignment, []PlannedAssignment, []PlannedAssignment, error) {
	if len(plan) == 0 {
		return nil, nil, nil, nil
	}

	var applied, rejected, skipped []PlannedAssignment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		remaining := make(map[uuid.UUID]int)

		for _, p := range plan {
			if _, seen := remaining[p.ResourceID]; !seen {
				var resource SeatingResource
				err := forUpdate(tx).
					Where("id = ?", p.ResourceID).
					First(&resource).Error
				if err != nil {
					return fmt.Errorf("failed to lock seating resource: %w", err)
				}

				var occupied int64
				err = tx.Model(&guests.Guest{}).
					Where("seating_resource_id = ?", p.ResourceID).
					Count(&occupied).Error
				if err != nil {
					return fmt.Errorf("failed to count occupants: %w", err)
				}
				remaining[p.ResourceID] = resource.Capacity - int(occupied)
			}

			if remaining[p.ResourceID] <= 0 {
				rejected = append(rejected, p)
				continue
			}

			result := tx.Model(&guests.Guest{}).
				Where("id = ? AND seating_resource_id IS NULL", p.GuestID).
				Update("seating_resource_id", p.ResourceID)
			if result.Error != nil {
				return fmt.Errorf("failed to apply assignment: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				skipped = append(skipped, p)
				continue
			}
			remaining[p.ResourceID]--
			applied = append(applied, p)
		}
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return applied, rejected, skipped, nil
}
