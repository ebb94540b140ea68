package entitlements

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"wedly/pkg/apperrors"
)

type Repository interface {
	CreateEntitlement(ctx context.Context, ent *Entitlement) error
	GetEntitlementByID(ctx context.Context, id uuid.UUID) (*Entitlement, error)
	ListEntitlements(ctx context.Context, eventID uuid.UUID) ([]Entitlement, error)
	UpdateEntitlement(ctx context.Context, ent *Entitlement) error
	GetActiveEntitlement(ctx context.Context, eventID uuid.UUID, guestType string, benefit BenefitType) (*Entitlement, error)
	SumRedemptions(ctx context.Context, guestID uuid.UUID, benefit BenefitType) (int, error)
	ListRedemptions(ctx context.Context, eventID uuid.UUID, guestID *uuid.UUID, benefit *BenefitType) ([]Redemption, error)
	Redeem(ctx context.Context, params RedeemParams) (*Redemption, int, error)
}

// RedeemParams carries everything the redemption transaction needs.
type RedeemParams struct {
	EventID   uuid.UUID
	GuestID   uuid.UUID
	GuestType string
	Benefit   BenefitType
	Quantity  int
	ActorID   uuid.UUID
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateEntitlement(ctx context.Context, ent *Entitlement) error {
	if err := r.db.WithContext(ctx).Create(ent).Error; err != nil {
		return apperrors.Storage("create entitlement", err)
	}
	return nil
}

func (r *repository) GetEntitlementByID(ctx context.Context, id uuid.UUID) (*Entitlement, error) {
	var ent Entitlement
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ent).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Storage("get entitlement", err)
	}
	return &ent, nil
}

func (r *repository) ListEntitlements(ctx context.Context, eventID uuid.UUID) ([]Entitlement, error) {
	var ents []Entitlement
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("guest_type ASC, benefit_type ASC").
		Find(&ents).Error
	if err != nil {
		return nil, apperrors.Storage("list entitlements", err)
	}
	return ents, nil
}

func (r *repository) UpdateEntitlement(ctx context.Context, ent *Entitlement) error {
	if err := r.db.WithContext(ctx).Save(ent).Error; err != nil {
		return apperrors.Storage("update entitlement", err)
	}
	return nil
}

func (r *repository) GetActiveEntitlement(ctx context.Context, eventID uuid.UUID, guestType string, benefit BenefitType) (*Entitlement, error) {
	var ent Entitlement
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND guest_type = ? AND benefit_type = ? AND active = true",
			eventID, guestType, benefit).
		First(&ent).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrNoEntitlement
		}
		return nil, apperrors.Storage("get entitlement", err)
	}
	return &ent, nil
}

func (r *repository) SumRedemptions(ctx context.Context, guestID uuid.UUID, benefit BenefitType) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&Redemption{}).
		Where("guest_id = ? AND benefit_type = ?", guestID, benefit).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.Storage("sum redemptions", err)
	}
	return int(total), nil
}

func (r *repository) ListRedemptions(ctx context.Context, eventID uuid.UUID, guestID *uuid.UUID, benefit *BenefitType) ([]Redemption, error) {
	query := r.db.WithContext(ctx).Where("event_id = ?", eventID)
	if guestID != nil {
		query = query.Where("guest_id = ?", *guestID)
	}
	if benefit != nil {
		query = query.Where("benefit_type = ?", *benefit)
	}
	var reds []Redemption
	if err := query.Order("created_at DESC").Find(&reds).Error; err != nil {
		return nil, apperrors.Storage("list redemptions", err)
	}
	return reds, nil
}

// Redeem appends a redemption record after verifying quota inside a single
// transaction. An advisory transaction lock keyed on (guest, benefit)
// serializes concurrent redemptions for the same pair; different pairs do
// not contend. Returns the created record and the quantity left after it.
func (r *repository) Redeem(ctx context.Context, params RedeemParams) (*Redemption, int, error) {
	var created Redemption
	remaining := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lockKey := fmt.Sprintf("redeem:%s:%s", params.GuestID, params.Benefit)
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", lockKey).Error; err != nil {
			return apperrors.Storage("acquire redemption lock", err)
		}

		// Re-read under the lock so a concurrent deactivation or redesign
		// of the entitlement is observed before we append.
		var ent Entitlement
		err := tx.Where("event_id = ? AND guest_type = ? AND benefit_type = ? AND active = true",
			params.EventID, params.GuestType, params.Benefit).
			First(&ent).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.ErrNoEntitlement
			}
			return apperrors.Storage("get entitlement", err)
		}

		var consumed int64
		err = tx.Model(&Redemption{}).
			Where("guest_id = ? AND benefit_type = ?", params.GuestID, params.Benefit).
			Select("COALESCE(SUM(quantity), 0)").
			Scan(&consumed).Error
		if err != nil {
			return apperrors.Storage("sum redemptions", err)
		}

		left := ent.MaxQuantity - int(consumed)
		if params.Quantity > left {
			return &apperrors.QuotaError{
				BenefitType: params.Benefit.String(),
				Requested:   params.Quantity,
				Remaining:   left,
			}
		}

		redemption := Redemption{
			EventID:     params.EventID,
			GuestID:     params.GuestID,
			BenefitType: params.Benefit,
			Quantity:    params.Quantity,
			ActorID:     params.ActorID,
		}
		if err := tx.Create(&redemption).Error; err != nil {
			return apperrors.Storage("create redemption", err)
		}

		created = redemption
		remaining = left - params.Quantity
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return &created, remaining, nil
}
