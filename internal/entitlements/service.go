package entitlements

import (
	"context"

	"github.com/google/uuid"

	"wedly/internal/guests"
	"wedly/internal/notifications"
	"wedly/internal/shared/gate"
	"wedly/pkg/apperrors"
	"wedly/pkg/logger"
)

type Service interface {
	Redeem(ctx context.Context, actor gate.Actor, req RedeemRequest) (*RedeemResponse, error)
	Remaining(ctx context.Context, eventID uuid.UUID, guestID string, benefit string) (*RemainingResponse, error)
	History(ctx context.Context, eventID uuid.UUID, guestID string, benefit string) ([]RedemptionResponse, error)

	CreateEntitlement(ctx context.Context, eventID uuid.UUID, req CreateEntitlementRequest) (*EntitlementResponse, error)
	ListEntitlements(ctx context.Context, eventID uuid.UUID) ([]EntitlementResponse, error)
	UpdateEntitlement(ctx context.Context, eventID uuid.UUID, id string, req UpdateEntitlementRequest) (*EntitlementResponse, error)
}

type service struct {
	repo      Repository
	resolver  guests.Service
	publisher notifications.Publisher
	log       *logger.Logger
}

func NewService(repo Repository, resolver guests.Service, publisher notifications.Publisher, log *logger.Logger) Service {
	return &service{
		repo:      repo,
		resolver:  resolver,
		publisher: publisher,
		log:       log,
	}
}

// Redeem consumes part of a guest's benefit quota. Checks run in a fixed
// order so callers always see the most actionable failure first: guest
// exists, guest has arrived, staff is allowed to hand out this benefit,
// a quota is configured, and finally the quota has room. The last two are
// re-verified inside the storage transaction.
func (s *service) Redeem(ctx context.Context, actor gate.Actor, req RedeemRequest) (*RedeemResponse, error) {
	benefit := BenefitType(req.BenefitType)
	if !benefit.IsValid() {
		return nil, apperrors.ErrNoEntitlement
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	guest, err := s.resolver.Resolve(ctx, actor.EventID, req.Guest)
	if err != nil {
		return nil, err
	}
	if !guest.IsCheckedIn() {
		return nil, apperrors.ErrNotCheckedIn
	}
	if !actor.CanRedeem(req.BenefitType) {
		return nil, apperrors.ErrPermissionDenied
	}

	redemption, remaining, err := s.repo.Redeem(ctx, RedeemParams{
		EventID:   actor.EventID,
		GuestID:   guest.ID,
		GuestType: guest.GuestType,
		Benefit:   benefit,
		Quantity:  quantity,
		ActorID:   actor.ID,
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		event := notifications.NewLifecycleEvent(notifications.EventBenefitRedeemed, actor.EventID, guest.ID, actor.ID)
		event.GuestName = guest.Name
		event.BenefitType = req.BenefitType
		event.Quantity = quantity
		if err := s.publisher.PublishLifecycleEvent(ctx, event); err != nil {
			// Delivery is best-effort; the ledger entry already committed.
			s.log.ErrorWithContext(ctx, "Failed to publish redemption event", err,
				map[string]interface{}{"guest_id": guest.ID.String()})
		}
	}
	s.log.LogRedemption(ctx, actor.EventID.String(), guest.ID.String(), actor.ID.String(), req.BenefitType, quantity)

	return &RedeemResponse{
		RedemptionID: redemption.ID,
		GuestID:      guest.ID,
		GuestName:    guest.Name,
		BenefitType:  req.BenefitType,
		Quantity:     quantity,
		Remaining:    remaining,
		RedeemedAt:   redemption.CreatedAt,
	}, nil
}

// Remaining reports the unconsumed balance without mutating anything. The
// value is advisory for concurrent callers; only Redeem's transaction is
// authoritative.
func (s *service) Remaining(ctx context.Context, eventID uuid.UUID, guestID string, benefit string) (*RemainingResponse, error) {
	benefitType := BenefitType(benefit)
	if !benefitType.IsValid() {
		return nil, apperrors.ErrNoEntitlement
	}
	guest, err := s.resolver.Resolve(ctx, eventID, guests.ResolveRef{GuestID: guestID})
	if err != nil {
		return nil, err
	}

	ent, err := s.repo.GetActiveEntitlement(ctx, eventID, guest.GuestType, benefitType)
	if err != nil {
		return nil, err
	}
	consumed, err := s.repo.SumRedemptions(ctx, guest.ID, benefitType)
	if err != nil {
		return nil, err
	}

	remaining := ent.MaxQuantity - consumed
	if remaining < 0 {
		remaining = 0
	}
	return &RemainingResponse{
		GuestID:     guest.ID,
		BenefitType: benefit,
		MaxQuantity: ent.MaxQuantity,
		Consumed:    consumed,
		Remaining:   remaining,
	}, nil
}

func (s *service) History(ctx context.Context, eventID uuid.UUID, guestID string, benefit string) ([]RedemptionResponse, error) {
	var guestFilter *uuid.UUID
	if guestID != "" {
		guest, err := s.resolver.Resolve(ctx, eventID, guests.ResolveRef{GuestID: guestID})
		if err != nil {
			return nil, err
		}
		guestFilter = &guest.ID
	}

	var benefitFilter *BenefitType
	if benefit != "" {
		benefitType := BenefitType(benefit)
		if !benefitType.IsValid() {
			return nil, apperrors.ErrNoEntitlement
		}
		benefitFilter = &benefitType
	}

	redemptions, err := s.repo.ListRedemptions(ctx, eventID, guestFilter, benefitFilter)
	if err != nil {
		return nil, err
	}
	responses := make([]RedemptionResponse, 0, len(redemptions))
	for i := range redemptions {
		responses = append(responses, redemptions[i].ToResponse())
	}
	return responses, nil
}

func (s *service) CreateEntitlement(ctx context.Context, eventID uuid.UUID, req CreateEntitlementRequest) (*EntitlementResponse, error) {
	ent := &Entitlement{
		EventID:     eventID,
		GuestType:   req.GuestType,
		BenefitType: BenefitType(req.BenefitType),
		MaxQuantity: req.MaxQuantity,
		Active:      true,
	}
	if err := s.repo.CreateEntitlement(ctx, ent); err != nil {
		return nil, err
	}
	resp := ent.ToResponse()
	return &resp, nil
}

func (s *service) ListEntitlements(ctx context.Context, eventID uuid.UUID) ([]EntitlementResponse, error) {
	ents, err := s.repo.ListEntitlements(ctx, eventID)
	if err != nil {
		return nil, err
	}
	responses := make([]EntitlementResponse, 0, len(ents))
	for i := range ents {
		responses = append(responses, ents[i].ToResponse())
	}
	return responses, nil
}

func (s *service) UpdateEntitlement(ctx context.Context, eventID uuid.UUID, id string, req UpdateEntitlementRequest) (*EntitlementResponse, error) {
	entID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}
	ent, err := s.repo.GetEntitlementByID(ctx, entID)
	if err != nil {
		return nil, err
	}
	if ent.EventID != eventID {
		return nil, apperrors.ErrNotFound
	}

	if req.MaxQuantity != nil {
		ent.MaxQuantity = *req.MaxQuantity
	}
	if req.Active != nil {
		ent.Active = *req.Active
	}
	if err := s.repo.UpdateEntitlement(ctx, ent); err != nil {
		return nil, err
	}
	resp := ent.ToResponse()
	return &resp, nil
}
