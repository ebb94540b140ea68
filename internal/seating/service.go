package seating

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wedly/internal/shared/gate"
	"wedly/pkg/apperrors"
	"wedly/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventLocker is the per-event exclusion lock held for the whole auto-assign
// pass. Satisfied by lock.Manager.
type EventLocker interface {
	Acquire(ctx context.Context, eventID string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, eventID, token string) error
	IsHeld(ctx context.Context, eventID string) (bool, error)
}

type Service interface {
	// Resource management
	CreateResource(ctx context.Context, eventID uuid.UUID, req CreateResourceRequest) (*SeatingResource, error)
	GetResource(ctx context.Context, eventID uuid.UUID, id string) (*ResourceResponse, error)
	ListResources(ctx context.Context, eventID uuid.UUID) ([]ResourceResponse, error)
	UpdateResource(ctx context.Context, eventID uuid.UUID, id string, req UpdateResourceRequest) (*SeatingResource, error)

	// Assignment
	Assign(ctx context.Context, actor gate.Actor, req AssignRequest) error
	Unassign(ctx context.Context, actor gate.Actor, req UnassignRequest) error
	Availability(ctx context.Context, eventID uuid.UUID, resourceID string) (*AvailabilityResponse, error)
	AutoAssign(ctx context.Context, actor gate.Actor) (*AutoAssignResponse, error)
}

type service struct {
	repo    Repository
	locks   EventLocker
	lockTTL time.Duration
	log     *logger.Logger
}

func NewService(repo Repository, locks EventLocker, lockTTL time.Duration, log *logger.Logger) Service {
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return &service{
		repo:    repo,
		locks:   locks,
		lockTTL: lockTTL,
		log:     log,
	}
}

// RESOURCE MANAGEMENT

func (s *service) CreateResource(ctx context.Context, eventID uuid.UUID, req CreateResourceRequest) (*SeatingResource, error) {
	resource := &SeatingResource{
		EventID:      eventID,
		Name:         req.Name,
		Capacity:     req.Capacity,
		AllowedTypes: req.AllowedTypes,
		Active:       true,
		SortOrder:    req.SortOrder,
	}
	if err := s.repo.CreateResource(ctx, resource); err != nil {
		return nil, apperrors.Storage("create seating resource", err)
	}
	return resource, nil
}

func (s *service) GetResource(ctx context.Context, eventID uuid.UUID, id string) (*ResourceResponse, error) {
	resource, err := s.getScopedResource(ctx, eventID, id)
	if err != nil {
		return nil, err
	}

	occupied, err := s.repo.OccupantCount(ctx, resource.ID)
	if err != nil {
		return nil, apperrors.Storage("count occupants", err)
	}

	resp := resource.ToResponse(int(occupied))
	return &resp, nil
}

func (s *service) ListResources(ctx context.Context, eventID uuid.UUID) ([]ResourceResponse, error) {
	resources, err := s.repo.ListResources(ctx, eventID)
	if err != nil {
		return nil, apperrors.Storage("list seating resources", err)
	}

	counts, err := s.repo.OccupantCounts(ctx, eventID)
	if err != nil {
		return nil, apperrors.Storage("count occupants", err)
	}

	responses := make([]ResourceResponse, 0, len(resources))
	for i := range resources {
		responses = append(responses, resources[i].ToResponse(counts[resources[i].ID]))
	}
	return responses, nil
}

func (s *service) UpdateResource(ctx context.Context, eventID uuid.UUID, id string, req UpdateResourceRequest) (*SeatingResource, error) {
	resource, err := s.getScopedResource(ctx, eventID, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Capacity != nil {
		updates["capacity"] = *req.Capacity
	}
	if req.AllowedTypes != nil {
		updates["allowed_types"] = *req.AllowedTypes
	}
	if req.Active != nil {
		// Deactivation, never deletion: already-seated guests keep their
		// seats, the resource just stops receiving auto-assignments.
		updates["active"] = *req.Active
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateResource(ctx, resource.ID, updates); err != nil {
			return nil, apperrors.Storage("update seating resource", err)
		}
	}

	return s.getScopedResource(ctx, eventID, id)
}

// ASSIGNMENT

// Assign seats one guest manually. Rejected while an auto-assign pass holds
// the event lock so the pass's capacity snapshot stays authoritative.
func (s *service) Assign(ctx context.Context, actor gate.Actor, req AssignRequest) error {
	if !actor.Can(gate.CapCheckIn) {
		return apperrors.ErrPermissionDenied
	}

	if err := s.rejectWhilePassRuns(ctx, actor.EventID); err != nil {
		return err
	}

	guestID, err := uuid.Parse(req.GuestID)
	if err != nil {
		return fmt.Errorf("invalid guest ID: %w", err)
	}
	resourceID, err := uuid.Parse(req.ResourceID)
	if err != nil {
		return fmt.Errorf("invalid resource ID: %w", err)
	}

	if err := s.repo.AssignGuest(ctx, actor.EventID, guestID, resourceID); err != nil {
		var capacityErr *apperrors.CapacityError
		if errors.Is(err, apperrors.ErrNotFound) ||
			errors.Is(err, apperrors.ErrResourceNotFound) ||
			errors.Is(err, apperrors.ErrTypeNotAllowed) ||
			errors.As(err, &capacityErr) {
			return err
		}
		return apperrors.Storage("assign seat", err)
	}
	return nil
}

func (s *service) Unassign(ctx context.Context, actor gate.Actor, req UnassignRequest) error {
	if !actor.Can(gate.CapCheckIn) {
		return apperrors.ErrPermissionDenied
	}

	if err := s.rejectWhilePassRuns(ctx, actor.EventID); err != nil {
		return err
	}

	guestID, err := uuid.Parse(req.GuestID)
	if err != nil {
		return fmt.Errorf("invalid guest ID: %w", err)
	}

	if err := s.repo.UnassignGuest(ctx, actor.EventID, guestID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return apperrors.Storage("unassign seat", err)
	}
	return nil
}

func (s *service) Availability(ctx context.Context, eventID uuid.UUID, resourceID string) (*AvailabilityResponse, error) {
	resource, err := s.getScopedResource(ctx, eventID, resourceID)
	if err != nil {
		return nil, err
	}

	occupied, err := s.repo.OccupantCount(ctx, resource.ID)
	if err != nil {
		return nil, apperrors.Storage("count occupants", err)
	}

	return &AvailabilityResponse{
		ResourceID: resource.ID.String(),
		Capacity:   resource.Capacity,
		Occupied:   int(occupied),
		Remaining:  resource.Capacity - int(occupied),
		Active:     resource.Active,
	}, nil
}

// AutoAssign runs the bulk first-fit pass over every unassigned guest of the
// actor's event. The whole pass holds the per-event exclusion lock; a second
// trigger while one runs gets ErrAssignmentInProgress. Guests with no
// eligible resource are reported, never errored.
func (s *service) AutoAssign(ctx context.Context, actor gate.Actor) (*AutoAssignResponse, error) {
	if !actor.IsOwner() {
		return nil, apperrors.ErrPermissionDenied
	}

	eventID := actor.EventID
	started := time.Now()

	token, ok, err := s.locks.Acquire(ctx, eventID.String(), s.lockTTL)
	if err != nil {
		return nil, apperrors.Storage("acquire assignment lock", err)
	}
	if !ok {
		return nil, apperrors.ErrAssignmentInProgress
	}
	defer func() {
		if err := s.locks.Release(context.WithoutCancel(ctx), eventID.String(), token); err != nil {
			s.log.ErrorWithContext(ctx, "Failed to release assignment lock", err,
				map[string]interface{}{"event_id": eventID.String()})
		}
	}()

	resources, err := s.repo.ListActiveResources(ctx, eventID)
	if err != nil {
		return nil, apperrors.Storage("list seating resources", err)
	}

	// One snapshot for the whole pass.
	occupied, err := s.repo.OccupantCounts(ctx, eventID)
	if err != nil {
		return nil, apperrors.Storage("count occupants", err)
	}

	candidates, err := s.repo.ListUnassignedGuests(ctx, eventID)
	if err != nil {
		return nil, apperrors.Storage("list unassigned guests", err)
	}

	plan, outcomes := firstFitPass(resources, occupied, candidates)

	applied, rejected, skipped, err := s.repo.BulkAssign(ctx, plan)
	if err != nil {
		return nil, apperrors.Storage("apply assignments", err)
	}

	// Entries the commit-time recount pushed out revert to unassigned, and
	// guests seated manually between snapshot and commit report as such.
	if len(rejected) > 0 || len(skipped) > 0 {
		reasonByGuest := make(map[uuid.UUID]string, len(rejected)+len(skipped))
		for _, p := range rejected {
			reasonByGuest[p.GuestID] = ReasonNoCapacity
		}
		for _, p := range skipped {
			reasonByGuest[p.GuestID] = ReasonAlreadySeated
		}
		for i := range outcomes {
			if id, err := uuid.Parse(outcomes[i].GuestID); err == nil && reasonByGuest[id] != "" {
				outcomes[i].Assigned = false
				outcomes[i].ResourceID = ""
				outcomes[i].ResourceName = ""
				outcomes[i].Reason = reasonByGuest[id]
			}
		}
	}

	resp := &AutoAssignResponse{
		TotalCandidates: len(candidates),
		AssignedCount:   len(applied),
		UnassignedCount: len(candidates) - len(applied) - len(skipped),
		Outcomes:        outcomes,
	}

	s.log.LogAutoAssign(ctx, eventID.String(), resp.AssignedCount, resp.UnassignedCount, time.Since(started))
	return resp, nil
}

func (s *service) rejectWhilePassRuns(ctx context.Context, eventID uuid.UUID) error {
	if s.locks == nil {
		return nil
	}
	held, err := s.locks.IsHeld(ctx, eventID.String())
	if err != nil {
		return apperrors.Storage("probe assignment lock", err)
	}
	if held {
		return apperrors.ErrAssignmentInProgress
	}
	return nil
}

func (s *service) getScopedResource(ctx context.Context, eventID uuid.UUID, id string) (*SeatingResource, error) {
	resourceID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid resource ID: %w", err)
	}

	resource, err := s.repo.GetResourceByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, apperrors.Storage("get seating resource", err)
	}
	if resource.EventID != eventID {
		return nil, apperrors.ErrResourceNotFound
	}
	return resource, nil
}
