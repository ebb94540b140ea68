package checkin

import (
	"context"
	"math"
	"time"

	"wedly/internal/guests"
	"wedly/internal/notifications"
	"wedly/internal/shared/gate"
	"wedly/pkg/apperrors"
	"wedly/pkg/cache"
	"wedly/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	CheckIn(ctx context.Context, actor gate.Actor, req CheckInRequest) (*CheckInResponse, error)
	UndoCheckIn(ctx context.Context, actor gate.Actor, req UndoCheckInRequest) (*guests.GuestResponse, error)
	Stats(ctx context.Context, eventID uuid.UUID) (*StatsResponse, error)
	Search(ctx context.Context, eventID uuid.UUID, query string, limit int) ([]guests.GuestResponse, error)

	// SetCacheService enables stats caching; optional.
	SetCacheService(cacheService cache.Service, ttl time.Duration)
}

type service struct {
	repo      Repository
	resolver  guests.Service
	publisher notifications.Publisher
	cache     cache.Service
	statsTTL  time.Duration
	log       *logger.Logger
}

func NewService(repo Repository, resolver guests.Service, publisher notifications.Publisher, log *logger.Logger) Service {
	return &service{
		repo:      repo,
		resolver:  resolver,
		publisher: publisher,
		statsTTL:  10 * time.Second,
		log:       log,
	}
}

// SetCacheService enables stats caching. Optional: without it every stats
// read hits the database.
func (s *service) SetCacheService(cacheService cache.Service, ttl time.Duration) {
	s.cache = cacheService
	if ttl > 0 {
		s.statsTTL = ttl
	}
}

// CheckIn advances a guest from NOT_ARRIVED to CHECKED_IN at most once.
// Under concurrent duplicate scans exactly one caller succeeds; the rest
// receive ErrAlreadyCheckedIn as the idempotency signal.
func (s *service) CheckIn(ctx context.Context, actor gate.Actor, req CheckInRequest) (*CheckInResponse, error) {
	if !actor.Can(gate.CapCheckIn) {
		return nil, apperrors.ErrPermissionDenied
	}

	guest, err := s.resolver.Resolve(ctx, actor.EventID, guests.ResolveRef{
		GuestID:  req.GuestID,
		ScanCode: req.ScanCode,
		Query:    req.Query,
	})
	if err != nil {
		return nil, err
	}

	if !guest.Status.CanCheckIn() {
		return nil, apperrors.ErrAlreadyCheckedIn
	}

	if req.CompanionCount > guest.MaxCompanions {
		return nil, &apperrors.CompanionLimitError{
			Limit:     guest.MaxCompanions,
			Requested: req.CompanionCount,
		}
	}

	now := time.Now().UTC()
	updated, err := s.repo.MarkCheckedIn(ctx, guest.ID, req.CompanionCount, req.Note, now)
	if err != nil {
		return nil, apperrors.Storage("check-in", err)
	}
	if !updated {
		// Lost the race against another device scanning the same guest.
		return nil, apperrors.ErrAlreadyCheckedIn
	}

	guest.Status = guests.StatusCheckedIn
	guest.CompanionCount = req.CompanionCount
	guest.CheckinNote = req.Note
	guest.CheckedInAt = &now

	s.invalidateStats(ctx, actor.EventID)
	s.publish(ctx, guest, actor, req.CompanionCount)
	s.log.LogCheckIn(ctx, actor.EventID.String(), guest.ID.String(), actor.ID.String(), req.CompanionCount)

	return &CheckInResponse{
		Guest:          guest.ToResponse(),
		CheckedInAt:    now,
		CompanionCount: req.CompanionCount,
	}, nil
}

// UndoCheckIn is a distinct administrative action, not a state machine
// transition: owner-only, logged, and published for the audit trail.
func (s *service) UndoCheckIn(ctx context.Context, actor gate.Actor, req UndoCheckInRequest) (*guests.GuestResponse, error) {
	if !actor.IsOwner() {
		return nil, apperrors.ErrPermissionDenied
	}

	guest, err := s.resolver.Resolve(ctx, actor.EventID, guests.ResolveRef{GuestID: req.GuestID})
	if err != nil {
		return nil, err
	}

	reversed, err := s.repo.UndoCheckIn(ctx, guest.ID)
	if err != nil {
		return nil, apperrors.Storage("undo check-in", err)
	}
	if !reversed {
		return nil, apperrors.ErrNotCheckedIn
	}

	guest.Status = guests.StatusNotArrived
	guest.CompanionCount = 0
	guest.CheckedInAt = nil

	s.invalidateStats(ctx, actor.EventID)
	if s.publisher != nil {
		event := notifications.NewLifecycleEvent(notifications.EventCheckInUndone, actor.EventID, guest.ID, actor.ID)
		event.GuestName = guest.Name
		if err := s.publisher.PublishLifecycleEvent(ctx, event); err != nil {
			s.log.ErrorWithContext(ctx, "Failed to publish undo event", err,
				map[string]interface{}{"guest_id": guest.ID.String()})
		}
	}
	s.log.LogCheckInUndone(ctx, actor.EventID.String(), guest.ID.String(), actor.ID.String())

	resp := guest.ToResponse()
	return &resp, nil
}

// Stats returns arrival progress for the event, cached briefly since every
// staff device polls it.
func (s *service) Stats(ctx context.Context, eventID uuid.UUID) (*StatsResponse, error) {
	fetch := func() (interface{}, error) {
		total, checkedIn, err := s.repo.CheckinCounts(ctx, eventID)
		if err != nil {
			return nil, apperrors.Storage("check-in stats", err)
		}
		return buildStats(total, checkedIn), nil
	}

	if s.cache == nil {
		stats, err := fetch()
		if err != nil {
			return nil, err
		}
		return stats.(*StatsResponse), nil
	}

	var stats StatsResponse
	if err := s.cache.GetOrSet(ctx, cache.CheckinStatsKey(eventID.String()), s.statsTTL, fetch, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *service) Search(ctx context.Context, eventID uuid.UUID, query string, limit int) ([]guests.GuestResponse, error) {
	matches, err := s.resolver.Search(ctx, eventID, query, limit)
	if err != nil {
		return nil, err
	}
	return guests.ToResponses(matches), nil
}

func buildStats(total, checkedIn int64) *StatsResponse {
	rate := 0
	if total > 0 {
		rate = int(math.Round(float64(checkedIn) / float64(total) * 100))
	}
	return &StatsResponse{
		Total:        total,
		CheckedIn:    checkedIn,
		NotCheckedIn: total - checkedIn,
		Rate:         rate,
	}
}

func (s *service) invalidateStats(ctx context.Context, eventID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.CheckinStatsKey(eventID.String())); err != nil {
		s.log.ErrorWithContext(ctx, "Failed to invalidate stats cache", err,
			map[string]interface{}{"event_id": eventID.String()})
	}
}

func (s *service) publish(ctx context.Context, guest *guests.Guest, actor gate.Actor, companions int) {
	if s.publisher == nil {
		return
	}
	event := notifications.NewLifecycleEvent(notifications.EventGuestCheckedIn, actor.EventID, guest.ID, actor.ID)
	event.GuestName = guest.Name
	event.Companions = companions
	if err := s.publisher.PublishLifecycleEvent(ctx, event); err != nil {
		// Delivery is best-effort; the check-in itself already committed.
		s.log.ErrorWithContext(ctx, "Failed to publish check-in event", err,
			map[string]interface{}{"guest_id": guest.ID.String()})
	}
}
