package guests

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wedly/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultSearchLimit = 10

type Service interface {
	// Registration
	CreateGuest(ctx context.Context, eventID uuid.UUID, req CreateGuestRequest) (*Guest, error)
	ImportGuests(ctx context.Context, eventID uuid.UUID, req ImportGuestsRequest) (*ImportResult, error)
	GetGuest(ctx context.Context, eventID uuid.UUID, id string) (*Guest, error)
	ListGuests(ctx context.Context, eventID uuid.UUID, limit, offset int) (*GuestListResponse, error)
	UpdateGuest(ctx context.Context, eventID uuid.UUID, id string, req UpdateGuestRequest) (*Guest, error)
	DeleteGuest(ctx context.Context, eventID uuid.UUID, id string) error

	// Identity resolution
	Resolve(ctx context.Context, eventID uuid.UUID, ref ResolveRef) (*Guest, error)
	Search(ctx context.Context, eventID uuid.UUID, query string, limit int) ([]Guest, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// REGISTRATION

func (s *service) CreateGuest(ctx context.Context, eventID uuid.UUID, req CreateGuestRequest) (*Guest, error) {
	guest := newGuestFromRequest(eventID, req)
	if err := s.repo.CreateGuest(ctx, guest); err != nil {
		return nil, apperrors.Storage("create guest", err)
	}
	return guest, nil
}

func (s *service) ImportGuests(ctx context.Context, eventID uuid.UUID, req ImportGuestsRequest) (*ImportResult, error) {
	batch := make([]Guest, 0, len(req.Guests))
	for _, g := range req.Guests {
		batch = append(batch, *newGuestFromRequest(eventID, g))
	}
	if err := s.repo.CreateGuests(ctx, batch); err != nil {
		return nil, apperrors.Storage("import guests", err)
	}
	return &ImportResult{Imported: len(batch)}, nil
}

func (s *service) GetGuest(ctx context.Context, eventID uuid.UUID, id string) (*Guest, error) {
	guestID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid guest ID: %w", err)
	}
	return s.getScoped(ctx, eventID, guestID)
}

func (s *service) ListGuests(ctx context.Context, eventID uuid.UUID, limit, offset int) (*GuestListResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	guests, total, err := s.repo.ListGuests(ctx, eventID, limit, offset)
	if err != nil {
		return nil, apperrors.Storage("list guests", err)
	}

	return &GuestListResponse{
		Guests: ToResponses(guests),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (s *service) UpdateGuest(ctx context.Context, eventID uuid.UUID, id string, req UpdateGuestRequest) (*Guest, error) {
	guestID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid guest ID: %w", err)
	}

	if _, err := s.getScoped(ctx, eventID, guestID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.GuestType != nil {
		updates["guest_type"] = normalizeGuestType(*req.GuestType)
	}
	if req.MaxCompanions != nil {
		updates["max_companions"] = *req.MaxCompanions
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateGuest(ctx, guestID, updates); err != nil {
			return nil, apperrors.Storage("update guest", err)
		}
	}

	return s.getScoped(ctx, eventID, guestID)
}

func (s *service) DeleteGuest(ctx context.Context, eventID uuid.UUID, id string) error {
	guestID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid guest ID: %w", err)
	}

	if _, err := s.getScoped(ctx, eventID, guestID); err != nil {
		return err
	}

	// Soft delete only: redemption and check-in history keeps referencing
	// the tombstoned row.
	if err := s.repo.SoftDeleteGuest(ctx, guestID); err != nil {
		return apperrors.Storage("delete guest", err)
	}
	return nil
}

// IDENTITY RESOLUTION

// Resolve turns a guest reference (direct id, scan code, or free-text query)
// into exactly one guest. A query matching several guests returns
// AmbiguousMatchError with the ordered candidate list; the caller re-invokes
// with a chosen guest id. Pure read, no side effects.
func (s *service) Resolve(ctx context.Context, eventID uuid.UUID, ref ResolveRef) (*Guest, error) {
	switch {
	case ref.GuestID != "":
		guestID, err := uuid.Parse(ref.GuestID)
		if err != nil {
			return nil, fmt.Errorf("invalid guest ID: %w", err)
		}
		return s.getScoped(ctx, eventID, guestID)

	case ref.ScanCode != "":
		guest, err := s.repo.GetGuestByScanCode(ctx, eventID, ref.ScanCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrNotFound
			}
			return nil, apperrors.Storage("scan code lookup", err)
		}
		return guest, nil

	case ref.Query != "":
		matches, err := s.Search(ctx, eventID, ref.Query, defaultSearchLimit)
		if err != nil {
			return nil, err
		}
		switch len(matches) {
		case 0:
			return nil, apperrors.ErrNotFound
		case 1:
			return &matches[0], nil
		default:
			ambiguous := &apperrors.AmbiguousMatchError{Query: ref.Query}
			for i := range matches {
				ambiguous.Candidates = append(ambiguous.Candidates, matches[i].ToCandidate())
			}
			return nil, ambiguous
		}

	default:
		return nil, fmt.Errorf("guest reference required: provide guest_id, scan_code or query")
	}
}

func (s *service) Search(ctx context.Context, eventID uuid.UUID, query string, limit int) ([]Guest, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultSearchLimit
	}
	guests, err := s.repo.SearchGuests(ctx, eventID, strings.TrimSpace(query), limit)
	if err != nil {
		return nil, apperrors.Storage("guest search", err)
	}
	return guests, nil
}

// getScoped loads a guest and hides guests of other events behind NotFound.
func (s *service) getScoped(ctx context.Context, eventID, guestID uuid.UUID) (*Guest, error) {
	guest, err := s.repo.GetGuestByID(ctx, guestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Storage("get guest", err)
	}
	if guest.EventID != eventID {
		return nil, apperrors.ErrNotFound
	}
	return guest, nil
}

func newGuestFromRequest(eventID uuid.UUID, req CreateGuestRequest) *Guest {
	code := uuid.NewString()
	return &Guest{
		EventID:       eventID,
		Name:          strings.TrimSpace(req.Name),
		Phone:         req.Phone,
		Email:         req.Email,
		GuestType:     normalizeGuestType(req.GuestType),
		MaxCompanions: req.MaxCompanions,
		Status:        StatusNotArrived,
		ScanCode:      &code,
	}
}

func normalizeGuestType(guestType string) string {
	guestType = strings.ToUpper(strings.TrimSpace(guestType))
	if guestType == "" {
		return "REGULAR"
	}
	return guestType
}
