package guests

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"wedly/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memRepo is an in-memory Repository that mirrors the SQL ordering rules so
// resolver behavior can be tested without a database.
type memRepo struct {
	mu     sync.Mutex
	guests map[uuid.UUID]*Guest
}

func newMemRepo() *memRepo {
	return &memRepo{guests: make(map[uuid.UUID]*Guest)}
}

func (r *memRepo) CreateGuest(ctx context.Context, guest *Guest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if guest.ID == uuid.Nil {
		guest.ID = uuid.New()
	}
	copied := *guest
	r.guests[guest.ID] = &copied
	return nil
}

func (r *memRepo) CreateGuests(ctx context.Context, batch []Guest) error {
	for i := range batch {
		if err := r.CreateGuest(ctx, &batch[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *memRepo) GetGuestByID(ctx context.Context, id uuid.UUID) (*Guest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	guest, ok := r.guests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *guest
	return &copied, nil
}

func (r *memRepo) ListGuests(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]Guest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []Guest
	for _, g := range r.guests {
		if g.EventID == eventID {
			all = append(all, *g)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *memRepo) UpdateGuest(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	guest, ok := r.guests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["name"]; ok {
		guest.Name = v.(string)
	}
	if v, ok := updates["guest_type"]; ok {
		guest.GuestType = v.(string)
	}
	if v, ok := updates["max_companions"]; ok {
		guest.MaxCompanions = v.(int)
	}
	return nil
}

func (r *memRepo) SoftDeleteGuest(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.guests, id)
	return nil
}

func (r *memRepo) GetGuestByScanCode(ctx context.Context, eventID uuid.UUID, code string) (*Guest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.guests {
		if g.EventID == eventID && g.ScanCode != nil && *g.ScanCode == code {
			copied := *g
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRepo) SearchGuests(ctx context.Context, eventID uuid.UUID, query string, limit int) ([]Guest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	needle := strings.ToLower(query)
	var matches []Guest
	for _, g := range r.guests {
		if g.EventID != eventID {
			continue
		}
		if strings.Contains(strings.ToLower(g.Name), needle) ||
			strings.Contains(strings.ToLower(g.Phone), needle) ||
			strings.Contains(strings.ToLower(g.Email), needle) {
			matches = append(matches, *g)
		}
	}
	// Un-checked-in first, then alphabetical.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].IsCheckedIn() != matches[j].IsCheckedIn() {
			return !matches[i].IsCheckedIn()
		}
		return matches[i].Name < matches[j].Name
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func seedGuest(t *testing.T, repo *memRepo, eventID uuid.UUID, name, guestType string, status Status) *Guest {
	t.Helper()
	code := uuid.NewString()
	guest := &Guest{
		EventID:   eventID,
		Name:      name,
		GuestType: guestType,
		Status:    status,
		ScanCode:  &code,
	}
	require.NoError(t, repo.CreateGuest(context.Background(), guest))
	return guest
}

func TestCreateGuestAssignsScanCodeAndDefaults(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	eventID := uuid.New()

	guest, err := svc.CreateGuest(context.Background(), eventID, CreateGuestRequest{Name: "  Asha Patel  "})
	require.NoError(t, err)

	assert.Equal(t, "Asha Patel", guest.Name)
	assert.Equal(t, "REGULAR", guest.GuestType)
	assert.Equal(t, StatusNotArrived, guest.Status)
	require.NotNil(t, guest.ScanCode)
	assert.NotEmpty(t, *guest.ScanCode)
}

func TestResolveByGuestID(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	eventID := uuid.New()
	guest := seedGuest(t, repo, eventID, "Asha Patel", "FAMILY", StatusNotArrived)

	resolved, err := svc.Resolve(context.Background(), eventID, ResolveRef{GuestID: guest.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, guest.ID, resolved.ID)
}

func TestResolveByScanCode(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	eventID := uuid.New()
	guest := seedGuest(t, repo, eventID, "Asha Patel", "FAMILY", StatusNotArrived)

	resolved, err := svc.Resolve(context.Background(), eventID, ResolveRef{ScanCode: *guest.ScanCode})
	require.NoError(t, err)
	assert.Equal(t, guest.ID, resolved.ID)

	_, err = svc.Resolve(context.Background(), eventID, ResolveRef{ScanCode: "unknown-code"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestResolveHidesOtherEvents(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	guest := seedGuest(t, repo, uuid.New(), "Asha Patel", "FAMILY", StatusNotArrived)

	otherEvent := uuid.New()
	_, err := svc.Resolve(context.Background(), otherEvent, ResolveRef{GuestID: guest.ID.String()})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestResolveQuerySingleMatch(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	eventID := uuid.New()
	guest := seedGuest(t, repo, eventID, "Asha Patel", "FAMILY", StatusNotArrived)
	seedGuest(t, repo, eventID, "Kabir Shah", "REGULAR", StatusNotArrived)

	resolved, err := svc.Resolve(context.Background(), eventID, ResolveRef{Query: "asha"})
	require.NoError(t, err)
	assert.Equal(t, guest.ID, resolved.ID)
}

func TestResolveQueryNoMatch(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	eventID := uuid.New()
	seedGuest(t, repo, eventID, "Asha Patel", "FAMILY", StatusNotArrived)

	_, err := svc.Resolve(context.Background(), eventID, ResolveRef{Query: "zz"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestResolveQueryAmbiguousOrdersUncheckedFirst(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	eventID := uuid.New()

	// Alphabetically first but already arrived: must sort behind the two
	// still-expected guests with the same surname.
	seedGuest(t, repo, eventID, "Asha Patel", "FAMILY", StatusCheckedIn)
	seedGuest(t, repo, eventID, "Rohan Patel", "FAMILY", StatusNotArrived)
	seedGuest(t, repo, eventID, "Zara Patel", "REGULAR", StatusNotArrived)

	_, err := svc.Resolve(context.Background(), eventID, ResolveRef{Query: "patel"})
	require.Error(t, err)

	var ambiguous *apperrors.AmbiguousMatchError
	require.True(t, errors.As(err, &ambiguous))
	require.Len(t, ambiguous.Candidates, 3)
	assert.Equal(t, "Rohan Patel", ambiguous.Candidates[0].Name)
	assert.Equal(t, "Zara Patel", ambiguous.Candidates[1].Name)
	assert.Equal(t, "Asha Patel", ambiguous.Candidates[2].Name)
	assert.True(t, ambiguous.Candidates[2].CheckedIn)
}

func TestResolveRequiresReference(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	_, err := svc.Resolve(context.Background(), uuid.New(), ResolveRef{})
	assert.Error(t, err)
}

func TestImportGuests(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	eventID := uuid.New()

	result, err := svc.ImportGuests(context.Background(), eventID, ImportGuestsRequest{
		Guests: []CreateGuestRequest{
			{Name: "Asha Patel", GuestType: "family"},
			{Name: "Kabir Shah"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)

	matches, err := svc.Search(context.Background(), eventID, "asha", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "FAMILY", matches[0].GuestType)
}

func TestUpdateGuestScopedToEvent(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	eventID := uuid.New()
	guest := seedGuest(t, repo, eventID, "Asha Patel", "FAMILY", StatusNotArrived)

	newType := "vip"
	updated, err := svc.UpdateGuest(context.Background(), eventID, guest.ID.String(), UpdateGuestRequest{GuestType: &newType})
	require.NoError(t, err)
	assert.Equal(t, "VIP", updated.GuestType)

	_, err = svc.UpdateGuest(context.Background(), uuid.New(), guest.ID.String(), UpdateGuestRequest{GuestType: &newType})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
