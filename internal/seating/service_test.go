package seating

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wedly/internal/guests"
	"wedly/internal/shared/gate"
	"wedly/pkg/apperrors"
	"wedly/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memSeatingRepo reproduces the storage layer's locking semantics with one
// mutex: assignment checks and writes happen under the same critical section,
// exactly as the row-locked transaction does.
type memSeatingRepo struct {
	mu        sync.Mutex
	resources map[uuid.UUID]*SeatingResource
	guests    map[uuid.UUID]*guests.Guest
	order     []uuid.UUID // guest creation order

	// beforeBulk, when set, runs at the top of BulkAssign. Tests use it to
	// interleave a manual write between snapshot and commit.
	beforeBulk func()
}

func newMemSeatingRepo() *memSeatingRepo {
	return &memSeatingRepo{
		resources: make(map[uuid.UUID]*SeatingResource),
		guests:    make(map[uuid.UUID]*guests.Guest),
	}
}

func (r *memSeatingRepo) addGuest(eventID uuid.UUID, name, guestType string) *guests.Guest {
	r.mu.Lock()
	defer r.mu.Unlock()
	guest := &guests.Guest{
		ID:        uuid.New(),
		EventID:   eventID,
		Name:      name,
		GuestType: guestType,
	}
	r.guests[guest.ID] = guest
	r.order = append(r.order, guest.ID)
	return guest
}

func (r *memSeatingRepo) CreateResource(ctx context.Context, resource *SeatingResource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if resource.ID == uuid.Nil {
		resource.ID = uuid.New()
	}
	copied := *resource
	r.resources[resource.ID] = &copied
	return nil
}

func (r *memSeatingRepo) GetResourceByID(ctx context.Context, id uuid.UUID) (*SeatingResource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	resource, ok := r.resources[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *resource
	return &copied, nil
}

func (r *memSeatingRepo) ListResources(ctx context.Context, eventID uuid.UUID) ([]SeatingResource, error) {
	return r.listResources(eventID, false), nil
}

func (r *memSeatingRepo) ListActiveResources(ctx context.Context, eventID uuid.UUID) ([]SeatingResource, error) {
	return r.listResources(eventID, true), nil
}

func (r *memSeatingRepo) listResources(eventID uuid.UUID, activeOnly bool) []SeatingResource {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []SeatingResource
	for _, resource := range r.resources {
		if resource.EventID != eventID {
			continue
		}
		if activeOnly && !resource.Active {
			continue
		}
		out = append(out, *resource)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].SortOrder < out[i].SortOrder {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

func (r *memSeatingRepo) UpdateResource(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	resource, ok := r.resources[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["active"]; ok {
		resource.Active = v.(bool)
	}
	if v, ok := updates["capacity"]; ok {
		resource.Capacity = v.(int)
	}
	if v, ok := updates["name"]; ok {
		resource.Name = v.(string)
	}
	return nil
}

func (r *memSeatingRepo) OccupantCount(ctx context.Context, resourceID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(r.occupantsLocked(resourceID)), nil
}

func (r *memSeatingRepo) occupantsLocked(resourceID uuid.UUID) int {
	count := 0
	for _, g := range r.guests {
		if g.SeatingResourceID != nil && *g.SeatingResourceID == resourceID {
			count++
		}
	}
	return count
}

func (r *memSeatingRepo) OccupantCounts(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[uuid.UUID]int)
	for _, g := range r.guests {
		if g.EventID == eventID && g.SeatingResourceID != nil {
			counts[*g.SeatingResourceID]++
		}
	}
	return counts, nil
}

func (r *memSeatingRepo) AssignGuest(ctx context.Context, eventID, guestID, resourceID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	resource, ok := r.resources[resourceID]
	if !ok || resource.EventID != eventID {
		return apperrors.ErrResourceNotFound
	}
	guest, ok := r.guests[guestID]
	if !ok || guest.EventID != eventID {
		return apperrors.ErrNotFound
	}
	if guest.SeatingResourceID != nil && *guest.SeatingResourceID == resourceID {
		return nil
	}
	if !resource.Allows(guest.GuestType) {
		return apperrors.ErrTypeNotAllowed
	}
	if r.occupantsLocked(resourceID) >= resource.Capacity {
		return &apperrors.CapacityError{ResourceID: resourceID.String(), Capacity: resource.Capacity}
	}
	id := resourceID
	guest.SeatingResourceID = &id
	return nil
}

func (r *memSeatingRepo) UnassignGuest(ctx context.Context, eventID, guestID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	guest, ok := r.guests[guestID]
	if !ok || guest.EventID != eventID {
		return apperrors.ErrNotFound
	}
	guest.SeatingResourceID = nil
	return nil
}

func (r *memSeatingRepo) ListUnassignedGuests(ctx context.Context, eventID uuid.UUID) ([]guests.Guest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []guests.Guest
	for _, id := range r.order {
		g := r.guests[id]
		if g.EventID == eventID && g.SeatingResourceID == nil {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *memSeatingRepo) BulkAssign(ctx context.Context, plan []PlannedAssignment) ([]PlannedAssignment, []PlannedAssignment, []PlannedAssignment, error) {
	if r.beforeBulk != nil {
		r.beforeBulk()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	remaining := make(map[uuid.UUID]int)
	var applied, rejected, skipped []PlannedAssignment
	for _, p := range plan {
		if _, seen := remaining[p.ResourceID]; !seen {
			resource := r.resources[p.ResourceID]
			remaining[p.ResourceID] = resource.Capacity - r.occupantsLocked(p.ResourceID)
		}
		if remaining[p.ResourceID] <= 0 {
			rejected = append(rejected, p)
			continue
		}
		guest := r.guests[p.GuestID]
		if guest.SeatingResourceID != nil {
			skipped = append(skipped, p)
			continue
		}
		id := p.ResourceID
		guest.SeatingResourceID = &id
		remaining[p.ResourceID]--
		applied = append(applied, p)
	}
	return applied, rejected, skipped, nil
}

// memLocker is a token-checked in-process event lock.
type memLocker struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemLocker() *memLocker {
	return &memLocker{tokens: make(map[string]string)}
}

func (l *memLocker) Acquire(ctx context.Context, eventID string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.tokens[eventID]; held {
		return "", false, nil
	}
	token := uuid.NewString()
	l.tokens[eventID] = token
	return token, true, nil
}

func (l *memLocker) Release(ctx context.Context, eventID, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.tokens[eventID] == token {
		delete(l.tokens, eventID)
	}
	return nil
}

func (l *memLocker) IsHeld(ctx context.Context, eventID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, held := l.tokens[eventID]
	return held, nil
}

func newSeatingService(repo Repository, locks EventLocker) Service {
	return NewService(repo, locks, 30*time.Second, logger.GetDefault())
}

func seatingStaff(eventID uuid.UUID) gate.Actor {
	return gate.Actor{
		ID:      uuid.New(),
		Kind:    gate.KindStaff,
		EventID: eventID,
		Capabilities: map[gate.Capability]bool{
			gate.CapCheckIn: true,
		},
	}
}

func seatingOwner(eventID uuid.UUID) gate.Actor {
	return gate.Actor{ID: uuid.New(), Kind: gate.KindOwner, EventID: eventID}
}

func TestAssignEnforcesCapacityUnderConcurrency(t *testing.T) {
	repo := newMemSeatingRepo()
	svc := newSeatingService(repo, newMemLocker())
	eventID := uuid.New()

	table := &SeatingResource{EventID: eventID, Name: "Table 1", Capacity: 5, Active: true}
	require.NoError(t, repo.CreateResource(context.Background(), table))

	var guestIDs []uuid.UUID
	for i := 0; i < 10; i++ {
		guestIDs = append(guestIDs, repo.addGuest(eventID, "Guest", "REGULAR").ID)
	}

	actor := seatingStaff(eventID)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var seated, full int

	for _, guestID := range guestIDs {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			err := svc.Assign(context.Background(), actor, AssignRequest{
				GuestID:    id.String(),
				ResourceID: table.ID.String(),
			})
			mu.Lock()
			defer mu.Unlock()
			var capacityErr *apperrors.CapacityError
			switch {
			case err == nil:
				seated++
			case errors.As(err, &capacityErr):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(guestID)
	}
	wg.Wait()

	assert.Equal(t, 5, seated)
	assert.Equal(t, 5, full)

	occupied, err := repo.OccupantCount(context.Background(), table.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), occupied)
}

func TestAssignSameSeatIsNoOp(t *testing.T) {
	repo := newMemSeatingRepo()
	svc := newSeatingService(repo, newMemLocker())
	eventID := uuid.New()

	table := &SeatingResource{EventID: eventID, Name: "Table 1", Capacity: 1, Active: true}
	require.NoError(t, repo.CreateResource(context.Background(), table))
	guest := repo.addGuest(eventID, "Asha", "REGULAR")

	actor := seatingStaff(eventID)
	req := AssignRequest{GuestID: guest.ID.String(), ResourceID: table.ID.String()}
	require.NoError(t, svc.Assign(context.Background(), actor, req))

	// The table is now full, but re-assigning its own occupant succeeds.
	require.NoError(t, svc.Assign(context.Background(), actor, req))
}

func TestAssignReassignmentMovesSeat(t *testing.T) {
	repo := newMemSeatingRepo()
	svc := newSeatingService(repo, newMemLocker())
	eventID := uuid.New()

	tableA := &SeatingResource{EventID: eventID, Name: "Table A", Capacity: 2, Active: true}
	tableB := &SeatingResource{EventID: eventID, Name: "Table B", Capacity: 2, Active: true}
	require.NoError(t, repo.CreateResource(context.Background(), tableA))
	require.NoError(t, repo.CreateResource(context.Background(), tableB))
	guest := repo.addGuest(eventID, "Asha", "REGULAR")

	actor := seatingStaff(eventID)
	require.NoError(t, svc.Assign(context.Background(), actor, AssignRequest{
		GuestID: guest.ID.String(), ResourceID: tableA.ID.String(),
	}))
	require.NoError(t, svc.Assign(context.Background(), actor, AssignRequest{
		GuestID: guest.ID.String(), ResourceID: tableB.ID.String(),
	}))

	occupiedA, _ := repo.OccupantCount(context.Background(), tableA.ID)
	occupiedB, _ := repo.OccupantCount(context.Background(), tableB.ID)
	assert.Equal(t, int64(0), occupiedA)
	assert.Equal(t, int64(1), occupiedB)
}

func TestAssignRejectsDisallowedType(t *testing.T) {
	repo := newMemSeatingRepo()
	svc := newSeatingService(repo, newMemLocker())
	eventID := uuid.New()

	lounge := &SeatingResource{EventID: eventID, Name: "Lounge", Capacity: 10, AllowedTypes: []string{"VIP"}, Active: true}
	require.NoError(t, repo.CreateResource(context.Background(), lounge))
	guest := repo.addGuest(eventID, "Kabir", "REGULAR")

	err := svc.Assign(context.Background(), seatingStaff(eventID), AssignRequest{
		GuestID: guest.ID.String(), ResourceID: lounge.ID.String(),
	})
	assert.ErrorIs(t, err, apperrors.ErrTypeNotAllowed)
}

func TestManualAssignRejectedWhilePassRuns(t *testing.T) {
	repo := newMemSeatingRepo()
	locks := newMemLocker()
	svc := newSeatingService(repo, locks)
	eventID := uuid.New()

	table := &SeatingResource{EventID: eventID, Name: "Table 1", Capacity: 5, Active: true}
	require.NoError(t, repo.CreateResource(context.Background(), table))
	guest := repo.addGuest(eventID, "Asha", "REGULAR")

	_, ok, err := locks.Acquire(context.Background(), eventID.String(), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	err = svc.Assign(context.Background(), seatingStaff(eventID), AssignRequest{
		GuestID: guest.ID.String(), ResourceID: table.ID.String(),
	})
	assert.ErrorIs(t, err, apperrors.ErrAssignmentInProgress)

	err = svc.Unassign(context.Background(), seatingStaff(eventID), UnassignRequest{GuestID: guest.ID.String()})
	assert.ErrorIs(t, err, apperrors.ErrAssignmentInProgress)
}

func TestAutoAssignOwnerOnly(t *testing.T) {
	repo := newMemSeatingRepo()
	svc := newSeatingService(repo, newMemLocker())
	eventID := uuid.New()

	_, err := svc.AutoAssign(context.Background(), seatingStaff(eventID))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestAutoAssignRejectedWhileAnotherPassHoldsLock(t *testing.T) {
	repo := newMemSeatingRepo()
	locks := newMemLocker()
	svc := newSeatingService(repo, locks)
	eventID := uuid.New()

	_, ok, err := locks.Acquire(context.Background(), eventID.String(), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.AutoAssign(context.Background(), seatingOwner(eventID))
	assert.ErrorIs(t, err, apperrors.ErrAssignmentInProgress)
}

func TestAutoAssignFirstFitAndReporting(t *testing.T) {
	repo := newMemSeatingRepo()
	locks := newMemLocker()
	svc := newSeatingService(repo, locks)
	eventID := uuid.New()

	tableA := &SeatingResource{EventID: eventID, Name: "Table A", Capacity: 4, Active: true, SortOrder: 1}
	tableB := &SeatingResource{EventID: eventID, Name: "Table B", Capacity: 4, Active: true, SortOrder: 2}
	inactive := &SeatingResource{EventID: eventID, Name: "Closed", Capacity: 50, Active: false, SortOrder: 0}
	require.NoError(t, repo.CreateResource(context.Background(), tableA))
	require.NoError(t, repo.CreateResource(context.Background(), tableB))
	require.NoError(t, repo.CreateResource(context.Background(), inactive))

	for i := 0; i < 10; i++ {
		repo.addGuest(eventID, "Guest", "REGULAR")
	}

	resp, err := svc.AutoAssign(context.Background(), seatingOwner(eventID))
	require.NoError(t, err)

	assert.Equal(t, 10, resp.TotalCandidates)
	assert.Equal(t, 8, resp.AssignedCount)
	assert.Equal(t, 2, resp.UnassignedCount)
	require.Len(t, resp.Outcomes, 10)

	unassigned := 0
	for _, outcome := range resp.Outcomes {
		if !outcome.Assigned {
			unassigned++
			assert.Equal(t, ReasonNoCapacity, outcome.Reason)
			assert.Empty(t, outcome.ResourceID)
		}
	}
	assert.Equal(t, 2, unassigned)

	// The inactive resource must not have received anyone.
	occupied, err := repo.OccupantCount(context.Background(), inactive.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), occupied)

	// The lock must be released after the pass.
	held, err := locks.IsHeld(context.Background(), eventID.String())
	require.NoError(t, err)
	assert.False(t, held)
}

func TestAutoAssignIsIdempotentForSeatedGuests(t *testing.T) {
	repo := newMemSeatingRepo()
	svc := newSeatingService(repo, newMemLocker())
	eventID := uuid.New()

	table := &SeatingResource{EventID: eventID, Name: "Table A", Capacity: 10, Active: true}
	require.NoError(t, repo.CreateResource(context.Background(), table))
	for i := 0; i < 4; i++ {
		repo.addGuest(eventID, "Guest", "REGULAR")
	}

	first, err := svc.AutoAssign(context.Background(), seatingOwner(eventID))
	require.NoError(t, err)
	assert.Equal(t, 4, first.AssignedCount)

	// A second pass finds nothing to do and reseats nobody.
	second, err := svc.AutoAssign(context.Background(), seatingOwner(eventID))
	require.NoError(t, err)
	assert.Equal(t, 0, second.TotalCandidates)
	assert.Equal(t, 0, second.AssignedCount)
}

func TestAutoAssignReportsMidPassManualSeatAsAlreadySeated(t *testing.T) {
	repo := newMemSeatingRepo()
	svc := newSeatingService(repo, newMemLocker())
	eventID := uuid.New()

	table := &SeatingResource{EventID: eventID, Name: "Table A", Capacity: 4, Active: true}
	require.NoError(t, repo.CreateResource(context.Background(), table))

	first := repo.addGuest(eventID, "Asha", "REGULAR")
	repo.addGuest(eventID, "Dev", "REGULAR")

	// A manual assignment lands between the planning snapshot and the
	// commit; the commit must not report that guest as auto-assigned.
	repo.beforeBulk = func() {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		id := table.ID
		repo.guests[first.ID].SeatingResourceID = &id
	}

	resp, err := svc.AutoAssign(context.Background(), seatingOwner(eventID))
	require.NoError(t, err)

	assert.Equal(t, 2, resp.TotalCandidates)
	assert.Equal(t, 1, resp.AssignedCount)
	assert.Equal(t, 0, resp.UnassignedCount)

	var reported bool
	for _, outcome := range resp.Outcomes {
		if outcome.GuestID == first.ID.String() {
			reported = true
			assert.False(t, outcome.Assigned)
			assert.Equal(t, ReasonAlreadySeated, outcome.Reason)
			assert.Empty(t, outcome.ResourceID)
		}
	}
	assert.True(t, reported)
}

func TestDeactivatedResourceKeepsOccupantsAndAcceptsManual(t *testing.T) {
	repo := newMemSeatingRepo()
	svc := newSeatingService(repo, newMemLocker())
	eventID := uuid.New()

	table := &SeatingResource{EventID: eventID, Name: "Table A", Capacity: 4, Active: true}
	require.NoError(t, repo.CreateResource(context.Background(), table))
	seated := repo.addGuest(eventID, "Asha", "REGULAR")
	late := repo.addGuest(eventID, "Kabir", "REGULAR")

	actor := seatingStaff(eventID)
	require.NoError(t, svc.Assign(context.Background(), actor, AssignRequest{
		GuestID: seated.ID.String(), ResourceID: table.ID.String(),
	}))

	inactive := false
	_, err := svc.UpdateResource(context.Background(), eventID, table.ID.String(), UpdateResourceRequest{Active: &inactive})
	require.NoError(t, err)

	// Existing occupant keeps the seat; manual assignment still works.
	occupied, _ := repo.OccupantCount(context.Background(), table.ID)
	assert.Equal(t, int64(1), occupied)

	require.NoError(t, svc.Assign(context.Background(), actor, AssignRequest{
		GuestID: late.ID.String(), ResourceID: table.ID.String(),
	}))
}
