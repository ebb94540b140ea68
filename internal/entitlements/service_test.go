package entitlements

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

// memGuestRepo backs the resolver with a map; only the lookups used by
// redemption matter here.
type memGuestRepo struct {
	mu     sync.Mutex
	guests map[uuid.UUID]*guests.Guest
}

func newMemGuestRepo() *memGuestRepo {
	return &memGuestRepo{guests: make(map[uuid.UUID]*guests.Guest)}
}

func (r *memGuestRepo) add(guest *guests.Guest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if guest.ID == uuid.Nil {
		guest.ID = uuid.New()
	}
	r.guests[guest.ID] = guest
}

func (r *memGuestRepo) CreateGuest(ctx context.Context, guest *guests.Guest) error {
	r.add(guest)
	return nil
}

func (r *memGuestRepo) CreateGuests(ctx context.Context, batch []guests.Guest) error {
	for i := range batch {
		r.add(&batch[i])
	}
	return nil
}

func (r *memGuestRepo) GetGuestByID(ctx context.Context, id uuid.UUID) (*guests.Guest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	guest, ok := r.guests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *guest
	return &copied, nil
}

func (r *memGuestRepo) ListGuests(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]guests.Guest, int64, error) {
	return nil, 0, nil
}

func (r *memGuestRepo) UpdateGuest(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

func (r *memGuestRepo) SoftDeleteGuest(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (r *memGuestRepo) GetGuestByScanCode(ctx context.Context, eventID uuid.UUID, code string) (*guests.Guest, error) {
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

func (r *memGuestRepo) SearchGuests(ctx context.Context, eventID uuid.UUID, query string, limit int) ([]guests.Guest, error) {
	return nil, nil
}

// memLedger reproduces the redemption transaction's serialization with one
// mutex: the quota check and the append happen in the same critical section.
type memLedger struct {
	mu           sync.Mutex
	entitlements []Entitlement
	redemptions  []Redemption
}

func newMemLedger() *memLedger {
	return &memLedger{}
}

func (l *memLedger) grant(eventID uuid.UUID, guestType string, benefit BenefitType, max int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entitlements = append(l.entitlements, Entitlement{
		ID:          uuid.New(),
		EventID:     eventID,
		GuestType:   guestType,
		BenefitType: benefit,
		MaxQuantity: max,
		Active:      true,
	})
}

func (l *memLedger) CreateEntitlement(ctx context.Context, ent *Entitlement) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ent.ID == uuid.Nil {
		ent.ID = uuid.New()
	}
	l.entitlements = append(l.entitlements, *ent)
	return nil
}

func (l *memLedger) GetEntitlementByID(ctx context.Context, id uuid.UUID) (*Entitlement, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.entitlements {
		if l.entitlements[i].ID == id {
			copied := l.entitlements[i]
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (l *memLedger) ListEntitlements(ctx context.Context, eventID uuid.UUID) ([]Entitlement, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Entitlement
	for _, ent := range l.entitlements {
		if ent.EventID == eventID {
			out = append(out, ent)
		}
	}
	return out, nil
}

func (l *memLedger) UpdateEntitlement(ctx context.Context, ent *Entitlement) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.entitlements {
		if l.entitlements[i].ID == ent.ID {
			l.entitlements[i] = *ent
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (l *memLedger) GetActiveEntitlement(ctx context.Context, eventID uuid.UUID, guestType string, benefit BenefitType) (*Entitlement, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.activeEntitlementLocked(eventID, guestType, benefit)
}

func (l *memLedger) activeEntitlementLocked(eventID uuid.UUID, guestType string, benefit BenefitType) (*Entitlement, error) {
	for i := range l.entitlements {
		ent := &l.entitlements[i]
		if ent.EventID == eventID && ent.GuestType == guestType && ent.BenefitType == benefit && ent.Active {
			copied := *ent
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNoEntitlement
}

func (l *memLedger) SumRedemptions(ctx context.Context, guestID uuid.UUID, benefit BenefitType) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sumLocked(guestID, benefit), nil
}

func (l *memLedger) sumLocked(guestID uuid.UUID, benefit BenefitType) int {
	total := 0
	for _, red := range l.redemptions {
		if red.GuestID == guestID && red.BenefitType == benefit {
			total += red.Quantity
		}
	}
	return total
}

func (l *memLedger) ListRedemptions(ctx context.Context, eventID uuid.UUID, guestID *uuid.UUID, benefit *BenefitType) ([]Redemption, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Redemption
	for _, red := range l.redemptions {
		if red.EventID != eventID {
			continue
		}
		if guestID != nil && red.GuestID != *guestID {
			continue
		}
		if benefit != nil && red.BenefitType != *benefit {
			continue
		}
		out = append(out, red)
	}
	return out, nil
}

func (l *memLedger) Redeem(ctx context.Context, params RedeemParams) (*Redemption, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ent, err := l.activeEntitlementLocked(params.EventID, params.GuestType, params.Benefit)
	if err != nil {
		return nil, 0, err
	}

	left := ent.MaxQuantity - l.sumLocked(params.GuestID, params.Benefit)
	if params.Quantity > left {
		return nil, 0, &apperrors.QuotaError{
			BenefitType: params.Benefit.String(),
			Requested:   params.Quantity,
			Remaining:   left,
		}
	}

	redemption := Redemption{
		ID:          uuid.New(),
		EventID:     params.EventID,
		GuestID:     params.GuestID,
		BenefitType: params.Benefit,
		Quantity:    params.Quantity,
		ActorID:     params.ActorID,
		CreatedAt:   time.Now().UTC(),
	}
	l.redemptions = append(l.redemptions, redemption)
	return &redemption, left - params.Quantity, nil
}

func newRedeemService(ledger *memLedger, guestRepo *memGuestRepo) Service {
	return NewService(ledger, guests.NewService(guestRepo), nil, logger.GetDefault())
}

func redeemStaff(eventID uuid.UUID, benefits ...string) gate.Actor {
	caps := make(map[gate.Capability]bool)
	for _, b := range benefits {
		caps[gate.Capability("redeem:"+b)] = true
	}
	return gate.Actor{ID: uuid.New(), Kind: gate.KindStaff, EventID: eventID, Capabilities: caps}
}

func checkedInGuest(repo *memGuestRepo, eventID uuid.UUID, guestType string) *guests.Guest {
	now := time.Now().UTC()
	guest := &guests.Guest{
		EventID:     eventID,
		Name:        "Asha Patel",
		GuestType:   guestType,
		Status:      guests.StatusCheckedIn,
		CheckedInAt: &now,
	}
	repo.add(guest)
	return guest
}

func TestRedeemHappyPath(t *testing.T) {
	ledger := newMemLedger()
	guestRepo := newMemGuestRepo()
	svc := newRedeemService(ledger, guestRepo)
	eventID := uuid.New()

	ledger.grant(eventID, "REGULAR", BenefitSnack, 2)
	guest := checkedInGuest(guestRepo, eventID, "REGULAR")

	resp, err := svc.Redeem(context.Background(), redeemStaff(eventID, "SNACK"), RedeemRequest{
		Guest:       guests.ResolveRef{GuestID: guest.ID.String()},
		BenefitType: "SNACK",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Quantity) // quantity defaults to 1
	assert.Equal(t, 1, resp.Remaining)
	assert.NotEqual(t, uuid.Nil, resp.RedemptionID)
}

func TestRedeemNotCheckedIn(t *testing.T) {
	ledger := newMemLedger()
	guestRepo := newMemGuestRepo()
	svc := newRedeemService(ledger, guestRepo)
	eventID := uuid.New()

	ledger.grant(eventID, "REGULAR", BenefitSnack, 2)
	guest := &guests.Guest{EventID: eventID, Name: "Kabir", GuestType: "REGULAR", Status: guests.StatusNotArrived}
	guestRepo.add(guest)

	_, err := svc.Redeem(context.Background(), redeemStaff(eventID, "SNACK"), RedeemRequest{
		Guest:       guests.ResolveRef{GuestID: guest.ID.String()},
		BenefitType: "SNACK",
	})
	assert.ErrorIs(t, err, apperrors.ErrNotCheckedIn)
}

func TestRedeemPermissionDenied(t *testing.T) {
	ledger := newMemLedger()
	guestRepo := newMemGuestRepo()
	svc := newRedeemService(ledger, guestRepo)
	eventID := uuid.New()

	ledger.grant(eventID, "REGULAR", BenefitSnack, 2)
	guest := checkedInGuest(guestRepo, eventID, "REGULAR")

	// Actor may hand out souvenirs but not snacks.
	_, err := svc.Redeem(context.Background(), redeemStaff(eventID, "SOUVENIR"), RedeemRequest{
		Guest:       guests.ResolveRef{GuestID: guest.ID.String()},
		BenefitType: "SNACK",
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestRedeemOwnerBypassesCapabilities(t *testing.T) {
	ledger := newMemLedger()
	guestRepo := newMemGuestRepo()
	svc := newRedeemService(ledger, guestRepo)
	eventID := uuid.New()

	ledger.grant(eventID, "REGULAR", BenefitSnack, 2)
	guest := checkedInGuest(guestRepo, eventID, "REGULAR")

	owner := gate.Actor{ID: uuid.New(), Kind: gate.KindOwner, EventID: eventID}
	_, err := svc.Redeem(context.Background(), owner, RedeemRequest{
		Guest:       guests.ResolveRef{GuestID: guest.ID.String()},
		BenefitType: "SNACK",
	})
	assert.NoError(t, err)
}

func TestRedeemNoEntitlement(t *testing.T) {
	ledger := newMemLedger()
	guestRepo := newMemGuestRepo()
	svc := newRedeemService(ledger, guestRepo)
	eventID := uuid.New()

	guest := checkedInGuest(guestRepo, eventID, "REGULAR")

	_, err := svc.Redeem(context.Background(), redeemStaff(eventID, "LOUNGE"), RedeemRequest{
		Guest:       guests.ResolveRef{GuestID: guest.ID.String()},
		BenefitType: "LOUNGE",
	})
	assert.ErrorIs(t, err, apperrors.ErrNoEntitlement)
}

func TestRedeemQuotaExceededCarriesRemaining(t *testing.T) {
	ledger := newMemLedger()
	guestRepo := newMemGuestRepo()
	svc := newRedeemService(ledger, guestRepo)
	eventID := uuid.New()

	ledger.grant(eventID, "REGULAR", BenefitSnack, 2)
	guest := checkedInGuest(guestRepo, eventID, "REGULAR")
	actor := redeemStaff(eventID, "SNACK")
	ref := guests.ResolveRef{GuestID: guest.ID.String()}

	_, err := svc.Redeem(context.Background(), actor, RedeemRequest{Guest: ref, BenefitType: "SNACK", Quantity: 1})
	require.NoError(t, err)

	// One consumed of two: asking for two must fail with remaining=1.
	_, err = svc.Redeem(context.Background(), actor, RedeemRequest{Guest: ref, BenefitType: "SNACK", Quantity: 2})
	require.Error(t, err)

	var quotaErr *apperrors.QuotaError
	require.True(t, errors.As(err, &quotaErr))
	assert.Equal(t, 1, quotaErr.Remaining)
	assert.Equal(t, 2, quotaErr.Requested)

	// Retrying with the remaining amount succeeds.
	resp, err := svc.Redeem(context.Background(), actor, RedeemRequest{Guest: ref, BenefitType: "SNACK", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Remaining)
}

func TestConcurrentRedemptionsNeverOverspend(t *testing.T) {
	ledger := newMemLedger()
	guestRepo := newMemGuestRepo()
	svc := newRedeemService(ledger, guestRepo)
	eventID := uuid.New()

	const quota = 2
	ledger.grant(eventID, "REGULAR", BenefitSouvenir, quota)
	guest := checkedInGuest(guestRepo, eventID, "REGULAR")
	actor := redeemStaff(eventID, "SOUVENIR")

	const attempts = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	var granted, exhausted int

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Redeem(context.Background(), actor, RedeemRequest{
				Guest:       guests.ResolveRef{GuestID: guest.ID.String()},
				BenefitType: "SOUVENIR",
				Quantity:    1,
			})
			mu.Lock()
			defer mu.Unlock()
			var quotaErr *apperrors.QuotaError
			switch {
			case err == nil:
				granted++
			case errors.As(err, &quotaErr):
				exhausted++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, quota, granted)
	assert.Equal(t, attempts-quota, exhausted)

	consumed, err := ledger.SumRedemptions(context.Background(), guest.ID, BenefitSouvenir)
	require.NoError(t, err)
	assert.Equal(t, quota, consumed)
}

func TestRemaining(t *testing.T) {
	ledger := newMemLedger()
	guestRepo := newMemGuestRepo()
	svc := newRedeemService(ledger, guestRepo)
	eventID := uuid.New()

	ledger.grant(eventID, "VIP", BenefitLounge, 3)
	guest := checkedInGuest(guestRepo, eventID, "VIP")
	actor := redeemStaff(eventID, "LOUNGE")

	_, err := svc.Redeem(context.Background(), actor, RedeemRequest{
		Guest:       guests.ResolveRef{GuestID: guest.ID.String()},
		BenefitType: "LOUNGE",
		Quantity:    2,
	})
	require.NoError(t, err)

	remaining, err := svc.Remaining(context.Background(), eventID, guest.ID.String(), "LOUNGE")
	require.NoError(t, err)
	assert.Equal(t, 3, remaining.MaxQuantity)
	assert.Equal(t, 2, remaining.Consumed)
	assert.Equal(t, 1, remaining.Remaining)
}

func TestHistoryFiltersByGuest(t *testing.T) {
	ledger := newMemLedger()
	guestRepo := newMemGuestRepo()
	svc := newRedeemService(ledger, guestRepo)
	eventID := uuid.New()

	ledger.grant(eventID, "REGULAR", BenefitSnack, 5)
	first := checkedInGuest(guestRepo, eventID, "REGULAR")
	second := checkedInGuest(guestRepo, eventID, "REGULAR")
	actor := redeemStaff(eventID, "SNACK")

	for _, g := range []*guests.Guest{first, first, second} {
		_, err := svc.Redeem(context.Background(), actor, RedeemRequest{
			Guest:       guests.ResolveRef{GuestID: g.ID.String()},
			BenefitType: "SNACK",
		})
		require.NoError(t, err)
	}

	all, err := svc.History(context.Background(), eventID, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	firstOnly, err := svc.History(context.Background(), eventID, first.ID.String(), "")
	require.NoError(t, err)
	assert.Len(t, firstOnly, 2)
}

func TestHistoryFiltersByBenefit(t *testing.T) {
	ledger := newMemLedger()
	guestRepo := newMemGuestRepo()
	svc := newRedeemService(ledger, guestRepo)
	eventID := uuid.New()

	ledger.grant(eventID, "REGULAR", BenefitSnack, 5)
	ledger.grant(eventID, "REGULAR", BenefitSouvenir, 5)
	guest := checkedInGuest(guestRepo, eventID, "REGULAR")
	actor := redeemStaff(eventID, "SNACK", "SOUVENIR")

	for _, benefit := range []string{"SNACK", "SNACK", "SOUVENIR"} {
		_, err := svc.Redeem(context.Background(), actor, RedeemRequest{
			Guest:       guests.ResolveRef{GuestID: guest.ID.String()},
			BenefitType: benefit,
		})
		require.NoError(t, err)
	}

	snacks, err := svc.History(context.Background(), eventID, "", "SNACK")
	require.NoError(t, err)
	require.Len(t, snacks, 2)
	for _, red := range snacks {
		assert.Equal(t, "SNACK", red.BenefitType)
	}

	both, err := svc.History(context.Background(), eventID, guest.ID.String(), "SOUVENIR")
	require.NoError(t, err)
	assert.Len(t, both, 1)

	_, err = svc.History(context.Background(), eventID, "", "CAKE")
	assert.ErrorIs(t, err, apperrors.ErrNoEntitlement)
}

func TestDeactivatedEntitlementBlocksRedemption(t *testing.T) {
	ledger := newMemLedger()
	guestRepo := newMemGuestRepo()
	svc := newRedeemService(ledger, guestRepo)
	eventID := uuid.New()

	created, err := svc.CreateEntitlement(context.Background(), eventID, CreateEntitlementRequest{
		GuestType:   "REGULAR",
		BenefitType: "SNACK",
		MaxQuantity: 2,
	})
	require.NoError(t, err)

	inactive := false
	_, err = svc.UpdateEntitlement(context.Background(), eventID, created.ID.String(), UpdateEntitlementRequest{Active: &inactive})
	require.NoError(t, err)

	guest := checkedInGuest(guestRepo, eventID, "REGULAR")
	_, err = svc.Redeem(context.Background(), redeemStaff(eventID, "SNACK"), RedeemRequest{
		Guest:       guests.ResolveRef{GuestID: guest.ID.String()},
		BenefitType: "SNACK",
	})
	assert.ErrorIs(t, err, apperrors.ErrNoEntitlement)
}
