package guests

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/writemytrip/ownerdesk/internal/reporting"
	"github.com/writemytrip/ownerdesk/internal/reporting/reportingtest"
	"github.com/writemytrip/ownerdesk/internal/shared"
)

var fixedNow = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

// guestStore keeps owner-added guests next to the booking fixtures.
type guestStore struct {
	mem   *reportingtest.MemStore
	owned map[uuid.UUID][]uuid.UUID
}

func newGuestStore(mem *reportingtest.MemStore) *guestStore {
	return &guestStore{mem: mem, owned: map[uuid.UUID][]uuid.UUID{}}
}

func (s *guestStore) GuestsByOwner(ctx context.Context, ownerID uuid.UUID) ([]reporting.Guest, error) {
	return s.mem.GuestsByIDs(ctx, s.owned[ownerID])
}

func (s *guestStore) GuestInScope(ctx context.Context, ownerID, guestID uuid.UUID) (reporting.Guest, error) {
	for _, g := range s.mem.Guests {
		if g.ID != guestID {
			continue
		}
		if g.OwnerID != nil && *g.OwnerID == ownerID {
			return g, nil
		}
		props, _ := s.mem.PropertiesByOwner(ctx, ownerID)
		for _, b := range s.mem.Bookings {
			if b.GuestID == nil || *b.GuestID != guestID {
				continue
			}
			for _, rt := range s.mem.RoomTypes {
				for _, p := range props {
					if rt.ID == b.RoomTypeID && rt.PropertyID == p.ID {
						return g, nil
					}
				}
			}
		}
	}
	return reporting.Guest{}, shared.ErrNotFound
}

func (s *guestStore) Create(ctx context.Context, ownerID uuid.UUID, g reporting.Guest) (reporting.Guest, error) {
	for _, existing := range s.mem.Guests {
		if existing.Email == g.Email {
			return reporting.Guest{}, ErrDuplicateEmail
		}
	}
	g.ID = uuid.New()
	g.OwnerID = &ownerID
	g.CreatedAt = fixedNow
	s.mem.Guests = append(s.mem.Guests, g)
	s.owned[ownerID] = append(s.owned[ownerID], g.ID)
	return g, nil
}

func (s *guestStore) Update(ctx context.Context, ownerID uuid.UUID, g reporting.Guest) (reporting.Guest, error) {
	for i := range s.mem.Guests {
		if s.mem.Guests[i].ID == g.ID {
			s.mem.Guests[i] = g
			return g, nil
		}
	}
	return reporting.Guest{}, shared.ErrNotFound
}

func (s *guestStore) UpdateStatus(ctx context.Context, ownerID, guestID uuid.UUID, status reporting.GuestStatus) error {
	g, err := s.GuestInScope(ctx, ownerID, guestID)
	if err != nil {
		return err
	}
	g.Status = status
	_, err = s.Update(ctx, ownerID, g)
	return err
}

func (s *guestStore) Delete(ctx context.Context, ownerID, guestID uuid.UUID) error {
	if _, err := s.GuestInScope(ctx, ownerID, guestID); err != nil {
		return err
	}
	for i := range s.mem.Guests {
		if s.mem.Guests[i].ID == guestID {
			s.mem.Guests = append(s.mem.Guests[:i], s.mem.Guests[i+1:]...)
			return nil
		}
	}
	return nil
}

func newTestService(owner *reportingtest.Owner) (*Service, *guestStore) {
	store := newGuestStore(owner.Store)
	return NewService(store, owner.Store, nil, nil), store
}

func TestListMergesBookedAndOwnedGuests(t *testing.T) {
	owner := reportingtest.NewOwner(10)
	asha := owner.AddGuest("Asha Rao", "asha@example.com", reporting.GuestVIP)
	ravi := owner.AddGuest("Ravi Kumar", "ravi@example.com", reporting.GuestRegular)
	owner.AddGuest("Stranger", "stranger@example.com", reporting.GuestNew)
	owner.AddBooking(4000, reporting.StatusCheckedOut, fixedNow.AddDate(0, -2, 0), &asha.ID)
	owner.AddBooking(6000, reporting.StatusCheckedIn, fixedNow, &asha.ID)
	owner.AddBooking(3000, reporting.StatusConfirmed, fixedNow, &ravi.ID)

	svc, _ := newTestService(owner)
	ctx := context.Background()
	added, err := svc.Create(ctx, owner.ID, CreateInput{Name: " Meera ", Email: "Meera@Example.com", Phone: "98450"})
	require.NoError(t, err)
	assert.Equal(t, "meera@example.com", added.Email)
	assert.Equal(t, "Meera", added.Name)
	assert.Equal(t, reporting.GuestNew, added.Status)

	result, err := svc.List(ctx, owner.ID, Filter{Sort: SortSpent}, 1, 20)
	require.NoError(t, err)
	require.Len(t, result.Guests, 3)
	assert.Equal(t, asha.ID, result.Guests[0].ID)
	assert.True(t, result.Guests[0].TotalSpent.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, 2, result.Guests[0].TotalBookings)
	assert.Equal(t, Stats{TotalGuests: 3, VIPGuests: 1, CurrentlyStaying: 1, RepeatGuestRate: 33}, result.Stats)

	byName, err := svc.List(ctx, owner.ID, Filter{Sort: SortName}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"Asha Rao", "Meera", "Ravi Kumar"}, names(byName.Guests))

	vip, err := svc.List(ctx, owner.ID, Filter{Status: reporting.GuestVIP, Query: "ASHA"}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"Asha Rao"}, names(vip.Guests))
	assert.Equal(t, 3, vip.Stats.TotalGuests)
}

func TestCreateValidationAndDuplicates(t *testing.T) {
	owner := reportingtest.NewOwner(2)
	svc, store := newTestService(owner)
	ctx := context.Background()

	_, err := svc.Create(ctx, owner.ID, CreateInput{Name: "No Email", Phone: "1"})
	var fieldErrs validator.ValidationErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "email", fieldErrs[0].Field())
	assert.Empty(t, store.mem.Guests)

	_, err = svc.Create(ctx, owner.ID, CreateInput{Name: "A", Email: "a@example.com", Phone: "1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, owner.ID, CreateInput{Name: "B", Email: "A@EXAMPLE.COM", Phone: "2"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.ErrorIs(t, err, shared.ErrDuplicate)

	_, err = svc.Create(ctx, uuid.Nil, CreateInput{})
	assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
}

func TestUpdateStatusAndDeleteRespectScope(t *testing.T) {
	store := &reportingtest.MemStore{}
	mine := reportingtest.NewOwnerIn(store, 2)
	theirs := reportingtest.NewOwnerIn(store, 2)
	guest := theirs.AddGuest("Other", "other@example.com", reporting.GuestNew)
	theirs.AddBooking(1000, reporting.StatusConfirmed, fixedNow, &guest.ID)
	svc, _ := newTestService(mine)
	ctx := context.Background()

	_, err := svc.Get(ctx, mine.ID, guest.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, mine.ID, guest.ID), shared.ErrNotFound)
	assert.ErrorIs(t, svc.SetStatus(ctx, mine.ID, guest.ID, StatusInput{Status: "vip"}), shared.ErrNotFound)

	other, _ := newTestService(theirs)
	var fieldErrs validator.ValidationErrors
	require.ErrorAs(t, other.SetStatus(ctx, theirs.ID, guest.ID, StatusInput{Status: "gold"}), &fieldErrs)
	require.NoError(t, other.SetStatus(ctx, theirs.ID, guest.ID, StatusInput{Status: "vip"}))

	phone := "12345"
	updated, err := other.Update(ctx, theirs.ID, guest.ID, UpdateInput{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, reporting.GuestVIP, updated.Status)
	assert.Equal(t, "12345", updated.Phone)

	_, err = other.Update(ctx, theirs.ID, guest.ID, UpdateInput{Phone: &phone})
	assert.ErrorIs(t, err, shared.ErrNoChanges)

	require.NoError(t, other.Delete(ctx, theirs.ID, guest.ID))
	_, err = other.Get(ctx, theirs.ID, guest.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter(" asha ", "VIP", "bookings")
	require.NoError(t, err)
	assert.Equal(t, Filter{Query: "asha", Status: reporting.GuestVIP, Sort: SortBookings}, f)

	f, err = ParseFilter("", "all", "")
	require.NoError(t, err)
	assert.Equal(t, SortRecent, f.Sort)

	_, err = ParseFilter("", "blocked", "")
	assert.ErrorIs(t, err, shared.ErrValidation)
	_, err = ParseFilter("", "", "age")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func names(guests []reporting.GuestWithStats) []string {
	out := make([]string, 0, len(guests))
	for _, g := range guests {
		out = append(out, strings.TrimSpace(g.Name))
	}
	return out
}
