package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/writemytrip/ownerdesk/internal/shared"
)

// Store exposes the row queries the pipeline relies on. Every method
// returns an empty slice, not an error, when nothing matches.
type Store interface {
	PropertiesByOwner(ctx context.Context, ownerID uuid.UUID) ([]Property, error)
	RoomTypesByProperties(ctx context.Context, propertyIDs []uuid.UUID) ([]RoomType, error)
	BookingsByRoomTypes(ctx context.Context, roomTypeIDs []uuid.UUID, createdFrom time.Time) ([]Booking, error)
	GuestsByIDs(ctx context.Context, ids []uuid.UUID) ([]Guest, error)
	StatusHistory(ctx context.Context, bookingIDs []uuid.UUID) ([]StatusChange, error)
	RefundRequests(ctx context.Context, bookingIDs []uuid.UUID) ([]RefundRequest, error)
	ManualEntries(ctx context.Context, ownerID uuid.UUID, from time.Time) ([]ManualEntry, error)
	Branding(ctx context.Context, ownerID uuid.UUID) (Branding, error)
}

// Scope is the owner's property tree. Bookings are in scope when their
// room type belongs to one of the owner's properties.
type Scope struct {
	OwnerID    uuid.UUID
	Properties []Property
	RoomTypes  []RoomType
}

// PropertyIDs lists the ids of the scoped properties.
func (s Scope) PropertyIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.Properties))
	for _, p := range s.Properties {
		ids = append(ids, p.ID)
	}
	return ids
}

// RoomTypeIDs lists the ids of the scoped room types.
func (s Scope) RoomTypeIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.RoomTypes))
	for _, rt := range s.RoomTypes {
		ids = append(ids, rt.ID)
	}
	return ids
}

// BookingQuery narrows the booking fetch. A zero CreatedFrom means no
// lower bound.
type BookingQuery struct {
	CreatedFrom time.Time
}

// Relations holds the rows referenced by a booking set.
type Relations struct {
	Guests  []Guest
	History []StatusChange
	Refunds []RefundRequest
}

// Dataset is one consistent snapshot of an owner's booking rows.
type Dataset struct {
	Scope     Scope
	Bookings  []Booking
	Relations Relations
}

// Fetcher resolves owner scope and loads booking rows with their relations.
type Fetcher struct {
	store Store
}

// NewFetcher wires a Store into a Fetcher.
func NewFetcher(store Store) *Fetcher {
	return &Fetcher{store: store}
}

// Resolve loads the owner's properties and their room types.
func (f *Fetcher) Resolve(ctx context.Context, ownerID uuid.UUID) (Scope, error) {
	if ownerID == uuid.Nil {
		return Scope{}, shared.ErrNotAuthenticated
	}
	scope := Scope{OwnerID: ownerID}
	properties, err := f.store.PropertiesByOwner(ctx, ownerID)
	if err != nil {
		return Scope{}, fmt.Errorf("reporting: load properties: %w", err)
	}
	scope.Properties = properties
	if len(properties) == 0 {
		return scope, nil
	}
	roomTypes, err := f.store.RoomTypesByProperties(ctx, scope.PropertyIDs())
	if err != nil {
		return Scope{}, fmt.Errorf("reporting: load room types: %w", err)
	}
	scope.RoomTypes = roomTypes
	return scope, nil
}

// Bookings loads the bookings whose room type is in scope.
func (f *Fetcher) Bookings(ctx context.Context, scope Scope, query BookingQuery) ([]Booking, error) {
	if len(scope.RoomTypes) == 0 {
		return nil, nil
	}
	bookings, err := f.store.BookingsByRoomTypes(ctx, scope.RoomTypeIDs(), query.CreatedFrom)
	if err != nil {
		return nil, fmt.Errorf("reporting: load bookings: %w", err)
	}
	return bookings, nil
}

// Relations loads guests, status history and refund requests for the
// bookings concurrently and waits for all of them.
func (f *Fetcher) Relations(ctx context.Context, bookings []Booking) (Relations, error) {
	var rel Relations
	if len(bookings) == 0 {
		return rel, nil
	}
	bookingIDs := make([]uuid.UUID, 0, len(bookings))
	guestIDs := make([]uuid.UUID, 0, len(bookings))
	seenGuest := make(map[uuid.UUID]struct{}, len(bookings))
	for _, b := range bookings {
		bookingIDs = append(bookingIDs, b.ID)
		if b.GuestID == nil {
			continue
		}
		if _, ok := seenGuest[*b.GuestID]; ok {
			continue
		}
		seenGuest[*b.GuestID] = struct{}{}
		guestIDs = append(guestIDs, *b.GuestID)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if len(guestIDs) == 0 {
			return nil
		}
		guests, err := f.store.GuestsByIDs(ctx, guestIDs)
		if err != nil {
			return fmt.Errorf("reporting: load guests: %w", err)
		}
		rel.Guests = guests
		return nil
	})

	g.Go(func() error {
		history, err := f.store.StatusHistory(ctx, bookingIDs)
		if err != nil {
			return fmt.Errorf("reporting: load status history: %w", err)
		}
		rel.History = history
		return nil
	})

	g.Go(func() error {
		refunds, err := f.store.RefundRequests(ctx, bookingIDs)
		if err != nil {
			return fmt.Errorf("reporting: load refund requests: %w", err)
		}
		rel.Refunds = refunds
		return nil
	})

	if err := g.Wait(); err != nil {
		return Relations{}, err
	}
	return rel, nil
}

// Load runs the whole fetch stage for an owner.
func (f *Fetcher) Load(ctx context.Context, ownerID uuid.UUID, query BookingQuery) (Dataset, error) {
	scope, err := f.Resolve(ctx, ownerID)
	if err != nil {
		return Dataset{}, err
	}
	bookings, err := f.Bookings(ctx, scope, query)
	if err != nil {
		return Dataset{}, err
	}
	rel, err := f.Relations(ctx, bookings)
	if err != nil {
		return Dataset{}, err
	}
	return Dataset{Scope: scope, Bookings: bookings, Relations: rel}, nil
}
