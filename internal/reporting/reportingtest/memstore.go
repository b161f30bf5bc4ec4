// Package reportingtest provides an in-memory reporting.Store for tests of
// packages built on the reporting pipeline.
package reportingtest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/writemytrip/ownerdesk/internal/reporting"
)

// MemStore implements reporting.Store over slices. Err, when set, fails
// every booking query.
type MemStore struct {
	mu         sync.Mutex
	Properties []reporting.Property
	RoomTypes  []reporting.RoomType
	Bookings   []reporting.Booking
	Guests     []reporting.Guest
	History    []reporting.StatusChange
	Refunds    []reporting.RefundRequest
	Entries    []reporting.ManualEntry
	Brand      reporting.Branding
	Err        error
}

var _ reporting.Store = (*MemStore)(nil)

func (m *MemStore) PropertiesByOwner(ctx context.Context, ownerID uuid.UUID) ([]reporting.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []reporting.Property
	for _, p := range m.Properties {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MemStore) RoomTypesByProperties(ctx context.Context, propertyIDs []uuid.UUID) ([]reporting.RoomType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := set(propertyIDs)
	var out []reporting.RoomType
	for _, rt := range m.RoomTypes {
		if ids[rt.PropertyID] {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (m *MemStore) BookingsByRoomTypes(ctx context.Context, roomTypeIDs []uuid.UUID, createdFrom time.Time) ([]reporting.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ids := set(roomTypeIDs)
	var out []reporting.Booking
	for _, b := range m.Bookings {
		if !ids[b.RoomTypeID] {
			continue
		}
		if !createdFrom.IsZero() && b.CreatedAt.Before(createdFrom) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *MemStore) GuestsByIDs(ctx context.Context, ids []uuid.UUID) ([]reporting.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := set(ids)
	var out []reporting.Guest
	for _, g := range m.Guests {
		if want[g.ID] {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *MemStore) StatusHistory(ctx context.Context, bookingIDs []uuid.UUID) ([]reporting.StatusChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := set(bookingIDs)
	var out []reporting.StatusChange
	for _, c := range m.History {
		if want[c.BookingID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MemStore) RefundRequests(ctx context.Context, bookingIDs []uuid.UUID) ([]reporting.RefundRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := set(bookingIDs)
	var out []reporting.RefundRequest
	for _, r := range m.Refunds {
		if want[r.BookingID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemStore) ManualEntries(ctx context.Context, ownerID uuid.UUID, from time.Time) ([]reporting.ManualEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []reporting.ManualEntry
	for _, e := range m.Entries {
		if e.OwnerID == ownerID && !e.Date.Before(from) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemStore) Branding(ctx context.Context, ownerID uuid.UUID) (reporting.Branding, error) {
	return m.Brand, nil
}

// AddStatus appends a status change, assigning the next id.
func (m *MemStore) AddStatus(change reporting.StatusChange) reporting.StatusChange {
	m.mu.Lock()
	defer m.mu.Unlock()
	change.ID = int64(len(m.History) + 1)
	if change.CreatedAt.IsZero() {
		change.CreatedAt = time.Now()
	}
	m.History = append(m.History, change)
	return change
}

// Owner seeds one owner with a property and a room type of the given size.
type Owner struct {
	ID       uuid.UUID
	Property reporting.Property
	RoomType reporting.RoomType
	Store    *MemStore
}

// NewOwner creates an Owner backed by a fresh MemStore.
func NewOwner(rooms int) *Owner {
	return NewOwnerIn(&MemStore{}, rooms)
}

// NewOwnerIn adds an owner to an existing store.
func NewOwnerIn(store *MemStore, rooms int) *Owner {
	id := uuid.New()
	property := reporting.Property{ID: uuid.New(), OwnerID: id, Name: "Sea View", City: "Goa", PropertyType: "Resort", Status: reporting.PropertyActive, Rating: 4.5}
	roomType := reporting.RoomType{ID: uuid.New(), PropertyID: property.ID, Name: "Deluxe", BaseRate: decimal.NewFromInt(5000), TotalRooms: rooms}
	store.mu.Lock()
	store.Properties = append(store.Properties, property)
	store.RoomTypes = append(store.RoomTypes, roomType)
	store.mu.Unlock()
	return &Owner{ID: id, Property: property, RoomType: roomType, Store: store}
}

// AddBooking stores a two-night booking that checks in on checkIn.
func (o *Owner) AddBooking(total int64, status reporting.BookingStatus, checkIn time.Time, guestID *uuid.UUID) reporting.Booking {
	day := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, time.UTC)
	b := reporting.Booking{
		ID:           uuid.New(),
		GuestID:      guestID,
		RoomTypeID:   o.RoomType.ID,
		CheckInDate:  day,
		CheckOutDate: day.AddDate(0, 0, 2),
		Adults:       2,
		RoomsBooked:  1,
		Status:       status,
		TotalAmount:  decimal.NewFromInt(total),
		CreatedAt:    checkIn,
	}
	o.Store.mu.Lock()
	o.Store.Bookings = append(o.Store.Bookings, b)
	o.Store.mu.Unlock()
	return b
}

// AddGuest stores a guest and returns it.
func (o *Owner) AddGuest(name, email string, status reporting.GuestStatus) reporting.Guest {
	g := reporting.Guest{ID: uuid.New(), Name: name, Email: email, Status: status, CreatedAt: time.Now()}
	o.Store.mu.Lock()
	o.Store.Guests = append(o.Store.Guests, g)
	o.Store.mu.Unlock()
	return g
}

func set(ids []uuid.UUID) map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}
