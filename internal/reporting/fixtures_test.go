package reporting

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type memStore struct {
	mu         sync.Mutex
	properties []Property
	roomTypes  []RoomType
	bookings   []Booking
	guests     []Guest
	history    []StatusChange
	refunds    []RefundRequest
	entries    []ManualEntry
	branding   Branding

	bookingErr   error
	historyErr   error
	bookingCalls int
	historyCalls int
}

func (m *memStore) PropertiesByOwner(ctx context.Context, ownerID uuid.UUID) ([]Property, error) {
	var out []Property
	for _, p := range m.properties {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) RoomTypesByProperties(ctx context.Context, propertyIDs []uuid.UUID) ([]RoomType, error) {
	ids := idSet(propertyIDs)
	var out []RoomType
	for _, rt := range m.roomTypes {
		if _, ok := ids[rt.PropertyID]; ok {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (m *memStore) BookingsByRoomTypes(ctx context.Context, roomTypeIDs []uuid.UUID, createdFrom time.Time) ([]Booking, error) {
	m.mu.Lock()
	m.bookingCalls++
	m.mu.Unlock()
	if m.bookingErr != nil {
		return nil, m.bookingErr
	}
	ids := idSet(roomTypeIDs)
	var out []Booking
	for _, b := range m.bookings {
		if _, ok := ids[b.RoomTypeID]; !ok {
			continue
		}
		if !createdFrom.IsZero() && b.CreatedAt.Before(createdFrom) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *memStore) GuestsByIDs(ctx context.Context, ids []uuid.UUID) ([]Guest, error) {
	set := idSet(ids)
	var out []Guest
	for _, g := range m.guests {
		if _, ok := set[g.ID]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memStore) StatusHistory(ctx context.Context, bookingIDs []uuid.UUID) ([]StatusChange, error) {
	m.mu.Lock()
	m.historyCalls++
	m.mu.Unlock()
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	set := idSet(bookingIDs)
	var out []StatusChange
	for _, c := range m.history {
		if _, ok := set[c.BookingID]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) RefundRequests(ctx context.Context, bookingIDs []uuid.UUID) ([]RefundRequest, error) {
	set := idSet(bookingIDs)
	var out []RefundRequest
	for _, r := range m.refunds {
		if _, ok := set[r.BookingID]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) ManualEntries(ctx context.Context, ownerID uuid.UUID, from time.Time) ([]ManualEntry, error) {
	var out []ManualEntry
	for _, e := range m.entries {
		if e.OwnerID == ownerID && !e.Date.Before(from) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) Branding(ctx context.Context, ownerID uuid.UUID) (Branding, error) {
	return m.branding, nil
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ownerFixture builds one owner with one property and one room type.
type ownerFixture struct {
	ownerID  uuid.UUID
	property Property
	roomType RoomType
	store    *memStore
}

func newOwnerFixture() *ownerFixture {
	ownerID := uuid.New()
	property := Property{ID: uuid.New(), OwnerID: ownerID, Name: "Sea View", City: "Goa", Status: PropertyActive, Rating: 4.5}
	roomType := RoomType{ID: uuid.New(), PropertyID: property.ID, Name: "Deluxe", BaseRate: amount(5000), TotalRooms: 10}
	return &ownerFixture{
		ownerID:  ownerID,
		property: property,
		roomType: roomType,
		store: &memStore{
			properties: []Property{property},
			roomTypes:  []RoomType{roomType},
		},
	}
}

func (f *ownerFixture) addBooking(total int64, status BookingStatus, createdAt time.Time, guestID *uuid.UUID) Booking {
	b := Booking{
		ID:           uuid.New(),
		GuestID:      guestID,
		RoomTypeID:   f.roomType.ID,
		CheckInDate:  date(createdAt.Year(), createdAt.Month(), createdAt.Day()),
		CheckOutDate: date(createdAt.Year(), createdAt.Month(), createdAt.Day()).AddDate(0, 0, 2),
		Adults:       2,
		RoomsBooked:  1,
		Status:       status,
		TotalAmount:  amount(total),
		CreatedAt:    createdAt,
	}
	f.store.bookings = append(f.store.bookings, b)
	return b
}
