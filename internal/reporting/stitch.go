package reporting

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	unknownGuest = "Unknown Guest"
	unknownRoom  = "Unknown Room"
)

// BookingWithRelations is a booking joined with its related rows. A nil
// relation means the referenced row does not exist in scope.
type BookingWithRelations struct {
	Booking
	EffectiveStatus BookingStatus  `json:"effective_status"`
	Guest           *Guest         `json:"guest"`
	RoomType        *RoomType      `json:"room_type"`
	Property        *Property      `json:"property"`
	Refund          *RefundRequest `json:"refund_request"`
	LatestChange    *StatusChange  `json:"latest_status_change"`
}

// GuestDisplayName prefers the linked guest, then the name captured on
// the booking.
func (b BookingWithRelations) GuestDisplayName() string {
	if b.Guest != nil && b.Guest.Name != "" {
		return b.Guest.Name
	}
	if b.GuestName != "" {
		return b.GuestName
	}
	return unknownGuest
}

// RoomDisplayName returns the room type name or a placeholder.
func (b BookingWithRelations) RoomDisplayName() string {
	if b.RoomType != nil && b.RoomType.Name != "" {
		return b.RoomType.Name
	}
	return unknownRoom
}

// SortStatusHistory orders changes newest first: greatest CreatedAt, ties
// broken by the greatest ID. The input is not modified.
func SortStatusHistory(history []StatusChange) []StatusChange {
	sorted := make([]StatusChange, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})
	return sorted
}

// LatestStatusChanges picks the newest change per booking.
func LatestStatusChanges(history []StatusChange) map[uuid.UUID]StatusChange {
	sorted := SortStatusHistory(history)
	latest := make(map[uuid.UUID]StatusChange, len(sorted))
	for _, change := range sorted {
		if _, ok := latest[change.BookingID]; ok {
			continue
		}
		latest[change.BookingID] = change
	}
	return latest
}

// Stitch attaches relations to every booking of the dataset. The output
// has one element per input booking, in input order.
func Stitch(ds Dataset) []BookingWithRelations {
	guests := make(map[uuid.UUID]*Guest, len(ds.Relations.Guests))
	for i := range ds.Relations.Guests {
		guests[ds.Relations.Guests[i].ID] = &ds.Relations.Guests[i]
	}
	roomTypes := make(map[uuid.UUID]*RoomType, len(ds.Scope.RoomTypes))
	for i := range ds.Scope.RoomTypes {
		roomTypes[ds.Scope.RoomTypes[i].ID] = &ds.Scope.RoomTypes[i]
	}
	properties := make(map[uuid.UUID]*Property, len(ds.Scope.Properties))
	for i := range ds.Scope.Properties {
		properties[ds.Scope.Properties[i].ID] = &ds.Scope.Properties[i]
	}
	// First refund per booking in store order.
	refunds := make(map[uuid.UUID]*RefundRequest, len(ds.Relations.Refunds))
	for i := range ds.Relations.Refunds {
		if _, ok := refunds[ds.Relations.Refunds[i].BookingID]; ok {
			continue
		}
		refunds[ds.Relations.Refunds[i].BookingID] = &ds.Relations.Refunds[i]
	}
	latest := LatestStatusChanges(ds.Relations.History)

	out := make([]BookingWithRelations, 0, len(ds.Bookings))
	for _, b := range ds.Bookings {
		item := BookingWithRelations{Booking: b, EffectiveStatus: b.Status}
		if b.GuestID != nil {
			item.Guest = guests[*b.GuestID]
		}
		if rt, ok := roomTypes[b.RoomTypeID]; ok {
			item.RoomType = rt
			item.Property = properties[rt.PropertyID]
		}
		item.Refund = refunds[b.ID]
		if change, ok := latest[b.ID]; ok {
			change := change
			item.LatestChange = &change
			item.EffectiveStatus = change.Status
		}
		out = append(out, item)
	}
	return out
}

// GuestWithStats is a guest together with figures derived from their
// bookings.
type GuestWithStats struct {
	Guest
	TotalBookings        int             `json:"total_bookings"`
	TotalSpent           decimal.Decimal `json:"total_spent"`
	LastVisit            *time.Time      `json:"last_visit,omitempty"`
	CurrentBookingStatus BookingStatus   `json:"current_booking_status,omitempty"`
	CurrentCheckIn       *time.Time      `json:"current_check_in,omitempty"`
}

// IsRepeat reports whether the guest has booked more than once.
func (g GuestWithStats) IsRepeat() bool {
	return g.TotalBookings > 1
}

// StitchGuests derives per-guest stats from stitched bookings. Guests keep
// their input order.
func StitchGuests(guests []Guest, bookings []BookingWithRelations) []GuestWithStats {
	byGuest := make(map[uuid.UUID][]BookingWithRelations)
	for _, b := range bookings {
		if b.GuestID == nil {
			continue
		}
		byGuest[*b.GuestID] = append(byGuest[*b.GuestID], b)
	}

	out := make([]GuestWithStats, 0, len(guests))
	for _, guest := range guests {
		item := GuestWithStats{Guest: guest, TotalSpent: decimal.Zero}
		var lastCreated time.Time
		for _, b := range byGuest[guest.ID] {
			item.TotalBookings++
			item.TotalSpent = item.TotalSpent.Add(b.TotalAmount)
			if item.LastVisit == nil || b.CreatedAt.After(lastCreated) {
				checkIn := b.CheckInDate
				item.LastVisit = &checkIn
				lastCreated = b.CreatedAt
			}
			if b.EffectiveStatus == StatusCheckedIn && item.CurrentCheckIn == nil {
				checkIn := b.CheckInDate
				item.CurrentBookingStatus = StatusCheckedIn
				item.CurrentCheckIn = &checkIn
			}
		}
		out = append(out, item)
	}
	return out
}
