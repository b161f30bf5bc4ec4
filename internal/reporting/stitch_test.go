package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStitchKeepsCardinalityAndMarksMissingRelations(t *testing.T) {
	f := newOwnerFixture()
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	known := Guest{ID: uuid.New(), Name: "Asha", Email: "asha@example.com"}
	missing := uuid.New()
	f.store.guests = []Guest{known}

	withGuest := f.addBooking(1000, StatusPending, now, &known.ID)
	withMissingGuest := f.addBooking(2000, StatusPending, now.Add(-time.Hour), &missing)
	orphan := Booking{ID: uuid.New(), RoomTypeID: uuid.New(), Status: StatusConfirmed, CreatedAt: now}

	ds := Dataset{
		Scope:    Scope{Properties: f.store.properties, RoomTypes: f.store.roomTypes},
		Bookings: []Booking{withGuest, withMissingGuest, orphan},
		Relations: Relations{
			Guests: []Guest{known},
		},
	}
	stitched := Stitch(ds)
	require.Len(t, stitched, 3)

	assert.Equal(t, withGuest.ID, stitched[0].ID)
	require.NotNil(t, stitched[0].Guest)
	assert.Equal(t, "Asha", stitched[0].GuestDisplayName())
	require.NotNil(t, stitched[0].Property)
	assert.Equal(t, "Sea View", stitched[0].Property.Name)

	assert.Nil(t, stitched[1].Guest)
	assert.Equal(t, "Unknown Guest", stitched[1].GuestDisplayName())

	assert.Nil(t, stitched[2].RoomType)
	assert.Nil(t, stitched[2].Property)
	assert.Equal(t, "Unknown Room", stitched[2].RoomDisplayName())
	assert.Equal(t, StatusConfirmed, stitched[2].EffectiveStatus)
}

func TestStitchEffectiveStatusUsesLatestChange(t *testing.T) {
	f := newOwnerFixture()
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	b := f.addBooking(5000, StatusPending, at, nil)

	// Two changes share a timestamp; the higher id wins regardless of order.
	history := []StatusChange{
		{ID: 7, BookingID: b.ID, Status: StatusCancelled, CreatedAt: at.Add(time.Hour)},
		{ID: 3, BookingID: b.ID, Status: StatusConfirmed, CreatedAt: at.Add(30 * time.Minute)},
		{ID: 9, BookingID: b.ID, Status: StatusCheckedIn, CreatedAt: at.Add(time.Hour)},
	}
	ds := Dataset{
		Scope:     Scope{Properties: f.store.properties, RoomTypes: f.store.roomTypes},
		Bookings:  []Booking{b},
		Relations: Relations{History: history},
	}
	stitched := Stitch(ds)
	require.Len(t, stitched, 1)
	assert.Equal(t, StatusCheckedIn, stitched[0].EffectiveStatus)
	require.NotNil(t, stitched[0].LatestChange)
	assert.Equal(t, int64(9), stitched[0].LatestChange.ID)
	assert.Equal(t, StatusPending, stitched[0].Status, "stored status is preserved")

	reversed := []StatusChange{history[2], history[1], history[0]}
	ds.Relations.History = reversed
	assert.Equal(t, StatusCheckedIn, Stitch(ds)[0].EffectiveStatus)
}

func TestStitchGuestsDerivesStats(t *testing.T) {
	f := newOwnerFixture()
	guest := Guest{ID: uuid.New(), Name: "Ravi", Email: "ravi@example.com", Status: GuestRegular}
	base := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

	f.addBooking(3000, StatusCheckedOut, base, &guest.ID)
	current := f.addBooking(4000, StatusCheckedIn, base.AddDate(0, 1, 0), &guest.ID)
	latest := f.addBooking(5000, StatusConfirmed, base.AddDate(0, 2, 0), &guest.ID)
	f.store.guests = []Guest{guest}

	ds, err := NewFetcher(f.store).Load(context.Background(), f.ownerID, BookingQuery{})
	require.NoError(t, err)

	guests := StitchGuests([]Guest{guest}, Stitch(ds))
	require.Len(t, guests, 1)
	g := guests[0]
	assert.Equal(t, 3, g.TotalBookings)
	assert.True(t, g.TotalSpent.Equal(amount(12000)))
	assert.Equal(t, StatusCheckedIn, g.CurrentBookingStatus)
	require.NotNil(t, g.CurrentCheckIn)
	assert.Equal(t, current.CheckInDate, *g.CurrentCheckIn)
	require.NotNil(t, g.LastVisit)
	assert.Equal(t, latest.CheckInDate, *g.LastVisit)
	assert.True(t, g.IsRepeat())
}

func TestStitchGuestsWithoutBookings(t *testing.T) {
	guest := Guest{ID: uuid.New(), Name: "Meera"}
	guests := StitchGuests([]Guest{guest}, nil)
	require.Len(t, guests, 1)
	assert.Zero(t, guests[0].TotalBookings)
	assert.True(t, guests[0].TotalSpent.IsZero())
	assert.Nil(t, guests[0].LastVisit)
	assert.Empty(t, guests[0].CurrentBookingStatus)
}
