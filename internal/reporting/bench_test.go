package reporting

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// largeDataset builds an owner with several properties and a year of
// bookings, each with a short status history.
func largeDataset(bookings int) Dataset {
	owner := uuid.New()
	var ds Dataset
	ds.Scope.OwnerID = owner
	for p := 0; p < 5; p++ {
		prop := Property{ID: uuid.New(), OwnerID: owner, Name: "Property", Status: PropertyActive, Rating: 4.2}
		ds.Scope.Properties = append(ds.Scope.Properties, prop)
		for r := 0; r < 4; r++ {
			ds.Scope.RoomTypes = append(ds.Scope.RoomTypes, RoomType{
				ID: uuid.New(), PropertyID: prop.ID, Name: "Deluxe", BaseRate: decimal.NewFromInt(4500), TotalRooms: 10,
			})
		}
	}
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < bookings/10; i++ {
		ds.Relations.Guests = append(ds.Relations.Guests, Guest{ID: uuid.New(), Name: "Guest", Status: GuestRegular})
	}
	for i := 0; i < bookings; i++ {
		guestID := ds.Relations.Guests[i%len(ds.Relations.Guests)].ID
		created := start.Add(time.Duration(i) * 90 * time.Minute)
		b := Booking{
			ID: uuid.New(), GuestID: &guestID, RoomTypeID: ds.Scope.RoomTypes[i%len(ds.Scope.RoomTypes)].ID,
			CheckInDate: created.AddDate(0, 0, 7), CheckOutDate: created.AddDate(0, 0, 9),
			Status: StatusPending, TotalAmount: decimal.NewFromInt(9000), CreatedAt: created,
		}
		ds.Bookings = append(ds.Bookings, b)
		ds.Relations.History = append(ds.Relations.History,
			StatusChange{ID: int64(2*i + 1), BookingID: b.ID, Status: StatusConfirmed, CreatedAt: created.Add(time.Hour)},
			StatusChange{ID: int64(2*i + 2), BookingID: b.ID, Status: StatusCheckedOut, CreatedAt: created.Add(200 * time.Hour)},
		)
	}
	return ds
}

func BenchmarkStitch(b *testing.B) {
	ds := largeDataset(5000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Stitch(ds)
	}
}

func BenchmarkBuildFinance(b *testing.B) {
	ds := largeDataset(5000)
	stitched := Stitch(ds)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = BuildFinance(ds.Scope, stitched, nil, 2025, time.UTC, DefaultCommissionRate)
	}
}

func BenchmarkBuildDashboard(b *testing.B) {
	ds := largeDataset(5000)
	stitched := Stitch(ds)
	now := time.Date(2025, 12, 31, 12, 0, 0, 0, time.UTC)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = BuildDashboard(stitched, Branding{}, now, time.UTC)
	}
}

func TestLargeDatasetStitchesEveryBooking(t *testing.T) {
	ds := largeDataset(500)
	stitched := Stitch(ds)
	if len(stitched) != len(ds.Bookings) {
		t.Fatalf("expected %d stitched bookings, got %d", len(ds.Bookings), len(stitched))
	}
	for _, b := range stitched {
		if b.EffectiveStatus != StatusCheckedOut {
			t.Fatalf("booking %s: expected effective status %q, got %q", b.ID, StatusCheckedOut, b.EffectiveStatus)
		}
		if b.Guest == nil || b.Property == nil {
			t.Fatalf("booking %s: relations not attached", b.ID)
		}
	}
}
