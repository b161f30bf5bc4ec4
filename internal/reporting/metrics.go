package reporting

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// OccupancyWindowDays is the fixed period length used by OccupancyRate.
const OccupancyWindowDays = 30

// growthWindow is the length of each period compared by growth figures.
const growthWindow = 30 * 24 * time.Hour

// SafePercent returns value/total as a percentage, or 0 when total is zero.
func SafePercent(value, total float64) float64 {
	if almostZero(total) {
		return 0
	}
	pct := value / total * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0
	}
	return pct
}

// GrowthPercent compares current against previous. A zero previous period
// yields 0 growth.
func GrowthPercent(current, previous float64) float64 {
	if almostZero(previous) {
		return 0
	}
	return SafePercent(current-previous, previous)
}

func almostZero(v float64) bool {
	return v > -0.0001 && v < 0.0001
}

// Occupancy is the room-night approximation shown on the finance screen.
// OccupiedRoomNights counts one night per checked-in or checked-out
// booking over a fixed 30-day window, regardless of stay length or
// booking date, so the figure is flagged as approximate.
type Occupancy struct {
	Rate               float64 `json:"rate"`
	OccupiedRoomNights int     `json:"occupied_room_nights"`
	TotalRooms         int     `json:"total_rooms"`
	Approximate        bool    `json:"approximate"`
}

// TotalRooms sums room inventory. Room types without a positive count are
// counted as a single room.
func TotalRooms(roomTypes []RoomType) int {
	total := 0
	for _, rt := range roomTypes {
		if rt.TotalRooms > 0 {
			total += rt.TotalRooms
			continue
		}
		total++
	}
	return total
}

// OccupancyRate computes occupied room nights over total rooms times the
// window length.
func OccupancyRate(bookings []BookingWithRelations, roomTypes []RoomType) Occupancy {
	occ := Occupancy{TotalRooms: TotalRooms(roomTypes), Approximate: true}
	for _, b := range bookings {
		if b.EffectiveStatus == StatusCheckedIn || b.EffectiveStatus == StatusCheckedOut {
			occ.OccupiedRoomNights++
		}
	}
	occ.Rate = SafePercent(float64(occ.OccupiedRoomNights), float64(occ.TotalRooms*OccupancyWindowDays))
	return occ
}

// AverageDailyRate is earnings per booking, or zero without bookings.
func AverageDailyRate(earnings decimal.Decimal, bookings int) decimal.Decimal {
	if bookings <= 0 {
		return decimal.Zero
	}
	return earnings.Div(decimal.NewFromInt(int64(bookings)))
}

// RevPAR scales the average daily rate by occupancy.
func RevPAR(occupancyRate float64, adr decimal.Decimal) decimal.Decimal {
	return decimal.NewFromFloat(occupancyRate).Div(decimal.NewFromInt(100)).Mul(adr)
}

// AverageRating is the mean property rating, or zero without properties.
func AverageRating(properties []Property) float64 {
	if len(properties) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range properties {
		total += p.Rating
	}
	return total / float64(len(properties))
}

// RepeatGuestRate is the rounded share of guests with more than one
// booking.
func RepeatGuestRate(guests []GuestWithStats) int {
	repeat := 0
	for _, g := range guests {
		if g.IsRepeat() {
			repeat++
		}
	}
	return int(math.Round(SafePercent(float64(repeat), float64(len(guests)))))
}

// Growth compares the last 30 days with the 30 days before them.
type Growth struct {
	CurrentBookings  int             `json:"current_bookings"`
	PreviousBookings int             `json:"previous_bookings"`
	CurrentRevenue   decimal.Decimal `json:"current_revenue"`
	PreviousRevenue  decimal.Decimal `json:"previous_revenue"`
	BookingGrowth    float64         `json:"booking_growth"`
	RevenueGrowth    float64         `json:"revenue_growth"`
}

// ComputeGrowth buckets bookings by creation time relative to now.
// Cancelled bookings are skipped.
func ComputeGrowth(bookings []BookingWithRelations, now time.Time) Growth {
	g := Growth{CurrentRevenue: decimal.Zero, PreviousRevenue: decimal.Zero}
	currentStart := now.Add(-growthWindow)
	previousStart := currentStart.Add(-growthWindow)
	for _, b := range bookings {
		if b.EffectiveStatus == StatusCancelled || b.CreatedAt.After(now) {
			continue
		}
		switch {
		case !b.CreatedAt.Before(currentStart):
			g.CurrentBookings++
			g.CurrentRevenue = g.CurrentRevenue.Add(b.TotalAmount)
		case !b.CreatedAt.Before(previousStart):
			g.PreviousBookings++
			g.PreviousRevenue = g.PreviousRevenue.Add(b.TotalAmount)
		}
	}
	g.BookingGrowth = GrowthPercent(float64(g.CurrentBookings), float64(g.PreviousBookings))
	g.RevenueGrowth = GrowthPercent(g.CurrentRevenue.InexactFloat64(), g.PreviousRevenue.InexactFloat64())
	return g
}
