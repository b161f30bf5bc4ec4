package reporting

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	dateLayout         = "2006-01-02"
	recentBookingLimit = 3
)

// DashboardStats are the KPI cards of the owner dashboard. Cancelled
// bookings are excluded from the totals.
type DashboardStats struct {
	TotalBookings    int             `json:"total_bookings"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	CheckInsToday    int             `json:"check_ins_today"`
	CheckOutsToday   int             `json:"check_outs_today"`
	PendingCheckIns  int             `json:"pending_check_ins"`
	PendingCheckOuts int             `json:"pending_check_outs"`
	BookingGrowth    float64         `json:"booking_growth"`
	RevenueGrowth    float64         `json:"revenue_growth"`
}

// RecentBooking is a compact row of the recent bookings list.
type RecentBooking struct {
	ID           uuid.UUID       `json:"id"`
	GuestName    string          `json:"guest_name"`
	RoomName     string          `json:"room_name"`
	PropertyName string          `json:"property_name,omitempty"`
	CheckInDate  time.Time       `json:"check_in_date"`
	CheckOutDate time.Time       `json:"check_out_date"`
	Status       BookingStatus   `json:"status"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	CreatedAt    time.Time       `json:"created_at"`
}

// DashboardReport is the full dashboard payload.
type DashboardReport struct {
	Branding Branding        `json:"branding"`
	Stats    DashboardStats  `json:"stats"`
	Recent   []RecentBooking `json:"recent_bookings"`
}

// SameDay reports whether a DATE value falls on the calendar day of now
// in loc.
func SameDay(date time.Time, now time.Time, loc *time.Location) bool {
	return date.Format(dateLayout) == now.In(loc).Format(dateLayout)
}

// BuildDashboard reduces stitched bookings to the dashboard payload.
func BuildDashboard(bookings []BookingWithRelations, branding Branding, now time.Time, loc *time.Location) DashboardReport {
	if loc == nil {
		loc = time.UTC
	}
	stats := DashboardStats{TotalRevenue: decimal.Zero}
	for _, b := range bookings {
		status := b.EffectiveStatus
		if status == StatusCancelled {
			continue
		}
		stats.TotalBookings++
		stats.TotalRevenue = stats.TotalRevenue.Add(b.TotalAmount)

		checkInToday := SameDay(b.CheckInDate, now, loc)
		checkOutToday := SameDay(b.CheckOutDate, now, loc)
		if checkInToday && (status == StatusConfirmed || status == StatusPending) {
			stats.CheckInsToday++
		}
		if checkInToday && status == StatusConfirmed {
			stats.PendingCheckIns++
		}
		if checkOutToday && status == StatusCheckedIn {
			stats.CheckOutsToday++
			stats.PendingCheckOuts++
		}
	}
	growth := ComputeGrowth(bookings, now)
	stats.BookingGrowth = growth.BookingGrowth
	stats.RevenueGrowth = growth.RevenueGrowth

	branding.BusinessName = branding.DisplayName()
	return DashboardReport{
		Branding: branding,
		Stats:    stats,
		Recent:   RecentBookings(bookings, recentBookingLimit),
	}
}

// RecentBookings returns the newest bookings by creation time.
func RecentBookings(bookings []BookingWithRelations, limit int) []RecentBooking {
	sorted := make([]BookingWithRelations, len(bookings))
	copy(sorted, bookings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	out := make([]RecentBooking, 0, len(sorted))
	for _, b := range sorted {
		row := RecentBooking{
			ID:           b.ID,
			GuestName:    b.GuestDisplayName(),
			RoomName:     b.RoomDisplayName(),
			CheckInDate:  b.CheckInDate,
			CheckOutDate: b.CheckOutDate,
			Status:       b.EffectiveStatus,
			TotalAmount:  b.TotalAmount,
			CreatedAt:    b.CreatedAt,
		}
		if b.Property != nil {
			row.PropertyName = b.Property.Name
		}
		out = append(out, row)
	}
	return out
}
