package bookings

import (
	"strings"
	"time"

	"github.com/writemytrip/ownerdesk/internal/reporting"
)

// Apply keeps the bookings matching f. today is the owner's calendar day
// at midnight UTC, the representation of DATE columns.
func (f Filter) Apply(bookings []reporting.BookingWithRelations, today time.Time) []reporting.BookingWithRelations {
	query := strings.ToLower(f.Query)
	out := make([]reporting.BookingWithRelations, 0, len(bookings))
	for _, b := range bookings {
		if f.Status != "" && b.EffectiveStatus != f.Status {
			continue
		}
		if query != "" && !matches(b, query) {
			continue
		}
		if !inRange(b, f.Range, today) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func matches(b reporting.BookingWithRelations, query string) bool {
	if strings.Contains(strings.ToLower(b.GuestDisplayName()), query) {
		return true
	}
	if strings.Contains(strings.ToLower(b.ID.String()), query) {
		return true
	}
	return b.Guest != nil && strings.Contains(strings.ToLower(b.Guest.Email), query)
}

func inRange(b reporting.BookingWithRelations, r DateRange, today time.Time) bool {
	checkIn := calendarDay(b.CheckInDate)
	checkOut := calendarDay(b.CheckOutDate)
	switch r {
	case RangeToday:
		return checkIn.Equal(today) || checkOut.Equal(today) ||
			(!checkIn.After(today) && !checkOut.Before(today))
	case RangeWeek:
		return !checkIn.Before(today) && !checkIn.After(today.AddDate(0, 0, 7))
	case RangeMonth:
		return !checkIn.Before(today) && !checkIn.After(today.AddDate(0, 1, 0))
	default:
		return true
	}
}

// ComputeStats counts bookings by effective status and today's movements.
func ComputeStats(bookings []reporting.BookingWithRelations, today time.Time) Stats {
	stats := Stats{Total: len(bookings)}
	for _, b := range bookings {
		if b.EffectiveStatus == reporting.StatusPending {
			stats.Pending++
		}
		if calendarDay(b.CheckInDate).Equal(today) {
			stats.CheckInsToday++
		}
		if calendarDay(b.CheckOutDate).Equal(today) {
			stats.CheckOutsToday++
		}
	}
	return stats
}

// Today returns now's calendar day in loc as midnight UTC.
func Today(now time.Time, loc *time.Location) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
