package guests

import (
	"sort"
	"strings"

	"github.com/writemytrip/ownerdesk/internal/reporting"
)

// Apply keeps the guests matching f, ordered by f.Sort.
func (f Filter) Apply(guests []reporting.GuestWithStats) []reporting.GuestWithStats {
	query := strings.ToLower(f.Query)
	out := make([]reporting.GuestWithStats, 0, len(guests))
	for _, g := range guests {
		if f.Status != "" && g.Status != f.Status {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(g.Name), query) &&
			!strings.Contains(strings.ToLower(g.Email), query) {
			continue
		}
		out = append(out, g)
	}
	sortGuests(out, f.Sort)
	return out
}

func sortGuests(guests []reporting.GuestWithStats, by Sort) {
	var less func(a, b reporting.GuestWithStats) bool
	switch by {
	case SortName:
		less = func(a, b reporting.GuestWithStats) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	case SortBookings:
		less = func(a, b reporting.GuestWithStats) bool { return a.TotalBookings > b.TotalBookings }
	case SortSpent:
		less = func(a, b reporting.GuestWithStats) bool { return a.TotalSpent.GreaterThan(b.TotalSpent) }
	default:
		less = func(a, b reporting.GuestWithStats) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(guests, func(i, j int) bool { return less(guests[i], guests[j]) })
}

// ComputeStats summarises the whole guest list.
func ComputeStats(guests []reporting.GuestWithStats) Stats {
	stats := Stats{TotalGuests: len(guests), RepeatGuestRate: reporting.RepeatGuestRate(guests)}
	for _, g := range guests {
		if g.Status == reporting.GuestVIP {
			stats.VIPGuests++
		}
		if g.CurrentBookingStatus == reporting.StatusCheckedIn {
			stats.CurrentlyStaying++
		}
	}
	return stats
}
