// Package bookings lists an owner's bookings and records approval
// decisions in the booking status history.
package bookings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/writemytrip/ownerdesk/internal/reporting"
	"github.com/writemytrip/ownerdesk/internal/shared"
)

// ErrNotPending is returned when approving or rejecting a booking that is
// no longer awaiting a decision.
var ErrNotPending = fmt.Errorf("%w: booking is not pending", shared.ErrValidation)

// Status history notes written on owner decisions.
const (
	NoteApproved = "Booking approved by owner"
	NoteRejected = "Booking rejected by owner"
)

// DateRange narrows the list around today.
type DateRange string

const (
	RangeAll   DateRange = "all"
	RangeToday DateRange = "today"
	RangeWeek  DateRange = "week"
	RangeMonth DateRange = "month"
)

// Filter holds the list query.
type Filter struct {
	Status reporting.BookingStatus
	Query  string
	Range  DateRange
}

// ParseFilter validates raw query values.
func ParseFilter(status, query, dateRange string) (Filter, error) {
	f := Filter{Query: strings.TrimSpace(query), Range: RangeAll}
	switch s := reporting.BookingStatus(strings.ToLower(strings.TrimSpace(status))); {
	case s == "" || s == "all":
	case s.Valid():
		f.Status = s
	default:
		return Filter{}, shared.NewValidationError("status", "unknown booking status")
	}
	switch r := DateRange(strings.ToLower(strings.TrimSpace(dateRange))); r {
	case "", RangeAll:
	case RangeToday, RangeWeek, RangeMonth:
		f.Range = r
	default:
		return Filter{}, shared.NewValidationError("range", "must be one of all today week month")
	}
	return f, nil
}

// Stats are the counters shown above the list.
type Stats struct {
	Total          int `json:"total_bookings"`
	Pending        int `json:"pending_bookings"`
	CheckInsToday  int `json:"check_ins_today"`
	CheckOutsToday int `json:"check_outs_today"`
}

// ListResult is one page of filtered bookings with the owner's stats.
type ListResult struct {
	Bookings    []reporting.BookingWithRelations `json:"bookings"`
	Stats       Stats                            `json:"stats"`
	Pagination  shared.Pagination                `json:"pagination"`
	GeneratedAt time.Time                        `json:"generated_at"`
	Stale       bool                             `json:"stale"`
	Notice      string                           `json:"notice,omitempty"`
}

// Decision is an owner's verdict on a pending booking.
type Decision struct {
	Status reporting.BookingStatus
	Note   string
}

var (
	approve = Decision{Status: reporting.StatusConfirmed, Note: NoteApproved}
	reject  = Decision{Status: reporting.StatusCancelled, Note: NoteRejected}
)

// IsNotPending reports whether err came from a decision on a settled
// booking.
func IsNotPending(err error) bool {
	return errors.Is(err, ErrNotPending)
}
