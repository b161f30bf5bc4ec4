// Package guests manages the owner's guest list: guests who booked one of
// the owner's properties plus guests the owner added by hand.
package guests

import (
	"fmt"
	"strings"
	"time"

	"github.com/writemytrip/ownerdesk/internal/reporting"
	"github.com/writemytrip/ownerdesk/internal/shared"
)

// ErrDuplicateEmail is returned when another guest already uses the email.
var ErrDuplicateEmail = fmt.Errorf("%w: a guest with this email already exists", shared.ErrDuplicate)

// Sort orders the guest list.
type Sort string

const (
	SortRecent   Sort = "recent"
	SortName     Sort = "name"
	SortBookings Sort = "bookings"
	SortSpent    Sort = "spent"
)

// Filter holds the list query.
type Filter struct {
	Query  string
	Status reporting.GuestStatus
	Sort   Sort
}

// ParseFilter validates raw query values.
func ParseFilter(query, status, sort string) (Filter, error) {
	f := Filter{Query: strings.TrimSpace(query), Sort: SortRecent}
	switch s := reporting.GuestStatus(strings.ToLower(strings.TrimSpace(status))); {
	case s == "" || s == "all":
	case s.Valid():
		f.Status = s
	default:
		return Filter{}, shared.NewValidationError("status", "must be one of all new regular vip")
	}
	switch s := Sort(strings.ToLower(strings.TrimSpace(sort))); s {
	case "":
	case SortRecent, SortName, SortBookings, SortSpent:
		f.Sort = s
	default:
		return Filter{}, shared.NewValidationError("sort", "must be one of recent name bookings spent")
	}
	return f, nil
}

// Stats are the counters shown above the guest list.
type Stats struct {
	TotalGuests      int `json:"total_guests"`
	VIPGuests        int `json:"vip_guests"`
	CurrentlyStaying int `json:"currently_staying"`
	RepeatGuestRate  int `json:"repeat_guest_rate"`
}

// ListResult is one page of filtered guests with stats over all of them.
type ListResult struct {
	Guests      []reporting.GuestWithStats `json:"guests"`
	Stats       Stats                      `json:"stats"`
	Pagination  shared.Pagination          `json:"pagination"`
	GeneratedAt time.Time                  `json:"generated_at"`
	Stale       bool                       `json:"stale"`
	Notice      string                     `json:"notice,omitempty"`
}

// CreateInput is the body of POST /guests.
type CreateInput struct {
	Name             string `json:"name" validate:"required,max=200"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone" validate:"required,max=32"`
	Nationality      string `json:"nationality" validate:"max=100"`
	IDType           string `json:"id_type" validate:"max=50"`
	IDNumber         string `json:"id_number" validate:"max=100"`
	Address          string `json:"address" validate:"max=500"`
	EmergencyContact string `json:"emergency_contact" validate:"max=200"`
	EmergencyPhone   string `json:"emergency_phone" validate:"max=32"`
	SpecialRequests  string `json:"special_requests" validate:"max=1000"`
}

// UpdateInput is the body of PATCH /guests/{id}. Nil fields are kept.
type UpdateInput struct {
	Name             *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email            *string `json:"email" validate:"omitempty,email"`
	Phone            *string `json:"phone" validate:"omitempty,min=1,max=32"`
	Nationality      *string `json:"nationality" validate:"omitempty,max=100"`
	IDType           *string `json:"id_type" validate:"omitempty,max=50"`
	IDNumber         *string `json:"id_number" validate:"omitempty,max=100"`
	Address          *string `json:"address" validate:"omitempty,max=500"`
	EmergencyContact *string `json:"emergency_contact" validate:"omitempty,max=200"`
	EmergencyPhone   *string `json:"emergency_phone" validate:"omitempty,max=32"`
	SpecialRequests  *string `json:"special_requests" validate:"omitempty,max=1000"`
	Notes            *string `json:"notes" validate:"omitempty,max=2000"`
}

// StatusInput is the body of PATCH /guests/{id}/status.
type StatusInput struct {
	Status string `json:"status" validate:"required,oneof=new regular vip"`
}

// NewGuest builds the row inserted for input. Emails are stored lower-cased
// and new guests start with status "new".
func NewGuest(input CreateInput) reporting.Guest {
	return reporting.Guest{
		Name:             strings.TrimSpace(input.Name),
		Email:            normalizeEmail(input.Email),
		Phone:            strings.TrimSpace(input.Phone),
		Nationality:      input.Nationality,
		IDType:           input.IDType,
		IDNumber:         input.IDNumber,
		Address:          input.Address,
		EmergencyContact: input.EmergencyContact,
		EmergencyPhone:   input.EmergencyPhone,
		SpecialRequests:  input.SpecialRequests,
		Status:           reporting.GuestNew,
	}
}

// Apply merges the set fields of input into g.
func (input UpdateInput) Apply(g reporting.Guest) reporting.Guest {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&g.Name, input.Name)
	set(&g.Phone, input.Phone)
	set(&g.Nationality, input.Nationality)
	set(&g.IDType, input.IDType)
	set(&g.IDNumber, input.IDNumber)
	set(&g.Address, input.Address)
	set(&g.EmergencyContact, input.EmergencyContact)
	set(&g.EmergencyPhone, input.EmergencyPhone)
	set(&g.SpecialRequests, input.SpecialRequests)
	set(&g.Notes, input.Notes)
	if input.Email != nil {
		g.Email = normalizeEmail(*input.Email)
	}
	g.Name = strings.TrimSpace(g.Name)
	return g
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
