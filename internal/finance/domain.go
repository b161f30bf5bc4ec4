// Package finance manages the owner's manual income and expense entries.
package finance

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/writemytrip/ownerdesk/internal/reporting"
	"github.com/writemytrip/ownerdesk/internal/shared"
)

const dateLayout = "2006-01-02"

// Categories lists the allowed categories per entry type.
var Categories = map[reporting.EntryType][]string{
	reporting.EntryIncome: {
		"Direct Bookings",
		"Events & Functions",
		"Food & Beverage",
		"Spa & Wellness",
		"Laundry Services",
		"Transportation",
		"Tour Packages",
		"Other Services",
	},
	reporting.EntryExpense: {
		"Marketing & Advertising",
		"Maintenance & Repairs",
		"Utilities",
		"Staff Salaries",
		"Supplies",
		"Insurance",
		"Taxes",
		"Professional Services",
		"Equipment",
		"Other",
	},
}

// ValidCategory reports whether category belongs to the set for t.
func ValidCategory(t reporting.EntryType, category string) bool {
	return slices.Contains(Categories[t], category)
}

// EntryInput is the body of POST and PUT on manual entries. Amounts are
// positive; the type decides the sign in reports.
type EntryInput struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=1000"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type" validate:"required,oneof=income expense"`
	Category    string          `json:"category" validate:"required"`
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
}

// Entry checks the rules the tags cannot express and builds the entry
// stored for ownerID.
func (in EntryInput) Entry(ownerID uuid.UUID) (reporting.ManualEntry, error) {
	fields := map[string]string{}
	if !in.Amount.IsPositive() {
		fields["amount"] = "must be greater than zero"
	}
	entryType := reporting.EntryType(in.Type)
	if !ValidCategory(entryType, in.Category) {
		fields["category"] = fmt.Sprintf("is not a %s category", entryType)
	}
	date, err := parseDate(in.Date)
	if err != nil {
		fields["date"] = "must be a date like 2025-01-31"
	}
	if len(fields) > 0 {
		return reporting.ManualEntry{}, &shared.ValidationError{Fields: fields}
	}
	entry := reporting.ManualEntry{
		OwnerID:  ownerID,
		Title:    strings.TrimSpace(in.Title),
		Amount:   in.Amount.Round(2),
		Type:     entryType,
		Category: in.Category,
		Date:     date,
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		entry.Description = &d
	}
	return entry, nil
}

// ListFilter narrows GET /finance/entries.
type ListFilter struct {
	Year int
	Type reporting.EntryType
}

// ParseListFilter validates the list query. A zero year lists every year.
func ParseListFilter(year, entryType string) (ListFilter, error) {
	var f ListFilter
	if y := strings.TrimSpace(year); y != "" {
		n, err := strconv.Atoi(y)
		if err != nil || n < 2000 || n > 2100 {
			return ListFilter{}, shared.NewValidationError("year", "must be a four digit year")
		}
		f.Year = n
	}
	switch t := reporting.EntryType(strings.ToLower(strings.TrimSpace(entryType))); t {
	case "", "all":
	case reporting.EntryIncome, reporting.EntryExpense:
		f.Type = t
	default:
		return ListFilter{}, shared.NewValidationError("type", "must be one of income expense")
	}
	return f, nil
}

// Summary totals a list of entries.
type Summary struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// Summarize adds up income and expenses.
func Summarize(entries []reporting.ManualEntry) Summary {
	s := Summary{Income: decimal.Zero, Expenses: decimal.Zero}
	for _, e := range entries {
		switch e.Type {
		case reporting.EntryIncome:
			s.Income = s.Income.Add(e.Amount)
		case reporting.EntryExpense:
			s.Expenses = s.Expenses.Add(e.Amount.Abs())
		}
	}
	s.Net = s.Income.Sub(s.Expenses)
	return s
}

// ListResult is the entries screen payload.
type ListResult struct {
	Entries []reporting.ManualEntry `json:"entries"`
	Summary Summary                 `json:"summary"`
}

func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}
