package reporting

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthLabels are the bucket labels in calendar order.
var MonthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthBucket holds one calendar month of booking and manual figures.
type MonthBucket struct {
	Month           string          `json:"month"`
	Revenue         decimal.Decimal `json:"revenue"`
	Commission      decimal.Decimal `json:"commission"`
	Net             decimal.Decimal `json:"net"`
	Bookings        int             `json:"bookings"`
	ManualIncome    decimal.Decimal `json:"manual_income"`
	ManualExpenses  decimal.Decimal `json:"manual_expenses"`
	ManualNet       decimal.Decimal `json:"manual_net"`
	CombinedRevenue decimal.Decimal `json:"combined_revenue"`
	CombinedNet     decimal.Decimal `json:"combined_net"`
}

// MonthlyLedger buckets a year of bookings and manual entries by month.
// Derived fields are filled by Finalize.
type MonthlyLedger struct {
	year    int
	loc     *time.Location
	rate    decimal.Decimal
	buckets [12]MonthBucket
}

// NewMonthlyLedger creates twelve zeroed buckets for year. Dates are
// assigned to months in loc.
func NewMonthlyLedger(year int, loc *time.Location, commissionRate decimal.Decimal) *MonthlyLedger {
	if loc == nil {
		loc = time.UTC
	}
	l := &MonthlyLedger{year: year, loc: loc, rate: commissionRate}
	for i := range l.buckets {
		l.buckets[i] = MonthBucket{
			Month:           MonthLabels[i],
			Revenue:         decimal.Zero,
			Commission:      decimal.Zero,
			Net:             decimal.Zero,
			ManualIncome:    decimal.Zero,
			ManualExpenses:  decimal.Zero,
			ManualNet:       decimal.Zero,
			CombinedRevenue: decimal.Zero,
			CombinedNet:     decimal.Zero,
		}
	}
	return l
}

func (l *MonthlyLedger) bucketFor(t time.Time) *MonthBucket {
	local := t.In(l.loc)
	if local.Year() != l.year {
		return nil
	}
	return &l.buckets[int(local.Month())-1]
}

// AddBooking books the amount into the month the booking was created. It
// reports false when the booking falls outside the ledger year.
func (l *MonthlyLedger) AddBooking(b Booking) bool {
	bucket := l.bucketFor(b.CreatedAt)
	if bucket == nil {
		return false
	}
	commission := b.TotalAmount.Mul(l.rate)
	bucket.Revenue = bucket.Revenue.Add(b.TotalAmount)
	bucket.Commission = bucket.Commission.Add(commission)
	bucket.Net = bucket.Net.Add(b.TotalAmount.Sub(commission))
	bucket.Bookings++
	return true
}

// AddManualEntry books the entry into the month of its date. Expenses
// count by magnitude whatever their stored sign. Entries dated outside the
// ledger year are rejected.
func (l *MonthlyLedger) AddManualEntry(e ManualEntry) bool {
	bucket := l.bucketFor(calendarDate(e.Date, l.loc))
	if bucket == nil {
		return false
	}
	switch e.Type {
	case EntryIncome:
		bucket.ManualIncome = bucket.ManualIncome.Add(e.Amount)
	case EntryExpense:
		bucket.ManualExpenses = bucket.ManualExpenses.Add(e.Amount.Abs())
	}
	return true
}

// Finalize computes the derived fields over all buckets and returns them
// in calendar order.
func (l *MonthlyLedger) Finalize() []MonthBucket {
	out := make([]MonthBucket, 12)
	for i, bucket := range l.buckets {
		bucket.ManualNet = bucket.ManualIncome.Sub(bucket.ManualExpenses)
		bucket.CombinedRevenue = bucket.Revenue.Add(bucket.ManualIncome)
		bucket.CombinedNet = bucket.Net.Add(bucket.ManualNet)
		out[i] = bucket
	}
	return out
}

// calendarDate re-anchors a DATE column value, which arrives as UTC
// midnight, to midnight in loc so it keeps its calendar day.
func calendarDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
