package reporting

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyLedgerAlwaysHasTwelveBuckets(t *testing.T) {
	months := NewMonthlyLedger(2025, time.UTC, DefaultCommissionRate).Finalize()
	require.Len(t, months, 12)
	for i, m := range months {
		assert.Equal(t, MonthLabels[i], m.Month)
		assert.True(t, m.Revenue.IsZero())
		assert.True(t, m.CombinedNet.IsZero())
		assert.Zero(t, m.Bookings)
	}
}

func TestMonthlyLedgerManualEntries(t *testing.T) {
	ledger := NewMonthlyLedger(2025, time.UTC, DefaultCommissionRate)
	owner := uuid.New()
	ledger.AddManualEntry(ManualEntry{OwnerID: owner, Type: EntryIncome, Amount: amount(1000), Date: date(2025, time.March, 5)})
	ledger.AddManualEntry(ManualEntry{OwnerID: owner, Type: EntryExpense, Amount: amount(-400), Date: date(2025, time.March, 20)})

	march := ledger.Finalize()[2]
	assert.True(t, march.ManualIncome.Equal(amount(1000)), march.ManualIncome.String())
	assert.True(t, march.ManualExpenses.Equal(amount(400)), march.ManualExpenses.String())
	assert.True(t, march.ManualNet.Equal(amount(600)), march.ManualNet.String())
	assert.True(t, march.CombinedRevenue.Equal(amount(1000)))
	assert.True(t, march.CombinedNet.Equal(amount(600)))
}

func TestMonthlyLedgerPositiveExpenseCountsByMagnitude(t *testing.T) {
	ledger := NewMonthlyLedger(2025, time.UTC, DefaultCommissionRate)
	ledger.AddManualEntry(ManualEntry{Type: EntryExpense, Amount: amount(250), Date: date(2025, time.July, 1)})
	july := ledger.Finalize()[6]
	assert.True(t, july.ManualExpenses.Equal(amount(250)))
	assert.True(t, july.ManualNet.Equal(amount(-250)))
}

func TestMonthlyLedgerBookingCommission(t *testing.T) {
	ledger := NewMonthlyLedger(2025, time.UTC, DefaultCommissionRate)
	ledger.AddBooking(Booking{TotalAmount: amount(10000), CreatedAt: time.Date(2025, time.May, 12, 14, 0, 0, 0, time.UTC)})

	may := ledger.Finalize()[4]
	assert.Equal(t, 1, may.Bookings)
	assert.True(t, may.Revenue.Equal(amount(10000)))
	assert.True(t, may.Commission.Equal(amount(1000)), may.Commission.String())
	assert.True(t, may.Net.Equal(amount(9000)), may.Net.String())
	assert.True(t, may.CombinedRevenue.Equal(amount(10000)))
	assert.True(t, may.CombinedNet.Equal(amount(9000)))
}

func TestMonthlyLedgerUsesLocationAndIgnoresOtherYears(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	ledger := NewMonthlyLedger(2025, loc, DefaultCommissionRate)

	// 20:00 UTC on Jan 31 is already Feb 1 in India.
	assert.True(t, ledger.AddBooking(Booking{TotalAmount: amount(100), CreatedAt: time.Date(2025, time.January, 31, 20, 0, 0, 0, time.UTC)}))
	assert.False(t, ledger.AddBooking(Booking{TotalAmount: amount(999), CreatedAt: time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC)}))
	// DATE values keep their calendar day.
	assert.True(t, ledger.AddManualEntry(ManualEntry{Type: EntryIncome, Amount: amount(50), Date: date(2025, time.January, 31)}))
	assert.False(t, ledger.AddManualEntry(ManualEntry{Type: EntryIncome, Amount: amount(70), Date: date(2026, time.January, 1)}))

	months := ledger.Finalize()
	assert.True(t, months[0].Revenue.IsZero())
	assert.True(t, months[1].Revenue.Equal(amount(100)))
	assert.True(t, months[0].ManualIncome.Equal(amount(50)))
	total := 0
	for _, m := range months {
		total += m.Bookings
	}
	assert.Equal(t, 1, total)
}
