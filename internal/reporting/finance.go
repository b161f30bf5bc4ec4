package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCommissionRate is the platform commission as a fraction.
var DefaultCommissionRate = decimal.NewFromFloat(0.10)

var (
	roomShare         = decimal.NewFromFloat(0.75)
	foodBeverageShare = decimal.NewFromFloat(0.15)
	extrasShare       = decimal.NewFromFloat(0.10)
	payoutShare       = decimal.NewFromFloat(0.4)
	hundred           = decimal.NewFromInt(100)
)

// chartMonths is how many trailing buckets the revenue chart shows.
const chartMonths = 6

// FinanceView selects which figures the finance screen displays.
type FinanceView string

const (
	ViewCombined FinanceView = "combined"
	ViewCRM      FinanceView = "crm"
	ViewManual   FinanceView = "manual"
)

// ParseFinanceView maps a query value to a view. Empty means combined.
func ParseFinanceView(raw string) (FinanceView, error) {
	switch FinanceView(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ViewCombined:
		return ViewCombined, nil
	case ViewCRM:
		return ViewCRM, nil
	case ViewManual:
		return ViewManual, nil
	}
	return "", fmt.Errorf("reporting: unknown finance view %q", raw)
}

// FinanceTotals are the year-to-date headline figures.
type FinanceTotals struct {
	TotalEarnings   decimal.Decimal `json:"total_earnings"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	NetRevenue      decimal.Decimal `json:"net_revenue"`
	ManualIncome    decimal.Decimal `json:"manual_income"`
	ManualExpenses  decimal.Decimal `json:"manual_expenses"`
	ManualNet       decimal.Decimal `json:"manual_net"`
	CombinedRevenue decimal.Decimal `json:"combined_revenue"`
	CombinedNet     decimal.Decimal `json:"combined_net"`
}

// RevenueBreakdown splits booking earnings by a fixed revenue mix.
type RevenueBreakdown struct {
	Rooms        decimal.Decimal `json:"rooms"`
	FoodBeverage decimal.Decimal `json:"food_beverage"`
	Extras       decimal.Decimal `json:"extras"`
	ManualIncome decimal.Decimal `json:"manual_income"`
}

// FinanceKPIs are the operational ratios of the finance screen.
type FinanceKPIs struct {
	Occupancy             Occupancy       `json:"occupancy"`
	AverageDailyRate      decimal.Decimal `json:"average_daily_rate"`
	AverageRevPAR         decimal.Decimal `json:"average_revpar"`
	GuestRating           float64         `json:"guest_rating"`
	CommissionRatePercent decimal.Decimal `json:"commission_rate_percent"`
	PendingPayouts        decimal.Decimal `json:"pending_payouts"`
	BookingCount          int             `json:"booking_count"`
}

// FinanceReport is the year-to-date finance payload for all views.
type FinanceReport struct {
	Year      int              `json:"year"`
	Totals    FinanceTotals    `json:"totals"`
	Months    []MonthBucket    `json:"months"`
	Breakdown RevenueBreakdown `json:"breakdown"`
	KPIs      FinanceKPIs      `json:"kpis"`
}

// ChartPoint is one month of the displayed revenue/net series.
type ChartPoint struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Net     decimal.Decimal `json:"net"`
}

// FinanceDisplay is the projection of a report for one view.
type FinanceDisplay struct {
	View    FinanceView     `json:"view"`
	Revenue decimal.Decimal `json:"revenue"`
	Net     decimal.Decimal `json:"net"`
	Series  []ChartPoint    `json:"series"`
}

// BuildFinance aggregates the year's bookings and manual entries.
// Bookings count towards earnings whatever their status. Records the
// ledger rejects as outside the year are left out of the totals too, so
// the totals always equal the sum of the months.
func BuildFinance(scope Scope, bookings []BookingWithRelations, entries []ManualEntry, year int, loc *time.Location, rate decimal.Decimal) FinanceReport {
	ledger := NewMonthlyLedger(year, loc, rate)
	earnings := decimal.Zero
	inYear := make([]BookingWithRelations, 0, len(bookings))
	for _, b := range bookings {
		if !ledger.AddBooking(b.Booking) {
			continue
		}
		earnings = earnings.Add(b.TotalAmount)
		inYear = append(inYear, b)
	}
	bookings = inYear

	income := decimal.Zero
	expenses := decimal.Zero
	for _, e := range entries {
		if !ledger.AddManualEntry(e) {
			continue
		}
		switch e.Type {
		case EntryIncome:
			income = income.Add(e.Amount)
		case EntryExpense:
			expenses = expenses.Add(e.Amount.Abs())
		}
	}

	commission := earnings.Mul(rate)
	net := earnings.Sub(commission)
	manualNet := income.Sub(expenses)
	totals := FinanceTotals{
		TotalEarnings:   earnings,
		TotalCommission: commission,
		NetRevenue:      net,
		ManualIncome:    income,
		ManualExpenses:  expenses,
		ManualNet:       manualNet,
		CombinedRevenue: sumAmounts(earnings, income),
		CombinedNet:     sumAmounts(net, manualNet),
	}

	occupancy := OccupancyRate(bookings, scope.RoomTypes)
	adr := AverageDailyRate(earnings, len(bookings))
	kpis := FinanceKPIs{
		Occupancy:             occupancy,
		AverageDailyRate:      adr,
		AverageRevPAR:         RevPAR(occupancy.Rate, adr),
		GuestRating:           AverageRating(scope.Properties),
		CommissionRatePercent: rate.Mul(hundred),
		PendingPayouts:        net.Mul(payoutShare),
		BookingCount:          len(bookings),
	}

	return FinanceReport{
		Year:   year,
		Totals: totals,
		Months: ledger.Finalize(),
		Breakdown: RevenueBreakdown{
			Rooms:        earnings.Mul(roomShare),
			FoodBeverage: earnings.Mul(foodBeverageShare),
			Extras:       earnings.Mul(extrasShare),
			ManualIncome: income,
		},
		KPIs: kpis,
	}
}

// Display projects the report onto a view. The series holds the last six
// calendar months of the year.
func (r FinanceReport) Display(view FinanceView) FinanceDisplay {
	d := FinanceDisplay{View: view}
	switch view {
	case ViewCRM:
		d.Revenue, d.Net = r.Totals.TotalEarnings, r.Totals.NetRevenue
	case ViewManual:
		d.Revenue, d.Net = r.Totals.ManualIncome, r.Totals.ManualNet
	default:
		d.View = ViewCombined
		d.Revenue, d.Net = r.Totals.CombinedRevenue, r.Totals.CombinedNet
	}
	months := r.Months
	if len(months) > chartMonths {
		months = months[len(months)-chartMonths:]
	}
	d.Series = make([]ChartPoint, 0, len(months))
	for _, m := range months {
		point := ChartPoint{Month: m.Month}
		switch d.View {
		case ViewCRM:
			point.Revenue, point.Net = m.Revenue, m.Net
		case ViewManual:
			point.Revenue, point.Net = m.ManualIncome, m.ManualNet
		default:
			point.Revenue, point.Net = m.CombinedRevenue, m.CombinedNet
		}
		d.Series = append(d.Series, point)
	}
	return d
}
