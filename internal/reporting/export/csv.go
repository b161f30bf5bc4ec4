package export

import (
	"encoding/csv"
	"io"

	"github.com/writemytrip/ownerdesk/internal/reporting"
)

// WriteCSV serialises a table with its header row.
func WriteCSV(w io.Writer, table Table) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(table.Header); err != nil {
		return err
	}
	record := make([]string, len(table.Header))
	for _, row := range table.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = cellString(row[i])
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// FinanceTable lays out the monthly ledger of a finance report.
func FinanceTable(report reporting.FinanceReport) Table {
	table := Table{
		Sheet: "Finance",
		Header: []string{
			"Month", "Bookings", "Revenue", "Commission", "Net",
			"Manual Income", "Manual Expenses", "Manual Net",
			"Combined Revenue", "Combined Net",
		},
	}
	for _, m := range report.Months {
		table.Rows = append(table.Rows, []any{
			m.Month, m.Bookings, m.Revenue, m.Commission, m.Net,
			m.ManualIncome, m.ManualExpenses, m.ManualNet,
			m.CombinedRevenue, m.CombinedNet,
		})
	}
	t := report.Totals
	table.Rows = append(table.Rows, []any{
		"Total", report.KPIs.BookingCount, t.TotalEarnings, t.TotalCommission, t.NetRevenue,
		t.ManualIncome, t.ManualExpenses, t.ManualNet,
		t.CombinedRevenue, t.CombinedNet,
	})
	return table
}

// EntriesTable lists manual finance entries.
func EntriesTable(entries []reporting.ManualEntry) Table {
	table := Table{
		Sheet:  "Entries",
		Header: []string{"Date", "Type", "Category", "Title", "Description", "Amount"},
	}
	for _, e := range entries {
		table.Rows = append(table.Rows, []any{e.Date, string(e.Type), e.Category, e.Title, e.Description, e.Amount})
	}
	return table
}

// GuestsTable lists guests with their booking figures.
func GuestsTable(guests []reporting.GuestWithStats) Table {
	table := Table{
		Sheet:  "Guests",
		Header: []string{"Name", "Email", "Phone", "Status", "Total Bookings", "Total Spent", "Last Visit", "Currently Staying"},
	}
	for _, g := range guests {
		staying := "no"
		if g.CurrentBookingStatus == reporting.StatusCheckedIn {
			staying = "yes"
		}
		table.Rows = append(table.Rows, []any{g.Name, g.Email, g.Phone, string(g.Status), g.TotalBookings, g.TotalSpent, g.LastVisit, staying})
	}
	return table
}
