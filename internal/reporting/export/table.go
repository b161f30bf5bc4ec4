// Package export renders owner reports as CSV, XLSX and PDF documents.
package export

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Table is a sheet of rows shared by the CSV and XLSX writers. Cells may
// be strings, integers, floats, decimals, times or nil.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]any
}

const dateLayout = "2006-01-02"

func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case *string:
		if c == nil {
			return ""
		}
		return *c
	case int:
		return strconv.Itoa(c)
	case int64:
		return strconv.FormatInt(c, 10)
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case decimal.Decimal:
		return c.StringFixed(2)
	case time.Time:
		if c.IsZero() {
			return ""
		}
		return c.Format(dateLayout)
	case *time.Time:
		if c == nil || c.IsZero() {
			return ""
		}
		return c.Format(dateLayout)
	case interface{ String() string }:
		return c.String()
	default:
		return ""
	}
}
