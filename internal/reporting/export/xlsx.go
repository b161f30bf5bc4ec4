package export

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ContentTypeXLSX is the media type of workbooks written by WriteXLSX.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const defaultSheet = "Sheet1"

// WriteXLSX writes each table to its own sheet of a new workbook.
func WriteXLSX(w io.Writer, tables ...Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("export: at least one table required")
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return err
	}

	for i, table := range tables {
		sheet := table.Sheet
		if sheet == "" {
			sheet = fmt.Sprintf("Sheet%d", i+1)
		}
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := writeSheet(f, sheet, table, headerStyle, dateStyle); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, table Table, headerStyle, dateStyle int) error {
	for col, heading := range table.Header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, heading); err != nil {
			return err
		}
	}
	if len(table.Header) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(table.Header), 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return err
		}
		lastCol, _ := excelize.ColumnNumberToName(len(table.Header))
		if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
			return err
		}
	}

	for r, row := range table.Rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			value, isDate := xlsxValue(v)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
			if isDate {
				if err := f.SetCellStyle(sheet, cell, cell, dateStyle); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// xlsxValue converts a cell to a value excelize stores natively. Amounts
// become numbers so spreadsheets can sum them.
func xlsxValue(v any) (any, bool) {
	switch c := v.(type) {
	case decimal.Decimal:
		return c.InexactFloat64(), false
	case time.Time:
		if c.IsZero() {
			return "", false
		}
		return c, true
	case *time.Time:
		if c == nil || c.IsZero() {
			return "", false
		}
		return *c, true
	case nil:
		return "", false
	case string, int, int64, float64:
		return c, false
	default:
		return cellString(v), false
	}
}
