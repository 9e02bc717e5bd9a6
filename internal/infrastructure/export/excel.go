// Package export renders reports into downloadable files.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"fueldesk/internal/domain/reports"
)

const reportSheet = "Period Report"

var reportHeader = []string{
	"Tank", "Product", "Category", "From", "To", "Status",
	"Opening", "Import", "Export", "Loss Rate", "Loss", "Closing",
}

// PeriodReportWorkbook renders a period report into an xlsx workbook:
// one row per slice, grouped by tank, with category totals at the bottom.
func PeriodReportWorkbook(r *reports.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(reportSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	title := fmt.Sprintf("%s: %s — %s", r.StoreName, r.RangeFrom.String(), r.RangeTo.String())
	if err := f.SetCellValue(reportSheet, "A1", title); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	row := 3
	for col, name := range reportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		if err := f.SetCellValue(reportSheet, cell, name); err != nil {
			return nil, err
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(reportHeader), row)
	if err := f.SetCellStyle(reportSheet, first, last, headerStyle); err != nil {
		return nil, err
	}

	for _, t := range r.Tanks {
		for _, s := range t.Slices {
			row++
			values := []any{
				t.TankCode + " " + t.TankName,
				t.ProductName,
				string(t.Category),
				s.PeriodFrom.String(),
				s.PeriodTo.String(),
				string(s.Status),
				s.OpeningBalance.InexactFloat64(),
				s.ImportQuantity.InexactFloat64(),
				s.ExportQuantity.InexactFloat64(),
				s.LossRate.InexactFloat64(),
				s.LossAmount.InexactFloat64(),
				s.ClosingBalance.InexactFloat64(),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				if err := f.SetCellValue(reportSheet, cell, v); err != nil {
					return nil, err
				}
			}
		}
	}

	row += 2
	for _, totals := range r.Totals {
		values := []any{
			"Total " + string(totals.Category), "", "", "", "", "",
			totals.OpeningBalance.InexactFloat64(),
			totals.ImportQuantity.InexactFloat64(),
			totals.ExportQuantity.InexactFloat64(),
			"",
			totals.LossAmount.InexactFloat64(),
			totals.ClosingBalance.InexactFloat64(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(reportSheet, cell, v); err != nil {
				return nil, err
			}
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(reportHeader), row)
		if err := f.SetCellStyle(reportSheet, first, last, headerStyle); err != nil {
			return nil, err
		}
		row++
	}

	return f, nil
}
