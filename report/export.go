package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportDayWiseXLSX writes a day-wise report as an XLSX workbook.
func ExportDayWiseXLSX(w io.Writer, from, to time.Time, rows []DayRow) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Day-wise Sales"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	f.SetCellValue(sheet, "A1", fmt.Sprintf("Sales by trip date: %s to %s",
		from.Format("2006-01-02"), to.Format("2006-01-02")))
	f.MergeCell(sheet, "A1", "D1")

	headers := []string{"Date", "Sales", "Bookings", "Travelers"}
	writeHeaderRow(f, sheet, headers, 2)

	for i, row := range rows {
		r := i + 3
		f.SetCellValue(sheet, fmt.Sprintf("A%d", r), row.Date.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", r), row.Sales.StringFixed(2))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", r), row.Bookings)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", r), row.Travelers)
	}

	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", "D", 12)
	f.DeleteSheet("Sheet1")

	return f.Write(w)
}

// ExportPackageWiseXLSX writes a package-wise report as an XLSX workbook.
func ExportPackageWiseXLSX(w io.Writer, from, to time.Time, rows []PackageRow) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Package-wise Sales"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	f.SetCellValue(sheet, "A1", fmt.Sprintf("Sales by package: %s to %s",
		from.Format("2006-01-02"), to.Format("2006-01-02")))
	f.MergeCell(sheet, "A1", "E1")

	headers := []string{"Package", "Destination", "Sales", "Bookings", "Travelers"}
	writeHeaderRow(f, sheet, headers, 2)

	for i, row := range rows {
		r := i + 3
		f.SetCellValue(sheet, fmt.Sprintf("A%d", r), row.PackageName)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", r), row.Destination)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", r), row.Sales.StringFixed(2))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", r), row.Bookings)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", r), row.Travelers)
	}

	f.SetColWidth(sheet, "A", "B", 24)
	f.SetColWidth(sheet, "C", "E", 12)
	f.DeleteSheet("Sheet1")

	return f.Write(w)
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string, row int) {
	style, styleErr := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, h)
		if styleErr == nil {
			f.SetCellStyle(sheet, cell, cell, style)
		}
	}
}
