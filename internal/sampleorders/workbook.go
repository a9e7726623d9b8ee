package sampleorders

import (
	"fmt"

	"github.com/okian/demandrank/internal/domain/scoring"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Orders"

// WriteWorkbook saves rows as an .xlsx file with a header row. Dates are
// stored as real date cells.
func WriteWorkbook(path string, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return fmt.Errorf("date style: %w", err)
	}

	header := []any{scoring.ColumnDate, scoring.ColumnProduct, scoring.ColumnTotalOrders}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{r.Date, r.Product, r.TotalOrders}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if len(rows) > 0 {
		last, _ := excelize.CoordinatesToCellName(1, len(rows)+1)
		if err := f.SetCellStyle(sheetName, "A2", last, dateStyle); err != nil {
			return fmt.Errorf("style dates: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
