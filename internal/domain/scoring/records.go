package scoring

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/demandrank/internal/domain/model"
	"github.com/okian/demandrank/internal/domain/table"
	"github.com/xuri/excelize/v2"
)

// Required input columns.
const (
	ColumnDate        = "Date"
	ColumnProduct     = "Product"
	ColumnTotalOrders = "Total Orders"
)

var errUnknownLayout = errors.New("unrecognized date layout")

// dateLayouts are tried in order; month-first wins over day-first.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"2006.01.02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"01-02-2006",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
	"02-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// Records resolves the required columns once and converts every row.
// Rows with a blank date or product are skipped; a blank or non-numeric
// Total Orders counts as 0.
func Records(tbl *table.Table) ([]model.OrderRecord, error) {
	cols := make(map[string]int, 3)
	for _, name := range []string{ColumnDate, ColumnProduct, ColumnTotalOrders} {
		idx := tbl.Index(name)
		if idx < 0 {
			return nil, missingColumn(name)
		}
		cols[name] = idx
	}

	out := make([]model.OrderRecord, 0, tbl.Len())
	for i := range tbl.Rows {
		rawDate := strings.TrimSpace(tbl.Cell(i, cols[ColumnDate]))
		if rawDate == "" {
			continue
		}
		date, err := parseDate(rawDate, tbl.Date1904)
		if err != nil {
			return nil, invalidDate(i+1, rawDate, err)
		}
		product := tbl.Cell(i, cols[ColumnProduct])
		if strings.TrimSpace(product) == "" {
			continue
		}
		out = append(out, model.OrderRecord{
			Date:        date,
			Product:     product,
			TotalOrders: ParseTotal(tbl.Cell(i, cols[ColumnTotalOrders])),
		})
	}
	return out, nil
}

// ParseDate accepts an Excel serial day number (1900 date system) or one of
// dateLayouts.
func ParseDate(s string) (time.Time, error) {
	return parseDate(s, false)
}

func parseDate(s string, date1904 bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(serial) || math.IsInf(serial, 0) {
			return time.Time{}, errUnknownLayout
		}
		t, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			return time.Time{}, fmt.Errorf("excel serial: %w", err)
		}
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errUnknownLayout
}

// ParseTotal coerces an order count; anything unparseable is 0.
func ParseTotal(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
