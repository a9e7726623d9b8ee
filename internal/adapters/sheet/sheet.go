// Package sheet reads uploaded spreadsheets into a table.Table.
package sheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/okian/demandrank/internal/domain/table"
	"github.com/xuri/excelize/v2"
)

// Supported extensions, lower-case and without the dot.
const (
	ExtXLSX = "xlsx"
	ExtXLS  = "xls"
	ExtCSV  = "csv"
)

const defaultCharset = "utf-8"

// Load reads the file at path, choosing the reader from its extension.
// Cell values are returned raw, so spreadsheet dates arrive as serial numbers.
func Load(ctx context.Context, path string, opts ...Option) (*table.Table, error) {
	o := options{charset: defaultCharset}
	for _, opt := range opts {
		opt(&o)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		rows     [][]string
		date1904 bool
		err      error
	)
	switch Ext(path) {
	case ExtXLSX:
		rows, date1904, err = readXLSX(path, o.sheetName)
	case ExtXLS:
		rows, err = readXLS(path, o.sheetName, o.charset)
	case ExtCSV:
		rows, err = readCSV(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tbl := table.New(rows)
	tbl.Date1904 = date1904
	return tbl, nil
}

// Ext returns the lower-case extension of name without the dot.
func Ext(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

func readXLSX(path, sheetName string) ([][]string, bool, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, false, ErrNoSheets
	}
	name := sheets[0]
	if sheetName != "" {
		idx, err := f.GetSheetIndex(sheetName)
		if err != nil || idx < 0 {
			return nil, false, fmt.Errorf("%w: %s", ErrSheetNotFound, sheetName)
		}
		name = sheetName
	}

	var date1904 bool
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	return rows, date1904, err
}

func readXLS(path, sheetName, charset string) ([][]string, error) {
	wb, err := xls.Open(path, charset)
	if err != nil {
		return nil, err
	}
	if wb.NumSheets() == 0 {
		return nil, ErrNoSheets
	}

	var ws *xls.WorkSheet
	for i := 0; i < wb.NumSheets(); i++ {
		s := wb.GetSheet(i)
		if s == nil {
			continue
		}
		if sheetName == "" || s.Name == sheetName {
			ws = s
			break
		}
	}
	if ws == nil {
		if sheetName != "" {
			return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheetName)
		}
		return nil, ErrNoSheets
	}

	rows := make([][]string, 0, int(ws.MaxRow)+1)
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := ws.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}
