// Package table holds the typed, header-addressed rows read from an upload.
package table

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Table is a header row plus data rows of raw cell text. Rows may be shorter
// than Header; missing trailing cells read as empty.
type Table struct {
	Header []string
	Rows   [][]string
	// Date1904 marks serial dates counted from 1904-01-01, the date system
	// of some spreadsheet files.
	Date1904 bool
}

// New builds a Table from raw rows: the first non-blank row is the header and
// fully blank rows are dropped.
func New(raw [][]string) *Table {
	t := &Table{}
	for _, row := range raw {
		if isBlank(row) {
			continue
		}
		if t.Header == nil {
			t.Header = make([]string, len(row))
			for i, h := range row {
				t.Header[i] = NormalizeHeader(h)
			}
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Index returns the position of the column whose normalized header equals
// name, or -1. Matching is case-sensitive.
func (t *Table) Index(name string) int {
	want := NormalizeHeader(name)
	for i, h := range t.Header {
		if h == want {
			return i
		}
	}
	return -1
}

// Cell returns the cell at (row, col), or "" when the row is short or col < 0.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// NormalizeHeader applies NFKC, trims whitespace and drops control characters
// such as a leading BOM.
func NormalizeHeader(h string) string {
	h = norm.NFKC.String(h)
	h = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '\uFEFF' {
			return -1
		}
		return r
	}, h)
	return strings.TrimSpace(h)
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
