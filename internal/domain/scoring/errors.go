package scoring

import (
	"errors"
	"fmt"
)

// Sentinel kinds carried by ValidationError. Match them with errors.Is.
var (
	ErrMissingColumn           = errors.New("missing required column")
	ErrInvalidDate             = errors.New("invalid date")
	ErrDegenerateNormalization = errors.New("degenerate normalization")
	ErrEmptyWindow             = errors.New("no orders inside the seasonal windows")
	ErrUnreadable              = errors.New("cannot read file")
)

// ValidationError is the single error kind a ranking run fails with. Kind is
// one of the sentinels above; Err carries the detail.
type ValidationError struct {
	Kind   error
	Column string
	Err    error
}

func (e *ValidationError) Error() string {
	return "error processing data: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// KindName returns a short label for metrics and logs.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrMissingColumn):
		return "schema"
	case errors.Is(err, ErrInvalidDate):
		return "parse"
	case errors.Is(err, ErrDegenerateNormalization):
		return "degenerate"
	case errors.Is(err, ErrEmptyWindow):
		return "empty"
	case errors.Is(err, ErrUnreadable):
		return "read"
	default:
		return "unknown"
	}
}

func missingColumn(name string) *ValidationError {
	return &ValidationError{Kind: ErrMissingColumn, Column: name, Err: fmt.Errorf("%w: %s", ErrMissingColumn, name)}
}

func invalidDate(row int, value string, cause error) *ValidationError {
	return &ValidationError{
		Kind:   ErrInvalidDate,
		Column: ColumnDate,
		Err:    fmt.Errorf("%w %q in row %d: %w", ErrInvalidDate, value, row, cause),
	}
}

func degenerate(metric string) *ValidationError {
	return &ValidationError{
		Kind: ErrDegenerateNormalization,
		Err:  fmt.Errorf("%w: every product has the same %s", ErrDegenerateNormalization, metric),
	}
}

func emptyWindow(rows int) *ValidationError {
	return &ValidationError{Kind: ErrEmptyWindow, Err: fmt.Errorf("%w (%d rows read)", ErrEmptyWindow, rows)}
}

// Unreadable reports an upload that could not be opened or parsed as a
// spreadsheet.
func Unreadable(filename string, cause error) *ValidationError {
	return &ValidationError{Kind: ErrUnreadable, Err: fmt.Errorf("%w %s: %w", ErrUnreadable, filename, cause)}
}
