package api

import (
	"errors"
	"strings"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrTooLarge     = errors.New("payload too large")
	ErrBackpressure = errors.New("backpressure")
	ErrValidation   = errors.New("validation failed")
	ErrInternal     = errors.New("internal error")
)

// Error is an API error: the operation that failed, its kind and the cause.
// Its message is the cause's message, so it can be shown to clients.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewKind creates an error of kind without further detail.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind attaches op and kind to err.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap attaches op to err, keeping the kind if err is already an *Error.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return &Error{Op: op, Kind: apiErr.Kind, Err: err}
	}
	return &Error{Op: op, Kind: ErrInternal, Err: err}
}

// Trace returns the chain of operations recorded in err, outermost first.
func Trace(err error) string {
	var ops []string
	for err != nil {
		apiErr, ok := err.(*Error)
		if !ok {
			break
		}
		ops = append(ops, apiErr.Op)
		err = apiErr.Err
	}
	return strings.Join(ops, " > ")
}
