package upload

import "errors"

var (
	// ErrTooLarge is returned when an upload exceeds the configured size limit.
	ErrTooLarge = errors.New("upload too large")
	// ErrEmptyFilename is returned when nothing is left after sanitizing a name.
	ErrEmptyFilename = errors.New("empty filename")
)
