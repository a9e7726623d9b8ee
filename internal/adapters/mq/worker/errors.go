package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	ErrStopped = errors.New("worker stopped")
	ErrPanic   = errors.New("worker panicked")
)
