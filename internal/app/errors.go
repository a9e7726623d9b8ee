package service

import "errors"

var (
	// ErrNotStarted is returned when work is submitted before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrBusy is returned when the job queue is full.
	ErrBusy = errors.New("server busy, retry later")
	// ErrNotAllowed is returned for file types outside the whitelist.
	ErrNotAllowed = errors.New("file type not allowed")
)
