package service

import "errors"

// Sentinel error kinds for this package. Callers match with errors.Is.
var (
	ErrNotStarted = errors.New("service not started")
)
