package catalog

import "errors"

// Sentinel error kinds for this package. Callers match with errors.Is.
var (
	ErrInvalidCard     = errors.New("invalid card")
	ErrInvalidRate     = errors.New("invalid rate entry")
	ErrInvalidPolicy   = errors.New("invalid policy configuration")
	ErrUnknownCategory = errors.New("unknown category in catalog")
)
