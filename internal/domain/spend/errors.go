package spend

import "errors"

// Sentinel error kinds for this package. Callers match with errors.Is.
var (
	ErrUnknownCategory = errors.New("unknown spending category")
	ErrNegativeAmount  = errors.New("negative spending amount")
)
