package reward

import "errors"

// Sentinel error kinds for this package. Callers match with errors.Is.
var (
	ErrInvalidMilesRate = errors.New("miles rate must be positive")
	ErrUnknownPolicy    = errors.New("unknown reward policy")
	ErrUnknownGroup     = errors.New("unknown bonus group")
	ErrPolicyConfig     = errors.New("missing policy configuration")
)
