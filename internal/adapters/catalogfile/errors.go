package catalogfile

import "errors"

// Sentinel error kinds for this package. Callers match with errors.Is.
var (
	ErrLoadCatalog    = errors.New("load catalog failed")
	ErrInvalidCatalog = errors.New("invalid catalog")
)
