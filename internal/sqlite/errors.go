package sqlite

import "errors"

// Backend lifecycle errors.
var (
	ErrDetached        = errors.New("backend is not attached")
	ErrAlreadyAttached = errors.New("backend is already attached")
	ErrDataDirEmpty    = errors.New("data directory is empty")
)

// Record errors. Messages are shown to API clients verbatim.
var (
	ErrNameRequired     = errors.New("name is required")
	ErrCountryNotFound  = errors.New("country does not exist")
	ErrProvinceMismatch = errors.New("state or province does not belong to the country")
	ErrDuplicateRegion  = errors.New("a price for this region already exists")
	ErrNegativePrice    = errors.New("prices must not be negative")
)
