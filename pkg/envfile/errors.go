package envfile

import "errors"

var (
	// ErrFileOpen is returned when an env file cannot be opened for reading.
	ErrFileOpen = errors.New("cannot open env file")

	// ErrAllocation is returned when the store cannot allocate or grow its
	// backing storage. Entries appended before the failure are kept.
	ErrAllocation = errors.New("store allocation failed")
)
