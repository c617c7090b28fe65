package manager

import "errors"

// Caller-contract breaches surfaced as sentinel errors. Everything the
// manager classifies as broken bookkeeping halts the kernel instead.
var (
	// ErrInvalidEntry is returned when a spawn names a zero entry address.
	ErrInvalidEntry = errors.New("manager: invalid entry address")
	// ErrInvalidStack is returned when a spawn names a zero stack top.
	ErrInvalidStack = errors.New("manager: invalid stack address")
)
