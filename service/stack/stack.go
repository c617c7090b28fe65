// Package stack manages the memory that units of execution run their call
// stacks on: a page-granular arena hands out ranges at spawn time and a
// reclaimer returns them once the owner has been reaped.
package stack

import (
	"context"
	"errors"
	"fmt"
)

// PageSize is the allocation granule in bytes.
const PageSize uint64 = 4096

// DefaultStackSize is the stack each unit receives unless asked otherwise.
const DefaultStackSize uint64 = 32 * 1024

const (
	// DefaultArenaBase is the lowest address of the default arena.
	DefaultArenaBase uint64 = 0x700000

	// DefaultArenaPages sizes the default arena at 1MiB.
	DefaultArenaPages uint64 = 256
)

var (
	// ErrOutOfMemory indicates the arena has no extent large enough.
	ErrOutOfMemory = errors.New("stack: arena exhausted")

	// ErrUnknownStack indicates a release of a top the arena never issued
	// or has already reclaimed.
	ErrUnknownStack = errors.New("stack: unknown stack top")
)

// Provider hands out and takes back stack ranges. Allocate returns the
// stack top, the address loaded into a fresh stack pointer; the range
// itself lies below it.
type Provider interface {
	Allocate(ctx context.Context, size uint64) (uint64, error)
	Release(ctx context.Context, top uint64) error
}

// Config represents arena configuration.
type Config struct {
	// Base is the lowest address of the arena, page aligned.
	Base uint64 `json:"base" yaml:"base"`

	// Pages is the arena capacity in pages.
	Pages uint64 `json:"pages" yaml:"pages"`

	// StackSize is the default allocation in bytes.
	StackSize uint64 `json:"stackSize" yaml:"stackSize"`
}

// DefaultConfig returns the default arena configuration.
func DefaultConfig() Config {
	return Config{
		Base:      DefaultArenaBase,
		Pages:     DefaultArenaPages,
		StackSize: DefaultStackSize,
	}
}

// Validate checks the configuration describes a usable arena.
func (c *Config) Validate() error {
	if c.Base == 0 || c.Base%PageSize != 0 {
		return fmt.Errorf("stack: base %#x is not page aligned", c.Base)
	}
	if c.Pages == 0 {
		return fmt.Errorf("stack: arena needs at least one page")
	}
	if c.StackSize == 0 {
		return fmt.Errorf("stack: stack size must be positive")
	}
	return nil
}
