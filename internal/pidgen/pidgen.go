// Package pidgen allocates process identifiers: small unsigned integers,
// strictly increasing, never reused while the kernel runs.
package pidgen

import (
	"math"
	"sync/atomic"

	"github.com/viant/kernor/internal/halt"
)

// Sequence hands out monotonically increasing PIDs starting from the value
// it was seeded with. Exhausting the 32-bit space halts the kernel rather
// than wrapping into reuse.
type Sequence struct {
	next atomic.Uint32
}

// NewSequence returns a sequence whose first Next returns start.
func NewSequence(start uint32) *Sequence {
	s := &Sequence{}
	s.next.Store(start)
	return s
}

// Next allocates the next identifier.
func (s *Sequence) Next() uint32 {
	pid := s.next.Add(1) - 1
	if pid == math.MaxUint32 {
		halt.Fatalf("pid space exhausted")
	}
	return pid
}

// Peek reports the identifier the next Next call would return.
func (s *Sequence) Peek() uint32 {
	return s.next.Load()
}
