// Package proc defines the process control block, the per-unit scheduling
// record: identity, lifecycle state, and the saved CPU context that lets
// the unit resume exactly where it stopped.
package proc

import (
	"fmt"
	"time"

	"github.com/viant/kernor/arch/x86"
	"github.com/viant/kernor/internal/clock"
)

// PCB is one schedulable unit. The PID is immutable after creation and
// never reused while the kernel runs. Once enqueued the ready queue owns
// the record exclusively; only the process manager writes State.
type PCB struct {
	PID   uint32 `json:"pid"`
	Name  string `json:"name,omitempty"`
	State State  `json:"state"`

	// Context is the saved register image, written only by the
	// context-switch primitive while the unit is scheduled.
	Context x86.Context `json:"-"`

	// Entry and StackTop record the image the unit was built from. The
	// stack region belongs to whoever allocated it; the record only keeps
	// the pointer.
	Entry    uint64 `json:"entry"`
	StackTop uint64 `json:"stackTop"`

	CreatedAt time.Time `json:"createdAt"`
}

// New builds a Ready PCB whose context will begin executing at entry with
// its stack at stackTop and interrupts enabled. The caller guarantees the
// stack region is valid and exclusively owned by this unit.
func New(pid uint32, entry, stackTop uint64) *PCB {
	return &PCB{
		PID:       pid,
		State:     Ready,
		Context:   x86.NewContext(entry, stackTop),
		Entry:     entry,
		StackTop:  stackTop,
		CreatedAt: clock.Now(),
	}
}

// Age reports how long the unit has existed.
func (p *PCB) Age() time.Duration {
	return clock.Since(p.CreatedAt)
}

// String renders a one-line summary for logs and the process table.
func (p *PCB) String() string {
	name := p.Name
	if name == "" {
		name = fmt.Sprintf("pid-%d", p.PID)
	}
	return fmt.Sprintf("%d %s %s", p.PID, name, p.State)
}
