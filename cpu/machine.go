// Package cpu models the single logical processor the kernel schedules on:
// a live register file, the identity of the context image it is executing,
// and the interrupt-enable state. The context-switch primitive, the only
// code allowed to move the processor between two images, lives here and
// nowhere else.
package cpu

import (
	"sync"

	"github.com/viant/kernor/arch/x86"
	"github.com/viant/kernor/internal/halt"
)

// Machine is the logical CPU. All mutation funnels through a handful of
// methods that enforce the interrupt discipline: context transfers and
// interrupt windows require the IF bit clear, and violations halt the
// kernel because a transfer observed half-done corrupts execution.
type Machine struct {
	mu        sync.Mutex
	regs      x86.Context
	current   *x86.Context
	suspended map[*x86.Context]struct{}

	inIRQ    bool
	irqFlag  bool
	maskFlag bool
	restored bool
}

// NewMachine returns a machine in its power-on state: all registers zero,
// interrupts disabled, executing nothing. The boot dispatch of the first
// context image brings it to life.
func NewMachine() *Machine {
	return &Machine{suspended: map[*x86.Context]struct{}{}}
}

// InterruptsEnabled reports the live IF bit.
func (m *Machine) InterruptsEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regs.InterruptsEnabled()
}

// DisableInterrupts clears IF and returns the previous enablement, to be
// handed back to RestoreInterrupts when the critical section ends. The
// pre-disable enablement is also stashed so a context saved inside the
// section captures the unit's logical flags, not the transient clear.
func (m *Machine) DisableInterrupts() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	was := m.regs.InterruptsEnabled()
	if was {
		m.maskFlag = true
	}
	m.regs.RFlags &^= x86.FlagInterruptEnable
	return was
}

// RestoreInterrupts sets IF back to a state previously returned by
// DisableInterrupts.
func (m *Machine) RestoreInterrupts(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if enabled {
		m.regs.RFlags |= x86.FlagInterruptEnable
		m.maskFlag = false
		return
	}
	m.regs.RFlags &^= x86.FlagInterruptEnable
}

// BeginInterrupt models hardware interrupt delivery: the pre-interrupt
// enablement is stashed and IF is cleared before the handler runs. The
// handler contract forbids re-entry, so a nested BeginInterrupt halts.
func (m *Machine) BeginInterrupt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.beginInterrupt()
}

// TryBeginInterrupt delivers an interrupt only if the CPU currently
// accepts one: with IF clear it reports false and the caller leaves the
// request pending, the way a real CPU holds off a masked interrupt. The
// check and the window entry are one atomic step.
func (m *Machine) TryBeginInterrupt() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.regs.InterruptsEnabled() {
		return false
	}
	m.beginInterrupt()
	return true
}

func (m *Machine) beginInterrupt() {
	if m.inIRQ {
		halt.Fatalf("interrupt handler re-entered")
	}
	m.inIRQ = true
	m.irqFlag = m.regs.InterruptsEnabled()
	m.regs.RFlags &^= x86.FlagInterruptEnable
	m.restored = false
}

// EndInterrupt models the interrupt return. If the handler performed no
// context transfer, the interrupted unit's enablement comes back from the
// stash; if it did, the incoming image's flags were already loaded
// wholesale and are left alone.
func (m *Machine) EndInterrupt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.inIRQ {
		halt.Fatalf("interrupt exit without matching entry")
	}
	m.inIRQ = false
	if !m.restored && m.irqFlag {
		m.regs.RFlags |= x86.FlagInterruptEnable
	}
}

// InInterrupt reports whether the machine is inside an interrupt window.
func (m *Machine) InInterrupt() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inIRQ
}

// Current returns the context image the machine is executing, nil before
// the boot dispatch.
func (m *Machine) Current() *x86.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Registers returns a copy of the live register file.
func (m *Machine) Registers() x86.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regs
}

// Forget drops suspension bookkeeping for a discarded image. Called when a
// unit's context is thrown away on exit so the machine never confuses a
// dead image with a resumable one.
func (m *Machine) Forget(ctx *x86.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.suspended, ctx)
}
