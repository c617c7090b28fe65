package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/kernor/arch/x86"
)

func TestMachine_InterruptWindow(t *testing.T) {
	m := NewMachine()
	a := x86.NewContext(0xa000, 0xa800)
	m.Restore(&a)
	assert.True(t, m.InterruptsEnabled())

	m.BeginInterrupt()
	assert.True(t, m.InInterrupt())
	assert.False(t, m.InterruptsEnabled(), "interrupt entry clears IF")

	m.EndInterrupt()
	assert.False(t, m.InInterrupt())
	assert.True(t, m.InterruptsEnabled(), "interrupt return restores the interrupted unit's IF")
}

func TestMachine_InterruptWindowWithTransfer(t *testing.T) {
	m := NewMachine()
	a := x86.NewContext(0xa000, 0xa800)
	b := x86.NewContext(0xb000, 0xb800)
	b.RFlags = x86.FlagReserved1
	m.Restore(&a)

	m.BeginInterrupt()
	m.Switch(&a, &b)
	m.EndInterrupt()

	assert.False(t, m.InterruptsEnabled(),
		"after a transfer the incoming image's flags stand; nothing re-enables behind its back")
}

func TestMachine_InterruptReentry(t *testing.T) {
	m := NewMachine()
	m.BeginInterrupt()
	assert.Panics(t, func() { m.BeginInterrupt() })
}

func TestMachine_InterruptExitWithoutEntry(t *testing.T) {
	m := NewMachine()
	assert.Panics(t, func() { m.EndInterrupt() })
}

func TestMachine_DisableRestoreInterrupts(t *testing.T) {
	m := NewMachine()
	a := x86.NewContext(0xa000, 0xa800)
	m.Restore(&a)

	was := m.DisableInterrupts()
	assert.True(t, was)
	assert.False(t, m.InterruptsEnabled())

	nested := m.DisableInterrupts()
	assert.False(t, nested)
	m.RestoreInterrupts(nested)
	assert.False(t, m.InterruptsEnabled(), "inner restore keeps IF clear")

	m.RestoreInterrupts(was)
	assert.True(t, m.InterruptsEnabled())
}

func TestMachine_SaveInCriticalSectionKeepsLogicalFlags(t *testing.T) {
	m := NewMachine()
	a := x86.NewContext(0xa000, 0xa800)
	b := x86.NewContext(0xb000, 0xb800)
	m.Restore(&a)

	// Suspending a unit inside its own critical section must capture the
	// enablement it will wake with, not the transient clear.
	m.DisableInterrupts()
	m.Switch(&a, &b)
	assert.True(t, a.InterruptsEnabled())
}
