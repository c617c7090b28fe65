// Package x86 models the register-level state of a single x86-64 CPU:
// the context snapshot a scheduler saves and restores, the RFLAGS bits it
// cares about, the kernel segment selectors, and a minimal 8259-style
// interrupt controller.
package x86

import "fmt"

// RFLAGS bits referenced by the kernel.
const (
	// FlagReserved1 is bit 1 of RFLAGS, architecturally always set.
	FlagReserved1 uint64 = 1 << 1
	// FlagInterruptEnable (IF) gates maskable hardware interrupts.
	FlagInterruptEnable uint64 = 1 << 9
)

// DefaultRFlags is the flags image a fresh unit starts with: reserved bit
// set, interrupts enabled.
const DefaultRFlags = FlagReserved1 | FlagInterruptEnable

// Kernel segment selectors as laid out in the GDT (null descriptor first,
// then kernel code, then kernel data).
const (
	SelectorKernelCode uint64 = 0x08
	SelectorKernelData uint64 = 0x10
)

// Context is a fixed-layout snapshot of every register needed to resume a
// unit of execution exactly where it stopped. It is pure saved state with
// no behavior; only the context-switch primitive writes it while a unit is
// scheduled. The struct is comparable, so bit-for-bit equality is ==.
type Context struct {
	// General purpose registers.
	RAX, RBX, RCX, RDX uint64
	RSI, RDI, RBP      uint64
	R8, R9, R10, R11   uint64
	R12, R13, R14, R15 uint64

	// RSP is the stack pointer, RIP the resume address.
	RSP uint64
	RIP uint64

	// RFlags holds the saved flags register. Restoring a context loads it
	// wholesale, which is also how interrupt enablement comes back after a
	// switch.
	RFlags uint64

	// CS and SS are the code and stack segment selectors.
	CS, SS uint64
}

// NewContext returns the initial register image for a unit that will begin
// executing at entry with its stack at stackTop: interrupts enabled, kernel
// segments, every general-purpose register zero.
func NewContext(entry, stackTop uint64) Context {
	return Context{
		RIP:    entry,
		RSP:    stackTop,
		RFlags: DefaultRFlags,
		CS:     SelectorKernelCode,
		SS:     SelectorKernelData,
	}
}

// Reset zeroes the snapshot. Used when a unit's context is discarded.
func (c *Context) Reset() {
	*c = Context{}
}

// InterruptsEnabled reports whether the saved flags have IF set.
func (c *Context) InterruptsEnabled() bool {
	return c.RFlags&FlagInterruptEnable != 0
}

// String renders the control registers for diagnostics.
func (c *Context) String() string {
	return fmt.Sprintf("rip=%#x rsp=%#x rflags=%#x cs=%#x ss=%#x", c.RIP, c.RSP, c.RFlags, c.CS, c.SS)
}
