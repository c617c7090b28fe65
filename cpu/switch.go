package cpu

import (
	"github.com/viant/kernor/arch/x86"
	"github.com/viant/kernor/internal/halt"
)

// Outcome tags which leg of a context transfer an operation observed,
// mirroring the dual return of a hardware save/restore pair: the code path
// that saved a context runs on, and the same context later "returns" a
// second time when restored.
type Outcome uint8

const (
	// Saved means the transfer dispatched a fresh image that had never
	// been suspended; execution enters at its entry address.
	Saved Outcome = iota + 1
	// Resumed means the transfer re-entered a previously saved image at
	// the exact point its save was taken.
	Resumed
)

// String returns the outcome tag name.
func (o Outcome) String() string {
	switch o {
	case Saved:
		return "saved"
	case Resumed:
		return "resumed"
	}
	return "unknown"
}

// Save captures the presently executing register state bit-for-bit into
// the given image, including the resume address, and marks the image
// suspended. Inside an interrupt window the captured flags carry the
// pre-interrupt enablement, the way a hardware interrupt frame would.
// Interrupts must be disabled for the full duration.
func (m *Machine) Save(into *x86.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.save(into)
}

// Restore loads all registers from the given image and transfers control
// to its saved instruction pointer. Returns Resumed when the image was
// previously suspended by Save, Saved when it is dispatched for the first
// time. Interrupt enablement after the transfer is whatever the image's
// saved flags say; nothing re-enables explicitly.
func (m *Machine) Restore(from *x86.Context) Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restore(from)
}

// Switch saves the live state into old and restores new, the only path by
// which control moves between two units during scheduling. The dual return
// of the underlying pair surfaces as the Outcome. Switching a context onto
// itself degenerates to save-then-resume of the same image and leaves the
// register file unchanged.
func (m *Machine) Switch(old, new *x86.Context) Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil && old != m.current {
		halt.Fatalf("context switch out of an image that is not executing")
	}
	m.save(old)
	return m.restore(new)
}

func (m *Machine) save(into *x86.Context) {
	if into == nil {
		halt.Fatalf("context save into nil image")
	}
	if m.regs.InterruptsEnabled() {
		halt.Fatalf("context save with interrupts enabled")
	}
	snap := m.regs
	if (m.inIRQ && m.irqFlag) || m.maskFlag {
		snap.RFlags |= x86.FlagInterruptEnable
	}
	*into = snap
	m.suspended[into] = struct{}{}
}

func (m *Machine) restore(from *x86.Context) Outcome {
	if from == nil {
		halt.Fatalf("context restore from nil image")
	}
	if m.regs.InterruptsEnabled() {
		halt.Fatalf("context restore with interrupts enabled")
	}
	if from.RIP == 0 {
		halt.Fatalf("context restore from zeroed image: %v", from)
	}
	m.regs = *from
	m.current = from
	m.restored = true
	if _, ok := m.suspended[from]; ok {
		delete(m.suspended, from)
		return Resumed
	}
	return Saved
}
