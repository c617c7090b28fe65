// Package sched implements the ready queue: an ordered arena of process
// control blocks plus a cursor, yielding strict round-robin selection.
package sched

import (
	"github.com/viant/kernor/internal/halt"
	"github.com/viant/kernor/runtime/proc"
)

// RoundRobin holds PCBs in insertion order; the cursor points at the
// currently selected entry and is only meaningful while the queue is
// non-empty. Zombie and Terminated entries stay physically present until
// swept but are never selected.
type RoundRobin struct {
	entries []*proc.PCB
	cursor  int
}

// New returns an empty queue.
func New() *RoundRobin {
	return &RoundRobin{}
}

// Add appends a PCB to the arena. An identifier collision means PID
// allocation upstream is broken and halts the kernel.
func (q *RoundRobin) Add(p *proc.PCB) {
	if p == nil {
		halt.Fatalf("nil pcb enqueued")
	}
	for _, e := range q.entries {
		if e.PID == p.PID {
			halt.Fatalf("pid %d already enqueued", p.PID)
		}
	}
	q.entries = append(q.entries, p)
}

// Current returns the entry at the cursor, nil when the queue is empty.
func (q *RoundRobin) Current() *proc.PCB {
	if len(q.entries) == 0 {
		return nil
	}
	if q.cursor >= len(q.entries) {
		halt.Fatalf("cursor %d beyond queue length %d", q.cursor, len(q.entries))
	}
	return q.entries[q.cursor]
}

// Advance moves the cursor forward one position modulo queue length,
// passing over entries that are not schedulable, and returns the entry it
// lands on. When nothing is eligible the cursor stays put and Advance
// returns nil. The tie-break is strict queue order starting immediately
// after the cursor; no priority, age or affinity weighs in.
func (q *RoundRobin) Advance() *proc.PCB {
	n := len(q.entries)
	if n == 0 {
		return nil
	}
	for i := 1; i <= n; i++ {
		idx := (q.cursor + i) % n
		candidate := q.entries[idx]
		if !candidate.State.Schedulable() {
			continue
		}
		q.cursor = idx
		return candidate
	}
	return nil
}

// Count returns the number of live entries. Blocked counts; Zombie and
// Terminated do not.
func (q *RoundRobin) Count() int {
	count := 0
	for _, e := range q.entries {
		if e.State.Live() {
			count++
		}
	}
	return count
}

// Len returns the physical queue length, entries pending reap included.
func (q *RoundRobin) Len() int {
	return len(q.entries)
}

// ByPID returns the entry with the given identifier, nil if absent.
func (q *RoundRobin) ByPID(pid uint32) *proc.PCB {
	for _, e := range q.entries {
		if e.PID == pid {
			return e
		}
	}
	return nil
}

// Snapshot returns a copy of the arena slice in queue order.
func (q *RoundRobin) Snapshot() []*proc.PCB {
	out := make([]*proc.PCB, len(q.entries))
	copy(out, q.entries)
	return out
}

// RemoveTerminated sweeps out every Zombie and Terminated entry and
// returns their PIDs in queue order. The caller guarantees the current
// entry is live; finding otherwise halts, since removing the slot under
// the cursor would leave the queue selecting freed state.
func (q *RoundRobin) RemoveTerminated() []uint32 {
	if len(q.entries) == 0 {
		return nil
	}
	current := q.entries[q.cursor]
	if !current.State.Live() {
		halt.Fatalf("pid %d pending reap while selected as current", current.PID)
	}
	var removed []uint32
	kept := q.entries[:0]
	for _, e := range q.entries {
		if e.State.Live() {
			kept = append(kept, e)
			continue
		}
		removed = append(removed, e.PID)
	}
	for i := len(kept); i < len(q.entries); i++ {
		q.entries[i] = nil
	}
	q.entries = kept
	for i, e := range q.entries {
		if e == current {
			q.cursor = i
			break
		}
	}
	return removed
}
