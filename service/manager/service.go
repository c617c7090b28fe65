// Package manager drives the process lifecycle: it owns the ready queue,
// allocates identifiers, performs every state transition, and is the only
// caller of the context-switch primitive. One explicitly owned instance is
// handed into the preemption path; there is no package-level singleton.
package manager

import (
	"log/slog"
	"sync"

	"github.com/viant/kernor/cpu"
	"github.com/viant/kernor/internal/halt"
	"github.com/viant/kernor/internal/pidgen"
	"github.com/viant/kernor/runtime/proc"
	"github.com/viant/kernor/runtime/sched"
)

const idlePID uint32 = 0

// Synthetic image the idle unit boots with: entry in the kernel text
// loaded at 1 MiB, stack at the top of conventional low memory.
const (
	DefaultIdleEntry uint64 = 0x100000
	DefaultIdleStack uint64 = 0x90000
)

// Notifier receives the identifiers and stack tops released by a reap
// sweep, so the memory collaborator knows which per-process resources are
// safe to reclaim. Implementations must not call back into the manager.
type Notifier interface {
	Reaped(pids []uint32, stacks []uint64)
}

// Service is the process manager. Queue mutations run inside a
// disable-interrupts critical section; the mutex is the memory-model
// carrier of the same exclusion for host goroutines. Read-only queries
// take the read side and tolerate racing with a concurrent schedule.
type Service struct {
	mu      sync.RWMutex
	machine *cpu.Machine
	queue   *sched.RoundRobin
	pids    *pidgen.Sequence
	logger  *slog.Logger

	notifier  Notifier
	idleEntry uint64
	idleStack uint64

	booted     bool
	scheduling bool
}

// New returns a process manager bound to a machine.
func New(machine *cpu.Machine, options ...Option) *Service {
	if machine == nil {
		halt.Fatalf("process manager requires a machine")
	}
	ret := &Service{
		machine:   machine,
		queue:     sched.New(),
		pids:      pidgen.NewSequence(idlePID + 1),
		logger:    slog.Default(),
		idleEntry: DefaultIdleEntry,
		idleStack: DefaultIdleStack,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Init boots the scheduler: the idle unit (pid 0) is created Running,
// enqueued, and dispatched onto the machine, so exactly one unit is
// Running from the first instant. Terminal initial state; a second Init
// halts.
func (s *Service) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.booted {
		halt.Fatalf("process manager initialised twice")
	}
	idle := proc.New(idlePID, s.idleEntry, s.idleStack)
	idle.Name = "idle"
	idle.State = proc.Running
	s.queue.Add(idle)
	s.machine.Restore(&idle.Context)
	s.booted = true
	s.logger.Info("scheduler online", "pid", idle.PID, "entry", idle.Entry)
}

// Spawn allocates the next PID, builds a Ready unit from the entry address
// and stack top, and enqueues it. The stack region must already be
// allocated and exclusively owned; the manager only records the pointer.
// Zero addresses are caller-contract breaches reported as sentinel errors;
// an identifier collision halts.
func (s *Service) Spawn(entry, stackTop uint64, options ...SpawnOption) (uint32, error) {
	if entry == 0 {
		return 0, ErrInvalidEntry
	}
	if stackTop == 0 {
		return 0, ErrInvalidStack
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureBooted()
	mask := s.machine.DisableInterrupts()
	defer s.machine.RestoreInterrupts(mask)
	pid := s.pids.Next()
	p := proc.New(pid, entry, stackTop)
	for _, option := range options {
		option(p)
	}
	s.queue.Add(p)
	s.logger.Debug("spawn", "pid", pid, "entry", entry, "stack", stackTop)
	return pid, nil
}

// Exit transitions a unit from any non-terminal state to Zombie and
// discards its context. Unknown or already dead PIDs are a no-op returning
// false. If the exiting unit is the current one, a replacement is advanced
// and dispatched before returning, so the CPU is never left running a
// zombie; the idle unit is the fallback of last resort and exiting it
// halts the kernel.
func (s *Service) Exit(pid uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureBooted()
	if pid == idlePID {
		halt.Fatalf("exit of the idle unit")
	}
	mask := s.machine.DisableInterrupts()
	p := s.queue.ByPID(pid)
	if p == nil || !p.State.Live() {
		s.machine.RestoreInterrupts(mask)
		return false
	}
	wasCurrent := s.queue.Current() == p
	p.State = proc.Zombie
	p.Context.Reset()
	s.machine.Forget(&p.Context)
	s.logger.Info("exit", "pid", pid, "name", p.Name)
	if !wasCurrent {
		s.machine.RestoreInterrupts(mask)
		return true
	}
	next := s.queue.Advance()
	if next == nil {
		halt.Fatalf("no eligible unit after exit of pid %d", pid)
	}
	next.State = proc.Running
	outcome := s.machine.Restore(&next.Context)
	s.logger.Debug("dispatch", "pid", next.PID, "outcome", outcome)
	s.machine.RestoreInterrupts(mask)
	return true
}

// Reap marks every Zombie Terminated, sweeps them out of the queue, and
// returns their identifiers. Resource release belongs to the memory
// collaborator, driven by the notifier payload; the manager holds no
// memory-management knowledge. Nothing to collect is a no-op.
func (s *Service) Reap() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureBooted()
	mask := s.machine.DisableInterrupts()
	var stacks []uint64
	for _, e := range s.queue.Snapshot() {
		if e.State.Live() {
			continue
		}
		e.State = proc.Terminated
		stacks = append(stacks, e.StackTop)
	}
	pids := s.queue.RemoveTerminated()
	s.machine.RestoreInterrupts(mask)
	if len(pids) > 0 {
		s.logger.Info("reap", "pids", pids)
		if s.notifier != nil {
			s.notifier.Reaped(pids, stacks)
		}
	}
	return pids
}

// Schedule advances the round robin by one step and switches contexts.
// Called from the preemption path with interrupts already disabled and
// never re-entered; both contract breaches halt. With no current entry it
// returns immediately; when the advance lands back on the current unit the
// switch is skipped, a transfer onto oneself being a no-op.
func (s *Service) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleLocked()
}

// Preempt is the timer-interrupt entry: it opens the interrupt window,
// runs one scheduling step and closes the window, all under the manager's
// exclusion. Reports false when the CPU does not currently accept
// interrupts, leaving the tick for the caller to hold pending. The ack
// callback, if any, runs once the interrupt is accepted and before the
// scheduling step; the timer path acknowledges its controller there.
func (s *Service) Preempt(ack func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.machine.TryBeginInterrupt() {
		return false
	}
	if ack != nil {
		ack()
	}
	s.scheduleLocked()
	s.machine.EndInterrupt()
	return true
}

// Yield is the cooperative suspension point: one scheduling step inside
// its own interrupt-disabled critical section.
func (s *Service) Yield() {
	s.mu.Lock()
	defer s.mu.Unlock()
	mask := s.machine.DisableInterrupts()
	s.scheduleLocked()
	s.machine.RestoreInterrupts(mask)
}

func (s *Service) scheduleLocked() {
	if s.machine.InterruptsEnabled() {
		halt.Fatalf("schedule with interrupts enabled")
	}
	if s.scheduling {
		halt.Fatalf("schedule re-entered")
	}
	s.scheduling = true
	defer func() { s.scheduling = false }()

	current := s.queue.Current()
	if current == nil {
		return
	}
	next := s.queue.Advance()
	if next == nil {
		halt.Fatalf("no eligible unit to schedule")
	}
	if next == current {
		return
	}
	if current.State == proc.Running {
		current.State = proc.Ready
	}
	next.State = proc.Running
	outcome := s.machine.Switch(&current.Context, &next.Context)
	s.logger.Debug("switch", "from", current.PID, "to", next.PID, "outcome", outcome)
}

// Block transitions a Ready or Running unit to Blocked until an external
// event wakes it. Blocking the current unit saves its context and
// dispatches the next eligible one, so the later wake resumes exactly at
// the block point. Unknown or non-schedulable PIDs are a no-op returning
// false; the idle unit may never block.
func (s *Service) Block(pid uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureBooted()
	if pid == idlePID {
		halt.Fatalf("block of the idle unit")
	}
	mask := s.machine.DisableInterrupts()
	p := s.queue.ByPID(pid)
	if p == nil || !p.State.Schedulable() {
		s.machine.RestoreInterrupts(mask)
		return false
	}
	wasCurrent := s.queue.Current() == p
	p.State = proc.Blocked
	s.logger.Debug("block", "pid", pid)
	if !wasCurrent {
		s.machine.RestoreInterrupts(mask)
		return true
	}
	next := s.queue.Advance()
	if next == nil {
		halt.Fatalf("no eligible unit after blocking pid %d", pid)
	}
	next.State = proc.Running
	outcome := s.machine.Switch(&p.Context, &next.Context)
	s.logger.Debug("dispatch", "pid", next.PID, "outcome", outcome)
	s.machine.RestoreInterrupts(mask)
	return true
}

// Wake transitions a Blocked unit back to Ready, making it eligible on the
// next round. Unknown or non-Blocked PIDs are a no-op returning false.
func (s *Service) Wake(pid uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureBooted()
	mask := s.machine.DisableInterrupts()
	defer s.machine.RestoreInterrupts(mask)
	p := s.queue.ByPID(pid)
	if p == nil || p.State != proc.Blocked {
		return false
	}
	p.State = proc.Ready
	s.logger.Debug("wake", "pid", pid)
	return true
}

// ProcessCount returns the number of live units. Read-only; may race with
// a concurrent schedule and report a transiently stale count.
func (s *Service) ProcessCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue.Count()
}

// Current returns a copy of the currently selected unit.
func (s *Service) Current() (proc.PCB, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	current := s.queue.Current()
	if current == nil {
		return proc.PCB{}, false
	}
	return *current, true
}

// Snapshot returns copies of every unit in queue order, for the process
// table.
func (s *Service) Snapshot() []proc.PCB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.queue.Snapshot()
	out := make([]proc.PCB, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e)
	}
	return out
}

func (s *Service) ensureBooted() {
	if !s.booted {
		halt.Fatalf("process manager used before init")
	}
}
