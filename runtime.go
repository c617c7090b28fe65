package kernor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/viant/kernor/cpu"
	"github.com/viant/kernor/runtime/proc"
	"github.com/viant/kernor/service/manager"
	"github.com/viant/kernor/service/preempt"
	"github.com/viant/kernor/service/stack"
	"github.com/viant/kernor/tracing"
)

// Runtime represents a booted kernel: the process manager with its machine,
// the preemption timer and the stack reclamation pipeline.
type Runtime struct {
	manager   *manager.Service
	timer     *preempt.Service
	reclaimer *stack.Reclaimer
	machine   *cpu.Machine
	provider  stack.Provider
	config    *Config
	logger    *slog.Logger
	bootID    string
}

// Start boots the kernel: it dispatches the idle unit and brings the timer
// and the reclaimer online on their own goroutines.
func (r *Runtime) Start(ctx context.Context) error {
	if r.config.Trace.Enabled {
		if err := tracing.Init("kernor", Version, r.config.Trace.OutputFile); err != nil {
			return err
		}
	}
	ctx, span := tracing.StartSpan(ctx, "kernel.boot", "INTERNAL")
	span.WithAttributes(map[string]string{
		"boot.id":       r.bootID,
		"timer.hz":      fmt.Sprintf("%d", r.config.Timer.Frequency),
		"timer.divisor": fmt.Sprintf("%d", r.config.Timer.Divisor()),
	})

	r.manager.Init()
	go r.timer.Start(ctx)
	go r.reclaimer.Start(ctx)

	r.logger.Info("kernel online",
		"boot_id", r.bootID,
		"hz", r.config.Timer.Frequency,
		"stack_pages", r.config.Stack.Pages)
	tracing.EndSpan(span, nil)
	return nil
}

// Shutdown stops the timer and the reclaimer. The process table survives,
// only the background services go quiet.
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.timer.Shutdown()
	r.reclaimer.Shutdown()
	r.logger.Info("kernel offline", "boot_id", r.bootID, "uptime", r.timer.Uptime())
	return nil
}

// Spawn allocates a stack from the provider and creates a new unit of
// execution entering at entry. The unit starts Ready and runs when the
// rotation reaches it.
func (r *Runtime) Spawn(ctx context.Context, name string, entry uint64) (pid uint32, err error) {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("process.spawn %s", name), "INTERNAL")
	defer tracing.EndSpan(span, err)

	stackTop, err := r.provider.Allocate(ctx, r.config.Stack.StackSize)
	if err != nil {
		return 0, err
	}
	pid, err = r.manager.Spawn(entry, stackTop, manager.WithName(name))
	if err != nil {
		_ = r.provider.Release(ctx, stackTop)
		return 0, err
	}
	span.WithAttributes(map[string]string{
		"pid":       fmt.Sprintf("%d", pid),
		"stack.top": fmt.Sprintf("%#x", stackTop),
	})
	return pid, nil
}

// Exit marks a unit dead. Exiting the unit currently on the processor
// dispatches its successor before the call returns.
func (r *Runtime) Exit(ctx context.Context, pid uint32) bool {
	_, span := tracing.StartSpan(ctx, fmt.Sprintf("process.exit %d", pid), "INTERNAL")
	defer tracing.EndSpan(span, nil)
	return r.manager.Exit(pid)
}

// Reap removes dead units from the process table and hands their stacks to
// the reclamation pipeline.
func (r *Runtime) Reap(ctx context.Context) []uint32 {
	_, span := tracing.StartSpan(ctx, "process.reap", "INTERNAL")
	defer tracing.EndSpan(span, nil)
	return r.manager.Reap()
}

// Yield gives up the processor voluntarily.
func (r *Runtime) Yield() {
	r.manager.Yield()
}

// Block parks a unit until Wake.
func (r *Runtime) Block(pid uint32) bool {
	return r.manager.Block(pid)
}

// Wake returns a blocked unit to the rotation.
func (r *Runtime) Wake(pid uint32) bool {
	return r.manager.Wake(pid)
}

// Tick delivers one timer interrupt synchronously, the deterministic
// alternative to waiting for the background ticker.
func (r *Runtime) Tick() {
	r.timer.Tick()
}

// Current returns a copy of the record of the unit holding the processor.
func (r *Runtime) Current() (proc.PCB, bool) {
	return r.manager.Current()
}

// Snapshot returns a copy of the process table.
func (r *Runtime) Snapshot() []proc.PCB {
	return r.manager.Snapshot()
}

// ProcessCount reports live units.
func (r *Runtime) ProcessCount() int {
	return r.manager.ProcessCount()
}

// Uptime reports kernel time accumulated from delivered ticks.
func (r *Runtime) Uptime() time.Duration {
	return r.timer.Uptime()
}

// BootID identifies this boot.
func (r *Runtime) BootID() string {
	return r.bootID
}

// Manager exposes the process manager.
func (r *Runtime) Manager() *manager.Service {
	return r.manager
}

// Timer exposes the preemption timer.
func (r *Runtime) Timer() *preempt.Service {
	return r.timer
}

// Reclaimer exposes the stack reclamation pipeline.
func (r *Runtime) Reclaimer() *stack.Reclaimer {
	return r.reclaimer
}

// Machine exposes the processor model.
func (r *Runtime) Machine() *cpu.Machine {
	return r.machine
}

// Provider exposes the stack provider.
func (r *Runtime) Provider() stack.Provider {
	return r.provider
}
