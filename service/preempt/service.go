// Package preempt models the periodic interval timer, the one source of
// forced preemption: a ticker stands in for the timer chip raising IRQ0,
// and every delivered tick invokes the scheduler exactly once after the
// interrupt controller is acknowledged.
package preempt

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/viant/kernor/arch/x86"
	"github.com/viant/kernor/internal/halt"
)

// BaseClock is the input frequency of the interval timer in Hz.
const BaseClock uint32 = 1193180

// DefaultFrequency is the tick rate the kernel programs by default.
const DefaultFrequency uint32 = 100

// Config represents timer configuration.
type Config struct {
	// Frequency is the tick rate in Hz.
	Frequency uint32 `json:"frequency" yaml:"frequency"`
}

// DefaultConfig returns the default timer configuration.
func DefaultConfig() Config {
	return Config{Frequency: DefaultFrequency}
}

// Validate checks the configuration is programmable.
func (c *Config) Validate() error {
	if c.Frequency == 0 {
		return fmt.Errorf("preempt: frequency must be positive")
	}
	if c.Frequency > BaseClock {
		return fmt.Errorf("preempt: frequency %d exceeds base clock %d", c.Frequency, BaseClock)
	}
	return nil
}

// Divisor returns the reload value programmed into the hardware counter
// for the configured frequency.
func (c *Config) Divisor() uint32 {
	return BaseClock / c.Frequency
}

// Interval returns the wall-clock period between ticks.
func (c *Config) Interval() time.Duration {
	return time.Duration(uint64(time.Second) / uint64(c.Frequency))
}

// Scheduler is the preemption target. The process manager implements it:
// Preempt runs one scheduling step inside an interrupt window, invoking
// ack once the interrupt is accepted, and reports false when the CPU has
// interrupts disabled.
type Scheduler interface {
	Preempt(ack func()) bool
}

// Option customises the timer service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithController shares an externally owned interrupt controller.
func WithController(pic *x86.InterruptController) Option {
	return func(s *Service) {
		s.pic = pic
	}
}

// Service drives preemption.
type Service struct {
	config    Config
	pic       *x86.InterruptController
	scheduler Scheduler
	logger    *slog.Logger

	ticks    atomic.Uint64
	deferred atomic.Uint64
	masked   atomic.Uint64

	shutdownCh chan struct{}
}

// New creates a timer service targeting the given scheduler.
func New(scheduler Scheduler, config Config, options ...Option) *Service {
	if scheduler == nil {
		halt.Fatalf("preemption requires a scheduler")
	}
	ret := &Service{
		config:     config,
		pic:        x86.NewInterruptController(),
		scheduler:  scheduler,
		logger:     slog.Default(),
		shutdownCh: make(chan struct{}),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Start runs the tick loop until the context is cancelled or Shutdown is
// called. Callers run it on its own goroutine.
func (s *Service) Start(ctx context.Context) error {
	if err := s.config.Validate(); err != nil {
		return err
	}
	s.logger.Info("timer online", "hz", s.config.Frequency, "divisor", s.config.Divisor())
	ticker := time.NewTicker(s.config.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.shutdownCh:
			return nil
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick delivers one timer interrupt synchronously: the deterministic entry
// for tests and single-stepping. The background loop funnels through the
// same path. A tick raised while the line is masked is dropped; a tick
// arriving while the CPU holds interrupts off stays pending on the
// controller and the next tick delivers it.
func (s *Service) Tick() {
	if !s.pic.Raise(x86.IRQTimer) {
		s.masked.Add(1)
		return
	}
	delivered := s.scheduler.Preempt(func() {
		s.pic.Service(x86.IRQTimer)
		s.pic.Ack(x86.IRQTimer)
	})
	if !delivered {
		s.deferred.Add(1)
		return
	}
	s.ticks.Add(1)
}

// Shutdown stops the tick loop.
func (s *Service) Shutdown() {
	close(s.shutdownCh)
}

// Ticks reports delivered ticks.
func (s *Service) Ticks() uint64 {
	return s.ticks.Load()
}

// Deferred reports ticks held pending because the CPU had interrupts off.
func (s *Service) Deferred() uint64 {
	return s.deferred.Load()
}

// Masked reports ticks dropped by the controller mask.
func (s *Service) Masked() uint64 {
	return s.masked.Load()
}

// Uptime converts delivered ticks into elapsed kernel time.
func (s *Service) Uptime() time.Duration {
	return time.Duration(s.ticks.Load()) * s.config.Interval()
}

// Controller returns the interrupt controller the timer raises against.
func (s *Service) Controller() *x86.InterruptController {
	return s.pic
}
