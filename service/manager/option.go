package manager

import (
	"log/slog"

	"github.com/viant/kernor/runtime/proc"
)

// Option customises the process manager.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithNotifier sets the reap notifier.
func WithNotifier(notifier Notifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

// WithIdleImage overrides the synthetic context image the idle unit boots
// with.
func WithIdleImage(entry, stackTop uint64) Option {
	return func(s *Service) {
		s.idleEntry = entry
		s.idleStack = stackTop
	}
}

// SpawnOption customises a unit at spawn time.
type SpawnOption func(*proc.PCB)

// WithName labels the unit for logs and the process table.
func WithName(name string) SpawnOption {
	return func(p *proc.PCB) {
		p.Name = name
	}
}
