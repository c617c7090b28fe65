package kernor

import (
	"log/slog"
	"os"

	"github.com/viant/afs"
	"github.com/viant/kernor/cpu"
	"github.com/viant/kernor/internal/halt"
	"github.com/viant/kernor/internal/idgen"
	"github.com/viant/kernor/service/manager"
	"github.com/viant/kernor/service/notify"
	"github.com/viant/kernor/service/notify/journal"
	nmemory "github.com/viant/kernor/service/notify/memory"
	"github.com/viant/kernor/service/preempt"
	"github.com/viant/kernor/service/stack"
)

// ReapQueue is the transport between the process manager and the stack
// reclaimer: non-blocking on the inbound edge, blocking on the outbound.
type ReapQueue interface {
	notify.Queue[notify.ReapEvent]
	notify.TryPublisher[notify.ReapEvent]
}

// Service assembles the kernel from its parts: one machine, one process
// manager, one preemption timer and one reclamation pipeline.
type Service struct {
	runtime  *Runtime
	config   *Config
	logger   *slog.Logger
	machine  *cpu.Machine
	queue    ReapQueue
	provider stack.Provider
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()

	publisher := notify.NewPublisher(s.queue, s.logger)
	s.runtime.manager = manager.New(s.machine,
		manager.WithLogger(s.logger),
		manager.WithNotifier(publisher),
		manager.WithIdleImage(s.config.Idle.Entry, s.config.Idle.StackTop))
	s.runtime.timer = preempt.New(s.runtime.manager, s.config.Timer, preempt.WithLogger(s.logger))

	reclaimerOptions := []stack.ReclaimerOption{stack.WithLogger(s.logger)}
	if s.config.Journal.Enabled {
		archive, err := journal.NewQueue[notify.ReapEvent](afs.New(), journal.Config{
			BaseURL:    s.config.Journal.BaseURL,
			MaxRetries: s.config.Journal.MaxRetries,
		})
		if err != nil {
			halt.Fatalf("journal unavailable: %v", err)
		}
		reclaimerOptions = append(reclaimerOptions, stack.WithArchive(archive))
	}
	s.runtime.reclaimer = stack.NewReclaimer(s.queue, s.provider, reclaimerOptions...)

	s.runtime.machine = s.machine
	s.runtime.provider = s.provider
	s.runtime.config = s.config
	s.runtime.logger = s.logger
	s.runtime.bootID = idgen.New()
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		halt.Fatalf("boot configuration invalid: %v", err)
	}
	if s.logger == nil {
		level, _ := s.config.Log.SlogLevel()
		s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	if s.machine == nil {
		s.machine = cpu.NewMachine()
	}
	if s.queue == nil {
		s.queue = nmemory.NewQueue[notify.ReapEvent](nmemory.DefaultConfig())
	}
	if s.provider == nil {
		arena, err := stack.NewArena(s.config.Stack)
		if err != nil {
			halt.Fatalf("stack arena unavailable: %v", err)
		}
		s.provider = arena
	}
}

// Runtime returns the assembled kernel runtime.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Config returns the effective configuration.
func (s *Service) Config() *Config {
	return s.config
}

// New creates a kernel service.
func New(options ...Option) *Service {
	ret := &Service{runtime: &Runtime{}}
	ret.init(options)
	return ret
}
