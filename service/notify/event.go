package notify

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/viant/kernor/internal/clock"
	"github.com/viant/kernor/internal/idgen"
)

// ReapEvent records one reclamation pass: the identifiers removed from the
// process table and, position for position, the stack tops they owned.
type ReapEvent struct {
	ID     string    `json:"id" yaml:"id"`
	PIDs   []uint32  `json:"pids" yaml:"pids"`
	Stacks []uint64  `json:"stacks" yaml:"stacks"`
	At     time.Time `json:"at" yaml:"at"`
}

// NewReapEvent stamps a reap result with identity and time.
func NewReapEvent(pids []uint32, stacks []uint64) ReapEvent {
	return ReapEvent{
		ID:     idgen.New(),
		PIDs:   pids,
		Stacks: stacks,
		At:     clock.Now(),
	}
}

// Publisher adapts a queue to the process manager's reap callback. The
// callback fires with the manager lock held, so delivery is best effort:
// an event the queue cannot take immediately is counted and dropped.
type Publisher struct {
	queue   TryPublisher[ReapEvent]
	logger  *slog.Logger
	dropped atomic.Uint64
}

// NewPublisher creates a reap event publisher.
func NewPublisher(queue TryPublisher[ReapEvent], logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{queue: queue, logger: logger}
}

// Reaped publishes one reap event.
func (p *Publisher) Reaped(pids []uint32, stacks []uint64) {
	event := NewReapEvent(pids, stacks)
	if !p.queue.TryPublish(&event) {
		p.dropped.Add(1)
		p.logger.Warn("reap event dropped", "id", event.ID, "pids", pids)
	}
}

// Dropped reports events the queue refused.
func (p *Publisher) Dropped() uint64 {
	return p.dropped.Load()
}
