package stack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/viant/kernor/internal/halt"
	"github.com/viant/kernor/service/notify"
)

// pollInterval paces the consume loop on queues that report empty rather
// than block.
const pollInterval = 50 * time.Millisecond

// ReclaimerOption customises a reclaimer.
type ReclaimerOption func(*Reclaimer)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ReclaimerOption {
	return func(r *Reclaimer) {
		r.logger = logger
	}
}

// WithArchive appends every reclaimed event to an accounting journal.
func WithArchive(archive notify.Queue[notify.ReapEvent]) ReclaimerOption {
	return func(r *Reclaimer) {
		r.archive = archive
	}
}

// Reclaimer consumes reap events and returns the stacks they carry to the
// provider, closing the loop the process manager opens when it removes
// dead units from the table.
type Reclaimer struct {
	queue    notify.Queue[notify.ReapEvent]
	provider Provider
	archive  notify.Queue[notify.ReapEvent]
	logger   *slog.Logger

	released atomic.Uint64

	shutdownCh chan struct{}
}

// NewReclaimer creates a reclaimer fed by queue and backed by provider.
func NewReclaimer(queue notify.Queue[notify.ReapEvent], provider Provider, options ...ReclaimerOption) *Reclaimer {
	if queue == nil {
		halt.Fatalf("reclaimer requires a queue")
	}
	if provider == nil {
		halt.Fatalf("reclaimer requires a stack provider")
	}
	ret := &Reclaimer{
		queue:      queue,
		provider:   provider,
		logger:     slog.Default(),
		shutdownCh: make(chan struct{}),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Start consumes until the context is cancelled or Shutdown is called.
// Callers run it on its own goroutine.
func (r *Reclaimer) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-r.shutdownCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		message, err := r.queue.Consume(ctx)
		if err != nil {
			select {
			case <-r.shutdownCh:
				return nil
			default:
				return err
			}
		}
		if message == nil {
			select {
			case <-ctx.Done():
				select {
				case <-r.shutdownCh:
					return nil
				default:
					return ctx.Err()
				}
			case <-time.After(pollInterval):
			}
			continue
		}
		r.handle(ctx, message)
	}
}

// Shutdown stops the consume loop.
func (r *Reclaimer) Shutdown() {
	close(r.shutdownCh)
}

// Released reports how many stacks have been returned to the provider.
func (r *Reclaimer) Released() uint64 {
	return r.released.Load()
}

func (r *Reclaimer) handle(ctx context.Context, message notify.Message[notify.ReapEvent]) {
	event := message.T()
	var failures []error
	for i, top := range event.Stacks {
		if err := r.provider.Release(ctx, top); err != nil {
			var pid uint32
			if i < len(event.PIDs) {
				pid = event.PIDs[i]
			}
			failures = append(failures, fmt.Errorf("pid %d top %#x: %w", pid, top, err))
			continue
		}
		r.released.Add(1)
	}
	if len(failures) > 0 {
		err := errors.Join(failures...)
		r.logger.Warn("stack release failed", "id", event.ID, "error", err)
		if nackErr := message.Nack(err); nackErr != nil {
			r.logger.Warn("nack failed", "id", event.ID, "error", nackErr)
		}
		return
	}
	if err := message.Ack(); err != nil {
		r.logger.Warn("ack failed", "id", event.ID, "error", err)
	}
	r.logger.Debug("stacks reclaimed", "id", event.ID, "pids", event.PIDs)
	if r.archive == nil {
		return
	}
	if err := r.archive.Publish(ctx, event); err != nil {
		r.logger.Warn("journal append failed", "id", event.ID, "error", err)
	}
}
