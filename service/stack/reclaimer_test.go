package stack

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/kernor/service/notify"
	"github.com/viant/kernor/service/notify/memory"
)

func TestReclaimer_ReleasesStacks(t *testing.T) {
	arena := newArena(t, 64)
	ctx := context.Background()
	first, err := arena.Allocate(ctx, DefaultStackSize)
	require.NoError(t, err)
	second, err := arena.Allocate(ctx, DefaultStackSize)
	require.NoError(t, err)

	queue := memory.NewQueue[notify.ReapEvent](memory.DefaultConfig())
	event := notify.NewReapEvent([]uint32{1, 2}, []uint64{first, second})
	require.NoError(t, queue.Publish(ctx, &event))

	reclaimer := NewReclaimer(queue, arena)
	errCh := make(chan error, 1)
	go func() {
		errCh <- reclaimer.Start(context.Background())
	}()

	assert.Eventually(t, func() bool {
		return reclaimer.Released() == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, arena.Live(), "both stacks back in the arena")

	reclaimer.Shutdown()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("reclaimer did not stop")
	}
}

func TestReclaimer_ArchivesEvents(t *testing.T) {
	arena := newArena(t, 64)
	ctx := context.Background()
	top, err := arena.Allocate(ctx, DefaultStackSize)
	require.NoError(t, err)

	queue := memory.NewQueue[notify.ReapEvent](memory.DefaultConfig())
	archive := memory.NewQueue[notify.ReapEvent](memory.DefaultConfig())
	event := notify.NewReapEvent([]uint32{5}, []uint64{top})
	require.NoError(t, queue.Publish(ctx, &event))

	reclaimer := NewReclaimer(queue, arena, WithArchive(archive))
	go func() {
		_ = reclaimer.Start(context.Background())
	}()
	defer reclaimer.Shutdown()

	assert.Eventually(t, func() bool {
		return archive.Size() == 1
	}, time.Second, 10*time.Millisecond)

	message, err := archive.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint32{5}, message.T().PIDs)
}

func TestReclaimer_FailedReleaseGoesToDeadLetter(t *testing.T) {
	arena := newArena(t, 64)
	config := memory.DefaultConfig()
	config.MaxRetries = 0
	config.RetryDelay = 5 * time.Millisecond
	queue := memory.NewQueue[notify.ReapEvent](config)

	event := notify.NewReapEvent([]uint32{9}, []uint64{0xdead000})
	require.NoError(t, queue.Publish(context.Background(), &event))

	reclaimer := NewReclaimer(queue, arena)
	go func() {
		_ = reclaimer.Start(context.Background())
	}()
	defer reclaimer.Shutdown()

	assert.Eventually(t, func() bool {
		return queue.DLQSize() == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, uint64(0), reclaimer.Released())
}

func TestReclaimer_StopsOnContextCancel(t *testing.T) {
	arena := newArena(t, 8)
	queue := memory.NewQueue[notify.ReapEvent](memory.DefaultConfig())
	reclaimer := NewReclaimer(queue, arena)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- reclaimer.Start(ctx)
	}()
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("reclaimer did not stop")
	}
}

func TestNewReclaimer_Guards(t *testing.T) {
	arena := newArena(t, 8)
	queue := memory.NewQueue[notify.ReapEvent](memory.DefaultConfig())

	assert.Panics(t, func() {
		NewReclaimer(nil, arena)
	})
	assert.Panics(t, func() {
		NewReclaimer(queue, nil)
	})
}
