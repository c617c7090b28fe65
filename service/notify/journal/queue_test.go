package journal

import (
	"bytes"
	"context"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

type testEvent struct {
	PID   uint32 `json:"pid"`
	Stack uint64 `json:"stack"`
}

func newTestQueue(t *testing.T, maxRetries int) (*Queue[testEvent], afs.Service) {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "journal-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(tempDir) })

	fs := afs.New()
	queue, err := NewQueue[testEvent](fs, Config{BaseURL: tempDir, MaxRetries: maxRetries})
	require.NoError(t, err)
	return queue, fs
}

func countEntries(t *testing.T, fs afs.Service, dir string) int {
	t.Helper()
	objects, err := fs.List(context.Background(), dir)
	require.NoError(t, err)
	count := 0
	for _, object := range objects {
		if !object.IsDir() && strings.HasSuffix(object.Name(), ".json") {
			count++
		}
	}
	return count
}

func TestQueue(t *testing.T) {
	queue, fs := newTestQueue(t, 2)
	ctx := context.Background()

	for _, dir := range []string{queue.pendingDir, queue.processingDir, queue.archivedDir, queue.dlqDir} {
		exists, err := fs.Exists(ctx, dir)
		assert.NoError(t, err)
		assert.True(t, exists, dir)
	}

	events := []testEvent{
		{PID: 1, Stack: 0x7f0000},
		{PID: 2, Stack: 0x7e0000},
		{PID: 3, Stack: 0x7d0000},
	}
	for i := range events {
		require.NoError(t, queue.Publish(ctx, &events[i]))
	}
	assert.Equal(t, 3, countEntries(t, fs, queue.pendingDir))

	seen := map[uint32]bool{}
	for range events {
		message, err := queue.Consume(ctx)
		require.NoError(t, err)
		require.NotNil(t, message)
		seen[message.T().PID] = true
		require.NoError(t, message.Ack())
	}
	assert.Len(t, seen, 3, "every event consumed exactly once")
	assert.Equal(t, 0, countEntries(t, fs, queue.pendingDir))
	assert.Equal(t, 0, countEntries(t, fs, queue.processingDir))
	assert.Equal(t, 3, countEntries(t, fs, queue.archivedDir))

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Nil(t, message, "drained journal yields nothing")
}

func TestQueue_NackRequeuesThenParks(t *testing.T) {
	queue, fs := newTestQueue(t, 1)
	ctx := context.Background()

	event := testEvent{PID: 9, Stack: 0x7c0000}
	require.NoError(t, queue.Publish(ctx, &event))

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	require.NotNil(t, message)
	require.NoError(t, message.Nack(assert.AnError))
	assert.Equal(t, 1, countEntries(t, fs, queue.pendingDir), "first failure requeues")

	message, err = queue.Consume(ctx)
	require.NoError(t, err)
	require.NotNil(t, message)
	require.NoError(t, message.Nack(assert.AnError))

	assert.Equal(t, 0, countEntries(t, fs, queue.pendingDir))
	assert.Equal(t, 1, countEntries(t, fs, queue.dlqDir), "retries exhausted")
}

func TestQueue_InvalidEntryQuarantined(t *testing.T) {
	queue, fs := newTestQueue(t, 2)
	ctx := context.Background()

	corrupt := path.Join(queue.pendingDir, "corrupt.json")
	require.NoError(t, fs.Upload(ctx, corrupt, file.DefaultFileOsMode, bytes.NewBufferString("not json")))

	_, err := queue.Consume(ctx)
	assert.Error(t, err)
	assert.Equal(t, 0, countEntries(t, fs, queue.pendingDir))
	assert.Equal(t, 1, countEntries(t, fs, queue.dlqDir), "corrupt record parked for inspection")
}

func TestNewQueue_RequiresBaseURL(t *testing.T) {
	_, err := NewQueue[testEvent](afs.New(), Config{})
	assert.Error(t, err)
}
