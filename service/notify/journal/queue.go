// Package journal implements a file-backed notification queue that doubles
// as the kernel's process accounting trail: every event is a durable JSON
// record moved through pending, processing and archived directories, so an
// operator can replay what was reclaimed and when.
package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/kernor/internal/clock"
	"github.com/viant/kernor/internal/idgen"
	"github.com/viant/kernor/service/notify"
)

// EntryState represents the state of a journaled event.
type EntryState string

const (
	// EntryStatePending indicates an event waiting to be processed.
	EntryStatePending EntryState = "pending"

	// EntryStateProcessing indicates an event being processed.
	EntryStateProcessing EntryState = "processing"

	// EntryStateArchived indicates an event processed and retained.
	EntryStateArchived EntryState = "archived"
)

// Message implements notify.Message for the journal queue.
type Message[T any] struct {
	ID        string     `json:"id"`
	Data      T          `json:"data"`
	State     EntryState `json:"state"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Retries   int        `json:"retries"`

	queue     *Queue[T]
	processed bool
	mu        sync.Mutex
}

// T returns the event payload.
func (m *Message[T]) T() *T {
	return &m.Data
}

// Ack archives the event.
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.State = EntryStateArchived
	m.UpdatedAt = clock.Now()
	return m.queue.archive(context.Background(), m)
}

// Nack requeues the event or, past the retry limit, parks it in the dead
// letter directory.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	if err != nil {
		m.Error = err.Error()
	}
	m.Retries++
	m.UpdatedAt = clock.Now()
	return m.queue.requeue(context.Background(), m)
}

// Config holds configuration for the journal queue.
type Config struct {
	// BaseURL is the root location of the journal, any scheme afs accepts.
	BaseURL string `json:"baseURL" yaml:"baseURL"`

	// MaxRetries bounds how often a failing event is requeued.
	MaxRetries int `json:"maxRetries" yaml:"maxRetries"`
}

// DefaultConfig returns a default journal configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:    "/var/lib/kernor/journal",
		MaxRetries: 3,
	}
}

// Queue implements a file-backed notify.Queue.
type Queue[T any] struct {
	fs            afs.Service
	config        Config
	pendingDir    string
	processingDir string
	archivedDir   string
	dlqDir        string
	mu            sync.Mutex
}

// NewQueue creates a journal queue rooted at the configured location.
func NewQueue[T any](fs afs.Service, config Config) (*Queue[T], error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("journal: base URL cannot be empty")
	}
	q := &Queue[T]{
		fs:            fs,
		config:        config,
		pendingDir:    path.Join(config.BaseURL, "pending"),
		processingDir: path.Join(config.BaseURL, "processing"),
		archivedDir:   path.Join(config.BaseURL, "archived"),
		dlqDir:        path.Join(config.BaseURL, "dlq"),
	}

	ctx := context.Background()
	for _, dir := range []string{q.pendingDir, q.processingDir, q.archivedDir, q.dlqDir} {
		exists, _ := fs.Exists(ctx, dir)
		if exists {
			continue
		}
		if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("journal: failed to create directory %s: %w", dir, err)
		}
	}
	return q, nil
}

// Publish appends a new event to the journal.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	now := clock.Now()
	message := &Message[T]{
		ID:        idgen.New(),
		Data:      *t,
		State:     EntryStatePending,
		CreatedAt: now,
		UpdatedAt: now,
		queue:     q,
	}
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("journal: failed to marshal message: %w", err)
	}
	return q.upload(ctx, path.Join(q.pendingDir, q.filename(message.ID)), data)
}

// Consume takes the oldest pending event, or nil when the journal has
// none. The record moves to the processing directory before the pending
// copy is deleted, so a crash between the two leaves a duplicate rather
// than a loss.
func (q *Queue[T]) Consume(ctx context.Context) (notify.Message[T], error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	objects, err := q.fs.List(ctx, q.pendingDir)
	if err != nil {
		return nil, fmt.Errorf("journal: failed to list pending events: %w", err)
	}
	var pending []storage.Object
	for _, object := range objects {
		if !object.IsDir() && strings.HasSuffix(object.Name(), ".json") {
			pending = append(pending, object)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].ModTime().Before(pending[j].ModTime())
	})
	object := pending[0]

	message, err := q.readMessage(ctx, object.URL())
	if err != nil {
		destURL := path.Join(q.dlqDir, fmt.Sprintf("invalid-%s", object.Name()))
		_ = q.fs.Move(ctx, object.URL(), destURL)
		return nil, err
	}
	message.State = EntryStateProcessing
	message.UpdatedAt = clock.Now()
	message.queue = q

	updated, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("journal: failed to marshal message: %w", err)
	}
	if err := q.upload(ctx, path.Join(q.processingDir, object.Name()), updated); err != nil {
		return nil, fmt.Errorf("journal: failed to move event to processing: %w", err)
	}
	if err := q.fs.Delete(ctx, object.URL()); err != nil {
		return nil, fmt.Errorf("journal: failed to delete pending event: %w", err)
	}
	return message, nil
}

// archive moves a processed event into the archived directory.
func (q *Queue[T]) archive(ctx context.Context, m *Message[T]) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("journal: failed to marshal archived event: %w", err)
	}
	name := q.filename(m.ID)
	if err := q.upload(ctx, path.Join(q.archivedDir, name), data); err != nil {
		return fmt.Errorf("journal: failed to write archived event: %w", err)
	}
	return q.dropProcessing(ctx, name)
}

// requeue returns a failed event to pending, or parks it in the dead
// letter directory once retries run out.
func (q *Queue[T]) requeue(ctx context.Context, m *Message[T]) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	name := q.filename(m.ID)
	destDir := q.pendingDir
	if m.Retries > q.config.MaxRetries {
		destDir = q.dlqDir
	} else {
		m.State = EntryStatePending
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("journal: failed to marshal requeued event: %w", err)
	}
	if err := q.upload(ctx, path.Join(destDir, name), data); err != nil {
		return fmt.Errorf("journal: failed to requeue event: %w", err)
	}
	return q.dropProcessing(ctx, name)
}

func (q *Queue[T]) dropProcessing(ctx context.Context, name string) error {
	processingPath := path.Join(q.processingDir, name)
	if exists, _ := q.fs.Exists(ctx, processingPath); exists {
		if err := q.fs.Delete(ctx, processingPath); err != nil {
			return fmt.Errorf("journal: failed to delete processing copy: %w", err)
		}
	}
	return nil
}

func (q *Queue[T]) filename(id string) string {
	return fmt.Sprintf("%s.json", id)
}

func (q *Queue[T]) upload(ctx context.Context, path string, data []byte) error {
	return q.fs.Upload(ctx, path, file.DefaultFileOsMode, bytes.NewBuffer(data))
}

func (q *Queue[T]) readMessage(ctx context.Context, url string) (*Message[T], error) {
	data, err := q.fs.DownloadWithURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("journal: failed to read event %s: %w", url, err)
	}
	var message Message[T]
	if err := json.Unmarshal(data, &message); err != nil {
		return nil, fmt.Errorf("journal: failed to decode event %s: %w", url, err)
	}
	return &message, nil
}

// ensure Queue implements the notify.Queue interface
var _ notify.Queue[any] = (*Queue[any])(nil)
