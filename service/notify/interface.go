// Package notify carries reap notifications from the process manager to
// the components that recycle what a dead unit leaves behind. The manager
// publishes from scheduler context, so the inbound edge must never block;
// consumers run on ordinary goroutines and may take their time.
package notify

import (
	"context"
)

// Vendor names a queue implementation.
type Vendor string

const (
	// VendorMemory is the channel-backed in-process queue.
	VendorMemory Vendor = "memory"

	// VendorJournal is the file-backed accounting journal.
	VendorJournal Vendor = "journal"
)

// Queue represents an abstract message queue for any payload type.
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue.
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue.
	Consume(ctx context.Context) (Message[T], error)
}

// TryPublisher is implemented by queues that accept messages without
// blocking. Publishers running under scheduler exclusion require it.
type TryPublisher[T any] interface {
	// TryPublish offers a payload and reports whether it was accepted.
	TryPublish(t *T) bool
}

// Message represents a message retrieved from a queue.
type Message[T any] interface {
	// T returns the payload of this message.
	T() *T

	// Ack acknowledges successful processing of this message.
	Ack() error

	// Nack indicates failure in processing this message.
	Nack(err error) error
}
