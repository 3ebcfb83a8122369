// Package messaging abstracts the queue carrying lifecycle notifications out
// of the engine. The memory vendor serves embedded runs, the fs vendor
// persists deliveries across restarts.
package messaging

import (
	"context"
)

// Vendor names a queue implementation.
type Vendor string

// Queue is an abstract message queue for any payload type.
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue.
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue.
	Consume(ctx context.Context) (Message[T], error)
}

// Message is one delivery retrieved from a queue.
type Message[T any] interface {
	// T returns the payload of this message.
	T() *T

	// Ack acknowledges successful processing of this message.
	Ack() error

	// Nack indicates failure; the queue redelivers until retries run out.
	Nack(err error) error
}
