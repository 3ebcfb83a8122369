package event

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Listener drives a handler off a typed publisher until stopped.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewListener creates a listener; Start begins delivery.
func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Stop ends delivery; in-flight handler calls finish.
func (l *Listener[T]) Stop() {
	l.cancel()
}

// Start consumes in a background goroutine, invoking the handler per event.
func (l *Listener[T]) Start() {
	go func() {
		for {
			select {
			case <-l.ctx.Done():
				return
			default:
				event, err := l.publisher.Consume(l.ctx)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return
					}
					zap.L().Warn("event consume failed", zap.Error(err))
					continue
				}
				if event == nil {
					// polling vendors return no message on an empty queue
					time.Sleep(10 * time.Millisecond)
					continue
				}
				l.handler(event)
			}
		}
	}()
}
