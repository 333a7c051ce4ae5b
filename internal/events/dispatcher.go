package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher allows event publication/subscription. Publish must never
// block the caller beyond enqueueing and must never return delivery errors
// to the publishing request.
type Dispatcher interface {
	Publish(ctx context.Context, event Event)
	Subscribe(eventType EventType, handler EventHandler)
}

// QueueDispatcher delivers events to handlers from a single worker
// goroutine fed by a buffered channel. Handler errors are logged and
// swallowed; a full queue drops the event with a log entry rather than
// blocking the publisher.
type QueueDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	queue     chan Event
	logger    *zap.Logger
	stop      chan struct{}
	done      chan struct{}
}

// NewQueueDispatcher creates a dispatcher with the given queue capacity and
// starts its delivery worker.
func NewQueueDispatcher(queueSize int, logger *zap.Logger) *QueueDispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	d := &QueueDispatcher{
		listeners: make(map[EventType][]EventHandler),
		queue:     make(chan Event, queueSize),
		logger:    logger,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish enqueues the event for asynchronous delivery.
func (d *QueueDispatcher) Publish(_ context.Context, event Event) {
	select {
	case d.queue <- event:
	default:
		d.logger.Warn("event queue full; dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("entity_id", event.EntityID))
	}
}

// Subscribe registers a handler for the given event type.
func (d *QueueDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

func (d *QueueDispatcher) run() {
	defer close(d.done)
	for {
		select {
		case event := <-d.queue:
			d.deliver(event)
		case <-d.stop:
			// drain what is already queued before exiting
			for {
				select {
				case event := <-d.queue:
					d.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (d *QueueDispatcher) deliver(event Event) {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := handler(ctx, event); err != nil {
			d.logger.Error("event handler failed",
				zap.String("event_type", string(event.Type)),
				zap.String("entity_id", event.EntityID),
				zap.Error(err))
		}
		cancel()
	}
}

// Close stops the worker after draining queued events.
func (d *QueueDispatcher) Close() {
	close(d.stop)
	<-d.done
}
