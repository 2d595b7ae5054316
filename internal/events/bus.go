// Package events distributes build lifecycle events to subscribers without
// blocking the publisher.
package events

import (
	"context"
	"sync"
	"time"

	"nuitka-toolkit/internal/logger"
)

type Event struct {
	Type      string
	Timestamp time.Time
	Data      map[string]interface{}
}

type Handler interface {
	Handle(event Event)
	GetID() string
}

// Publisher is the side of the bus that producers depend on.
type Publisher interface {
	Publish(event Event)
}

type handlerFunc struct {
	id string
	fn func(Event)
}

func (h handlerFunc) Handle(event Event) { h.fn(event) }
func (h handlerFunc) GetID() string      { return h.id }

// NewHandler adapts a function to a Handler identified by id.
func NewHandler(id string, fn func(Event)) Handler {
	return handlerFunc{id: id, fn: fn}
}

type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
	buffer      chan Event
	logger      logger.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

func NewBus(bufferSize int, log logger.Logger) *Bus {
	ctx, cancel := context.WithCancel(context.Background())

	bus := &Bus{
		subscribers: make(map[string][]Handler),
		buffer:      make(chan Event, bufferSize),
		logger:      log,
		ctx:         ctx,
		cancel:      cancel,
	}

	bus.startWorker()
	return bus
}

// Publish queues the event. Events are dropped when the buffer is full or
// the bus has shut down.
func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case <-b.ctx.Done():
		return
	default:
	}

	select {
	case b.buffer <- event:
	case <-b.ctx.Done():
	default:
		b.logger.Warning("EventBus", "event dropped, buffer full", map[string]interface{}{
			"type": event.Type,
		})
	}
}

func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

func (b *Bus) Unsubscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := b.subscribers[eventType]
	for i, h := range handlers {
		if h.GetID() == handler.GetID() {
			b.subscribers[eventType] = append(handlers[:i:i], handlers[i+1:]...)
			break
		}
	}
}

// Shutdown stops the worker. Queued events that were not dispatched yet are discarded.
func (b *Bus) Shutdown() {
	b.cancel()
	b.wg.Wait()
}

func (b *Bus) startWorker() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		for {
			select {
			case event := <-b.buffer:
				b.dispatch(event)
			case <-b.ctx.Done():
				return
			}
		}
	}()
}

// dispatch delivers in subscription order on the worker goroutine, so a
// subscriber sees events in publish order.
func (b *Bus) dispatch(event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.subscribers[event.Type]))
	copy(handlers, b.subscribers[event.Type])
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.safeHandle(handler, event)
	}
}

func (b *Bus) safeHandle(h Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warning("EventBus", "handler panicked", map[string]interface{}{
				"handler": h.GetID(),
				"type":    event.Type,
				"panic":   r,
			})
		}
	}()
	h.Handle(event)
}
