package events

import (
	"sync"
	"testing"
	"time"

	"nuitka-toolkit/internal/logger"
)

func waitFor(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := NewBus(8, logger.NoOpLogger{})
	defer bus.Shutdown()

	got := make(chan Event, 1)
	bus.Subscribe("build.started", NewHandler("test", func(e Event) { got <- e }))

	bus.Publish(Event{Type: "build.started", Data: map[string]interface{}{"run_id": "r1"}})

	ev := waitFor(t, got)
	if ev.Data["run_id"] != "r1" {
		t.Errorf("run_id = %v", ev.Data["run_id"])
	}
	if ev.Timestamp.IsZero() {
		t.Error("timestamp should be set on publish")
	}
}

func TestEventsArriveInOrder(t *testing.T) {
	bus := NewBus(16, logger.NoOpLogger{})
	defer bus.Shutdown()

	var (
		mu    sync.Mutex
		order []int
		done  = make(chan Event, 1)
	)
	bus.Subscribe("tick", NewHandler("order", func(e Event) {
		mu.Lock()
		order = append(order, e.Data["n"].(int))
		n := len(order)
		mu.Unlock()
		if n == 5 {
			done <- e
		}
	}))

	for i := 0; i < 5; i++ {
		bus.Publish(Event{Type: "tick", Data: map[string]interface{}{"n": i}})
	}
	waitFor(t, done)

	mu.Lock()
	defer mu.Unlock()
	for i, n := range order {
		if n != i {
			t.Fatalf("order = %v", order)
		}
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus(8, logger.NoOpLogger{})
	defer bus.Shutdown()

	removed := make(chan Event, 1)
	kept := make(chan Event, 1)
	h := NewHandler("removed", func(e Event) { removed <- e })
	bus.Subscribe("x", h)
	bus.Subscribe("x", NewHandler("kept", func(e Event) { kept <- e }))
	bus.Unsubscribe("x", h)

	bus.Publish(Event{Type: "x"})
	waitFor(t, kept)

	select {
	case <-removed:
		t.Error("unsubscribed handler was called")
	default:
	}
}

func TestPanickingHandlerDoesNotStopBus(t *testing.T) {
	bus := NewBus(8, logger.NoOpLogger{})
	defer bus.Shutdown()

	got := make(chan Event, 1)
	bus.Subscribe("x", NewHandler("panics", func(Event) { panic("boom") }))
	bus.Subscribe("x", NewHandler("ok", func(e Event) { got <- e }))

	bus.Publish(Event{Type: "x"})
	waitFor(t, got)
}

func TestPublishAfterShutdown(t *testing.T) {
	bus := NewBus(1, logger.NoOpLogger{})
	bus.Shutdown()

	// Must not panic or block.
	bus.Publish(Event{Type: "x"})
	bus.Publish(Event{Type: "x"})
}
