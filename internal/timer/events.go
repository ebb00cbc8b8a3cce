package timer

import (
	"fmt"
	"sync"
	"time"
)

type EventKind int

const (
	EventStarted EventKind = iota + 1
	EventTick
	EventComplete
	EventCancelled
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventTick:
		return "tick"
	case EventComplete:
		return "complete"
	case EventCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (k EventKind) MarshalText() ([]byte, error) {
	if k < EventStarted || k > EventCancelled {
		return nil, fmt.Errorf("unknown event kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// Event is emitted on every timer transition. Warning is set on ticks inside the
// final warning window (remaining > 0 and at or below the configured seconds).
type Event struct {
	Kind      EventKind `json:"kind"`
	Key       Key       `json:"key"`
	Remaining int       `json:"remaining"`
	Total     int       `json:"total"`
	Warning   bool      `json:"warning,omitempty"`
	At        time.Time `json:"at"`
}

// Listen registers fn for every event. fn runs on the goroutine that caused the
// event, outside the engine lock, so it may call back into the engine.
func (e *Engine) Listen(fn func(Event)) (unlisten func()) {
	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.listeners[id] = fn
	e.subMu.Unlock()

	return func() {
		e.subMu.Lock()
		delete(e.listeners, id)
		e.subMu.Unlock()
	}
}

// Subscribe returns a buffered channel of events. Slow readers miss events rather
// than stall the countdown. The channel is closed by the returned cancel func.
func (e *Engine) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.channels[id] = ch
	e.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.subMu.Lock()
			delete(e.channels, id)
			close(ch)
			e.subMu.Unlock()
		})
	}
}

func (e *Engine) dispatch(events []Event) {
	if len(events) == 0 {
		return
	}
	e.subMu.RLock()
	listeners := make([]func(Event), 0, len(e.listeners))
	for _, fn := range e.listeners {
		listeners = append(listeners, fn)
	}
	for _, ev := range events {
		for _, ch := range e.channels {
			select {
			case ch <- ev:
			default:
			}
		}
	}
	e.subMu.RUnlock()

	for _, ev := range events {
		for _, fn := range listeners {
			fn(ev)
		}
	}
}
