package server

import (
	"context"
	"sync"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/notify"
	"github.com/claude/liftlog/internal/workout"
)

// Session event names as they appear on the event stream.
const (
	EventSessionMutated  = "session.mutated"
	EventSessionFinished = "session.finished"
	EventRestComplete    = "rest.complete"
)

type SessionEvent struct {
	Name    string               `json:"name"`
	Session *models.Session      `json:"session,omitempty"`
	Rest    *notify.RestComplete `json:"rest,omitempty"`
}

// Hub fans session events out to event stream clients. It receives them as
// workout hooks and, being a notify.Sink, as rest-complete notifications.
// Slow clients miss events rather than block the workout service.
type Hub struct {
	mu   sync.RWMutex
	next int
	subs map[int]chan SessionEvent
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan SessionEvent)}
}

// Hooks returns workout hooks that publish to the hub.
func (h *Hub) Hooks() workout.Hooks {
	return workout.Hooks{
		OnSessionMutated: func(s models.Session) {
			h.publish(SessionEvent{Name: EventSessionMutated, Session: &s})
		},
		OnSessionFinished: func(s models.Session) {
			h.publish(SessionEvent{Name: EventSessionFinished, Session: &s})
		},
	}
}

func (h *Hub) NotifyRestComplete(_ context.Context, n notify.RestComplete) error {
	h.publish(SessionEvent{Name: EventRestComplete, Rest: &n})
	return nil
}

// Subscribe returns a buffered channel of events, closed by the returned cancel func.
func (h *Hub) Subscribe(buffer int) (<-chan SessionEvent, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan SessionEvent, buffer)

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			close(ch)
			h.mu.Unlock()
		})
	}
}

func (h *Hub) publish(ev SessionEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
