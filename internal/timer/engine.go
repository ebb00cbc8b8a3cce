package timer

import (
	"context"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/apperr"
	"github.com/claude/liftlog/internal/clock"
	"github.com/claude/liftlog/internal/models"
)

// Defaults used when Config leaves a field zero.
const (
	DefaultTick           = time.Second
	DefaultWarningSeconds = 10
)

type Config struct {
	Tick           time.Duration
	WarningSeconds int
}

// State is a read-only view of a running rest timer.
type State struct {
	Key       Key     `json:"key"`
	Remaining int     `json:"remaining"`
	Total     int     `json:"total"`
	Running   bool    `json:"running"`
	Fraction  float64 `json:"fraction"` // elapsed share, 0 at start, 1 when done
}

type handle struct {
	key       Key
	remaining int
	total     int
}

func (h *handle) state() State {
	f := 1.0
	if h.total > 0 {
		f = 1 - float64(h.remaining)/float64(h.total)
	}
	return State{Key: h.key, Remaining: h.remaining, Total: h.total, Running: true, Fraction: f}
}

// Engine runs rest countdowns. At most one timer is active: starting a new one
// silently replaces whatever was running.
type Engine struct {
	clock  clock.Clock
	tick   time.Duration
	warnAt int

	mu        sync.Mutex
	active    *handle
	durations map[Key]int

	subMu     sync.RWMutex
	nextSub   int
	listeners map[int]func(Event)
	channels  map[int]chan Event
}

func New(clk clock.Clock, cfg Config) *Engine {
	if clk == nil {
		clk = clock.Real{}
	}
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	if cfg.WarningSeconds <= 0 {
		cfg.WarningSeconds = DefaultWarningSeconds
	}
	return &Engine{
		clock:     clk,
		tick:      cfg.Tick,
		warnAt:    cfg.WarningSeconds,
		durations: make(map[Key]int),
		listeners: make(map[int]func(Event)),
		channels:  make(map[int]chan Event),
	}
}

// Start begins a countdown of seconds for key, cancelling any other running timer.
// Restarting the running key resets it.
func (e *Engine) Start(key Key, seconds int) error {
	if !key.Valid() {
		return apperr.Validation("start timer", "invalid key %s", key)
	}
	if seconds < 0 {
		return apperr.Validation("start timer", "duration must not be negative")
	}

	e.mu.Lock()
	var events []Event
	if e.active != nil {
		events = append(events, e.event(EventCancelled, e.active))
	}
	e.active = &handle{key: key, remaining: seconds, total: seconds}
	events = append(events, e.event(EventStarted, e.active))
	e.mu.Unlock()

	e.dispatch(events)
	return nil
}

// StartRest starts key with the duration last set through EditDuration. Keys
// that were never edited use restTime, a "m:ss" value.
func (e *Engine) StartRest(key Key, restTime string) error {
	if seconds, ok := e.Duration(key); ok {
		return e.Start(key, seconds)
	}
	seconds, err := models.ParseRestTime(restTime)
	if err != nil {
		return err
	}
	return e.Start(key, seconds)
}

// Cancel stops the timer for key without a completion. It reports whether one was running.
func (e *Engine) Cancel(key Key) bool {
	e.mu.Lock()
	if e.active == nil || e.active.key != key {
		e.mu.Unlock()
		return false
	}
	ev := e.event(EventCancelled, e.active)
	e.active = nil
	e.mu.Unlock()

	e.dispatch([]Event{ev})
	return true
}

// CancelAll stops every timer without a completion.
func (e *Engine) CancelAll() {
	e.mu.Lock()
	var events []Event
	if e.active != nil {
		events = append(events, e.event(EventCancelled, e.active))
		e.active = nil
	}
	e.mu.Unlock()

	e.dispatch(events)
}

// Reset cancels everything and forgets edited durations.
func (e *Engine) Reset() {
	e.CancelAll()
	e.mu.Lock()
	clear(e.durations)
	e.mu.Unlock()
}

// EditDuration records a new configured duration for key. A value that is not
// "m:ss" is rejected and the previous duration is kept. A running countdown is
// not retimed; the new duration applies from the next StartRest.
func (e *Engine) EditDuration(key Key, restTime string) error {
	if !key.Valid() {
		return apperr.Validation("edit timer duration", "invalid key %s", key)
	}
	seconds, err := models.ParseRestTime(restTime)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.durations[key] = seconds
	e.mu.Unlock()
	return nil
}

// Duration returns the duration last configured through EditDuration.
func (e *Engine) Duration(key Key) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, ok := e.durations[key]
	return d, ok
}

// Tick advances the running timer by one second.
func (e *Engine) Tick() {
	e.mu.Lock()
	h := e.active
	if h == nil {
		e.mu.Unlock()
		return
	}
	h.remaining--
	var ev Event
	if h.remaining <= 0 {
		h.remaining = 0
		ev = e.event(EventComplete, h)
		e.active = nil
	} else {
		ev = e.event(EventTick, h)
		ev.Warning = h.remaining <= e.warnAt
	}
	e.mu.Unlock()

	e.dispatch([]Event{ev})
}

// Run ticks once per configured interval until ctx is done.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.Tick()
		case <-ctx.Done():
			return
		}
	}
}

// State returns the timer state for key. Running is false when key is not active.
func (e *Engine) State(key Key) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil || e.active.key != key {
		return State{Key: key}
	}
	return e.active.state()
}

// Active returns the running timer, if any.
func (e *Engine) Active() (State, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return State{}, false
	}
	return e.active.state(), true
}

// Rekey rewrites keys after a structural edit of the session. fn returns the
// new key, or false when the key no longer resolves to a set; such a running
// timer is cancelled and such a duration is dropped.
func (e *Engine) Rekey(fn func(Key) (Key, bool)) {
	e.mu.Lock()
	var events []Event
	if e.active != nil {
		if nk, ok := fn(e.active.key); ok {
			e.active.key = nk
		} else {
			events = append(events, e.event(EventCancelled, e.active))
			e.active = nil
		}
	}
	moved := make(map[Key]int, len(e.durations))
	for k, d := range e.durations {
		if nk, ok := fn(k); ok {
			moved[nk] = d
		}
	}
	e.durations = moved
	e.mu.Unlock()

	e.dispatch(events)
}

func (e *Engine) event(kind EventKind, h *handle) Event {
	return Event{
		Kind:      kind,
		Key:       h.key,
		Remaining: h.remaining,
		Total:     h.total,
		At:        e.clock.Now(),
	}
}
