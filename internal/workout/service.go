// Package workout runs the single active workout session: start, mutate, pause,
// resume, finish and discard, with a write-through snapshot after every change.
package workout

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/claude/liftlog/internal/apperr"
	"github.com/claude/liftlog/internal/clock"
	"github.com/claude/liftlog/internal/ids"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/notify"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/timer"
)

// TemplateSource resolves templates by id.
type TemplateSource interface {
	Get(ctx context.Context, id string) (models.Template, error)
}

// Hooks are called after the service lock is released. Sessions are copies.
type Hooks struct {
	OnSessionMutated  func(models.Session)
	OnSessionFinished func(models.Session)
}

type Options struct {
	Snapshots   *storage.Snapshots
	Templates   TemplateSource
	Timers      *timer.Engine
	Clock       clock.Clock
	IDs         ids.Generator
	Notifier    notify.Sink
	Metrics     *metrics.Manager // optional
	Log         *slog.Logger
	DefaultRest string
	Hooks       Hooks
}

type Service struct {
	snaps       *storage.Snapshots
	templates   TemplateSource
	history     *History
	timers      *timer.Engine
	clock       clock.Clock
	ids         ids.Generator
	notifier    notify.Sink
	metrics     *metrics.Manager
	log         *slog.Logger
	defaultRest string
	hooks       Hooks

	mu     sync.Mutex
	active *models.Session

	// current mirrors active for the timer listener, which must not take mu.
	current  atomic.Pointer[models.Session]
	unlisten func()
}

// New builds the service and recovers a session persisted by a previous run.
func New(ctx context.Context, opts Options) (*Service, error) {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.IDs == nil {
		opts.IDs = ids.UUID{}
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.LogSink{Log: opts.Log}
	}
	if opts.Timers == nil {
		opts.Timers = timer.New(opts.Clock, timer.Config{})
	}
	if opts.DefaultRest == "" {
		opts.DefaultRest = models.DefaultRestTime
	}
	if !models.ValidRestTime(opts.DefaultRest) {
		return nil, apperr.Validation("new workout service", "default rest %q must look like m:ss", opts.DefaultRest)
	}

	s := &Service{
		snaps:       opts.Snapshots,
		templates:   opts.Templates,
		history:     NewHistory(opts.Snapshots),
		timers:      opts.Timers,
		clock:       opts.Clock,
		ids:         opts.IDs,
		notifier:    opts.Notifier,
		metrics:     opts.Metrics,
		log:         opts.Log,
		defaultRest: opts.DefaultRest,
		hooks:       opts.Hooks,
	}

	cur, err := s.loadPersisted(ctx)
	if err != nil {
		return nil, err
	}
	if cur != nil {
		s.log.Info("recovered active workout", "session", cur.ID, "template", cur.TemplateID)
		s.setActive(cur)
	}

	s.unlisten = s.timers.Listen(s.onTimerEvent)
	return s, nil
}

// Close detaches the service from the timer engine.
func (s *Service) Close() {
	if s.unlisten != nil {
		s.unlisten()
	}
}

func (s *Service) History() *History { return s.history }

func (s *Service) Timers() *timer.Engine { return s.timers }

func (s *Service) HasActiveSession() bool {
	return s.current.Load() != nil
}

// Active returns a copy of the active session.
func (s *Service) Active() (*models.Session, bool) {
	cur := s.current.Load()
	if cur == nil {
		return nil, false
	}
	return cur.Clone(), true
}

// CurrentWorkout returns a copy of the active session, or nil when there is none.
func (s *Service) CurrentWorkout(context.Context) (*models.Session, error) {
	cur, _ := s.Active()
	return cur, nil
}

// Elapsed is the wall time since the active session started.
func (s *Service) Elapsed() (time.Duration, bool) {
	cur := s.current.Load()
	if cur == nil {
		return 0, false
	}
	return s.clock.Now().Sub(time.UnixMilli(cur.StartTime)), true
}

// StartTemplate looks up a template and starts it.
func (s *Service) StartTemplate(ctx context.Context, templateID string) (*models.Session, error) {
	if s.templates == nil {
		return nil, apperr.NotFound("start", "no template catalog configured")
	}
	tpl, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}
	return s.Start(ctx, tpl)
}

// Start copies tpl into a new active session. If a session of the same template
// is already active it is returned as is; a session of another template is a
// Conflict until it is discarded or finished.
//
// On a Persistence error the session is still started and returned.
func (s *Service) Start(ctx context.Context, tpl models.Template) (*models.Session, error) {
	if err := tpl.Validate(); err != nil {
		return nil, err
	}

	history, err := s.history.List(ctx)
	if err != nil {
		s.log.Warn("loading history for previous performance failed", "error", err)
		history = nil
	}

	s.mu.Lock()
	if s.active != nil {
		defer s.mu.Unlock()
		if s.active.TemplateID == tpl.ID {
			return s.active.Clone(), nil
		}
		return nil, apperr.Conflict("start", "a session of template %q is active; discard or finish it first", s.active.TemplateID)
	}

	now := s.clock.Now()
	session := &models.Session{
		ID:         s.ids.NewID(),
		TemplateID: tpl.ID,
		Date:       now.UTC().Format(isoMillis),
		StartTime:  clock.Millis(now),
		Exercises:  buildExercises(tpl.Exercises, s.defaultRest),
	}
	fillPrevious(session.Exercises, history)

	s.setActive(session)
	perr := s.persistLocked(ctx)
	out := session.Clone()
	s.mu.Unlock()

	s.log.Info("workout started", "session", out.ID, "template", tpl.ID, "exercises", len(out.Exercises))
	if s.metrics != nil {
		s.metrics.CounterSessions.WithLabelValues("started").Inc()
	}
	s.fireMutated(out)
	return out, perr
}

// Resume returns the active session. After a restart it is reloaded from the store.
func (s *Service) Resume(ctx context.Context) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return s.active.Clone(), nil
	}
	cur, err := s.loadPersisted(ctx)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, apperr.NotFound("resume", "no active session")
	}
	s.setActive(cur)
	return cur.Clone(), nil
}

// Restore overwrites stored data from a backup and adopts the backup's unfinished
// session, if any, as the active one. It is a Conflict while a session is active.
func (s *Service) Restore(ctx context.Context, b *models.Backup) (*models.Session, error) {
	s.mu.Lock()
	if s.active != nil {
		defer s.mu.Unlock()
		return nil, apperr.Conflict("import", "finish or discard the active session first")
	}
	if err := s.snaps.Import(ctx, b); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.timers.Reset()
	cur, err := s.loadPersisted(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.setActive(cur)
	s.mu.Unlock()

	if cur == nil {
		return nil, nil
	}
	s.log.Info("restored active workout", "session", cur.ID, "template", cur.TemplateID)
	out := cur.Clone()
	s.fireMutated(out)
	return out, nil
}

// loadPersisted returns the stored unfinished session. A stored session that is
// already in history was finished by a run that failed to clear the slot; the
// slot is cleared and nil returned.
func (s *Service) loadPersisted(ctx context.Context) (*models.Session, error) {
	cur, err := s.snaps.CurrentWorkout(ctx)
	if err != nil {
		return nil, err
	}
	if cur == nil || cur.Finished() {
		return nil, nil
	}
	done, err := s.history.Contains(ctx, cur.ID)
	if err != nil {
		return nil, err
	}
	if !done {
		return cur, nil
	}
	s.log.Info("stored workout already in history, clearing it", "session", cur.ID)
	if err := s.snaps.SaveCurrentWorkout(ctx, nil); err != nil {
		s.log.Warn("clearing finished workout failed", "session", cur.ID, "error", err)
	}
	return nil, nil
}

// Mutate applies m to the active session identified by sessionID. A rejected
// mutation leaves the session untouched. On a Persistence error the mutation is
// kept in memory and the updated session is returned along with the error.
func (s *Service) Mutate(ctx context.Context, sessionID string, m Mutation) (*models.Session, error) {
	if m == nil {
		return nil, apperr.Validation("mutate", "no mutation given")
	}
	s.mu.Lock()
	if s.active == nil || s.active.ID != sessionID {
		s.mu.Unlock()
		s.countMutation(m, "rejected")
		return nil, apperr.NotFound(m.Name(), "session %q is not active", sessionID)
	}

	c := &mutationCtx{
		session:     s.active.Clone(),
		newID:       s.ids.NewID,
		defaultRest: s.defaultRest,
	}
	if err := m.apply(c); err != nil {
		s.mu.Unlock()
		s.countMutation(m, "rejected")
		return nil, err
	}

	s.setActive(c.session)
	s.applyTimerEffects(c)
	perr := s.persistLocked(ctx)
	out := c.session.Clone()
	s.mu.Unlock()

	s.countMutation(m, "ok")
	s.fireMutated(out)
	return out, perr
}

// StartRestTimer restarts the countdown of an existing rest period using the
// duration configured on the session.
func (s *Service) StartRestTimer(sessionID string, key timer.Key) error {
	const op = "startRestTimer"
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil || s.active.ID != sessionID {
		return apperr.NotFound(op, "session %q is not active", sessionID)
	}
	if !key.Valid() || key.Exercise >= len(s.active.Exercises) {
		return apperr.NotFound(op, "timer %s does not match an exercise", key)
	}
	ex := s.active.Exercises[key.Exercise]
	if key.Last {
		return s.timers.StartRest(key, models.RestTimeOr(ex.RestAfterLastSet, s.defaultRest))
	}
	if key.Set >= len(ex.Sets) {
		return apperr.NotFound(op, "timer %s does not match a set", key)
	}
	return s.timers.StartRest(key, models.RestTimeOr(ex.Sets[key.Set].RestTime, s.defaultRest))
}

// Pause writes the current state without changing it.
func (s *Service) Pause(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return apperr.NotFound("pause", "no active session")
	}
	return s.persistLocked(ctx)
}

// Finish stamps the session's end, appends it to history, clears the active slot
// and cancels every rest timer. If history cannot be written the session stays active.
func (s *Service) Finish(ctx context.Context, sessionID string) (*models.Session, error) {
	const op = "finish"
	s.mu.Lock()
	if s.active == nil {
		s.mu.Unlock()
		return nil, apperr.Validation(op, "no active session to finish")
	}
	if s.active.ID != sessionID {
		s.mu.Unlock()
		return nil, apperr.NotFound(op, "session %q is not active", sessionID)
	}

	done := s.active.Clone()
	now := s.clock.Now()
	end := clock.Millis(now)
	minutes := int((end - done.StartTime) / 60000)
	if minutes < 0 {
		minutes = 0
	}
	done.EndTime = &end
	done.Duration = &minutes

	if err := s.history.Append(ctx, *done); err != nil {
		s.mu.Unlock()
		s.countPersistenceError()
		s.log.Warn("append to history failed, session kept active", "session", sessionID, "error", err)
		return nil, err
	}

	s.setActive(nil)
	s.timers.Reset()
	perr := s.persistLocked(ctx)
	s.mu.Unlock()

	s.log.Info("workout finished", "session", done.ID, "duration_min", minutes)
	if s.metrics != nil {
		s.metrics.CounterSessions.WithLabelValues("finished").Inc()
	}
	if s.hooks.OnSessionFinished != nil {
		s.hooks.OnSessionFinished(*done.Clone())
	}
	return done, perr
}

// Discard drops the active session without writing history. With no active
// session it returns NotFound and touches nothing.
func (s *Service) Discard(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return apperr.NotFound("discard", "no active session")
	}
	id := s.active.ID
	s.setActive(nil)
	s.timers.Reset()
	s.log.Info("workout discarded", "session", id)
	if s.metrics != nil {
		s.metrics.CounterSessions.WithLabelValues("discarded").Inc()
	}
	return s.persistLocked(ctx)
}

func (s *Service) setActive(session *models.Session) {
	s.active = session
	if session == nil {
		s.current.Store(nil)
	} else {
		s.current.Store(session.Clone())
	}
	if s.metrics != nil {
		if session == nil {
			s.metrics.GaugeActiveSession.Set(0)
		} else {
			s.metrics.GaugeActiveSession.Set(1)
		}
	}
}

func (s *Service) persistLocked(ctx context.Context) error {
	if err := s.snaps.SaveCurrentWorkout(ctx, s.active); err != nil {
		s.countPersistenceError()
		s.log.Warn("persist current workout failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) applyTimerEffects(c *mutationCtx) {
	if c.rekey != nil {
		s.timers.Rekey(c.rekey)
	}
	for key, value := range c.durations {
		if err := s.timers.EditDuration(key, value); err != nil {
			s.log.Warn("edit timer duration failed", "timer", key.String(), "error", err)
		}
	}
	if c.startTimer != nil {
		if err := s.timers.StartRest(c.startTimer.key, c.startTimer.restTime); err != nil {
			s.log.Warn("start rest timer failed", "timer", c.startTimer.key.String(), "error", err)
		}
	}
}

func (s *Service) onTimerEvent(ev timer.Event) {
	if s.metrics != nil {
		s.metrics.CounterTimerEvents.WithLabelValues(ev.Kind.String()).Inc()
	}
	if ev.Kind != timer.EventComplete {
		return
	}
	cur := s.current.Load()
	if cur == nil {
		return
	}

	ctx := context.Background()
	settings, err := s.snaps.Settings(ctx)
	if err != nil {
		s.log.Warn("reading notification setting failed", "error", err)
		return
	}
	if !settings.Notifications {
		return
	}
	n := notify.RestComplete{SessionID: cur.ID, Timer: ev.Key.String()}
	if ev.Key.Exercise < len(cur.Exercises) {
		n.Exercise = cur.Exercises[ev.Key.Exercise].Name
	}
	if err := s.notifier.NotifyRestComplete(ctx, n); err != nil {
		s.log.Warn("rest notification failed", "error", err)
	}
}

func (s *Service) fireMutated(session *models.Session) {
	if s.hooks.OnSessionMutated != nil {
		s.hooks.OnSessionMutated(*session.Clone())
	}
}

func (s *Service) countMutation(m Mutation, result string) {
	if s.metrics != nil {
		s.metrics.CounterMutations.WithLabelValues(m.Name(), result).Inc()
	}
}

func (s *Service) countPersistenceError() {
	if s.metrics != nil {
		s.metrics.CounterPersistenceErrors.Inc()
	}
}
