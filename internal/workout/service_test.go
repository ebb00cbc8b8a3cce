package workout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/claude/liftlog/internal/apperr"
	"github.com/claude/liftlog/internal/clock"
	"github.com/claude/liftlog/internal/ids"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/notify"
	"github.com/claude/liftlog/internal/stats"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/timer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var start = time.Date(2026, 3, 3, 18, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	mem      *storage.Memory
	snaps    *storage.Snapshots
	timers   *timer.Engine
	clock    *clock.Fake
	notified []notify.RestComplete
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{mem: storage.NewMemory(), clock: clock.NewFake(start)}
	f.snaps = storage.NewSnapshots(f.mem)
	f.timers = timer.New(f.clock, timer.Config{})
	f.svc = f.open(t)
	return f
}

// open builds a service over the fixture's store, as a restarted process would.
func (f *fixture) open(t *testing.T, edits ...func(*Options)) *Service {
	t.Helper()
	opts := Options{
		Snapshots: f.snaps,
		Timers:    f.timers,
		Clock:     f.clock,
		IDs:       ids.NewSequence("id"),
		Notifier: notify.Func(func(_ context.Context, n notify.RestComplete) error {
			f.notified = append(f.notified, n)
			return nil
		}),
		Metrics: metrics.NewTestManager(),
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, edit := range edits {
		edit(&opts)
	}
	svc, err := New(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

// keyFailStore fails saves of a single key while err is set.
type keyFailStore struct {
	storage.Store
	key string
	err error
}

func (s *keyFailStore) Save(ctx context.Context, key string, value []byte) error {
	if key == s.key && s.err != nil {
		return s.err
	}
	return s.Store.Save(ctx, key, value)
}

func fptr(v float64) *float64 { return &v }

// benchTemplate has one exercise with three 50kg x 10 sets.
func benchTemplate() models.Template {
	sets := []models.SetPlan{
		{TargetReps: models.Reps(10), TargetWeight: fptr(50), RestTime: "1:30"},
		{TargetReps: models.Reps(10), TargetWeight: fptr(50), RestTime: "1:45"},
		{TargetReps: models.Reps(10), TargetWeight: fptr(50), RestTime: "2:00"},
	}
	return models.Template{
		ID:   "push",
		Name: "Push",
		Exercises: []models.ExercisePlan{
			{ID: "bench", Name: "Bench Press", Muscle: "chest", Unit: models.UnitKg, RestAfterLastSet: "3:00", Sets: sets},
			{ID: "fly", Name: "Cable Fly", Muscle: "chest", Sets: []models.SetPlan{{TargetReps: models.RepRange("12-15")}}},
			{ID: "dip", Name: "Dips", Muscle: "arms", Unit: models.UnitReps, Sets: []models.SetPlan{{}}},
		},
	}
}

func (f *fixture) start(t *testing.T) *models.Session {
	t.Helper()
	s, err := f.svc.Start(context.Background(), benchTemplate())
	require.NoError(t, err)
	return s
}

func (f *fixture) mutate(t *testing.T, id string, m Mutation) *models.Session {
	t.Helper()
	s, err := f.svc.Mutate(context.Background(), id, m)
	require.NoError(t, err)
	return s
}

func TestStartSeedsFromTemplate(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)

	assert.Equal(t, "id-1", s.ID)
	assert.Equal(t, "push", s.TemplateID)
	assert.Equal(t, start.UnixMilli(), s.StartTime)
	assert.Equal(t, "2026-03-03T18:00:00.000Z", s.Date)
	assert.Nil(t, s.EndTime)
	require.Len(t, s.Exercises, 3)

	bench := s.Exercises[0]
	assert.Equal(t, "3:00", bench.RestAfterLastSet)
	for _, set := range bench.Sets {
		assert.Equal(t, 50.0, set.Weight)
		assert.Equal(t, 10.0, set.Reps)
		assert.False(t, set.Completed)
	}
	assert.Equal(t, "1:45", bench.Sets[1].RestTime)

	fly := s.Exercises[1]
	assert.Equal(t, models.DefaultRestTime, fly.RestAfterLastSet)
	assert.Equal(t, models.UnitKg, fly.Unit)
	assert.Equal(t, 0.0, fly.Sets[0].Weight)
	assert.Equal(t, 12.0, fly.Sets[0].Reps)
	assert.Equal(t, models.DefaultRestTime, fly.Sets[0].RestTime)

	assert.Equal(t, 0.0, s.Exercises[2].Sets[0].Reps)

	persisted, err := f.snaps.CurrentWorkout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, s, persisted)
}

func TestStartConflicts(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)

	again, err := f.svc.Start(context.Background(), benchTemplate())
	require.NoError(t, err)
	assert.Equal(t, s.ID, again.ID, "same template resumes the active session")

	other := models.Template{ID: "legs", Name: "Legs"}
	_, err = f.svc.Start(context.Background(), other)
	assert.True(t, apperr.IsConflict(err))

	require.NoError(t, f.svc.Discard(context.Background()))
	s2, err := f.svc.Start(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, "legs", s2.TemplateID)
}

func TestStartRejectsInvalidTemplate(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Start(context.Background(), models.Template{ID: "x"})
	assert.True(t, apperr.IsValidation(err))
	assert.False(t, f.svc.HasActiveSession())
}

// TestCompletingSetsMovesTheRestTimer: completing set 1 starts (0,1); completing
// set 2 replaces it with (0,2).
func TestCompletingSetsMovesTheRestTimer(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)

	s = f.mutate(t, s.ID, ToggleSetComplete{Exercise: 0, Set: 0})
	assert.True(t, s.Exercises[0].Sets[0].Completed)
	st := f.timers.State(timer.SetKey(0, 1))
	require.True(t, st.Running)
	assert.Equal(t, 105, st.Total, "uses the following set's rest time")

	f.mutate(t, s.ID, ToggleSetComplete{Exercise: 0, Set: 1})
	assert.False(t, f.timers.State(timer.SetKey(0, 1)).Running)
	st = f.timers.State(timer.SetKey(0, 2))
	require.True(t, st.Running)
	assert.Equal(t, 120, st.Total)

	f.mutate(t, s.ID, ToggleSetComplete{Exercise: 0, Set: 2})
	st = f.timers.State(timer.LastKey(0))
	require.True(t, st.Running)
	assert.Equal(t, 180, st.Total)

	// Un-completing does not touch timers.
	s = f.mutate(t, s.ID, ToggleSetComplete{Exercise: 0, Set: 2})
	assert.False(t, s.Exercises[0].Sets[2].Completed)
	assert.True(t, f.timers.State(timer.LastKey(0)).Running)
}

// TestFinishComputesVolumeAndDuration: sets 50x10 and 60x8 give 980.
func TestFinishComputesVolumeAndDuration(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)
	f.mutate(t, s.ID, RemoveSet{Exercise: 0, Set: 2})
	f.mutate(t, s.ID, UpdateSet{Exercise: 0, Set: 1, Field: FieldWeight, Value: 60})
	f.mutate(t, s.ID, UpdateSet{Exercise: 0, Set: 1, Field: FieldReps, Value: 8})
	f.mutate(t, s.ID, RemoveExercise{Exercise: 2})
	f.mutate(t, s.ID, RemoveExercise{Exercise: 1})
	f.mutate(t, s.ID, ToggleSetComplete{Exercise: 0, Set: 0})

	var finished []models.Session
	f.svc.hooks.OnSessionFinished = func(s models.Session) { finished = append(finished, s) }

	f.clock.Advance(47*time.Minute + 59*time.Second)
	done, err := f.svc.Finish(context.Background(), s.ID)
	require.NoError(t, err)

	assert.Equal(t, 980.0, stats.SessionVolume(*done))
	require.NotNil(t, done.Duration)
	assert.Equal(t, 47, *done.Duration)
	require.NotNil(t, done.EndTime)
	assert.Equal(t, start.Add(47*time.Minute+59*time.Second).UnixMilli(), *done.EndTime)

	assert.False(t, f.svc.HasActiveSession())
	_, running := f.timers.Active()
	assert.False(t, running, "finish cancels rest timers")

	history, err := f.svc.History().List(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, *done, history[0])
	assert.Len(t, finished, 1)

	cur, err := f.snaps.CurrentWorkout(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cur)

	_, err = f.svc.Finish(context.Background(), s.ID)
	assert.True(t, apperr.IsValidation(err))
}

// TestDiscardWithoutSessionLeavesStoreAlone: NotFound and no write.
func TestDiscardWithoutSessionLeavesStoreAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.mem.Save(ctx, storage.KeyCurrentWorkout, []byte(`{"id":"old","endTime":1}`)))
	before := f.mem.SaveCalls()

	err := f.svc.Discard(ctx)
	assert.True(t, apperr.IsNotFound(err))
	assert.Equal(t, before, f.mem.SaveCalls())

	raw, err := f.mem.Load(ctx, storage.KeyCurrentWorkout)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"old","endTime":1}`, string(raw))
}

func TestDiscardClearsSessionAndTimers(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)
	f.mutate(t, s.ID, ToggleSetComplete{Exercise: 0, Set: 0})

	require.NoError(t, f.svc.Discard(context.Background()))
	assert.False(t, f.svc.HasActiveSession())
	_, running := f.timers.Active()
	assert.False(t, running)

	history, err := f.svc.History().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = f.svc.Resume(context.Background())
	assert.True(t, apperr.IsNotFound(err))
}

// TestReloadMatchesMemoryAfterEveryMutation replays a sequence and reloads after each step.
func TestReloadMatchesMemoryAfterEveryMutation(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)
	one := 1
	steps := []Mutation{
		UpdateSet{Exercise: 0, Set: 0, Field: FieldWeight, Value: 52.5},
		ToggleSetComplete{Exercise: 0, Set: 0},
		AddSet{Exercise: 1},
		AddWarmupSet{Exercise: 0, Reps: 8, Weight: 20},
		SetExerciseNote{Exercise: 0, Text: "elbows tucked"},
		SetStickyNote{Exercise: 1, Text: "seat 4"},
		SetRestTime{Exercise: 0, Set: &one, Value: "2:30"},
		SetRestTime{Exercise: 1, Value: "0:45"},
		UpdateRestTimers{Exercise: 2, Value: "1:15"},
		ChangeUnit{Exercise: 0, Unit: models.UnitLb},
		CreateSuperset{A: 1, B: 2},
		ReplaceExercise{Exercise: 2, Plan: models.ExercisePlan{ID: "pushdown", Name: "Pushdown", Muscle: "arms"}},
		RemoveSet{Exercise: 1, Set: 0},
		RemoveExercise{Exercise: 0},
	}
	for i, m := range steps {
		mem := f.mutate(t, s.ID, m)

		reloaded, err := f.open(t).Resume(context.Background())
		require.NoError(t, err, "step %d %s", i, m.Name())
		assert.Equal(t, mem, reloaded, "step %d %s", i, m.Name())
	}
}

func TestMutateRejectionsLeaveStateUnchanged(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)
	ctx := context.Background()
	five := 5

	cases := []struct {
		m    Mutation
		kind apperr.Kind
	}{
		{UpdateSet{Exercise: 0, Set: 0, Field: FieldWeight, Value: -1}, apperr.KindValidation},
		{UpdateSet{Exercise: 0, Set: 0, Field: "tempo", Value: 1}, apperr.KindValidation},
		{UpdateSet{Exercise: 9, Set: 0, Field: FieldReps, Value: 1}, apperr.KindNotFound},
		{ToggleSetComplete{Exercise: 0, Set: 3}, apperr.KindNotFound},
		{AddWarmupSet{Exercise: 0, Reps: -2}, apperr.KindValidation},
		{RemoveSet{Exercise: 0, Set: -1}, apperr.KindNotFound},
		{SetRestTime{Exercise: 0, Set: &five, Value: "1:00"}, apperr.KindNotFound},
		{SetRestTime{Exercise: 0, Value: "90"}, apperr.KindValidation},
		{UpdateRestTimers{Exercise: 0, Value: "1:5"}, apperr.KindValidation},
		{ReplaceExercise{Exercise: 0, Plan: models.ExercisePlan{}}, apperr.KindValidation},
		{CreateSuperset{A: 1, B: 1}, apperr.KindValidation},
		{CreateSuperset{A: 0, B: 7}, apperr.KindNotFound},
		{ChangeUnit{Exercise: 0, Unit: "stone"}, apperr.KindValidation},
		{RemoveExercise{Exercise: 3}, apperr.KindNotFound},
	}
	for _, tc := range cases {
		_, err := f.svc.Mutate(ctx, s.ID, tc.m)
		require.Error(t, err, tc.m.Name())
		assert.Equal(t, tc.kind, apperr.KindOf(err), "%s: %v", tc.m.Name(), err)
		assert.NotEmpty(t, err.Error())
	}

	_, err := f.svc.Mutate(ctx, "stale-id", AddSet{Exercise: 0})
	assert.True(t, apperr.IsNotFound(err))

	cur, ok := f.svc.Active()
	require.True(t, ok)
	assert.Equal(t, s, cur)

	_, err = f.svc.Mutate(ctx, s.ID, nil)
	assert.True(t, apperr.IsValidation(err))
}

// TestChangeUnitConvertsWeights covers kg->lb->kg drift and non-weight units.
func TestChangeUnitConvertsWeights(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)

	s = f.mutate(t, s.ID, ChangeUnit{Exercise: 0, Unit: models.UnitLb})
	assert.Equal(t, models.UnitLb, s.Exercises[0].Unit)
	assert.Equal(t, 110.0, s.Exercises[0].Sets[0].Weight)
	assert.Equal(t, 110.0, s.Exercises[0].Sets[0].TargetWeight)

	s = f.mutate(t, s.ID, ChangeUnit{Exercise: 0, Unit: models.UnitKg})
	assert.Equal(t, 50.0, s.Exercises[0].Sets[0].Weight)

	s = f.mutate(t, s.ID, ChangeUnit{Exercise: 0, Unit: models.UnitSecond})
	assert.Equal(t, 50.0, s.Exercises[0].Sets[0].Weight)
	assert.Equal(t, models.UnitSecond, s.Exercises[0].Unit)
}

func TestAddWarmupSetShiftsTimers(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)
	f.mutate(t, s.ID, ToggleSetComplete{Exercise: 0, Set: 0})
	require.True(t, f.timers.State(timer.SetKey(0, 1)).Running)

	s = f.mutate(t, s.ID, AddWarmupSet{Exercise: 0, Reps: 10, Weight: 20})
	require.Len(t, s.Exercises[0].Sets, 4)
	warm := s.Exercises[0].Sets[0]
	assert.True(t, warm.IsWarmup)
	assert.Equal(t, 20.0, warm.Weight)
	assert.True(t, s.Exercises[0].Sets[1].Completed, "old first set moved to index 1")

	assert.False(t, f.timers.State(timer.SetKey(0, 1)).Running)
	assert.True(t, f.timers.State(timer.SetKey(0, 2)).Running)
}

func TestRemoveSetCancelsOrShiftsTimers(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)

	f.mutate(t, s.ID, ToggleSetComplete{Exercise: 0, Set: 1}) // starts (0,2)
	f.mutate(t, s.ID, RemoveSet{Exercise: 0, Set: 0})
	assert.True(t, f.timers.State(timer.SetKey(0, 1)).Running, "(0,2) shifted to (0,1)")

	f.mutate(t, s.ID, RemoveSet{Exercise: 0, Set: 1})
	_, running := f.timers.Active()
	assert.False(t, running, "the set the timer rested before is gone")
}

func TestRemoveExerciseRekeysTimers(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)

	f.mutate(t, s.ID, ToggleSetComplete{Exercise: 2, Set: 0}) // last-2
	s = f.mutate(t, s.ID, RemoveExercise{Exercise: 0})
	require.Len(t, s.Exercises, 2)
	assert.True(t, f.timers.State(timer.LastKey(1)).Running)

	f.mutate(t, s.ID, RemoveExercise{Exercise: 1})
	_, running := f.timers.Active()
	assert.False(t, running)
}

// TestCreateSupersetKeepsPairsExclusive re-pairs an exercise and unpairs its old partner.
func TestCreateSupersetKeepsPairsExclusive(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)

	s = f.mutate(t, s.ID, CreateSuperset{A: 0, B: 1})
	first := s.Exercises[0].SupersetID
	require.NotEmpty(t, first)
	assert.Equal(t, first, s.Exercises[1].SupersetID)

	s = f.mutate(t, s.ID, CreateSuperset{A: 1, B: 2})
	assert.Empty(t, s.Exercises[0].SupersetID)
	assert.NotEqual(t, first, s.Exercises[1].SupersetID)
	assert.Equal(t, s.Exercises[1].SupersetID, s.Exercises[2].SupersetID)
}

func TestSetRestTimeConfiguresTimer(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)
	two := 2

	s = f.mutate(t, s.ID, SetRestTime{Exercise: 0, Set: &two, Value: "2:30"})
	assert.Equal(t, "2:30", s.Exercises[0].Sets[2].RestTime)
	d, ok := f.timers.Duration(timer.SetKey(0, 2))
	require.True(t, ok)
	assert.Equal(t, 150, d)

	s = f.mutate(t, s.ID, SetRestTime{Exercise: 0, Value: "4:00"})
	assert.Equal(t, "4:00", s.Exercises[0].RestAfterLastSet)

	s = f.mutate(t, s.ID, UpdateRestTimers{Exercise: 1, Value: "0:30"})
	for _, set := range s.Exercises[1].Sets {
		assert.Equal(t, "0:30", set.RestTime)
	}
	assert.Equal(t, "0:30", s.Exercises[1].RestAfterLastSet)

	require.NoError(t, f.svc.StartRestTimer(s.ID, timer.SetKey(0, 2)))
	assert.Equal(t, 150, f.timers.State(timer.SetKey(0, 2)).Total)
	assert.True(t, apperr.IsNotFound(f.svc.StartRestTimer(s.ID, timer.SetKey(0, 9))))
	assert.True(t, apperr.IsNotFound(f.svc.StartRestTimer("nope", timer.LastKey(0))))
}

// TestPersistenceFailureKeepsWorkInMemory: the write fails, the edit survives.
func TestPersistenceFailureKeepsWorkInMemory(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)
	f.mem.FailWrites(errors.New("quota exceeded"))

	got, err := f.svc.Mutate(context.Background(), s.ID, UpdateSet{Exercise: 0, Set: 0, Field: FieldReps, Value: 12})
	assert.True(t, apperr.IsPersistence(err))
	require.NotNil(t, got)
	assert.Equal(t, 12.0, got.Exercises[0].Sets[0].Reps)

	cur, _ := f.svc.Active()
	assert.Equal(t, 12.0, cur.Exercises[0].Sets[0].Reps)

	// History cannot be written either, so finishing keeps the session active.
	_, err = f.svc.Finish(context.Background(), s.ID)
	assert.True(t, apperr.IsPersistence(err))
	assert.True(t, f.svc.HasActiveSession())

	f.mem.FailWrites(nil)
	assert.NoError(t, f.svc.Pause(context.Background()))
	persisted, err := f.snaps.CurrentWorkout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12.0, persisted.Exercises[0].Sets[0].Reps)
}

func TestRecoveryAfterRestart(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)
	f.mutate(t, s.ID, UpdateSet{Exercise: 0, Set: 0, Field: FieldWeight, Value: 55})

	restarted := f.open(t)
	assert.True(t, restarted.HasActiveSession())
	cur, ok := restarted.Active()
	require.True(t, ok)
	assert.Equal(t, 55.0, cur.Exercises[0].Sets[0].Weight)

	f.clock.Advance(90 * time.Second)
	elapsed, ok := restarted.Elapsed()
	require.True(t, ok)
	assert.Equal(t, 90*time.Second, elapsed)
}

// TestRestCompleteNotification honours the notifications setting.
func TestRestCompleteNotification(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)
	ctx := context.Background()

	f.mutate(t, s.ID, ToggleSetComplete{Exercise: 0, Set: 0})
	for range 105 {
		f.timers.Tick()
	}
	require.Len(t, f.notified, 1)
	assert.Equal(t, notify.RestComplete{SessionID: s.ID, Exercise: "Bench Press", Timer: "0-1"}, f.notified[0])

	require.NoError(t, f.snaps.SaveSettings(ctx, models.Settings{Notifications: false}))
	f.mutate(t, s.ID, ToggleSetComplete{Exercise: 0, Set: 1})
	for range 200 {
		f.timers.Tick()
	}
	assert.Len(t, f.notified, 1)
}

func TestPreviousPerformanceFromHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.start(t)
	f.mutate(t, s.ID, UpdateSet{Exercise: 0, Set: 0, Field: FieldWeight, Value: 62.5})
	f.mutate(t, s.ID, UpdateSet{Exercise: 0, Set: 0, Field: FieldReps, Value: 8})
	_, err := f.svc.Finish(ctx, s.ID)
	require.NoError(t, err)

	next := f.start(t)
	assert.Equal(t, "62.5 kg x 8", next.Exercises[0].Sets[0].Previous)
	assert.Equal(t, "50 kg x 10", next.Exercises[0].Sets[1].Previous)
	assert.Equal(t, "", next.Exercises[2].Sets[0].Previous, "no weight or reps recorded")
}

func TestStartTemplateUsesCatalog(t *testing.T) {
	f := newFixture(t)
	f.svc.templates = templateMap{"push": benchTemplate()}

	s, err := f.svc.StartTemplate(context.Background(), "push")
	require.NoError(t, err)
	assert.Equal(t, "push", s.TemplateID)

	require.NoError(t, f.svc.Discard(context.Background()))
	_, err = f.svc.StartTemplate(context.Background(), "missing")
	assert.True(t, apperr.IsNotFound(err))
}

type templateMap map[string]models.Template

func (m templateMap) Get(_ context.Context, id string) (models.Template, error) {
	t, ok := m[id]
	if !ok {
		return models.Template{}, apperr.NotFound("get template", "template %q does not exist", id)
	}
	return t, nil
}

// TestFinishedSessionIsNotRecoveredTwice: history was written but the active slot
// could not be cleared. A restart must not revive the session.
func TestFinishedSessionIsNotRecoveredTwice(t *testing.T) {
	ctx := context.Background()
	f := &fixture{mem: storage.NewMemory(), clock: clock.NewFake(start)}
	failing := &keyFailStore{Store: f.mem, key: storage.KeyCurrentWorkout}
	f.snaps = storage.NewSnapshots(failing)
	f.timers = timer.New(f.clock, timer.Config{})
	f.svc = f.open(t)

	s := f.start(t)
	failing.err = errors.New("quota exceeded")
	done, err := f.svc.Finish(ctx, s.ID)
	assert.True(t, apperr.IsPersistence(err))
	require.NotNil(t, done)
	assert.False(t, f.svc.HasActiveSession())

	failing.err = nil
	restarted := f.open(t)
	assert.False(t, restarted.HasActiveSession())
	stored, err := f.snaps.CurrentWorkout(ctx)
	require.NoError(t, err)
	assert.Nil(t, stored)

	_, err = restarted.Finish(ctx, s.ID)
	assert.True(t, apperr.IsValidation(err))
	_, err = restarted.Resume(ctx)
	assert.True(t, apperr.IsNotFound(err))

	history, err := f.snaps.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, s.ID, history[0].ID)
}

func TestRestoreAdoptsUnfinishedSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	imported := &models.Session{ID: "imported", TemplateID: "legs", StartTime: start.UnixMilli(), Exercises: []models.SessionExercise{}}

	got, err := f.svc.Restore(ctx, &models.Backup{CurrentWorkout: imported})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "imported", got.ID)
	assert.True(t, f.svc.HasActiveSession())

	_, err = f.svc.Start(ctx, benchTemplate())
	assert.True(t, apperr.IsConflict(err))
	stored, err := f.snaps.CurrentWorkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, "imported", stored.ID)

	_, err = f.svc.Restore(ctx, &models.Backup{})
	assert.True(t, apperr.IsConflict(err))
}

func TestRestoreSkipsSessionAlreadyInHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := models.Session{ID: "old", TemplateID: "push", StartTime: start.UnixMilli(), Exercises: []models.SessionExercise{}}

	got, err := f.svc.Restore(ctx, &models.Backup{WorkoutHistory: []models.Session{s}, CurrentWorkout: &s})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, f.svc.HasActiveSession())
	f.start(t)
}

// TestRestFallsBackToConfiguredDefault: sets without a rest time use the
// service's default, not the built-in one.
func TestRestFallsBackToConfiguredDefault(t *testing.T) {
	ctx := context.Background()
	f := &fixture{mem: storage.NewMemory(), clock: clock.NewFake(start)}
	f.snaps = storage.NewSnapshots(f.mem)
	f.timers = timer.New(f.clock, timer.Config{})
	f.svc = f.open(t, func(o *Options) { o.DefaultRest = "2:00" })

	bare := &models.Session{
		ID: "bare", TemplateID: "push", StartTime: start.UnixMilli(),
		Exercises: []models.SessionExercise{{ID: "bench", Name: "Bench Press", Sets: []models.SessionSet{{Reps: 5}, {Reps: 5}}}},
	}
	_, err := f.svc.Restore(ctx, &models.Backup{CurrentWorkout: bare})
	require.NoError(t, err)

	f.mutate(t, "bare", ToggleSetComplete{Exercise: 0, Set: 0})
	assert.Equal(t, 120, f.timers.State(timer.SetKey(0, 1)).Total)

	f.mutate(t, "bare", ToggleSetComplete{Exercise: 0, Set: 1})
	assert.Equal(t, 120, f.timers.State(timer.LastKey(0)).Total)

	require.NoError(t, f.svc.StartRestTimer("bare", timer.SetKey(0, 1)))
	assert.Equal(t, 120, f.timers.State(timer.SetKey(0, 1)).Total)
}
