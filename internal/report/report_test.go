package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/clock"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

type sliceHistory []models.Session

func (h sliceHistory) List(context.Context) ([]models.Session, error) { return h, nil }

type failingHistory struct{}

func (failingHistory) List(context.Context) ([]models.Session, error) {
	return nil, errors.New("boom")
}

type fixedCurrent struct{ s *models.Session }

func (f fixedCurrent) CurrentWorkout(context.Context) (*models.Session, error) { return f.s, nil }

// now is a Wednesday.
var now = time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

func finished(id string, at time.Time, weight float64) models.Session {
	end := at.Add(45 * time.Minute).UnixMilli()
	dur := 45
	return models.Session{
		ID:        id,
		Date:      at.Format(time.RFC3339Nano),
		StartTime: at.UnixMilli(),
		EndTime:   &end,
		Duration:  &dur,
		Exercises: []models.SessionExercise{{
			ID:     "bench",
			Name:   "Bench Press",
			Muscle: "chest",
			Sets: []models.SessionSet{
				{Weight: weight, Reps: 5, Completed: true},
				{Weight: weight - 10, Reps: 8, Completed: true},
			},
		}},
	}
}

func newReporter(history HistorySource, current CurrentSource) *Reporter {
	return New(Options{
		History:       history,
		Current:       current,
		Namer:         catalog.NewExercises(storage.NewSnapshots(storage.NewMemory())),
		Clock:         clock.NewFake(now),
		Weeks:         4,
		ForecastWeeks: 2,
	})
}

func sampleHistory() sliceHistory {
	return sliceHistory{
		finished("a", now.AddDate(0, 0, -21), 80),
		finished("b", now.AddDate(0, 0, -14), 85),
		finished("c", now.AddDate(0, 0, -7), 90),
		finished("d", now.Add(-time.Hour), 95),
	}
}

func TestOverview(t *testing.T) {
	active := &models.Session{ID: "live"}
	o, err := newReporter(sampleHistory(), fixedCurrent{active}).Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, o.TotalWorkouts)
	// 400+560, 425+600, 450+640, 475+680
	assert.Equal(t, 4230.0, o.TotalVolume)
	assert.Equal(t, 1, o.ThisWeek.Workouts)
	assert.Equal(t, map[string]int{"Chest": 4}, o.Muscles)
	assert.Equal(t, 4, o.Frequency[time.Wednesday])
	assert.True(t, o.Active)
}

func TestVolume(t *testing.T) {
	v, err := newReporter(sampleHistory(), nil).Volume(context.Background(), 0)
	require.NoError(t, err)

	require.Len(t, v.Weeks, 4)
	assert.Equal(t, []float64{960, 1025, 1090, 1155}, []float64{v.Weeks[0].Value, v.Weeks[1].Value, v.Weeks[2].Value, v.Weeks[3].Value})
	require.Len(t, v.Forecast.Points, 2, "default forecast length")
	assert.Equal(t, 1220.0, v.Forecast.Points[0].Predicted)
	assert.Equal(t, 1285.0, v.Forecast.Points[1].Predicted)
}

func TestExercise(t *testing.T) {
	e, err := newReporter(sampleHistory(), nil).Exercise(context.Background(), "bench", 1)
	require.NoError(t, err)

	assert.Equal(t, "Bench Press", e.Name)
	assert.True(t, e.Record.Found)
	assert.Equal(t, 95.0, e.Record.MaxWeight)
	require.Len(t, e.MaxWeight, 4)
	assert.Equal(t, 95.0, e.MaxWeight[3].Y)
	require.Len(t, e.Progression.Weeks, 1)
	assert.Equal(t, 98.8, e.Progression.Weeks[0].Weight, "capped at four percent over the last weight")

	empty, err := newReporter(sampleHistory(), nil).Exercise(context.Background(), "squat", 1)
	require.NoError(t, err)
	assert.False(t, empty.Record.Found)
	assert.True(t, empty.Progression.Insufficient)
}

func TestRecentSessions(t *testing.T) {
	r := newReporter(sampleHistory(), nil)
	recent, err := r.RecentSessions(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "d", recent[0].ID)
	assert.Equal(t, "c", recent[1].ID)

	cur, err := r.CurrentWorkout(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestHistoryErrorsPropagate(t *testing.T) {
	r := newReporter(failingHistory{}, nil)
	_, err := r.Overview(context.Background())
	assert.Error(t, err)
	_, err = r.Volume(context.Background(), 1)
	assert.Error(t, err)
	_, err = r.Exercise(context.Background(), "bench", 1)
	assert.Error(t, err)
	_, err = r.RecentSessions(context.Background(), 1)
	assert.Error(t, err)
}
