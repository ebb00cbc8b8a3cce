// Package report assembles the statistics views served over HTTP and MCP.
package report

import (
	"context"
	"slices"
	"time"

	"github.com/claude/liftlog/internal/clock"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/stats"
)

type HistorySource interface {
	List(ctx context.Context) ([]models.Session, error)
}

// CurrentSource returns the in-progress session, or nil.
type CurrentSource interface {
	CurrentWorkout(ctx context.Context) (*models.Session, error)
}

type Options struct {
	History       HistorySource
	Current       CurrentSource // optional
	Namer         stats.MuscleNamer
	Clock         clock.Clock
	Location      *time.Location
	Weeks         int
	ForecastWeeks int
}

type Reporter struct {
	history       HistorySource
	current       CurrentSource
	namer         stats.MuscleNamer
	clock         clock.Clock
	loc           *time.Location
	weeks         int
	forecastWeeks int
}

func New(opts Options) *Reporter {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Weeks <= 0 {
		opts.Weeks = 12
	}
	if opts.ForecastWeeks <= 0 {
		opts.ForecastWeeks = 6
	}
	return &Reporter{
		history:       opts.History,
		current:       opts.Current,
		namer:         opts.Namer,
		clock:         opts.Clock,
		loc:           opts.Location,
		weeks:         opts.Weeks,
		forecastWeeks: opts.ForecastWeeks,
	}
}

type Overview struct {
	TotalWorkouts int            `json:"totalWorkouts"`
	TotalVolume   float64        `json:"totalVolume"`
	ThisWeek      stats.Summary  `json:"thisWeek"`
	Frequency     [7]int         `json:"frequency"` // Sunday first
	Muscles       map[string]int `json:"muscleDistribution"`
	Active        bool           `json:"active"`
}

func (r *Reporter) Overview(ctx context.Context) (*Overview, error) {
	history, err := r.history.List(ctx)
	if err != nil {
		return nil, err
	}
	o := &Overview{
		TotalWorkouts: len(history),
		TotalVolume:   stats.TotalVolume(history),
		ThisWeek:      stats.WeeklySummary(history, r.namer, r.clock.Now()),
		Frequency:     stats.WorkoutFrequency(history, r.loc),
		Muscles:       stats.MuscleDistribution(history, r.namer),
	}
	if r.current != nil {
		cur, err := r.current.CurrentWorkout(ctx)
		if err != nil {
			return nil, err
		}
		o.Active = cur != nil && !cur.Finished()
	}
	return o, nil
}

type VolumeReport struct {
	Weeks    []stats.Point  `json:"weeks"`
	Forecast stats.Forecast `json:"forecast"`
}

// Volume returns the weekly volume series and its projection. weeksAhead <= 0
// uses the configured forecast length.
func (r *Reporter) Volume(ctx context.Context, weeksAhead int) (*VolumeReport, error) {
	history, err := r.history.List(ctx)
	if err != nil {
		return nil, err
	}
	if weeksAhead <= 0 {
		weeksAhead = r.forecastWeeks
	}
	series := stats.WeeklyVolumeSeries(history, r.weeks, r.clock.Now())
	return &VolumeReport{
		Weeks:    series,
		Forecast: stats.ForecastValues(stats.Values(series), weeksAhead),
	}, nil
}

type ExerciseReport struct {
	ID            string            `json:"id"`
	Name          string            `json:"name,omitempty"`
	Record        stats.Record      `json:"record"`
	BestOneRepMax float64           `json:"bestOneRepMax"`
	MaxWeight     []stats.XY        `json:"maxWeight"`
	TotalVolume   []stats.XY        `json:"totalVolume"`
	Progression   stats.Progression `json:"progression"`
}

// Exercise reports one exercise across history. An exercise that never appears
// yields an empty report with Record.Found unset.
func (r *Reporter) Exercise(ctx context.Context, exerciseID string, weeksAhead int) (*ExerciseReport, error) {
	history, err := r.history.List(ctx)
	if err != nil {
		return nil, err
	}
	if weeksAhead <= 0 {
		weeksAhead = r.forecastWeeks
	}
	maxWeight := stats.ExerciseHistory(history, exerciseID, stats.MetricMaxWeight)
	return &ExerciseReport{
		ID:            exerciseID,
		Name:          exerciseName(history, exerciseID),
		Record:        stats.PersonalRecord(history, exerciseID),
		BestOneRepMax: stats.BestOneRepMax(history, exerciseID),
		MaxWeight:     maxWeight,
		TotalVolume:   stats.ExerciseHistory(history, exerciseID, stats.MetricTotalVolume),
		Progression:   stats.ProgressionForecast(maxWeight, weeksAhead),
	}, nil
}

// RecentSessions returns up to limit completed sessions, newest first.
func (r *Reporter) RecentSessions(ctx context.Context, limit int) ([]models.Session, error) {
	history, err := r.history.List(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	out := slices.Clone(history)
	slices.SortStableFunc(out, func(a, b models.Session) int {
		return stats.SessionTime(b).Compare(stats.SessionTime(a))
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CurrentWorkout passes through to the configured source.
func (r *Reporter) CurrentWorkout(ctx context.Context) (*models.Session, error) {
	if r.current == nil {
		return nil, nil
	}
	return r.current.CurrentWorkout(ctx)
}

func exerciseName(history []models.Session, id string) string {
	for i := len(history) - 1; i >= 0; i-- {
		for _, ex := range history[i].Exercises {
			if ex.ID == id {
				return ex.Name
			}
		}
	}
	return ""
}
