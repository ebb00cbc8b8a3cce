// Package stats derives aggregates from completed sessions. Every function is
// pure: inputs are never mutated and no function panics or returns NaN.
package stats

import (
	"strconv"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// SessionVolume sums weight*reps over every set of s. Sets missing either value add 0.
func SessionVolume(s models.Session) float64 {
	var total float64
	for _, ex := range s.Exercises {
		for _, set := range ex.Sets {
			total += set.Volume()
		}
	}
	return total
}

func TotalVolume(history []models.Session) float64 {
	var total float64
	for _, s := range history {
		total += SessionVolume(s)
	}
	return total
}

// SessionTime is when s was started: its ISO date, falling back to startTime.
func SessionTime(s models.Session) time.Time {
	if s.Date != "" {
		if t, err := time.Parse(time.RFC3339Nano, s.Date); err == nil {
			return t
		}
	}
	return time.UnixMilli(s.StartTime)
}

// WeekStart returns Sunday 00:00 of the week containing t, in t's location.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// Point is one labelled value of a series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// WeeklyVolumeSeries buckets the last weeks calendar weeks (Sunday to Saturday in
// now's location) oldest first, labelled "Week 1".."Week N". Values are rounded.
func WeeklyVolumeSeries(history []models.Session, weeks int, now time.Time) []Point {
	if weeks <= 0 {
		return []Point{}
	}
	loc := now.Location()
	current := WeekStart(now)
	out := make([]Point, weeks)
	starts := make([]time.Time, weeks)
	for i := range weeks {
		starts[i] = current.AddDate(0, 0, -7*(weeks-1-i))
		out[i] = Point{Label: "Week " + strconv.Itoa(i+1)}
	}
	end := current.AddDate(0, 0, 7)

	for _, s := range history {
		t := SessionTime(s).In(loc)
		if t.Before(starts[0]) || !t.Before(end) {
			continue
		}
		for i := weeks - 1; i >= 0; i-- {
			if !t.Before(starts[i]) {
				out[i].Value += SessionVolume(s)
				break
			}
		}
	}
	for i := range out {
		out[i].Value = roundHalfUp(out[i].Value)
	}
	return out
}

// Values extracts the numbers of a series.
func Values(series []Point) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Value
	}
	return out
}
