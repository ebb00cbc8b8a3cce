package stats

import (
	"time"

	"github.com/claude/liftlog/internal/models"
)

// OtherMuscle names exercises without a muscle group.
const OtherMuscle = "Other"

// MuscleNamer resolves a muscle-group id to its display name.
type MuscleNamer interface {
	NameFor(muscleID string) string
}

// MuscleDistribution counts, for each muscle group, how many sessions trained it.
// A muscle hit by several exercises of one session is counted once.
func MuscleDistribution(history []models.Session, namer MuscleNamer) map[string]int {
	out := make(map[string]int)
	for _, s := range history {
		for name := range sessionMuscles(s, namer) {
			out[name]++
		}
	}
	return out
}

func sessionMuscles(s models.Session, namer MuscleNamer) map[string]struct{} {
	seen := make(map[string]struct{})
	for _, ex := range s.Exercises {
		name := OtherMuscle
		if ex.Muscle != "" {
			name = ex.Muscle
			if namer != nil {
				name = namer.NameFor(ex.Muscle)
			}
		}
		seen[name] = struct{}{}
	}
	return seen
}

// WorkoutFrequency counts sessions per weekday (index 0 is Sunday) in loc.
func WorkoutFrequency(history []models.Session, loc *time.Location) [7]int {
	var out [7]int
	if loc == nil {
		loc = time.Local
	}
	for _, s := range history {
		out[SessionTime(s).In(loc).Weekday()]++
	}
	return out
}

// Summary describes the current calendar week.
type Summary struct {
	Workouts        int            `json:"workouts"`
	TotalDuration   int            `json:"totalDuration"` // minutes
	TotalVolume     float64        `json:"totalVolume"`
	AverageDuration int            `json:"averageDuration"`
	Muscles         map[string]int `json:"muscles"`
}

// WeeklySummary aggregates the sessions started in the week containing now.
func WeeklySummary(history []models.Session, namer MuscleNamer, now time.Time) Summary {
	start := WeekStart(now)
	end := start.AddDate(0, 0, 7)
	sum := Summary{Muscles: make(map[string]int)}
	for _, s := range history {
		t := SessionTime(s).In(now.Location())
		if t.Before(start) || !t.Before(end) {
			continue
		}
		sum.Workouts++
		if s.Duration != nil {
			sum.TotalDuration += *s.Duration
		}
		sum.TotalVolume += SessionVolume(s)
		for name := range sessionMuscles(s, namer) {
			sum.Muscles[name]++
		}
	}
	if sum.Workouts > 0 {
		sum.AverageDuration = int(roundHalfUp(float64(sum.TotalDuration) / float64(sum.Workouts)))
	}
	sum.TotalVolume = roundHalfUp(sum.TotalVolume)
	return sum
}
