package alpha

import (
	"strings"
	"time"

	"github.com/claude/liftlog/internal/ids"
	"github.com/claude/liftlog/internal/models"
)

// TemplatePrefix marks template ids of imported sessions.
const TemplatePrefix = "alpha:"

// ToSession turns a parsed workout into a completed session. Every imported set
// is marked completed; the date is read as UTC.
func ToSession(w Workout, gen ids.Generator, defaultRest string) models.Session {
	start := w.Date.UTC()
	s := models.Session{
		ID:         gen.NewID(),
		TemplateID: TemplatePrefix + w.Name,
		Date:       start.Format("2006-01-02T15:04:05.000Z07:00"),
		StartTime:  start.UnixMilli(),
		Exercises:  make([]models.SessionExercise, 0, len(w.Moves)),
	}
	if minutes, ok := DurationMinutes(w.Duration); ok {
		end := start.Add(time.Duration(minutes) * time.Minute).UnixMilli()
		s.Duration = &minutes
		s.EndTime = &end
	} else {
		zero := 0
		s.Duration = &zero
		s.EndTime = &s.StartTime
	}

	for _, mv := range w.Moves {
		ex := models.SessionExercise{
			ID:               exerciseID(mv.Name),
			Name:             mv.Name,
			Equipment:        mv.Equipment,
			Unit:             models.UnitKg,
			RestAfterLastSet: defaultRest,
			Sets:             make([]models.SessionSet, 0, len(mv.Sets)),
		}
		for _, set := range mv.Sets {
			ss := models.SessionSet{
				Weight:    set.WeightKg,
				Reps:      float64(set.Reps),
				RestTime:  defaultRest,
				Completed: true,
				IsWarmup:  set.IsWarmup,
			}
			if !set.IsWarmup && mv.TargetReps > 0 {
				ss.TargetReps = models.Reps(float64(mv.TargetReps))
			}
			ex.Sets = append(ex.Sets, ss)
		}
		s.Exercises = append(s.Exercises, ex)
	}
	return s
}

// exerciseID derives a stable catalog-style id, "Hack Squats" -> "hack-squats".
func exerciseID(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
