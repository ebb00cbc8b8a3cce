package workout

import (
	"strconv"

	"github.com/claude/liftlog/internal/models"
)

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

func buildSets(plans []models.SetPlan, defaultRest string) []models.SessionSet {
	sets := make([]models.SessionSet, len(plans))
	for i, p := range plans {
		var w float64
		if p.TargetWeight != nil {
			w = *p.TargetWeight
		}
		rest := p.RestTime
		if rest == "" {
			rest = defaultRest
		}
		sets[i] = models.SessionSet{
			Weight:       w,
			Reps:         p.TargetReps.Seed(),
			TargetWeight: w,
			TargetReps:   p.TargetReps,
			RestTime:     rest,
			IsWarmup:     p.IsWarmup,
			Previous:     p.Previous,
		}
	}
	return sets
}

func buildExercises(plans []models.ExercisePlan, defaultRest string) []models.SessionExercise {
	out := make([]models.SessionExercise, len(plans))
	for i, p := range plans {
		rest := p.RestAfterLastSet
		if rest == "" {
			rest = defaultRest
		}
		out[i] = models.SessionExercise{
			ID:               p.ID,
			Name:             p.Name,
			Muscle:           p.Muscle,
			Equipment:        p.Equipment,
			Type:             p.Type,
			Unit:             models.EffectiveUnit(p.Unit),
			SupersetID:       p.SupersetID,
			RestAfterLastSet: rest,
			Sets:             buildSets(p.Sets, defaultRest),
		}
	}
	return out
}

// fillPrevious writes "<weight> <unit> x <reps>" from the most recent history entry
// of the same exercise into sets whose plan carried no previous text.
func fillPrevious(exercises []models.SessionExercise, history []models.Session) {
	for i := range exercises {
		ex := &exercises[i]
		last := lastPerformance(history, ex.ID)
		if last == nil {
			continue
		}
		for j := range ex.Sets {
			if ex.Sets[j].Previous != "" || j >= len(last.Sets) {
				continue
			}
			ex.Sets[j].Previous = previousText(last.Sets[j], models.EffectiveUnit(last.Unit))
		}
	}
}

func lastPerformance(history []models.Session, exerciseID string) *models.SessionExercise {
	if exerciseID == "" {
		return nil
	}
	for i := len(history) - 1; i >= 0; i-- {
		for j := range history[i].Exercises {
			if history[i].Exercises[j].ID == exerciseID {
				return &history[i].Exercises[j]
			}
		}
	}
	return nil
}

func previousText(s models.SessionSet, unit models.Unit) string {
	if s.Weight <= 0 && s.Reps <= 0 {
		return ""
	}
	return strconv.FormatFloat(s.Weight, 'f', -1, 64) + " " + string(unit) + " x " + strconv.FormatFloat(s.Reps, 'f', -1, 64)
}
