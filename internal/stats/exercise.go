package stats

import (
	"slices"

	"github.com/claude/liftlog/internal/models"
)

// EstimatedOneRepMax is the Epley estimate weight*(1+reps/30). Non-positive inputs give 0.
func EstimatedOneRepMax(weight, reps float64) float64 {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	return weight * (1 + reps/30)
}

// BestOneRepMax scans every set of exerciseID across history and keeps the highest estimate.
func BestOneRepMax(history []models.Session, exerciseID string) float64 {
	var best float64
	forEachSet(history, exerciseID, func(set models.SessionSet) {
		if e := EstimatedOneRepMax(set.Weight, set.Reps); e > best {
			best = e
		}
	})
	return best
}

// Record holds per-exercise bests. Found is false when the exercise never appears.
type Record struct {
	MaxWeight float64 `json:"maxWeight"`
	MaxVolume float64 `json:"maxVolume"` // best single set
	MaxReps   float64 `json:"maxReps"`
	Found     bool    `json:"found"`
}

func PersonalRecord(history []models.Session, exerciseID string) Record {
	var r Record
	forEachSet(history, exerciseID, func(set models.SessionSet) {
		r.Found = true
		r.MaxWeight = max(r.MaxWeight, set.Weight)
		r.MaxReps = max(r.MaxReps, set.Reps)
		r.MaxVolume = max(r.MaxVolume, set.Volume())
	})
	return r
}

// Metric selects the per-session value of ExerciseHistory.
type Metric string

const (
	MetricMaxWeight   Metric = "maxWeight"
	MetricTotalVolume Metric = "totalVolume"
)

// XY is one regression sample.
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ExerciseHistory returns one point per session containing exerciseID, ordered by
// session time, with X the running index. Sessions whose value is 0 are skipped.
func ExerciseHistory(history []models.Session, exerciseID string, metric Metric) []XY {
	sorted := slices.Clone(history)
	slices.SortStableFunc(sorted, func(a, b models.Session) int {
		return SessionTime(a).Compare(SessionTime(b))
	})

	out := []XY{}
	for _, s := range sorted {
		var v float64
		for _, ex := range s.Exercises {
			if ex.ID != exerciseID {
				continue
			}
			for _, set := range ex.Sets {
				switch metric {
				case MetricTotalVolume:
					v += set.Volume()
				default:
					v = max(v, set.Weight)
				}
			}
		}
		if v > 0 {
			out = append(out, XY{X: float64(len(out)), Y: v})
		}
	}
	return out
}

func forEachSet(history []models.Session, exerciseID string, fn func(models.SessionSet)) {
	for _, s := range history {
		for _, ex := range s.Exercises {
			if ex.ID != exerciseID {
				continue
			}
			for _, set := range ex.Sets {
				fn(set)
			}
		}
	}
}
