package stats

import "math"

// roundHalfUp rounds halves towards +Inf.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func roundTo(v, step float64) float64 {
	return math.Round(v/step) * step
}
