package timer

// SuggestRest proposes a rest period from how the set's load compares with the previous one.
// Heavier jumps get longer rest.
func SuggestRest(previousWeight, weight float64) string {
	if previousWeight <= 0 {
		return "2:00"
	}
	ratio := weight / previousWeight
	switch {
	case ratio >= 1.1:
		return "3:00"
	case ratio >= 0.9:
		return "2:00"
	default:
		return "1:00"
	}
}
