package models

import "math"

// Unit is the measurement an exercise's weight column is recorded in.
type Unit string

const (
	UnitKg     Unit = "kg"
	UnitLb     Unit = "lb"
	UnitMinute Unit = "minute"
	UnitSecond Unit = "second"
	UnitReps   Unit = "reps"
)

// LbPerKg is the fixed conversion factor used when switching between kg and lb.
const LbPerKg = 2.20462

func (u Unit) IsValid() bool {
	switch u {
	case UnitKg, UnitLb, UnitMinute, UnitSecond, UnitReps:
		return true
	default:
		return false
	}
}

// IsWeight reports whether u is a load unit that converts.
func (u Unit) IsWeight() bool {
	return u == UnitKg || u == UnitLb
}

// ConvertWeight converts w between kg and lb, rounding to the nearest whole unit.
// Any other pair returns w unchanged. kg->lb->kg may therefore drift by up to one unit.
func ConvertWeight(w float64, from, to Unit) float64 {
	switch {
	case from == UnitKg && to == UnitLb:
		return math.Round(w * LbPerKg)
	case from == UnitLb && to == UnitKg:
		return math.Round(w / LbPerKg)
	default:
		return w
	}
}

// EffectiveUnit treats an unset unit as kg.
func EffectiveUnit(u Unit) Unit {
	if u == "" {
		return UnitKg
	}
	return u
}
