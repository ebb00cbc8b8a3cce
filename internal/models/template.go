package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/claude/liftlog/internal/apperr"
)

// Difficulty is the optional level a template is aimed at.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case "", DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	default:
		return false
	}
}

// Template is a reusable workout blueprint. Sessions copy it by value on start.
type Template struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Difficulty Difficulty     `json:"difficulty,omitempty"`
	Duration   int            `json:"duration,omitempty"` // planned minutes
	Exercises  []ExercisePlan `json:"exercises"`
}

// ExercisePlan is one exercise inside a template.
type ExercisePlan struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Muscle           string    `json:"muscle"`
	Equipment        string    `json:"equipment,omitempty"`
	Type             string    `json:"type,omitempty"`
	Unit             Unit      `json:"unit,omitempty"`
	SupersetID       string    `json:"supersetId,omitempty"`
	RestAfterLastSet string    `json:"restAfterLastSet,omitempty"`
	Sets             []SetPlan `json:"sets"`
}

// SetPlan is one planned set.
type SetPlan struct {
	TargetReps   TargetReps `json:"targetReps"`
	TargetWeight *float64   `json:"targetWeight,omitempty"`
	RestTime     string     `json:"restTime,omitempty"`
	IsWarmup     bool       `json:"isWarmup,omitempty"`
	Previous     string     `json:"previous,omitempty"`
}

// Validate checks the fields a session relies on when it is started from t.
func (t Template) Validate() error {
	const op = "validate template"
	if strings.TrimSpace(t.ID) == "" {
		return apperr.Validation(op, "template id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return apperr.Validation(op, "template name is required")
	}
	if !t.Difficulty.IsValid() {
		return apperr.Validation(op, "unknown difficulty %q", t.Difficulty)
	}
	if t.Duration < 0 {
		return apperr.Validation(op, "planned duration must not be negative")
	}
	for i, ex := range t.Exercises {
		if err := ex.Validate(); err != nil {
			return apperr.Validation(op, "exercise %d: %v", i, err)
		}
	}
	return nil
}

// Validate checks names, units, rest-time formats and target weights.
func (p ExercisePlan) Validate() error {
	const op = "validate exercise"
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Validation(op, "exercise name is required")
	}
	if p.Unit != "" && !p.Unit.IsValid() {
		return apperr.Validation(op, "unknown unit %q", p.Unit)
	}
	if p.RestAfterLastSet != "" && !ValidRestTime(p.RestAfterLastSet) {
		return apperr.Validation(op, "invalid rest time %q", p.RestAfterLastSet)
	}
	for i, s := range p.Sets {
		if s.RestTime != "" && !ValidRestTime(s.RestTime) {
			return apperr.Validation(op, "set %d: invalid rest time %q", i, s.RestTime)
		}
		if s.TargetWeight != nil && *s.TargetWeight < 0 {
			return apperr.Validation(op, "set %d: target weight must not be negative", i)
		}
	}
	return nil
}

// TargetReps holds a planned rep target, either a number ("10") or a range ("8-12").
// It remembers which JSON form it was read from so snapshots round-trip unchanged.
type TargetReps struct {
	Text    string
	Numeric bool
}

// Reps returns a numeric target.
func Reps(n float64) TargetReps {
	return TargetReps{Text: strconv.FormatFloat(n, 'f', -1, 64), Numeric: true}
}

// RepRange returns a textual target such as "8-12".
func RepRange(s string) TargetReps {
	return TargetReps{Text: s}
}

// Seed returns the rep count a new session set starts with: the number itself,
// the lower bound of a range, or 0 when the target is empty or unparseable.
func (t TargetReps) Seed() float64 {
	s := strings.TrimSpace(t.Text)
	if s == "" {
		return 0
	}
	if lo, _, ok := strings.Cut(s, "-"); ok {
		s = strings.TrimSpace(lo)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

func (t TargetReps) IsZero() bool { return t.Text == "" }

func (t TargetReps) MarshalJSON() ([]byte, error) {
	if t.Numeric {
		if _, err := strconv.ParseFloat(t.Text, 64); err == nil {
			return []byte(t.Text), nil
		}
	}
	return json.Marshal(t.Text)
}

func (t *TargetReps) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = TargetReps{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = TargetReps{Text: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = TargetReps{Text: n.String(), Numeric: true}
	return nil
}
