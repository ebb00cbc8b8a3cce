package workout

import (
	"math"
	"strings"

	"github.com/claude/liftlog/internal/apperr"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/timer"
)

// Mutation is one of the closed set of edits an active session accepts.
// Implementations live in this package only.
type Mutation interface {
	Name() string
	apply(c *mutationCtx) error
}

// mutationCtx carries the working copy and the timer side effects to run once
// the mutation has been committed.
type mutationCtx struct {
	session     *models.Session
	newID       func() string
	defaultRest string

	startTimer *timerStart
	rekey      func(timer.Key) (timer.Key, bool)
	durations  map[timer.Key]string
}

type timerStart struct {
	key      timer.Key
	restTime string
}

func (c *mutationCtx) exercise(op string, idx int) (*models.SessionExercise, error) {
	if idx < 0 || idx >= len(c.session.Exercises) {
		return nil, apperr.NotFound(op, "exercise %d does not exist", idx)
	}
	return &c.session.Exercises[idx], nil
}

func (c *mutationCtx) set(op string, exIdx, setIdx int) (*models.SessionExercise, *models.SessionSet, error) {
	ex, err := c.exercise(op, exIdx)
	if err != nil {
		return nil, nil, err
	}
	if setIdx < 0 || setIdx >= len(ex.Sets) {
		return nil, nil, apperr.NotFound(op, "set %d of exercise %d does not exist", setIdx, exIdx)
	}
	return ex, &ex.Sets[setIdx], nil
}

func (c *mutationCtx) editDuration(key timer.Key, value string) {
	if c.durations == nil {
		c.durations = make(map[timer.Key]string)
	}
	c.durations[key] = value
}

func checkAmount(op, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return apperr.Validation(op, "%s must be a number", field)
	}
	if v < 0 {
		return apperr.Validation(op, "%s must not be negative", field)
	}
	return nil
}

func checkRestTime(op, v string) error {
	if !models.ValidRestTime(v) {
		return apperr.Validation(op, "rest time %q must look like m:ss", v)
	}
	return nil
}

// SetField names the numeric column UpdateSet writes.
type SetField string

const (
	FieldWeight SetField = "weight"
	FieldReps   SetField = "reps"
)

type UpdateSet struct {
	Exercise int      `json:"exercise"`
	Set      int      `json:"set"`
	Field    SetField `json:"field"`
	Value    float64  `json:"value"`
}

func (UpdateSet) Name() string { return "updateSet" }

func (m UpdateSet) apply(c *mutationCtx) error {
	const op = "updateSet"
	if m.Field != FieldWeight && m.Field != FieldReps {
		return apperr.Validation(op, "unknown field %q", m.Field)
	}
	if err := checkAmount(op, string(m.Field), m.Value); err != nil {
		return err
	}
	_, set, err := c.set(op, m.Exercise, m.Set)
	if err != nil {
		return err
	}
	if m.Field == FieldWeight {
		set.Weight = m.Value
	} else {
		set.Reps = m.Value
	}
	return nil
}

// ToggleSetComplete flips a set's completed flag. Completing a set starts the
// rest that follows it: the next set's rest, or the exercise's final rest.
type ToggleSetComplete struct {
	Exercise int `json:"exercise"`
	Set      int `json:"set"`
}

func (ToggleSetComplete) Name() string { return "toggleSetComplete" }

func (m ToggleSetComplete) apply(c *mutationCtx) error {
	ex, set, err := c.set("toggleSetComplete", m.Exercise, m.Set)
	if err != nil {
		return err
	}
	set.Completed = !set.Completed
	if !set.Completed {
		return nil
	}
	if m.Set == len(ex.Sets)-1 {
		c.startTimer = &timerStart{key: timer.LastKey(m.Exercise), restTime: models.RestTimeOr(ex.RestAfterLastSet, c.defaultRest)}
	} else {
		c.startTimer = &timerStart{key: timer.SetKey(m.Exercise, m.Set+1), restTime: models.RestTimeOr(ex.Sets[m.Set+1].RestTime, c.defaultRest)}
	}
	return nil
}

type AddSet struct {
	Exercise int `json:"exercise"`
}

func (AddSet) Name() string { return "addSet" }

func (m AddSet) apply(c *mutationCtx) error {
	ex, err := c.exercise("addSet", m.Exercise)
	if err != nil {
		return err
	}
	ex.Sets = append(ex.Sets, models.SessionSet{RestTime: c.defaultRest})
	return nil
}

// AddWarmupSet inserts a warm-up set at index 0, shifting the others down.
type AddWarmupSet struct {
	Exercise int     `json:"exercise"`
	Reps     float64 `json:"reps"`
	Weight   float64 `json:"weight"`
}

func (AddWarmupSet) Name() string { return "addWarmupSet" }

func (m AddWarmupSet) apply(c *mutationCtx) error {
	const op = "addWarmupSet"
	if err := checkAmount(op, "reps", m.Reps); err != nil {
		return err
	}
	if err := checkAmount(op, "weight", m.Weight); err != nil {
		return err
	}
	ex, err := c.exercise(op, m.Exercise)
	if err != nil {
		return err
	}
	warm := models.SessionSet{Weight: m.Weight, Reps: m.Reps, RestTime: c.defaultRest, IsWarmup: true}
	ex.Sets = append([]models.SessionSet{warm}, ex.Sets...)
	c.rekey = func(k timer.Key) (timer.Key, bool) {
		if k.Exercise == m.Exercise && !k.Last {
			k.Set++
		}
		return k, true
	}
	return nil
}

type RemoveSet struct {
	Exercise int `json:"exercise"`
	Set      int `json:"set"`
}

func (RemoveSet) Name() string { return "removeSet" }

func (m RemoveSet) apply(c *mutationCtx) error {
	ex, _, err := c.set("removeSet", m.Exercise, m.Set)
	if err != nil {
		return err
	}
	ex.Sets = append(ex.Sets[:m.Set], ex.Sets[m.Set+1:]...)
	c.rekey = func(k timer.Key) (timer.Key, bool) {
		if k.Exercise != m.Exercise || k.Last {
			return k, true
		}
		switch {
		case k.Set == m.Set:
			return timer.Key{}, false
		case k.Set > m.Set:
			k.Set--
		}
		return k, true
	}
	return nil
}

type SetExerciseNote struct {
	Exercise int    `json:"exercise"`
	Text     string `json:"text"`
}

func (SetExerciseNote) Name() string { return "setExerciseNote" }

func (m SetExerciseNote) apply(c *mutationCtx) error {
	ex, err := c.exercise("setExerciseNote", m.Exercise)
	if err != nil {
		return err
	}
	ex.Note = strings.TrimSpace(m.Text)
	return nil
}

type SetStickyNote struct {
	Exercise int    `json:"exercise"`
	Text     string `json:"text"`
}

func (SetStickyNote) Name() string { return "setStickyNote" }

func (m SetStickyNote) apply(c *mutationCtx) error {
	ex, err := c.exercise("setStickyNote", m.Exercise)
	if err != nil {
		return err
	}
	ex.StickyNote = strings.TrimSpace(m.Text)
	return nil
}

// SetRestTime edits one rest period. A nil Set targets the rest after the last set.
type SetRestTime struct {
	Exercise int    `json:"exercise"`
	Set      *int   `json:"set"`
	Value    string `json:"value"`
}

func (SetRestTime) Name() string { return "setRestTime" }

func (m SetRestTime) apply(c *mutationCtx) error {
	const op = "setRestTime"
	if err := checkRestTime(op, m.Value); err != nil {
		return err
	}
	if m.Set == nil {
		ex, err := c.exercise(op, m.Exercise)
		if err != nil {
			return err
		}
		ex.RestAfterLastSet = m.Value
		c.editDuration(timer.LastKey(m.Exercise), m.Value)
		return nil
	}
	_, set, err := c.set(op, m.Exercise, *m.Set)
	if err != nil {
		return err
	}
	set.RestTime = m.Value
	c.editDuration(timer.SetKey(m.Exercise, *m.Set), m.Value)
	return nil
}

// UpdateRestTimers applies one rest period to every set of an exercise and to its final rest.
type UpdateRestTimers struct {
	Exercise int    `json:"exercise"`
	Value    string `json:"value"`
}

func (UpdateRestTimers) Name() string { return "updateRestTimers" }

func (m UpdateRestTimers) apply(c *mutationCtx) error {
	const op = "updateRestTimers"
	if err := checkRestTime(op, m.Value); err != nil {
		return err
	}
	ex, err := c.exercise(op, m.Exercise)
	if err != nil {
		return err
	}
	for i := range ex.Sets {
		ex.Sets[i].RestTime = m.Value
		c.editDuration(timer.SetKey(m.Exercise, i), m.Value)
	}
	ex.RestAfterLastSet = m.Value
	c.editDuration(timer.LastKey(m.Exercise), m.Value)
	return nil
}

// ReplaceExercise swaps the exercise identity in place. Performed sets are kept
// unless the new plan brings its own.
type ReplaceExercise struct {
	Exercise int                 `json:"exercise"`
	Plan     models.ExercisePlan `json:"plan"`
}

func (ReplaceExercise) Name() string { return "replaceExercise" }

func (m ReplaceExercise) apply(c *mutationCtx) error {
	const op = "replaceExercise"
	if err := m.Plan.Validate(); err != nil {
		return err
	}
	ex, err := c.exercise(op, m.Exercise)
	if err != nil {
		return err
	}
	ex.ID = m.Plan.ID
	ex.Name = m.Plan.Name
	ex.Muscle = m.Plan.Muscle
	ex.Equipment = m.Plan.Equipment
	ex.Type = m.Plan.Type
	if m.Plan.Unit != "" {
		ex.Unit = m.Plan.Unit
	}
	if len(m.Plan.Sets) > 0 {
		ex.Sets = buildSets(m.Plan.Sets, c.defaultRest)
		c.rekey = func(k timer.Key) (timer.Key, bool) {
			return k, k.Exercise != m.Exercise || k.Last
		}
	}
	return nil
}

// CreateSuperset pairs two exercises under a fresh superset id. Any earlier
// partner of either exercise is unpaired so a superset always has exactly two members.
type CreateSuperset struct {
	A int `json:"a"`
	B int `json:"b"`
}

func (CreateSuperset) Name() string { return "createSuperset" }

func (m CreateSuperset) apply(c *mutationCtx) error {
	const op = "createSuperset"
	if m.A == m.B {
		return apperr.Validation(op, "an exercise cannot be supersetted with itself")
	}
	a, err := c.exercise(op, m.A)
	if err != nil {
		return err
	}
	b, err := c.exercise(op, m.B)
	if err != nil {
		return err
	}
	for _, old := range []string{a.SupersetID, b.SupersetID} {
		if old == "" {
			continue
		}
		for i := range c.session.Exercises {
			if c.session.Exercises[i].SupersetID == old {
				c.session.Exercises[i].SupersetID = ""
			}
		}
	}
	id := c.newID()
	a.SupersetID = id
	b.SupersetID = id
	return nil
}

// ChangeUnit switches an exercise's unit. Between kg and lb, weights are converted
// and rounded to whole units.
type ChangeUnit struct {
	Exercise int         `json:"exercise"`
	Unit     models.Unit `json:"unit"`
}

func (ChangeUnit) Name() string { return "changeUnit" }

func (m ChangeUnit) apply(c *mutationCtx) error {
	const op = "changeUnit"
	if !m.Unit.IsValid() {
		return apperr.Validation(op, "unknown unit %q", m.Unit)
	}
	ex, err := c.exercise(op, m.Exercise)
	if err != nil {
		return err
	}
	from := models.EffectiveUnit(ex.Unit)
	if from.IsWeight() && m.Unit.IsWeight() && from != m.Unit {
		for i := range ex.Sets {
			ex.Sets[i].Weight = models.ConvertWeight(ex.Sets[i].Weight, from, m.Unit)
			ex.Sets[i].TargetWeight = models.ConvertWeight(ex.Sets[i].TargetWeight, from, m.Unit)
		}
	}
	ex.Unit = m.Unit
	return nil
}

// RemoveExercise deletes an exercise. Its timers are cancelled and later
// exercises' timers move up one index.
type RemoveExercise struct {
	Exercise int `json:"exercise"`
}

func (RemoveExercise) Name() string { return "removeExercise" }

func (m RemoveExercise) apply(c *mutationCtx) error {
	if _, err := c.exercise("removeExercise", m.Exercise); err != nil {
		return err
	}
	ex := c.session.Exercises
	c.session.Exercises = append(ex[:m.Exercise], ex[m.Exercise+1:]...)
	c.rekey = func(k timer.Key) (timer.Key, bool) {
		switch {
		case k.Exercise == m.Exercise:
			return timer.Key{}, false
		case k.Exercise > m.Exercise:
			k.Exercise--
		}
		return k, true
	}
	return nil
}
