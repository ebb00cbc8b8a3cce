package models

// Session is one workout, in progress (EndTime == nil) or completed.
// Completed sessions are the entries of the workout history.
type Session struct {
	ID         string            `json:"id"`
	TemplateID string            `json:"templateId"`
	Date       string            `json:"date"`      // ISO 8601 timestamp of the start
	StartTime  int64             `json:"startTime"` // epoch millis
	EndTime    *int64            `json:"endTime,omitempty"`
	Duration   *int              `json:"duration,omitempty"` // minutes, set by finish
	Exercises  []SessionExercise `json:"exercises"`
}

// SessionExercise is an exercise being performed in a session.
type SessionExercise struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Muscle           string       `json:"muscle"`
	Equipment        string       `json:"equipment,omitempty"`
	Type             string       `json:"type,omitempty"`
	Unit             Unit         `json:"unit,omitempty"`
	Note             string       `json:"note,omitempty"`
	StickyNote       string       `json:"stickyNote,omitempty"`
	SupersetID       string       `json:"supersetId,omitempty"`
	RestAfterLastSet string       `json:"restAfterLastSet"`
	Sets             []SessionSet `json:"sets"`
}

// SessionSet is one performed (or pending) set.
type SessionSet struct {
	Weight       float64    `json:"weight"`
	Reps         float64    `json:"reps"`
	TargetWeight float64    `json:"targetWeight"`
	TargetReps   TargetReps `json:"targetReps"`
	RestTime     string     `json:"restTime"`
	Completed    bool       `json:"completed"`
	IsWarmup     bool       `json:"isWarmup"`
	Previous     string     `json:"previous"`
}

// Finished reports whether the session has been completed.
func (s *Session) Finished() bool {
	return s.EndTime != nil
}

// Volume is the sum of weight*reps over the set.
func (s SessionSet) Volume() float64 {
	if s.Weight <= 0 || s.Reps <= 0 {
		return 0
	}
	return s.Weight * s.Reps
}

// Clone returns a deep copy; mutations on the copy never reach s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.EndTime != nil {
		v := *s.EndTime
		c.EndTime = &v
	}
	if s.Duration != nil {
		v := *s.Duration
		c.Duration = &v
	}
	if s.Exercises != nil {
		c.Exercises = make([]SessionExercise, len(s.Exercises))
		for i, ex := range s.Exercises {
			c.Exercises[i] = ex
			if ex.Sets != nil {
				c.Exercises[i].Sets = append([]SessionSet(nil), ex.Sets...)
			}
		}
	}
	return &c
}
