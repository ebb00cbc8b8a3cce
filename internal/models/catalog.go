package models

// CatalogEntry is a read-only exercise definition used to build templates and sessions.
type CatalogEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Muscle    string `json:"muscle"`
	Equipment string `json:"equipment,omitempty"`
	Type      string `json:"type,omitempty"`
	Unit      Unit   `json:"unit,omitempty"`
}

// Plan converts the entry into an exercise plan without sets.
func (c CatalogEntry) Plan() ExercisePlan {
	return ExercisePlan{
		ID:        c.ID,
		Name:      c.Name,
		Muscle:    c.Muscle,
		Equipment: c.Equipment,
		Type:      c.Type,
		Unit:      c.Unit,
	}
}

// Settings are user preferences persisted next to the workout data.
type Settings struct {
	Notifications   bool `json:"notifications"`
	PRNotifications bool `json:"prNotifications"`
}

// DefaultSettings enables both notification kinds.
func DefaultSettings() Settings {
	return Settings{Notifications: true, PRNotifications: true}
}

// SchemaVersion is written next to every snapshot. Loading never requires it.
const SchemaVersion = 1

// Backup is the export/import shape; it mirrors the persisted snapshot keys.
type Backup struct {
	SchemaVersion  int            `json:"schemaVersion,omitempty"`
	Templates      []Template     `json:"templates"`
	Exercises      []CatalogEntry `json:"exercises"`
	WorkoutHistory []Session      `json:"workoutHistory"`
	CurrentWorkout *Session       `json:"currentWorkout"`
	Settings       *Settings      `json:"settings,omitempty"`
}
