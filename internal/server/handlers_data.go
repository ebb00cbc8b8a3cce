package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/liftlog/internal/apperr"
	"github.com/claude/liftlog/internal/models"
)

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := s.templates.List(r.Context())
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.templates.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	var t models.Template
	if err := decodeJSON(r, &t); err != nil {
		s.writeError(w, err, nil)
		return
	}
	id := chi.URLParam(r, "id")
	if t.ID == "" {
		t.ID = id
	}
	if t.ID != id {
		s.writeError(w, apperr.Validation("save template", "body id %q does not match path id %q", t.ID, id), nil)
		return
	}
	if err := s.templates.Save(r.Context(), t); err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.templates.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	list, err := s.exercises.List(r.Context())
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleReplaceExercises(w http.ResponseWriter, r *http.Request) {
	var entries []models.CatalogEntry
	if err := decodeJSON(r, &entries); err != nil {
		s.writeError(w, err, nil)
		return
	}
	if err := s.exercises.Replace(r.Context(), entries); err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	var list []models.Session
	if limit > 0 {
		list, err = s.reports.RecentSessions(r.Context(), limit)
	} else {
		list, err = s.workouts.History().List(r.Context())
	}
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleAlphaImport(w http.ResponseWriter, r *http.Request) {
	if s.alpha == nil {
		s.writeError(w, apperr.NotFound("alpha import", "importer not configured"), nil)
		return
	}
	result, err := s.alpha.Ingest(r.Context(), http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.log.Error("alpha import error", "error", err)
		if apperr.KindOf(err) == 0 {
			err = apperr.Validation("alpha import", "%v", err)
		}
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.snaps.Settings(r.Context())
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.snaps.Settings(r.Context())
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	// Fields missing from the body keep their stored value.
	if err := decodeJSON(r, &settings); err != nil {
		s.writeError(w, err, nil)
		return
	}
	if err := s.snaps.SaveSettings(r.Context(), settings); err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	b, err := s.snaps.Export(r.Context())
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="liftlog-backup.json"`)
	writeJSON(w, http.StatusOK, b)
}

// handleImport overwrites stored data from a backup. It is refused while a
// session is active; a backup's unfinished session becomes the active one.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var b models.Backup
	if err := decodeJSON(r, &b); err != nil {
		s.writeError(w, err, nil)
		return
	}
	active, err := s.workouts.Restore(r.Context(), &b)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"templates":      len(b.Templates),
		"exercises":      len(b.Exercises),
		"workoutHistory": len(b.WorkoutHistory),
		"currentWorkout": active != nil,
	})
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	o, err := s.reports.Overview(r.Context())
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	ahead, err := queryInt(r, "weeksAhead")
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	v, err := s.reports.Volume(r.Context(), ahead)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleExerciseStats(w http.ResponseWriter, r *http.Request) {
	ahead, err := queryInt(r, "weeksAhead")
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	e, err := s.reports.Exercise(r.Context(), chi.URLParam(r, "id"), ahead)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, e)
}
