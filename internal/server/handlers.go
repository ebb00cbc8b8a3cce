package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/claude/liftlog/internal/apperr"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/timer"
	"github.com/claude/liftlog/internal/workout"
)

const maxBodyBytes = 8 << 20

// respondSession writes session, or the error together with the session when
// the change was kept in memory but not saved.
func (s *Server) respondSession(w http.ResponseWriter, status int, session *models.Session, err error) {
	if err != nil {
		if session != nil {
			s.writeError(w, err, session)
		} else {
			s.writeError(w, err, nil)
		}
		return
	}
	writeJSON(w, status, session)
}

type startRequest struct {
	TemplateID string           `json:"templateId"`
	Template   *models.Template `json:"template"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err, nil)
		return
	}

	var (
		session *models.Session
		err     error
	)
	switch {
	case req.Template != nil:
		session, err = s.workouts.Start(r.Context(), *req.Template)
	case req.TemplateID != "":
		session, err = s.workouts.StartTemplate(r.Context(), req.TemplateID)
	default:
		err = apperr.Validation("start", "templateId or template is required")
	}
	s.respondSession(w, http.StatusCreated, session, err)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	session, err := s.workouts.Resume(r.Context())
	s.respondSession(w, http.StatusOK, session, err)
}

func (s *Server) handleMutate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, apperr.Validation("mutate", "reading body: %v", err), nil)
		return
	}
	m, err := workout.DecodeMutation(body)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	session, err := s.workouts.Mutate(r.Context(), chi.URLParam(r, "id"), m)
	s.respondSession(w, http.StatusOK, session, err)
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	session, err := s.workouts.Finish(r.Context(), chi.URLParam(r, "id"))
	s.respondSession(w, http.StatusOK, session, err)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if err := s.workouts.Pause(r.Context()); err != nil {
		s.writeError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	if err := s.workouts.Discard(r.Context()); err != nil {
		s.writeError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleElapsed(w http.ResponseWriter, r *http.Request) {
	d, ok := s.workouts.Elapsed()
	writeJSON(w, http.StatusOK, map[string]any{
		"active":  ok,
		"seconds": int(d.Seconds()),
	})
}

func (s *Server) handleStartTimer(w http.ResponseWriter, r *http.Request) {
	key, err := timer.ParseKey(chi.URLParam(r, "key"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	if err := s.workouts.StartRestTimer(chi.URLParam(r, "id"), key); err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, s.workouts.Timers().State(key))
}

func (s *Server) handleActiveTimer(w http.ResponseWriter, r *http.Request) {
	st, _ := s.workouts.Timers().Active()
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleCancelTimer(w http.ResponseWriter, r *http.Request) {
	key, err := timer.ParseKey(chi.URLParam(r, "key"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	if !s.workouts.Timers().Cancel(key) {
		s.writeError(w, apperr.NotFound("cancel timer", "timer %s is not running", key), nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSuggestRest(w http.ResponseWriter, r *http.Request) {
	prev, err := queryFloat(r, "previous")
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	weight, err := queryFloat(r, "weight")
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"restTime": timer.SuggestRest(prev, weight)})
}

func queryFloat(r *http.Request, name string) (float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, apperr.Validation("query", "%s must be a number", name)
	}
	return f, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, apperr.Validation("query", "%s must be a non-negative integer", name)
	}
	return n, nil
}
