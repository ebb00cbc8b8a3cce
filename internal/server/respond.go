package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/liftlog/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindPersistence:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status and writes {"error", "kind"}. extra, when
// non-nil, is added as "session" so a client keeps state that was applied in
// memory but could not be saved.
func (s *Server) writeError(w http.ResponseWriter, err error, extra any) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)
	msg := err.Error()
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Msg != "" {
		msg = ae.Msg
		if ae.Err != nil {
			msg += ": " + ae.Err.Error()
		}
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}

	body := map[string]any{"error": msg, "kind": kindName(kind)}
	if extra != nil {
		body["session"] = extra
	}
	writeJSON(w, status, body)
}

func kindName(k apperr.Kind) string {
	if k == 0 {
		return "internal"
	}
	return k.String()
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("decode request", "invalid JSON: %v", err)
	}
	return nil
}
