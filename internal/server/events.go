package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// handleEvents streams rest-timer and session events as server-sent events. The
// current timer state is sent first as a "state" event.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming not supported"})
		return
	}

	engine := s.workouts.Timers()
	timerCh, cancelTimers := engine.Subscribe(32)
	defer cancelTimers()
	sessionCh, cancelSessions := s.events.Subscribe(16)
	defer cancelSessions()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	st, _ := engine.Active()
	writeEvent(w, "state", st)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-timerCh:
			if !ok {
				return
			}
			writeEvent(w, ev.Kind.String(), ev)
		case ev, ok := <-sessionCh:
			if !ok {
				return
			}
			writeEvent(w, ev.Name, ev)
		}
		flusher.Flush()
	}
}

func writeEvent(w http.ResponseWriter, name string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(`{}`)
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
}

