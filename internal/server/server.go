// Package server exposes the workout core over a JSON HTTP API under /api/v1.
package server

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/report"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/workout"
)

// Options are the server's dependencies. Metrics and Registry are optional.
// Events should be the hub wired into the workout service; without one the
// event stream carries timer events only.
type Options struct {
	Workouts  *workout.Service
	Templates *catalog.Templates
	Exercises *catalog.Exercises
	Snapshots *storage.Snapshots
	Reports   *report.Reporter
	Alpha     *alpha.Provider
	Events    *Hub
	Metrics   *metrics.Manager
	Registry  prometheus.Gatherer
	Log       *slog.Logger
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	workouts  *workout.Service
	templates *catalog.Templates
	exercises *catalog.Exercises
	snaps     *storage.Snapshots
	reports   *report.Reporter
	alpha     *alpha.Provider
	events    *Hub
	metrics   *metrics.Manager
	registry  prometheus.Gatherer
	log       *slog.Logger
	router    chi.Router
}

// New creates a new Server with all routes configured.
func New(opts Options) *Server {
	s := &Server{
		workouts:  opts.Workouts,
		templates: opts.Templates,
		exercises: opts.Exercises,
		snaps:     opts.Snapshots,
		reports:   opts.Reports,
		alpha:     opts.Alpha,
		events:    opts.Events,
		metrics:   opts.Metrics,
		registry:  opts.Registry,
		log:       opts.Log,
		router:    chi.NewRouter(),
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.events == nil {
		s.events = NewHub()
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	if s.metrics != nil {
		s.router.Use(RequestMetrics(s.metrics))
	}
	s.router.Use(CORS)

	if s.registry != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleResume)
			r.Post("/", s.handleStart)
			r.Delete("/", s.handleDiscard)
			r.Post("/pause", s.handlePause)
			r.Get("/elapsed", s.handleElapsed)
			r.Post("/{id}/mutations", s.handleMutate)
			r.Post("/{id}/finish", s.handleFinish)
			r.Post("/{id}/timers/{key}", s.handleStartTimer)
		})

		r.Get("/timers", s.handleActiveTimer)
		r.Get("/events", s.handleEvents)
		r.Get("/timers/events", s.handleEvents)
		r.Get("/timers/suggest", s.handleSuggestRest)
		r.Delete("/timers/{key}", s.handleCancelTimer)

		r.Get("/templates", s.handleListTemplates)
		r.Get("/templates/{id}", s.handleGetTemplate)
		r.Put("/templates/{id}", s.handleSaveTemplate)
		r.Delete("/templates/{id}", s.handleDeleteTemplate)

		r.Get("/exercises", s.handleListExercises)
		r.Put("/exercises", s.handleReplaceExercises)

		r.Get("/history", s.handleHistory)
		r.Post("/history/import/alpha", s.handleAlphaImport)

		r.Get("/stats/overview", s.handleOverview)
		r.Get("/stats/volume", s.handleVolume)
		r.Get("/stats/exercises/{id}", s.handleExerciseStats)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleSaveSettings)

		r.Get("/backup", s.handleExport)
		r.Post("/backup", s.handleImport)
	})
}

// SetFrontend mounts a static UI. Unmatched routes serve index.html for client-side routing.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if f, err := webFS.Open(r.URL.Path[1:]); err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
