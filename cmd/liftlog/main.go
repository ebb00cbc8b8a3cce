package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"tailscale.com/tsnet"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/ids"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/notify"
	"github.com/claude/liftlog/internal/report"
	"github.com/claude/liftlog/internal/server"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/timer"
	"github.com/claude/liftlog/internal/workout"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run postgres migrations and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "loading .env: %v\n", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	log.Info("LiftLog starting", "version", Version, "storage", cfg.Storage.Driver)

	if *migrateOnly {
		if cfg.Storage.Driver != config.DriverPostgres {
			log.Info("migrate-only: nothing to do for driver", "driver", cfg.Storage.Driver)
			return
		}
		if err := storage.RunMigrations(cfg.Storage.Postgres.DSN(), cfg.Storage.MigrationsDir); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		log.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	log.Info("storage opened", "driver", cfg.Storage.Driver, "cache_mb", cfg.Storage.CacheMB)

	reg := metrics.SetupPrometheus()
	m := metrics.NewManager("liftlog", "server", reg)
	if c, ok := store.(metrics.CacheStats); ok {
		m.WatchCache(c)
	}

	snaps := storage.NewSnapshots(store)
	templates := catalog.NewTemplates(snaps)
	exercises := catalog.NewExercises(snaps)

	timers := timer.New(nil, timer.Config{
		Tick:           cfg.Timer.Tick.Std(),
		WarningSeconds: cfg.Timer.WarningSeconds,
	})

	hub := server.NewHub()
	svc, err := workout.New(ctx, workout.Options{
		Snapshots:   snaps,
		Templates:   templates,
		Timers:      timers,
		Notifier:    notify.Multi{notify.LogSink{Log: log}, hub},
		Metrics:     m,
		Log:         log,
		DefaultRest: cfg.Timer.DefaultRest,
		Hooks:       hub.Hooks(),
	})
	if err != nil {
		log.Error("failed to start workout service", "error", err)
		os.Exit(1)
	}
	defer svc.Close()
	if cur, ok := svc.Active(); ok {
		log.Info("resuming active workout", "session", cur.ID)
	}

	go timers.Run(ctx)

	reports := report.New(report.Options{
		History:       svc.History(),
		Current:       svc,
		Namer:         exercises,
		Location:      time.Local,
		Weeks:         cfg.Stats.Weeks,
		ForecastWeeks: cfg.Stats.ForecastWeeks,
	})

	srv := server.New(server.Options{
		Workouts:  svc,
		Templates: templates,
		Exercises: exercises,
		Snapshots: snaps,
		Reports:   reports,
		Alpha:     alpha.NewProvider(svc.History(), ids.UUID{}, m, log),
		Events:    hub,
		Metrics:   m,
		Registry:  reg,
		Log:       log,
	})
	if cfg.Server.WebDir != "" {
		srv.SetFrontend(os.DirFS(cfg.Server.WebDir))
		log.Info("serving frontend", "dir", cfg.Server.WebDir)
	}

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "plain http")
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Pause first so the active session is on disk even if shutdown stalls.
	var errs error
	if svc.HasActiveSession() {
		errs = multierr.Append(errs, svc.Pause(shutdownCtx))
	}
	errs = multierr.Append(errs, httpSrv.Shutdown(shutdownCtx))
	errs = multierr.Append(errs, store.Close())
	if tsServer != nil {
		errs = multierr.Append(errs, tsServer.Close())
	}
	for _, err := range multierr.Errors(errs) {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
