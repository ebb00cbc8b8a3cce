package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/ids"
	"github.com/claude/liftlog/internal/importer"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/workout"
)

// liftlog-import merges a directory of Alpha Progression CSV exports straight
// into the configured store. Stop the server first when using sqlite.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dir := flag.String("path", "", "directory containing Alpha Progression CSV exports (required)")
	dryRun := flag.Bool("dry-run", false, "parse and count without writing to the store")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *dir == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-import -config config.yaml -path /path/to/exports [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if info, err := os.Stat(*dir); err != nil || !info.IsDir() {
		log.Error("export path does not exist or is not a directory", "path", *dir)
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sink importer.Sink
	if *dryRun {
		log.Info("DRY RUN mode: files will be parsed but nothing is written")
	} else {
		store, err := storage.Open(ctx, cfg.Storage)
		if err != nil {
			log.Error("failed to open storage", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		history := workout.NewHistory(storage.NewSnapshots(store))
		sink = alpha.NewProvider(history, ids.UUID{}, nil, log)
	}

	stats, err := importer.New(sink, nil, *dryRun, log).Import(ctx, *dir)
	printStats(stats)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}
	log.Info("import complete")
}

func printStats(stats *importer.Stats) {
	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("  Files total:       %d\n", stats.FilesTotal)
	fmt.Printf("  Files imported:    %d\n", stats.FilesImported)
	fmt.Printf("  Files errored:     %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Sessions received: %d\n", stats.SessionsReceived)
	fmt.Printf("  Sessions added:    %d\n", stats.SessionsAdded)
	fmt.Printf("  Sessions replaced: %d\n", stats.SessionsReplaced)
	fmt.Printf("  Sets:              %d\n", stats.SetsReceived)
	fmt.Println()
}
