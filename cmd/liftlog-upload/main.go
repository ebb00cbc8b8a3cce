package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/claude/liftlog/internal/importer"
	"github.com/claude/liftlog/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "LiftLog server URL (e.g. https://liftlog.tail1234.ts.net)")
	dir := flag.String("path", "", "directory containing Alpha Progression CSV exports")
	dryRun := flag.Bool("dry-run", false, "parse but don't send to server")
	force := flag.Bool("force", false, "send files even if they were uploaded before")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *dir == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-upload -server <URL> -path <exports dir> [-dry-run] [-force]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *serverURL == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
		os.Exit(1)
	}
	if info, err := os.Stat(*dir); err != nil || !info.IsDir() {
		log.Error("export directory not found", "path", *dir)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ledger importer.Ledger
	var state *importer.StateDB
	if !*force {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		target := *serverURL
		if target == "" {
			target = "dry-run"
		}
		state, err = importer.OpenStateDB(filepath.Join(homeDir, ".liftlog-upload"), target)
		if err != nil {
			log.Error("failed to open state database", "error", err)
			os.Exit(1)
		}
		defer state.Close()
		ledger = state
	}

	var sink importer.Sink
	if *dryRun {
		log.Info("DRY RUN mode: files will be parsed but not sent")
	} else {
		sink = upload.NewClient(*serverURL)
	}

	stats, err := importer.New(sink, ledger, *dryRun, log).Import(ctx, *dir)
	printStats(stats)
	if err != nil {
		log.Error("upload failed", "error", err)
		os.Exit(1)
	}
	if state != nil {
		totals, err := state.Totals(ctx)
		if err != nil {
			log.Warn("reading upload totals failed", "error", err)
		} else {
			log.Info("upload complete", "files_recorded", totals.Files, "sessions_recorded", totals.Sessions, "sets_recorded", totals.Sets)
			return
		}
	}
	log.Info("upload complete")
}

func printStats(stats *importer.Stats) {
	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Files total:       %d\n", stats.FilesTotal)
	fmt.Printf("  Files uploaded:    %d\n", stats.FilesImported)
	fmt.Printf("  Files skipped:     %d (already uploaded)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:     %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Sessions added:    %d\n", stats.SessionsAdded)
	fmt.Printf("  Sessions replaced: %d\n", stats.SessionsReplaced)
	fmt.Printf("  Sets:              %d\n", stats.SetsReceived)
	fmt.Println()
}
