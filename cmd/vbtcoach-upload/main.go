package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/claude/vbtcoach/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "VBT Coach server URL (e.g. https://vbtcoach.tail1234.ts.net)")
	exportDir := flag.String("path", "", "directory containing sensor CSV exports")
	apiKey := flag.String("api-key", os.Getenv("VBTCOACH_AUTH_API_KEY"), "ingest API key (default $VBTCOACH_AUTH_API_KEY)")
	stateDir := flag.String("state-dir", "", "state database directory (default ~/.vbtcoach-upload)")
	dryRun := flag.Bool("dry-run", false, "parse exports locally but don't send to server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("vbtcoach-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportDir == "" {
		fmt.Fprintf(os.Stderr, "Usage: vbtcoach-upload -server <URL> -api-key <key> -path <export dir> [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if !*dryRun && (*serverURL == "" || *apiKey == "") {
		fmt.Fprintf(os.Stderr, "Error: -server and -api-key are required (or use -dry-run)\n")
		os.Exit(1)
	}

	info, err := os.Stat(*exportDir)
	if err != nil || !info.IsDir() {
		log.Error("export directory not found", "path", *exportDir)
		os.Exit(1)
	}

	if *stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		*stateDir = filepath.Join(homeDir, ".vbtcoach-upload")
	}
	state, err := upload.OpenStateDB(*stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	var client *upload.Client
	if *dryRun {
		log.Info("DRY RUN mode: exports will be parsed but not sent")
	} else {
		client = upload.NewClient(strings.TrimRight(*serverURL, "/"), *apiKey)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := upload.New(client, state, *exportDir, *dryRun, log).Run(ctx)
	printStats(stats, *dryRun)
	if err != nil {
		log.Error("upload failed", "error", err)
		state.Close()
		os.Exit(1)
	}
	log.Info("upload complete")
}

func printStats(stats *upload.Stats, dryRun bool) {
	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files uploaded:   %d\n", stats.FilesUploaded)
	fmt.Printf("  Files skipped:    %d (already uploaded)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Rows:             %d\n", stats.RowsParsed)
	fmt.Printf("  Sessions:         %d\n", stats.SessionsSent)
	if !dryRun {
		fmt.Printf("  Sets inserted:    %d\n", stats.SetsInserted)
		fmt.Printf("  Sets skipped:     %d (already stored)\n", stats.SetsSkipped)
		fmt.Printf("  Records set:      %d\n", stats.RecordsSet)
	}

	if len(stats.Rejected) > 0 {
		fmt.Printf("\n  Rejected exports:\n")
		for _, f := range stats.Rejected {
			fmt.Printf("    - %s\n", f)
		}
	}
	fmt.Println()
}
