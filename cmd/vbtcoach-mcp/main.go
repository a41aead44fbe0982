package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/vbtcoach/internal/config"
	vbtmcp "github.com/claude/vbtcoach/internal/mcp"
	"github.com/claude/vbtcoach/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "VBT Coach server URL for remote mode (e.g. https://vbtcoach.tail1234.ts.net)")
	configPath := flag.String("config", "", "path to config file for local database mode")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("vbtcoach-mcp", Version)
		return
	}

	// stdout carries the MCP protocol, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if (*serverURL == "") == (*configPath == "") {
		fmt.Fprintf(os.Stderr, "Usage: vbtcoach-mcp -server <URL> | -config <config.yaml>\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	var ds vbtmcp.DataSource
	if *serverURL != "" {
		ds = vbtmcp.NewHTTPClient(*serverURL)
		log.Info("remote mode", "server", *serverURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
		log.Info("local database mode", "host", cfg.Database.Host, "name", cfg.Database.Name)
	}

	if err := server.ServeStdio(vbtmcp.New(ds, Version, log)); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
