// Package upload pushes bar-speed sensor exports from a local directory to a
// VBT Coach server, skipping exports it has already delivered.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/vbtcoach/internal/ingest/sensor"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	RowsParsed   int
	SessionsSent int
	SetsInserted int64
	SetsSkipped  int64
	RecordsSet   int

	Rejected []string
}

// Uploader walks a directory of sensor CSV exports and sends each new or
// changed one to the server.
type Uploader struct {
	client *Client
	state  *StateDB
	dir    string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates an Uploader. client may be nil in dry-run mode.
func New(client *Client, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		dir:    dir,
		dryRun: dryRun,
		log:    log,
	}
}

// Run uploads every pending export. Files the server rejects are counted and
// skipped; an unreachable server stops the run.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := FindExports(u.dir)
	if err != nil {
		return &u.stats, err
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		u.stats.FilesTotal++
		if err := u.process(ctx, f); err != nil {
			return &u.stats, err
		}
	}
	return &u.stats, nil
}

func (u *Uploader) process(ctx context.Context, path string) error {
	relPath, err := filepath.Rel(u.dir, path)
	if err != nil {
		relPath = path
	}

	info, err := os.Stat(path)
	if err != nil {
		u.log.Warn("stat failed", "file", relPath, "error", err)
		u.stats.FilesErrored++
		return nil
	}
	hash, err := HashFile(path)
	if err != nil {
		u.log.Warn("hash failed", "file", relPath, "error", err)
		u.stats.FilesErrored++
		return nil
	}

	uploaded, err := u.state.IsUploaded(relPath, info.Size(), hash)
	if err != nil {
		u.log.Warn("state check failed", "file", relPath, "error", err)
		u.stats.FilesErrored++
		return nil
	}
	if uploaded {
		u.stats.FilesSkipped++
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		u.log.Warn("read failed", "file", relPath, "error", err)
		u.stats.FilesErrored++
		return nil
	}

	if u.dryRun {
		sessions, rows, err := sensor.Parse(bytes.NewReader(data))
		if err != nil {
			u.log.Warn("parse failed", "file", relPath, "error", err)
			u.stats.FilesErrored++
			u.stats.Rejected = append(u.stats.Rejected, relPath)
			return nil
		}
		u.stats.RowsParsed += rows
		u.stats.SessionsSent += len(sessions)
		u.log.Info("dry-run: would send", "file", relPath, "rows", rows, "sessions", len(sessions))
		return nil
	}

	result, err := u.client.SendExport(ctx, data)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Rejected() {
			u.log.Warn("export rejected", "file", relPath, "status", se.Code, "error", se.Body)
			u.stats.FilesErrored++
			u.stats.Rejected = append(u.stats.Rejected, relPath)
			return nil
		}
		return fmt.Errorf("sending %s: %w", relPath, err)
	}

	u.stats.FilesUploaded++
	u.stats.RowsParsed += result.RowsReceived
	u.stats.SessionsSent += result.SessionsReceived
	u.stats.SetsInserted += result.SetsInserted
	u.stats.SetsSkipped += result.SetsSkipped
	u.stats.RecordsSet += result.RecordsSet

	if err := u.state.MarkUploaded(relPath, info.Size(), hash, result.SetsInserted); err != nil {
		u.log.Warn("failed to mark uploaded", "file", relPath, "error", err)
	}
	u.log.Info("uploaded export",
		"file", relPath,
		"sessions", result.SessionsReceived,
		"sets_inserted", result.SetsInserted,
		"records", result.RecordsSet,
	)
	return nil
}

// FindExports returns every .csv file under dir, sorted by path.
// Hidden files and directories are ignored.
func FindExports(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if path != dir && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(name), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
