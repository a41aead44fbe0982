package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/vbtcoach/internal/ingest"
	"github.com/claude/vbtcoach/internal/storage"
)

// maxUploadBytes caps a sensor export upload.
const maxUploadBytes = 32 << 20

// SourceSensorCSV names sensor CSV uploads in the import log.
const SourceSensorCSV = "sensor_csv"

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetDataStats(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, err, "stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.db.QueryImportLogs(r.Context(), userIDFromContext(r), limit)
	if err != nil {
		s.writeError(w, err, "import logs")
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// handleSensorIngest stores an uploaded sensor CSV export. The body is the raw CSV.
func (s *Server) handleSensorIngest(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	start := time.Now()

	result, err := s.sensor.Ingest(r.Context(), http.MaxBytesReader(w, r.Body, maxUploadBytes), uid)
	s.logImport(uid, SourceSensorCSV, result, err, int(time.Since(start).Milliseconds()))
	if err != nil {
		s.log.Error("sensor ingest error", "user_id", uid, "error", err)
		s.writeError(w, err, "sensor export")
		return
	}

	s.log.Info("sensor ingest",
		"user_id", uid,
		"sessions", result.SessionsReceived,
		"sets_inserted", result.SetsInserted,
		"records", result.RecordsSet,
	)
	writeJSON(w, http.StatusOK, result)
}

// logImport records an import operation's result to the import_logs table.
func (s *Server) logImport(uid int, source string, result *ingest.Result, importErr error, durationMs int) {
	status := "success"
	var errMsg *string
	if importErr != nil {
		status = "error"
		msg := importErr.Error()
		errMsg = &msg
	}

	log := storage.ImportLog{
		UserID:       uid,
		Source:       source,
		Status:       status,
		DurationMs:   &durationMs,
		ErrorMessage: errMsg,
	}
	if result != nil {
		log.RowsReceived = result.RowsReceived
		log.Sessions = result.SessionsReceived
		log.SetsInserted = result.SetsInserted
		log.RecordsSet = result.RecordsSet
	}

	ctx, cancel := contextWithTimeout()
	defer cancel()

	if _, err := s.db.InsertImportLog(ctx, log); err != nil {
		s.log.Error("failed to log import", "source", source, "error", err)
	}
}

// contextWithTimeout returns a background context with a 5-second timeout for import logging.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd
}
