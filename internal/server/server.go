package server

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/claude/vbtcoach/internal/mcp"
	"github.com/claude/vbtcoach/internal/vbt"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       Store
	sensor   Ingester
	coach    Coach
	source   vbt.VelocitySource
	log      *slog.Logger
	apiKey   string
	identity func(http.Handler) http.Handler
	router   chi.Router
}

// New creates a new Server with all routes configured.
// Requests are attributed to the dev user until SetTailscale is called.
func New(db Store, sensor Ingester, coach Coach, source vbt.VelocitySource, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		sensor:   sensor,
		coach:    coach,
		source:   source,
		log:      log,
		apiKey:   apiKey,
		identity: DevIdentity,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches identity resolution to Tailscale WhoIs.
// Must be called before the server starts handling requests.
func (s *Server) SetTailscale(lc WhoIsClient) {
	s.identity = TailscaleIdentity(lc, s.db, s.log)
}

// identify resolves the caller with whichever identity middleware is active.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.identity(next).ServeHTTP(w, r)
	})
}

func (s *Server) routes() {
	s.router.Use(CORS)

	// Sensor uploads (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Use(s.identify)
		r.Use(RequestLogging(s.log))
		r.Post("/sensor", s.handleSensorIngest)
	})

	// App API (no API key; tsnet handles access)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identify)
		r.Use(RequestLogging(s.log))

		r.Get("/me", s.handleMe)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/stats", s.handleStats)
		r.Get("/import-logs", s.handleImportLogs)

		r.Get("/vbt/zones", s.handleZones)
		r.Post("/vbt/assess", s.handleAssess)
		r.Post("/vbt/measure", s.handleMeasure)
		r.Post("/vbt/sets/summary", s.handleSetSummary)
		r.Post("/vbt/profile", s.handleProfile)
		r.Get("/vbt/summary", s.handleVelocitySummary)

		r.Get("/workouts", s.handleQueryWorkouts)
		r.Post("/workouts", s.handleCreateWorkout)
		r.Get("/workouts/{id}", s.handleGetWorkout)
		r.Post("/workouts/{id}/sets", s.handleLogSets)
		r.Post("/workouts/{id}/complete", s.handleCompleteWorkout)
		r.Get("/sets", s.handleQuerySets)
		r.Get("/records", s.handlePersonalRecords)

		r.Get("/nutrition", s.handleQueryNutrition)
		r.Post("/nutrition", s.handleLogNutrition)
		r.Get("/nutrition/daily", s.handleDailyNutrition)
		r.Get("/mobility", s.handleQueryMobility)
		r.Post("/mobility", s.handleAssessMobility)
		r.Get("/health-metrics", s.handleQueryHealthMetrics)
		r.Post("/health-metrics", s.handleUpsertHealthMetric)
		r.Get("/health-metrics/latest", s.handleLatestHealthMetric)

		r.Get("/challenges", s.handleListChallenges)
		r.Get("/challenges/joined", s.handleJoinedChallenges)
		r.Post("/challenges/{id}/join", s.handleJoinChallenge)
	})
}

// SetMCP mounts an MCP streamable HTTP handler at /mcp. The caller's user ID
// is carried into tool calls through the request context.
func (s *Server) SetMCP(h http.Handler) {
	s.router.With(s.identify, RequestLogging(s.log)).Handle("/mcp", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := mcp.WithUserID(r.Context(), userIDFromContext(r))
		h.ServeHTTP(w, r.WithContext(ctx))
	}))
}

// SetFrontend mounts the embedded SPA filesystem.
// Unmatched routes serve index.html for client-side routing.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		// Try to serve the exact file first
		f, err := webFS.Open(r.URL.Path[1:]) // strip leading /
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		// Fallback to index.html for SPA routing
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
