package mcp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("VBTCoach", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("VBTCoach training data server. Assess bar velocities against a training goal and query workouts, velocity-tracked sets, personal records, nutrition, mobility and recovery check-ins. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolAssessVelocity, Handler: h.assessVelocity},
		server.ServerTool{Tool: toolGetVelocityZones, Handler: h.getVelocityZones},
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolGetWorkoutSets, Handler: h.getWorkoutSets},
		server.ServerTool{Tool: toolGetVelocitySummary, Handler: h.getVelocitySummary},
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolGetNutritionLogs, Handler: h.getNutritionLogs},
		server.ServerTool{Tool: toolGetMobilityAssessments, Handler: h.getMobilityAssessments},
		server.ServerTool{Tool: toolGetHealthMetrics, Handler: h.getHealthMetrics},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resVelocityZones, Handler: h.velocityZones},
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resDailySummary, Handler: h.dailySummary},
	)

	return s
}

// NewHTTPHandler serves s over streamable HTTP. The user ID placed on the
// request context by the HTTP server's identity middleware is carried into
// tool and resource handlers.
func NewHTTPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s,
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return WithUserID(ctx, UserIDFromContext(r.Context()))
		}),
	)
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resVelocityZones = mcp.NewResource(
	"vbtcoach://velocity_zones",
	"Velocity Zones",
	mcp.WithResourceDescription("The five velocity zones with their m/s bounds and training character"),
	mcp.WithMIMEType("application/json"),
)

var resRecentWorkouts = mcp.NewResource(
	"vbtcoach://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Workouts from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)

var resDailySummary = mcp.NewResource(
	"vbtcoach://daily_summary",
	"Daily Summary",
	mcp.WithResourceDescription("Today's recovery check-in, nutrition totals, workouts and velocity zone distribution"),
	mcp.WithMIMEType("application/json"),
)
