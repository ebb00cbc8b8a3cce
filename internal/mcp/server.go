package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog strength training log. Query workout history, weekly volume, per-exercise progress and forecasts, and the workout in progress. Weights are in the unit each exercise was logged in."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetOverview, Handler: h.getOverview},
		server.ServerTool{Tool: toolGetVolumeForecast, Handler: h.getVolumeForecast},
		server.ServerTool{Tool: toolGetExerciseProgress, Handler: h.getExerciseProgress},
		server.ServerTool{Tool: toolGetRecentSessions, Handler: h.getRecentSessions},
	)

	s.AddResources(
		server.ServerResource{Resource: resOverview, Handler: h.overview},
		server.ServerResource{Resource: resCurrentWorkout, Handler: h.currentWorkout},
	)

	return s
}

type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resOverview = mcp.NewResource(
	"liftlog://overview",
	"Training Overview",
	mcp.WithResourceDescription("Total workouts and volume, this week's count, seven-day frequency and muscle group distribution"),
	mcp.WithMIMEType("application/json"),
)

var resCurrentWorkout = mcp.NewResource(
	"liftlog://current_workout",
	"Current Workout",
	mcp.WithResourceDescription("The workout in progress with every set, or null when none is running"),
	mcp.WithMIMEType("application/json"),
)
