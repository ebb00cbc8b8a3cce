package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	defaultRecentSessions = 10
	maxRecentSessions     = 100
	maxWeeksAhead         = 52
)

// --- Tool definitions ---

var toolGetOverview = mcp.NewTool("get_overview",
	mcp.WithDescription("Training overview: total workouts, total volume (weight x reps), workouts this week, sessions per weekday over the last 7 days, and set counts per muscle group."),
)

var toolGetVolumeForecast = mcp.NewTool("get_volume_forecast",
	mcp.WithDescription("Weekly training volume for recent weeks plus a linear-trend forecast. The forecast is marked insufficient when fewer than two weeks have data."),
	mcp.WithNumber("weeks_ahead", mcp.Description("Weeks to project forward (up to 52). 0 or omitted uses the server setting.")),
)

var toolGetExerciseProgress = mcp.NewTool("get_exercise_progress",
	mcp.WithDescription("History of one exercise: personal record, best estimated one-rep max, max weight and volume per session, and a forecast of the max weight with suggested weekly targets."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise id as used in templates (e.g. 'bench-press')")),
	mcp.WithNumber("weeks_ahead", mcp.Description("Weeks to project forward (up to 52). 0 or omitted uses the server setting.")),
)

var toolGetRecentSessions = mcp.NewTool("get_recent_sessions",
	mcp.WithDescription("Most recent finished workouts, newest first, including every exercise and set."),
	mcp.WithNumber("limit", mcp.Description("Maximum sessions to return (1-100). Defaults to 10.")),
)

// --- Tool handlers ---

func (h *handlers) getOverview(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	o, err := h.ds.Overview(ctx)
	if err != nil {
		h.log.Error("mcp get_overview", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(o)
}

func (h *handlers) getVolumeForecast(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ahead := req.GetInt("weeks_ahead", 0)
	if ahead < 0 || ahead > maxWeeksAhead {
		return mcp.NewToolResultError("weeks_ahead must be between 0 and 52"), nil
	}

	v, err := h.ds.Volume(ctx, ahead)
	if err != nil {
		h.log.Error("mcp get_volume_forecast", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(v)
}

func (h *handlers) getExerciseProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("exercise_id")
	if err != nil || id == "" {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	ahead := req.GetInt("weeks_ahead", 0)
	if ahead < 0 || ahead > maxWeeksAhead {
		return mcp.NewToolResultError("weeks_ahead must be between 0 and 52"), nil
	}

	e, err := h.ds.Exercise(ctx, id, ahead)
	if err != nil {
		h.log.Error("mcp get_exercise_progress", "exercise", id, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(e)
}

func (h *handlers) getRecentSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", defaultRecentSessions)
	if limit <= 0 {
		limit = defaultRecentSessions
	}
	limit = min(limit, maxRecentSessions)

	sessions, err := h.ds.RecentSessions(ctx, limit)
	if err != nil {
		h.log.Error("mcp get_recent_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(sessions)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
