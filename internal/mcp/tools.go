package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/claude/repcoach/internal/calendar"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 28 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -28)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetSchedule = mcp.NewTool("get_schedule",
	mcp.WithDescription("Classify a calendar date against the athlete's active routine: training day (with exercise count), rest day, or no plan yet, plus whether a finalized log was recorded that day."),
	mcp.WithString("date", mcp.Description("Date to classify (YYYY-MM-DD). Defaults to today.")),
)

var toolGetProgression = mcp.NewTool("get_progression",
	mcp.WithDescription("Suggest the next working weight for an exercise from the athlete's recent top set and its RPE. Returns null when the athlete has no history for the exercise."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise id (e.g. 'barbell-squat')")),
)

var toolGetTrainingLogs = mcp.NewTool("get_training_logs",
	mcp.WithDescription("Finalized training sessions in a date range, newest first, with duration, session RPE, and notes."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 28 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

var toolGetVolumeSummary = mcp.NewTool("get_volume_summary",
	mcp.WithDescription("Weekly aggregated training volume: sessions, total sets, total reps, tonnage (sum of weight*reps), and average session duration."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 28 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

// --- Tool handlers ---

func (h *handlers) getSchedule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date := time.Now()
	if d := req.GetString("date", ""); d != "" {
		parsed, err := parseFlexTime(d)
		if err != nil {
			return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
		}
		date = parsed
	}
	athlete := AthleteIDFromContext(ctx)

	routine, err := h.ds.GetActiveRoutine(ctx, athlete)
	if err != nil {
		// No active routine still classifies as no_plan.
		routine = nil
	}
	hasLog, err := h.ds.HasLogOnDate(ctx, athlete, date)
	if err != nil {
		h.log.Error("mcp get_schedule", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(calendar.Classify(routine, date, hasLog))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProgression(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise := req.GetString("exercise", "")
	if exercise == "" {
		return mcp.NewToolResultError("exercise is required"), nil
	}

	suggestion, err := h.progress.Suggest(ctx, AthleteIDFromContext(ctx), exercise)
	if err != nil {
		h.log.Error("mcp get_progression", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{"suggestion": suggestion})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	logs, err := h.ds.QueryTrainingLogs(ctx, AthleteIDFromContext(ctx), start, end)
	if err != nil {
		h.log.Error("mcp get_training_logs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(logs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getVolumeSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	summary, err := h.ds.GetVolumeSummary(ctx, AthleteIDFromContext(ctx), start, end)
	if err != nil {
		h.log.Error("mcp get_volume_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(summary)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Resource handlers ---

func (h *handlers) activeRoutine(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	routine, err := h.ds.GetActiveRoutine(ctx, AthleteIDFromContext(ctx))
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(routine, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
