// Package mcp exposes coaching data to AI assistants over the Model Context
// Protocol.
package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/progression"
	"github.com/claude/repcoach/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const athleteIDKey contextKey = iota

// AthleteIDFromContext extracts the athlete ID injected by the transport
// layer, defaulting to "local" for development.
func AthleteIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(athleteIDKey).(string); ok {
		return id
	}
	return "local"
}

// WithAthleteID returns a context carrying the given athlete ID.
func WithAthleteID(ctx context.Context, athleteID string) context.Context {
	return context.WithValue(ctx, athleteIDKey, athleteID)
}

// DataSource abstracts the data layer for MCP tools.
type DataSource interface {
	GetActiveRoutine(ctx context.Context, athleteID string) (*models.AssignedRoutine, error)
	QueryTrainingLogs(ctx context.Context, athleteID string, start, end time.Time) ([]models.TrainingLog, error)
	GetVolumeSummary(ctx context.Context, athleteID string, start, end time.Time) ([]storage.VolumePeriod, error)
	HasLogOnDate(ctx context.Context, athleteID string, date time.Time) (bool, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, progress *progression.Engine, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RepCoach", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RepCoach training data server. Query an athlete's assigned routine, schedule classification, training logs, weekly volume, and next-load suggestions."),
	)

	h := &handlers{ds: ds, progress: progress, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetSchedule, Handler: h.getSchedule},
		server.ServerTool{Tool: toolGetProgression, Handler: h.getProgression},
		server.ServerTool{Tool: toolGetTrainingLogs, Handler: h.getTrainingLogs},
		server.ServerTool{Tool: toolGetVolumeSummary, Handler: h.getVolumeSummary},
	)

	s.AddResources(
		server.ServerResource{Resource: resActiveRoutine, Handler: h.activeRoutine},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds       DataSource
	progress *progression.Engine
	log      *slog.Logger
}

// --- Resource definitions ---

var resActiveRoutine = mcp.NewResource(
	"repcoach://active_routine",
	"Active Routine",
	mcp.WithResourceDescription("The athlete's currently active assigned routine with its 7-day schedule"),
	mcp.WithMIMEType("application/json"),
)
