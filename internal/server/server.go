package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/repcoach/internal/aigen"
	"github.com/claude/repcoach/internal/progression"
	"github.com/claude/repcoach/internal/scheduler"
	"github.com/claude/repcoach/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	assigner *scheduler.Assigner
	progress *progression.Engine
	gen      *aigen.Client
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured. gen may be nil, which
// disables the generate endpoint.
func New(db *storage.DB, assigner *scheduler.Assigner, progress *progression.Engine, gen *aigen.Client, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		assigner: assigner,
		progress: progress,
		gen:      gen,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(Identity)

	// Device endpoints (API key required): finalize submissions from the
	// session client, including offline-queue retries.
	s.router.Route("/api/v1/logs", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleSubmitLog)
	})

	// Coach endpoints
	s.router.Post("/api/v1/templates", s.handleCreateTemplate)
	s.router.Get("/api/v1/templates", s.handleListTemplates)
	s.router.Get("/api/v1/templates/{id}", s.handleGetTemplate)
	s.router.Post("/api/v1/templates/generate", s.handleGenerateTemplate)
	s.router.Post("/api/v1/templates/{id}/assign", s.handleAssign)

	// Athlete endpoints
	s.router.Get("/api/v1/athletes/{id}/routine", s.handleActiveRoutine)
	s.router.Get("/api/v1/athletes/{id}/schedule", s.handleSchedule)
	s.router.Get("/api/v1/athletes/{id}/progression", s.handleProgression)
	s.router.Get("/api/v1/athletes/{id}/logs", s.handleQueryLogs)
	s.router.Get("/api/v1/athletes/{id}/volume", s.handleVolume)
}

// SetMCP mounts the MCP transport handler. Called from main after the MCP
// server is built.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
	s.router.Handle("/mcp/*", h)
}
