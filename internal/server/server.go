package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/nao1215/ytanalyzer/internal/model"
	"github.com/nao1215/ytanalyzer/internal/pipeline"
	"github.com/nao1215/ytanalyzer/internal/report"
)

// Store is the local cache the server reads before asking the backend.
// *database.Store implements it.
type Store interface {
	pipeline.ResultCache
	GetFreshResult(ctx context.Context, analysisID string, maxAge time.Duration) (*model.AnalysisResult, error)
}

// Config wires the server to its collaborators.
type Config struct {
	// Addr is the listen address, e.g. "127.0.0.1:3000".
	Addr string

	// Backend serves the analyses.
	Backend pipeline.Backend

	// Store is optional. Without it every request goes to the backend.
	Store Store

	// CacheMaxAge is how long a cached aggregate is served as is.
	CacheMaxAge time.Duration

	// Formatter renders documents. Nil means report defaults.
	Formatter *report.Formatter

	// Perspective is used by critical requests that do not name one.
	Perspective string

	Logger    *slog.Logger
	Version   string
	StartTime time.Time
}

// Server is the local preview server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a server from cfg.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Formatter == nil {
		cfg.Formatter = report.NewFormatter()
	}
	if cfg.StartTime.IsZero() {
		cfg.StartTime = time.Now()
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			// Critical and additional requests wait on the backend's LLM pass.
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting for active requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
