package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/ytanalyzer/internal/api"
	"github.com/nao1215/ytanalyzer/internal/config"
	"github.com/nao1215/ytanalyzer/internal/database"
	applog "github.com/nao1215/ytanalyzer/internal/log"
	"github.com/nao1215/ytanalyzer/internal/model"
	"github.com/nao1215/ytanalyzer/internal/pipeline"
	"github.com/nao1215/ytanalyzer/internal/report"
)

// errMissingID is returned when a command needs an analysis id.
var errMissingID = errors.New("analysis id is required (see 'ytanalyzer history')")

// app bundles what the backend-facing commands share: the effective
// configuration, the logger, the API client and the optional local cache.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	client *api.Client

	// store is nil when the cache is disabled or could not be opened.
	store *database.Store

	out io.Writer
}

// newApp loads the configuration for cmd and connects its collaborators.
// The caller must call Close.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	logger := applog.NewLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.LogJSON)

	client, err := api.NewClient(cfg.APIURL,
		api.WithTimeout(cfg.Timeout),
		api.WithProxy(cfg.Proxy),
		api.WithToken(cfg.APIToken),
		api.WithUserAgent(fmt.Sprintf("ytanalyzer/%s", getVersion())),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		client: client,
		out:    cmd.OutOrStdout(),
	}

	if !cfg.NoCache {
		store, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			// The backend is the source of truth; work without the cache.
			logger.Warn("local cache unavailable", "dir", cfg.DBDir, "error", err)
		} else {
			a.store = store
			logger.Debug("local cache opened", "path", store.Path())
		}
	}

	return a, nil
}

// Close releases the local cache.
func (a *app) Close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close local cache", "error", err)
	}
}

// plan returns a pipeline plan wired to the local cache, if any.
// Steps are added by the caller.
func (a *app) plan() pipeline.Plan {
	pl := pipeline.Plan{
		Formatter: report.NewFormatter(),
		Logger:    a.logger,
	}
	// Assigning a nil *Store would make the interfaces non-nil.
	if a.store != nil {
		pl.Cache = a.store
		pl.Exports = a.store
	}
	return pl
}

// run executes a plan for job.
func (a *app) run(ctx context.Context, pl pipeline.Plan, job *pipeline.Job) error {
	return pl.Build(a.client).Execute(ctx, job)
}

// loadConfig builds the configuration: defaults, file, environment and
// finally the flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if flags.Changed("api-url") {
		if cfg.APIURL, err = flags.GetString("api-url"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.Proxy, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("no-cache") {
		if cfg.NoCache, err = flags.GetBool("no-cache"); err != nil {
			return nil, err
		}
	}
	if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
		return nil, err
	}
	if cfg.LogJSON, err = flags.GetBool("log-json"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// analysisID returns the trimmed first argument.
func analysisID(args []string) (string, error) {
	if len(args) == 0 {
		return "", errMissingID
	}
	id := strings.TrimSpace(args[0])
	if id == "" {
		return "", errMissingID
	}
	return id, nil
}

// writeResult prints an aggregate as a terminal summary or as JSON.
func writeResult(out io.Writer, result *model.AnalysisResult, asJSON, verbose bool) error {
	var w report.Writer
	if asJSON {
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	} else {
		w = report.NewSimpleWriter(out, report.WithVerbose(verbose))
	}
	_, err := w.Write(result)
	return err
}
