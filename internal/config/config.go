package config

import (
	"net"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "ytanalyzer"

	// DefaultAPIURL is where the analysis backend listens in a local setup.
	DefaultAPIURL = "http://localhost:8000"

	// DefaultTimeout covers a stage-2 or stage-3 request, which runs an LLM
	// pass on the backend and routinely takes more than a minute.
	DefaultTimeout = 180 * time.Second

	// DefaultHistoryLimit is the page size of the history command.
	DefaultHistoryLimit = 20

	// MaxHistoryLimit is the largest page the backend serves.
	MaxHistoryLimit = 100

	// DefaultBatch is the number of analyses exported concurrently.
	// Each one may trigger backend requests, so this stays small.
	DefaultBatch = 4

	// DefaultListen is the address of the local preview server.
	DefaultListen = "127.0.0.1:3000"

	// DefaultOutputDir is where exported documents are written.
	DefaultOutputDir = "."

	// DefaultCacheMaxAge is how long the preview server trusts a cached
	// aggregate before asking the backend again.
	DefaultCacheMaxAge = 5 * time.Minute
)

// Environment variables that override the configuration file.
const (
	EnvAPIURL   = "YTANALYZER_API_URL"
	EnvAPIToken = "YTANALYZER_API_TOKEN"
)

// Config holds all configuration options for ytanalyzer.
// It is populated from defaults, the configuration file, the environment
// and CLI flags, in that order, and passed down explicitly.
type Config struct {
	// APIURL is the base URL of the analysis backend.
	APIURL string

	// APIToken is sent as a bearer token when set. It is never logged.
	APIToken string

	// Timeout is the overall timeout of one backend request.
	Timeout time.Duration

	// Proxy is an optional SOCKS5 proxy in "host:port" format.
	Proxy string

	// OutputDir is where exported Markdown documents are written.
	OutputDir string

	// Perspective is the lens used when a critical analysis is requested
	// without one. Empty means the backend default.
	Perspective string

	// HistoryLimit is the default page size of the history command.
	HistoryLimit int

	// Batch is the number of analyses processed concurrently by export.
	Batch int

	// Listen is the address of the preview server.
	Listen string

	// CacheMaxAge is how long a cached aggregate is served by the preview
	// server without contacting the backend.
	CacheMaxAge time.Duration

	// DBDir is the directory holding the SQLite database.
	// Defaults to the XDG data directory.
	DBDir string

	// NoCache disables the local database entirely.
	NoCache bool

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches log output to JSON.
	LogJSON bool

	// ConfigFilePath is the explicit configuration file, if any.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		APIURL:       DefaultAPIURL,
		Timeout:      DefaultTimeout,
		OutputDir:    DefaultOutputDir,
		HistoryLimit: DefaultHistoryLimit,
		Batch:        DefaultBatch,
		Listen:       DefaultListen,
		CacheMaxAge:  DefaultCacheMaxAge,
		DBDir:        XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for ytanalyzer.
// On Linux: ~/.local/share/ytanalyzer
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for ytanalyzer.
// On Linux: ~/.config/ytanalyzer
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if c.APIURL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidAPIURL
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Proxy != "" && !isHostPort(c.Proxy) {
		return ErrInvalidProxy
	}

	if c.HistoryLimit < 1 || c.HistoryLimit > MaxHistoryLimit {
		return ErrInvalidHistoryLimit
	}

	if c.Batch <= 0 {
		return ErrInvalidBatch
	}

	if c.Listen != "" && !isHostPort(c.Listen) {
		return ErrInvalidListen
	}

	if c.CacheMaxAge < 0 {
		return ErrInvalidCacheMaxAge
	}

	return nil
}

// isHostPort reports whether s is "host:port" with a numeric port.
// An empty host is allowed for listen addresses such as ":3000".
func isHostPort(s string) bool {
	_, port, err := net.SplitHostPort(s)
	if err != nil {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n > 0 && n <= 65535
}
