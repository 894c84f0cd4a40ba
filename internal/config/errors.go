package config

import "errors"

// Configuration validation errors returned by Config.Validate.
//
// Design decision: Sentinel errors let callers use errors.Is while the
// messages stay readable on their own.
var (
	// ErrInvalidAPIURL is returned when the backend URL is not an absolute
	// http or https URL.
	ErrInvalidAPIURL = errors.New("invalid api url: expected http:// or https://")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidProxy is returned when the proxy is not in host:port form.
	ErrInvalidProxy = errors.New("invalid proxy address: expected host:port")

	// ErrInvalidHistoryLimit is returned when the page size is outside 1..100.
	ErrInvalidHistoryLimit = errors.New("invalid history limit: must be between 1 and 100")

	// ErrInvalidBatch is returned when the export concurrency is not positive.
	ErrInvalidBatch = errors.New("invalid batch size: must be positive")

	// ErrInvalidListen is returned when the listen address is not host:port.
	ErrInvalidListen = errors.New("invalid listen address: expected host:port")

	// ErrInvalidCacheMaxAge is returned when the cache age is negative.
	ErrInvalidCacheMaxAge = errors.New("invalid cache max age: must be non-negative")
)
