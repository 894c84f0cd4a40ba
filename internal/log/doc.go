// Package log provides slog loggers that mask secrets before output.
//
// The SecureHandler masks:
//   - attributes whose key names a credential (authorization, token, api_key, ...)
//   - values that look like secrets (bearer and basic credentials, JWTs, long API keys)
//   - the password and credential query parameters of URLs, keeping the rest
//
// Masking applies at every level, so verbose output can be shared safely.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose, jsonFormat)
//	logger.Debug("request sent",
//	    "url", "http://localhost:8000/api/analyze",
//	    "authorization", "Bearer ...", // masked
//	)
//	slog.SetDefault(logger)
package log
