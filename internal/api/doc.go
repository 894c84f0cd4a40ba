// Package api provides the HTTP client for the video analysis backend.
//
// The backend wraps every payload in the same envelope:
//
//	{"success": bool, "data": ..., "error": "...", "cached": bool, "total": int}
//
// Client methods always return such an envelope. Network errors, non-2xx
// statuses and undecodable bodies are folded into {success:false, error:<message>}
// with a localized message, so callers branch on Response.Success instead of
// on Go errors. Response.Err converts a failed envelope into an *Error when
// an error value is more convenient, for example in CLI commands.
//
// The base URL is injected at construction. Tests point the client at an
// httptest.Server; production code reads it from the configuration.
package api
