// Package server is the local preview server started by "ytanalyzer serve".
//
// It renders analysis documents as HTML, serves them as Markdown
// downloads and proxies the critical and additional stage requests,
// applying the same gates as the CLI. Responses that carry data use the
// backend's envelope format.
package server
