// Package database provides SQLite-based storage for ytanalyzer.
//
// The Store keeps:
//   - the latest aggregate fetched for each analysis id
//   - a log of Markdown documents exported to disk
//
// Design decision: We use SQLite (via modernc.org/sqlite) because the
// cache is a single file in the XDG data directory and the CGO-free driver
// keeps cross-compilation simple. WAL mode lets the preview server read
// while a CLI command writes.
package database
