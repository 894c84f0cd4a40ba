// Package report turns an analysis aggregate into documents.
//
// The central type is Formatter, which renders a Markdown report covering
// every stage the aggregate has completed. Around it sit several writers:
//   - MarkdownWriter: the downloadable Markdown document
//   - SimpleWriter: a short text summary for terminal display
//   - JSONWriter: the raw aggregate for tool integration
//   - HTMLWriter: the Markdown document rendered to an HTML page
//
// Save and ServeAttachment deliver a formatted Document to a directory or
// an HTTP client under its suggested file name.
//
// Design decision: Report rendering is kept apart from the data structures
// in the model package, so new output formats do not touch the aggregate.
package report
