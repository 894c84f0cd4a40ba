// Package pipeline drives an analysis through its three stages.
//
// Each stage is a Step that calls the backend and merges the returned
// aggregate into a Job. The gates in gate.go run before any request, so a
// blocked stage never reaches the network. ExportStep turns the final
// aggregate into a Markdown file.
//
// Design decision: Stages are steps in a pipeline instead of direct calls
// so the CLI, the preview server and batch export share one sequence with
// the same logging and error recording. BatchProcessor runs that sequence
// over many analyses with bounded concurrency via errgroup.
package pipeline
