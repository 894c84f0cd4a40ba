// Package main provides the entry point for the ytanalyzer CLI.
//
// ytanalyzer is a command-line client for the video analysis backend.
// It submits YouTube videos for analysis, requests the critical and
// additional stages, browses the analysis history and exports the
// results as Markdown documents.
//
// Usage:
//
//	ytanalyzer analyze <video-url>
//	ytanalyzer critical <analysis-id> --perspective auto_trading
//	ytanalyzer export <analysis-id>...
//
// See --help for all available options.
package main

// main is the entry point for ytanalyzer.
func main() {
	Execute()
}
