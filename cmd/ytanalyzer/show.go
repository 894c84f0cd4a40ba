package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/ytanalyzer/internal/model"
	"github.com/nao1215/ytanalyzer/internal/pipeline"
	"github.com/nao1215/ytanalyzer/internal/report"
)

// NewShowCmd creates the show command.
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <analysis-id>",
		Short: "Show a stored analysis",
		Long: `Show fetches an analysis by id and prints it.

By default a short summary is printed. Use --markdown for the full document
or --json for the raw aggregate. With --offline the analysis is read from
the local cache only.

Examples:
  # Print the summary
  ytanalyzer show 3f6c1a2e

  # Print the full Markdown document
  ytanalyzer show --markdown 3f6c1a2e

  # Write the document to a file
  ytanalyzer show -o report.md 3f6c1a2e

  # Write the aggregate with export metadata
  ytanalyzer show --json -o report.json 3f6c1a2e

  # Read the cached copy without contacting the backend
  ytanalyzer show --offline 3f6c1a2e`,
		Args: cobra.ExactArgs(1),
		RunE: runShowCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output the aggregate as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output the Markdown document (mutually exclusive with --json)")
	cmd.Flags().Bool("offline", false,
		"Read from the local cache only")
	cmd.Flags().StringP("output", "o", "",
		"Write the document to the specified file path (Markdown, or JSON with metadata when --json is given)")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runShowCmd executes the show command.
func runShowCmd(cmd *cobra.Command, args []string) error {
	id, err := analysisID(args)
	if err != nil {
		return err
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	offline, err := cmd.Flags().GetBool("offline")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if offline && a.store == nil {
		return errors.New("--offline needs the local cache (remove --no-cache)")
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	pl := a.plan()
	pl.Fetch = true
	pl.Offline = offline

	job := pipeline.NewJob(id)
	if err := a.run(ctx, pl, job); err != nil {
		if errors.Is(err, pipeline.ErrNoAnalysis) && offline {
			return fmt.Errorf("analysis %s is not in the local cache", id)
		}
		return err
	}

	if outputPath == "" {
		return writeShowOutput(a.out, pl.Formatter, job.Result, jsonOutput, markdownOutput, a.cfg.Verbose)
	}

	f, err := createOutputFile(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	// The file gets the document, the terminal the summary.
	var fileWriter report.Writer = report.NewMarkdownWriter(f, pl.Formatter)
	if jsonOutput {
		fileWriter = report.NewFullJSONWriter(f, getVersion(), report.WithPrettyPrint())
	}
	w := report.NewMultiWriter(fileWriter, report.NewSimpleWriter(a.out, report.WithVerbose(a.cfg.Verbose)))
	if _, err := w.Write(job.Result); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %s\n", outputPath)
	return nil
}

// writeShowOutput writes result in the requested format.
func writeShowOutput(out io.Writer, f *report.Formatter, result *model.AnalysisResult, asJSON, asMarkdown, verbose bool) error {
	if asMarkdown {
		_, err := report.NewMarkdownWriter(out, f).Write(result)
		return err
	}
	return writeResult(out, result, asJSON, verbose)
}

// createOutputFile creates or truncates path, creating parent directories.
// Documents are written with owner-only permissions.
func createOutputFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
