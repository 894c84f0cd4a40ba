package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/ytanalyzer/internal/pipeline"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <video-url>",
		Short: "Submit a YouTube video for analysis",
		Long: `Analyze submits a video URL to the backend and prints the initial analysis.

The backend answers with a cached result when the video was analyzed before.
With --full the critical and additional analyses are requested as well, as
long as the video is judged suitable.

Examples:
  # Run the initial analysis
  ytanalyzer analyze https://www.youtube.com/watch?v=dQw4w9WgXcQ

  # Run all three stages with a specific perspective and save the document
  ytanalyzer analyze --full -p value_investing --export https://youtu.be/dQw4w9WgXcQ

  # Print the raw aggregate
  ytanalyzer analyze --json https://youtu.be/dQw4w9WgXcQ`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().BoolP("full", "F", false,
		"Also request the critical and additional analyses")
	cmd.Flags().StringP("perspective", "p", "",
		"Perspective for the critical analysis (used with --full)")
	cmd.Flags().BoolP("export", "e", false,
		"Save the Markdown document to the output directory")
	cmd.Flags().StringP("output", "o", "",
		"Output directory for --export (default: output_dir from config)")
	cmd.Flags().BoolP("json", "j", false,
		"Print the aggregate as JSON")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	videoURL := strings.TrimSpace(args[0])
	if videoURL == "" {
		return errors.New("video URL is required")
	}

	full, err := cmd.Flags().GetBool("full")
	if err != nil {
		return err
	}
	perspective, err := cmd.Flags().GetString("perspective")
	if err != nil {
		return err
	}
	export, err := cmd.Flags().GetBool("export")
	if err != nil {
		return err
	}
	outputDir, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	pl := a.plan()
	pl.Analyze = true
	if full {
		pl.Critical = true
		pl.Additional = true
		pl.Perspective = a.cfg.Perspective
	}
	if export {
		pl.ExportDir = outputDir
		if pl.ExportDir == "" {
			pl.ExportDir = a.cfg.OutputDir
		}
	}

	job := pipeline.NewURLJob(videoURL)
	job.Perspective = perspective

	runErr := a.run(ctx, pl, job)

	// Whatever stages completed before a failure are still shown.
	if job.Result != nil {
		if job.Cached && !jsonOutput {
			fmt.Fprintln(a.out, "(cached result)")
		}
		if err := writeResult(a.out, job.Result, jsonOutput, a.cfg.Verbose); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}
	if !jsonOutput {
		printExport(a, job)
	}
	return nil
}

// printExport reports where the document of job was saved.
func printExport(a *app, job *pipeline.Job) {
	switch {
	case job.ExportSkipped:
		fmt.Fprintf(a.out, "Document unchanged, kept %s\n", job.ExportPath)
	case job.ExportPath != "":
		fmt.Fprintf(a.out, "Saved %s\n", job.ExportPath)
	}
}
