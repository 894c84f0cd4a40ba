package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/ytanalyzer/internal/pipeline"
)

// NewAdditionalCmd creates the additional command.
func NewAdditionalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "additional <analysis-id>",
		Short: "Request the additional analysis of a video",
		Long: `Additional requests the third stage: thumbnail and title ideas, video
length and script direction, interview clips, B-roll keywords, generation
prompts and a performance prediction.

The critical analysis must be completed first.

Examples:
  ytanalyzer additional 3f6c1a2e

  # Save the complete document afterwards
  ytanalyzer additional --export -o ./docs 3f6c1a2e`,
		Args: cobra.ExactArgs(1),
		RunE: runAdditionalCmd,
	}

	addStageFlags(cmd)

	return cmd
}

// runAdditionalCmd executes the additional command.
func runAdditionalCmd(cmd *cobra.Command, args []string) error {
	id, err := analysisID(args)
	if err != nil {
		return err
	}
	sf, err := readStageFlags(cmd)
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
	pl.Additional = true
	sf.applyExport(&pl, a)

	job := pipeline.NewJob(id)
	if err := a.run(ctx, pl, job); err != nil {
		return err
	}
	if err := writeResult(a.out, job.Result, sf.json, a.cfg.Verbose); err != nil {
		return err
	}
	if !sf.json {
		printExport(a, job)
	}
	return nil
}
