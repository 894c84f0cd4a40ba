package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/ytanalyzer/internal/pipeline"
)

// NewCriticalCmd creates the critical command.
func NewCriticalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "critical <analysis-id>",
		Short: "Request the critical analysis of a video",
		Long: `Critical requests the second stage: hidden premises, contradictions,
hooking points and a content direction, seen through one perspective.

The request is refused before contacting the analysis service when the
initial analysis judged the video unsuitable. Without --perspective (and no
perspective in the configuration file) the available perspectives are
listed instead. Running it again with another perspective replaces the
previous critical analysis.

Examples:
  # List the perspectives
  ytanalyzer critical 3f6c1a2e

  # Request the critical analysis
  ytanalyzer critical -p auto_trading 3f6c1a2e`,
		Args: cobra.ExactArgs(1),
		RunE: runCriticalCmd,
	}

	cmd.Flags().StringP("perspective", "p", "",
		"Perspective id (see 'ytanalyzer perspectives')")
	addStageFlags(cmd)

	return cmd
}

// addStageFlags adds the output flags shared by critical and additional.
func addStageFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("export", "e", false,
		"Save the Markdown document to the output directory")
	cmd.Flags().StringP("output", "o", "",
		"Output directory for --export (default: output_dir from config)")
	cmd.Flags().BoolP("json", "j", false,
		"Print the aggregate as JSON")
}

// stageFlags holds the values of addStageFlags.
type stageFlags struct {
	export    bool
	outputDir string
	json      bool
}

func readStageFlags(cmd *cobra.Command) (stageFlags, error) {
	var (
		sf  stageFlags
		err error
	)
	if sf.export, err = cmd.Flags().GetBool("export"); err != nil {
		return sf, err
	}
	if sf.outputDir, err = cmd.Flags().GetString("output"); err != nil {
		return sf, err
	}
	if sf.json, err = cmd.Flags().GetBool("json"); err != nil {
		return sf, err
	}
	return sf, nil
}

// applyExport sets the export directory of pl when --export was given.
func (sf stageFlags) applyExport(pl *pipeline.Plan, a *app) {
	if !sf.export {
		return
	}
	pl.ExportDir = sf.outputDir
	if pl.ExportDir == "" {
		pl.ExportDir = a.cfg.OutputDir
	}
}

// runCriticalCmd executes the critical command.
func runCriticalCmd(cmd *cobra.Command, args []string) error {
	id, err := analysisID(args)
	if err != nil {
		return err
	}
	perspective, err := cmd.Flags().GetString("perspective")
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

	perspective = strings.TrimSpace(perspective)
	if perspective == "" {
		perspective = a.cfg.Perspective
	}

	job := pipeline.NewJob(id)

	if perspective == "" {
		// Check the gate first so an unsuitable video is reported
		// instead of a perspective list it cannot use.
		pl := a.plan()
		pl.Fetch = true
		if err := a.run(ctx, pl, job); err != nil {
			return err
		}
		if err := pipeline.CheckCritical(job.Result); err != nil {
			return err
		}
		if err := printPerspectives(ctx, a); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "\nChoose one with: ytanalyzer critical --perspective <id> %s\n", id)
		return nil
	}

	pl := a.plan()
	pl.Critical = true
	pl.Perspective = perspective
	sf.applyExport(&pl, a)

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
