package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nao1215/ytanalyzer/internal/config"
	"github.com/nao1215/ytanalyzer/internal/pipeline"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <analysis-id>...",
		Short: "Save analyses as Markdown documents",
		Long: `Export writes the Markdown document of one or more analyses to a directory.

Documents are named "<title>_<date>_분석결과.md". An existing file is never
overwritten; a numbered name is chosen instead. A document whose content has
not changed since its last export is skipped unless --force is given.

Several analyses are exported concurrently (see --batch).

Examples:
  # Export into the current directory
  ytanalyzer export 3f6c1a2e

  # Export three analyses into ./docs, two at a time
  ytanalyzer export -o ./docs --batch 2 3f6c1a2e 9b07d4c1 c2e8a5f0

  # Export from the local cache without contacting the backend
  ytanalyzer export --offline 3f6c1a2e

  # List the documents already written for an analysis
  ytanalyzer export --log 3f6c1a2e`,
		Args: cobra.MinimumNArgs(1),
		RunE: runExportCmd,
	}

	cmd.Flags().StringP("output", "o", "",
		"Output directory (default: output_dir from config)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatch,
		"Number of concurrent exports")
	cmd.Flags().BoolP("force", "f", false,
		"Write a new file even if the document is unchanged")
	cmd.Flags().Bool("offline", false,
		"Read analyses from the local cache only")
	cmd.Flags().Bool("log", false,
		"List previous exports instead of exporting")
	cmd.MarkFlagsMutuallyExclusive("log", "force")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, args []string) error {
	outputDir, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	offline, err := cmd.Flags().GetBool("offline")
	if err != nil {
		return err
	}
	showLog, err := cmd.Flags().GetBool("log")
	if err != nil {
		return err
	}

	ids := uniqueIDs(args)
	if len(ids) == 0 {
		return errMissingID
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	batch := a.cfg.Batch
	if cmd.Flags().Changed("batch") {
		if batch, err = cmd.Flags().GetInt("batch"); err != nil {
			return err
		}
		if batch <= 0 {
			return fmt.Errorf("configuration error: %w", config.ErrInvalidBatch)
		}
	}
	if showLog {
		return printExportLog(cmd, a, ids)
	}
	if outputDir == "" {
		outputDir = a.cfg.OutputDir
	}
	if offline && a.store == nil {
		return fmt.Errorf("--offline needs the local cache (remove --no-cache)")
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	pl := a.plan()
	pl.Fetch = true
	pl.Offline = offline
	pl.ExportDir = outputDir
	pl.Force = force

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline { return pl.Build(a.client) },
		pipeline.WithConcurrency(batch),
		pipeline.WithBatchLogger(a.logger),
	)

	startTime := time.Now()

	var (
		mu                     sync.Mutex
		saved, skipped, failed int
		written                uint64
	)
	err = bp.ProcessBatchWithCallback(ctx, ids, func(job *pipeline.Job, index int) {
		mu.Lock()
		defer mu.Unlock()

		prefix := fmt.Sprintf("[%d/%d]", index+1, len(ids))
		switch {
		case job.Err != nil:
			failed++
			fmt.Fprintf(a.out, "%s %s: %v\n", prefix, job.AnalysisID, job.Err)
		case job.ExportSkipped:
			skipped++
			fmt.Fprintf(a.out, "%s %s: unchanged, kept %s\n", prefix, job.AnalysisID, job.ExportPath)
		default:
			saved++
			size := fileSize(job.ExportPath)
			written += size
			fmt.Fprintf(a.out, "%s %s: saved %s (%s)\n", prefix, job.AnalysisID, job.ExportPath, humanize.Bytes(size))
		}
	})

	fmt.Fprintf(a.out, "\nExported %d, unchanged %d, failed %d (%s written in %s)\n",
		saved, skipped, failed, humanize.Bytes(written), time.Since(startTime).Round(time.Millisecond))

	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d exports failed", failed, len(ids))
	}
	return nil
}

// printExportLog lists the recorded exports of each analysis, newest first.
func printExportLog(cmd *cobra.Command, a *app, ids []string) error {
	if a.store == nil {
		return errors.New("--log needs the local cache (remove --no-cache)")
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	for i, id := range ids {
		exports, err := a.store.ListExports(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to read export log: %w", err)
		}
		if i > 0 {
			fmt.Fprintln(a.out)
		}
		if len(exports) == 0 {
			fmt.Fprintf(a.out, "%s: no exports recorded\n", id)
			continue
		}
		fmt.Fprintf(a.out, "%s: %d export(s)\n", id, len(exports))
		for _, e := range exports {
			fmt.Fprintf(a.out, "  %-10s  %-8s  %8s  %s\n",
				humanize.Time(e.ExportedAt), orDash(e.Stage), humanize.Bytes(uint64(max(e.Size, 0))), e.Path)
		}
	}
	return nil
}

// uniqueIDs trims ids and drops empty and repeated ones, keeping order.
func uniqueIDs(args []string) []string {
	ids := make([]string, 0, len(args))
	for _, arg := range args {
		id := strings.TrimSpace(arg)
		if id == "" || slices.Contains(ids, id) {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// fileSize returns the size of path, or 0 if it cannot be read.
func fileSize(path string) uint64 {
	info, err := os.Stat(path)
	if err != nil || info.Size() < 0 {
		return 0
	}
	return uint64(info.Size())
}
