package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nao1215/ytanalyzer/internal/api"
	"github.com/nao1215/ytanalyzer/internal/config"
	"github.com/nao1215/ytanalyzer/internal/database"
)

// titleColumnRunes is the width of the title column in history listings.
const titleColumnRunes = 40

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or delete past analyses",
		Long: `History lists the analyses stored by the backend, newest first.

With --local the local cache is listed instead, including how far each
analysis has progressed. --delete removes an analysis from the backend and
from the local cache; documents already exported are left on disk.

Examples:
  # First page
  ytanalyzer history

  # Second page of 50
  ytanalyzer history --limit 50 --offset 50

  # Analyses cached on this machine
  ytanalyzer history --local

  # Delete an analysis
  ytanalyzer history --delete 3f6c1a2e`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", config.DefaultHistoryLimit,
		fmt.Sprintf("Number of entries per page (1-%d)", config.MaxHistoryLimit))
	cmd.Flags().Int("offset", 0,
		"Number of entries to skip")
	cmd.Flags().StringP("delete", "d", "",
		"Delete the analysis with this id")
	cmd.Flags().Bool("local", false,
		"List the local cache instead of the backend history")
	cmd.Flags().BoolP("json", "j", false,
		"Output entries as JSON")
	cmd.MarkFlagsMutuallyExclusive("delete", "local")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	deleteID, err := cmd.Flags().GetString("delete")
	if err != nil {
		return err
	}
	local, err := cmd.Flags().GetBool("local")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	offset, err := cmd.Flags().GetInt("offset")
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	limit := a.cfg.HistoryLimit
	if cmd.Flags().Changed("limit") {
		if limit, err = cmd.Flags().GetInt("limit"); err != nil {
			return err
		}
	}
	limit, offset = api.ClampPage(limit, offset)

	ctx, cancel := signalContext(cmd)
	defer cancel()

	switch {
	case strings.TrimSpace(deleteID) != "":
		return deleteAnalysis(ctx, a, strings.TrimSpace(deleteID))
	case local:
		return listLocalHistory(ctx, a, limit, offset, jsonOutput)
	default:
		return listRemoteHistory(ctx, a, limit, offset, jsonOutput)
	}
}

// listRemoteHistory prints one page of the backend history.
func listRemoteHistory(ctx context.Context, a *app, limit, offset int, jsonOutput bool) error {
	resp := a.client.History(ctx, limit, offset)
	if err := resp.Err(); err != nil {
		return err
	}
	items := resp.Data

	if jsonOutput {
		return writeJSON(a, items)
	}

	if len(items) == 0 {
		fmt.Fprintln(a.out, "No analyses found.")
		fmt.Fprintln(a.out, "\nUse 'ytanalyzer analyze <video-url>' to analyze a video.")
		return nil
	}

	fmt.Fprintf(a.out, "Analysis history (%s):\n\n", pageLabel(offset, len(items), resp.Total))
	fmt.Fprintf(a.out, "  %-36s  %-14s  %-20s  %s\n", "ID", "Created", "Channel", "Title")
	fmt.Fprintln(a.out, "  "+strings.Repeat("-", 100))
	for _, item := range items {
		fmt.Fprintf(a.out, "  %-36s  %-14s  %-20s  %s\n",
			item.ID,
			relativeTime(item.CreatedAt),
			clip(item.ChannelName, 20),
			clip(item.VideoTitle, titleColumnRunes),
		)
	}

	if resp.Total > offset+len(items) {
		fmt.Fprintf(a.out, "\nNext page: ytanalyzer history --limit %d --offset %d\n", limit, offset+len(items))
	}
	fmt.Fprintln(a.out, "\nUse 'ytanalyzer show <id>' to see an analysis.")
	return nil
}

// listLocalHistory prints one page of the local cache.
func listLocalHistory(ctx context.Context, a *app, limit, offset int, jsonOutput bool) error {
	if a.store == nil {
		return errors.New("--local needs the local cache (remove --no-cache)")
	}

	results, err := a.store.ListResults(ctx, limit, offset)
	if err != nil {
		return err
	}
	total, err := a.store.CountResults(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		if results == nil {
			results = []database.ResultMetadata{}
		}
		return writeJSON(a, results)
	}

	if len(results) == 0 {
		fmt.Fprintln(a.out, "No cached analyses found.")
		return nil
	}

	fmt.Fprintf(a.out, "Cached analyses (%s) in %s:\n\n", pageLabel(offset, len(results), total), a.store.Path())
	fmt.Fprintf(a.out, "  %-36s  %-14s  %-10s  %-6s  %s\n", "ID", "Fetched", "Stage", "Judg.", "Title")
	fmt.Fprintln(a.out, "  "+strings.Repeat("-", 100))
	for _, meta := range results {
		fmt.Fprintf(a.out, "  %-36s  %-14s  %-10s  %-6s  %s\n",
			meta.AnalysisID,
			humanize.Time(meta.FetchedAt),
			meta.Stage,
			orDash(meta.Judgment),
			clip(meta.Title, titleColumnRunes),
		)
	}
	return nil
}

// deleteAnalysis removes id from the backend and then from the local cache.
func deleteAnalysis(ctx context.Context, a *app, id string) error {
	resp := a.client.DeleteHistory(ctx, id)
	if err := resp.Err(); err != nil {
		return err
	}

	if a.store != nil {
		if _, err := a.store.DeleteResult(ctx, id); err != nil {
			a.logger.Warn("failed to remove cached analysis", "analysis_id", id, "error", err)
		}
	}

	fmt.Fprintf(a.out, "Deleted analysis %s\n", id)
	return nil
}

// writeJSON prints v as indented JSON.
func writeJSON(a *app, v any) error {
	encoder := json.NewEncoder(a.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// pageLabel describes the rows shown, e.g. "21-40 of 57".
func pageLabel(offset, n, total int) string {
	if n == 0 {
		return "none"
	}
	label := fmt.Sprintf("%d-%d", offset+1, offset+n)
	if total > 0 {
		label += " of " + humanize.Comma(int64(total))
	}
	return label
}

// createdAtLayouts are the timestamp formats the backend has used.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
}

// relativeTime renders a backend timestamp as "3 hours ago". Values that
// cannot be parsed are shown as they are.
func relativeTime(s string) string {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return humanize.Time(t)
		}
	}
	return orDash(s)
}

// clip shortens s to n runes for a table column.
func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// orDash returns "-" for an empty string.
func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
