package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/ytanalyzer/internal/config"
)

// NewRootCmd creates the root command for ytanalyzer.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ytanalyzer",
		Short: "Command-line client for the YouTube video analysis backend",
		Long: `ytanalyzer submits YouTube videos to the analysis backend and works
through its three stages:

  1. initial analysis    summary, key points, quotes, sources, suitability
  2. critical analysis   hidden premises, contradictions, hooking points
  3. additional analysis thumbnails, titles, script and performance ideas

Each stage builds on the previous one. The critical analysis is refused for
videos judged unsuitable, and the additional analysis requires the critical
analysis first.

Results can be exported as Markdown documents or previewed in the browser
with 'ytanalyzer serve'. Fetched analyses are cached in a local database.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .ytanalyzer in current or home directory)")
	cmd.PersistentFlags().String("api-url", "",
		fmt.Sprintf("Analysis backend URL (default %s, env %s)", config.DefaultAPIURL, config.EnvAPIURL))
	cmd.PersistentFlags().String("proxy", "",
		"SOCKS5 proxy for backend requests (host:port)")
	cmd.PersistentFlags().Duration("timeout", config.DefaultTimeout,
		"Timeout for a single backend request")
	cmd.PersistentFlags().String("db-dir", "",
		"Directory of the local cache database (default: XDG data directory)")
	cmd.PersistentFlags().Bool("no-cache", false,
		"Do not read or write the local cache database")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewShowCmd())
	cmd.AddCommand(NewCriticalCmd())
	cmd.AddCommand(NewAdditionalCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewPerspectivesCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
