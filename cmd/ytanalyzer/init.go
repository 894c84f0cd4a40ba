package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/ytanalyzer/internal/config"
)

//go:embed templates/ytanalyzer.yaml
var configTemplate embed.FS

// templatePath is the path of the configuration template in configTemplate.
const templatePath = "templates/ytanalyzer.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new ytanalyzer configuration file",
		Long: `Initialize creates a new .ytanalyzer configuration file in the current directory.

The generated file includes:
- The backend URL and request timeout
- Export directory, default perspective and history page size
- Settings of the local preview server and cache
- Documentation for all available options

Examples:
  # Create .ytanalyzer in current directory
  ytanalyzer init

  # Create the file in the XDG config directory
  ytanalyzer init --global

  # Create config file at a specific path
  ytanalyzer init -o myconfig.yaml

  # Force overwrite existing file
  ytanalyzer init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")
	cmd.Flags().BoolP("global", "g", false,
		"Write config.yaml to the XDG config directory instead")
	cmd.MarkFlagsMutuallyExclusive("output", "global")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	global, err := cmd.Flags().GetBool("global")
	if err != nil {
		return err
	}
	if global {
		outputPath = filepath.Join(config.XDGConfigDir(), "config.yaml")
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// The file may hold an API token.
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to configure settings such as:")
	fmt.Fprintln(out, "  - The analysis backend URL and token")
	fmt.Fprintln(out, "  - The export directory and default perspective")
	fmt.Fprintln(out, "  - The preview server address")

	return nil
}
