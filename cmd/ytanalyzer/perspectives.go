package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/ytanalyzer/internal/model"
)

// NewPerspectivesCmd creates the perspectives command.
func NewPerspectivesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "perspectives",
		Short: "List the perspectives of the critical analysis",
		Long: `Perspectives lists the analytical lenses the backend offers for the
critical analysis. Pass an id to 'ytanalyzer critical --perspective'.`,
		Args: cobra.NoArgs,
		RunE: runPerspectivesCmd,
	}
}

// runPerspectivesCmd executes the perspectives command.
func runPerspectivesCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	return printPerspectives(ctx, a)
}

// printPerspectives lists the backend's perspectives. When the backend
// cannot be reached the built-in ids are listed instead.
func printPerspectives(ctx context.Context, a *app) error {
	resp := a.client.Perspectives(ctx)
	perspectives := resp.Data
	if err := resp.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.logger.Warn("failed to fetch perspectives, using built-in list", "error", err)
		perspectives = builtinPerspectives()
	}
	if len(perspectives) == 0 {
		perspectives = builtinPerspectives()
	}

	fmt.Fprintf(a.out, "Perspectives (%d):\n\n", len(perspectives))
	for _, p := range perspectives {
		marker := " "
		if p.ID == model.DefaultPerspective {
			marker = "*"
		}
		fmt.Fprintf(a.out, " %s %-18s  %s\n", marker, p.ID, perspectiveLabel(p))
	}
	fmt.Fprintln(a.out, "\n  * backend default")
	return nil
}

// builtinPerspectives turns model.KnownPerspectives into list entries.
func builtinPerspectives() []model.Perspective {
	out := make([]model.Perspective, 0, len(model.KnownPerspectives))
	for _, id := range model.KnownPerspectives {
		out = append(out, model.Perspective{ID: id})
	}
	return out
}

// perspectiveLabel joins the name and description of p.
func perspectiveLabel(p model.Perspective) string {
	var parts []string
	if name := strings.TrimSpace(p.Name); name != "" {
		parts = append(parts, name)
	}
	if desc := strings.TrimSpace(p.Description); desc != "" {
		parts = append(parts, desc)
	}
	return strings.Join(parts, " - ")
}
