package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nao1215/ytanalyzer/internal/model"
)

// SimpleWriter outputs a short human-readable summary for the terminal.
// It shows the video, how far the analysis has progressed and what the
// user can do next, without the full document body.
type SimpleWriter struct {
	baseWriter

	// verbose adds key points and the critical insights.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary.
func (w *SimpleWriter) Write(result *model.AnalysisResult) (int, error) {
	if result == nil {
		return io.WriteString(w.output, "No analysis result\n")
	}

	var sb strings.Builder
	w.writeHeader(&sb, result)
	w.writeProgress(&sb, result)
	if w.verbose {
		w.writeDetails(&sb, result)
	}
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// writeHeader writes the video information block.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, r *model.AnalysisResult) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "%s\n", orDash(inline(r.VideoTitle)))
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "ID:        %s\n", orDash(r.ID))
	fmt.Fprintf(sb, "Channel:   %s\n", orDash(inline(r.ChannelName)))
	fmt.Fprintf(sb, "URL:       %s\n", orDash(r.VideoURL))
	if r.ViewCount > 0 {
		fmt.Fprintf(sb, "Views:     %s\n", humanize.Comma(r.ViewCount))
	}
	if r.SubscriberCount > 0 {
		fmt.Fprintf(sb, "Subs:      %s", humanize.Comma(r.SubscriberCount))
		if r.ViewSubRatio > 0 {
			fmt.Fprintf(sb, " (views/subs %s)", percent(r.ViewSubRatio))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// writeProgress writes the completed stage, the suitability verdict and
// the next available step.
func (w *SimpleWriter) writeProgress(sb *strings.Builder, r *model.AnalysisResult) {
	stage := r.CompletedStage()
	fmt.Fprintf(sb, "Stage:     %s\n", stage)
	if s := r.SuitabilityAnalysis; s != nil {
		fmt.Fprintf(sb, "Judgment:  %s", orDash(string(s.Judgment)))
		if lv := levelOf(s.SuitabilityScore); lv != "" {
			fmt.Fprintf(sb, " (%s)", lv)
		}
		sb.WriteString("\n")
		if s.Judgment.IsUnsuitable() && s.UnsuitableReason != "" {
			fmt.Fprintf(sb, "Reason:    %s\n", inline(s.UnsuitableReason))
		}
	}
	if ca := r.CriticalAnalysis; ca != nil {
		fmt.Fprintf(sb, "Lens:      %s\n", orDash(perspectiveName(ca, r.Perspective)))
	}

	switch {
	case stage == model.StageInitial && r.Judgment().IsUnsuitable():
		sb.WriteString("Next:      none (topic unsuitable for critical analysis)\n")
	case stage == model.StageInitial:
		sb.WriteString("Next:      ytanalyzer critical " + r.ID + "\n")
	case stage == model.StageCritical:
		sb.WriteString("Next:      ytanalyzer additional " + r.ID + "\n")
	}
	sb.WriteString("\n")
}

// writeDetails writes the key message and key points.
func (w *SimpleWriter) writeDetails(sb *strings.Builder, r *model.AnalysisResult) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	if msg := inline(r.KeyMessage); msg != "" {
		fmt.Fprintf(sb, "%s\n\n", msg)
	}
	for _, p := range r.KeyPoints {
		if p = inline(p); p != "" {
			fmt.Fprintf(sb, "  * %s\n", p)
		}
	}
	if ca := r.CriticalAnalysis; ca != nil {
		for _, s := range ca.PerspectiveInsights {
			if s = inline(s); s != "" {
				fmt.Fprintf(sb, "  > %s\n", s)
			}
		}
	}
	sb.WriteString("\n")
}
