package summarizer

import (
	"fmt"
	"strings"

	"github.com/user/vidaction/pkg/display"
	"github.com/user/vidaction/pkg/ports"
)

// Option configures a MarkdownFormatter.
type Option func(*MarkdownFormatter)

// WithTranslator sets the function used to translate headings and labels.
func WithTranslator(t func(string) string) Option {
	return func(f *MarkdownFormatter) {
		f.t = t
	}
}

// WithVersion sets the tool version printed in the header.
func WithVersion(version string) Option {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// MarkdownFormatter renders a Summary as Markdown.
type MarkdownFormatter struct {
	t       func(string) string
	version string
}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter(opts ...Option) *MarkdownFormatter {
	f := &MarkdownFormatter{
		t: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements the Formatter interface.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder
	t := f.t

	fmt.Fprintf(&b, "# %s\n\n", t("Classification Summary"))
	fmt.Fprintf(&b, "%s: %s", t("Generated"), s.GeneratedAt.Format("2006-01-02 15:04:05"))
	if f.version != "" {
		fmt.Fprintf(&b, " (vidaction %s)", f.version)
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Video"))
	writeTableHeader(&b, t("Item"), t("Value"))
	writeRow(&b, t("Path"), s.Video.Path)
	writeRow(&b, t("Duration"), display.FormatSeconds(s.Video.DurationMs)+" s")
	if s.Video.FileSize > 0 {
		writeRow(&b, t("File Size"), formatBytes(s.Video.FileSize))
	}
	writeRow(&b, t("Rotation Hint"), fmt.Sprintf("%d°", s.Video.RotationHint))
	writeStreamRows(&b, t, s.Video.Stream)
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	writeTableHeader(&b, t("Item"), t("Value"))
	writeRow(&b, t("Sampling Rate"), fmt.Sprintf("%d fps (%d ms)", s.Settings.FPS, s.Settings.StepMs))
	writeRow(&b, t("Reset After"), fmt.Sprintf("%d ms", s.Settings.ResetAfterMs))
	writeRow(&b, t("Max Results"), fmt.Sprintf("%d", s.Settings.MaxResults))
	writeRow(&b, t("Rotation"), s.Settings.Rotation)
	if s.Settings.Classifier != "" {
		writeRow(&b, t("Classifier"), fmt.Sprintf("%s (%d %s)", s.Settings.Classifier, s.Settings.NumThreads, t("threads")))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Run"))
	writeTableHeader(&b, t("Item"), t("Value"))
	writeRow(&b, t("Ticks"), fmt.Sprintf("%d", s.Run.Ticks))
	writeRow(&b, t("Frames Classified"), fmt.Sprintf("%d", s.Run.FramesClassified))
	writeRow(&b, t("Decode Failures"), fmt.Sprintf("%d", s.Run.DecodeFailures))
	writeRow(&b, t("Resets"), fmt.Sprintf("%d", s.Run.Resets))
	writeRow(&b, t("Elapsed"), fmt.Sprintf("%d ms", s.Run.ElapsedMs))
	status := t("Completed")
	if s.Run.Cancelled {
		status = t("Cancelled")
	}
	writeRow(&b, t("Status"), status)
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Detections"))
	if len(s.Detections) == 0 {
		fmt.Fprintf(&b, "_%s_\n", t("No detections"))
		return b.String()
	}
	for _, d := range s.Detections {
		fmt.Fprintf(&b, "### %s s\n\n", display.FormatSeconds(d.TimestampMs))
		if !d.Known() {
			fmt.Fprintf(&b, "_%s_\n\n", t("No results"))
			continue
		}
		writeTableHeader(&b, t("Class"), t("Score"))
		for _, c := range d.Categories {
			writeRow(&b, c.Label, display.FormatScore(c.Score))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeTableHeader(b *strings.Builder, left, right string) {
	fmt.Fprintf(b, "| %s | %s |\n|---|---|\n", left, right)
}

func writeRow(b *strings.Builder, left, right string) {
	fmt.Fprintf(b, "| %s | %s |\n", escapeCell(left), escapeCell(right))
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// formatBytes renders a byte count with binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %s", float64(n)/float64(div), []string{"KB", "MB", "GB"}[exp])
}

// Ensure MarkdownFormatter implements Formatter
var _ Formatter = (*MarkdownFormatter)(nil)

func writeStreamRows(b *strings.Builder, t func(string) string, st ports.StreamInfo) {
	if st.Codec != "" {
		writeRow(b, t("Codec"), st.Codec)
	}
	if st.Width > 0 && st.Height > 0 {
		writeRow(b, t("Resolution"), fmt.Sprintf("%dx%d", st.Width, st.Height))
	}
	if st.FrameCount > 0 {
		writeRow(b, t("Frames"), fmt.Sprintf("%d", st.FrameCount))
	}
	if st.Keyframes > 0 {
		writeRow(b, t("Keyframes"), fmt.Sprintf("%d", st.Keyframes))
	}
}
