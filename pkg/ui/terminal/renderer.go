// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/claudesync/pkg/commands"
	"github.com/arthur-debert/claudesync/pkg/errors"
	"github.com/arthur-debert/claudesync/pkg/types"
	"github.com/arthur-debert/claudesync/pkg/ui/output/styles"
	"github.com/arthur-debert/claudesync/pkg/ui/view"
)

// Renderer provides rich terminal output using lipgloss styles
type Renderer struct {
	output io.Writer
}

// New creates a new terminal renderer
func New(w io.Writer) (*Renderer, error) {
	return &Renderer{output: w}, nil
}

// RenderResult renders any result type with rich terminal formatting
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *commands.Result:
		return r.write(renderReport(view.FromResult(v)))
	case *commands.GenConfigResult:
		if v.Written != "" {
			return r.write(styles.GetStyle("Success").Render("Wrote") + " " +
				styles.GetStyle("Path").Render(v.Written) + "\n")
		}
		if v.Skipped {
			return r.write(styles.GetStyle("Warning").Render("Config file already exists, not overwritten") + "\n")
		}
		return r.write(v.Content + "\n")
	case *view.Version:
		return r.write(fmt.Sprintf("%s %s %s\n",
			styles.GetStyle("Bold").Render("claudesync"),
			v.Version,
			styles.GetStyle("Muted").Render(fmt.Sprintf("(commit %s, built %s)", v.Commit, v.Date))))
	default:
		return r.write(fmt.Sprintf("%+v\n", result))
	}
}

func renderReport(v *view.Report) string {
	var b strings.Builder

	if v.DryRun {
		b.WriteString(styles.GetStyle("DryRunBanner").Render("DRY RUN, nothing was written"))
		b.WriteString("\n")
	}

	b.WriteString(styles.GetStyle("Header").Render(v.Command))
	b.WriteString(" ")
	b.WriteString(styles.GetStyle("Path").Render(v.Source))
	b.WriteString(styles.GetStyle("Muted").Render(" -> "))
	b.WriteString(styles.GetStyle("Path").Render(v.Destination))
	b.WriteString("\n")

	for _, item := range v.Items {
		b.WriteString("  ")
		b.WriteString(styles.GetStyle("Item").Render(item.Path))
		b.WriteString(" ")
		b.WriteString(styles.ForStatus(types.SyncStatus(item.Status)).Render(item.Status))
		b.WriteString(" ")
		if item.Status == types.StatusFailed.String() {
			b.WriteString(styles.GetStyle("Error").Render(item.Explain()))
		} else {
			b.WriteString(styles.GetStyle("Detail").Render(item.Explain()))
		}
		b.WriteString("\n")
	}

	for _, warning := range v.Warnings {
		b.WriteString(styles.GetStyle("Warning").Render("! " + warning))
		b.WriteString("\n")
	}
	for _, path := range v.Normalized {
		b.WriteString(styles.GetStyle("Muted").Render("made executable: "))
		b.WriteString(styles.GetStyle("Path").Render(path))
		b.WriteString("\n")
	}
	if v.NormalizeError != "" {
		b.WriteString(styles.GetStyle("Error").Render("permissions: " + v.NormalizeError))
		b.WriteString("\n")
	}

	summaryStyle := styles.GetStyle("Success")
	if v.ExitCode != view.ExitOK {
		summaryStyle = styles.GetStyle("Error")
	}
	b.WriteString(summaryStyle.Render(v.SummaryLine()))
	b.WriteString("\n")

	return b.String()
}

func (r *Renderer) write(s string) error {
	_, err := io.WriteString(r.output, s)
	return err
}

// RenderError renders an error with appropriate formatting
func (r *Renderer) RenderError(err error) error {
	label := "Error"
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		label = "Error [" + string(code) + "]"
	}
	return r.write(styles.GetStyle("Error").Render(label+":") + " " + err.Error() + "\n")
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	return r.write(msg + "\n")
}
