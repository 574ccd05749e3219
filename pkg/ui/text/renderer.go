// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"

	"github.com/arthur-debert/claudesync/pkg/commands"
	"github.com/arthur-debert/claudesync/pkg/ui/view"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

// RenderResult renders any result type as plain text
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *commands.Result:
		return r.renderReport(view.FromResult(v))
	case *commands.GenConfigResult:
		if v.Written != "" {
			return r.RenderMessage("Wrote " + v.Written)
		}
		if v.Skipped {
			return r.RenderMessage("Config file already exists, not overwritten")
		}
		_, err := fmt.Fprintln(r.output, v.Content)
		return err
	case *view.Version:
		_, err := fmt.Fprintf(r.output, "claudesync %s (commit %s, built %s)\n", v.Version, v.Commit, v.Date)
		return err
	default:
		// For unknown types, just print them
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
}

func (r *Renderer) renderReport(v *view.Report) error {
	w := &errWriter{w: r.output}

	w.printf("%s %s -> %s\n", v.Command, v.Source, v.Destination)
	for _, item := range v.Items {
		w.printf("  %-16s %-18s %s\n", item.Path, item.Status, item.Explain())
	}
	for _, warning := range v.Warnings {
		w.printf("warning: %s\n", warning)
	}
	for _, path := range v.Normalized {
		w.printf("made executable: %s\n", path)
	}
	if v.NormalizeError != "" {
		w.printf("permissions: %s\n", v.NormalizeError)
	}
	w.printf("%s\n", v.SummaryLine())

	return w.err
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, err2 := fmt.Fprintf(r.output, "Error: %v\n", err)
	return err2
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}

// errWriter keeps the first write error so a report can be printed
// without checking every line.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
