// Package view flattens command results into the shapes every renderer
// shares. JSON and YAML output encode these structs directly, so their
// field names are a stable contract.
package view

import (
	"fmt"

	"github.com/arthur-debert/claudesync/pkg/commands"
	"github.com/arthur-debert/claudesync/pkg/types"
)

// Exit codes returned by the CLI.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// Item is one manifest entry's outcome.
type Item struct {
	Path        string `json:"path" yaml:"path"`
	Kind        string `json:"kind" yaml:"kind"`
	Status      string `json:"status" yaml:"status"`
	Detail      string `json:"detail,omitempty" yaml:"detail,omitempty"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`
}

// Summary counts items per status.
type Summary struct {
	Copied  int `json:"copied" yaml:"copied"`
	Skipped int `json:"skipped" yaml:"skipped"`
	Failed  int `json:"failed" yaml:"failed"`
	Planned int `json:"planned" yaml:"planned"`
}

// Report is the rendered form of a backup or restore.
type Report struct {
	Command        string   `json:"command" yaml:"command"`
	Direction      string   `json:"direction" yaml:"direction"`
	DryRun         bool     `json:"dry_run" yaml:"dry_run"`
	Source         string   `json:"source" yaml:"source"`
	Destination    string   `json:"destination" yaml:"destination"`
	Items          []Item   `json:"items" yaml:"items"`
	Summary        Summary  `json:"summary" yaml:"summary"`
	Warnings       []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Normalized     []string `json:"normalized,omitempty" yaml:"normalized,omitempty"`
	NormalizeError string   `json:"normalize_error,omitempty" yaml:"normalize_error,omitempty"`
	ExitCode       int      `json:"exit_code" yaml:"exit_code"`
}

// ExitCode is the process exit code for a finished command: failure when
// any item failed or permissions could not be restored. Skipped items do
// not affect it.
func ExitCode(r *commands.Result) int {
	if r.HasFailures() {
		return ExitFailure
	}
	return ExitOK
}

// FromResult builds the report view of a command result.
func FromResult(r *commands.Result) *Report {
	out := &Report{
		Command:   r.Command,
		Direction: r.Direction.String(),
		Items:     []Item{},
		ExitCode:  ExitCode(r),
	}

	if r.UsedFallback {
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("not in a git repository, using %s as the project root", r.ProjectRoot))
	}

	if r.Report != nil {
		out.DryRun = r.Report.DryRun
		out.Source = r.Report.Source
		out.Destination = r.Report.Destination
		out.Summary = Summary{
			Copied:  r.Report.Copied(),
			Skipped: r.Report.Skipped(),
			Failed:  r.Report.Failed(),
			Planned: r.Report.Planned(),
		}

		for _, res := range r.Report.Results {
			out.Items = append(out.Items, Item{
				Path:        res.Item.RelativePath,
				Kind:        res.Item.Kind.String(),
				Status:      res.Status.String(),
				Detail:      res.Detail,
				Error:       res.ErrorMessage(),
				Source:      res.Source,
				Destination: res.Destination,
			})
		}

		for _, w := range r.Report.Warnings() {
			out.Warnings = append(out.Warnings,
				fmt.Sprintf("%s is missing from %s", w.Item.RelativePath, r.Report.Source))
		}
	}

	out.Normalized = r.Normalized
	if r.NormalizeErr != nil {
		out.NormalizeError = r.NormalizeErr.Error()
	}

	return out
}

// SummaryLine is the one-line human summary shared by text and terminal
// output, e.g. "backup: 1 copied, 2 skipped, 0 failed".
func (r *Report) SummaryLine() string {
	if r.DryRun {
		return fmt.Sprintf("%s (dry run): %d planned, %d skipped, %d failed",
			r.Command, r.Summary.Planned, r.Summary.Skipped, r.Summary.Failed)
	}
	return fmt.Sprintf("%s: %d copied, %d skipped, %d failed",
		r.Command, r.Summary.Copied, r.Summary.Skipped, r.Summary.Failed)
}

// Explain returns the text shown after an item's status.
func (i Item) Explain() string {
	if i.Status == types.StatusFailed.String() && i.Error != "" {
		return i.Error
	}
	return i.Detail
}
