package commands

import (
	"github.com/arthur-debert/claudesync/pkg/sync"
	"github.com/arthur-debert/claudesync/pkg/types"
)

// Result is what a sync command hands to the renderer.
type Result struct {
	// Command is the user-facing verb, "backup" or "restore".
	Command   string
	Direction types.Direction

	LiveRoot    string
	MirrorRoot  string
	ProjectRoot string

	// UsedFallback is set when the project root is the working directory
	// because no git repository was found.
	UsedFallback bool

	Report *sync.Report

	// Normalized lists files, relative to the live root, that were made
	// executable after a restore.
	Normalized []string

	// NormalizeErr joins per-file permission failures.
	NormalizeErr error
}

// HasFailures reports whether any item failed or permissions could not be
// restored.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	if r.Report != nil && r.Report.HasFailures() {
		return true
	}
	return r.NormalizeErr != nil
}
