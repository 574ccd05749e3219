package sync

import (
	"github.com/arthur-debert/claudesync/pkg/types"
)

// Result is the outcome of one manifest item.
type Result struct {
	Item        types.SyncItem
	Status      types.SyncStatus
	Source      string
	Destination string

	// Detail is a short human-readable explanation.
	Detail string

	// Err is set only when Status is StatusFailed.
	Err error
}

// ErrorMessage returns Err's text or an empty string.
func (r Result) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Report collects per-item results in manifest order.
type Report struct {
	Direction   types.Direction
	Source      string
	Destination string
	DryRun      bool
	Results     []Result
}

// Count returns how many results have the given status.
func (r *Report) Count(status types.SyncStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Copied returns the number of copied items
func (r *Report) Copied() int { return r.Count(types.StatusCopied) }

// Skipped returns the number of items whose source was missing
func (r *Report) Skipped() int { return r.Count(types.StatusSkippedMissing) }

// Failed returns the number of failed items
func (r *Report) Failed() int { return r.Count(types.StatusFailed) }

// Planned returns the number of items a dry run would copy
func (r *Report) Planned() int { return r.Count(types.StatusPlanned) }

// HasFailures reports whether any item failed.
func (r *Report) HasFailures() bool {
	return r.Failed() > 0
}

// Find returns the result for a manifest path.
func (r *Report) Find(relPath string) (Result, bool) {
	for _, res := range r.Results {
		if res.Item.RelativePath == relPath {
			return res, true
		}
	}
	return Result{}, false
}

// Warnings returns skipped items that were marked as required on the source.
func (r *Report) Warnings() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == types.StatusSkippedMissing && res.Item.RequiredOnSource {
			out = append(out, res)
		}
	}
	return out
}
