package types

// Kind tells the engine how to copy a manifest entry.
type Kind string

const (
	// KindFile is a single file copied byte for byte, overwriting.
	KindFile Kind = "file"

	// KindDirectory is a tree that fully replaces the destination subtree.
	KindDirectory Kind = "directory"
)

// String implements fmt.Stringer
func (k Kind) String() string {
	return string(k)
}

// SyncItem is one manifest entry. RelativePath is the same under both roots.
type SyncItem struct {
	RelativePath string `json:"path" yaml:"path"`
	Kind         Kind   `json:"kind" yaml:"kind"`

	// RequiredOnSource marks entries whose absence is reported as a warning.
	// Absence is never fatal; the item is skipped either way.
	RequiredOnSource bool `json:"required_on_source,omitempty" yaml:"required_on_source,omitempty"`
}

// SyncStatus is the outcome of processing one SyncItem.
type SyncStatus string

const (
	// StatusCopied means the destination now mirrors the source.
	StatusCopied SyncStatus = "copied"

	// StatusSkippedMissing means the source path did not exist.
	StatusSkippedMissing SyncStatus = "skipped-missing"

	// StatusFailed means an I/O error stopped this item. Other items are unaffected.
	StatusFailed SyncStatus = "failed"

	// StatusPlanned is only produced by dry runs: the item would be copied.
	StatusPlanned SyncStatus = "planned"
)

// String implements fmt.Stringer
func (s SyncStatus) String() string {
	return string(s)
}
