// Package version holds build information injected at link time.
package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/arthur-debert/claudesync/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/arthur-debert/claudesync/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/arthur-debert/claudesync/internal/version.Date={{.Date}}
)
