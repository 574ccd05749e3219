// Package commands provides high-level command implementations for claudesync.
//
// This package is the orchestration layer between the CLI and the sync
// engine. A command resolves the two roots, runs the engine in the right
// direction and, for restores, repairs script permissions afterwards. It
// returns a Result for the ui package to render; it never prints.
//
//   - Backup    - capture the live root into the project mirror
//   - Restore   - apply the project mirror onto the live root
//   - GenConfig - print or write the default configuration
//   - Resolve   - load configuration and resolve both roots
package commands
