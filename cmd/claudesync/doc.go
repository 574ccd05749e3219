// Package claudesync wires the cobra command tree for the claudesync binary.
//
// NewRootCmd is shared by the main binary, the man page generator and the
// completion generator. Commands delegate to pkg/commands and render with
// pkg/ui; they never touch the filesystem directly.
package claudesync
