// Package types defines the value types shared by the manifest, the sync
// engine and the reporters: sync directions, manifest items with their
// kinds, and per-item statuses.
package types
