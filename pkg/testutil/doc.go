// Package testutil provides helpers for claudesync tests: synthetic live and
// mirror roots on either an in-memory or a temp-dir filesystem, and an afero
// wrapper that injects permission errors below chosen paths.
package testutil
