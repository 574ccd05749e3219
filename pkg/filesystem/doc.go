// Package filesystem provides the copy primitives used by the sync engine.
//
// All functions operate on an afero.Fs so the engine can run against the
// real OS filesystem in production and against afero.NewMemMapFs (or a
// fault-injecting wrapper) in tests.
//
// Symbolic links found inside a copied tree are followed: the link target's
// content is written as a regular file or directory at the destination.
// Link identity is not preserved.
package filesystem
