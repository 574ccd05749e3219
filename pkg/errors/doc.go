// Package errors provides the coded error type used across claudesync.
//
// Every error that reaches the CLI, and every per-item failure recorded in a
// sync report, carries an ErrorCode so callers can branch on the category
// (a fatal CONFIGURATION problem versus a FILE_WRITE on one item) without
// matching on message text.
package errors
