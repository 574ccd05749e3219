//go:build windows

package permissions

// Supported reports whether the platform has POSIX execute bits.
func Supported() bool { return false }
