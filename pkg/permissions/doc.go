// Package permissions restores executable bits after a restore.
//
// Version control and some copy paths drop the executable bit. After an
// apply run the normalizer walks the hooks tree and marks every script with
// a configured extension executable. Helper scripts shipped with skills
// (files under a scripts directory that start with a shebang) are handled
// the same way.
//
// Only read bits are mirrored into execute bits, so a 0644 file becomes 0755
// and a 0600 file becomes 0700. Callers check Supported before using the
// normalizer; platforms without execute bits skip it entirely.
package permissions
