package types

import "fmt"

// Direction selects which root is the source of a sync run.
type Direction string

const (
	// DirectionCapture copies from the live root into the mirror root (backup).
	DirectionCapture Direction = "capture"

	// DirectionApply copies from the mirror root into the live root (restore).
	DirectionApply Direction = "apply"
)

// String implements fmt.Stringer
func (d Direction) String() string {
	return string(d)
}

// Verb returns the user-facing command name for the direction.
func (d Direction) Verb() string {
	switch d {
	case DirectionCapture:
		return "backup"
	case DirectionApply:
		return "restore"
	default:
		return "unknown"
	}
}

// Validate returns an error for anything but capture or apply.
func (d Direction) Validate() error {
	switch d {
	case DirectionCapture, DirectionApply:
		return nil
	default:
		return fmt.Errorf("unknown sync direction %q", string(d))
	}
}
