package pose

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below through errors.Is.
var (
	// ErrFormat is matched by every *FormatError.
	ErrFormat = errors.New("invalid encoded position")

	// ErrRange is matched by every *RangeError.
	ErrRange = errors.New("coordinate out of encodable range")

	// ErrMissingJoint is matched by every *MissingJointError.
	ErrMissingJoint = errors.New("missing joint")
)

// FormatError reports an encoded string that cannot be decoded: wrong
// length, a character outside the base-62 alphabet, or input exhausted
// before all coordinates were read.
type FormatError struct {
	Offset int    // byte offset where decoding stopped
	Reason string // what was wrong
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v at offset %d: %s", ErrFormat, e.Offset, e.Reason)
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// RangeError reports a coordinate whose scaled integer value does not fit
// the two-digit encoding.
type RangeError struct {
	Key    PlayerJoint
	Axis   string  // "x", "y" or "z"
	Value  float64 // coordinate as given
	Scaled int     // rounded value that was out of range
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%v: %s.%s = %g (scaled %d, want [0,%d))",
		ErrRange, e.Key, e.Axis, e.Value, e.Scaled, scaledLimit)
}

// Is reports whether target is ErrRange.
func (e *RangeError) Is(target error) bool { return target == ErrRange }

// MissingJointError reports a coordinate map lacking one of the 46 keys.
type MissingJointError struct {
	Key PlayerJoint
}

func (e *MissingJointError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingJoint, e.Key)
}

// Is reports whether target is ErrMissingJoint.
func (e *MissingJointError) Is(target error) bool { return target == ErrMissingJoint }
