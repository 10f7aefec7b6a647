package shape

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports an unrecognised shape kind or an unusable
	// option value.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrShapeDetection reports a mask that does not reduce to exactly one
	// external contour.
	ErrShapeDetection = errors.New("shape detection failed")
)

// DetectionError carries the number of external contours found when exactly
// one was required. It matches ErrShapeDetection with errors.Is.
type DetectionError struct {
	Contours int
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("%v: expected exactly one external contour, found %d", ErrShapeDetection, e.Contours)
}

// Is lets errors.Is(err, ErrShapeDetection) match.
func (e *DetectionError) Is(target error) bool {
	return target == ErrShapeDetection
}
