package morph

import (
	"fmt"
	"strings"

	"github.com/anthonynsimon/bild/effect"
)

// Operation names a morphological operation.
type Operation string

// Supported morphological operations.
const (
	OpErode  Operation = "erode"
	OpDilate Operation = "dilate"
	OpOpen   Operation = "open"
	OpClose  Operation = "close"
)

// ParseOperation parses an operation name, ignoring case.
func ParseOperation(s string) (Operation, error) {
	op := Operation(strings.ToLower(strings.TrimSpace(s)))
	switch op {
	case OpErode, OpDilate, OpOpen, OpClose:
		return op, nil
	}
	return "", fmt.Errorf("unknown morphological operation %q: must be one of erode, dilate, open, close", s)
}

// Erode shrinks foreground regions: a pixel stays set only if every pixel
// within radius is set. Thin bridges and isolated specks disappear.
//
// A radius <= 0 returns an unmodified copy.
func Erode(m *Mask, radius float64) *Mask {
	if radius <= 0 {
		return m.Clone()
	}
	return MaskFromGray(effect.Erode(m.Gray(), radius))
}

// Dilate grows foreground regions: a pixel becomes set if any pixel within
// radius is set. Small gaps and holes are filled.
//
// A radius <= 0 returns an unmodified copy.
func Dilate(m *Mask, radius float64) *Mask {
	if radius <= 0 {
		return m.Clone()
	}
	return MaskFromGray(effect.Dilate(m.Gray(), radius))
}

// Open is erosion followed by dilation. It removes foreground features smaller
// than the footprint while roughly preserving the size of larger regions.
func Open(m *Mask, radius float64) *Mask {
	return Dilate(Erode(m, radius), radius)
}

// Close is dilation followed by erosion. It fills holes and gaps smaller than
// the footprint.
func Close(m *Mask, radius float64) *Mask {
	return Erode(Dilate(m, radius), radius)
}

// Apply runs the named operation.
func Apply(m *Mask, op Operation, radius float64) (*Mask, error) {
	switch op {
	case OpErode:
		return Erode(m, radius), nil
	case OpDilate:
		return Dilate(m, radius), nil
	case OpOpen:
		return Open(m, radius), nil
	case OpClose:
		return Close(m, radius), nil
	default:
		return nil, fmt.Errorf("unknown morphological operation %q: must be one of erode, dilate, open, close", op)
	}
}
