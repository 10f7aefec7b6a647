package shape

import (
	"fmt"
	"strings"
)

// Kind selects the enclosing primitive.
type Kind int

const (
	Circle Kind = iota
	Triangle
	Rectangle
)

var kindNames = [...]string{
	Circle:    "circle",
	Triangle:  "triangle",
	Rectangle: "rectangle",
}

func (k Kind) String() string {
	if k.valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) valid() bool {
	return k >= Circle && k <= Rectangle
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.valid() {
		return nil, fmt.Errorf("%w: unknown shape kind %d", ErrInvalidArgument, int(k))
	}
	return []byte(kindNames[k]), nil
}

// ParseKind maps "circle", "triangle", or "rectangle" (case-insensitive) to a
// Kind. An empty string selects Circle, the default.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "circle":
		return Circle, nil
	case "triangle":
		return Triangle, nil
	case "rectangle":
		return Rectangle, nil
	}
	return 0, fmt.Errorf("%w: shape %q must be one of circle, triangle, rectangle", ErrInvalidArgument, s)
}

// CanvasMode selects how the output canvas is initialised.
type CanvasMode int

const (
	// BlankCanvas starts from an all-black canvas.
	BlankCanvas CanvasMode = iota

	// MaskCanvas starts from the mask itself: foreground white, background
	// black on all three channels. The shape is drawn on top.
	MaskCanvas
)

// ContourPolicy decides what happens when a mask has more than one external
// contour.
type ContourPolicy int

const (
	// RequireSingle fails with ErrShapeDetection unless exactly one external
	// contour exists.
	RequireSingle ContourPolicy = iota

	// LargestContour fits the contour enclosing the largest area. Ties go to
	// the contour whose first pixel comes first in raster order. A mask with
	// no foreground still fails.
	LargestContour
)
