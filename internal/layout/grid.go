// Package layout arranges several images side by side, in a single row or a
// single column, sized so the figure keeps the proportions of the combined
// images.
package layout

import (
	"errors"
	"fmt"
	"image"
)

// ErrArgumentMismatch reports inconsistent inputs: no images at all, or fewer
// titles than images.
var ErrArgumentMismatch = errors.New("argument mismatch")

// Direction selects how images are stacked.
type Direction int

const (
	// Row places images left to right.
	Row Direction = iota

	// Column places images top to bottom.
	Column
)

func (d Direction) String() string {
	switch d {
	case Row:
		return "row"
	case Column:
		return "column"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection maps "row" or "column" to a Direction. An empty string
// selects Row.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "row":
		return Row, nil
	case "column", "col":
		return Column, nil
	}
	return 0, fmt.Errorf("%w: direction %q must be row or column", ErrArgumentMismatch, s)
}

// Grid is the computed subplot layout.
type Grid struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`

	// Width and Height are the combined image size in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Aspect is Width / Height.
	Aspect float64 `json:"aspect"`

	// FigWidth and FigHeight are the figure size in base units. The shorter
	// side equals the base and the figure has the same aspect as the images.
	FigWidth  float64 `json:"fig_width"`
	FigHeight float64 `json:"fig_height"`
}

// ComputeGrid works out the subplot grid and figure size for images of the
// given sizes. A row layout sums widths and takes the tallest height; a
// column layout sums heights and takes the widest width.
func ComputeGrid(sizes []image.Point, dir Direction, base float64) (Grid, error) {
	if len(sizes) == 0 {
		return Grid{}, fmt.Errorf("%w: no images", ErrArgumentMismatch)
	}
	if base <= 0 {
		return Grid{}, fmt.Errorf("%w: base size must be positive, got %v", ErrArgumentMismatch, base)
	}

	var g Grid
	for i, s := range sizes {
		if s.X <= 0 || s.Y <= 0 {
			return Grid{}, fmt.Errorf("%w: image %d has empty size %v", ErrArgumentMismatch, i, s)
		}
		switch dir {
		case Row:
			g.Width += s.X
			g.Height = max(g.Height, s.Y)
		case Column:
			g.Width = max(g.Width, s.X)
			g.Height += s.Y
		default:
			return Grid{}, fmt.Errorf("%w: unknown direction %v", ErrArgumentMismatch, dir)
		}
	}

	g.Rows, g.Cols = 1, len(sizes)
	if dir == Column {
		g.Rows, g.Cols = len(sizes), 1
	}

	g.Aspect = float64(g.Width) / float64(g.Height)
	if g.Aspect > 1 {
		g.FigWidth, g.FigHeight = base*g.Aspect, base
	} else {
		g.FigWidth, g.FigHeight = base, base/g.Aspect
	}
	return g, nil
}
