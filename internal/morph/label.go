package morph

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Connectivity selects which neighbours join pixels into one region.
type Connectivity int

const (
	// Four joins pixels sharing an edge.
	Four Connectivity = 4
	// Eight joins pixels sharing an edge or a corner.
	Eight Connectivity = 8
)

// Region summarises one labelled connected component.
type Region struct {
	// ID is the label value, starting at 1. Zero is reserved for background.
	ID int `json:"id"`

	// Area is the number of pixels in the region.
	Area int `json:"area"`

	// Bounds is the bounding box: Min inclusive, Max exclusive.
	Bounds image.Rectangle `json:"bounds"`
}

// Labels holds a label image and per-region statistics.
type Labels struct {
	Width   int
	Height  int
	IDs     []int // row-major label per pixel, 0 = background
	regions []Region
}

// Label assigns a unique ID to every connected foreground region of m.
//
// IDs are assigned in raster order of each region's first pixel (top to
// bottom, left to right), so labelling is deterministic.
//
// Uses an explicit stack rather than recursion so that very large regions
// cannot overflow the goroutine stack.
func Label(m *Mask, conn Connectivity) *Labels {
	l := &Labels{
		Width:  m.Width,
		Height: m.Height,
		IDs:    make([]int, len(m.Pix)),
	}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Pix[y*m.Width+x] && l.IDs[y*m.Width+x] == 0 {
				id := len(l.regions) + 1
				l.regions = append(l.regions, l.fill(m, x, y, id, conn))
			}
		}
	}
	return l
}

// fill floods one region starting at (startX, startY) and returns its stats.
func (l *Labels) fill(m *Mask, startX, startY, id int, conn Connectivity) Region {
	region := Region{
		ID:     id,
		Bounds: image.Rect(startX, startY, startX+1, startY+1),
	}

	stack := []image.Point{{X: startX, Y: startY}}
	l.IDs[startY*m.Width+startX] = id

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		region.Area++
		region.Bounds = region.Bounds.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				if conn == Four && dx != 0 && dy != 0 {
					continue
				}
				nx, ny := p.X+dx, p.Y+dy
				if !m.At(nx, ny) || l.IDs[ny*m.Width+nx] != 0 {
					continue
				}
				l.IDs[ny*m.Width+nx] = id
				stack = append(stack, image.Point{X: nx, Y: ny})
			}
		}
	}
	return region
}

// Count returns the number of labelled regions.
func (l *Labels) Count() int {
	return len(l.regions)
}

// At returns the label at (x, y), or 0 outside the image.
func (l *Labels) At(x, y int) int {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return 0
	}
	return l.IDs[y*l.Width+x]
}

// Regions returns the statistics of every region in ID order.
func (l *Labels) Regions() []Region {
	out := make([]Region, len(l.regions))
	copy(out, l.regions)
	return out
}

// Region returns the statistics for one label.
func (l *Labels) Region(id int) (Region, bool) {
	if id < 1 || id > len(l.regions) {
		return Region{}, false
	}
	return l.regions[id-1], true
}

// Largest returns the region with the greatest area. Ties go to the lowest
// ID. The boolean is false when there are no regions.
func (l *Labels) Largest() (Region, bool) {
	if len(l.regions) == 0 {
		return Region{}, false
	}
	best := l.regions[0]
	for _, r := range l.regions[1:] {
		if r.Area > best.Area {
			best = r
		}
	}
	return best, true
}

// Mask returns a mask selecting the pixels whose label is in ids.
// Passing 0 selects the background.
func (l *Labels) Mask(ids ...int) *Mask {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	m := NewMask(l.Width, l.Height)
	for i, id := range l.IDs {
		m.Pix[i] = want[id]
	}
	return m
}

// Stencil returns a copy of img blacked out wherever the mask is not set.
// The mask must have the same dimensions as the image.
func Stencil(img image.Image, m *Mask) (*image.NRGBA, error) {
	b := img.Bounds()
	if b.Dx() != m.Width || b.Dy() != m.Height {
		return nil, fmt.Errorf("mask size %dx%d does not match image size %dx%d",
			m.Width, m.Height, b.Dx(), b.Dy())
	}

	out := imaging.Clone(img)
	black := color.NRGBA{A: 255}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !m.Pix[y*m.Width+x] {
				out.SetNRGBA(x, y, black)
			}
		}
	}
	return out, nil
}
