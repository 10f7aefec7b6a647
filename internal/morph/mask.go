package morph

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/segment"
)

// Mask is a 2-D boolean occupancy grid marking pixels of interest.
//
// Pix is stored row-major: the pixel at (x, y) is Pix[y*Width+x].
type Mask struct {
	Width  int
	Height int
	Pix    []bool
}

// NewMask allocates an empty (all false) mask of the given size.
// Negative dimensions are treated as zero.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]bool, width*height),
	}
}

// MaskFromRows builds a mask from a slice of rows. Every row must have the
// same length.
func MaskFromRows(rows [][]bool) (*Mask, error) {
	if len(rows) == 0 {
		return NewMask(0, 0), nil
	}
	width := len(rows[0])
	m := NewMask(width, len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d columns, want %d", y, len(row), width)
		}
		copy(m.Pix[y*width:(y+1)*width], row)
	}
	return m, nil
}

// MaskFromImage thresholds an image into a mask. A pixel is foreground when
// its luminance is strictly greater than level, matching `gray > level`.
//
// The image is thresholded with bild's segment.Threshold, which ranks pixels
// by perceptual luminance. A level of 255 yields an empty mask.
func MaskFromImage(img image.Image, level uint8) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	if level == 255 {
		return m
	}

	gray := segment.Threshold(img, level+1)
	gb := gray.Bounds()
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if gray.GrayAt(gb.Min.X+x, gb.Min.Y+y).Y > 0 {
				m.Pix[y*m.Width+x] = true
			}
		}
	}
	return m
}

// MaskFromGray converts a 0/255 grey image back into a mask; any pixel above
// mid-grey is foreground.
func MaskFromGray(img image.Image) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			m.Pix[y*m.Width+x] = g.Y > 127
		}
	}
	return m
}

// At reports whether (x, y) is foreground. Coordinates outside the mask are
// background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Set marks (x, y) as foreground or background. Out-of-range coordinates are
// ignored.
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = v
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Empty reports whether the mask has no foreground pixels.
func (m *Mask) Empty() bool {
	for _, v := range m.Pix {
		if v {
			return false
		}
	}
	return true
}

// Bounds returns the mask rectangle, always anchored at the origin.
func (m *Mask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	c := NewMask(m.Width, m.Height)
	copy(c.Pix, m.Pix)
	return c
}

// Equal reports whether two masks have the same size and pixels.
func (m *Mask) Equal(o *Mask) bool {
	if m.Width != o.Width || m.Height != o.Height {
		return false
	}
	for i := range m.Pix {
		if m.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// Gray renders the mask as a grey image: foreground 255, background 0.
func (m *Mask) Gray() *image.Gray {
	img := image.NewGray(m.Bounds())
	for i, v := range m.Pix {
		if v {
			img.Pix[i] = 255
		}
	}
	return img
}
