package shape

import (
	"image"
	"math"

	"github.com/knowing-the-sky/skyshape-mcp/internal/morph"
)

// neighbours lists the 8 neighbour offsets in counter-clockwise screen order,
// starting east. Index arithmetic mod 8 walks around a pixel.
var neighbours = [8]image.Point{
	{X: 1, Y: 0},   // E
	{X: 1, Y: -1},  // NE
	{X: 0, Y: -1},  // N
	{X: -1, Y: -1}, // NW
	{X: -1, Y: 0},  // W
	{X: -1, Y: 1},  // SW
	{X: 0, Y: 1},   // S
	{X: 1, Y: 1},   // SE
}

const west = 4

func neighbourIndex(d image.Point) int {
	for i, n := range neighbours {
		if n == d {
			return i
		}
	}
	return -1
}

// ExternalContours returns the outer border of every outermost foreground
// region of m, one contour per region.
//
// Foreground is 8-connected. A region lying inside a hole of another region is
// not external and is skipped, as are the borders of holes themselves.
// Contours are ordered by the raster position of each region's first pixel and
// compressed so that only direction-changing points remain.
func ExternalContours(m *morph.Mask) [][]image.Point {
	if m.Width == 0 || m.Height == 0 {
		return nil
	}
	labels := morph.Label(m, morph.Eight)
	outside := outsideBackground(m)

	contours := make([][]image.Point, 0, labels.Count())
	for _, r := range labels.Regions() {
		start := firstPixel(labels, r)

		// The pixel above a region's first pixel is background. The region is
		// outermost iff that background is connected to the image frame.
		if start.Y > 0 && !outside[(start.Y-1)*m.Width+start.X] {
			continue
		}

		id := r.ID
		inRegion := func(x, y int) bool { return labels.At(x, y) == id }
		contours = append(contours, compressChain(traceBorder(inRegion, start)))
	}
	return contours
}

// firstPixel finds the top-most, then left-most pixel of a region.
func firstPixel(labels *morph.Labels, r morph.Region) image.Point {
	y := r.Bounds.Min.Y
	for x := r.Bounds.Min.X; x < r.Bounds.Max.X; x++ {
		if labels.At(x, y) == r.ID {
			return image.Point{X: x, Y: y}
		}
	}
	return r.Bounds.Min
}

// outsideBackground marks background pixels 4-connected to the image frame.
// Everything outside the image is treated as background.
func outsideBackground(m *morph.Mask) []bool {
	outside := make([]bool, len(m.Pix))
	stack := make([]image.Point, 0, 2*(m.Width+m.Height))

	push := func(x, y int) {
		i := y*m.Width + x
		if m.Pix[i] || outside[i] {
			return
		}
		outside[i] = true
		stack = append(stack, image.Point{X: x, Y: y})
	}

	for x := 0; x < m.Width; x++ {
		push(x, 0)
		push(x, m.Height-1)
	}
	for y := 0; y < m.Height; y++ {
		push(0, y)
		push(m.Width-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range [4]image.Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
			n := p.Add(d)
			if n.X < 0 || n.Y < 0 || n.X >= m.Width || n.Y >= m.Height {
				continue
			}
			push(n.X, n.Y)
		}
	}
	return outside
}

// traceBorder follows the outer border of the region containing start, where
// start is the region's first pixel in raster order.
//
// This is the outer-border step of Suzuki and Abe's border following: find the
// first foreground neighbour clockwise from west, then repeatedly search
// counter-clockwise around the current pixel starting just past the pixel we
// came from. Tracing stops when the walk returns to start about to repeat its
// first move.
func traceBorder(in func(x, y int) bool, start image.Point) []image.Point {
	first, found := image.Point{}, false
	for k := 0; k < 8; k++ {
		n := start.Add(neighbours[(west-k+8)%8])
		if in(n.X, n.Y) {
			first, found = n, true
			break
		}
	}
	if !found {
		return []image.Point{start}
	}

	var contour []image.Point
	prev, cur := first, start
	for {
		from := neighbourIndex(prev.Sub(cur))
		next := prev
		for k := 1; k <= 8; k++ {
			n := cur.Add(neighbours[(from+k)%8])
			if in(n.X, n.Y) {
				next = n
				break
			}
		}

		contour = append(contour, cur)
		if next == start && cur == first {
			return contour
		}
		prev, cur = cur, next
	}
}

// compressChain drops points lying in the middle of straight horizontal,
// vertical, or diagonal runs, keeping only the run end points.
func compressChain(contour []image.Point) []image.Point {
	n := len(contour)
	if n <= 2 {
		out := make([]image.Point, n)
		copy(out, contour)
		return out
	}

	out := make([]image.Point, 0, n)
	for i, p := range contour {
		prev := contour[(i-1+n)%n]
		next := contour[(i+1)%n]
		if p.Sub(prev) != next.Sub(p) {
			out = append(out, p)
		}
	}
	return out
}

// contourArea returns the unsigned area enclosed by a closed contour using the
// shoelace formula.
func contourArea(contour []image.Point) float64 {
	var twice int64
	for i, p := range contour {
		q := contour[(i+1)%len(contour)]
		twice += int64(p.X)*int64(q.Y) - int64(q.X)*int64(p.Y)
	}
	return math.Abs(float64(twice)) / 2
}

// selectContour applies the contour policy.
func selectContour(contours [][]image.Point, policy ContourPolicy) ([]image.Point, error) {
	switch {
	case len(contours) == 1:
		return contours[0], nil
	case len(contours) == 0 || policy == RequireSingle:
		return nil, &DetectionError{Contours: len(contours)}
	}

	best, bestArea := 0, contourArea(contours[0])
	for i := 1; i < len(contours); i++ {
		if a := contourArea(contours[i]); a > bestArea {
			best, bestArea = i, a
		}
	}
	return contours[best], nil
}
