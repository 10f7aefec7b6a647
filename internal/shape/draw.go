package shape

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/knowing-the-sky/skyshape-mcp/internal/morph"
)

// newCanvas allocates the output buffer. MaskCanvas replicates the mask as
// 0/255 across all three colour channels.
func newCanvas(m *morph.Mask, mode CanvasMode) *image.NRGBA {
	if mode == MaskCanvas {
		return imaging.Clone(m.Gray())
	}
	return imaging.New(m.Width, m.Height, color.NRGBA{A: 255})
}

// drawCircle strokes (thickness > 0) or fills (thickness < 0) a circle with
// integer centre and radius.
func drawCircle(dst *image.NRGBA, cx, cy, r, thickness int, c color.NRGBA) {
	half := float64(thickness) / 2
	reach := r + 1
	if thickness > 0 {
		reach = r + int(math.Ceil(half)) + 1
	}

	area := image.Rect(cx-reach, cy-reach, cx+reach+1, cy+reach+1).Intersect(dst.Rect)
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			d := math.Hypot(float64(x-cx), float64(y-cy))
			if thickness < 0 {
				if d <= float64(r) {
					dst.SetNRGBA(x, y, c)
				}
				continue
			}
			if math.Abs(d-float64(r)) <= half {
				dst.SetNRGBA(x, y, c)
			}
		}
	}
}

// drawPolygon strokes (thickness > 0) or fills (thickness < 0) the closed
// polygon through pts.
func drawPolygon(dst *image.NRGBA, pts []image.Point, thickness int, c color.NRGBA) {
	if len(pts) == 0 {
		return
	}

	half := float64(thickness) / 2
	if thickness < 0 {
		half = 0.5
	}
	pad := int(math.Ceil(half)) + 1

	bounds := image.Rectangle{Min: pts[0], Max: pts[0].Add(image.Pt(1, 1))}
	for _, p := range pts[1:] {
		bounds = bounds.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	area := bounds.Inset(-pad).Intersect(dst.Rect)

	poly := make([]r2.Vec, len(pts))
	for i, p := range pts {
		poly[i] = r2.Vec{X: float64(p.X), Y: float64(p.Y)}
	}

	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			p := r2.Vec{X: float64(x), Y: float64(y)}
			if distanceToOutline(p, poly) <= half || (thickness < 0 && insidePolygon(p, poly)) {
				dst.SetNRGBA(x, y, c)
			}
		}
	}
}

// distanceToOutline returns the distance from p to the closed polyline.
func distanceToOutline(p r2.Vec, poly []r2.Vec) float64 {
	best := math.Inf(1)
	for i, a := range poly {
		b := poly[(i+1)%len(poly)]
		best = math.Min(best, distanceToSegment(p, a, b))
	}
	return best
}

func distanceToSegment(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	l2 := r2.Dot(ab, ab)
	if l2 == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	t := math.Max(0, math.Min(1, r2.Dot(r2.Sub(p, a), ab)/l2))
	return r2.Norm(r2.Sub(p, r2.Add(a, r2.Scale(t, ab))))
}

// insidePolygon is the even-odd crossing test.
func insidePolygon(p r2.Vec, poly []r2.Vec) bool {
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

func roundPoint(v r2.Vec) image.Point {
	return image.Point{X: int(math.Round(v.X)), Y: int(math.Round(v.Y))}
}
