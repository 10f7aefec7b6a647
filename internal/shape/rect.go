package shape

import (
	"image"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a floating-point pixel coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a floating-point width and height.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectangleParams describes a rotated rectangle: its centre, its size, and
// the angle in degrees of its width axis measured from +X toward +Y.
//
// Angle is normalised to [0, 90). An axis-aligned rectangle has Angle 0 with
// Width along X.
type RectangleParams struct {
	Center Point   `json:"center"`
	Size   Size    `json:"size"`
	Angle  float64 `json:"angle"`
}

// Area returns Width × Height.
func (r RectangleParams) Area() float64 {
	return r.Size.Width * r.Size.Height
}

// MinAreaRect returns the minimum-area rotated rectangle containing every
// point.
//
// One side of the optimal rectangle is collinear with a hull edge, so each
// hull edge direction is tried and the points are projected onto that edge and
// its normal (rotating calipers). A straight segment yields a zero-height
// rectangle along it; a single point yields a zero-size rectangle.
func MinAreaRect(points []image.Point) RectangleParams {
	hull := ConvexHull(points)
	switch len(hull) {
	case 0:
		return RectangleParams{}
	case 1:
		return RectangleParams{Center: Point{X: float64(hull[0].X), Y: float64(hull[0].Y)}}
	}
	pts := toVecs(hull)

	bestArea := math.Inf(1)
	var origin, u, v r2.Vec
	var minU, maxU, minV, maxV float64
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		edge := r2.Sub(b, a)
		l := r2.Norm(edge)
		if l == 0 {
			continue
		}
		eu := r2.Scale(1/l, edge)
		ev := r2.Vec{X: -eu.Y, Y: eu.X}

		lu, hu, lv, hv := math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)
		for _, p := range pts {
			d := r2.Sub(p, a)
			pu, pv := r2.Dot(d, eu), r2.Dot(d, ev)
			lu, hu = math.Min(lu, pu), math.Max(hu, pu)
			lv, hv = math.Min(lv, pv), math.Max(hv, pv)
		}

		if area := (hu - lu) * (hv - lv); area < bestArea-1e-9 {
			bestArea = area
			origin, u, v = a, eu, ev
			minU, maxU, minV, maxV = lu, hu, lv, hv
		}
	}

	center := r2.Add(origin, r2.Add(
		r2.Scale((minU+maxU)/2, u),
		r2.Scale((minV+maxV)/2, v),
	))
	width, height := maxU-minU, maxV-minV

	angle := math.Mod(math.Atan2(u.Y, u.X)*180/math.Pi, 180)
	if angle < 0 {
		angle += 180
	}
	if angle >= 90 {
		angle -= 90
		width, height = height, width
	}
	if angle == 0 {
		angle = 0 // normalise -0
	}

	return RectangleParams{
		Center: Point{X: center.X, Y: center.Y},
		Size:   Size{Width: width, Height: height},
		Angle:  angle,
	}
}

// BoxPoints returns the four corners of a rotated rectangle in order around
// its perimeter.
func BoxPoints(r RectangleParams) [4]r2.Vec {
	theta := r.Angle * math.Pi / 180
	c := r2.Vec{X: r.Center.X, Y: r.Center.Y}
	u := r2.Scale(r.Size.Width/2, r2.Vec{X: math.Cos(theta), Y: math.Sin(theta)})
	v := r2.Scale(r.Size.Height/2, r2.Vec{X: -math.Sin(theta), Y: math.Cos(theta)})

	return [4]r2.Vec{
		r2.Sub(r2.Sub(c, u), v),
		r2.Sub(r2.Add(c, u), v),
		r2.Add(r2.Add(c, u), v),
		r2.Add(r2.Sub(c, u), v),
	}
}
