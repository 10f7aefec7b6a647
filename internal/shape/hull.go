package shape

import (
	"image"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// ConvexHull returns the vertices of the convex hull of points with positive
// orientation (counter-clockwise when Y points up). Duplicate and collinear
// points are removed, so fewer than three vertices means the input was a
// single point or a straight segment.
func ConvexHull(points []image.Point) []image.Point {
	pts := make([]image.Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	uniq := pts[:0]
	for _, p := range pts {
		if len(uniq) == 0 || p != uniq[len(uniq)-1] {
			uniq = append(uniq, p)
		}
	}
	pts = uniq
	if len(pts) <= 2 {
		return pts
	}

	hull := make([]image.Point, 0, 2*len(pts))
	// Lower chain
	for _, p := range pts {
		for len(hull) >= 2 && turn(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// Upper chain
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && turn(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// turn is the z component of (a-o) x (b-o): positive for a left turn.
func turn(o, a, b image.Point) int64 {
	return int64(a.X-o.X)*int64(b.Y-o.Y) - int64(a.Y-o.Y)*int64(b.X-o.X)
}

func toVecs(points []image.Point) []r2.Vec {
	out := make([]r2.Vec, len(points))
	for i, p := range points {
		out[i] = r2.Vec{X: float64(p.X), Y: float64(p.Y)}
	}
	return out
}

// extent returns the diagonal length of the points' bounding box, used to
// scale numeric tolerances.
func extent(pts []r2.Vec) float64 {
	if len(pts) == 0 {
		return 0
	}
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		if p.X < lo.X {
			lo.X = p.X
		}
		if p.Y < lo.Y {
			lo.Y = p.Y
		}
		if p.X > hi.X {
			hi.X = p.X
		}
		if p.Y > hi.Y {
			hi.Y = p.Y
		}
	}
	return r2.Norm(r2.Sub(hi, lo))
}
