package shape

import (
	"image"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// TriangleParams describes an enclosing triangle: its exact area and its
// vertices rounded to whole pixels.
type TriangleParams struct {
	Area     float64        `json:"area"`
	Vertices [3]image.Point `json:"vertices"`
}

// MinEnclosingTriangle returns the area and vertices of a minimum-area
// triangle containing every point.
//
// # Algorithm
//
// The midpoint of every side of a minimal enclosing triangle touches the hull,
// and at least one side is flush with a hull edge. If only one side were
// flush, the two remaining sides could be sheared about their touching points
// without changing the area until another side became flush, so some optimum
// has two flush sides. Therefore:
//
//  1. Every pair of non-parallel hull edges is extended into a wedge that
//     contains the hull
//  2. The wedge is closed by the cheapest supporting line that is either
//     flush with a third edge or touches a hull vertex at its own midpoint
//  3. The smallest triangle over all wedges wins
//
// The search is O(n³) in the number of hull vertices, which stays small for
// pixel contours.
//
// Degenerate inputs (a single point or a straight segment) return area zero
// with the triangle collapsed onto the input.
func MinEnclosingTriangle(points []image.Point) (float64, [3]r2.Vec) {
	pts := toVecs(ConvexHull(points))
	switch len(pts) {
	case 0:
		return 0, [3]r2.Vec{}
	case 1:
		return 0, [3]r2.Vec{pts[0], pts[0], pts[0]}
	case 2:
		return 0, [3]r2.Vec{pts[0], pts[1], pts[1]}
	}

	tol := 1e-9 * math.Max(1, extent(pts))
	best := math.Inf(1)
	var tri [3]r2.Vec

	consider := func(area float64, t [3]r2.Vec, ok bool) {
		if ok && area < best {
			best, tri = area, t
		}
	}

	n := len(pts)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w, ok := newWedge(pts, i, j, tol)
			if !ok {
				continue
			}
			for k := 0; k < n; k++ {
				if k != i && k != j {
					consider(w.flushCut(pts, k, tol))
				}
				consider(w.midpointCut(pts, k, tol))
			}
		}
	}

	if math.IsInf(best, 1) {
		return boundingTriangle(pts)
	}
	return best, tri
}

// wedge is the cone {apex + s·a + t·b : s, t ≥ 0} bounded by two supporting
// lines of the hull. a and b are unit vectors.
type wedge struct {
	apex, a, b r2.Vec
}

// newWedge builds the wedge formed by the lines through hull edges i and j.
// Parallel edges do not form a wedge.
func newWedge(pts []r2.Vec, i, j int, tol float64) (wedge, bool) {
	n := len(pts)
	p1, d1 := pts[i], unit(r2.Sub(pts[(i+1)%n], pts[i]))
	p2, d2 := pts[j], unit(r2.Sub(pts[(j+1)%n], pts[j]))

	den := r2.Cross(d1, d2)
	if math.Abs(den) < 1e-12 {
		return wedge{}, false
	}
	apex := r2.Add(p1, r2.Scale(r2.Cross(r2.Sub(p2, p1), d2)/den, d1))

	// Each boundary ray runs along one line into the inner half-plane of the
	// other. The hull lies to the left of its edges.
	a, b := d1, d2
	if r2.Cross(d2, a) < 0 {
		a = r2.Scale(-1, a)
	}
	if r2.Cross(d1, b) < 0 {
		b = r2.Scale(-1, b)
	}
	if math.Abs(r2.Cross(a, b)) < tol {
		return wedge{}, false
	}
	return wedge{apex: apex, a: a, b: b}, true
}

func (w wedge) triangle(s, t float64) (float64, [3]r2.Vec) {
	area := 0.5 * s * t * math.Abs(r2.Cross(w.a, w.b))
	return area, [3]r2.Vec{
		w.apex,
		r2.Add(w.apex, r2.Scale(s, w.a)),
		r2.Add(w.apex, r2.Scale(t, w.b)),
	}
}

// flushCut closes the wedge with the line through hull edge k.
func (w wedge) flushCut(pts []r2.Vec, k int, tol float64) (float64, [3]r2.Vec, bool) {
	p := pts[k]
	e := r2.Sub(pts[(k+1)%len(pts)], p)

	ea, eb := r2.Cross(e, w.a), r2.Cross(e, w.b)
	if math.Abs(ea) < 1e-12 || math.Abs(eb) < 1e-12 {
		return 0, [3]r2.Vec{}, false
	}
	toP := r2.Sub(p, w.apex)
	s := r2.Cross(e, toP) / ea
	t := r2.Cross(e, toP) / eb
	if s <= tol || t <= tol {
		return 0, [3]r2.Vec{}, false
	}
	// The apex must sit on the hull side of the edge line, otherwise the cut
	// triangle lies beyond the hull instead of around it.
	if r2.Cross(e, r2.Sub(w.apex, p)) <= tol*r2.Norm(e) {
		return 0, [3]r2.Vec{}, false
	}

	area, tri := w.triangle(s, t)
	return area, tri, true
}

// midpointCut closes the wedge with the line whose segment inside the wedge
// has hull vertex k as its midpoint. The line must support the hull.
func (w wedge) midpointCut(pts []r2.Vec, k int, tol float64) (float64, [3]r2.Vec, bool) {
	n := len(pts)
	m := pts[k]
	d := r2.Sub(m, w.apex)
	det := r2.Cross(w.a, w.b)

	s := 2 * r2.Cross(d, w.b) / det
	t := 2 * r2.Cross(w.a, d) / det
	if s <= tol || t <= tol {
		return 0, [3]r2.Vec{}, false
	}

	area, tri := w.triangle(s, t)
	ab := r2.Sub(tri[2], tri[1])
	side := func(p r2.Vec) float64 { return r2.Cross(ab, r2.Sub(p, tri[1])) }

	// On a convex polygon a line through a vertex supports the polygon iff
	// both neighbouring vertices lie on the same closed side.
	apexSide := math.Copysign(1, side(w.apex))
	slack := tol * math.Max(1, r2.Norm(ab))
	for _, nb := range []r2.Vec{pts[(k+n-1)%n], pts[(k+1)%n]} {
		if side(nb)*apexSide < -slack {
			return 0, [3]r2.Vec{}, false
		}
	}
	return area, tri, true
}

// boundingTriangle encloses the axis-aligned bounding box with a right
// triangle of twice its area.
func boundingTriangle(pts []r2.Vec) (float64, [3]r2.Vec) {
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	w, h := hi.X-lo.X, hi.Y-lo.Y
	return 2 * w * h, [3]r2.Vec{
		lo,
		{X: lo.X + 2*w, Y: lo.Y},
		{X: lo.X, Y: lo.Y + 2*h},
	}
}

func unit(v r2.Vec) r2.Vec {
	l := r2.Norm(v)
	if l == 0 {
		return v
	}
	return r2.Scale(1/l, v)
}
