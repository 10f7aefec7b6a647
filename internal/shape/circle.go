package shape

import (
	"image"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// CircleParams describes a circle by centre and radius, in pixels.
type CircleParams struct {
	CX float64 `json:"cx"`
	CY float64 `json:"cy"`
	R  float64 `json:"r"`
}

// Center returns the circle centre as a vector.
func (c CircleParams) Center() r2.Vec {
	return r2.Vec{X: c.CX, Y: c.CY}
}

// Area returns πr².
func (c CircleParams) Area() float64 {
	return math.Pi * c.R * c.R
}

// MinEnclosingCircle returns the smallest circle containing every point.
//
// Only hull vertices can lie on the optimal circle, so the hull is computed
// first and Welzl's incremental algorithm runs over its vertices in hull
// order. The result is deterministic for a given input.
//
// An empty input returns the zero circle; a single point returns a circle of
// radius zero centred on it.
func MinEnclosingCircle(points []image.Point) CircleParams {
	pts := toVecs(ConvexHull(points))
	if len(pts) == 0 {
		return CircleParams{}
	}

	c := circle{center: pts[0]}
	for i := 1; i < len(pts); i++ {
		if c.contains(pts[i]) {
			continue
		}
		c = circle{center: pts[i]}
		for j := 0; j < i; j++ {
			if c.contains(pts[j]) {
				continue
			}
			c = diameterCircle(pts[i], pts[j])
			for k := 0; k < j; k++ {
				if c.contains(pts[k]) {
					continue
				}
				c = circumcircle(pts[i], pts[j], pts[k])
			}
		}
	}

	return CircleParams{CX: c.center.X, CY: c.center.Y, R: c.radius}
}

type circle struct {
	center r2.Vec
	radius float64
}

func (c circle) contains(p r2.Vec) bool {
	return r2.Norm(r2.Sub(p, c.center)) <= c.radius+1e-7*math.Max(1, c.radius)
}

func diameterCircle(a, b r2.Vec) circle {
	center := r2.Scale(0.5, r2.Add(a, b))
	return circle{center: center, radius: r2.Norm(r2.Sub(a, center))}
}

// circumcircle returns the circle through a, b, and c. Nearly collinear
// triples fall back to the circle on the farthest pair.
func circumcircle(a, b, c r2.Vec) circle {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if math.Abs(d) < 1e-12 {
		best := diameterCircle(a, b)
		for _, cand := range []circle{diameterCircle(a, c), diameterCircle(b, c)} {
			if cand.radius > best.radius {
				best = cand
			}
		}
		return best
	}

	a2 := r2.Dot(a, a)
	b2 := r2.Dot(b, b)
	c2 := r2.Dot(c, c)
	center := r2.Vec{
		X: (a2*(b.Y-c.Y) + b2*(c.Y-a.Y) + c2*(a.Y-b.Y)) / d,
		Y: (a2*(c.X-b.X) + b2*(a.X-c.X) + c2*(b.X-a.X)) / d,
	}
	return circle{center: center, radius: r2.Norm(r2.Sub(a, center))}
}
