package shape

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/knowing-the-sky/skyshape-mcp/internal/morph"
)

// DefaultThickness is the outline width used when none is given.
const DefaultThickness = 2

// DefaultColor is the outline colour used when none is given.
var DefaultColor = color.NRGBA{R: 255, G: 255, A: 255}

type config struct {
	kind      Kind
	color     color.NRGBA
	thickness int
	canvas    CanvasMode
	policy    ContourPolicy
}

// Option configures Fit.
type Option func(*config)

// WithKind selects the enclosing primitive.
func WithKind(k Kind) Option {
	return func(c *config) { c.kind = k }
}

// WithColor sets the outline colour. The colour is drawn fully opaque.
func WithColor(col color.Color) Option {
	return func(c *config) {
		n := color.NRGBAModel.Convert(col).(color.NRGBA)
		n.A = 255
		c.color = n
	}
}

// WithThickness sets the outline width in pixels. A negative width fills the
// shape; zero is rejected.
func WithThickness(t int) Option {
	return func(c *config) { c.thickness = t }
}

// WithCanvas selects how the output canvas is initialised.
func WithCanvas(mode CanvasMode) Option {
	return func(c *config) { c.canvas = mode }
}

// WithContourPolicy selects how masks with several external contours are
// handled.
func WithContourPolicy(p ContourPolicy) Option {
	return func(c *config) { c.policy = p }
}

// Result holds the fitted primitive and its rendering. Exactly one of
// Circle, Triangle, and Rectangle is set, matching Kind.
type Result struct {
	Kind      Kind             `json:"shape"`
	Circle    *CircleParams    `json:"circle,omitempty"`
	Triangle  *TriangleParams  `json:"triangle,omitempty"`
	Rectangle *RectangleParams `json:"rectangle,omitempty"`

	// Contour is the compressed outer boundary the primitive was fitted to.
	Contour []image.Point `json:"-"`

	// Canvas is the rendered shape, the same size as the mask.
	Canvas *image.NRGBA `json:"-"`
}

// Params returns the parameter record for Kind.
func (r *Result) Params() any {
	switch r.Kind {
	case Circle:
		return r.Circle
	case Triangle:
		return r.Triangle
	case Rectangle:
		return r.Rectangle
	}
	return nil
}

// Fit computes the minimal enclosing primitive of the mask's foreground and
// renders it onto a new canvas.
//
// The mask must hold exactly one external contour unless LargestContour is
// selected. The mask is never modified, and no canvas is allocated unless
// the parameters were computed successfully.
func Fit(m *morph.Mask, opts ...Option) (*Result, error) {
	cfg := config{
		kind:      Circle,
		color:     DefaultColor,
		thickness: DefaultThickness,
		canvas:    BlankCanvas,
		policy:    RequireSingle,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if !cfg.kind.valid() {
		return nil, fmt.Errorf("%w: shape %s must be one of circle, triangle, rectangle", ErrInvalidArgument, cfg.kind)
	}
	if cfg.thickness == 0 {
		return nil, fmt.Errorf("%w: thickness must be non-zero", ErrInvalidArgument)
	}
	if cfg.canvas != BlankCanvas && cfg.canvas != MaskCanvas {
		return nil, fmt.Errorf("%w: unknown canvas mode %d", ErrInvalidArgument, int(cfg.canvas))
	}
	if m == nil || m.Width <= 0 || m.Height <= 0 {
		return nil, fmt.Errorf("%w: mask is empty", ErrInvalidArgument)
	}

	contour, err := selectContour(ExternalContours(m), cfg.policy)
	if err != nil {
		return nil, err
	}

	res := &Result{Kind: cfg.kind, Contour: contour}
	switch cfg.kind {
	case Circle:
		c := MinEnclosingCircle(contour)
		res.Circle = &c
	case Triangle:
		area, verts := MinEnclosingTriangle(contour)
		res.Triangle = &TriangleParams{Area: area}
		for i, v := range verts {
			res.Triangle.Vertices[i] = roundPoint(v)
		}
	case Rectangle:
		r := MinAreaRect(contour)
		res.Rectangle = &r
	}

	res.Canvas = newCanvas(m, cfg.canvas)
	res.render(cfg)
	return res, nil
}

func (r *Result) render(cfg config) {
	switch r.Kind {
	case Circle:
		cx := int(math.Round(r.Circle.CX))
		cy := int(math.Round(r.Circle.CY))
		rad := int(math.Round(r.Circle.R))
		drawCircle(r.Canvas, cx, cy, rad, cfg.thickness, cfg.color)
	case Triangle:
		drawPolygon(r.Canvas, r.Triangle.Vertices[:], cfg.thickness, cfg.color)
	case Rectangle:
		box := BoxPoints(*r.Rectangle)
		corners := make([]image.Point, len(box))
		for i, v := range box {
			corners[i] = roundPoint(v)
		}
		drawPolygon(r.Canvas, corners, cfg.thickness, cfg.color)
	}
}
