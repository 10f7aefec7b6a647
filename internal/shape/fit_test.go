package shape

import (
	"bytes"
	"errors"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/knowing-the-sky/skyshape-mcp/internal/morph"
)

// createDiskMask returns a mask with every pixel within r of (cx, cy) set.
func createDiskMask(width, height, cx, cy, r int) *morph.Mask {
	m := morph.NewMask(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				m.Set(x, y, true)
			}
		}
	}
	return m
}

// createRectMask returns a mask with a filled axis-aligned rectangle.
func createRectMask(width, height, x0, y0, w, h int) *morph.Mask {
	m := morph.NewMask(width, height)
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			m.Set(x, y, true)
		}
	}
	return m
}

func isColor(c color.NRGBA, r, g, b uint8) bool {
	return c.R == r && c.G == g && c.B == b && c.A == 255
}

func TestFit_DiskRoundTrip(t *testing.T) {
	mask := createDiskMask(20, 20, 10, 10, 5)

	res, err := Fit(mask, WithKind(Circle))
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	c := res.Circle
	if c == nil {
		t.Fatal("expected circle parameters")
	}
	if math.Abs(c.CX-10) > 1 || math.Abs(c.CY-10) > 1 || math.Abs(c.R-5) > 1 {
		t.Errorf("circle = %+v, want centre (10,10) radius 5", *c)
	}
	if res.Triangle != nil || res.Rectangle != nil {
		t.Error("only circle parameters should be set")
	}

	drawn := 0
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			px := res.Canvas.NRGBAAt(x, y)
			if isColor(px, 0, 0, 0) {
				continue
			}
			drawn++
			if !isColor(px, 255, 255, 0) {
				t.Errorf("pixel (%d,%d) = %v, want yellow", x, y, px)
			}
			d := math.Hypot(float64(x-10), float64(y-10))
			if math.Abs(d-5) > 1.5 {
				t.Errorf("pixel (%d,%d) drawn at distance %.2f from centre", x, y, d)
			}
		}
	}
	if drawn == 0 {
		t.Error("nothing was drawn")
	}
	if px := res.Canvas.NRGBAAt(10, 10); !isColor(px, 0, 0, 0) {
		t.Errorf("centre pixel = %v, want black", px)
	}
}

func TestFit_LargeDisk(t *testing.T) {
	mask := createDiskMask(80, 60, 37, 28, 21)

	res, err := Fit(mask)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if math.Abs(res.Circle.CX-37) > 1 || math.Abs(res.Circle.CY-28) > 1 {
		t.Errorf("centre = (%.2f, %.2f), want (37, 28)", res.Circle.CX, res.Circle.CY)
	}
	if math.Abs(res.Circle.R-21) > 1 {
		t.Errorf("radius = %.2f, want 21", res.Circle.R)
	}
}

func TestFit_SquareRectangle(t *testing.T) {
	mask := createRectMask(30, 30, 5, 5, 10, 10)

	res, err := Fit(mask, WithKind(Rectangle))
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	r := res.Rectangle
	if r == nil {
		t.Fatal("expected rectangle parameters")
	}
	if off := math.Min(r.Angle, 90-r.Angle); off > 1e-6 {
		t.Errorf("angle = %v, want 0 or 90", r.Angle)
	}
	for _, side := range []float64{r.Size.Width, r.Size.Height} {
		if math.Abs(side-10) > 1 {
			t.Errorf("side = %v, want 10 ±1", side)
		}
	}
	if math.Abs(r.Center.X-9.5) > 1e-9 || math.Abs(r.Center.Y-9.5) > 1e-9 {
		t.Errorf("centre = %+v, want (9.5, 9.5)", r.Center)
	}

	// Corners of the pixel-centre box are drawn.
	for _, p := range [][2]int{{5, 5}, {14, 5}, {14, 14}, {5, 14}} {
		if px := res.Canvas.NRGBAAt(p[0], p[1]); !isColor(px, 255, 255, 0) {
			t.Errorf("corner (%d,%d) = %v, want yellow", p[0], p[1], px)
		}
	}
}

func TestFit_DiamondRectangle(t *testing.T) {
	mask := morph.NewMask(31, 31)
	for y := 0; y < 31; y++ {
		for x := 0; x < 31; x++ {
			if abs(x-15)+abs(y-15) <= 8 {
				mask.Set(x, y, true)
			}
		}
	}

	res, err := Fit(mask, WithKind(Rectangle))
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	r := res.Rectangle
	if math.Abs(r.Angle-45) > 1e-6 {
		t.Errorf("angle = %v, want 45", r.Angle)
	}
	if math.Abs(r.Area()-128) > 1e-6 {
		t.Errorf("area = %v, want 128", r.Area())
	}
}

func TestFit_Triangle(t *testing.T) {
	// Right triangle with legs of 20 pixels between pixel centres.
	mask := morph.NewMask(30, 30)
	for y := 0; y <= 20; y++ {
		for x := 0; x+y <= 20; x++ {
			mask.Set(x+2, y+2, true)
		}
	}

	res, err := Fit(mask, WithKind(Triangle))
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	tri := res.Triangle
	if tri == nil {
		t.Fatal("expected triangle parameters")
	}
	if math.Abs(tri.Area-200) > 1e-6 {
		t.Errorf("area = %v, want 200", tri.Area)
	}
	if res.Params() != any(tri) {
		t.Error("Params should return the triangle record")
	}
}

func TestFit_SquareTriangle(t *testing.T) {
	mask := createRectMask(40, 40, 5, 5, 10, 10)

	res, err := Fit(mask, WithKind(Triangle))
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	// The smallest triangle around a square has twice its area.
	if math.Abs(res.Triangle.Area-162) > 1e-6 {
		t.Errorf("area = %v, want 162", res.Triangle.Area)
	}
}

func TestFit_InvalidKind(t *testing.T) {
	mask := createDiskMask(20, 20, 10, 10, 5)

	res, err := Fit(mask, WithKind(Kind(7)))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if res != nil {
		t.Error("no result should be returned on error")
	}

	_, err = ParseKind("bogus")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if !strings.Contains(err.Error(), "circle, triangle, rectangle") {
		t.Errorf("error should name the allowed shapes: %v", err)
	}
}

func TestFit_ZeroThickness(t *testing.T) {
	mask := createDiskMask(20, 20, 10, 10, 5)

	if _, err := Fit(mask, WithThickness(0)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestFit_EmptyMask(t *testing.T) {
	if _, err := Fit(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil mask: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := Fit(morph.NewMask(0, 0)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero-size mask: expected ErrInvalidArgument, got %v", err)
	}
}

func TestFit_TwoBlobs(t *testing.T) {
	mask := createRectMask(40, 20, 2, 2, 5, 5)
	for y := 5; y < 15; y++ {
		for x := 20; x < 30; x++ {
			mask.Set(x, y, true)
		}
	}

	_, err := Fit(mask)
	if !errors.Is(err, ErrShapeDetection) {
		t.Fatalf("expected ErrShapeDetection, got %v", err)
	}
	var de *DetectionError
	if !errors.As(err, &de) || de.Contours != 2 {
		t.Errorf("expected DetectionError with 2 contours, got %v", err)
	}

	res, err := Fit(mask, WithKind(Rectangle), WithContourPolicy(LargestContour))
	if err != nil {
		t.Fatalf("LargestContour failed: %v", err)
	}
	if math.Abs(res.Rectangle.Center.X-24.5) > 1e-9 || math.Abs(res.Rectangle.Center.Y-9.5) > 1e-9 {
		t.Errorf("expected the larger blob, got centre %+v", res.Rectangle.Center)
	}
}

func TestFit_AllZeroMask(t *testing.T) {
	mask := morph.NewMask(10, 10)

	for _, policy := range []ContourPolicy{RequireSingle, LargestContour} {
		_, err := Fit(mask, WithCanvas(MaskCanvas), WithContourPolicy(policy))
		var de *DetectionError
		if !errors.As(err, &de) || de.Contours != 0 {
			t.Errorf("policy %d: expected DetectionError with 0 contours, got %v", policy, err)
		}
	}
}

func TestFit_NestedBlobIsNotExternal(t *testing.T) {
	// A ring with a speck inside its hole has one external contour.
	mask := createRectMask(30, 30, 5, 5, 20, 20)
	for y := 10; y < 20; y++ {
		for x := 10; x < 20; x++ {
			mask.Set(x, y, false)
		}
	}
	mask.Set(15, 15, true)

	res, err := Fit(mask, WithKind(Rectangle))
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if math.Abs(res.Rectangle.Area()-19*19) > 1e-6 {
		t.Errorf("area = %v, want %d", res.Rectangle.Area(), 19*19)
	}
}

func TestFit_Idempotent(t *testing.T) {
	mask := createDiskMask(40, 30, 18, 14, 9)
	mask.Set(28, 14, true)

	for _, kind := range []Kind{Circle, Triangle, Rectangle} {
		t.Run(kind.String(), func(t *testing.T) {
			a, err := Fit(mask, WithKind(kind), WithCanvas(MaskCanvas))
			if err != nil {
				t.Fatalf("Fit failed: %v", err)
			}
			b, err := Fit(mask, WithKind(kind), WithCanvas(MaskCanvas))
			if err != nil {
				t.Fatalf("Fit failed: %v", err)
			}
			if diff := cmp.Diff(a.Params(), b.Params()); diff != "" {
				t.Errorf("parameters differ (-first +second):\n%s", diff)
			}
			if diff := cmp.Diff(a.Contour, b.Contour); diff != "" {
				t.Errorf("contours differ (-first +second):\n%s", diff)
			}
			if !bytes.Equal(a.Canvas.Pix, b.Canvas.Pix) {
				t.Error("canvases differ")
			}
		})
	}
}

func TestFit_DoesNotMutateMask(t *testing.T) {
	mask := createDiskMask(20, 20, 10, 10, 5)
	before := mask.Clone()

	if _, err := Fit(mask, WithCanvas(MaskCanvas), WithThickness(-1)); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if !mask.Equal(before) {
		t.Error("mask was modified")
	}
}

func TestFit_MaskCanvasComposite(t *testing.T) {
	mask := createRectMask(30, 30, 5, 5, 12, 12)
	blue := color.NRGBA{B: 255, A: 255}

	res, err := Fit(mask, WithCanvas(MaskCanvas), WithColor(blue), WithThickness(1))
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			px := res.Canvas.NRGBAAt(x, y)
			switch {
			case isColor(px, 0, 0, 255):
			case mask.At(x, y) && !isColor(px, 255, 255, 255):
				t.Errorf("mask pixel (%d,%d) = %v, want white", x, y, px)
			case !mask.At(x, y) && !isColor(px, 0, 0, 0):
				t.Errorf("background pixel (%d,%d) = %v, want black", x, y, px)
			}
		}
	}
	// The square's centre is well inside the circle, so the mask shows there.
	if px := res.Canvas.NRGBAAt(10, 10); !isColor(px, 255, 255, 255) {
		t.Errorf("centre pixel = %v, want white", px)
	}
}

func TestFit_FilledCircle(t *testing.T) {
	mask := createDiskMask(20, 20, 10, 10, 5)

	res, err := Fit(mask, WithThickness(-1))
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if mask.At(x, y) != isColor(res.Canvas.NRGBAAt(x, y), 255, 255, 0) {
				t.Errorf("pixel (%d,%d): filled circle should match the disk", x, y)
			}
		}
	}
}

func TestFit_CanvasSize(t *testing.T) {
	mask := createDiskMask(33, 17, 16, 8, 4)

	res, err := Fit(mask)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if b := res.Canvas.Bounds(); b.Dx() != 33 || b.Dy() != 17 {
		t.Errorf("canvas = %v, want 33x17", b)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
