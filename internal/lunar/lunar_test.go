package lunar

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/soniakeys/unit"
)

// createMoonImage draws a bright disc on a dark background. When half is
// true only the right half of the disc is lit.
func createMoonImage(width, height, cx, cy, r int, half bool) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy > r*r || (half && dx < 0) {
				img.SetGray(x, y, color.Gray{Y: 8})
				continue
			}
			img.SetGray(x, y, color.Gray{Y: 220})
		}
	}
	return img
}

func TestMeasure_FullMoon(t *testing.T) {
	img := createMoonImage(80, 80, 40, 40, 25, false)

	m, err := Measure(img, Params{Threshold: 100, MinArea: 10})
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}
	if math.Abs(m.Ratio-1) > 0.05 {
		t.Errorf("ratio = %.3f, want about 1", m.Ratio)
	}
	if math.Abs(m.Circle.CX-40) > 1 || math.Abs(m.Circle.CY-40) > 1 || math.Abs(m.Circle.R-25) > 1 {
		t.Errorf("circle = %+v, want (40, 40) r=25", m.Circle)
	}
	if m.Regions != 1 {
		t.Errorf("regions = %d, want 1", m.Regions)
	}
	if m.Overlay == nil || m.Overlay.Bounds().Dx() != 80 {
		t.Error("expected an 80-pixel-wide overlay")
	}
}

func TestMeasure_HalfMoon(t *testing.T) {
	img := createMoonImage(80, 80, 40, 40, 25, true)

	m, err := Measure(img, Params{Threshold: 100, MinArea: 10})
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}
	if m.Ratio < 0.45 || m.Ratio > 0.6 {
		t.Errorf("ratio = %.3f, want about 0.5", m.Ratio)
	}
	if math.Abs(m.Circle.R-25) > 1 {
		t.Errorf("radius = %.2f, want 25: the limb fixes the radius", m.Circle.R)
	}
}

func TestMeasure_IgnoresSpecks(t *testing.T) {
	img := createMoonImage(80, 80, 40, 40, 20, false)
	img.SetGray(2, 2, color.Gray{Y: 255})
	img.SetGray(77, 5, color.Gray{Y: 255})

	m, err := Measure(img, Params{Threshold: 100, MinArea: 10})
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}
	if m.Regions != 3 {
		t.Errorf("regions = %d, want 3", m.Regions)
	}
	if math.Abs(m.Circle.R-20) > 1 {
		t.Errorf("radius = %.2f, want 20", m.Circle.R)
	}
}

func TestMeasure_DefaultParamsRemoveSpecks(t *testing.T) {
	img := createMoonImage(80, 80, 40, 40, 20, false)
	img.SetGray(2, 2, color.Gray{Y: 255})

	m, err := Measure(img, DefaultParams())
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}
	if m.Regions != 1 {
		t.Errorf("regions = %d, want 1 after denoising", m.Regions)
	}
}

func TestMeasure_NoMoon(t *testing.T) {
	dark := image.NewGray(image.Rect(0, 0, 30, 30))

	if _, err := Measure(dark, DefaultParams()); !errors.Is(err, ErrNoMoon) {
		t.Errorf("dark image: expected ErrNoMoon, got %v", err)
	}

	small := createMoonImage(30, 30, 15, 15, 2, false)
	if _, err := Measure(small, Params{Threshold: 100, MinArea: 50}); !errors.Is(err, ErrNoMoon) {
		t.Errorf("small region: expected ErrNoMoon, got %v", err)
	}

	if _, err := Measure(image.NewGray(image.Rectangle{}), DefaultParams()); !errors.Is(err, ErrNoMoon) {
		t.Errorf("empty image: expected ErrNoMoon, got %v", err)
	}
}

func TestIllumination_KnownPhases(t *testing.T) {
	tests := []struct {
		name string
		when time.Time
		want float64
	}{
		// Full Moon 2024-04-23 23:49 UTC, new Moon 2024-04-08 18:21 UTC.
		{"full", time.Date(2024, 4, 23, 23, 49, 0, 0, time.UTC), 1},
		{"new", time.Date(2024, 4, 8, 18, 21, 0, 0, time.UTC), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Illumination(tt.when); math.Abs(got-tt.want) > 0.02 {
				t.Errorf("Illumination = %.3f, want %.1f", got, tt.want)
			}
		})
	}
}

func TestPhaseAt_Waxing(t *testing.T) {
	// First quarter 2024-04-15, last quarter 2024-05-01.
	first := PhaseAt(time.Date(2024, 4, 15, 19, 13, 0, 0, time.UTC))
	if !first.Waxing {
		t.Error("first quarter should be waxing")
	}
	if math.Abs(first.Illuminated-0.5) > 0.05 {
		t.Errorf("first quarter illuminated = %.3f, want about 0.5", first.Illuminated)
	}
	if first.PhaseAngle < 80 || first.PhaseAngle > 100 {
		t.Errorf("first quarter phase angle = %.1f, want about 90", first.PhaseAngle)
	}

	last := PhaseAt(time.Date(2024, 5, 1, 11, 27, 0, 0, time.UTC))
	if last.Waxing {
		t.Error("last quarter should be waning")
	}
}

func TestFullMoonWindow(t *testing.T) {
	when := time.Date(2024, 4, 21, 12, 0, 0, 0, time.UTC)
	w := FullMoonWindow(when, 3)

	want := time.Date(2024, 4, 23, 23, 49, 0, 0, time.UTC)
	if d := w.Full.Sub(want); d < -time.Hour || d > time.Hour {
		t.Errorf("full Moon at %v, want about %v", w.Full, want)
	}
	if got := w.End.Sub(w.Start); got != 6*24*time.Hour {
		t.Errorf("window spans %v, want 144h", got)
	}
	if !w.Contains(when) {
		t.Error("window should contain a time 2.5 days before full")
	}
	if w.Contains(when.Add(-24 * time.Hour)) {
		t.Error("window should not contain a time 3.5 days before full")
	}
}

func TestCalibrate(t *testing.T) {
	samples := []Sample{
		{Name: "a", Ratio: 0.5, Illumination: 0.52},
		{Name: "b", Ratio: 0.6, Illumination: 0.61},
		{Name: "c", Ratio: 0.7, Illumination: 0.73},
		{Name: "d", Ratio: 0.8, Illumination: 0.80},
		{Name: "e", Ratio: 0.9, Illumination: 0.91},
		{Name: "f", Ratio: 1.0, Illumination: 0.99},
	}

	c, err := Calibrate(samples)
	if err != nil {
		t.Fatalf("Calibrate failed: %v", err)
	}
	if math.Abs(c.Slope-1) > 0.1 || math.Abs(c.Intercept) > 0.1 {
		t.Errorf("fit = %.3f·x + %.3f, want about x", c.Slope, c.Intercept)
	}
	if c.R < 0.99 {
		t.Errorf("r = %.4f, want > 0.99", c.R)
	}
	if c.P > 0.001 {
		t.Errorf("p = %.5f, want < 0.001", c.P)
	}
	if c.N != 6 {
		t.Errorf("n = %d, want 6", c.N)
	}
}

func TestCalibrate_ExactLine(t *testing.T) {
	samples := []Sample{
		{Ratio: 1, Illumination: 3},
		{Ratio: 2, Illumination: 5},
		{Ratio: 3, Illumination: 7},
	}

	c, err := Calibrate(samples)
	if err != nil {
		t.Fatalf("Calibrate failed: %v", err)
	}
	if math.Abs(c.Slope-2) > 1e-9 || math.Abs(c.Intercept-1) > 1e-9 {
		t.Errorf("fit = %v·x + %v, want 2x + 1", c.Slope, c.Intercept)
	}
	if math.Abs(c.Predict(4)-9) > 1e-9 {
		t.Errorf("Predict(4) = %v, want 9", c.Predict(4))
	}
	if c.P > 1e-9 {
		t.Errorf("perfect correlation should have p near 0, got %v", c.P)
	}
}

func TestCalibrate_PValueUncorrelated(t *testing.T) {
	samples := []Sample{
		{Ratio: 1, Illumination: 1},
		{Ratio: 2, Illumination: -1},
		{Ratio: 3, Illumination: -1},
		{Ratio: 4, Illumination: 1},
	}

	c, err := Calibrate(samples)
	if err != nil {
		t.Fatalf("Calibrate failed: %v", err)
	}
	if math.Abs(c.R) > 1e-9 {
		t.Errorf("r = %v, want 0", c.R)
	}
	if math.Abs(c.P-1) > 1e-9 {
		t.Errorf("p = %v, want 1", c.P)
	}
}

func TestCalibrate_Errors(t *testing.T) {
	_, err := Calibrate([]Sample{{Ratio: 1, Illumination: 1}, {Ratio: 2, Illumination: 2}})
	if !errors.Is(err, ErrTooFewSamples) {
		t.Errorf("expected ErrTooFewSamples, got %v", err)
	}

	same := []Sample{{Ratio: 1, Illumination: 1}, {Ratio: 1, Illumination: 2}, {Ratio: 1, Illumination: 3}}
	if _, err := Calibrate(same); !errors.Is(err, ErrDegenerate) {
		t.Errorf("expected ErrDegenerate, got %v", err)
	}
}

func TestOutliers(t *testing.T) {
	samples := []Sample{
		{Name: "a", Ratio: 0.5, Illumination: 0.5},
		{Name: "b", Ratio: 0.6, Illumination: 0.6},
		{Name: "c", Ratio: 0.7, Illumination: 0.7},
		{Name: "d", Ratio: 0.8, Illumination: 0.8},
		{Name: "e", Ratio: 0.9, Illumination: 0.9},
		{Name: "odd", Ratio: 0.75, Illumination: 0.3},
	}

	c, err := Calibrate(samples)
	if err != nil {
		t.Fatalf("Calibrate failed: %v", err)
	}

	out, err := c.Outliers(0.9)
	if err != nil {
		t.Fatalf("Outliers failed: %v", err)
	}
	if len(out) != 1 || out[0].Name != "odd" {
		t.Errorf("outliers = %+v, want just odd", out)
	}

	all, err := c.Outliers(0)
	if err != nil {
		t.Fatalf("Outliers failed: %v", err)
	}
	if len(all) != len(samples)-1 {
		t.Errorf("q=0 should return all but the smallest offset, got %d", len(all))
	}

	if _, err := c.Outliers(1.5); err == nil {
		t.Error("expected error for quantile above 1")
	}
}

func TestFoldDegrees(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{90, 90},
		{180, 180},
		{270, 90},
		{-90, 90},
		{450, 90},
	}
	for _, tt := range tests {
		if got := foldDegrees(unit.AngleFromDeg(tt.in)); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("foldDegrees(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
