package lunar

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"

	"github.com/knowing-the-sky/skyshape-mcp/internal/morph"
	"github.com/knowing-the-sky/skyshape-mcp/internal/shape"
)

// ErrNoMoon reports an image in which no usable bright region was found.
var ErrNoMoon = errors.New("no moon found")

// Params tunes Measure. The zero value thresholds at grey level 0 with no
// denoising or erosion; DefaultParams is a better starting point.
type Params struct {
	// Threshold is the grey level a pixel must exceed to count as Moon.
	Threshold uint8 `json:"threshold"`

	// MedianRadius applies a median filter of this radius before
	// thresholding when positive.
	MedianRadius float64 `json:"median_radius"`

	// ErodeRadius erodes the mask by this radius when positive, detaching
	// specks and scan-line noise from the disc.
	ErodeRadius float64 `json:"erode_radius"`

	// MinArea is the smallest region, in pixels, accepted as the Moon.
	MinArea int `json:"min_area"`
}

// DefaultParams returns the settings used when a caller supplies none.
func DefaultParams() Params {
	return Params{
		Threshold:    40,
		MedianRadius: 1,
		ErodeRadius:  1,
		MinArea:      50,
	}
}

// Measurement is the result of measuring one image.
type Measurement struct {
	// Ratio is the region area over the area of its enclosing circle.
	Ratio float64 `json:"ratio"`

	// Area is the size of the Moon region in pixels.
	Area int `json:"area"`

	// Circle is the minimal enclosing circle of the region.
	Circle shape.CircleParams `json:"circle"`

	// Bounds is the bounding box of the region.
	Bounds image.Rectangle `json:"bounds"`

	// Regions is the number of bright regions found before the largest was
	// chosen.
	Regions int `json:"regions"`

	// Mask holds only the Moon region.
	Mask *morph.Mask `json:"-"`

	// Overlay shows the region in white with the fitted circle drawn on it.
	Overlay *image.NRGBA `json:"-"`
}

// Measure estimates the illuminated fraction of the Moon in img.
func Measure(img image.Image, p Params) (*Measurement, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrNoMoon)
	}

	var src image.Image = imaging.Grayscale(img)
	if p.MedianRadius > 0 {
		src = effect.Median(src, p.MedianRadius)
	}

	mask := morph.MaskFromImage(src, p.Threshold)
	if p.ErodeRadius > 0 {
		mask = morph.Erode(mask, p.ErodeRadius)
	}

	labels := morph.Label(mask, morph.Eight)
	region, ok := labels.Largest()
	if !ok {
		return nil, fmt.Errorf("%w: nothing brighter than %d", ErrNoMoon, p.Threshold)
	}
	if region.Area < p.MinArea {
		return nil, fmt.Errorf("%w: largest region has %d pixels, need %d", ErrNoMoon, region.Area, p.MinArea)
	}

	moon := labels.Mask(region.ID)
	fit, err := shape.Fit(moon, shape.WithKind(shape.Circle), shape.WithCanvas(shape.MaskCanvas))
	if err != nil {
		return nil, fmt.Errorf("fit moon outline: %w", err)
	}
	if fit.Circle.R <= 0 {
		return nil, fmt.Errorf("%w: region has no extent", ErrNoMoon)
	}

	return &Measurement{
		Ratio:   float64(region.Area) / fit.Circle.Area(),
		Area:    region.Area,
		Circle:  *fit.Circle,
		Bounds:  region.Bounds,
		Regions: labels.Count(),
		Mask:    moon,
		Overlay: fit.Canvas,
	}, nil
}
