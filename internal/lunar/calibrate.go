package lunar

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrTooFewSamples reports fewer than three samples, which leaves no
	// degrees of freedom for the correlation test.
	ErrTooFewSamples = errors.New("too few samples")

	// ErrDegenerate reports samples whose ratios are all equal.
	ErrDegenerate = errors.New("degenerate samples")
)

// Sample pairs a measured ratio with the ephemeris illumination for the same
// image.
type Sample struct {
	Name         string  `json:"name,omitempty"`
	Ratio        float64 `json:"ratio"`
	Illumination float64 `json:"illumination"`
}

// Calibration is a least-squares fit of illumination against ratio.
type Calibration struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`

	// R is the Pearson correlation coefficient.
	R float64 `json:"r"`

	// P is the two-sided p-value for R under the null hypothesis of no
	// correlation.
	P float64 `json:"p"`

	N int `json:"n"`

	samples []Sample
}

// Calibrate fits the samples. At least three are required.
func Calibrate(samples []Sample) (*Calibration, error) {
	n := len(samples)
	if n < 3 {
		return nil, fmt.Errorf("%w: got %d, need at least 3", ErrTooFewSamples, n)
	}

	x := make([]float64, n)
	y := make([]float64, n)
	for i, s := range samples {
		x[i], y[i] = s.Ratio, s.Illumination
	}
	if stat.Variance(x, nil) == 0 {
		return nil, fmt.Errorf("%w: every ratio is %v", ErrDegenerate, x[0])
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		// Constant illumination: the fit is flat and says nothing.
		r = 0
	}

	c := &Calibration{
		Slope:     slope,
		Intercept: intercept,
		R:         r,
		P:         pValue(r, n),
		N:         n,
		samples:   append([]Sample(nil), samples...),
	}
	return c, nil
}

// pValue is the two-sided p-value of a Pearson r from n samples, using
// t = r·√((n-2)/(1-r²)) with n-2 degrees of freedom.
func pValue(r float64, n int) float64 {
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.Survival(math.Abs(t))
}

// Predict returns the fitted illumination for a ratio.
func (c *Calibration) Predict(ratio float64) float64 {
	return c.Slope*ratio + c.Intercept
}

// Offset returns |1 - illumination / predicted| for a sample.
// A zero prediction gives +Inf.
func (c *Calibration) Offset(s Sample) float64 {
	pred := c.Predict(s.Ratio)
	if pred == 0 {
		return math.Inf(1)
	}
	return math.Abs(1 - s.Illumination/pred)
}

// Outliers returns the samples whose offset lies strictly above the q
// quantile of all offsets, q in [0, 1]. Samples keep their input order.
func (c *Calibration) Outliers(q float64) ([]Sample, error) {
	if q < 0 || q > 1 || math.IsNaN(q) {
		return nil, fmt.Errorf("quantile %v outside [0, 1]", q)
	}

	offsets := make([]float64, len(c.samples))
	for i, s := range c.samples {
		offsets[i] = c.Offset(s)
	}
	sorted := append([]float64(nil), offsets...)
	sort.Float64s(sorted)
	cut := stat.Quantile(q, stat.LinInterp, sorted, nil)

	var out []Sample
	for i, s := range c.samples {
		if offsets[i] > cut {
			out = append(out, s)
		}
	}
	return out, nil
}
