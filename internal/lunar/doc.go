// Package lunar estimates how full the Moon is from an image and compares the
// estimate with the ephemeris.
//
// # Measuring
//
// Measure turns an image into a binary mask, keeps the largest 8-connected
// bright region, and fits the minimal enclosing circle around it. The limb of
// the Moon is always a full semicircle, so that circle has the Moon's radius
// whatever the phase, and the ratio
//
//	ratio = region area / (π r²)
//
// tracks the illuminated fraction. Thresholding, median denoising, and
// erosion are tunable through Params, since the right settings depend on the
// instrument.
//
// # Ephemeris
//
// Illumination and Phase compute the illuminated fraction for an instant
// using the low-precision lunar phase angle from Meeus, Astronomical
// Algorithms, chapter 48. FullMoonWindow finds the full Moon nearest an
// instant and the window of days around it.
//
// # Calibration
//
// Calibrate fits illumination = slope·ratio + intercept over a set of
// measured samples and reports the Pearson correlation with its two-sided
// p-value. Outliers lists the samples whose relative offset from the fit lies
// above a given quantile.
package lunar
