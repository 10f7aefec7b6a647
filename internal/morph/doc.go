// Package morph provides binary masks and the morphological operations used to
// isolate foreground regions before shape fitting.
//
// A Mask is a 2-D occupancy grid in image coordinates: (0,0) is the top-left
// pixel, X increases rightward and Y increases downward. Masks are produced by
// thresholding an image, refined with erosion and dilation, and split into
// connected regions by labelling.
//
// # Pipeline
//
// A typical sequence mirrors how a lunar disk is separated from a dark sky:
//
//  1. Threshold: MaskFromImage keeps pixels whose grey level exceeds a cutoff
//  2. Morphology: Erode/Dilate/Open/Close remove speckle or bridge gaps
//  3. Labelling: Label assigns a unique ID to every connected region
//  4. Selection: Labels.Largest or Labels.Mask picks the regions of interest
//
// # Connectivity
//
// Labelling supports 4-connectivity (edge neighbours only) and 8-connectivity
// (edge and corner neighbours). Contour extraction in package shape treats
// foreground as 8-connected, so Eight is the natural choice before fitting.
//
// # Thread Safety
//
// Operations never mutate their inputs and return freshly allocated results,
// so they may be called concurrently on distinct or shared masks.
package morph
