// Package shape fits the smallest enclosing circle, triangle, or rotated
// rectangle around the foreground of a binary mask and renders it.
//
// This is the computational core behind the mask_to_shape tool: given a
// morph.Mask holding exactly one foreground region, Fit returns the numeric
// parameters of the requested primitive together with an RGB canvas on which
// the primitive has been drawn.
//
// # Pipeline
//
// Fit is a single linear pipeline:
//
//  1. Contour Extraction: trace the outer border of each outermost 8-connected
//     region (external-only retrieval) and keep only the points where the
//     border changes direction (simple chain approximation)
//  2. Contour Selection: exactly one external contour is required; zero or
//     several yield ErrShapeDetection unless LargestContour is requested
//  3. Minimal Shape: compute the enclosing circle, triangle, or rectangle of
//     the contour points
//  4. Rendering: allocate the canvas and draw the primitive's outline (or a
//     filled primitive when thickness is negative)
//
// No canvas is allocated until the parameters have been computed, so a failed
// call never leaves a partially drawn buffer behind.
//
// # Algorithms
//
//   - Contours: Suzuki–Abe border following on 8-connected foreground
//   - Convex hull: Andrew's monotone chain, collinear points removed
//   - Circle: Welzl's incremental minimal enclosing circle on hull vertices
//   - Rectangle: rotating calipers; one side of the optimum is flush with a
//     hull edge, so every edge orientation is tried
//   - Triangle: a minimal enclosing triangle exists with two sides flush with
//     hull edges and the midpoint of the third side touching the hull. Every
//     pair of edges is tried as a wedge and closed by the best supporting line
//
// # Coordinate System
//
// Contour points are pixel centres in image coordinates:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Rectangle angles are measured from the +X axis toward +Y (clockwise on
// screen) and normalised to [0, 90); width is the extent along that angle.
//
// # Parameter Precision
//
// Circle and rectangle parameters keep full floating-point precision; they are
// rounded to whole pixels only for drawing. Triangle vertices are returned
// already rounded, exactly as they are handed to the renderer.
package shape
