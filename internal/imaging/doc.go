// Package imaging loads, describes, and encodes the images the server works
// on.
//
// Images are read once through ImageCache and shared between tool calls.
// PNG, JPEG, GIF, TIFF, and BMP files are decoded; the format is taken from
// the file contents rather than its extension.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Regions are half-open:
// Min is inclusive and Max exclusive.
//
// # Results
//
// Rendered images leave the server as ImageResult values holding a base64
// PNG, optionally also written to disk with Save. Colours are accepted as
// hex strings or a few common names and reported back as "#rrggbb".
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Cached images are shared, so callers
// must treat them as read-only and copy before drawing.
package imaging
