// Package server implements the MCP (Model Context Protocol) server that
// exposes mask geometry, figure layout, and lunar phase tools.
//
// # Protocol
//
// The server speaks JSON-RPC 2.0 over stdio, one message per line:
//   - initialize: protocol handshake
//   - notifications/initialized: acknowledged without a response
//   - tools/list: enumerate tools
//   - tools/call: execute a tool
//   - ping: health check
//
// # Available Tools
//
// Image files:
//   - image_load: format, colour model, and size of an image file
//   - image_dimensions: width and height
//   - images_layout: tile images into one titled figure
//
// Masks:
//   - mask_to_shape: minimal enclosing circle, triangle, or rectangle
//   - mask_label: connected regions and region stencils
//   - mask_morphology: erode, dilate, open, or close a mask
//
// Moon:
//   - moon_phase: illuminated fraction measured from a photograph
//   - moon_illumination: ephemeris phase and full Moon window
//   - moon_calibrate: fit measured ratios against the ephemeris
//
// Images are decoded once per path and cached for the life of the process.
// Writing an output file evicts that path from the cache.
//
// # Errors
//
// Malformed arguments are answered with code -32602 and tool failures with
// -32000. In both cases data carries the Go error string.
package server
