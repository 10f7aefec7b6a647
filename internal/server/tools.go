package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func pathProp() map[string]interface{} {
	return stringProp("Absolute path to the image file")
}

func outputPathProp() map[string]interface{} {
	return stringProp("Optional path to also write the result image to as PNG")
}

func scaleProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Optional scale factor for the returned image (e.g., 0.5 to halve). Default 1.0",
		"default":     1.0,
	}
}

func thresholdProp(def int) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Grey level (0-255) a pixel must exceed to count as foreground",
		"minimum":     0,
		"maximum":     255,
		"default":     def,
	}
}

// lunarProps are the measurement tuning knobs shared by the moon tools.
func lunarProps() map[string]interface{} {
	return map[string]interface{}{
		"threshold": thresholdProp(40),
		"median_radius": map[string]interface{}{
			"type":        "number",
			"description": "Median filter radius applied before thresholding; 0 disables. Default 1",
			"default":     1.0,
		},
		"erode_radius": map[string]interface{}{
			"type":        "number",
			"description": "Erosion radius applied to the mask to detach noise; 0 disables. Default 1",
			"default":     1.0,
		},
		"min_area": map[string]interface{}{
			"type":        "integer",
			"description": "Smallest region in pixels accepted as the Moon. Default 50",
			"default":     50,
		},
	}
}

func withProps(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Files
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format, and colour model. The decoded image is cached for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProp(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProp(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "images_layout",
			Description: "Tile several images into one figure with a title above each, side by side in a row or stacked in a column. The figure keeps the combined aspect ratio of the images.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths of the images, in display order",
					},
					"titles": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "One title per image",
					},
					"direction": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"row", "column"},
						"description": "Arrange images in a row or a column. Default row",
						"default":     "row",
					},
					"base_inches": map[string]interface{}{
						"type":        "number",
						"description": "Length of the figure's shorter side in inches. Default 4",
						"default":     4.0,
					},
					"dpi": map[string]interface{}{
						"type":        "number",
						"description": "Output resolution in dots per inch. Default 96",
						"default":     96.0,
					},
					"output_path": outputPathProp(),
				},
				"required": []string{"paths", "titles"},
			},
		},

		// Masks
		{
			Name:        "mask_to_shape",
			Description: "Threshold an image into a binary mask and fit the minimal enclosing circle, triangle, or rotated rectangle around its single foreground region. Returns the shape parameters and a rendering of the outline.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProp(),
					"threshold": thresholdProp(defaultThreshold),
					"shape": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"circle", "triangle", "rectangle"},
						"description": "Primitive to fit. Default circle",
						"default":     "circle",
					},
					"color": stringProp("Outline colour as #rrggbb, #rgb, or a name like yellow or red. Default yellow"),
					"thickness": map[string]interface{}{
						"type":        "integer",
						"description": "Outline width in pixels; negative fills the shape. Default 2",
						"default":     2,
					},
					"draw_on_mask": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw over the mask instead of a black canvas",
						"default":     false,
					},
					"largest": map[string]interface{}{
						"type":        "boolean",
						"description": "Fit the largest region when the mask has several instead of failing",
						"default":     false,
					},
					"output_path": outputPathProp(),
					"scale":       scaleProp(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "mask_label",
			Description: "Label the connected foreground regions of a thresholded image and report their areas and bounding boxes. Optionally cut the selected regions out of the original image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProp(),
					"threshold": thresholdProp(defaultThreshold),
					"connectivity": map[string]interface{}{
						"type":        "integer",
						"enum":        []int{4, 8},
						"description": "Neighbourhood joining pixels into regions. Default 8",
						"default":     8,
					},
					"min_area": map[string]interface{}{
						"type":        "integer",
						"description": "Omit regions smaller than this from the listing",
						"default":     0,
					},
					"select": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "integer"},
						"description": "Region IDs to keep in a stencil of the original image",
					},
					"output_path": outputPathProp(),
					"scale":       scaleProp(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "mask_morphology",
			Description: "Apply erosion, dilation, opening, or closing to a thresholded image and return the resulting mask.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProp(),
					"threshold": thresholdProp(defaultThreshold),
					"operation": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"erode", "dilate", "open", "close"},
						"description": "Morphological operation",
					},
					"radius": map[string]interface{}{
						"type":        "number",
						"description": "Structuring element radius in pixels. Default 1",
						"default":     1.0,
					},
					"output_path": outputPathProp(),
					"scale":       scaleProp(),
				},
				"required": []string{"path", "operation"},
			},
		},

		// Moon
		{
			Name:        "moon_phase",
			Description: "Measure the illuminated fraction of the Moon in a photograph as the ratio of the lit region's area to its minimal enclosing circle. With a time, also returns the ephemeris phase for comparison.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProps(lunarProps(), map[string]interface{}{
					"path":        pathProp(),
					"time":        stringProp("Optional capture time (RFC 3339) for the ephemeris comparison"),
					"output_path": outputPathProp(),
					"scale":       scaleProp(),
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "moon_illumination",
			Description: "Compute the Moon's illuminated fraction and phase angle at a time, the nearest full Moon, and whether the time falls within a window around it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"time": stringProp("Time in RFC 3339 format. Default now"),
					"window_days": map[string]interface{}{
						"type":        "number",
						"description": "Days either side of the full Moon counted as in window. Default 3",
						"default":     3.0,
					},
				},
			},
		},
		{
			Name:        "moon_calibrate",
			Description: "Fit a linear calibration of ephemeris illumination against measured area ratio, with correlation and p-value, and list the samples furthest from the fit.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProps(lunarProps(), map[string]interface{}{
					"samples": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"name":         map[string]interface{}{"type": "string"},
								"ratio":        map[string]interface{}{"type": "number"},
								"illumination": map[string]interface{}{"type": "number"},
							},
							"required": []string{"ratio", "illumination"},
						},
						"description": "Already measured samples",
					},
					"observations": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"path": map[string]interface{}{"type": "string"},
								"time": map[string]interface{}{"type": "string"},
							},
							"required": []string{"path", "time"},
						},
						"description": "Photographs to measure, each with its RFC 3339 capture time",
					},
					"quantile": map[string]interface{}{
						"type":        "number",
						"description": "Samples whose offset from the fit exceeds this quantile are reported as outliers. Default 0.98",
						"default":     0.98,
					},
				}),
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
