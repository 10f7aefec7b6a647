package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"gonum.org/v1/plot/vg"

	"github.com/knowing-the-sky/skyshape-mcp/internal/imaging"
	"github.com/knowing-the-sky/skyshape-mcp/internal/layout"
	"github.com/knowing-the-sky/skyshape-mcp/internal/lunar"
	"github.com/knowing-the-sky/skyshape-mcp/internal/morph"
	"github.com/knowing-the-sky/skyshape-mcp/internal/shape"
)

// errInvalidArgs marks argument problems detected before a tool runs. They
// are reported as JSON-RPC invalid params rather than tool failures.
var errInvalidArgs = errors.New("invalid arguments")

// defaultThreshold splits 0/255 mask images and ordinary photos alike.
const defaultThreshold = 127

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "mask_to_shape").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Argument errors return code -32602; tool execution errors return -32000.
// Both carry the Go error string as data.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		if s.debug {
			log.Printf("tool %s failed: %v", params.Name, err)
		}
		if errors.Is(err, errInvalidArgs) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image files
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "images_layout":
		return s.handleImagesLayout(args)

	// Masks
	case "mask_to_shape":
		return s.handleMaskToShape(args)
	case "mask_label":
		return s.handleMaskLabel(args)
	case "mask_morphology":
		return s.handleMaskMorphology(args)

	// Moon
	case "moon_phase":
		return s.handleMoonPhase(args)
	case "moon_illumination":
		return s.handleMoonIllumination(args)
	case "moon_calibrate":
		return s.handleMoonCalibrate(args)

	default:
		return nil, fmt.Errorf("%w: unknown tool: %s", errInvalidArgs, name)
	}
}

// decodeArgs unmarshals tool arguments. Missing arguments decode as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return nil
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// emit encodes img for the response and, when outputPath is set, also
// writes it to disk.
func (s *Server) emit(img image.Image, outputPath string, scale float64) (*imaging.ImageResult, error) {
	res, err := imaging.EncodePNG(img, scale)
	if err != nil {
		return nil, err
	}
	if outputPath != "" {
		if err := imaging.Save(s.cache, img, outputPath); err != nil {
			return nil, err
		}
		res.Path = outputPath
	}
	return res, nil
}

// maskArgs are shared by tools that threshold an image into a mask.
type maskArgs struct {
	Path       string  `json:"path"`
	Threshold  *int    `json:"threshold"`
	OutputPath string  `json:"output_path"`
	Scale      float64 `json:"scale"`
}

func (a maskArgs) threshold() (uint8, error) {
	if a.Threshold == nil {
		return defaultThreshold, nil
	}
	if *a.Threshold < 0 || *a.Threshold > 255 {
		return 0, fmt.Errorf("%w: threshold %d outside 0-255", errInvalidArgs, *a.Threshold)
	}
	return uint8(*a.Threshold), nil
}

// loadMask loads the image at a.Path and thresholds it.
func (s *Server) loadMask(a maskArgs) (image.Image, *morph.Mask, error) {
	if a.Path == "" {
		return nil, nil, fmt.Errorf("%w: path is required", errInvalidArgs)
	}
	level, err := a.threshold()
	if err != nil {
		return nil, nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, nil, err
	}
	return img, morph.MaskFromImage(img, level), nil
}

// === Image File Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidArgs)
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidArgs)
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imagesLayoutArgs struct {
	Paths      []string `json:"paths"`
	Titles     []string `json:"titles"`
	Direction  string   `json:"direction"`
	BaseInches float64  `json:"base_inches"`
	DPI        float64  `json:"dpi"`
	OutputPath string   `json:"output_path"`
}

type imagesLayoutResult struct {
	Grid  layout.Grid          `json:"grid"`
	Image *imaging.ImageResult `json:"image"`
}

func (s *Server) handleImagesLayout(args json.RawMessage) (interface{}, error) {
	var a imagesLayoutArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	dir, err := layout.ParseDirection(a.Direction)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	if a.BaseInches == 0 {
		a.BaseInches = 4
	}

	images := make([]image.Image, len(a.Paths))
	sizes := make([]image.Point, len(a.Paths))
	for i, p := range a.Paths {
		img, err := s.cache.Load(p)
		if err != nil {
			return nil, err
		}
		images[i], sizes[i] = img, img.Bounds().Size()
	}

	grid, err := layout.ComputeGrid(sizes, dir, a.BaseInches)
	if err != nil {
		return nil, err
	}
	fig, err := layout.Render(images, a.Titles, layout.Options{
		Direction: dir,
		Base:      vg.Length(a.BaseInches) * vg.Inch,
		DPI:       a.DPI,
	})
	if err != nil {
		return nil, err
	}

	out, err := s.emit(fig, a.OutputPath, 1)
	if err != nil {
		return nil, err
	}
	return &imagesLayoutResult{Grid: grid, Image: out}, nil
}

// === Mask Handlers ===

type maskToShapeArgs struct {
	maskArgs
	Shape      string `json:"shape"`
	Color      string `json:"color"`
	Thickness  *int   `json:"thickness"`
	DrawOnMask bool   `json:"draw_on_mask"`
	Largest    bool   `json:"largest"`
}

type maskToShapeResult struct {
	*shape.Result
	Color         string               `json:"color"`
	ContourPoints int                  `json:"contour_points"`
	Image         *imaging.ImageResult `json:"image"`
}

func (s *Server) handleMaskToShape(args json.RawMessage) (interface{}, error) {
	var a maskToShapeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	kind, err := shape.ParseKind(a.Shape)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	opts := []shape.Option{shape.WithKind(kind)}

	col := shape.DefaultColor
	if a.Color != "" {
		if col, err = imaging.ParseColor(a.Color); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
		}
	}
	opts = append(opts, shape.WithColor(col))

	if a.Thickness != nil {
		opts = append(opts, shape.WithThickness(*a.Thickness))
	}
	if a.DrawOnMask {
		opts = append(opts, shape.WithCanvas(shape.MaskCanvas))
	}
	if a.Largest {
		opts = append(opts, shape.WithContourPolicy(shape.LargestContour))
	}

	_, mask, err := s.loadMask(a.maskArgs)
	if err != nil {
		return nil, err
	}
	res, err := shape.Fit(mask, opts...)
	if err != nil {
		return nil, err
	}

	out, err := s.emit(res.Canvas, a.OutputPath, a.Scale)
	if err != nil {
		return nil, err
	}
	return &maskToShapeResult{
		Result:        res,
		Color:         imaging.ColorHex(col),
		ContourPoints: len(res.Contour),
		Image:         out,
	}, nil
}

type maskLabelArgs struct {
	maskArgs
	Connectivity int   `json:"connectivity"`
	MinArea      int   `json:"min_area"`
	Select       []int `json:"select"`
}

type maskLabelResult struct {
	Count    int                  `json:"count"`
	Regions  []morph.Region       `json:"regions"`
	Largest  *morph.Region        `json:"largest,omitempty"`
	Selected []int                `json:"selected,omitempty"`
	Image    *imaging.ImageResult `json:"image,omitempty"`
}

func (s *Server) handleMaskLabel(args json.RawMessage) (interface{}, error) {
	var a maskLabelArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	conn := morph.Eight
	switch a.Connectivity {
	case 0, 8:
	case 4:
		conn = morph.Four
	default:
		return nil, fmt.Errorf("%w: connectivity must be 4 or 8, got %d", errInvalidArgs, a.Connectivity)
	}

	img, mask, err := s.loadMask(a.maskArgs)
	if err != nil {
		return nil, err
	}
	labels := morph.Label(mask, conn)

	res := &maskLabelResult{Count: labels.Count(), Regions: []morph.Region{}}
	for _, r := range labels.Regions() {
		if r.Area >= a.MinArea {
			res.Regions = append(res.Regions, r)
		}
	}
	if r, ok := labels.Largest(); ok {
		res.Largest = &r
	}

	if len(a.Select) == 0 {
		return res, nil
	}
	for _, id := range a.Select {
		if _, ok := labels.Region(id); !ok {
			return nil, fmt.Errorf("%w: no region with id %d", errInvalidArgs, id)
		}
	}
	stencil, err := morph.Stencil(img, labels.Mask(a.Select...))
	if err != nil {
		return nil, err
	}
	if res.Image, err = s.emit(stencil, a.OutputPath, a.Scale); err != nil {
		return nil, err
	}
	res.Selected = a.Select
	return res, nil
}

type maskMorphologyArgs struct {
	maskArgs
	Operation string  `json:"operation"`
	Radius    float64 `json:"radius"`
}

type maskMorphologyResult struct {
	Operation        string               `json:"operation"`
	Radius           float64              `json:"radius"`
	ForegroundBefore int                  `json:"foreground_before"`
	ForegroundAfter  int                  `json:"foreground_after"`
	Image            *imaging.ImageResult `json:"image"`
}

func (s *Server) handleMaskMorphology(args json.RawMessage) (interface{}, error) {
	var a maskMorphologyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	op, err := morph.ParseOperation(a.Operation)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	if a.Radius == 0 {
		a.Radius = 1
	}

	_, mask, err := s.loadMask(a.maskArgs)
	if err != nil {
		return nil, err
	}
	out, err := morph.Apply(mask, op, a.Radius)
	if err != nil {
		return nil, err
	}

	img, err := s.emit(out.Gray(), a.OutputPath, a.Scale)
	if err != nil {
		return nil, err
	}
	return &maskMorphologyResult{
		Operation:        string(op),
		Radius:           a.Radius,
		ForegroundBefore: mask.Count(),
		ForegroundAfter:  out.Count(),
		Image:            img,
	}, nil
}

// === Moon Handlers ===

// lunarArgs override fields of lunar.DefaultParams when present.
type lunarArgs struct {
	Threshold    *int     `json:"threshold"`
	MedianRadius *float64 `json:"median_radius"`
	ErodeRadius  *float64 `json:"erode_radius"`
	MinArea      *int     `json:"min_area"`
}

func (a lunarArgs) params() (lunar.Params, error) {
	p := lunar.DefaultParams()
	if a.Threshold != nil {
		if *a.Threshold < 0 || *a.Threshold > 255 {
			return p, fmt.Errorf("%w: threshold %d outside 0-255", errInvalidArgs, *a.Threshold)
		}
		p.Threshold = uint8(*a.Threshold)
	}
	if a.MedianRadius != nil {
		p.MedianRadius = *a.MedianRadius
	}
	if a.ErodeRadius != nil {
		p.ErodeRadius = *a.ErodeRadius
	}
	if a.MinArea != nil {
		p.MinArea = *a.MinArea
	}
	return p, nil
}

// parseTime reads an RFC 3339 timestamp; empty means now.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q is not RFC 3339", errInvalidArgs, s)
	}
	return t, nil
}

type moonPhaseArgs struct {
	lunarArgs
	Path       string  `json:"path"`
	Time       string  `json:"time"`
	OutputPath string  `json:"output_path"`
	Scale      float64 `json:"scale"`
}

type moonPhaseResult struct {
	*lunar.Measurement
	Params lunar.Params         `json:"params"`
	Phase  *lunar.Phase         `json:"ephemeris,omitempty"`
	Image  *imaging.ImageResult `json:"image"`
}

func (s *Server) handleMoonPhase(args json.RawMessage) (interface{}, error) {
	var a moonPhaseArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidArgs)
	}
	p, err := a.params()
	if err != nil {
		return nil, err
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	m, err := lunar.Measure(img, p)
	if err != nil {
		return nil, err
	}

	res := &moonPhaseResult{Measurement: m, Params: p}
	if a.Time != "" {
		t, err := parseTime(a.Time)
		if err != nil {
			return nil, err
		}
		phase := lunar.PhaseAt(t)
		res.Phase = &phase
	}
	if res.Image, err = s.emit(m.Overlay, a.OutputPath, a.Scale); err != nil {
		return nil, err
	}
	return res, nil
}

type moonIlluminationArgs struct {
	Time       string   `json:"time"`
	WindowDays *float64 `json:"window_days"`
}

type moonIlluminationResult struct {
	lunar.Phase
	Window   lunar.Window `json:"full_moon_window"`
	InWindow bool         `json:"in_window"`
}

func (s *Server) handleMoonIllumination(args json.RawMessage) (interface{}, error) {
	var a moonIlluminationArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	t, err := parseTime(a.Time)
	if err != nil {
		return nil, err
	}
	days := 3.0
	if a.WindowDays != nil {
		if *a.WindowDays < 0 {
			return nil, fmt.Errorf("%w: window_days must not be negative", errInvalidArgs)
		}
		days = *a.WindowDays
	}

	w := lunar.FullMoonWindow(t, days)
	return &moonIlluminationResult{
		Phase:    lunar.PhaseAt(t),
		Window:   w,
		InWindow: w.Contains(t),
	}, nil
}

type moonObservation struct {
	Path string `json:"path"`
	Time string `json:"time"`
}

type moonCalibrateArgs struct {
	lunarArgs
	Samples      []lunar.Sample    `json:"samples"`
	Observations []moonObservation `json:"observations"`
	Quantile     *float64          `json:"quantile"`
}

type skippedObservation struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type moonCalibrateResult struct {
	*lunar.Calibration
	Samples  []lunar.Sample       `json:"samples"`
	Outliers []lunar.Sample       `json:"outliers"`
	Skipped  []skippedObservation `json:"skipped,omitempty"`
}

// handleMoonCalibrate fits given samples plus samples measured from
// observations. Observations in which no Moon is found are skipped and
// reported rather than failing the call.
func (s *Server) handleMoonCalibrate(args json.RawMessage) (interface{}, error) {
	var a moonCalibrateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	p, err := a.params()
	if err != nil {
		return nil, err
	}
	q := 0.98
	if a.Quantile != nil {
		q = *a.Quantile
	}

	res := &moonCalibrateResult{Samples: append([]lunar.Sample(nil), a.Samples...)}
	for _, obs := range a.Observations {
		t, err := parseTime(obs.Time)
		if err != nil {
			return nil, err
		}
		img, err := s.cache.Load(obs.Path)
		if err != nil {
			return nil, err
		}
		m, err := lunar.Measure(img, p)
		if errors.Is(err, lunar.ErrNoMoon) {
			res.Skipped = append(res.Skipped, skippedObservation{Path: obs.Path, Error: err.Error()})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", obs.Path, err)
		}
		res.Samples = append(res.Samples, lunar.Sample{
			Name:         obs.Path,
			Ratio:        m.Ratio,
			Illumination: lunar.Illumination(t),
		})
	}

	if res.Calibration, err = lunar.Calibrate(res.Samples); err != nil {
		return nil, err
	}
	if res.Outliers, err = res.Calibration.Outliers(q); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	if res.Outliers == nil {
		res.Outliers = []lunar.Sample{}
	}
	return res, nil
}
