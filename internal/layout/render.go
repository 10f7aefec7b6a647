package layout

import (
	"fmt"
	"image"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Options controls Render. Zero values select the defaults.
type Options struct {
	Direction Direction

	// Base is the length of the figure's shorter side. Defaults to 4 inches.
	Base vg.Length

	// DPI is the output resolution. Defaults to 96.
	DPI float64
}

const (
	defaultBase = 4 * vg.Inch
	defaultDPI  = 96
)

// Render draws every image into its own subplot and returns the composed
// figure. titles may be nil; otherwise it needs at least one entry per image,
// and empty entries leave that subplot untitled. Each image keeps its aspect
// ratio within its tile.
func Render(images []image.Image, titles []string, opts Options) (image.Image, error) {
	if titles != nil && len(titles) < len(images) {
		return nil, fmt.Errorf("%w: %d titles for %d images", ErrArgumentMismatch, len(titles), len(images))
	}
	if opts.Base <= 0 {
		opts.Base = defaultBase
	}
	if opts.DPI <= 0 {
		opts.DPI = defaultDPI
	}

	sizes := make([]image.Point, len(images))
	for i, img := range images {
		sizes[i] = img.Bounds().Size()
	}
	grid, err := ComputeGrid(sizes, opts.Direction, float64(opts.Base))
	if err != nil {
		return nil, err
	}

	tileW := grid.FigWidth / float64(grid.Cols)
	tileH := grid.FigHeight / float64(grid.Rows)

	plots := make([][]*plot.Plot, grid.Rows)
	for r := range plots {
		plots[r] = make([]*plot.Plot, grid.Cols)
	}
	for i, img := range images {
		p := plot.New()
		p.HideAxes()
		if titles != nil {
			p.Title.Text = titles[i]
		}

		w, h := float64(sizes[i].X), float64(sizes[i].Y)
		p.Add(plotter.NewImage(img, 0, 0, w, h))
		fitAxes(p, w, h, tileW/tileH)

		if opts.Direction == Row {
			plots[0][i] = p
		} else {
			plots[i][0] = p
		}
	}

	canvas := vgimg.NewWith(
		vgimg.UseWH(vg.Length(grid.FigWidth), vg.Length(grid.FigHeight)),
		vgimg.UseDPI(int(opts.DPI)),
	)
	dc := draw.New(canvas)
	tiles := draw.Tiles{
		Rows: grid.Rows,
		Cols: grid.Cols,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}

	tiled := plot.Align(plots, tiles, dc)
	for r := range plots {
		for c := range plots[r] {
			plots[r][c].Draw(tiled[r][c])
		}
	}
	return canvas.Image(), nil
}

// fitAxes widens one axis range so that w×h data units keep their shape in a
// tile of the given aspect, centring the image.
func fitAxes(p *plot.Plot, w, h, tileAspect float64) {
	p.X.Min, p.X.Max = 0, w
	p.Y.Min, p.Y.Max = 0, h
	if w/h > tileAspect {
		span := w / tileAspect
		p.Y.Min, p.Y.Max = (h-span)/2, (h+span)/2
	} else {
		span := h * tileAspect
		p.X.Min, p.X.Max = (w-span)/2, (w+span)/2
	}
}
