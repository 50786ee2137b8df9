// Package sixheat draws integer samples as a heatmap in the sixel terminal
// graphics format.
package sixheat

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Options configures Render.
type Options struct {
	CellSize   int
	MarginSize int
	MaxCols    int

	Compress bool
	// MinRun is the shortest run replaced by a repeat token when
	// compressing.
	MinRun int
	// Fold drops lone blank columns before color changes when compressing.
	Fold bool

	Palette Palette

	// MaxPixels limits the padded image area, zero means no limit.
	MaxPixels int
}

// ErrImageTooLarge is returned when an image would exceed Options.MaxPixels.
var ErrImageTooLarge = errors.New("sixheat: image too large")

// DefaultOptions returns the default rendering options.
func DefaultOptions() Options {
	return Options{
		CellSize:   16,
		MarginSize: 4,
		MaxCols:    32,
		MinRun:     DefaultMinRun,
		Palette:    DefaultPalette,
	}
}

// Validate returns an error if the options cannot produce an image.
func (o *Options) Validate() error {
	if o.CellSize <= 0 || o.MaxCols <= 0 || o.MarginSize < 0 || o.MaxPixels < 0 {
		return fmt.Errorf("%w: cell size %d, margin %d, max columns %d",
			ErrInvalidGeometry, o.CellSize, o.MarginSize, o.MaxCols)
	}
	if err := o.Palette.validate(); err != nil {
		return err
	}

	return nil
}

// Result is a rendered heatmap.
type Result struct {
	// Sixel is the encoded image, empty if there were no samples.
	Sixel []byte

	Grid     Grid
	Geometry Geometry
	Pixels   *PixelBuffer
	Palette  Palette

	Min     int
	Max     int
	Dropped int
}

// Empty returns whether no image was produced.
func (r *Result) Empty() bool {
	return len(r.Sixel) == 0
}

// RenderTokens parses tokens and renders them. Tokens that are not integers
// are dropped.
func RenderTokens(tokens []string, opts Options) (*Result, error) {
	samples, dropped := ParseTokens(tokens)
	result, err := Render(samples, opts)
	if err != nil {
		return nil, err
	}

	result.Dropped = dropped
	return result, nil
}

// RenderString is RenderTokens for whitespace separated input.
func RenderString(input string, opts Options) (*Result, error) {
	return RenderTokens(strings.Fields(input), opts)
}

// Render renders samples as a sixel heatmap. No samples produce an empty
// result and no error.
func Render(samples []int, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("sixheat: Render: %w", err)
	}

	result := &Result{Palette: opts.Palette}

	min, max, ok := Bounds(samples)
	if !ok {
		return result, nil
	}
	result.Min, result.Max = min, max

	grid, ok := BuildGrid(Quantize(samples, len(opts.Palette)), opts.MaxCols)
	if !ok {
		return result, nil
	}
	result.Grid = grid

	if opts.MaxPixels > 0 && area(grid, opts) > float64(opts.MaxPixels) {
		return nil, fmt.Errorf("%w: %d cells of %d pixels in %d columns exceed %d pixels",
			ErrImageTooLarge, len(grid.Cells), opts.CellSize, grid.Cols, opts.MaxPixels)
	}

	result.Geometry = grid.Geometry(opts.CellSize, opts.MarginSize)
	result.Pixels = Rasterize(grid, result.Geometry)

	stream, err := Encode(result.Pixels, opts.Palette)
	if err != nil {
		return nil, fmt.Errorf("sixheat: Render: %w", err)
	}

	if opts.Compress {
		stream = Compressor{MinRun: opts.MinRun, Fold: opts.Fold}.Compress(stream)
	}
	result.Sixel = stream

	return result, nil
}

// area is the padded pixel area of the grid, in floating point so that huge
// sizes do not overflow.
func area(grid Grid, opts Options) float64 {
	width := float64(opts.CellSize)*float64(grid.Cols) +
		float64(opts.MarginSize)*float64(grid.Cols-1)
	height := float64(opts.CellSize)*float64(grid.Rows) +
		float64(opts.MarginSize)*float64(grid.Rows-1)
	return width * math.Ceil(height/BandHeight) * BandHeight
}
