package sixheat

import (
	"image"
	"image/color"
)

// Background marks a pixel that belongs to a margin or to band padding.
const Background uint8 = 0xff

// PixelBuffer is a row major buffer of palette indices, index = y*Width + x.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewPixelBuffer allocates a buffer filled with Background.
func NewPixelBuffer(width, height int) *PixelBuffer {
	pix := make([]uint8, width*height)
	for i := range pix {
		pix[i] = Background
	}

	return &PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    pix,
	}
}

// At returns the palette index at x, y.
func (b *PixelBuffer) At(x, y int) uint8 {
	return b.Pix[y*b.Width+x]
}

func (b *PixelBuffer) fill(x0, y0, size int, idx uint8) {
	for y := y0; y < y0+size; y++ {
		row := b.Pix[y*b.Width+x0 : y*b.Width+x0+size]
		for x := range row {
			row[x] = idx
		}
	}
}

// Rasterize draws every cell of the grid as a solid square and pads the
// result with Background rows up to a whole number of bands.
func Rasterize(grid Grid, geom Geometry) *PixelBuffer {
	buf := NewPixelBuffer(geom.Width, geom.PaddedHeight)
	step := geom.CellSize + geom.MarginSize

	for r := 0; r < grid.Rows; r++ {
		for c := 0; c < grid.Cols; c++ {
			if idx, ok := grid.At(r, c); ok {
				buf.fill(c*step, r*step, geom.CellSize, idx)
			}
		}
	}

	return buf
}

// Paletted returns the buffer as a paletted image. Background pixels become
// transparent.
func (b *PixelBuffer) Paletted(palette Palette) *image.Paletted {
	colors := append(palette.Colors(), color.Transparent)
	transparent := uint8(len(colors) - 1)

	img := image.NewPaletted(image.Rect(0, 0, b.Width, b.Height), colors)
	for i, idx := range b.Pix {
		if idx == Background || int(idx) >= len(palette) {
			img.Pix[i] = transparent
		} else {
			img.Pix[i] = idx
		}
	}

	return img
}
