// Package preview writes a heatmap pixel buffer as a regular image file.
package preview

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/gift"
	"github.com/tmpim/sixheat"
	"golang.org/x/image/bmp"
)

// Format is an image file format.
type Format int

// Supported preview formats.
const (
	PNG Format = iota
	BMP
)

// FormatFor picks the format from a file extension, defaulting to PNG.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".bmp") {
		return BMP
	}
	return PNG
}

// Image returns the pixel buffer as an image scaled by scale. A scale of 1
// or less returns the buffer unscaled.
func Image(buf *sixheat.PixelBuffer, palette sixheat.Palette, scale float64) image.Image {
	img := buf.Paletted(palette)
	if scale <= 0 || scale == 1 {
		return img
	}

	width := int(float64(buf.Width) * scale)
	height := int(float64(buf.Height) * scale)
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	g := gift.New(gift.Resize(width, height, gift.NearestNeighborResampling))
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)

	return dst
}

// Encode writes the preview to w.
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case BMP:
		return bmp.Encode(w, img)
	default:
		return png.Encode(w, img)
	}
}

// WriteFile writes a preview of buf to path, in the format matching its
// extension.
func WriteFile(path string, buf *sixheat.PixelBuffer, palette sixheat.Palette, scale float64) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}

	err = Encode(file, Image(buf, palette, scale), FormatFor(path))
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("preview: %s: %w", path, err)
	}

	return nil
}
