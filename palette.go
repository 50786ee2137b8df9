package sixheat

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// MaxColors is the largest palette that fits a pixel buffer, one index is
// reserved for Background.
const MaxColors = 255

// ErrEmptyPalette is returned when a palette has no colors or too many.
var ErrEmptyPalette = errors.New("sixheat: palette must have between 1 and 255 colors")

// Color is an RGB triplet on the 0-100 percentage scale used by sixel
// color definitions.
type Color struct {
	R, G, B uint8
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return percentTo16(c.R), percentTo16(c.G), percentTo16(c.B), 0xffff
}

func percentTo16(p uint8) uint32 {
	return (uint32(p)*0xffff + 50) / 100
}

// Palette is an ordered list of colors. The position of a color is both its
// palette index and the order its plane is encoded in.
type Palette []Color

// DefaultPalette is a five step cold to hot ramp.
var DefaultPalette = Palette{
	{R: 0, G: 0, B: 100},
	{R: 0, G: 100, B: 100},
	{R: 0, G: 100, B: 0},
	{R: 100, G: 100, B: 0},
	{R: 100, G: 0, B: 0},
}

func (p Palette) validate() error {
	if len(p) == 0 || len(p) > MaxColors {
		return ErrEmptyPalette
	}

	for i, c := range p {
		if c.R > 100 || c.G > 100 || c.B > 100 {
			return fmt.Errorf("sixheat: palette color %d out of range: %v", i, c)
		}
	}

	return nil
}

// Colors returns the palette as a color.Palette.
func (p Palette) Colors() color.Palette {
	result := make(color.Palette, len(p))
	for i, c := range p {
		result[i] = c
	}
	return result
}

// ParsePalette parses a comma separated list of hex colors such as
// "#0000ff,#ff0000". The leading '#' is optional.
func ParsePalette(s string) (Palette, error) {
	var result Palette
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if !strings.HasPrefix(field, "#") {
			field = "#" + field
		}

		col, err := colorful.Hex(field)
		if err != nil {
			return nil, fmt.Errorf("sixheat: ParsePalette: %q: %w", field, err)
		}

		result = append(result, fromColorful(col))
	}

	if err := result.validate(); err != nil {
		return nil, err
	}

	return result, nil
}

// GradientPalette stretches stops into a palette of n colors by blending
// neighbouring stops in HCL space. The first and last colors are always the
// first and last stops.
func GradientPalette(n int, stops Palette) (Palette, error) {
	if n <= 0 || n > MaxColors {
		return nil, ErrEmptyPalette
	}
	if err := stops.validate(); err != nil {
		return nil, err
	}

	if n == 1 || len(stops) == 1 {
		result := make(Palette, n)
		for i := range result {
			result[i] = stops[0]
		}
		return result, nil
	}

	result := make(Palette, n)
	segments := float64(len(stops) - 1)
	for i := range result {
		pos := float64(i) / float64(n-1) * segments
		seg := int(pos)
		if seg >= len(stops)-1 {
			result[i] = stops[len(stops)-1]
			continue
		}
		if pos == float64(seg) {
			result[i] = stops[seg]
			continue
		}

		from := toColorful(stops[seg])
		to := toColorful(stops[seg+1])
		result[i] = fromColorful(from.BlendHcl(to, pos-float64(seg)).Clamped())
	}

	return result, nil
}

func toColorful(c Color) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 100,
		G: float64(c.G) / 100,
		B: float64(c.B) / 100,
	}
}

func fromColorful(c colorful.Color) Color {
	c = c.Clamped()
	return Color{
		R: uint8(math.Round(c.R * 100)),
		G: uint8(math.Round(c.G * 100)),
		B: uint8(math.Round(c.B * 100)),
	}
}
