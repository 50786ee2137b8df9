package sixheat

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// Sixel control sequences and glyphs.
const (
	Introducer = "\x1bPq"
	Terminator = "\x1b\\"

	ColorIntroducer  = '#'
	RepeatIntroducer = '!'
	CarriageReturn   = '$'
	LineFeed         = '-'

	// colorSystemRGB selects percentage RGB in a color definition.
	colorSystemRGB = 2
)

// ErrPaletteIndex is returned when a pixel refers to a color outside the
// palette.
var ErrPaletteIndex = errors.New("sixheat: pixel palette index out of range")

// sixelChars maps a 6 bit column mask to its sixel character. Bit i is band
// row i.
var sixelChars = func() (table [64]byte) {
	for mask := range table {
		table[mask] = byte(0x3f + mask)
	}
	return
}()

// IsSixelChar returns whether c is a sixel data character.
func IsSixelChar(c byte) bool {
	return c >= 0x3f && c <= 0x7e
}

func checkPixels(buf *PixelBuffer, palette Palette) error {
	for i, idx := range buf.Pix {
		if idx != Background && int(idx) >= len(palette) {
			return fmt.Errorf("%w: index %d at (%d, %d) with %d colors",
				ErrPaletteIndex, idx, i%buf.Width, i/buf.Width, len(palette))
		}
	}
	return nil
}

// Encode encodes the pixel buffer as a sixel image. The buffer height must be
// a multiple of BandHeight.
func Encode(buf *PixelBuffer, palette Palette) ([]byte, error) {
	if err := palette.validate(); err != nil {
		return nil, err
	}
	if buf.Height%BandHeight != 0 {
		return nil, fmt.Errorf("sixheat: Encode: height %d is not a multiple of %d",
			buf.Height, BandHeight)
	}
	if err := checkPixels(buf, palette); err != nil {
		return nil, err
	}

	bands := buf.Height / BandHeight

	out := new(bytes.Buffer)
	out.Grow(len(Introducer) + len(palette)*16 +
		bands*len(palette)*(buf.Width+5) + len(Terminator))

	out.WriteString(Introducer)
	writeColorDefinitions(out, palette)

	row := make([]byte, buf.Width)
	for band := 0; band < bands; band++ {
		if band > 0 {
			out.WriteByte(LineFeed)
		}

		for idx := range palette {
			if idx > 0 {
				out.WriteByte(CarriageReturn)
			}

			encodeRow(row, buf, band*BandHeight, uint8(idx))
			writeColorSelect(out, idx)
			out.Write(row)
		}
	}

	out.WriteString(Terminator)

	return out.Bytes(), nil
}

// encodeRow fills row with one sixel character per column of the band
// starting at y0, for the plane of color idx.
func encodeRow(row []byte, buf *PixelBuffer, y0 int, idx uint8) {
	for x := range row {
		var mask byte
		for i := 0; i < BandHeight; i++ {
			if buf.Pix[(y0+i)*buf.Width+x] == idx {
				mask |= 1 << i
			}
		}
		row[x] = sixelChars[mask]
	}
}

func writeColorDefinitions(out *bytes.Buffer, palette Palette) {
	var scratch [32]byte
	for idx, c := range palette {
		b := append(scratch[:0], ColorIntroducer)
		b = strconv.AppendInt(b, int64(idx), 10)
		b = append(b, ';')
		b = strconv.AppendInt(b, colorSystemRGB, 10)
		for _, v := range [3]uint8{c.R, c.G, c.B} {
			b = append(b, ';')
			b = strconv.AppendInt(b, int64(v), 10)
		}
		out.Write(b)
	}
}

func writeColorSelect(out *bytes.Buffer, idx int) {
	var scratch [8]byte
	b := append(scratch[:0], ColorIntroducer)
	b = strconv.AppendInt(b, int64(idx), 10)
	out.Write(b)
}
