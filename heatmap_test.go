package sixheat

import (
	"errors"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

func TestRenderDefaults(t *testing.T) {
	result, err := RenderString("1 2 3 4", DefaultOptions())
	assert.NilError(t, err)

	assert.Equal(t, 4, result.Grid.Cols)
	assert.Equal(t, 1, result.Grid.Rows)
	assert.DeepEqual(t, []uint8{0, 1, 3, 4}, result.Grid.Cells)
	assert.Equal(t, 76, result.Geometry.Width)
	assert.Equal(t, 16, result.Geometry.Height)
	assert.Equal(t, 18, result.Geometry.PaddedHeight)
	assert.Equal(t, 1, result.Min)
	assert.Equal(t, 4, result.Max)

	s := string(result.Sixel)
	assert.Assert(t, strings.HasPrefix(s, Introducer+"#0;2;0;0;100#1;2;0;100;100"))
	assert.Assert(t, strings.HasSuffix(s, Terminator))
	// Three bands, five colors each
	assert.Equal(t, 2, strings.Count(s, string(LineFeed)))
	assert.Equal(t, 3*4, strings.Count(s, string(CarriageReturn)))

	assertDecodesTo(t, result.Sixel, result.Pixels, len(DefaultPalette))
}

func TestRenderEmpty(t *testing.T) {
	result, err := Render(nil, DefaultOptions())
	assert.NilError(t, err)
	assert.Assert(t, result.Empty())
	assert.Equal(t, 0, len(result.Sixel))
}

func TestRenderAllMalformed(t *testing.T) {
	result, err := RenderTokens([]string{"x", "y"}, DefaultOptions())
	assert.NilError(t, err)
	assert.Assert(t, result.Empty())
	assert.Equal(t, 2, result.Dropped)
}

// Malformed tokens do not shift the indices of the others
func TestRenderMalformedIgnored(t *testing.T) {
	clean, err := RenderString("1 2 3 4", DefaultOptions())
	assert.NilError(t, err)

	noisy, err := RenderString("1 x 2 3 nope 4 x", DefaultOptions())
	assert.NilError(t, err)

	assert.Equal(t, 3, noisy.Dropped)
	assert.DeepEqual(t, clean.Grid.Cells, noisy.Grid.Cells)
	assert.Equal(t, string(clean.Sixel), string(noisy.Sixel))
}

func TestRenderInvalidGeometry(t *testing.T) {
	for _, mutate := range []func(*Options){
		func(o *Options) { o.CellSize = 0 },
		func(o *Options) { o.MaxCols = 0 },
		func(o *Options) { o.CellSize = -3 },
		func(o *Options) { o.MarginSize = -1 },
	} {
		opts := DefaultOptions()
		mutate(&opts)

		_, err := Render([]int{1, 2}, opts)
		assert.Assert(t, errors.Is(err, ErrInvalidGeometry))
	}
}

func TestRenderCompressed(t *testing.T) {
	opts := DefaultOptions()
	plain, err := RenderString("4 8 15 16 23 42", opts)
	assert.NilError(t, err)

	opts.Compress = true
	compressed, err := RenderString("4 8 15 16 23 42", opts)
	assert.NilError(t, err)

	assert.Assert(t, len(compressed.Sixel) < len(plain.Sixel))

	expanded, err := Expand(compressed.Sixel)
	assert.NilError(t, err)
	assert.Equal(t, string(plain.Sixel), string(expanded))
}

func TestRenderWraps(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxCols = 3

	result, err := Render([]int{1, 2, 3, 4, 5, 6, 7}, opts)
	assert.NilError(t, err)

	assert.Equal(t, 3, result.Grid.Cols)
	assert.Equal(t, 3, result.Grid.Rows)
	assert.Equal(t, 16*3+4*2, result.Geometry.Width)
	assert.Equal(t, 16*3+4*2, result.Geometry.Height)
	assert.Equal(t, 60, result.Geometry.PaddedHeight)

	assertDecodesTo(t, result.Sixel, result.Pixels, len(DefaultPalette))
}

func TestResultWriteTo(t *testing.T) {
	result, err := RenderString("1 2", DefaultOptions())
	assert.NilError(t, err)

	var sb strings.Builder
	n, err := result.WriteTo(&sb)
	assert.NilError(t, err)
	assert.Equal(t, int64(len(result.Sixel)), n)
	assert.Equal(t, string(result.Sixel), sb.String())

	n, err = (&Result{}).WriteTo(&sb)
	assert.NilError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestRenderMaxPixels(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxPixels = 76 * 18

	_, err := Render([]int{1, 2, 3, 4}, opts)
	assert.NilError(t, err)

	opts.MaxPixels--
	_, err = Render([]int{1, 2, 3, 4}, opts)
	assert.Assert(t, errors.Is(err, ErrImageTooLarge))

	opts.CellSize = 1 << 30
	_, err = Render([]int{1, 2}, opts)
	assert.Assert(t, errors.Is(err, ErrImageTooLarge))
}
