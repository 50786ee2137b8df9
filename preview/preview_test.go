package preview

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/tmpim/sixheat"
	"gotest.tools/v3/assert"
)

func render(t *testing.T) *sixheat.Result {
	t.Helper()
	result, err := sixheat.RenderString("1 2 3 4", sixheat.DefaultOptions())
	assert.NilError(t, err)
	return result
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, BMP, FormatFor("heat.BMP"))
	assert.Equal(t, PNG, FormatFor("heat.png"))
	assert.Equal(t, PNG, FormatFor("heat"))
}

func TestImageScale(t *testing.T) {
	result := render(t)

	img := Image(result.Pixels, result.Palette, 1)
	assert.Equal(t, 76, img.Bounds().Dx())
	assert.Equal(t, 18, img.Bounds().Dy())

	img = Image(result.Pixels, result.Palette, 2)
	assert.Equal(t, 152, img.Bounds().Dx())
	assert.Equal(t, 36, img.Bounds().Dy())

	// Nearest neighbour keeps cell colors exact
	r, g, b, a := img.At(1, 1).RGBA()
	wr, wg, wb, wa := result.Palette[0].RGBA()
	assert.Equal(t, [4]uint32{wr, wg, wb, wa}, [4]uint32{r, g, b, a})
}

func TestEncodePNG(t *testing.T) {
	result := render(t)

	var buf bytes.Buffer
	assert.NilError(t, Encode(&buf, Image(result.Pixels, result.Palette, 1), PNG))

	img, err := png.Decode(&buf)
	assert.NilError(t, err)
	assert.Equal(t, 76, img.Bounds().Dx())

	_, _, _, a := img.At(17, 0).RGBA()
	assert.Equal(t, uint32(0), a)
}

func TestWriteFileBMP(t *testing.T) {
	result := render(t)
	path := filepath.Join(t.TempDir(), "heat.bmp")

	assert.NilError(t, WriteFile(path, result.Pixels, result.Palette, 1))

	data, err := os.ReadFile(path)
	assert.NilError(t, err)
	assert.Equal(t, "BM", string(data[:2]))
}
