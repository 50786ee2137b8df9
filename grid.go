package sixheat

import "errors"

// BandHeight is the number of pixel rows encoded by one sixel band.
const BandHeight = 6

// ErrInvalidGeometry is returned for non positive cell sizes or column limits
// and negative margins.
var ErrInvalidGeometry = errors.New("sixheat: cell size and max columns must be positive, margin must not be negative")

// Grid is a row major arrangement of palette indices. The last row may be
// shorter than Cols.
type Grid struct {
	Cells []uint8
	Cols  int
	Rows  int
}

// Geometry is the pixel layout of a grid.
type Geometry struct {
	CellSize   int
	MarginSize int

	Width int
	// Height is the height covered by cells and margins.
	Height int
	// PaddedHeight is Height rounded up to a multiple of BandHeight.
	PaddedHeight int
}

// BuildGrid arranges cells into at most maxCols columns. ok is false when
// there are no cells.
func BuildGrid(cells []uint8, maxCols int) (grid Grid, ok bool) {
	if len(cells) == 0 || maxCols <= 0 {
		return Grid{}, false
	}

	cols := len(cells)
	if cols > maxCols {
		cols = maxCols
	}

	return Grid{
		Cells: cells,
		Cols:  cols,
		Rows:  (len(cells) + cols - 1) / cols,
	}, true
}

// At returns the palette index of the cell at row r and column c. ok is false
// for the absent cells at the end of a short last row.
func (g Grid) At(r, c int) (idx uint8, ok bool) {
	i := r*g.Cols + c
	if c < 0 || c >= g.Cols || i < 0 || i >= len(g.Cells) {
		return 0, false
	}
	return g.Cells[i], true
}

// Geometry computes the pixel size of the grid.
func (g Grid) Geometry(cellSize, marginSize int) Geometry {
	geom := Geometry{
		CellSize:   cellSize,
		MarginSize: marginSize,
		Width:      cellSize*g.Cols + marginSize*(g.Cols-1),
		Height:     cellSize*g.Rows + marginSize*(g.Rows-1),
	}

	geom.PaddedHeight = geom.Height
	if rem := geom.Height % BandHeight; rem != 0 {
		geom.PaddedHeight += BandHeight - rem
	}

	return geom
}
