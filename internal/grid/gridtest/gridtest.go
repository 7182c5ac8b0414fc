// Package gridtest builds synthetic correction grids for tests.
package gridtest

import (
	"testing"

	"github.com/pspoerri/lsgconv/internal/grid"
)

// Shift returns the synthetic shift at node (col, row). The values are in the
// same range as OSTN15 over southern England and vary smoothly by a few
// millimetres per kilometre.
func Shift(col, row int) grid.Cell {
	c, r := float64(col), float64(row)
	return grid.Cell{
		East:   95.0 + 0.002*c - 0.001*r,
		North:  -70.0 + 0.001*c + 0.003*r,
		Height: 46.0 + 0.004*c - 0.002*r,
	}
}

// Records returns records for every node with minCol <= col <= maxCol and
// minRow <= row <= maxRow on a grid of the given width.
func Records(width, minCol, maxCol, minRow, maxRow int) []grid.Record {
	recs := make([]grid.Record, 0, (maxCol-minCol+1)*(maxRow-minRow+1))
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			recs = append(recs, grid.Record{PointID: row*width + col + 1, Cell: Shift(col, row)})
		}
	}
	return recs
}

// New builds a grid of width grid.OSTN15Width covering the given node range.
func New(t testing.TB, minCol, maxCol, minRow, maxRow int) *grid.Grid {
	t.Helper()
	g, err := grid.New(grid.OSTN15Width, Records(grid.OSTN15Width, minCol, maxCol, minRow, maxRow))
	if err != nil {
		t.Fatalf("gridtest.New: %v", err)
	}
	return g
}

// SouthEast builds a grid covering the National Grid around London and the
// local survey grid area: eastings 500-560 km, northings 120-200 km.
func SouthEast(t testing.TB) *grid.Grid {
	t.Helper()
	return New(t, 500, 560, 120, 200)
}
