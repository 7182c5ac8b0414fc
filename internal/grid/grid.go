// Package grid holds the OSTN15-style datum correction grid and its
// bilinear lookup.
//
// The grid is a sparse table of 1 km cells addressed by id = row*width + col.
// It is built once with New and never mutated afterwards, so a *Grid can be
// shared by any number of goroutines without locking.
package grid

import (
	"errors"
	"fmt"
)

const (
	// OSTN15Width is the number of columns in the OSTN15 grid.
	OSTN15Width = 701

	// CellSize is the node spacing in metres.
	CellSize = 1000.0
)

// ErrOutOfCoverage is returned when a lookup needs a cell the grid does not hold.
var ErrOutOfCoverage = errors.New("grid: point outside correction grid coverage")

// ErrNoGrid is returned by a shift source that has no grid loaded.
var ErrNoGrid = errors.New("grid: no grid loaded")

// Cell is the datum shift stored at a grid node, in metres.
type Cell struct {
	East   float64
	North  float64
	Height float64
}

// Record is one row of grid input. PointID is 1-based; the record is stored
// at id PointID-1.
type Record struct {
	PointID int
	Cell
}

// Grid is an immutable sparse correction grid.
type Grid struct {
	width   int
	cells   []Cell
	present []bool
	count   int
}

// New builds a grid of the given width from records. When a point id
// appears more than once the last record wins.
func New(width int, records []Record) (*Grid, error) {
	if width < 2 {
		return nil, fmt.Errorf("grid: width must be at least 2, got %d", width)
	}

	size := 0
	for i, r := range records {
		if r.PointID < 1 {
			return nil, fmt.Errorf("grid: record %d: point id %d is not positive", i, r.PointID)
		}
		if r.PointID > size {
			size = r.PointID
		}
	}

	g := &Grid{
		width:   width,
		cells:   make([]Cell, size),
		present: make([]bool, size),
	}
	for _, r := range records {
		id := r.PointID - 1
		if !g.present[id] {
			g.count++
		}
		g.present[id] = true
		g.cells[id] = r.Cell
	}
	return g, nil
}

// Width returns the number of columns per row.
func (g *Grid) Width() int { return g.width }

// Len returns the number of cells present.
func (g *Grid) Len() int { return g.count }

// Lookup returns the cell stored at id and whether it is present.
func (g *Grid) Lookup(id int) (Cell, bool) {
	if id < 0 || id >= len(g.cells) || !g.present[id] {
		return Cell{}, false
	}
	return g.cells[id], true
}

// ID returns the cell id of (col, row).
func (g *Grid) ID(col, row int) int {
	return row*g.width + col
}
