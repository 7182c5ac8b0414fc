package gridload

import (
	"sync/atomic"

	"github.com/pspoerri/lsgconv/internal/grid"
)

// ErrNoGrid is returned by a Holder that has not been given a grid.
var ErrNoGrid = grid.ErrNoGrid

// Holder holds the active grid and can be swapped while conversions run.
// Each call uses the grid current when it started.
type Holder struct {
	g     atomic.Pointer[grid.Grid]
	loads atomic.Int64
}

// NewHolder returns a Holder serving g.
func NewHolder(g *grid.Grid) *Holder {
	h := &Holder{}
	if g != nil {
		h.Store(g)
	}
	return h
}

// Store replaces the active grid.
func (h *Holder) Store(g *grid.Grid) {
	h.g.Store(g)
	h.loads.Add(1)
}

// Grid returns the active grid, or nil if none was stored.
func (h *Holder) Grid() *grid.Grid { return h.g.Load() }

// Generation counts how many grids have been stored.
func (h *Holder) Generation() int64 { return h.loads.Load() }

func (h *Holder) Interpolate(x, y float64) (grid.Cell, error) {
	g := h.g.Load()
	if g == nil {
		return grid.Cell{}, ErrNoGrid
	}
	return g.Interpolate(x, y)
}

func (h *Holder) Invert(shiftedX, shiftedY float64) (float64, float64, error) {
	g := h.g.Load()
	if g == nil {
		return 0, 0, ErrNoGrid
	}
	return g.Invert(shiftedX, shiftedY)
}

// Coverage summarises the active grid.
func (h *Holder) Coverage() (grid.Coverage, error) {
	g := h.g.Load()
	if g == nil {
		return grid.Coverage{}, ErrNoGrid
	}
	return g.Coverage(), nil
}
