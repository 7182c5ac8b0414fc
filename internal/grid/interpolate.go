package grid

import "math"

const (
	// MaxInvertIterations caps the fixed-point iteration in Invert.
	MaxInvertIterations = 10

	// InvertTolerance is the change in shift (metres) between successive
	// iterations below which Invert stops.
	InvertTolerance = 1e-4
)

// Interpolate returns the shift at (x, y), bilinearly blended from the four
// nodes of the enclosing cell. It returns ErrOutOfCoverage if any of them is absent.
func (g *Grid) Interpolate(x, y float64) (Cell, error) {
	fx, fy := x/CellSize, y/CellSize
	col, row := math.Floor(fx), math.Floor(fy)

	// NaN fails every comparison, so it is rejected here too. The last column
	// has no right-hand neighbour: id0+1 would wrap onto the next row.
	if !(col >= 0 && row >= 0 && col < float64(g.width-1) && row*float64(g.width) < float64(len(g.cells))) {
		return Cell{}, ErrOutOfCoverage
	}

	id0 := g.ID(int(col), int(row))
	ids := [4]int{id0, id0 + 1, id0 + g.width + 1, id0 + g.width}

	var c [4]Cell
	for i, id := range ids {
		cell, ok := g.Lookup(id)
		if !ok {
			return Cell{}, ErrOutOfCoverage
		}
		c[i] = cell
	}

	t, u := fx-col, fy-row
	w0 := (1 - t) * (1 - u)
	w1 := t * (1 - u)
	w2 := t * u
	w3 := (1 - t) * u

	return Cell{
		East:   w0*c[0].East + w1*c[1].East + w2*c[2].East + w3*c[3].East,
		North:  w0*c[0].North + w1*c[1].North + w2*c[2].North + w3*c[3].North,
		Height: w0*c[0].Height + w1*c[1].Height + w2*c[2].Height + w3*c[3].Height,
	}, nil
}

// Invert recovers the unshifted coordinate (x, y) for which
// (x, y) + shift(x, y) = (shiftedX, shiftedY).
//
// The shift depends on the unknown point, so this iterates from the shifted
// point. It stops once both horizontal shift components move by less than
// InvertTolerance, or after MaxInvertIterations passes, returning the last
// estimate in either case.
func (g *Grid) Invert(shiftedX, shiftedY float64) (x, y float64, err error) {
	x, y = shiftedX, shiftedY
	var prevEast, prevNorth float64
	for i := 0; i < MaxInvertIterations; i++ {
		s, err := g.Interpolate(x, y)
		if err != nil {
			return 0, 0, err
		}
		if math.Abs(s.East-prevEast) < InvertTolerance && math.Abs(s.North-prevNorth) < InvertTolerance {
			return x, y, nil
		}
		prevEast, prevNorth = s.East, s.North
		x, y = shiftedX-s.East, shiftedY-s.North
	}
	return x, y, nil
}
