package coord

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const arcSecToRad = math.Pi / (180 * 3600)

// HelmertParams is a 7-parameter similarity transform between two cartesian frames.
type HelmertParams struct {
	Tx, Ty, Tz float64 // translation, metres
	S          float64 // scale change as a fraction (ppm / 1e6)
	Rx, Ry, Rz float64 // small-angle rotations, arc-seconds
}

// ETRS89ToLSG takes ETRS89 cartesian coordinates into the local survey grid frame.
var ETRS89ToLSG = HelmertParams{
	Tx: 19.019,
	Ty: 115.122,
	Tz: -97.287,
	S:  18.60847540 / 1000000,
	Rx: -3.577824,
	Ry: 3.484437,
	Rz: 2.767646,
}

func (h HelmertParams) radians() (rx, ry, rz float64) {
	return h.Rx * arcSecToRad, h.Ry * arcSecToRad, h.Rz * arcSecToRad
}

// rotation returns the small-angle rotation matrix applied by Apply.
func (h HelmertParams) rotation() *mat.Dense {
	rx, ry, rz := h.radians()
	return mat.NewDense(3, 3, []float64{
		1, rz, -ry,
		-rz, 1, rx,
		ry, -rx, 1,
	})
}

// Apply rotates and scales c, then translates it.
func (h HelmertParams) Apply(c Cartesian) Cartesian {
	rx, ry, rz := h.radians()
	k := 1 + h.S
	return Cartesian{
		X: h.Tx + k*(c.X+rz*c.Y-ry*c.Z),
		Y: h.Ty + k*(-rz*c.X+c.Y+rx*c.Z),
		Z: h.Tz + k*(ry*c.X-rx*c.Y+c.Z),
	}
}

// ApplyInverse undoes Apply: it removes the translation, then the scale,
// then solves the rotation exactly.
func (h HelmertParams) ApplyInverse(c Cartesian) (Cartesian, error) {
	v := mat.NewVecDense(3, []float64{c.X - h.Tx, c.Y - h.Ty, c.Z - h.Tz})
	v.ScaleVec(1/(1+h.S), v)

	var out mat.VecDense
	if err := out.SolveVec(h.rotation(), v); err != nil {
		return Cartesian{}, fmt.Errorf("coord: inverting helmert rotation: %w", err)
	}
	return Cartesian{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}, nil
}
