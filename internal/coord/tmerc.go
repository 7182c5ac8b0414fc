package coord

import (
	"errors"
	"math"
)

// MaxFootpointIterations caps the footpoint latitude solve in Unproject.
// Well-behaved inputs converge in a handful of passes.
const MaxFootpointIterations = 100

// footpointTolerance is the meridional arc residual (metres) at which the
// footpoint latitude is accepted.
const footpointTolerance = 1e-4

// ErrNoConvergence is returned when the footpoint latitude solve does not settle.
var ErrNoConvergence = errors.New("coord: footpoint latitude did not converge")

// TransverseMercator implements the ellipsoidal Transverse Mercator projection
// using the Redfearn series (as published by Ordnance Survey).
type TransverseMercator struct {
	Label     string
	Ellipsoid Ellipsoid
	Params    ProjectionParams
}

func (tm *TransverseMercator) Name() string { return tm.Label }

// Project converts latitude/longitude (degrees) to easting/northing (metres).
func (tm *TransverseMercator) Project(lat, lon float64) (easting, northing float64) {
	p := tm.Params
	e2 := tm.Ellipsoid.E2()

	phi := lat * degToRad
	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	tan2 := math.Tan(phi) * math.Tan(phi)
	cos3 := cosPhi * cosPhi * cosPhi
	cos5 := cos3 * cosPhi * cosPhi

	nu, rho := radii(tm.Ellipsoid.A*p.ScaleFactor, e2, sinPhi)
	eta2 := nu/rho - 1
	m := tm.meridionalArc(phi)

	i := m + p.FalseNorthing
	ii := nu / 2 * sinPhi * cosPhi
	iii := nu / 24 * sinPhi * cos3 * (5 - tan2 + 9*eta2)
	iiia := nu / 720 * sinPhi * cos5 * (61 - 58*tan2 + tan2*tan2)
	iv := nu * cosPhi
	v := nu / 6 * cos3 * (nu/rho - tan2)
	vi := nu / 120 * cos5 * (5 - 18*tan2 + tan2*tan2 + 14*eta2 - 58*tan2*eta2)

	dl := lon*degToRad - p.OriginLon*degToRad
	dl2 := dl * dl

	northing = i + ii*dl2 + iii*dl2*dl2 + iiia*dl2*dl2*dl2
	easting = p.FalseEasting + iv*dl + v*dl2*dl + vi*dl2*dl2*dl
	return
}

// Unproject converts easting/northing (metres) to latitude/longitude (degrees).
// It returns ErrNoConvergence if the footpoint latitude cannot be found
// within MaxFootpointIterations or falls outside ±90°.
func (tm *TransverseMercator) Unproject(easting, northing float64) (lat, lon float64, err error) {
	p := tm.Params
	e2 := tm.Ellipsoid.E2()
	aF0 := tm.Ellipsoid.A * p.ScaleFactor

	dN := northing - p.FalseNorthing
	if math.IsNaN(dN) || math.IsInf(dN, 0) || math.IsNaN(easting) || math.IsInf(easting, 0) {
		return 0, 0, ErrNoConvergence
	}

	// Footpoint latitude: solve M(phi) = N - N0 by fixed-point iteration.
	phi := dN/aF0 + p.OriginLat*degToRad
	m := tm.meridionalArc(phi)
	for iter := 0; math.Abs(dN-m) >= footpointTolerance; iter++ {
		if iter >= MaxFootpointIterations {
			return 0, 0, ErrNoConvergence
		}
		phi += (dN - m) / aF0
		m = tm.meridionalArc(phi)
	}
	// A footpoint beyond the poles means the northing lies off the ellipsoid.
	if math.IsNaN(m) || math.Abs(phi) > math.Pi/2 {
		return 0, 0, ErrNoConvergence
	}

	sinPhi := math.Sin(phi)
	nu, rho := radii(aF0, e2, sinPhi)
	eta2 := nu/rho - 1

	tanPhi := math.Tan(phi)
	t2 := tanPhi * tanPhi
	t4 := t2 * t2
	t6 := t4 * t2
	secPhi := 1 / math.Cos(phi)
	nu3 := nu * nu * nu
	nu5 := nu3 * nu * nu
	nu7 := nu5 * nu * nu

	vii := tanPhi / (2 * rho * nu)
	viii := tanPhi / (24 * rho * nu3) * (5 + 3*t2 + eta2 - 9*t2*eta2)
	ix := tanPhi / (720 * rho * nu5) * (61 + 90*t2 + 45*t4)
	x := secPhi / nu
	xi := secPhi / (6 * nu3) * (nu/rho + 2*t2)
	xii := secPhi / (120 * nu5) * (5 + 28*t2 + 24*t4)
	xiia := secPhi / (5040 * nu7) * (61 + 662*t2 + 1320*t4 + 720*t6)

	dE := easting - p.FalseEasting
	dE2 := dE * dE
	dE3 := dE2 * dE

	latRad := phi - vii*dE2 + viii*dE2*dE2 - ix*dE2*dE2*dE2
	lonRad := p.OriginLon*degToRad + x*dE - xi*dE3 + xii*dE3*dE2 - xiia*dE3*dE2*dE2

	return latRad * radToDeg, lonRad * radToDeg, nil
}

// meridionalArc returns the scaled meridional arc from the origin latitude to phi (radians).
func (tm *TransverseMercator) meridionalArc(phi float64) float64 {
	n := tm.Ellipsoid.N()
	n2 := n * n
	n3 := n2 * n
	phi0 := tm.Params.OriginLat * degToRad
	d, s := phi-phi0, phi+phi0

	return tm.Ellipsoid.B * tm.Params.ScaleFactor * ((1+n+5.0/4*n2+5.0/4*n3)*d -
		(3*n+3*n2+21.0/8*n3)*math.Sin(d)*math.Cos(s) +
		(15.0/8*n2+15.0/8*n3)*math.Sin(2*d)*math.Cos(2*s) -
		(35.0/24*n3)*math.Sin(3*d)*math.Cos(3*s))
}

// radii returns the transverse (nu) and meridional (rho) radii of curvature,
// both scaled by the factor folded into aF0.
func radii(aF0, e2, sinPhi float64) (nu, rho float64) {
	w := 1 - e2*sinPhi*sinPhi
	nu = aF0 / math.Sqrt(w)
	rho = aF0 * (1 - e2) * math.Pow(w, -1.5)
	return
}
