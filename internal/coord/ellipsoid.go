package coord

import (
	"fmt"
	"math"
)

const (
	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi
)

// Ellipsoid is a reference ellipsoid given by its semi-axes in metres.
type Ellipsoid struct {
	Name string
	A    float64 // semi-major axis
	B    float64 // semi-minor axis
}

// GRS80 is the ellipsoid of ETRS89.
var GRS80 = Ellipsoid{Name: "GRS80", A: 6378137.0, B: 6356752.3141}

// WGS84 is the ellipsoid the local survey grid is referenced to.
var WGS84 = Ellipsoid{Name: "WGS84", A: 6378137.0, B: 6356752.3142}

// E2 returns the first eccentricity squared, (a²-b²)/a².
func (e Ellipsoid) E2() float64 {
	return (e.A*e.A - e.B*e.B) / (e.A * e.A)
}

// N returns the meridian ratio (a-b)/(a+b) used by the meridional arc series.
func (e Ellipsoid) N() float64 {
	return (e.A - e.B) / (e.A + e.B)
}

// Validate reports whether a > b > 0.
func (e Ellipsoid) Validate() error {
	if !(e.B > 0) || !(e.A > e.B) || math.IsInf(e.A, 0) {
		return fmt.Errorf("ellipsoid %q: need a > b > 0, got a=%v b=%v", e.Name, e.A, e.B)
	}
	return nil
}
