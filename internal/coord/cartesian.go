package coord

import "math"

// LatitudeIterations is the fixed number of refinement passes ToGeodetic makes.
const LatitudeIterations = 5

// Geodetic is a latitude/longitude in degrees with ellipsoidal height in metres.
type Geodetic struct {
	Lat    float64
	Lon    float64
	Height float64
}

// Cartesian is an earth-centred, earth-fixed position in metres.
type Cartesian struct {
	X, Y, Z float64
}

// ToCartesian converts a geodetic position on e to earth-centred cartesian coordinates.
func ToCartesian(g Geodetic, e Ellipsoid) Cartesian {
	e2 := e.E2()
	phi := g.Lat * degToRad
	lambda := g.Lon * degToRad
	sinPhi := math.Sin(phi)
	nu := e.A / math.Sqrt(1-e2*sinPhi*sinPhi)

	return Cartesian{
		X: (nu + g.Height) * math.Cos(phi) * math.Cos(lambda),
		Y: (nu + g.Height) * math.Cos(phi) * math.Sin(lambda),
		Z: ((1-e2)*nu + g.Height) * sinPhi,
	}
}

// ToGeodetic converts earth-centred cartesian coordinates to a geodetic position on e.
// Latitude is refined over LatitudeIterations passes with no convergence test.
func ToGeodetic(c Cartesian, e Ellipsoid) Geodetic {
	e2 := e.E2()
	lambda := math.Atan2(c.Y, c.X)
	p := math.Hypot(c.X, c.Y)

	phi := math.Atan2(c.Z, p*(1-e2))
	var nu float64
	for i := 0; i < LatitudeIterations; i++ {
		sinPhi := math.Sin(phi)
		nu = e.A / math.Sqrt(1-e2*sinPhi*sinPhi)
		phi = math.Atan2(c.Z+e2*nu*sinPhi, p)
	}

	return Geodetic{
		Lat:    phi * radToDeg,
		Lon:    lambda * radToDeg,
		Height: p/math.Cos(phi) - nu,
	}
}
