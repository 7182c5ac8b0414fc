package coord

import (
	"math"
	"testing"
)

// OS worked example: 52°39'27.2531"N 1°43'04.5177"E h=24.7 on Airy 1830
// → X 3874938.849  Y 116218.624  Z 5047168.208
func TestToCartesian_OSWorkedExample(t *testing.T) {
	got := ToCartesian(Geodetic{Lat: osExampleLat, Lon: osExampleLon, Height: 24.7}, airy1830)
	want := Cartesian{X: 3874938.849, Y: 116218.624, Z: 5047168.208}

	tol := 2e-3
	if d := math.Abs(got.X - want.X); d > tol {
		t.Errorf("X: got %.4f, want ~%.3f (delta=%.4f)", got.X, want.X, d)
	}
	if d := math.Abs(got.Y - want.Y); d > tol {
		t.Errorf("Y: got %.4f, want ~%.3f (delta=%.4f)", got.Y, want.Y, d)
	}
	if d := math.Abs(got.Z - want.Z); d > tol {
		t.Errorf("Z: got %.4f, want ~%.3f (delta=%.4f)", got.Z, want.Z, d)
	}
}

func TestToGeodetic_OSWorkedExample(t *testing.T) {
	got := ToGeodetic(Cartesian{X: 3874938.849, Y: 116218.624, Z: 5047168.208}, airy1830)

	if d := math.Abs(got.Lat - osExampleLat); d > 1e-7 {
		t.Errorf("Lat: got %.9f, want ~%.9f (delta=%.2e)", got.Lat, osExampleLat, d)
	}
	if d := math.Abs(got.Lon - osExampleLon); d > 1e-7 {
		t.Errorf("Lon: got %.9f, want ~%.9f (delta=%.2e)", got.Lon, osExampleLon, d)
	}
	if d := math.Abs(got.Height - 24.7); d > 2e-3 {
		t.Errorf("Height: got %.4f, want ~24.700 (delta=%.4f)", got.Height, d)
	}
}

func TestCartesianRoundTrip(t *testing.T) {
	points := []Geodetic{
		{Lat: 51.5074, Lon: -0.1278, Height: 45.0},
		{Lat: 57.1497, Lon: -2.0943, Height: 120.5},
		{Lat: 49.9, Lon: -6.3, Height: 0},
		{Lat: 60.8, Lon: -0.8, Height: -35.2},
		{Lat: -33.9, Lon: 151.2, Height: 58},
	}
	for _, e := range []Ellipsoid{GRS80, WGS84} {
		for _, p := range points {
			got := ToGeodetic(ToCartesian(p, e), e)
			if math.Abs(got.Lat-p.Lat) > 1e-9 || math.Abs(got.Lon-p.Lon) > 1e-9 || math.Abs(got.Height-p.Height) > 1e-4 {
				t.Errorf("%s roundtrip %+v: got %+v", e.Name, p, got)
			}
		}
	}
}

func TestToCartesian_Axes(t *testing.T) {
	// On the equator at the prime meridian the point lies on the X axis at radius a.
	c := ToCartesian(Geodetic{Lat: 0, Lon: 0, Height: 0}, GRS80)
	if math.Abs(c.X-GRS80.A) > 1e-6 || math.Abs(c.Y) > 1e-6 || math.Abs(c.Z) > 1e-6 {
		t.Errorf("ToCartesian(0, 0, 0) = %+v, want (%.1f, 0, 0)", c, GRS80.A)
	}

	// At the north pole Z equals the semi-minor axis.
	c = ToCartesian(Geodetic{Lat: 90, Lon: 0, Height: 0}, GRS80)
	if math.Abs(c.Z-GRS80.B) > 1e-6 {
		t.Errorf("ToCartesian(pole).Z = %.6f, want %.6f", c.Z, GRS80.B)
	}
}
