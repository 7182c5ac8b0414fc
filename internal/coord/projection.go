package coord

// Projection converts between geodetic latitude/longitude (degrees) on its
// ellipsoid and planar grid coordinates (metres).
type Projection interface {
	// Project converts latitude/longitude to easting/northing.
	Project(lat, lon float64) (easting, northing float64)

	// Unproject converts easting/northing back to latitude/longitude.
	Unproject(easting, northing float64) (lat, lon float64, err error)

	// Name identifies the grid, e.g. "national-grid".
	Name() string
}

// ProjectionParams describes the origin and scale of a Transverse Mercator grid.
// Angles are in degrees.
type ProjectionParams struct {
	OriginLat     float64
	OriginLon     float64
	FalseEasting  float64
	FalseNorthing float64
	ScaleFactor   float64 // on the central meridian
}

// NationalGrid holds the British National Grid parameters.
var NationalGrid = ProjectionParams{
	OriginLat:     49,
	OriginLon:     -2,
	FalseEasting:  400000.0,
	FalseNorthing: -100000.0,
	ScaleFactor:   0.9996012717,
}

// LSGGrid holds the local survey grid parameters.
var LSGGrid = ProjectionParams{
	OriginLat:     51.166666666667,
	OriginLon:     -0.158333333333,
	FalseEasting:  78250.0,
	FalseNorthing: -2800.0,
	ScaleFactor:   0.9999999,
}

var (
	// NationalGridGRS80 projects ETRS89 positions through the National Grid
	// parameters. The OSTN15 correction grid is indexed in this space.
	NationalGridGRS80 = &TransverseMercator{Label: "national-grid", Ellipsoid: GRS80, Params: NationalGrid}

	// LSGWGS84 is the local survey grid projection.
	LSGWGS84 = &TransverseMercator{Label: "lsg", Ellipsoid: WGS84, Params: LSGGrid}
)

// ForName returns the built-in projection with the given name.
// Returns nil if the name is not known.
func ForName(name string) Projection {
	switch name {
	case "national-grid", "osgb":
		return NationalGridGRS80
	case "lsg":
		return LSGWGS84
	default:
		return nil
	}
}
