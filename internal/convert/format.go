package convert

import "strconv"

// Output precision: millimetres for linear values and 1e-8 degrees (about a
// millimetre on the ground) for angles.
const (
	MetrePrecision  = 3
	DegreePrecision = 8
)

// FormatMetres formats a linear value in metres.
func FormatMetres(v float64) string {
	return strconv.FormatFloat(v, 'f', MetrePrecision, 64)
}

// FormatDegrees formats an angle in decimal degrees.
func FormatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', DegreePrecision, 64)
}

// Columns are the names of the values returned by Result.Fields.
var Columns = []string{
	"osgb_easting", "osgb_northing", "osgb_height",
	"etrs_lat", "etrs_lon", "etrs_height",
	"lsg_easting", "lsg_northing", "lsg_height",
}

// Fields returns the result formatted in the order of Columns.
func (r Result) Fields() []string {
	return []string{
		FormatMetres(r.GridDatum.Easting), FormatMetres(r.GridDatum.Northing), FormatMetres(r.GridDatum.Height),
		FormatDegrees(r.ETRS89.Lat), FormatDegrees(r.ETRS89.Lon), FormatMetres(r.ETRS89.Height),
		FormatMetres(r.LSG.Easting), FormatMetres(r.LSG.Northing), FormatMetres(r.LSG.Height),
	}
}
