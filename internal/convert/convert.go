// Package convert composes the grid shift, projection, cartesian and Helmert
// primitives into the three conversion pipelines.
package convert

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pspoerri/lsgconv/internal/coord"
	"github.com/pspoerri/lsgconv/internal/grid"
)

// LSGHeightOffset relates OSGB36 (ODN) heights to local survey grid heights.
// It is a flat approximation, not a modelled height transform.
const LSGHeightOffset = 100.0

// ShiftModel is the datum correction grid as seen by the pipelines.
// *grid.Grid implements it.
type ShiftModel interface {
	Interpolate(x, y float64) (grid.Cell, error)
	Invert(shiftedX, shiftedY float64) (x, y float64, err error)
}

// Projected is a planar coordinate with an independently carried height.
type Projected struct {
	Easting  float64
	Northing float64
	Height   float64
}

// Result holds a converted point in every supported system.
type Result struct {
	Mode      Mode
	GridDatum Projected      // OSGB36 National Grid, ODN height
	ETRS89    coord.Geodetic // ETRS89 on GRS80, ellipsoidal height

	// ETRSProjected is the ETRS89 position on the National Grid projection,
	// the space the correction grid is indexed in. Height is the ETRS89 height.
	ETRSProjected Projected

	LSG Projected
}

// Converter runs conversions against one correction grid.
// It holds no per-request state and is safe for concurrent use.
type Converter struct {
	shifts   ShiftModel
	national coord.Projection
	lsg      coord.Projection
	helmert  coord.HelmertParams
	logger   *zap.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger used for stage failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a Converter that reads datum shifts from shifts.
func New(shifts ShiftModel, opts ...Option) *Converter {
	c := &Converter{
		shifts:   shifts,
		national: coord.NationalGridGRS80,
		lsg:      coord.LSGWGS84,
		helmert:  coord.ETRS89ToLSG,
		logger:   zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Convert validates req and runs the pipeline for its mode.
func (c *Converter) Convert(req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	switch req.Mode {
	case ModeGridDatum:
		return c.FromGridDatum(req.X, req.Y, req.Height)
	case ModeETRS89:
		return c.FromETRS89(req.X, req.Y, req.Height)
	case ModeLSG:
		return c.FromLSG(req.X, req.Y, req.Height)
	}
	return Result{}, fmt.Errorf("%w: unknown mode %d", ErrInvalidInput, int(req.Mode))
}

// FromGridDatum converts an OSGB36 National Grid coordinate with ODN height.
func (c *Converter) FromGridDatum(easting, northing, height float64) (Result, error) {
	x, y, err := c.shifts.Invert(easting, northing)
	if err != nil {
		return c.fail("invert grid shift", err)
	}
	s, err := c.shifts.Interpolate(x, y)
	if err != nil {
		return c.fail("interpolate height shift", err)
	}
	lat, lon, err := c.national.Unproject(x, y)
	if err != nil {
		return c.fail("unproject national grid", err)
	}

	etrs := coord.Geodetic{Lat: lat, Lon: lon, Height: height + s.Height}
	lsg := c.toLSG(etrs)
	lsg.Height = height + LSGHeightOffset

	return Result{
		Mode:          ModeGridDatum,
		GridDatum:     Projected{Easting: easting, Northing: northing, Height: height},
		ETRS89:        etrs,
		ETRSProjected: Projected{Easting: x, Northing: y, Height: etrs.Height},
		LSG:           lsg,
	}, nil
}

// FromETRS89 converts an ETRS89 latitude/longitude (degrees) with ellipsoidal height.
func (c *Converter) FromETRS89(lat, lon, height float64) (Result, error) {
	x, y := c.national.Project(lat, lon)
	s, err := c.shifts.Interpolate(x, y)
	if err != nil {
		return c.fail("interpolate grid shift", err)
	}

	gridHeight := height - s.Height
	etrs := coord.Geodetic{Lat: lat, Lon: lon, Height: height}
	lsg := c.toLSG(etrs)
	lsg.Height = gridHeight + LSGHeightOffset

	return Result{
		Mode:          ModeETRS89,
		GridDatum:     Projected{Easting: x + s.East, Northing: y + s.North, Height: gridHeight},
		ETRS89:        etrs,
		ETRSProjected: Projected{Easting: x, Northing: y, Height: height},
		LSG:           lsg,
	}, nil
}

// FromLSG converts a local survey grid coordinate with LSG height.
//
// The LSG height is turned into an ellipsoidal height by sampling the grid
// height shift at an approximate position; that seed is only used to lift the
// point off the ellipsoid before the inverse Helmert transform.
func (c *Converter) FromLSG(easting, northing, height float64) (Result, error) {
	gridHeight := height - LSGHeightOffset

	lat, lon, err := c.lsg.Unproject(easting, northing)
	if err != nil {
		return c.fail("unproject local grid", err)
	}
	ax, ay := c.national.Project(lat, lon)
	seed, err := c.shifts.Interpolate(ax, ay)
	if err != nil {
		return c.fail("interpolate seed height shift", err)
	}

	local := coord.ToCartesian(coord.Geodetic{Lat: lat, Lon: lon, Height: gridHeight + seed.Height}, coord.WGS84)
	back, err := c.helmert.ApplyInverse(local)
	if err != nil {
		return c.fail("inverse helmert", err)
	}
	etrs := coord.ToGeodetic(back, coord.GRS80)

	x, y := c.national.Project(etrs.Lat, etrs.Lon)
	s, err := c.shifts.Interpolate(x, y)
	if err != nil {
		return c.fail("interpolate grid shift", err)
	}

	return Result{
		Mode:          ModeLSG,
		GridDatum:     Projected{Easting: x + s.East, Northing: y + s.North, Height: gridHeight},
		ETRS89:        etrs,
		ETRSProjected: Projected{Easting: x, Northing: y, Height: etrs.Height},
		LSG:           Projected{Easting: easting, Northing: northing, Height: height},
	}, nil
}

// toLSG carries an ETRS89 position through the Helmert transform onto the
// local grid. The returned height is left for the caller to set.
func (c *Converter) toLSG(g coord.Geodetic) Projected {
	moved := c.helmert.Apply(coord.ToCartesian(g, coord.WGS84))
	local := coord.ToGeodetic(moved, coord.WGS84)
	e, n := c.lsg.Project(local.Lat, local.Lon)
	return Projected{Easting: e, Northing: n}
}

func (c *Converter) fail(stage string, err error) (Result, error) {
	c.logger.Debug("conversion stage failed", zap.String("stage", stage), zap.Error(err))
	return Result{}, err
}

// Kind classifies a conversion error for callers that report it outward.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, grid.ErrOutOfCoverage):
		return "out_of_coverage"
	case errors.Is(err, grid.ErrNoGrid):
		return "no_grid"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, coord.ErrNoConvergence):
		return "no_convergence"
	default:
		return "internal"
	}
}
