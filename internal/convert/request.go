package convert

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidInput is returned for missing or non-numeric coordinates.
var ErrInvalidInput = errors.New("convert: invalid input")

// Mode selects the coordinate system a request is given in.
type Mode int

const (
	ModeGridDatum Mode = iota + 1 // OSGB36 National Grid easting/northing
	ModeETRS89                    // ETRS89 latitude/longitude
	ModeLSG                       // local survey grid easting/northing
)

var modeNames = map[Mode]string{
	ModeGridDatum: "osgb",
	ModeETRS89:    "etrs",
	ModeLSG:       "lsg",
}

func (m Mode) String() string {
	if n, ok := modeNames[m]; ok {
		return n
	}
	return "unknown"
}

// ParseMode accepts "osgb", "etrs" or "lsg" (and a few aliases), case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "osgb", "osgb36", "grid", "national-grid":
		return ModeGridDatum, nil
	case "etrs", "etrs89":
		return ModeETRS89, nil
	case "lsg":
		return ModeLSG, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q (want osgb, etrs or lsg)", ErrInvalidInput, s)
	}
}

// Request is a single point to convert. X and Y are easting/northing in
// metres for the projected grids, or latitude/longitude in degrees for ETRS89.
type Request struct {
	Mode   Mode
	X, Y   float64
	Height float64
}

// GridDatum returns a request for an OSGB36 National Grid coordinate.
func GridDatum(easting, northing, height float64) Request {
	return Request{Mode: ModeGridDatum, X: easting, Y: northing, Height: height}
}

// ETRS89 returns a request for an ETRS89 geodetic coordinate.
func ETRS89(lat, lon, height float64) Request {
	return Request{Mode: ModeETRS89, X: lat, Y: lon, Height: height}
}

// LSG returns a request for a local survey grid coordinate.
func LSG(easting, northing, height float64) Request {
	return Request{Mode: ModeLSG, X: easting, Y: northing, Height: height}
}

// Validate checks that the mode is known and every field is finite.
func (r Request) Validate() error {
	if _, ok := modeNames[r.Mode]; !ok {
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidInput, int(r.Mode))
	}
	for _, f := range []struct {
		name string
		v    float64
	}{{r.xName(), r.X}, {r.yName(), r.Y}, {"height", r.Height}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidInput, f.name)
		}
	}
	return nil
}

func (r Request) xName() string {
	if r.Mode == ModeETRS89 {
		return "latitude"
	}
	return "easting"
}

func (r Request) yName() string {
	if r.Mode == ModeETRS89 {
		return "longitude"
	}
	return "northing"
}

// ParseRequest builds a request from text fields. An empty height means 0;
// the coordinate pair is required.
func ParseRequest(mode, x, y, height string) (Request, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return Request{}, err
	}
	req := Request{Mode: m}

	if req.X, err = parseField(req.xName(), x, false); err != nil {
		return Request{}, err
	}
	if req.Y, err = parseField(req.yName(), y, false); err != nil {
		return Request{}, err
	}
	if req.Height, err = parseField("height", height, true); err != nil {
		return Request{}, err
	}
	return req, req.Validate()
}

func parseField(name, s string, optional bool) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if optional {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidInput, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrInvalidInput, name, s)
	}
	return v, nil
}
