// Package gridload reads correction grids from CSV or SQLite and keeps the
// active grid available for hot reload.
package gridload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pspoerri/lsgconv/internal/grid"
)

// CSV column names of the published OSTN15 grid file.
const (
	ColPointID     = "Point_ID"
	ColEastShift   = "ETRS89_OSGB36_EShift"
	ColNorthShift  = "ETRS89_OSGB36_NShift"
	ColHeightShift = "ETRS89_ODN_HeightShift"
)

var requiredColumns = []string{ColPointID, ColEastShift, ColNorthShift, ColHeightShift}

// ReadCSV parses an OSTN15 shift file. Columns are matched by header name, so
// extra columns and any column order are accepted. Rows with an empty
// Point_ID are skipped.
func ReadCSV(r io.Reader) ([]grid.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("gridload: csv has no header")
	}
	if err != nil {
		return nil, fmt.Errorf("gridload: reading csv header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var recs []grid.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gridload: reading csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		if len(row) <= idx[ColPointID] || strings.TrimSpace(row[idx[ColPointID]]) == "" {
			continue
		}
		rec, err := parseRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("gridload: line %d: %w", line, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		idx[h] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("gridload: csv header missing %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRow(row []string, idx map[string]int) (grid.Record, error) {
	field := func(name string) (string, error) {
		i := idx[name]
		if i >= len(row) {
			return "", fmt.Errorf("missing %s", name)
		}
		return strings.TrimSpace(row[i]), nil
	}

	s, err := field(ColPointID)
	if err != nil {
		return grid.Record{}, err
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return grid.Record{}, fmt.Errorf("%s %q: %w", ColPointID, s, err)
	}
	if id < 1 {
		return grid.Record{}, fmt.Errorf("%s %d is not positive", ColPointID, id)
	}

	var vals [3]float64
	for i, name := range []string{ColEastShift, ColNorthShift, ColHeightShift} {
		s, err := field(name)
		if err != nil {
			return grid.Record{}, err
		}
		if vals[i], err = strconv.ParseFloat(s, 64); err != nil {
			return grid.Record{}, fmt.Errorf("%s %q: %w", name, s, err)
		}
	}
	return grid.Record{
		PointID: id,
		Cell:    grid.Cell{East: vals[0], North: vals[1], Height: vals[2]},
	}, nil
}

// WriteCSV writes records in the OSTN15 column layout.
func WriteCSV(w io.Writer, recs []grid.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(requiredColumns); err != nil {
		return err
	}
	for _, r := range recs {
		if err := cw.Write([]string{
			strconv.Itoa(r.PointID),
			strconv.FormatFloat(r.East, 'f', -1, 64),
			strconv.FormatFloat(r.North, 'f', -1, 64),
			strconv.FormatFloat(r.Height, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
