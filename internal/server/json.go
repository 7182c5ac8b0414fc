package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode json response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, kind, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}

// field is a coordinate that clients may send either as a JSON number or as
// a string, the way form inputs arrive. It keeps the raw text for parsing.
type field string

func (f *field) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = field(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("coordinate must be a number or string, got %s", b)
		}
		*f = field(n.String())
	}
	return nil
}

type convertRequest struct {
	Mode string `json:"mode"`
	X    field  `json:"x"`
	Y    field  `json:"y"`
	H    field  `json:"h"`
}

type projectedJSON struct {
	Easting  float64 `json:"easting"`
	Northing float64 `json:"northing"`
	Height   float64 `json:"height"`
}

type geodeticJSON struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Height float64 `json:"height"`
}

type convertResponse struct {
	Mode          string        `json:"mode"`
	OSGB36        projectedJSON `json:"osgb36"`
	ETRS89        geodeticJSON  `json:"etrs89"`
	ETRSProjected projectedJSON `json:"etrs89_projected"`
	LSG           projectedJSON `json:"lsg"`
}

// round keeps responses at the precision the conversion is meaningful to.
func round(v float64, prec int) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', prec, 64), 64)
	return r
}
