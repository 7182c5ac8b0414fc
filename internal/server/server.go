// Package server exposes the converter over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pspoerri/lsgconv/internal/convert"
	"github.com/pspoerri/lsgconv/internal/grid"
)

// Converter is the part of *convert.Converter the server needs.
type Converter interface {
	Convert(req convert.Request) (convert.Result, error)
}

// CoverageSource reports the loaded correction grid; *gridload.Holder implements it.
type CoverageSource interface {
	Coverage() (grid.Coverage, error)
}

// Server routes conversion requests.
type Server struct {
	conv    Converter
	grid    CoverageSource
	logger  *zap.Logger
	maxBody int64
	router  *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxBodyBytes limits the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// New builds a Server and its routes.
func New(conv Converter, cov CoverageSource, opts ...Option) *Server {
	s := &Server{
		conv:    conv,
		grid:    cov,
		logger:  zap.NewNop(),
		maxBody: 64 << 10,
	}
	for _, o := range opts {
		o(s)
	}

	r := mux.NewRouter()
	r.Use(s.requestLog)
	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/convert", s.convertHandler).Methods(http.MethodPost, http.MethodGet)
	api.HandleFunc("/grid", s.gridInfo).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, "", "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, "", "method not allowed")
	})
	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests for up to five seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if _, err := s.grid.Coverage(); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "no_grid", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) gridInfo(w http.ResponseWriter, r *http.Request) {
	cov, err := s.grid.Coverage()
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "no_grid", err.Error())
		return
	}
	minX, minY, maxX, maxY := cov.Bounds()
	s.writeJSON(w, http.StatusOK, struct {
		grid.Coverage
		Bounds [4]float64 `json:"bounds"`
	}{cov, [4]float64{minX, minY, maxX, maxY}})
}

// convertHandler dispatches GET to convertQuery and POST to convertJSON.
func (s *Server) convertHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		s.convertQuery(w, r)
		return
	}
	s.convertJSON(w, r)
}

func (s *Server) convertJSON(w http.ResponseWriter, r *http.Request) {
	var body convertRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body: "+err.Error())
		return
	}
	s.convert(w, body)
}

func (s *Server) convertQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.convert(w, convertRequest{
		Mode: q.Get("mode"),
		X:    field(q.Get("x")),
		Y:    field(q.Get("y")),
		H:    field(q.Get("h")),
	})
}

func (s *Server) convert(w http.ResponseWriter, body convertRequest) {
	req, err := convert.ParseRequest(body.Mode, string(body.X), string(body.Y), string(body.H))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, convert.Kind(err), err.Error())
		return
	}
	res, err := s.conv.Convert(req)
	if err != nil {
		status, kind := statusFor(err)
		s.writeError(w, status, kind, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, toResponse(res))
}

func statusFor(err error) (int, string) {
	kind := convert.Kind(err)
	switch kind {
	case "no_grid":
		return http.StatusServiceUnavailable, kind
	case "out_of_coverage":
		return http.StatusUnprocessableEntity, kind
	case "invalid_input":
		return http.StatusBadRequest, kind
	default:
		return http.StatusInternalServerError, kind
	}
}

func toResponse(r convert.Result) convertResponse {
	m := func(p convert.Projected) projectedJSON {
		return projectedJSON{
			Easting:  round(p.Easting, convert.MetrePrecision),
			Northing: round(p.Northing, convert.MetrePrecision),
			Height:   round(p.Height, convert.MetrePrecision),
		}
	}
	return convertResponse{
		Mode:   r.Mode.String(),
		OSGB36: m(r.GridDatum),
		ETRS89: geodeticJSON{
			Lat:    round(r.ETRS89.Lat, convert.DegreePrecision),
			Lon:    round(r.ETRS89.Lon, convert.DegreePrecision),
			Height: round(r.ETRS89.Height, convert.MetrePrecision),
		},
		ETRSProjected: m(r.ETRSProjected),
		LSG:           m(r.LSG),
	}
}
