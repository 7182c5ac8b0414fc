package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pspoerri/lsgconv/internal/convert"
	"github.com/pspoerri/lsgconv/internal/coord"
	"github.com/pspoerri/lsgconv/internal/grid"
	"github.com/pspoerri/lsgconv/internal/grid/gridtest"
	"github.com/pspoerri/lsgconv/internal/gridload"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *gridload.Holder) {
	t.Helper()
	h := gridload.NewHolder(gridtest.SouthEast(t))
	return New(convert.New(h), h, opts...), h
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestConvert_POST(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"numbers", `{"mode":"osgb","x":530034.1,"y":180381.2,"h":12.3}`},
		{"strings", `{"mode":"osgb","x":"530034.1","y":" 180381.2 ","h":"12.3"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/v1/convert", tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			got := decode[convertResponse](t, rec)
			assert.Equal(t, "osgb", got.Mode)
			assert.Equal(t, 530034.1, got.OSGB36.Easting)
			assert.Equal(t, 112.3, got.LSG.Height)
			assert.InDelta(t, 51.5, got.ETRS89.Lat, 0.1)
		})
	}
}

func TestConvert_POSTMissingHeight(t *testing.T) {
	s, _ := newTestServer(t)

	for _, body := range []string{
		`{"mode":"lsg","x":80000,"y":5000}`,
		`{"mode":"lsg","x":80000,"y":5000,"h":null}`,
		`{"mode":"lsg","x":80000,"y":5000,"h":""}`,
	} {
		rec := do(t, s, http.MethodPost, "/api/v1/convert", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decode[convertResponse](t, rec)
		assert.Equal(t, 0.0, got.LSG.Height)
		assert.Equal(t, -100.0, got.OSGB36.Height)
	}
}

func TestConvert_GET(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/convert?mode=etrs&x=51.5074&y=-0.1278&h=45", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[convertResponse](t, rec)
	assert.Equal(t, "etrs", got.Mode)
	assert.Equal(t, 51.5074, got.ETRS89.Lat)
	assert.Equal(t, 45.0, got.ETRS89.Height)
}

func TestConvert_Errors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantKind   string
	}{
		{"out of coverage", `{"mode":"osgb","x":300000,"y":300000}`, http.StatusUnprocessableEntity, "out_of_coverage"},
		{"bad number", `{"mode":"osgb","x":"east","y":1}`, http.StatusBadRequest, "invalid_input"},
		{"missing y", `{"mode":"etrs","x":51.5}`, http.StatusBadRequest, "invalid_input"},
		{"unknown mode", `{"mode":"utm","x":1,"y":2}`, http.StatusBadRequest, "invalid_input"},
		{"bool coordinate", `{"mode":"osgb","x":true,"y":2}`, http.StatusBadRequest, "invalid_input"},
		{"unknown field", `{"mode":"osgb","x":1,"y":2,"z":3}`, http.StatusBadRequest, "invalid_input"},
		{"not json", `mode=osgb`, http.StatusBadRequest, "invalid_input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/v1/convert", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			got := decode[errorResponse](t, rec)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.NotEmpty(t, got.Error)
		})
	}
}

func TestConvert_BodyTooLarge(t *testing.T) {
	s, _ := newTestServer(t, WithMaxBodyBytes(32))

	rec := do(t, s, http.MethodPost, "/api/v1/convert", `{"mode":"osgb","x":530034.1,"y":180381.2,"h":12.3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNoGrid(t *testing.T) {
	h := gridload.NewHolder(nil)
	s := New(convert.New(h), h)

	rec := do(t, s, http.MethodPost, "/api/v1/convert", `{"mode":"osgb","x":530000,"y":180000}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "no_grid", decode[errorResponse](t, rec).Kind)

	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/api/v1/grid", "").Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{gridload.ErrNoGrid, http.StatusServiceUnavailable, "no_grid"},
		{grid.ErrOutOfCoverage, http.StatusUnprocessableEntity, "out_of_coverage"},
		{convert.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
		{coord.ErrNoConvergence, http.StatusInternalServerError, "no_convergence"},
	}
	for _, tt := range tests {
		status, kind := statusFor(tt.err)
		assert.Equal(t, tt.status, status, "%v", tt.err)
		assert.Equal(t, tt.kind, kind, "%v", tt.err)
	}
}

func TestGridInfo(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/grid", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, float64(61*81), got["cells"])
	assert.Equal(t, float64(500), got["min_col"])
	assert.Equal(t, []any{500000.0, 120000.0, 560000.0, 200000.0}, got["bounds"])
}

func TestRoutes(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		method, target, body string
		want                 int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/api/v1/grid", "", http.StatusOK},
		{http.MethodGet, "/api/v1/convert?mode=osgb&x=530034.1&y=180381.2", "", http.StatusOK},
		{http.MethodPost, "/api/v1/convert", `{"mode":"osgb","x":530034.1,"y":180381.2}`, http.StatusOK},
		{http.MethodGet, "/api/v2/convert", "", http.StatusNotFound},
		{http.MethodDelete, "/api/v1/convert", "", http.StatusMethodNotAllowed},
		{http.MethodPut, "/api/v1/convert", "", http.StatusMethodNotAllowed},
		{http.MethodPut, "/api/v1/grid", "", http.StatusMethodNotAllowed},
		{http.MethodPost, "/healthz", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		rec := do(t, s, tt.method, tt.target, tt.body)
		assert.Equal(t, tt.want, rec.Code, "%s %s", tt.method, tt.target)
		if tt.want == http.StatusMethodNotAllowed {
			assert.Equal(t, "method not allowed", decode[errorResponse](t, rec).Error, "%s %s", tt.method, tt.target)
		}
	}
}

func TestRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s, _ := newTestServer(t, WithLogger(zap.New(core)))

	rec := do(t, s, http.MethodGet, "/healthz", "")
	id := rec.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err, "response should carry a generated uuid")

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, id, fields["request_id"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, "/healthz", fields["path"])

	// A well-formed id from the client is kept.
	want := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, want)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, want, rec.Header().Get(RequestIDHeader))
}

func TestGridSwapVisibleToServer(t *testing.T) {
	s, h := newTestServer(t)

	h.Store(gridtest.New(t, 100, 110, 100, 110))
	rec := do(t, s, http.MethodPost, "/api/v1/convert", `{"mode":"osgb","x":530034.1,"y":180381.2}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListenAndServe_Shutdown(t *testing.T) {
	s, _ := newTestServer(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, addr, time.Second, time.Second) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestField_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want field
	}{
		{`1.5`, "1.5"},
		{`-2e3`, "-2e3"},
		{`"530000"`, "530000"},
		{`null`, ""},
	}
	for _, tt := range tests {
		var f field
		require.NoError(t, json.Unmarshal([]byte(tt.in), &f), tt.in)
		assert.Equal(t, tt.want, f, tt.in)
	}

	var f field
	assert.Error(t, json.Unmarshal([]byte(`{}`), &f))
}
