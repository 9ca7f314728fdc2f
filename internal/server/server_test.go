package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/chpetty/ccmap/internal/config"
	"github.com/chpetty/ccmap/internal/geo"
	"github.com/chpetty/ccmap/internal/marker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) *ServerContext {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	iconPath := filepath.Join(t.TempDir(), "marker.png")
	require.NoError(t, os.WriteFile(iconPath, buf.Bytes(), 0o644))

	cfg := &config.Config{
		LocationsInline: &geo.FeatureCollection{
			Type: "FeatureCollection",
			Features: []geo.Feature{{
				Type:     "Feature",
				Geometry: geo.Geometry{Type: "Point", Coordinates: []float64{-71.1, 42.37}},
				Properties: map[string]any{
					"Name":    "Peabody",
					"Type":    "Public",
					"Website": "http://example.com/peabody",
				},
			}},
		},
		Map:   config.MapView{Style: "mapbox://styles/test", AccessToken: "pk.test"},
		Icons: config.Icons{Default: iconPath, Size: 8},
	}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())

	s, err := NewServerContext(context.Background(), cfg, http.DefaultClient)
	require.NoError(t, err)
	return s
}

func TestHandlers(t *testing.T) {
	h := newTestContext(t).Routes()

	tests := []struct {
		name        string
		method      string
		path        string
		status      int
		contentType string
	}{
		{name: "map", method: http.MethodGet, path: "/api/map", status: http.StatusOK, contentType: "application/json"},
		{name: "markers", method: http.MethodGet, path: "/api/markers", status: http.StatusOK, contentType: "application/json"},
		{name: "geojson", method: http.MethodGet, path: "/locations.geojson", status: http.StatusOK, contentType: "application/geo+json"},
		{name: "icon", method: http.MethodGet, path: "/icons/default.webp", status: http.StatusOK, contentType: "image/webp"},
		{name: "head", method: http.MethodHead, path: "/api/markers", status: http.StatusOK, contentType: "application/json"},
		{name: "unknown icon", method: http.MethodGet, path: "/icons/public.webp", status: http.StatusNotFound},
		{name: "icon without ext", method: http.MethodGet, path: "/icons/default", status: http.StatusNotFound},
		{name: "post", method: http.MethodPost, path: "/api/markers", status: http.StatusMethodNotAllowed},
		{name: "unknown path", method: http.MethodGet, path: "/nope", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			if tt.contentType != "" {
				assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
				assert.NotEmpty(t, rec.Header().Get("ETag"))
			}
		})
	}
}

func TestMarkersBody(t *testing.T) {
	h := newTestContext(t).Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markers", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var markers []marker.Marker
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &markers))
	require.Len(t, markers, 1)

	m := markers[0]
	assert.Equal(t, "Peabody", m.Title)
	assert.Equal(t, [2]float64{-71.1, 42.37}, m.LngLat)
	assert.Equal(t, "/icons/default.webp", m.Icon)
	assert.Contains(t, m.Popup, "http://example.com/peabody")
}

func TestMapBody(t *testing.T) {
	h := newTestContext(t).Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/map", nil))

	var view config.MapView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "pk.test", view.AccessToken)
	assert.Equal(t, config.DefaultCenter, view.Center)
	assert.Equal(t, config.DefaultZoom, view.Zoom)
}

func TestNotModified(t *testing.T) {
	h := newTestContext(t).Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/locations.geojson", nil))
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/locations.geojson", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestNewServerContextNoSource(t *testing.T) {
	_, err := NewServerContext(context.Background(), &config.Config{}, http.DefaultClient)
	assert.ErrorIs(t, err, geo.ErrNoSource)
}

func TestRequestLoggerStatus(t *testing.T) {
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}

func TestETagMatch(t *testing.T) {
	const etag = `"1a-00ff00ff"`

	tests := []struct {
		header string
		want   bool
	}{
		{header: etag, want: true},
		{header: `"other", ` + etag, want: true},
		{header: "W/" + etag, want: true},
		{header: "*", want: true},
		{header: `"other"`, want: false},
		{header: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, etagMatch(tt.header, etag))
		})
	}
}

func TestNotModifiedList(t *testing.T) {
	h := newTestContext(t).Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markers", nil))
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/api/markers", nil)
	req.Header.Set("If-None-Match", `"stale", W/`+etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotModified, rec.Code)
}
