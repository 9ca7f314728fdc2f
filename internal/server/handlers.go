// Package server handles HTTP requests and middleware.
package server

import (
	"net/http"
	"strings"

	"github.com/chpetty/ccmap/internal/icons"
)

// Routes returns the request multiplexer wrapped in the request logger.
func (s *ServerContext) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/map", s.HandleMap)
	mux.HandleFunc("/api/markers", s.HandleMarkers)
	mux.HandleFunc("/locations.geojson", s.HandleLocations)
	mux.HandleFunc(icons.PathPrefix, s.HandleIcon)

	return RequestLogger(mux)
}

// HandleMap serves the map view: style, access token, center and zoom.
func (s *ServerContext) HandleMap(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, s.mapView, "application/json")
}

// HandleMarkers serves the rendered markers as JSON.
func (s *ServerContext) HandleMarkers(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, s.markers, "application/json")
}

// HandleLocations serves the source feature collection.
func (s *ServerContext) HandleLocations(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, s.locations, "application/geo+json")
}

// HandleIcon serves a marker icon.
// Path: /icons/{key}.webp
func (s *ServerContext) HandleIcon(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, icons.PathPrefix)
	key, ok := strings.CutSuffix(name, ".webp")
	if !ok || key == "" || strings.Contains(key, "/") {
		http.NotFound(w, r)
		return
	}

	icon, ok := s.Icons.Get(key)
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	s.serve(w, r, payload{etag: icon.ETag, body: icon.Data}, "image/webp")
}

// serve writes a pre-encoded body, answering 304 when the client already has it.
func (s *ServerContext) serve(w http.ResponseWriter, r *http.Request, p payload, contentType string) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	// check If-None-Match (client sent ETag)
	if etagMatch(r.Header.Get("If-None-Match"), p.etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("ETag", p.etag)
	if w.Header().Get("Cache-Control") == "" {
		w.Header().Set("Cache-Control", "public, no-cache")
	}

	if r.Method == http.MethodHead {
		return
	}

	// Ignoring error as we cannot handle client disconnects
	_, _ = w.Write(p.body)
}

// etagMatch reports whether an If-None-Match header covers etag.
// Weak comparison: "W/" prefixes are ignored.
func etagMatch(header, etag string) bool {
	for _, item := range strings.Split(header, ",") {
		item = strings.TrimSpace(item)
		if item == "*" || strings.TrimPrefix(item, "W/") == etag {
			return true
		}
	}
	return false
}
