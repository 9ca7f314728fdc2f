package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrNoSource is returned by Resolve when neither inline data nor a location is set.
var ErrNoSource = errors.New("no locations source configured")

// Decode parses a GeoJSON feature collection.
func Decode(r io.Reader) (FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return FeatureCollection{}, fmt.Errorf("decode geojson: %w", err)
	}

	if fc.Type != "" && fc.Type != "FeatureCollection" {
		return FeatureCollection{}, fmt.Errorf("unexpected geojson type %q", fc.Type)
	}

	return fc, nil
}

// LoadFile reads a feature collection from disk.
func LoadFile(path string) (FeatureCollection, error) {
	f, err := os.Open(path)
	if err != nil {
		return FeatureCollection{}, err
	}
	// Explicitly ignore close error as it's a read-only operation
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// Fetch downloads a feature collection over HTTP.
func Fetch(ctx context.Context, client *http.Client, url string) (FeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return FeatureCollection{}, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return FeatureCollection{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return FeatureCollection{}, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	return Decode(resp.Body)
}

// IsURL reports whether location should be fetched rather than read from disk.
func IsURL(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// Resolve returns the locations to render.
// Inline data has priority, then a URL, then a local file.
func Resolve(ctx context.Context, client *http.Client, inline *FeatureCollection, location string) (FeatureCollection, error) {
	switch {
	case inline != nil:
		log.Info().
			Int("features", len(inline.Features)).
			Msg("Using inline locations data from config")
		return *inline, nil

	case location == "":
		return FeatureCollection{}, ErrNoSource

	case IsURL(location):
		log.Info().Str("source", location).Msg("Fetching locations")
		return Fetch(ctx, client, location)

	default:
		log.Info().Str("path", location).Msg("Reading locations")
		return LoadFile(location)
	}
}
