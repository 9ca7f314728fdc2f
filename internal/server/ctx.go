package server

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"net/http"

	"github.com/chpetty/ccmap/internal/config"
	"github.com/chpetty/ccmap/internal/geo"
	"github.com/chpetty/ccmap/internal/icons"
	"github.com/chpetty/ccmap/internal/marker"

	"github.com/rs/zerolog/log"
)

// ServerContext holds dependencies for request handlers.
// It is built once and read-only afterwards.
type ServerContext struct {
	Config    *config.Config
	Icons     *icons.Set
	Markers   []marker.Marker
	Locations geo.FeatureCollection

	mapView   payload
	markers   payload
	locations payload
}

// payload is a pre-encoded response body with its ETag.
type payload struct {
	etag string
	body []byte
}

// NewServerContext loads locations and icons and renders every marker up front.
func NewServerContext(ctx context.Context, cfg *config.Config, client *http.Client) (*ServerContext, error) {
	log.Info().Msg("Initializing server context")

	fc, err := geo.Resolve(ctx, client, cfg.LocationsInline, cfg.Locations)
	if err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}

	iconSet, err := icons.Load(ctx, client, cfg.Icons)
	if err != nil {
		return nil, fmt.Errorf("load icons: %w", err)
	}

	markers := marker.NewBuilder(cfg.Popup, iconSet).Build(fc)

	s := &ServerContext{
		Config:    cfg,
		Icons:     iconSet,
		Markers:   markers,
		Locations: fc,
	}

	if s.mapView, err = encode(cfg.Map); err != nil {
		return nil, err
	}
	if s.markers, err = encode(markers); err != nil {
		return nil, err
	}
	if s.locations, err = encode(fc); err != nil {
		return nil, err
	}

	log.Info().
		Int("features", len(fc.Features)).
		Int("markers", len(markers)).
		Int("icons", iconSet.Len()).
		Msg("Server context initialized successfully")

	return s, nil
}

func encode(v any) (payload, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return payload{}, fmt.Errorf("encode response: %w", err)
	}

	return payload{
		etag: fmt.Sprintf(`"%x-%08x"`, len(body), crc32.ChecksumIEEE(body)),
		body: body,
	}, nil
}
