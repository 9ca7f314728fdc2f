package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chpetty/ccmap/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
locations: locations.geojson
map:
  style: mapbox://styles/example/abc
  access_token: pk.test
icons:
  default: images/bluemarker.png
  types:
    Head Start: images/redmarker.png
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "locations.geojson", cfg.Locations)
	assert.Equal(t, "pk.test", cfg.Map.AccessToken)
	assert.Equal(t, DefaultZoom, cfg.Map.Zoom)
	assert.Equal(t, DefaultCenter, cfg.Map.Center)
	assert.Equal(t, DefaultIconSize, cfg.Icons.Size)
	assert.Equal(t, "images/redmarker.png", cfg.Icons.Types["Head Start"])
	assert.Equal(t, DefaultPopup(), cfg.Popup)
}

func TestLoadInlineLocations(t *testing.T) {
	path := writeConfig(t, `
locations_geojson:
  type: FeatureCollection
  features:
    - type: Feature
      geometry:
        type: Point
        coordinates: [-71.1, 42.37]
      properties:
        Name: Inline
        Capacity: 12
popup:
  - property: Name
  - property: Website
    format: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.LocationsInline)
	require.Len(t, cfg.LocationsInline.Features, 1)

	capacity, ok := cfg.LocationsInline.Features[0].Property("Capacity")
	assert.True(t, ok)
	assert.Equal(t, "12", capacity)

	assert.Equal(t, []PopupField{
		{Property: "Name", Tag: "p"},
		{Property: "Website", Tag: "p", Format: true},
	}, cfg.Popup)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no source", mutate: func(c *Config) { c.Locations = "" }, errMsg: geo.ErrNoSource.Error()},
		{name: "zoom", mutate: func(c *Config) { c.Map.Zoom = 23 }, errMsg: "zoom 23"},
		{name: "center", mutate: func(c *Config) { c.Map.Center = [2]float64{0, 95} }, errMsg: "center"},
		{name: "tag", mutate: func(c *Config) { c.Popup[0].Tag = "div" }, errMsg: "unsupported tag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Locations: "x.geojson"}
			cfg.ApplyDefaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "map: [unclosed"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "map:\n  zoom: 40\n"))
	assert.Error(t, err)
}

func TestLoadPopupOnly(t *testing.T) {
	path := writeConfig(t, `
popup:
  - property: Name
    tag: h3
  - property: Email
    format: true
`)

	_, err := Load(path)
	assert.ErrorIs(t, err, geo.ErrNoSource)

	fields, err := LoadPopup(path)
	require.NoError(t, err)
	assert.Equal(t, []PopupField{
		{Property: "Name", Tag: "h3"},
		{Property: "Email", Tag: "p", Format: true},
	}, fields)

	fields, err = LoadPopup(writeConfig(t, "map:\n  zoom: 40\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPopup(), fields)

	_, err = LoadPopup(writeConfig(t, "popup:\n  - property: Name\n    tag: div\n"))
	assert.Error(t, err)
}
