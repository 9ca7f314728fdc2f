// Package config handles configuration loading and shared data structures.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/chpetty/ccmap/internal/geo"

	"gopkg.in/yaml.v3"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultZoom     = 13
	DefaultIconSize = 32
	MaxZoom         = 22
)

// DefaultCenter is the center of Cambridge, MA as [lon, lat].
var DefaultCenter = [2]float64{-71.1124, 42.3783}

// Config represents the root configuration file structure.
type Config struct {
	// defining GeoJSON directly in config.yaml
	LocationsInline *geo.FeatureCollection `yaml:"locations_geojson,omitempty"`

	Locations string       `yaml:"locations,omitempty"` // path or URL
	Map       MapView      `yaml:"map"`
	Icons     Icons        `yaml:"icons"`
	Popup     []PopupField `yaml:"popup,omitempty"`
}

// MapView is the static view handed to the map client.
type MapView struct {
	Style       string     `yaml:"style" json:"style"`
	AccessToken string     `yaml:"access_token" json:"access_token"`
	Center      [2]float64 `yaml:"center" json:"center"` // [Lon, Lat]
	Zoom        int        `yaml:"zoom" json:"zoom"`
}

// Icons maps location types to marker images (path or URL).
type Icons struct {
	Types   map[string]string `yaml:"types,omitempty"`
	Default string            `yaml:"default"`
	Size    int               `yaml:"size,omitempty"`
}

// PopupField is one line of a marker popup.
type PopupField struct {
	Property string `yaml:"property"`
	Tag      string `yaml:"tag,omitempty"`    // h3 or p
	Format   bool   `yaml:"format,omitempty"` // linkify URIs and e-mails
}

// DefaultPopup is the popup layout used when none is configured.
func DefaultPopup() []PopupField {
	return []PopupField{
		{Property: "Name", Tag: "h3"},
		{Property: "Type", Tag: "p"},
		{Property: "Subtype", Tag: "p"},
		{Property: "Phone", Tag: "p"},
		{Property: "Email", Tag: "p", Format: true},
		{Property: "Address", Tag: "p"},
		{Property: "Capacity", Tag: "p"},
		{Property: "Age", Tag: "p"},
		{Property: "Website", Tag: "p", Format: true},
		{Property: "Notes", Tag: "p"},
		{Property: "Hours", Tag: "p"},
		{Property: "Enrollment", Tag: "p"},
		{Property: "Cost", Tag: "p", Format: true},
		{Property: "Finaid", Tag: "p", Format: true},
	}
}

// Load reads and parses the YAML configuration file from the specified path.
// Defaults are applied and the result validated.
func Load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	return cfg, nil
}

// LoadPopup reads only the popup layout from a configuration file.
// The rest of the file is not required to be complete.
func LoadPopup(path string) ([]PopupField, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := validatePopup(cfg.Popup); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	return cfg.Popup, nil
}

func read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if len(c.Popup) == 0 {
		c.Popup = DefaultPopup()
	}
	for i := range c.Popup {
		if c.Popup[i].Tag == "" {
			c.Popup[i].Tag = "p"
		}
	}

	if c.Icons.Size <= 0 {
		c.Icons.Size = DefaultIconSize
	}
	if c.Map.Zoom == 0 {
		c.Map.Zoom = DefaultZoom
	}
	if c.Map.Center == [2]float64{} {
		c.Map.Center = DefaultCenter
	}
}

// Validate checks the configuration for values the server cannot use.
func (c *Config) Validate() error {
	var errs []error

	if c.LocationsInline == nil && c.Locations == "" {
		errs = append(errs, geo.ErrNoSource)
	}

	if c.Map.Zoom < 0 || c.Map.Zoom > MaxZoom {
		errs = append(errs, fmt.Errorf("map zoom %d out of range 0..%d", c.Map.Zoom, MaxZoom))
	}

	lon, lat := c.Map.Center[0], c.Map.Center[1]
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		errs = append(errs, fmt.Errorf("map center %v out of range", c.Map.Center))
	}

	errs = append(errs, validatePopup(c.Popup))

	return errors.Join(errs...)
}

func validatePopup(fields []PopupField) error {
	var errs []error
	for _, f := range fields {
		if f.Property == "" {
			errs = append(errs, errors.New("popup field without property"))
		}
		switch f.Tag {
		case "", "h3", "p":
		default:
			errs = append(errs, fmt.Errorf("popup field %q: unsupported tag %q", f.Property, f.Tag))
		}
	}
	return errors.Join(errs...)
}
