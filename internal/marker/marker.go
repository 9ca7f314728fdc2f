// Package marker turns GeoJSON features into the descriptors a map client
// needs to place pins: title, position, icon and popup HTML.
package marker

import (
	"github.com/chpetty/ccmap/internal/config"
	"github.com/chpetty/ccmap/internal/geo"

	"github.com/rs/zerolog/log"
)

// Property names read from every feature.
const (
	NameProperty = "Name"
	TypeProperty = "Type"
)

// IconResolver maps a location type to an icon URL.
type IconResolver interface {
	Resolve(locationType string) string
}

// Marker is a single pin on the map.
type Marker struct {
	Title  string     `json:"title" yaml:"title"`
	Type   string     `json:"type,omitempty" yaml:"type,omitempty"`
	LngLat [2]float64 `json:"lnglat" yaml:"lnglat"` // [Lon, Lat]
	Icon   string     `json:"icon,omitempty" yaml:"icon,omitempty"`
	Popup  string     `json:"popup" yaml:"popup"`
}

// Builder renders markers with a fixed popup layout.
type Builder struct {
	popup *Popup
	icons IconResolver
}

// NewBuilder returns a builder. icons may be nil, in which case markers carry no icon.
func NewBuilder(fields []config.PopupField, icons IconResolver) *Builder {
	return &Builder{
		popup: NewPopup(fields),
		icons: icons,
	}
}

// Build returns one marker per point feature, in feature order.
// Features without a usable point are skipped.
func (b *Builder) Build(fc geo.FeatureCollection) []Marker {
	markers := make([]Marker, 0, len(fc.Features))

	for i, f := range fc.Features {
		m, err := b.Marker(f)
		if err != nil {
			name, _ := f.Property(NameProperty)
			log.Warn().
				Err(err).
				Int("index", i).
				Str("name", name).
				Msg("Skipping feature")
			continue
		}
		markers = append(markers, m)
	}

	log.Debug().
		Int("features", len(fc.Features)).
		Int("markers", len(markers)).
		Msg("Markers built")

	return markers
}

// Marker renders a single feature.
func (b *Builder) Marker(f geo.Feature) (Marker, error) {
	lngLat, err := f.LngLat()
	if err != nil {
		return Marker{}, err
	}

	title, _ := f.Property(NameProperty)
	locationType, _ := f.Property(TypeProperty)

	m := Marker{
		Title:  title,
		Type:   locationType,
		LngLat: lngLat,
		Popup:  b.popup.Render(f),
	}
	if b.icons != nil {
		m.Icon = b.icons.Resolve(locationType)
	}

	return m, nil
}
