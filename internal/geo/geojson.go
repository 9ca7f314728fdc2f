// Package geo handles GeoJSON feature collections and where they come from.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrNotPoint is returned by LngLat for features without a usable point.
var ErrNotPoint = errors.New("feature has no point geometry")

// FeatureCollection represents a collection of geographic features.
// It follows the standard GeoJSON structure.
type FeatureCollection struct {
	Type     string    `json:"type" yaml:"type"`
	Features []Feature `json:"features" yaml:"features"`
}

// Feature represents a single location with geometry and free-form properties.
type Feature struct {
	Properties map[string]any `json:"properties" yaml:"properties"`
	Type       string         `json:"type" yaml:"type"`
	Geometry   Geometry       `json:"geometry" yaml:"geometry"`
}

// Geometry represents the geometry of a feature. Only Point is used for markers.
type Geometry struct {
	Type        string    `json:"type" yaml:"type"`
	Coordinates []float64 `json:"coordinates" yaml:"coordinates"` // [Lon, Lat]
}

// Property returns the named property rendered as text.
// Missing and null properties report false.
func (f Feature) Property(name string) (string, bool) {
	v, ok := f.Properties[name]
	if !ok || v == nil {
		return "", false
	}

	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case bool:
		return strconv.FormatBool(val), true
	case json.Number:
		return val.String(), true
	default:
		// nested objects and arrays
		data, err := json.Marshal(val)
		if err != nil {
			return "", false
		}
		return string(data), true
	}
}

// LngLat returns the [lon, lat] pair of a Point feature.
func (f Feature) LngLat() ([2]float64, error) {
	if f.Geometry.Type != "Point" || len(f.Geometry.Coordinates) < 2 {
		return [2]float64{}, ErrNotPoint
	}

	lon, lat := f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return [2]float64{}, fmt.Errorf("coordinates out of range: %v, %v", lon, lat)
	}

	return [2]float64{lon, lat}, nil
}
