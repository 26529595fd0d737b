package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// Sentinel names substituted by data sources when OSM tags carry no name.
// The rendering layer filters these out of accessible descriptions.
const (
	UnnamedStreet   = "Unnamed Street"
	UnnamedPath     = "Unnamed Path"
	UnnamedBuilding = "Unnamed Building"
)

// Street is a named road polyline. Geometry vertices are lon/lat pairs
// (orb convention) in feed order. Immutable once loaded.
type Street struct {
	Name     string
	Geometry orb.LineString
	Kind     string // highway class: primary, residential, service, ...
}

// PedestrianPath is a walkable way: footway, path, pedestrian street or steps.
type PedestrianPath struct {
	Name     string
	Geometry orb.LineString
	Kind     string
}

// Intersection marks a point where a pedestrian would expect a crossing
// or traffic signal. ConnectingStreets is reserved for a future query
// that resolves which ways meet here; data sources leave it empty.
type Intersection struct {
	Location          orb.Point
	ConnectingStreets []string
}

// Building is a point of interest with a postal address, collapsed to a
// single coordinate (way/relation centers come pre-computed by the source).
type Building struct {
	Name     string
	Location orb.Point
	Address  string
}

// Address is a geocoding result.
type Address struct {
	DisplayName string
	Lat         float64
	Lon         float64
	PlaceID     int64
}

// ValidLatLon reports whether a coordinate pair is finite and within
// the geographic domain.
func ValidLatLon(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
