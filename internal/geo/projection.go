package geo

import (
	"math"
)

// metersPerDegreeLat is roughly constant across the globe.
const metersPerDegreeLat = 111320.0

// LocalProjection converts between geographic coordinates and a local planar
// frame in meters centered on a fixed point, using the small-area flat-Earth
// approximation. Precision degrades with distance from the center and near
// the poles; at neighborhood scale the error is negligible.
type LocalProjection struct {
	centerLat   float64
	centerLon   float64
	latToMeters float64
	lonToMeters float64
}

// NewLocalProjection creates a projection centered on the given point.
// The longitude scale factor depends on the center latitude, so the two
// are always recomputed together.
func NewLocalProjection(centerLat, centerLon float64) *LocalProjection {
	return &LocalProjection{
		centerLat:   centerLat,
		centerLon:   centerLon,
		latToMeters: metersPerDegreeLat,
		lonToMeters: metersPerDegreeLat * math.Cos(centerLat*math.Pi/180.0),
	}
}

// ProjectToMeters converts lat/lon to local Cartesian coordinates:
// x grows eastward, y grows northward.
func (p *LocalProjection) ProjectToMeters(lat, lon float64) (x, y float64) {
	x = (lon - p.centerLon) * p.lonToMeters
	y = (lat - p.centerLat) * p.latToMeters
	return x, y
}

// MetersToLatLon is the exact inverse of ProjectToMeters.
func (p *LocalProjection) MetersToLatLon(x, y float64) (lat, lon float64) {
	lat = p.centerLat + y/p.latToMeters
	lon = p.centerLon + x/p.lonToMeters
	return lat, lon
}

// Center returns the projection center.
func (p *LocalProjection) Center() (lat, lon float64) {
	return p.centerLat, p.centerLon
}

// FlatDistanceMeters returns the planar distance between two coordinates
// under the same flat-Earth metric the projection uses, with the cosine
// correction taken at the first point. Shared by the map data cache so the
// refetch threshold and the projection can never drift apart.
func FlatDistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dy := (lat2 - lat1) * metersPerDegreeLat
	dx := (lon2 - lon1) * metersPerDegreeLat * math.Cos(lat1*math.Pi/180.0)
	return math.Sqrt(dx*dx + dy*dy)
}
