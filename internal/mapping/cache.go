package mapping

import (
	"streetgrid/internal/geo"
)

// MapDataCache holds the last fetched feature set together with the fetch
// center and radius, and decides whether a recentered map can be rebuilt
// from what is already in memory. It is replaced wholesale on each
// successful fetch, never patched field by field.
type MapDataCache struct {
	streets       []geo.Street
	intersections []geo.Intersection
	paths         []geo.PedestrianPath
	buildings     []geo.Building

	centerLat   float64
	centerLon   float64
	fetchRadius int
}

// NewMapDataCache returns an empty cache.
func NewMapDataCache() *MapDataCache {
	return &MapDataCache{}
}

// SetData stores a fetched feature set and its fetch parameters.
func (c *MapDataCache) SetData(set FeatureSet, centerLat, centerLon float64, fetchRadius int) {
	c.streets = set.Streets
	c.intersections = set.Intersections
	c.paths = set.Paths
	c.buildings = set.Buildings
	c.centerLat = centerLat
	c.centerLon = centerLon
	c.fetchRadius = fetchRadius
}

// HasData reports whether any feature category is populated.
func (c *MapDataCache) HasData() bool {
	return len(c.streets) > 0 || len(c.intersections) > 0 ||
		len(c.paths) > 0 || len(c.buildings) > 0
}

// NeedsRefetch reports whether centering the map on a new point requires
// fetching fresh data. The 50% threshold keeps the extended grid (itself 2x
// the viewport) valid after a cache-served recenter.
func (c *MapDataCache) NeedsRefetch(newCenterLat, newCenterLon float64) bool {
	if !c.HasData() {
		return true
	}

	distance := geo.FlatDistanceMeters(c.centerLat, c.centerLon, newCenterLat, newCenterLon)
	return distance > float64(c.fetchRadius)*0.5
}

// Center returns the cached fetch center.
func (c *MapDataCache) Center() (lat, lon float64) {
	return c.centerLat, c.centerLon
}

// FetchRadius returns the cached fetch radius in meters.
func (c *MapDataCache) FetchRadius() int {
	return c.fetchRadius
}
