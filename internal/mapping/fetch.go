package mapping

import (
	"context"

	"streetgrid/internal/geo"
)

// FeatureProvider is the contract external data sources satisfy. Each method
// returns the features of one category around a center point within a radius
// in meters. Providers report retrieval failures as errors; the fetch
// orchestrator recovers them per category.
type FeatureProvider interface {
	StreetsAround(ctx context.Context, lat, lon float64, radius int) ([]geo.Street, error)
	IntersectionsAround(ctx context.Context, lat, lon float64, radius int) ([]geo.Intersection, error)
	PedestrianPathsAround(ctx context.Context, lat, lon float64, radius int) ([]geo.PedestrianPath, error)
	BuildingsAround(ctx context.Context, lat, lon float64, radius int) ([]geo.Building, error)
}

// FeatureSet bundles the four feature categories of one fetch.
type FeatureSet struct {
	Streets       []geo.Street
	Intersections []geo.Intersection
	Paths         []geo.PedestrianPath
	Buildings     []geo.Building
}

// FetchFeatures retrieves all four categories from a provider. A category
// that fails comes back as an empty list and its name is added to the failed
// slice for user-visible reporting; fetch failures are never fatal.
func FetchFeatures(ctx context.Context, p FeatureProvider, lat, lon float64, radius int) (FeatureSet, []string) {
	var set FeatureSet
	var failed []string

	streets, err := p.StreetsAround(ctx, lat, lon, radius)
	if err != nil {
		failed = append(failed, "streets")
	} else {
		set.Streets = streets
	}

	intersections, err := p.IntersectionsAround(ctx, lat, lon, radius)
	if err != nil {
		failed = append(failed, "intersections")
	} else {
		set.Intersections = intersections
	}

	paths, err := p.PedestrianPathsAround(ctx, lat, lon, radius)
	if err != nil {
		failed = append(failed, "pedestrian paths")
	} else {
		set.Paths = paths
	}

	buildings, err := p.BuildingsAround(ctx, lat, lon, radius)
	if err != nil {
		failed = append(failed, "buildings")
	} else {
		set.Buildings = buildings
	}

	return set, failed
}
