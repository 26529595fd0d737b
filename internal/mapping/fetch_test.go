package mapping

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/paulmach/orb"

	"streetgrid/internal/geo"
)

// fakeProvider fails the categories listed in fail and returns one feature
// for every other category.
type fakeProvider struct {
	fail map[string]bool
}

var errUnavailable = errors.New("service unavailable")

func (f *fakeProvider) StreetsAround(_ context.Context, _, _ float64, _ int) ([]geo.Street, error) {
	if f.fail["streets"] {
		return nil, errUnavailable
	}
	return []geo.Street{{Name: "Main St", Geometry: orb.LineString{{-73.0, 40.0}}}}, nil
}

func (f *fakeProvider) IntersectionsAround(_ context.Context, _, _ float64, _ int) ([]geo.Intersection, error) {
	if f.fail["intersections"] {
		return nil, errUnavailable
	}
	return []geo.Intersection{{Location: orb.Point{-73.0, 40.0}}}, nil
}

func (f *fakeProvider) PedestrianPathsAround(_ context.Context, _, _ float64, _ int) ([]geo.PedestrianPath, error) {
	if f.fail["paths"] {
		return nil, errUnavailable
	}
	return []geo.PedestrianPath{{Name: "Greenway", Geometry: orb.LineString{{-73.0, 40.0}}}}, nil
}

func (f *fakeProvider) BuildingsAround(_ context.Context, _, _ float64, _ int) ([]geo.Building, error) {
	if f.fail["buildings"] {
		return nil, errUnavailable
	}
	return []geo.Building{{Name: "Library", Location: orb.Point{-73.0, 40.0}}}, nil
}

func TestFetchFeaturesAllSucceed(t *testing.T) {
	set, failed := FetchFeatures(context.Background(), &fakeProvider{}, 40.0, -73.0, 500)

	if len(failed) != 0 {
		t.Errorf("failed categories = %v, want none", failed)
	}
	if len(set.Streets) != 1 || len(set.Intersections) != 1 || len(set.Paths) != 1 || len(set.Buildings) != 1 {
		t.Errorf("feature counts = %d/%d/%d/%d, want 1 each",
			len(set.Streets), len(set.Intersections), len(set.Paths), len(set.Buildings))
	}
}

func TestFetchFeaturesRecoversPartialFailure(t *testing.T) {
	p := &fakeProvider{fail: map[string]bool{"streets": true, "buildings": true}}
	set, failed := FetchFeatures(context.Background(), p, 40.0, -73.0, 500)

	want := []string{"streets", "buildings"}
	if !reflect.DeepEqual(failed, want) {
		t.Errorf("failed categories = %v, want %v", failed, want)
	}

	if len(set.Streets) != 0 {
		t.Errorf("failed street fetch returned %d streets, want empty", len(set.Streets))
	}
	if len(set.Paths) != 1 || len(set.Intersections) != 1 {
		t.Error("successful categories lost in partial failure")
	}

	// The engine accepts the partial set without error.
	n := NewStreetNetwork(geo.DefaultViewportConfig())
	if err := n.Load(set, 40.0, -73.0, 500); err != nil {
		t.Fatalf("Load with partial data: %v", err)
	}
	if n.Cache().NeedsRefetch(40.0, -73.0) {
		t.Error("loaded cache requested an immediate refetch at the same center")
	}
}
