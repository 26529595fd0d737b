package mapping

import (
	"math"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"streetgrid/internal/geo"
)

func buildNetwork(t *testing.T, set FeatureSet, centerLat, centerLon float64) *StreetNetwork {
	t.Helper()
	n := NewStreetNetwork(geo.DefaultViewportConfig())
	n.SetFeatures(set)
	if err := n.BuildGrid(centerLat, centerLon); err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}
	return n
}

// eastWestStreet returns a street through the center with endpoints the
// given number of meters east and west of it.
func eastWestStreet(name string, centerLat, centerLon, halfLengthMeters float64) geo.Street {
	p := geo.NewLocalProjection(centerLat, centerLon)
	lat1, lon1 := p.MetersToLatLon(-halfLengthMeters, 0)
	lat2, lon2 := p.MetersToLatLon(halfLengthMeters, 0)
	return geo.Street{
		Name:     name,
		Kind:     "residential",
		Geometry: orb.LineString{{lon1, lat1}, {lon2, lat2}},
	}
}

func TestSinglePointStreetSetsOneCell(t *testing.T) {
	street := geo.Street{
		Name:     "Stub St",
		Geometry: orb.LineString{{-73.0, 40.0}},
	}
	n := buildNetwork(t, FeatureSet{Streets: []geo.Street{street}}, 40.0, -73.0)

	flagged := 0
	for y := 0; y < n.GridHeight(); y++ {
		for x := 0; x < n.GridWidth(); x++ {
			cell := n.CellAt(x, y)
			if cell.HasStreet {
				flagged++
				if cell.HasPath || cell.HasBuilding || cell.IsIntersection {
					t.Errorf("cell (%d,%d) has extra flags set", x, y)
				}
			}
		}
	}
	if flagged != 1 {
		t.Errorf("single-point street flagged %d cells, want 1", flagged)
	}
}

func TestMainStreetScenario(t *testing.T) {
	street := eastWestStreet("Main St", 40.0, -73.0, 50.0)
	n := buildNetwork(t, FeatureSet{Streets: []geo.Street{street}}, 40.0, -73.0)

	// The street lies at y=0 meters, which lands on the row holding the
	// viewport center.
	row := n.GridHeight() / 2
	run := 0
	for x := 0; x < n.GridWidth(); x++ {
		cell := n.CellAt(x, row)
		if cell.HasStreet {
			run++
			if got := n.CellDetails(x, row); got != "Street: Main St" {
				t.Errorf("CellDetails(%d,%d) = %q, want %q", x, row, got, "Street: Main St")
			}
			if cell.PriorityChar() != CharStreet {
				t.Errorf("street cell char = %q, want %q", cell.PriorityChar(), CharStreet)
			}
		} else if run > 0 {
			break // run ended
		}
	}
	// 100m at 25m/cell crosses at least 4 cells.
	if run < 4 {
		t.Errorf("street run length = %d, want >= 4 contiguous cells", run)
	}
}

func TestPriorityCharacterPrecedence(t *testing.T) {
	cell := &GridCell{}
	if cell.PriorityChar() != CharEmpty {
		t.Errorf("empty cell char = %q, want space", cell.PriorityChar())
	}

	cell.markBuilding(BuildingInfo{Name: "Library"})
	if cell.PriorityChar() != CharBuilding {
		t.Errorf("building cell char = %q, want %q", cell.PriorityChar(), CharBuilding)
	}

	cell.markPath("Greenway")
	if cell.PriorityChar() != CharPath {
		t.Errorf("path cell char = %q, want %q", cell.PriorityChar(), CharPath)
	}

	cell.markStreet("Main St")
	if cell.PriorityChar() != CharStreet {
		t.Errorf("street cell char = %q, want %q", cell.PriorityChar(), CharStreet)
	}

	// Intersection wins regardless of every other flag.
	cell.IsIntersection = true
	if cell.PriorityChar() != CharIntersection {
		t.Errorf("intersection cell char = %q, want %q", cell.PriorityChar(), CharIntersection)
	}
}

func TestNameAccumulationDeduplicated(t *testing.T) {
	cell := &GridCell{}
	cell.markStreet("Main St")
	cell.markStreet("Broadway")
	cell.markStreet("Main St")
	if len(cell.StreetNames) != 2 || cell.StreetNames[0] != "Main St" || cell.StreetNames[1] != "Broadway" {
		t.Errorf("street names = %v, want [Main St Broadway] in first-seen order", cell.StreetNames)
	}

	cell.markBuilding(BuildingInfo{Name: "Library", Address: "12 Main St"})
	cell.markBuilding(BuildingInfo{Name: "Library", Address: "12 Main St"})
	cell.markBuilding(BuildingInfo{Name: "Library", Address: ""})
	if len(cell.Buildings) != 2 {
		t.Errorf("buildings = %v, want 2 distinct (name,address) pairs", cell.Buildings)
	}
}

func TestCellDetails(t *testing.T) {
	n := buildNetwork(t, FeatureSet{}, 40.0, -73.0)

	if got := n.CellDetails(-1, 0); got != "Invalid position" {
		t.Errorf("out-of-range details = %q, want %q", got, "Invalid position")
	}
	if got := n.CellDetails(n.GridWidth(), 0); got != "Invalid position" {
		t.Errorf("out-of-range details = %q, want %q", got, "Invalid position")
	}
	if got := n.CellDetails(5, 5); got != "Empty area" {
		t.Errorf("empty cell details = %q, want %q", got, "Empty area")
	}
}

func TestCellDetailsOrderingAndSentinels(t *testing.T) {
	center := buildNetwork(t, FeatureSet{}, 40.0, -73.0)
	cell := center.CellAt(20, 20)
	cell.markStreet("Main St")
	cell.markStreet("Broadway")
	cell.markPath(geo.UnnamedPath)
	cell.markPath("Greenway")
	cell.markBuilding(BuildingInfo{Name: "Library", Address: "12 Main St"})
	cell.markBuilding(BuildingInfo{Name: geo.UnnamedBuilding})
	cell.IsIntersection = true

	got := center.CellDetails(20, 20)
	want := "Intersection - Streets: Main St, Broadway - Pedestrian path: Greenway - Building: 12 Main St - Building"
	if got != want {
		t.Errorf("details = %q, want %q", got, want)
	}

	// When every path in the cell is the unnamed sentinel, announce the
	// generic label instead.
	cell2 := center.CellAt(10, 10)
	cell2.markPath(geo.UnnamedPath)
	if got := center.CellDetails(10, 10); got != "Pedestrian path" {
		t.Errorf("unnamed-path details = %q, want %q", got, "Pedestrian path")
	}
}

func TestZoomClampAndStability(t *testing.T) {
	n := buildNetwork(t, FeatureSet{}, 40.0, -73.0)

	width, height := n.GridWidth(), n.GridHeight()

	// Zooming in by 0.8 repeatedly must eventually hit the minimum bound.
	succeeded := 0
	for i := 0; i < 100; i++ {
		if !n.ZoomAtCursor(20, 20, 0.8) {
			break
		}
		succeeded++
		if n.GridWidth() != width || n.GridHeight() != height {
			t.Fatalf("grid dimensions changed to %dx%d during zoom", n.GridWidth(), n.GridHeight())
		}
	}
	if succeeded == 0 || succeeded == 100 {
		t.Fatalf("zoom-in succeeded %d times, want a finite positive count", succeeded)
	}
	if n.CellSize() < minCellSizeMeters {
		t.Errorf("cell size %v below minimum %v", n.CellSize(), minCellSizeMeters)
	}

	// The refused zoom must not have mutated the scale.
	before := n.CellSize()
	if n.ZoomAtCursor(0, 0, 0.8) {
		t.Error("zoom past the minimum bound succeeded")
	}
	if n.CellSize() != before {
		t.Errorf("failed zoom mutated cell size from %v to %v", before, n.CellSize())
	}

	// Zooming out hits the maximum the same way.
	for i := 0; i < 100; i++ {
		if !n.ZoomAtCursor(0, 0, 1.25) {
			break
		}
	}
	if n.CellSize() > maxCellSizeMeters {
		t.Errorf("cell size %v above maximum %v", n.CellSize(), maxCellSizeMeters)
	}
}

func TestZoomRerasterizesHeldFeatures(t *testing.T) {
	street := eastWestStreet("Main St", 40.0, -73.0, 200.0)
	n := buildNetwork(t, FeatureSet{Streets: []geo.Street{street}}, 40.0, -73.0)

	if !n.ZoomAtCursor(20, 20, 0.8) {
		t.Fatal("zoom failed")
	}

	// The street still rasterizes through the center row after zoom.
	row := n.GridHeight() / 2
	found := false
	for x := 0; x < n.GridWidth(); x++ {
		if n.CellAt(x, row).HasStreet {
			found = true
			break
		}
	}
	if !found {
		t.Error("street missing from center row after zoom")
	}
	if lat, lon := n.Center(); lat != 40.0 || lon != -73.0 {
		t.Errorf("zoom moved the center to (%v,%v)", lat, lon)
	}
}

func TestGridToLatLonRoundTrip(t *testing.T) {
	n := buildNetwork(t, FeatureSet{}, 40.0, -73.0)

	// The viewport center cell maps close to the geographic center.
	lat, lon := n.GridToLatLon(20, 20)
	if geo.FlatDistanceMeters(40.0, -73.0, lat, lon) > n.CellSize() {
		t.Errorf("center cell maps to (%v,%v), more than one cell from the center", lat, lon)
	}

	// Rebuilding at the cursor target puts that geography at the center.
	lat, lon = n.GridToLatLon(30, 10)
	if err := n.RebuildGrid(lat, lon); err != nil {
		t.Fatalf("RebuildGrid: %v", err)
	}
	gotLat, gotLon := n.Center()
	if gotLat != lat || gotLon != lon {
		t.Errorf("recentered at (%v,%v), want (%v,%v)", gotLat, gotLon, lat, lon)
	}
}

func TestBuildGridRejectsMalformedGeometry(t *testing.T) {
	n := NewStreetNetwork(geo.DefaultViewportConfig())
	n.SetFeatures(FeatureSet{Streets: []geo.Street{{
		Name:     "Broken St",
		Geometry: orb.LineString{{-73.0, 40.0}, {-73.0, math.NaN()}},
	}}})

	if err := n.BuildGrid(40.0, -73.0); err == nil {
		t.Fatal("BuildGrid accepted a NaN vertex")
	}

	// Prior state intact: no grid exists, queries return the sentinel.
	if got := n.CellDetails(0, 0); got != "Invalid position" {
		t.Errorf("details after failed build = %q, want %q", got, "Invalid position")
	}

	if err := n.BuildGrid(91.0, 0.0); err == nil {
		t.Error("BuildGrid accepted an out-of-range center")
	}
}

func TestRebuildPreservesFailedState(t *testing.T) {
	street := eastWestStreet("Main St", 40.0, -73.0, 50.0)
	n := buildNetwork(t, FeatureSet{Streets: []geo.Street{street}}, 40.0, -73.0)

	if err := n.RebuildGrid(100.0, 0.0); err == nil {
		t.Fatal("RebuildGrid accepted an invalid center")
	}
	// The previously built grid still answers queries.
	if !strings.Contains(n.CellDetails(20, n.GridHeight()/2), "Main St") {
		t.Error("failed rebuild destroyed the prior grid")
	}
}

func TestRequiredRadiusTracksZoom(t *testing.T) {
	n := buildNetwork(t, FeatureSet{}, 40.0, -73.0)
	before := n.RequiredRadius()
	if before != 849 {
		t.Errorf("default required radius = %d, want 849", before)
	}
	if !n.ZoomAtCursor(0, 0, 1.25) {
		t.Fatal("zoom out failed")
	}
	if after := n.RequiredRadius(); after <= before {
		t.Errorf("required radius %d after zoom out, want > %d", after, before)
	}
}

func TestLinePoints(t *testing.T) {
	// Degenerate case: identical endpoints yield exactly one point.
	if pts := linePoints(3, 4, 3, 4); len(pts) != 1 || pts[0] != [2]int{3, 4} {
		t.Errorf("degenerate line = %v, want [[3 4]]", pts)
	}

	// Horizontal line visits every cell.
	pts := linePoints(0, 0, 4, 0)
	if len(pts) != 5 {
		t.Fatalf("horizontal line has %d points, want 5", len(pts))
	}
	for i, pt := range pts {
		if pt != [2]int{i, 0} {
			t.Errorf("point %d = %v, want [%d 0]", i, pt, i)
		}
	}

	// Diagonal line steps max(|dx|,|dy|) times.
	pts = linePoints(0, 0, 3, 3)
	if len(pts) != 4 {
		t.Errorf("diagonal line has %d points, want 4", len(pts))
	}
}

func TestIntersectionMarkerOnStreet(t *testing.T) {
	street := eastWestStreet("Main St", 40.0, -73.0, 50.0)
	n := buildNetwork(t, FeatureSet{
		Streets:       []geo.Street{street},
		Intersections: []geo.Intersection{{Location: orb.Point{-73.0, 40.0}}},
	}, 40.0, -73.0)

	row := n.GridHeight() / 2
	foundMarker := false
	for x := 0; x < n.GridWidth(); x++ {
		cell := n.CellAt(x, row)
		if cell.IsIntersection {
			foundMarker = true
			if cell.PriorityChar() != CharIntersection {
				t.Errorf("intersection-on-street char = %q, want %q", cell.PriorityChar(), CharIntersection)
			}
			if !strings.HasPrefix(n.CellDetails(x, row), "Intersection - ") {
				t.Errorf("details %q do not lead with the intersection marker", n.CellDetails(x, row))
			}
		}
	}
	if !foundMarker {
		t.Error("intersection at the center never marked a cell")
	}
}
