package mapping

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	"streetgrid/internal/geo"
)

// Zoom clamps on the cell size. At the default 40x40 viewport this spans
// an 80m close-up to a 4km overview.
const (
	minCellSizeMeters = 2.0
	maxCellSizeMeters = 100.0
)

// StreetNetwork owns one loaded map session: the feature lists, the dense
// extended cell grid, and the projection/viewport state derived from the
// current center and zoom. It is single-threaded: callers must marshal all
// mutations onto one goroutine.
type StreetNetwork struct {
	streets       []geo.Street
	intersections []geo.Intersection
	paths         []geo.PedestrianPath
	buildings     []geo.Building

	config     geo.ViewportConfig
	calculator *geo.ViewportCalculator
	projection *geo.LocalProjection
	viewport   *geo.ViewportGrid
	cache      *MapDataCache

	// Dense extended grid, row-major (y*extendedWidth + x). Nil until the
	// first BuildGrid.
	cells []GridCell

	centerLat float64
	centerLon float64
}

// NewStreetNetwork creates an empty network for the given viewport.
func NewStreetNetwork(config geo.ViewportConfig) *StreetNetwork {
	return &StreetNetwork{
		config:     config,
		calculator: geo.NewViewportCalculator(config),
		cache:      NewMapDataCache(),
	}
}

// SetFeatures replaces all four feature lists as a unit.
func (n *StreetNetwork) SetFeatures(set FeatureSet) {
	n.streets = set.Streets
	n.intersections = set.Intersections
	n.paths = set.Paths
	n.buildings = set.Buildings
}

// Load stores a fetched feature set in the network and its cache, then
// builds the grid at the fetch center.
func (n *StreetNetwork) Load(set FeatureSet, centerLat, centerLon float64, fetchRadius int) error {
	n.SetFeatures(set)
	if err := n.BuildGrid(centerLat, centerLon); err != nil {
		return err
	}
	n.cache.SetData(set, centerLat, centerLon, fetchRadius)
	return nil
}

// BuildGrid (re)creates the projection and viewport grid for the given
// center, allocates a dense extended grid of empty cells, and rasterizes
// the held features in fixed order: streets, pedestrian paths, buildings,
// intersections. Later passes only add flags to cells, so the per-cell
// display character is independent of insertion order; name lists keep
// first-seen order. Returns an error only for structurally invalid input
// geometry, in which case prior state is left intact.
func (n *StreetNetwork) BuildGrid(centerLat, centerLon float64) error {
	if err := n.validateFeatures(centerLat, centerLon); err != nil {
		return err
	}

	n.centerLat = centerLat
	n.centerLon = centerLon
	n.projection = geo.NewLocalProjection(centerLat, centerLon)
	n.viewport = geo.NewViewportGrid(n.config)
	n.cells = make([]GridCell, n.viewport.ExtendedWidth()*n.viewport.ExtendedHeight())

	n.rasterizeStreets()
	n.rasterizePaths()
	n.rasterizeBuildings()
	n.markIntersections()

	return nil
}

// RebuildGrid recenters the map on a new point using the already-held
// feature lists, without refetching.
func (n *StreetNetwork) RebuildGrid(newCenterLat, newCenterLon float64) error {
	return n.BuildGrid(newCenterLat, newCenterLon)
}

// ZoomAtCursor rescales the grid by multiplying the cell size: factors
// below 1 zoom in, above 1 zoom out. Fails without mutating when the result
// would leave the clamp range. The cursor coordinates are accepted for a
// future zoom-toward-cursor mode; zoom is currently center-preserving.
func (n *StreetNetwork) ZoomAtCursor(gridX, gridY int, zoomFactor float64) bool {
	_ = gridX
	_ = gridY

	newSize := n.config.CellSizeMeters * zoomFactor
	if newSize < minCellSizeMeters || newSize > maxCellSizeMeters {
		return false
	}

	oldConfig := n.config
	n.config.CellSizeMeters = newSize
	n.calculator = geo.NewViewportCalculator(n.config)

	if err := n.BuildGrid(n.centerLat, n.centerLon); err != nil {
		// Features were validated on the previous build; restore and refuse.
		n.config = oldConfig
		n.calculator = geo.NewViewportCalculator(oldConfig)
		return false
	}

	return true
}

// GridToLatLon translates a viewport cell into the geographic position of
// its center, for use as a recenter target.
func (n *StreetNetwork) GridToLatLon(gridX, gridY int) (lat, lon float64) {
	if n.projection == nil || n.viewport == nil {
		return n.centerLat, n.centerLon
	}

	xMeters, yMeters := n.viewport.ViewportToMeters(gridX, gridY)
	return n.projection.MetersToLatLon(xMeters, yMeters)
}

// CellAt returns the cell backing a viewport position, or nil when the
// position is out of range or no grid has been built.
func (n *StreetNetwork) CellAt(gridX, gridY int) *GridCell {
	if n.viewport == nil || n.cells == nil {
		return nil
	}
	if !n.viewport.ValidViewport(gridX, gridY) {
		return nil
	}

	extX, extY := n.viewport.ViewportToExtended(gridX, gridY)
	if !n.viewport.ValidExtended(extX, extY) {
		return nil
	}
	return &n.cells[extY*n.viewport.ExtendedWidth()+extX]
}

// CellDetails describes a viewport cell for accessible output, in fixed
// order: intersection marker, streets, pedestrian paths, buildings. The
// "Invalid position" and "Empty area" sentinels tell the caller there is
// nothing to announce.
func (n *StreetNetwork) CellDetails(gridX, gridY int) string {
	cell := n.CellAt(gridX, gridY)
	if cell == nil {
		return "Invalid position"
	}
	if cell.Empty() {
		return "Empty area"
	}

	var details []string

	if cell.IsIntersection {
		details = append(details, "Intersection")
	}

	if len(cell.StreetNames) == 1 {
		details = append(details, "Street: "+cell.StreetNames[0])
	} else if len(cell.StreetNames) > 1 {
		details = append(details, "Streets: "+strings.Join(cell.StreetNames, ", "))
	}

	if len(cell.PathNames) > 0 {
		// Drop the generic sentinel when named paths share the cell.
		var named []string
		for _, name := range cell.PathNames {
			if name != geo.UnnamedPath {
				named = append(named, name)
			}
		}
		switch {
		case len(named) == 1:
			details = append(details, "Pedestrian path: "+named[0])
		case len(named) > 1:
			details = append(details, "Pedestrian paths: "+strings.Join(named, ", "))
		default:
			details = append(details, "Pedestrian path")
		}
	}

	for _, b := range cell.Buildings {
		switch {
		case b.Address != "":
			details = append(details, "Building: "+b.Address)
		case b.Name != "" && b.Name != geo.UnnamedBuilding:
			details = append(details, "Building: "+b.Name)
		default:
			details = append(details, "Building")
		}
	}

	if len(details) == 0 {
		return "Location"
	}
	return strings.Join(details, " - ")
}

// RequiredRadius returns the fetch radius in meters guaranteeing full
// viewport coverage at the current zoom.
func (n *StreetNetwork) RequiredRadius() int {
	return n.calculator.RequiredRadius()
}

// Cache returns the network's map data cache.
func (n *StreetNetwork) Cache() *MapDataCache {
	return n.cache
}

// CellSize returns the current zoom level as meters per cell.
func (n *StreetNetwork) CellSize() float64 {
	return n.config.CellSizeMeters
}

// GridWidth returns the visible viewport width in cells.
func (n *StreetNetwork) GridWidth() int {
	return n.config.Width
}

// GridHeight returns the visible viewport height in cells.
func (n *StreetNetwork) GridHeight() int {
	return n.config.Height
}

// Center returns the geographic center of the current grid.
func (n *StreetNetwork) Center() (lat, lon float64) {
	return n.centerLat, n.centerLon
}

// Streets returns the held street list.
func (n *StreetNetwork) Streets() []geo.Street { return n.streets }

// PedestrianPaths returns the held pedestrian path list.
func (n *StreetNetwork) PedestrianPaths() []geo.PedestrianPath { return n.paths }

// Buildings returns the held building list.
func (n *StreetNetwork) Buildings() []geo.Building { return n.buildings }

// Intersections returns the held intersection list.
func (n *StreetNetwork) Intersections() []geo.Intersection { return n.intersections }

// validateFeatures rejects malformed geometry before any state is touched.
func (n *StreetNetwork) validateFeatures(centerLat, centerLon float64) error {
	if !geo.ValidLatLon(centerLat, centerLon) {
		return fmt.Errorf("invalid map center (%v, %v)", centerLat, centerLon)
	}
	for _, s := range n.streets {
		if err := validLineString(s.Geometry); err != nil {
			return fmt.Errorf("street %q: %w", s.Name, err)
		}
	}
	for _, p := range n.paths {
		if err := validLineString(p.Geometry); err != nil {
			return fmt.Errorf("pedestrian path %q: %w", p.Name, err)
		}
	}
	for _, b := range n.buildings {
		if !geo.ValidLatLon(b.Location.Lat(), b.Location.Lon()) {
			return fmt.Errorf("building %q: invalid location (%v, %v)",
				b.Name, b.Location.Lat(), b.Location.Lon())
		}
	}
	for i, x := range n.intersections {
		if !geo.ValidLatLon(x.Location.Lat(), x.Location.Lon()) {
			return fmt.Errorf("intersection %d: invalid location (%v, %v)",
				i, x.Location.Lat(), x.Location.Lon())
		}
	}
	return nil
}

func validLineString(line orb.LineString) error {
	for i, pt := range line {
		if !geo.ValidLatLon(pt.Lat(), pt.Lon()) {
			return fmt.Errorf("invalid vertex %d (%v, %v)", i, pt.Lat(), pt.Lon())
		}
	}
	return nil
}

// rasterizePolyline projects each vertex, draws a line between every
// consecutive pair, and invokes mark on every in-bounds cell visited.
func (n *StreetNetwork) rasterizePolyline(line orb.LineString, mark func(*GridCell)) {
	cells := make([][2]int, len(line))
	for i, pt := range line {
		x, y := n.projection.ProjectToMeters(pt.Lat(), pt.Lon())
		gx, gy := n.viewport.MetersToExtended(x, y)
		cells[i] = [2]int{gx, gy}
	}

	if len(cells) == 1 {
		n.markExtended(cells[0][0], cells[0][1], mark)
		return
	}

	for i := 0; i < len(cells)-1; i++ {
		for _, pt := range linePoints(cells[i][0], cells[i][1], cells[i+1][0], cells[i+1][1]) {
			n.markExtended(pt[0], pt[1], mark)
		}
	}
}

func (n *StreetNetwork) markExtended(gx, gy int, mark func(*GridCell)) {
	if n.viewport.ValidExtended(gx, gy) {
		mark(&n.cells[gy*n.viewport.ExtendedWidth()+gx])
	}
}

func (n *StreetNetwork) rasterizeStreets() {
	for _, street := range n.streets {
		name := street.Name
		n.rasterizePolyline(street.Geometry, func(c *GridCell) {
			c.markStreet(name)
		})
	}
}

func (n *StreetNetwork) rasterizePaths() {
	for _, path := range n.paths {
		name := path.Name
		n.rasterizePolyline(path.Geometry, func(c *GridCell) {
			c.markPath(name)
		})
	}
}

func (n *StreetNetwork) rasterizeBuildings() {
	for _, building := range n.buildings {
		x, y := n.projection.ProjectToMeters(building.Location.Lat(), building.Location.Lon())
		gx, gy := n.viewport.MetersToExtended(x, y)
		info := BuildingInfo{Name: building.Name, Address: building.Address}
		n.markExtended(gx, gy, func(c *GridCell) {
			c.markBuilding(info)
		})
	}
}

func (n *StreetNetwork) markIntersections() {
	for _, intersection := range n.intersections {
		x, y := n.projection.ProjectToMeters(intersection.Location.Lat(), intersection.Location.Lon())
		gx, gy := n.viewport.MetersToExtended(x, y)
		n.markExtended(gx, gy, func(c *GridCell) {
			c.IsIntersection = true
		})
	}
}

// linePoints returns every integer cell visited along the segment using
// uniform parametric stepping with steps = max(|dx|,|dy|). An approximation
// of exact Bresenham: it may emit duplicates or slightly off-diagonal cells,
// which is fine because cells are flagged, not counted. Identical endpoints
// yield exactly one point.
func linePoints(x1, y1, x2, y2 int) [][2]int {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	steps := dx
	if dy > steps {
		steps = dy
	}
	if steps == 0 {
		return [][2]int{{x1, y1}}
	}

	xStep := float64(x2-x1) / float64(steps)
	yStep := float64(y2-y1) / float64(steps)

	points := make([][2]int, 0, steps+1)
	for i := 0; i <= steps; i++ {
		x := int(float64(x1) + float64(i)*xStep)
		y := int(float64(y1) + float64(i)*yStep)
		points = append(points, [2]int{x, y})
	}
	return points
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
