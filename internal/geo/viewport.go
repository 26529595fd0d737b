package geo

import (
	"math"
)

// extendedFactor is how much larger the backing grid is than the visible
// viewport in each axis. The extra ring lets the cursor pan and the map
// recenter without an immediate refetch.
const extendedFactor = 2

// ViewportConfig describes the visible character grid. Width and height are
// fixed for a session; CellSizeMeters is rewritten only by zoom operations.
type ViewportConfig struct {
	Width          int
	Height         int
	CellSizeMeters float64
	MarginFactor   float64
}

// DefaultViewportConfig returns the standard 40x40 viewport at 25 meters
// per cell with a 20% fetch margin.
func DefaultViewportConfig() ViewportConfig {
	return ViewportConfig{
		Width:          40,
		Height:         40,
		CellSizeMeters: 25.0,
		MarginFactor:   1.2,
	}
}

// ViewportCalculator derives fetch geometry from a viewport configuration.
type ViewportCalculator struct {
	config ViewportConfig
}

// NewViewportCalculator creates a calculator for the given configuration.
func NewViewportCalculator(config ViewportConfig) *ViewportCalculator {
	return &ViewportCalculator{config: config}
}

// RequiredRadius returns the smallest radius in meters that, after applying
// the margin factor, covers every corner of the viewport rectangle. The
// truncate-plus-one rounding guarantees strict coverage. This is the value
// handed to feature providers so nothing inside the viewport is missed.
func (c *ViewportCalculator) RequiredRadius() int {
	widthMeters := float64(c.config.Width) * c.config.CellSizeMeters
	heightMeters := float64(c.config.Height) * c.config.CellSizeMeters

	halfDiagonal := math.Sqrt(widthMeters*widthMeters/4 + heightMeters*heightMeters/4)

	return int(halfDiagonal*c.config.MarginFactor) + 1
}

// InViewport reports whether a planar coordinate (meters from center) falls
// inside the visible viewport rectangle.
func (c *ViewportCalculator) InViewport(xMeters, yMeters float64) bool {
	halfWidth := float64(c.config.Width) * c.config.CellSizeMeters / 2
	halfHeight := float64(c.config.Height) * c.config.CellSizeMeters / 2
	return xMeters >= -halfWidth && xMeters <= halfWidth &&
		yMeters >= -halfHeight && yMeters <= halfHeight
}

// ViewportGrid maps planar meter coordinates onto integer cell indices in
// two coordinate spaces: the visible viewport and the extended backing grid,
// with the viewport centered inside the extended grid by a fixed offset.
type ViewportGrid struct {
	config         ViewportConfig
	visibleWidth   int
	visibleHeight  int
	extendedWidth  int
	extendedHeight int
	offsetX        int
	offsetY        int
}

// NewViewportGrid creates the grid geometry for a configuration.
func NewViewportGrid(config ViewportConfig) *ViewportGrid {
	extWidth := config.Width * extendedFactor
	extHeight := config.Height * extendedFactor

	return &ViewportGrid{
		config:         config,
		visibleWidth:   config.Width,
		visibleHeight:  config.Height,
		extendedWidth:  extWidth,
		extendedHeight: extHeight,
		offsetX:        (extWidth - config.Width) / 2,
		offsetY:        (extHeight - config.Height) / 2,
	}
}

// MetersToExtended converts planar meters to extended grid coordinates.
// Y is inverted so north is up. No clamping: callers must check
// ValidExtended before indexing.
func (g *ViewportGrid) MetersToExtended(xMeters, yMeters float64) (int, int) {
	gridX := int(math.Floor(xMeters/g.config.CellSizeMeters + float64(g.extendedWidth)/2))
	gridY := int(math.Floor(-yMeters/g.config.CellSizeMeters + float64(g.extendedHeight)/2))
	return gridX, gridY
}

// ValidExtended reports whether a coordinate pair indexes the extended grid.
func (g *ViewportGrid) ValidExtended(gridX, gridY int) bool {
	return gridX >= 0 && gridX < g.extendedWidth && gridY >= 0 && gridY < g.extendedHeight
}

// ValidViewport reports whether a coordinate pair indexes the visible viewport.
func (g *ViewportGrid) ValidViewport(gridX, gridY int) bool {
	return gridX >= 0 && gridX < g.visibleWidth && gridY >= 0 && gridY < g.visibleHeight
}

// ExtendedToViewport converts extended coordinates to viewport coordinates.
// Returns (-1, -1) when the cell lies outside the visible window; that pair
// is an out-of-band marker, not an error.
func (g *ViewportGrid) ExtendedToViewport(extX, extY int) (int, int) {
	viewX := extX - g.offsetX
	viewY := extY - g.offsetY
	if !g.ValidViewport(viewX, viewY) {
		return -1, -1
	}
	return viewX, viewY
}

// ViewportToExtended converts viewport coordinates to extended coordinates.
func (g *ViewportGrid) ViewportToExtended(viewX, viewY int) (int, int) {
	return viewX + g.offsetX, viewY + g.offsetY
}

// ViewportToMeters returns the planar position of a viewport cell's center.
func (g *ViewportGrid) ViewportToMeters(viewX, viewY int) (xMeters, yMeters float64) {
	xMeters = (float64(viewX) + 0.5 - float64(g.visibleWidth)/2) * g.config.CellSizeMeters
	yMeters = -(float64(viewY) + 0.5 - float64(g.visibleHeight)/2) * g.config.CellSizeMeters
	return xMeters, yMeters
}

// ExtendedWidth returns the extended grid width in cells.
func (g *ViewportGrid) ExtendedWidth() int { return g.extendedWidth }

// ExtendedHeight returns the extended grid height in cells.
func (g *ViewportGrid) ExtendedHeight() int { return g.extendedHeight }

// VisibleWidth returns the viewport width in cells.
func (g *ViewportGrid) VisibleWidth() int { return g.visibleWidth }

// VisibleHeight returns the viewport height in cells.
func (g *ViewportGrid) VisibleHeight() int { return g.visibleHeight }
