package mapping

// Display characters in priority order. A cell's glyph is always derived
// fresh from its flags, never stored, so it cannot go stale.
const (
	CharIntersection = '+'
	CharStreet       = '.'
	CharPath         = '='
	CharBuilding     = '#'
	CharEmpty        = ' '
)

// BuildingInfo is a (name, address) pair attached to a cell. Address may be
// empty when the source building only carried a name.
type BuildingInfo struct {
	Name    string
	Address string
}

// GridCell is one cell of the extended grid. Cells are created empty when
// the grid is built and mutated only during rasterization; the whole grid
// is replaced on rebuild, zoom, and recenter.
type GridCell struct {
	HasStreet      bool
	StreetNames    []string
	HasPath        bool
	PathNames      []string
	HasBuilding    bool
	Buildings      []BuildingInfo
	IsIntersection bool
}

// PriorityChar picks the display character under the fixed precedence
// intersection > street > path > building > empty.
func (c *GridCell) PriorityChar() rune {
	switch {
	case c.IsIntersection:
		return CharIntersection
	case c.HasStreet:
		return CharStreet
	case c.HasPath:
		return CharPath
	case c.HasBuilding:
		return CharBuilding
	default:
		return CharEmpty
	}
}

// Empty reports whether no feature occupies the cell. An intersection
// marker alone does not count: it only decorates street cells.
func (c *GridCell) Empty() bool {
	return !c.HasStreet && !c.HasPath && !c.HasBuilding
}

// markStreet flags the cell and records the street name in first-seen order.
func (c *GridCell) markStreet(name string) {
	c.HasStreet = true
	for _, existing := range c.StreetNames {
		if existing == name {
			return
		}
	}
	c.StreetNames = append(c.StreetNames, name)
}

// markPath flags the cell and records the path name in first-seen order.
func (c *GridCell) markPath(name string) {
	c.HasPath = true
	for _, existing := range c.PathNames {
		if existing == name {
			return
		}
	}
	c.PathNames = append(c.PathNames, name)
}

// markBuilding flags the cell and records the building, de-duplicated by
// exact (name, address) equality.
func (c *GridCell) markBuilding(info BuildingInfo) {
	c.HasBuilding = true
	for _, existing := range c.Buildings {
		if existing == info {
			return
		}
	}
	c.Buildings = append(c.Buildings, info)
}
