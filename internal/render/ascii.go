package render

import (
	"fmt"
	"sort"
	"strings"

	"streetgrid/internal/geo"
	"streetgrid/internal/mapping"
)

// Network is the read-only view of a street network the renderer needs.
// *mapping.StreetNetwork satisfies it.
type Network interface {
	GridWidth() int
	GridHeight() int
	CellAt(gridX, gridY int) *mapping.GridCell
	Streets() []geo.Street
	PedestrianPaths() []geo.PedestrianPath
	Buildings() []geo.Building
}

// NoMapData is the single-line output produced when the network has no
// viewport to render into.
const NoMapData = "No map data available"

// ASCIIRenderer turns the visible grid into character lines.
type ASCIIRenderer struct{}

// NewASCIIRenderer creates a renderer.
func NewASCIIRenderer() *ASCIIRenderer {
	return &ASCIIRenderer{}
}

// RenderMap renders the visible viewport row by row using each cell's
// priority character. Trailing spaces are stripped per line and trailing
// all-blank lines are dropped.
func (r *ASCIIRenderer) RenderMap(n Network) []string {
	if n == nil || n.GridWidth() == 0 || n.GridHeight() == 0 {
		return []string{NoMapData}
	}

	lines := make([]string, 0, n.GridHeight())
	var row strings.Builder

	for y := 0; y < n.GridHeight(); y++ {
		row.Reset()
		for x := 0; x < n.GridWidth(); x++ {
			cell := n.CellAt(x, y)
			if cell == nil {
				row.WriteRune(mapping.CharEmpty)
				continue
			}
			row.WriteRune(cell.PriorityChar())
		}
		lines = append(lines, strings.TrimRight(row.String(), " "))
	}

	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}

// RenderWithCoordinates renders the map with a column ruler on top and row
// numbers every tenth line, for debugging grid placement.
func (r *ASCIIRenderer) RenderWithCoordinates(n Network) []string {
	lines := r.RenderMap(n)
	if len(lines) == 0 {
		return lines
	}

	maxWidth := 0
	for _, line := range lines {
		if len(line) > maxWidth {
			maxWidth = len(line)
		}
	}

	var ruler strings.Builder
	for x := 0; x < maxWidth; x += 10 {
		mark := fmt.Sprintf("%-10d", x)
		ruler.WriteString(mark)
	}
	out := make([]string, 0, len(lines)+1)
	top := ruler.String()
	if len(top) > maxWidth {
		top = top[:maxWidth]
	}
	out = append(out, top)

	for y, line := range lines {
		prefix := "    "
		if y%10 == 0 {
			prefix = fmt.Sprintf("%3d:", y)
		}
		out = append(out, prefix+line)
	}

	return out
}

// GridFormatter produces accessible text from rendered output.
type GridFormatter struct{}

// FormatForScreenReader numbers each rendered line so a screen-reader user
// can navigate the map by row.
func (GridFormatter) FormatForScreenReader(lines []string) string {
	if len(lines) == 0 {
		return "Empty map"
	}

	formatted := make([]string, len(lines))
	for i, line := range lines {
		formatted[i] = fmt.Sprintf("Line %d: %s", i+1, line)
	}
	return strings.Join(formatted, "\n")
}

// MapSummary produces one sentence describing the loaded map: feature
// counts, up to five distinct named streets, and the grid dimensions.
func (GridFormatter) MapSummary(n Network) string {
	var parts []string

	if count := len(n.Streets()); count > 0 {
		parts = append(parts, fmt.Sprintf("%d street(s)", count))

		seen := make(map[string]bool)
		var names []string
		for _, street := range n.Streets() {
			if street.Name == "" || street.Name == geo.UnnamedStreet || seen[street.Name] {
				continue
			}
			seen[street.Name] = true
			names = append(names, street.Name)
		}
		if len(names) > 0 {
			if len(names) <= 5 {
				sort.Strings(names)
				parts = append(parts, "Streets: "+strings.Join(names, ", "))
			} else {
				parts = append(parts, fmt.Sprintf("Including %d named streets", len(names)))
			}
		}
	}

	if count := len(n.PedestrianPaths()); count > 0 {
		parts = append(parts, fmt.Sprintf("%d pedestrian path(s)", count))
	}

	if count := len(n.Buildings()); count > 0 {
		parts = append(parts, fmt.Sprintf("%d building(s)", count))
	}

	if len(parts) == 0 {
		return "No map data found in this area."
	}

	if n.GridWidth() > 0 && n.GridHeight() > 0 {
		parts = append(parts, fmt.Sprintf("Map size: %d by %d cells", n.GridWidth(), n.GridHeight()))
	}

	return "Map contains " + strings.Join(parts, ", ") + "."
}
