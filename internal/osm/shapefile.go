package osm

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"streetgrid/internal/debug"
	"streetgrid/internal/geo"
)

// ShapefileProvider serves features from local shapefile extracts instead of
// the network. It expects roads.shp, paths.shp, and buildings.shp in the data
// directory; intersections are not modeled in shapefile extracts and come
// back empty. Satisfies mapping.FeatureProvider.
type ShapefileProvider struct {
	dataDir string
}

// NewShapefileProvider creates a provider reading from dataDir.
func NewShapefileProvider(dataDir string) *ShapefileProvider {
	return &ShapefileProvider{dataDir: dataDir}
}

// StreetsAround loads roads.shp polylines with a vertex within the radius.
func (s *ShapefileProvider) StreetsAround(_ context.Context, lat, lon float64, radius int) ([]geo.Street, error) {
	lines, err := s.loadPolylines("roads.shp", lat, lon, radius)
	if err != nil {
		return nil, err
	}

	streets := make([]geo.Street, 0, len(lines))
	for _, l := range lines {
		name := l.name
		if name == "" {
			name = geo.UnnamedStreet
		}
		streets = append(streets, geo.Street{Name: name, Kind: l.kind, Geometry: l.geometry})
	}
	debug.Log("shapefile: %d streets within %dm of %.5f,%.5f", len(streets), radius, lat, lon)
	return streets, nil
}

// IntersectionsAround always returns an empty list: the extracts carry no
// crossing nodes.
func (s *ShapefileProvider) IntersectionsAround(_ context.Context, _, _ float64, _ int) ([]geo.Intersection, error) {
	return nil, nil
}

// PedestrianPathsAround loads paths.shp polylines with a vertex within the radius.
func (s *ShapefileProvider) PedestrianPathsAround(_ context.Context, lat, lon float64, radius int) ([]geo.PedestrianPath, error) {
	lines, err := s.loadPolylines("paths.shp", lat, lon, radius)
	if err != nil {
		return nil, err
	}

	paths := make([]geo.PedestrianPath, 0, len(lines))
	for _, l := range lines {
		name := l.name
		if name == "" {
			name = geo.UnnamedPath
		}
		paths = append(paths, geo.PedestrianPath{Name: name, Kind: l.kind, Geometry: l.geometry})
	}
	return paths, nil
}

// BuildingsAround loads buildings.shp features within the radius. Point
// shapes are used directly; polygons collapse to their bounding-box center.
func (s *ShapefileProvider) BuildingsAround(_ context.Context, lat, lon float64, radius int) ([]geo.Building, error) {
	path := filepath.Join(s.dataDir, "buildings.shp")
	reader, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer reader.Close()

	nameIdx := attributeIndex(reader, "NAME")
	addrIdx := attributeIndex(reader, "ADDRESS")

	var buildings []geo.Building
	for reader.Next() {
		n, p := reader.Shape()

		var bLat, bLon float64
		switch geom := p.(type) {
		case *shp.Point:
			bLat, bLon = geom.Y, geom.X
		case *shp.Polygon:
			box := geom.BBox()
			bLat = (box.MinY + box.MaxY) / 2
			bLon = (box.MinX + box.MaxX) / 2
		default:
			continue
		}

		if geo.FlatDistanceMeters(lat, lon, bLat, bLon) > float64(radius) {
			continue
		}

		name := readAttribute(reader, n, nameIdx)
		if name == "" {
			name = geo.UnnamedBuilding
		}
		buildings = append(buildings, geo.Building{
			Name:     name,
			Location: orb.Point{bLon, bLat},
			Address:  readAttribute(reader, n, addrIdx),
		})
	}

	return buildings, nil
}

type polyline struct {
	name     string
	kind     string
	geometry orb.LineString
}

func (s *ShapefileProvider) loadPolylines(file string, lat, lon float64, radius int) ([]polyline, error) {
	path := filepath.Join(s.dataDir, file)
	reader, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer reader.Close()

	nameIdx := attributeIndex(reader, "NAME")
	kindIdx := attributeIndex(reader, "TYPE")

	var lines []polyline
	for reader.Next() {
		n, p := reader.Shape()

		geom, ok := p.(*shp.PolyLine)
		if !ok || len(geom.Points) == 0 {
			continue
		}

		line := make(orb.LineString, len(geom.Points))
		inRange := false
		for i, point := range geom.Points {
			line[i] = orb.Point{point.X, point.Y}
			if !inRange && geo.FlatDistanceMeters(lat, lon, point.Y, point.X) <= float64(radius) {
				inRange = true
			}
		}
		if !inRange {
			continue
		}

		lines = append(lines, polyline{
			name:     readAttribute(reader, n, nameIdx),
			kind:     readAttribute(reader, n, kindIdx),
			geometry: line,
		})
	}

	return lines, nil
}

// attributeIndex finds a DBF field by name. Field names are fixed-width byte
// arrays padded with nulls.
func attributeIndex(reader *shp.Reader, name string) int {
	for i, field := range reader.Fields() {
		fieldName := strings.TrimRight(string(field.Name[:]), "\x00 ")
		if fieldName == name {
			return i
		}
	}
	return -1
}

func readAttribute(reader *shp.Reader, row, field int) string {
	if field < 0 {
		return ""
	}
	return strings.TrimSpace(reader.ReadAttribute(row, field))
}
