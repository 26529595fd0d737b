package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"streetgrid/internal/debug"
	"streetgrid/internal/geo"
)

// DefaultOverpassURL is the public Overpass API interpreter endpoint.
const DefaultOverpassURL = "https://overpass-api.de/api/interpreter"

const userAgent = "streetgrid/1.0 (accessible street maps)"

// OverpassClient fetches street-level features from the Overpass API.
// It satisfies mapping.FeatureProvider.
type OverpassClient struct {
	baseURL string
	client  *http.Client
}

// NewOverpassClient creates a client for the given interpreter endpoint.
// An empty endpoint selects the public default.
func NewOverpassClient(baseURL string) *OverpassClient {
	if baseURL == "" {
		baseURL = DefaultOverpassURL
	}
	return &OverpassClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type overpassCoord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type overpassElement struct {
	Type     string            `json:"type"`
	Lat      float64           `json:"lat"`
	Lon      float64           `json:"lon"`
	Tags     map[string]string `json:"tags"`
	Geometry []overpassCoord   `json:"geometry"`
	Center   *overpassCoord    `json:"center"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

func (c *OverpassClient) query(ctx context.Context, q string) (*overpassResponse, error) {
	form := url.Values{"data": {q}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass returned status %s", resp.Status)
	}

	var parsed overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode overpass response: %w", err)
	}
	return &parsed, nil
}

// StreetsAround returns named road ways within radius meters of the center.
func (c *OverpassClient) StreetsAround(ctx context.Context, lat, lon float64, radius int) ([]geo.Street, error) {
	q := fmt.Sprintf(`
[out:json][timeout:25];
(
  way["highway"~"^(primary|secondary|tertiary|residential|unclassified|service)$"]
     (around:%d,%f,%f);
);
out geom;`, radius, lat, lon)

	resp, err := c.query(ctx, q)
	if err != nil {
		return nil, err
	}

	streets := make([]geo.Street, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		if el.Type != "way" || len(el.Geometry) == 0 {
			continue
		}
		streets = append(streets, geo.Street{
			Name:     tagOr(el.Tags, "name", geo.UnnamedStreet),
			Kind:     tagOr(el.Tags, "highway", "unknown"),
			Geometry: toLineString(el.Geometry),
		})
	}
	debug.Log("overpass: %d streets within %dm of %.5f,%.5f", len(streets), radius, lat, lon)
	return streets, nil
}

// IntersectionsAround returns signal and crossing nodes within the radius.
func (c *OverpassClient) IntersectionsAround(ctx context.Context, lat, lon float64, radius int) ([]geo.Intersection, error) {
	q := fmt.Sprintf(`
[out:json][timeout:25];
(
  node["highway"~"^(traffic_signals|crossing)$"]
      (around:%d,%f,%f);
);
out;`, radius, lat, lon)

	resp, err := c.query(ctx, q)
	if err != nil {
		return nil, err
	}

	intersections := make([]geo.Intersection, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		if el.Type != "node" {
			continue
		}
		intersections = append(intersections, geo.Intersection{
			Location: orb.Point{el.Lon, el.Lat},
		})
	}
	return intersections, nil
}

// PedestrianPathsAround returns walkable ways within the radius.
func (c *OverpassClient) PedestrianPathsAround(ctx context.Context, lat, lon float64, radius int) ([]geo.PedestrianPath, error) {
	q := fmt.Sprintf(`
[out:json][timeout:25];
(
  way["highway"~"^(footway|path|pedestrian|steps)$"]
     (around:%d,%f,%f);
);
out geom;`, radius, lat, lon)

	resp, err := c.query(ctx, q)
	if err != nil {
		return nil, err
	}

	paths := make([]geo.PedestrianPath, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		if el.Type != "way" || len(el.Geometry) == 0 {
			continue
		}
		paths = append(paths, geo.PedestrianPath{
			Name:     tagOr(el.Tags, "name", geo.UnnamedPath),
			Kind:     tagOr(el.Tags, "highway", "unknown"),
			Geometry: toLineString(el.Geometry),
		})
	}
	return paths, nil
}

// BuildingsAround returns addressed nodes, ways, and relations within the
// radius, collapsed to their center points.
func (c *OverpassClient) BuildingsAround(ctx context.Context, lat, lon float64, radius int) ([]geo.Building, error) {
	q := fmt.Sprintf(`
[out:json][timeout:25];
(
  node["addr:housenumber"]
      (around:%d,%f,%f);
  way["addr:housenumber"]
     (around:%d,%f,%f);
  relation["addr:housenumber"]
     (around:%d,%f,%f);
);
out center;`, radius, lat, lon, radius, lat, lon, radius, lat, lon)

	resp, err := c.query(ctx, q)
	if err != nil {
		return nil, err
	}

	buildings := make([]geo.Building, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		var location orb.Point
		switch {
		case el.Type == "node":
			location = orb.Point{el.Lon, el.Lat}
		case el.Center != nil:
			location = orb.Point{el.Center.Lon, el.Center.Lat}
		default:
			continue
		}

		var addrParts []string
		if v := el.Tags["addr:housenumber"]; v != "" {
			addrParts = append(addrParts, v)
		}
		if v := el.Tags["addr:street"]; v != "" {
			addrParts = append(addrParts, v)
		}
		address := strings.Join(addrParts, " ")

		name := el.Tags["name"]
		if name == "" {
			name = address
		}
		if name == "" {
			name = geo.UnnamedBuilding
		}

		buildings = append(buildings, geo.Building{
			Name:     name,
			Location: location,
			Address:  address,
		})
	}
	return buildings, nil
}

func tagOr(tags map[string]string, key, fallback string) string {
	if v := tags[key]; v != "" {
		return v
	}
	return fallback
}

func toLineString(coords []overpassCoord) orb.LineString {
	line := make(orb.LineString, len(coords))
	for i, c := range coords {
		line[i] = orb.Point{c.Lon, c.Lat}
	}
	return line
}
