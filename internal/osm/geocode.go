package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"streetgrid/internal/geo"
)

// DefaultNominatimURL is the public Nominatim geocoding endpoint.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// Geocoder resolves free-form address queries through Nominatim.
type Geocoder struct {
	baseURL string
	client  *http.Client
}

// NewGeocoder creates a geocoder for the given endpoint. An empty endpoint
// selects the public default.
func NewGeocoder(baseURL string) *Geocoder {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	return &Geocoder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Nominatim returns lat/lon as JSON strings.
type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	PlaceID     int64  `json:"place_id"`
}

// Search returns up to limit address matches for the query.
func (g *Geocoder) Search(ctx context.Context, query string, limit int) ([]geo.Address, error) {
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{
		"q":              {query},
		"format":         {"json"},
		"limit":          {strconv.Itoa(limit)},
		"addressdetails": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned status %s", resp.Status)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	addresses := make([]geo.Address, 0, len(results))
	for _, r := range results {
		lat, err := strconv.ParseFloat(r.Lat, 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(r.Lon, 64)
		if err != nil {
			continue
		}
		addresses = append(addresses, geo.Address{
			DisplayName: r.DisplayName,
			Lat:         lat,
			Lon:         lon,
			PlaceID:     r.PlaceID,
		})
	}
	return addresses, nil
}
