// Package geocode enriches detection records with street, area, and
// road-type information from a reverse-geocoding provider. Enrichment is
// best-effort: every provider failure degrades to neutral defaults.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrNoResults is returned when the provider has no address for the point
var ErrNoResults = errors.New("no geocoding results")

// AddressComponent is one labeled component of a reverse-geocoded address
type AddressComponent struct {
	LongName string   `json:"long_name"`
	Types    []string `json:"types"`
}

// Geocoder is the reverse-geocoding capability the enricher consumes
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) ([]AddressComponent, error)
}

// HTTPGeocoder calls a Google-style reverse-geocoding API
type HTTPGeocoder struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPGeocoder creates a geocoder client with a bounded request timeout
func NewHTTPGeocoder(baseURL, apiKey string, timeout time.Duration) *HTTPGeocoder {
	return &HTTPGeocoder{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		AddressComponents []AddressComponent `json:"address_components"`
	} `json:"results"`
}

// ReverseGeocode resolves (lat, lng) to address components. The first
// result's components are returned; an empty result set is ErrNoResults.
func (g *HTTPGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) ([]AddressComponent, error) {
	q := url.Values{}
	q.Set("latlng", fmt.Sprintf("%f,%f", lat, lng))
	if g.apiKey != "" {
		q.Set("key", g.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocode request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode request failed: status %d", resp.StatusCode)
	}

	var parsed geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}

	if parsed.Status == "ZERO_RESULTS" || len(parsed.Results) == 0 {
		return nil, ErrNoResults
	}
	if parsed.Status != "" && parsed.Status != "OK" {
		return nil, fmt.Errorf("geocode provider status: %s", parsed.Status)
	}

	return parsed.Results[0].AddressComponents, nil
}
