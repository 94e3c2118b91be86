package geocode

import (
	"context"
	"log"
	"strings"

	"github.com/roadsense/roadsense-backend-go/internal/models"
)

// Enrichment holds the location-derived fields for a detection record.
// Zero values are the neutral defaults applied when geocoding is
// unavailable.
type Enrichment struct {
	StreetName *string
	Area       *string
	RoadType   string
}

// defaults returns the neutral enrichment used on any failure
func defaults() Enrichment {
	return Enrichment{RoadType: models.RoadTypeResidential}
}

// addressParts is the typed view extracted from a raw component list
type addressParts struct {
	Route        string
	Neighborhood string
	Sublocality  string
	Locality     string
}

// extractParts maps a raw component list to typed fields by component type
func extractParts(components []AddressComponent) addressParts {
	var parts addressParts
	for _, comp := range components {
		for _, typ := range comp.Types {
			switch typ {
			case "route":
				if parts.Route == "" {
					parts.Route = comp.LongName
				}
			case "neighborhood":
				if parts.Neighborhood == "" {
					parts.Neighborhood = comp.LongName
				}
			case "sublocality":
				if parts.Sublocality == "" {
					parts.Sublocality = comp.LongName
				}
			case "locality":
				if parts.Locality == "" {
					parts.Locality = comp.LongName
				}
			}
		}
	}
	return parts
}

// area returns the first present of neighborhood, sublocality, locality
func (p addressParts) area() string {
	switch {
	case p.Neighborhood != "":
		return p.Neighborhood
	case p.Sublocality != "":
		return p.Sublocality
	default:
		return p.Locality
	}
}

// InferRoadType classifies a street name by keyword, case-insensitive
func InferRoadType(streetName string) string {
	name := strings.ToLower(streetName)

	for _, kw := range []string{"highway", "hwy", "freeway"} {
		if strings.Contains(name, kw) {
			return models.RoadTypeHighway
		}
	}
	for _, kw := range []string{"avenue", "boulevard", "blvd", "parkway"} {
		if strings.Contains(name, kw) {
			return models.RoadTypeArterial
		}
	}
	return models.RoadTypeResidential
}

// Enricher resolves capture coordinates to street/area/road-type fields
type Enricher struct {
	geocoder Geocoder
	enabled  bool
}

// NewEnricher creates an enricher; a nil geocoder or enabled=false makes
// every Enrich call return defaults without a network round trip.
func NewEnricher(geocoder Geocoder, enabled bool) *Enricher {
	return &Enricher{geocoder: geocoder, enabled: enabled}
}

// Enrich reverse-geocodes the point. It never returns an error: disabled
// config, provider failures, and empty results all degrade to the
// neutral defaults so record creation is never blocked.
func (e *Enricher) Enrich(ctx context.Context, point models.GeoPoint) Enrichment {
	if !e.enabled || e.geocoder == nil {
		return defaults()
	}

	components, err := e.geocoder.ReverseGeocode(ctx, point.Lat, point.Lng)
	if err != nil {
		log.Printf("[Geocode] degraded to defaults for (%f, %f): %v", point.Lat, point.Lng, err)
		return defaults()
	}

	parts := extractParts(components)
	enrichment := defaults()

	if parts.Route != "" {
		street := parts.Route
		enrichment.StreetName = &street
		enrichment.RoadType = InferRoadType(street)
	}
	if area := parts.area(); area != "" {
		a := area
		enrichment.Area = &a
	}

	return enrichment
}
