package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/roadsense/roadsense-backend-go/internal/models"
)

type fakeGeocoder struct {
	components []AddressComponent
	err        error
}

func (f *fakeGeocoder) ReverseGeocode(_ context.Context, _, _ float64) ([]AddressComponent, error) {
	return f.components, f.err
}

func TestEnrichExtractsFields(t *testing.T) {
	geo := &fakeGeocoder{
		components: []AddressComponent{
			{LongName: "123", Types: []string{"street_number"}},
			{LongName: "Queen Street", Types: []string{"route"}},
			{LongName: "Downtown", Types: []string{"neighborhood", "political"}},
			{LongName: "Brampton", Types: []string{"locality", "political"}},
		},
	}
	e := NewEnricher(geo, true)

	got := e.Enrich(context.Background(), models.GeoPoint{Lat: 43.68, Lng: -79.76})

	if got.StreetName == nil || *got.StreetName != "Queen Street" {
		t.Errorf("street = %v, want Queen Street", got.StreetName)
	}
	if got.Area == nil || *got.Area != "Downtown" {
		t.Errorf("area = %v, want Downtown (neighborhood preferred over locality)", got.Area)
	}
	if got.RoadType != models.RoadTypeResidential {
		t.Errorf("road type = %q, want residential", got.RoadType)
	}
}

func TestEnrichAreaFallbackOrder(t *testing.T) {
	geo := &fakeGeocoder{
		components: []AddressComponent{
			{LongName: "Springdale", Types: []string{"sublocality"}},
			{LongName: "Brampton", Types: []string{"locality"}},
		},
	}
	e := NewEnricher(geo, true)

	got := e.Enrich(context.Background(), models.GeoPoint{})
	if got.Area == nil || *got.Area != "Springdale" {
		t.Errorf("area = %v, want sublocality before locality", got.Area)
	}
}

func TestEnrichFailureReturnsDefaults(t *testing.T) {
	cases := []struct {
		name string
		geo  Geocoder
	}{
		{"provider error", &fakeGeocoder{err: errors.New("rate limited")}},
		{"no results", &fakeGeocoder{err: ErrNoResults}},
		{"empty components", &fakeGeocoder{}},
	}

	for _, c := range cases {
		e := NewEnricher(c.geo, true)
		got := e.Enrich(context.Background(), models.GeoPoint{Lat: 1, Lng: 2})
		if got.StreetName != nil || got.Area != nil || got.RoadType != models.RoadTypeResidential {
			t.Errorf("%s: got %+v, want neutral defaults", c.name, got)
		}
	}
}

func TestEnrichDisabled(t *testing.T) {
	e := NewEnricher(&fakeGeocoder{
		components: []AddressComponent{{LongName: "Main Street", Types: []string{"route"}}},
	}, false)

	got := e.Enrich(context.Background(), models.GeoPoint{})
	if got.StreetName != nil || got.Area != nil || got.RoadType != models.RoadTypeResidential {
		t.Errorf("disabled enricher returned %+v, want defaults", got)
	}
}

func TestInferRoadType(t *testing.T) {
	cases := map[string]string{
		"Queen Street":         models.RoadTypeResidential,
		"Highway 410":          models.RoadTypeHighway,
		"Veterans Hwy":         models.RoadTypeHighway,
		"Gardiner Freeway":     models.RoadTypeHighway,
		"Spadina Avenue":       models.RoadTypeArterial,
		"Lakeshore Boulevard":  models.RoadTypeArterial,
		"Erin Mills Pkwy Blvd": models.RoadTypeArterial,
		"Mississauga Parkway":  models.RoadTypeArterial,
		"HIGHWAY 7":            models.RoadTypeHighway,
		"":                     models.RoadTypeResidential,
		"Boulevard of Dreams":  models.RoadTypeArterial,
	}

	for street, want := range cases {
		if got := InferRoadType(street); got != want {
			t.Errorf("InferRoadType(%q) = %q, want %q", street, got, want)
		}
	}
}
