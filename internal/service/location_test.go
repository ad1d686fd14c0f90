package service

import (
	"testing"

	"getabib/internal/domain"
)

func TestDistanceMiles(t *testing.T) {
	boston := domain.Coordinates{Latitude: 42.3601, Longitude: -71.0589}
	newYork := domain.Coordinates{Latitude: 40.7128, Longitude: -74.006}

	d := DistanceMiles(boston, newYork)
	if d < 180 || d > 200 {
		t.Fatalf("expected ~190 miles, got %v", d)
	}
	if DistanceMiles(boston, boston) != 0 {
		t.Fatalf("expected zero distance to self")
	}
	if FormatDistance(0.4) != "<1 mi" || FormatDistance(12.6) != "13 mi" {
		t.Fatalf("unexpected formatting: %q %q", FormatDistance(0.4), FormatDistance(12.6))
	}
}

func TestGeocodeCity(t *testing.T) {
	tests := []struct {
		input string
		city  string
		state string
		ok    bool
	}{
		{input: "Boston, MA", city: "Boston", state: "MA", ok: true},
		{input: "  chicago ", city: "Chicago", state: "IL", ok: true},
		{input: "san fran", city: "San Francisco", state: "CA", ok: true},
		{input: "ut", city: "", state: "UT", ok: true},
		{input: "zz", ok: false},
		{input: "", ok: false},
		{input: "atlantis", ok: false},
	}
	for _, tt := range tests {
		got, ok := GeocodeCity(tt.input)
		if ok != tt.ok {
			t.Fatalf("%q: expected ok=%v, got %v", tt.input, tt.ok, ok)
		}
		if ok && (got.City != tt.city || got.State != tt.state) {
			t.Fatalf("%q: expected %s/%s, got %s/%s", tt.input, tt.city, tt.state, got.City, got.State)
		}
	}
}

func TestReverseGeocode(t *testing.T) {
	got, ok := ReverseGeocode(domain.Coordinates{Latitude: 42.35, Longitude: -71.05})
	if !ok || got.City != "Boston" || got.State != "MA" {
		t.Fatalf("expected Boston, got %+v", got)
	}

	montana := domain.Coordinates{Latitude: 46.879, Longitude: -110.363}
	got, ok = ReverseGeocode(montana)
	if !ok || got.City != "" || got.State != "MT" {
		t.Fatalf("expected MT state center, got %+v", got)
	}
	if got.Coords != montana {
		t.Fatalf("expected original coordinates kept")
	}
}

func TestRaceCoordinatesAndDistance(t *testing.T) {
	if _, ok := RaceCoordinates("Chamonix", ""); !ok {
		t.Fatalf("expected chamonix in table")
	}
	co, ok := RaceCoordinates("Nowhere", "CO")
	if !ok || co.Latitude != 39.550 {
		t.Fatalf("expected CO state center, got %+v", co)
	}
	if _, ok := RaceCoordinates("Nowhere", ""); ok {
		t.Fatalf("expected unknown city without state to fail")
	}

	race := domain.Race{City: "New York", State: "NY"}
	if _, ok := DistanceToRace(nil, race); ok {
		t.Fatalf("expected no distance without location")
	}
	loc := &domain.RunnerLocation{Coordinates: &domain.Coordinates{Latitude: 42.3601, Longitude: -71.0589}}
	d, ok := DistanceToRace(loc, race)
	if !ok || d < 180 || d > 200 {
		t.Fatalf("expected ~190 miles, got %v %v", d, ok)
	}
}
