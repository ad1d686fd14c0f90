package service

import (
	"fmt"
	"math"
	"strings"

	"getabib/internal/domain"
)

const (
	earthRadiusMiles     = 3959
	reverseGeocodeRadius = 100
)

// knownCity es una entrada de la tabla estatica de coordenadas. El orden importa para
// los matches parciales.
type knownCity struct {
	city   string
	state  string
	coords domain.Coordinates
}

type stateCenter struct {
	state  string
	coords domain.Coordinates
}

var knownCities = []knownCity{
	// Grandes ciudades
	{"new york", "NY", domain.Coordinates{Latitude: 40.7128, Longitude: -74.006}},
	{"brooklyn", "NY", domain.Coordinates{Latitude: 40.6782, Longitude: -73.9442}},
	{"los angeles", "CA", domain.Coordinates{Latitude: 34.0522, Longitude: -118.2437}},
	{"chicago", "IL", domain.Coordinates{Latitude: 41.8781, Longitude: -87.6298}},
	{"houston", "TX", domain.Coordinates{Latitude: 29.7604, Longitude: -95.3698}},
	{"phoenix", "AZ", domain.Coordinates{Latitude: 33.4484, Longitude: -112.074}},
	{"philadelphia", "PA", domain.Coordinates{Latitude: 39.9526, Longitude: -75.1652}},
	{"san antonio", "TX", domain.Coordinates{Latitude: 29.4241, Longitude: -98.4936}},
	{"san diego", "CA", domain.Coordinates{Latitude: 32.7157, Longitude: -117.1611}},
	{"dallas", "TX", domain.Coordinates{Latitude: 32.7767, Longitude: -96.797}},
	{"san francisco", "CA", domain.Coordinates{Latitude: 37.7749, Longitude: -122.4194}},
	{"austin", "TX", domain.Coordinates{Latitude: 30.2672, Longitude: -97.7431}},
	{"seattle", "WA", domain.Coordinates{Latitude: 47.6062, Longitude: -122.3321}},
	{"denver", "CO", domain.Coordinates{Latitude: 39.7392, Longitude: -104.9903}},
	{"boston", "MA", domain.Coordinates{Latitude: 42.3601, Longitude: -71.0589}},
	{"nashville", "TN", domain.Coordinates{Latitude: 36.1627, Longitude: -86.7816}},
	{"portland", "OR", domain.Coordinates{Latitude: 45.5051, Longitude: -122.675}},
	{"atlanta", "GA", domain.Coordinates{Latitude: 33.749, Longitude: -84.388}},
	{"miami", "FL", domain.Coordinates{Latitude: 25.7617, Longitude: -80.1918}},
	{"orlando", "FL", domain.Coordinates{Latitude: 28.5383, Longitude: -81.3792}},
	{"minneapolis", "MN", domain.Coordinates{Latitude: 44.9778, Longitude: -93.265}},
	{"detroit", "MI", domain.Coordinates{Latitude: 42.3314, Longitude: -83.0458}},
	{"cincinnati", "OH", domain.Coordinates{Latitude: 39.1031, Longitude: -84.512}},
	{"pittsburgh", "PA", domain.Coordinates{Latitude: 40.4406, Longitude: -79.9959}},
	{"richmond", "VA", domain.Coordinates{Latitude: 37.5407, Longitude: -77.436}},
	{"arlington", "VA", domain.Coordinates{Latitude: 38.8816, Longitude: -77.0910}},
	{"charleston", "SC", domain.Coordinates{Latitude: 32.7765, Longitude: -79.9311}},
	{"new orleans", "LA", domain.Coordinates{Latitude: 29.9511, Longitude: -90.0715}},
	{"honolulu", "HI", domain.Coordinates{Latitude: 21.3069, Longitude: -157.8583}},
	{"duluth", "MN", domain.Coordinates{Latitude: 46.7867, Longitude: -92.1005}},
	{"burlington", "VT", domain.Coordinates{Latitude: 44.4759, Longitude: -73.2121}},
	{"mobile", "AL", domain.Coordinates{Latitude: 30.6954, Longitude: -88.0399}},
	{"boulder", "CO", domain.Coordinates{Latitude: 40.015, Longitude: -105.2705}},

	// Sedes de carreras
	{"big sur", "CA", domain.Coordinates{Latitude: 36.2704, Longitude: -121.8081}},
	{"olympic valley", "CA", domain.Coordinates{Latitude: 39.1968, Longitude: -120.2354}},
	{"leadville", "CO", domain.Coordinates{Latitude: 39.2508, Longitude: -106.2925}},
	{"manitou springs", "CO", domain.Coordinates{Latitude: 38.8586, Longitude: -104.9175}},
	{"moab", "UT", domain.Coordinates{Latitude: 38.5733, Longitude: -109.5498}},
	{"springdale", "UT", domain.Coordinates{Latitude: 37.1889, Longitude: -112.9988}},
	{"fountain hills", "AZ", domain.Coordinates{Latitude: 33.6117, Longitude: -111.7173}},
	{"ashford", "WA", domain.Coordinates{Latitude: 46.7542, Longitude: -122.0607}},
	{"harpers ferry", "WV", domain.Coordinates{Latitude: 39.3251, Longitude: -77.7286}},
	{"marin", "CA", domain.Coordinates{Latitude: 37.9735, Longitude: -122.5311}},
	{"mill valley", "CA", domain.Coordinates{Latitude: 37.906, Longitude: -122.5419}},
	{"napa", "CA", domain.Coordinates{Latitude: 38.2975, Longitude: -122.2869}},
	{"grand canyon", "AZ", domain.Coordinates{Latitude: 36.0544, Longitude: -112.1401}},
	{"chamonix", "", domain.Coordinates{Latitude: 45.9237, Longitude: 6.8694}},
}

// stateCenters es el fallback cuando la ciudad no esta en la tabla.
var stateCenters = []stateCenter{
	{"AL", domain.Coordinates{Latitude: 32.806, Longitude: -86.791}},
	{"AK", domain.Coordinates{Latitude: 61.370, Longitude: -152.404}},
	{"AZ", domain.Coordinates{Latitude: 34.049, Longitude: -111.094}},
	{"AR", domain.Coordinates{Latitude: 34.800, Longitude: -92.199}},
	{"CA", domain.Coordinates{Latitude: 36.778, Longitude: -119.418}},
	{"CO", domain.Coordinates{Latitude: 39.550, Longitude: -105.782}},
	{"CT", domain.Coordinates{Latitude: 41.597, Longitude: -72.755}},
	{"DE", domain.Coordinates{Latitude: 39.319, Longitude: -75.507}},
	{"DC", domain.Coordinates{Latitude: 38.907, Longitude: -77.037}},
	{"FL", domain.Coordinates{Latitude: 27.665, Longitude: -81.516}},
	{"GA", domain.Coordinates{Latitude: 33.040, Longitude: -83.643}},
	{"HI", domain.Coordinates{Latitude: 21.094, Longitude: -157.498}},
	{"ID", domain.Coordinates{Latitude: 44.068, Longitude: -114.742}},
	{"IL", domain.Coordinates{Latitude: 40.633, Longitude: -89.399}},
	{"IN", domain.Coordinates{Latitude: 40.267, Longitude: -86.135}},
	{"IA", domain.Coordinates{Latitude: 42.011, Longitude: -93.210}},
	{"KS", domain.Coordinates{Latitude: 38.527, Longitude: -96.726}},
	{"KY", domain.Coordinates{Latitude: 37.839, Longitude: -84.270}},
	{"LA", domain.Coordinates{Latitude: 30.985, Longitude: -91.962}},
	{"ME", domain.Coordinates{Latitude: 45.254, Longitude: -69.446}},
	{"MD", domain.Coordinates{Latitude: 39.046, Longitude: -76.641}},
	{"MA", domain.Coordinates{Latitude: 42.407, Longitude: -71.382}},
	{"MI", domain.Coordinates{Latitude: 44.314, Longitude: -85.602}},
	{"MN", domain.Coordinates{Latitude: 46.730, Longitude: -94.685}},
	{"MS", domain.Coordinates{Latitude: 32.354, Longitude: -89.398}},
	{"MO", domain.Coordinates{Latitude: 38.573, Longitude: -92.603}},
	{"MT", domain.Coordinates{Latitude: 46.879, Longitude: -110.363}},
	{"NE", domain.Coordinates{Latitude: 41.493, Longitude: -99.902}},
	{"NV", domain.Coordinates{Latitude: 38.802, Longitude: -116.420}},
	{"NH", domain.Coordinates{Latitude: 43.193, Longitude: -71.572}},
	{"NJ", domain.Coordinates{Latitude: 40.059, Longitude: -74.406}},
	{"NM", domain.Coordinates{Latitude: 34.519, Longitude: -105.870}},
	{"NY", domain.Coordinates{Latitude: 42.165, Longitude: -74.948}},
	{"NC", domain.Coordinates{Latitude: 35.630, Longitude: -79.806}},
	{"ND", domain.Coordinates{Latitude: 47.528, Longitude: -99.784}},
	{"OH", domain.Coordinates{Latitude: 40.417, Longitude: -82.907}},
	{"OK", domain.Coordinates{Latitude: 35.007, Longitude: -97.093}},
	{"OR", domain.Coordinates{Latitude: 43.804, Longitude: -120.554}},
	{"PA", domain.Coordinates{Latitude: 41.203, Longitude: -77.195}},
	{"RI", domain.Coordinates{Latitude: 41.580, Longitude: -71.478}},
	{"SC", domain.Coordinates{Latitude: 33.836, Longitude: -81.164}},
	{"SD", domain.Coordinates{Latitude: 43.969, Longitude: -99.902}},
	{"TN", domain.Coordinates{Latitude: 35.517, Longitude: -86.580}},
	{"TX", domain.Coordinates{Latitude: 31.969, Longitude: -99.902}},
	{"UT", domain.Coordinates{Latitude: 39.321, Longitude: -111.093}},
	{"VT", domain.Coordinates{Latitude: 44.559, Longitude: -72.578}},
	{"VA", domain.Coordinates{Latitude: 37.431, Longitude: -78.656}},
	{"WA", domain.Coordinates{Latitude: 47.751, Longitude: -120.740}},
	{"WV", domain.Coordinates{Latitude: 38.598, Longitude: -80.455}},
	{"WI", domain.Coordinates{Latitude: 43.784, Longitude: -88.788}},
	{"WY", domain.Coordinates{Latitude: 43.076, Longitude: -107.290}},
}

// GeoMatch es el resultado de geocodificar texto o coordenadas.
type GeoMatch struct {
	City   string             `json:"city"`
	State  string             `json:"state"`
	Coords domain.Coordinates `json:"coordinates"`
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceMiles calcula la distancia haversine en millas.
func DistanceMiles(from, to domain.Coordinates) float64 {
	dLat := toRadians(to.Latitude - from.Latitude)
	dLon := toRadians(to.Longitude - from.Longitude)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(from.Latitude))*math.Cos(toRadians(to.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}

// FormatDistance devuelve "<1 mi" o la distancia redondeada.
func FormatDistance(miles float64) string {
	if miles < 1 {
		return "<1 mi"
	}
	return fmt.Sprintf("%d mi", int(math.Round(miles)))
}

func stateCenterFor(state string) (domain.Coordinates, bool) {
	for _, s := range stateCenters {
		if s.state == state {
			return s.coords, true
		}
	}
	return domain.Coordinates{}, false
}

// displayCity capitaliza cada palabra del nombre de la tabla.
func displayCity(city string) string {
	words := strings.Fields(city)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// RaceCoordinates resuelve ciudad+estado, luego solo ciudad y por ultimo el centro del estado.
func RaceCoordinates(city, state string) (domain.Coordinates, bool) {
	cityLower := strings.ToLower(strings.TrimSpace(city))
	for _, c := range knownCities {
		if c.city == cityLower && c.state == state {
			return c.coords, true
		}
	}
	for _, c := range knownCities {
		if c.city == cityLower {
			return c.coords, true
		}
	}
	if state != "" {
		return stateCenterFor(state)
	}
	return domain.Coordinates{}, false
}

// ReverseGeocode busca la ciudad conocida mas cercana (menos de 100 millas) y si no,
// el centro de estado mas cercano con ciudad vacia.
func ReverseGeocode(coords domain.Coordinates) (GeoMatch, bool) {
	bestDist := math.Inf(1)
	var best knownCity
	for _, c := range knownCities {
		if d := DistanceMiles(coords, c.coords); d < bestDist {
			bestDist = d
			best = c
		}
	}
	if bestDist < reverseGeocodeRadius {
		return GeoMatch{City: displayCity(best.city), State: best.state, Coords: coords}, true
	}

	bestDist = math.Inf(1)
	var bestState stateCenter
	for _, s := range stateCenters {
		if d := DistanceMiles(coords, s.coords); d < bestDist {
			bestDist = d
			bestState = s
		}
	}
	if bestState.state == "" {
		return GeoMatch{}, false
	}
	return GeoMatch{State: bestState.state, Coords: coords}, true
}

// GeocodeCity interpreta texto libre: "boston", "boston, ma", un fragmento o un estado.
func GeocodeCity(input string) (GeoMatch, bool) {
	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return GeoMatch{}, false
	}

	for _, c := range knownCities {
		if c.city == needle || c.city+", "+strings.ToLower(c.state) == needle {
			return GeoMatch{City: displayCity(c.city), State: c.state, Coords: c.coords}, true
		}
	}
	// Un codigo de dos letras es un estado; si no, "ut" matchearia "duluth".
	if len(needle) == 2 {
		state := strings.ToUpper(needle)
		if coords, ok := stateCenterFor(state); ok {
			return GeoMatch{State: state, Coords: coords}, true
		}
		return GeoMatch{}, false
	}
	for _, c := range knownCities {
		if strings.Contains(c.city, needle) || strings.Contains(needle, c.city) {
			return GeoMatch{City: displayCity(c.city), State: c.state, Coords: c.coords}, true
		}
	}
	return GeoMatch{}, false
}

// DistanceToRace devuelve la distancia en millas desde la ubicacion del corredor.
func DistanceToRace(loc *domain.RunnerLocation, race domain.Race) (float64, bool) {
	if loc == nil || loc.Coordinates == nil {
		return 0, false
	}
	raceCoords, ok := RaceCoordinates(race.City, race.State)
	if !ok {
		return 0, false
	}
	return DistanceMiles(*loc.Coordinates, raceCoords), true
}
