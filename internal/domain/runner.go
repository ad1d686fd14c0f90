package domain

import "time"

// Runner es el dueño de un dispositivo registrado. Location y Preferences se guardan
// como documentos JSON junto a la fila.
type Runner struct {
	ID          string            `json:"id"`
	DeviceID    string            `json:"device_id"`
	DisplayName string            `json:"display_name,omitempty"`
	Location    *RunnerLocation   `json:"location,omitempty"`
	Preferences RunnerPreferences `json:"preferences"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RunnerLocation es la ubicacion elegida por el corredor (GPS o manual).
type RunnerLocation struct {
	City        string       `json:"city"`
	State       string       `json:"state"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	RadiusMiles int          `json:"radius"`
	Source      string       `json:"source"` // "gps" | "manual"
}

// Origen de la ubicacion.
const (
	LocationSourceGPS    = "gps"
	LocationSourceManual = "manual"
)

// RunnerPreferences son preferencias explicitas.
type RunnerPreferences struct {
	PreferredDistances []string       `json:"preferredDistances"`
	Terrain            map[string]int `json:"terrain"` // road/trail/track/mixed 0-100
	MaxPrice           float64        `json:"maxPrice"`
	MaxTravelMiles     int            `json:"maxTravelDistance"`
}

// DefaultRunnerPreferences devuelve preferencias vacias con mapas inicializados.
func DefaultRunnerPreferences() RunnerPreferences {
	return RunnerPreferences{
		PreferredDistances: []string{},
		Terrain:            map[string]int{},
	}
}

// RaceView es una visita registrada al detalle de una carrera.
type RaceView struct {
	RunnerID string    `json:"runner_id"`
	RaceID   string    `json:"race_id"`
	Category string    `json:"category"`
	ViewedAt time.Time `json:"viewed_at"`
}

// RunnerBehavior son señales implicitas (lo que el corredor hace).
type RunnerBehavior struct {
	ViewedRaces   []string       `json:"viewedRaces"`
	SavedRaces    []string       `json:"savedRaces"`
	CategoryViews map[string]int `json:"categoryViews"`
}

// RunnerProfile es el estado explicito que recibe el scorer.
type RunnerProfile struct {
	ID          string            `json:"id"`
	Name        string            `json:"name,omitempty"`
	Location    *RunnerLocation   `json:"location,omitempty"`
	Personality RunnerPersonality `json:"personality"`
	Preferences RunnerPreferences `json:"preferences"`
	Behavior    RunnerBehavior    `json:"behavior"`
}
