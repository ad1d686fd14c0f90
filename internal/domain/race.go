package domain

import (
	"math"
	"strings"
	"time"
)

// Categorias de distancia de una carrera.
const (
	Category5K       = "5k"
	Category10K      = "10k"
	CategoryHalf     = "half"
	CategoryMarathon = "marathon"
	CategoryUltra    = "ultra"
)

// RaceCategories en orden de menor a mayor distancia.
var RaceCategories = []string{Category5K, Category10K, CategoryHalf, CategoryMarathon, CategoryUltra}

// Tipos de terreno.
const (
	TerrainRoad  = "road"
	TerrainTrail = "trail"
	TerrainTrack = "track"
	TerrainMixed = "mixed"
)

// Race es el registro externo de una carrera. El core solo lo lee.
// Los campos numericos opcionales usan 0 como "sin dato".
type Race struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Date            string               `json:"date"`
	City            string               `json:"city"`
	State           string               `json:"state"`
	Country         string               `json:"country"`
	Distance        float64              `json:"distance,omitempty"` // km
	DistanceLabel   string               `json:"distanceLabel,omitempty"`
	Category        string               `json:"category"`
	RegistrationURL string               `json:"registrationUrl,omitempty"`
	WebsiteURL      string               `json:"websiteUrl,omitempty"`
	Description     string               `json:"description,omitempty"`
	Price           float64              `json:"price,omitempty"`
	Currency        string               `json:"currency,omitempty"`
	SpotsRemaining  int                  `json:"spotsRemaining,omitempty"`
	TotalSpots      int                  `json:"totalSpots,omitempty"`
	ImageURL        string               `json:"imageUrl,omitempty"`
	Terrain         string               `json:"terrain,omitempty"`
	Elevation       float64              `json:"elevation,omitempty"` // metros de desnivel
	IsFeatured      bool                 `json:"isFeatured,omitempty"`
	OrganizerName   string               `json:"organizerName,omitempty"`
	Source          string               `json:"source,omitempty"`
	Characteristics *RaceCharacteristics `json:"characteristics,omitempty"`
}

// RaceCharacteristics describe atributos del recorrido usados en el scoring por metas.
type RaceCharacteristics struct {
	IsFlat             bool `json:"isFlat,omitempty"`
	IsHilly            bool `json:"isHilly,omitempty"`
	IsScenic           bool `json:"isScenic,omitempty"`
	IsFastCourse       bool `json:"isFastCourse,omitempty"`
	IsBQQualifier      bool `json:"isBQQualifier,omitempty"`
	IsBeginnerFriendly bool `json:"isBeginnerFriendly,omitempty"`
	IsFamilyFriendly   bool `json:"isFamilyFriendly,omitempty"`
	IsCharity          bool `json:"isCharity,omitempty"`
	IsThemed           bool `json:"isThemed,omitempty"`
}

// Scenic devuelve false si no hay caracteristicas cargadas.
func (r Race) Scenic() bool {
	return r.Characteristics != nil && r.Characteristics.IsScenic
}

// BQQualifier devuelve false si no hay caracteristicas cargadas.
func (r Race) BQQualifier() bool {
	return r.Characteristics != nil && r.Characteristics.IsBQQualifier
}

// BeginnerFriendly devuelve false si no hay caracteristicas cargadas.
func (r Race) BeginnerFriendly() bool {
	return r.Characteristics != nil && r.Characteristics.IsBeginnerFriendly
}

var raceDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
}

// ParseDate interpreta Date con los formatos conocidos. ok=false si no se pudo.
func (r Race) ParseDate() (time.Time, bool) {
	raw := strings.TrimSpace(r.Date)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range raceDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DaysUntil devuelve los dias enteros (floor) hasta la carrera desde now.
func (r Race) DaysUntil(now time.Time) (int, bool) {
	date, ok := r.ParseDate()
	if !ok {
		return 0, false
	}
	days := math.Floor(date.Sub(now).Hours() / 24)
	return int(days), true
}

// ScoredRace envuelve una carrera con su relevancia para un corredor. No se persiste.
type ScoredRace struct {
	Race
	RelevanceScore float64  `json:"relevanceScore"`
	MatchReasons   []string `json:"matchReasons"`
	GoalScore      *int     `json:"goalScore,omitempty"`
}

// FeedSections son las secciones del feed principal. Pueden solaparse.
type FeedSections struct {
	ForYou         []ScoredRace `json:"forYou"`
	NearYou        []ScoredRace `json:"nearYou"`
	BucketList     []ScoredRace `json:"bucketList"`
	ComingSoon     []ScoredRace `json:"comingSoon"`
	BasedOnHistory []ScoredRace `json:"basedOnHistory"`
}

// RaceFilters son los filtros de busqueda del listado.
type RaceFilters struct {
	Search     string     `json:"search"`
	Categories []string   `json:"categories"`
	StartDate  *time.Time `json:"startDate,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	Location   string     `json:"location"`
	Terrain    []string   `json:"terrain"`
	MaxPrice   float64    `json:"maxPrice,omitempty"`
}

// RaceStats resume el cache de carreras.
type RaceStats struct {
	TotalRaces int            `json:"totalRaces"`
	ByCategory map[string]int `json:"byCategory"`
	ByState    map[string]int `json:"byState"`
	CacheAge   *time.Duration `json:"cacheAge,omitempty"`
}

// SavedRace es una carrera guardada por un corredor.
type SavedRace struct {
	ID       string    `json:"id"`
	RunnerID string    `json:"runner_id"`
	Race     Race      `json:"race"`
	SavedAt  time.Time `json:"saved_at"`
}
