package racesource

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"getabib/internal/domain"
)

const (
	kmPerMile           = 1.60934
	marathonKm          = 42.195
	maxDescriptionRunes = 500
	unknownCity         = "Unknown"
	defaultCountry      = "US"
)

// featuredNames marca como destacadas las carreras conocidas (match por substring).
var featuredNames = []string{
	"boston marathon", "new york city marathon", "nyc marathon", "chicago marathon",
	"los angeles marathon", "la marathon", "marine corps marathon",
	"big sur marathon", "western states", "utmb", "leadville",
	"comrades marathon", "london marathon", "berlin marathon",
	"peachtree road race", "bolder boulder", "bay to breakers",
	"disney marathon", "disney princess", "rock 'n' roll",
}

// distanceKm convierte a kilometros. Sin distancia se asume maraton.
func distanceKm(distance float64, unit string) float64 {
	if distance <= 0 {
		return marathonKm
	}
	switch unit {
	case "M", "mi", "miles":
		return distance * kmPerMile
	case "K", "km", "kilometers":
		return distance
	case "m", "meters":
		return distance / 1000
	}
	return distance
}

func categoryFromDistance(km float64) string {
	switch {
	case km <= 5.5:
		return domain.Category5K
	case km <= 12:
		return domain.Category10K
	case km <= 25:
		return domain.CategoryHalf
	case km <= 50:
		return domain.CategoryMarathon
	}
	return domain.CategoryUltra
}

func distanceLabel(km float64) string {
	switch {
	case math.Abs(km-5) < 0.5:
		return "5K"
	case math.Abs(km-10) < 1:
		return "10K"
	case math.Abs(km-21.1) < 1.5:
		return "Half Marathon"
	case math.Abs(km-42.2) < 2:
		return "Marathon"
	case km >= 50 && km < 85:
		return "50K Ultra"
	case km >= 85 && km < 120:
		return "50 Mile Ultra"
	case km >= 120 && km < 180:
		return "100K Ultra"
	case km >= 180:
		return "100 Mile Ultra"
	}
	return fmt.Sprintf("%dK", int(math.Round(km)))
}

// normalizeDate devuelve la fecha en formato YYYY-MM-DD; ok=false si no se puede leer.
func normalizeDate(raw string) (string, time.Time, bool) {
	date, ok := domain.Race{Date: raw}.ParseDate()
	if !ok {
		return "", time.Time{}, false
	}
	return date.Format("2006-01-02"), date, true
}

// isUpcoming descarta carreras cuyo dia ya paso respecto de now.
func isUpcoming(date, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !date.Before(today)
}

func truncateRunes(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

// ProcessRaces deduplica, marca destacadas y ordena por fecha.
func ProcessRaces(races []domain.Race) []domain.Race {
	out := markFeatured(deduplicate(races))
	sortByDate(out)
	return out
}

func dedupKey(r domain.Race) string {
	return strings.ToLower(strings.TrimSpace(r.Name)) + "_" + r.Date + "_" + strings.ToLower(strings.TrimSpace(r.City))
}

// deduplicate conserva el primer orden de aparicion y, ante duplicados, la version
// con la descripcion mas larga.
func deduplicate(races []domain.Race) []domain.Race {
	index := make(map[string]int, len(races))
	out := make([]domain.Race, 0, len(races))
	for _, r := range races {
		key := dedupKey(r)
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, r)
			continue
		}
		if len(r.Description) > len(out[i].Description) {
			out[i] = r
		}
	}
	return out
}

func markFeatured(races []domain.Race) []domain.Race {
	for i := range races {
		name := strings.ToLower(races[i].Name)
		races[i].IsFeatured = false
		for _, fn := range featuredNames {
			if strings.Contains(name, fn) {
				races[i].IsFeatured = true
				break
			}
		}
	}
	return races
}

// sortByDate ordena ascendente; las fechas ilegibles quedan al final.
func sortByDate(races []domain.Race) {
	sort.SliceStable(races, func(i, j int) bool {
		di, okI := races[i].ParseDate()
		dj, okJ := races[j].ParseDate()
		if okI != okJ {
			return okI
		}
		return di.Before(dj)
	})
}

func computeStats(races []domain.Race, fetchedAt *time.Time, now time.Time) domain.RaceStats {
	stats := domain.RaceStats{
		TotalRaces: len(races),
		ByCategory: make(map[string]int),
		ByState:    make(map[string]int),
	}
	for _, r := range races {
		stats.ByCategory[r.Category]++
		if r.State != "" {
			stats.ByState[r.State]++
		}
	}
	if fetchedAt != nil {
		age := now.Sub(*fetchedAt)
		stats.CacheAge = &age
	}
	return stats
}
