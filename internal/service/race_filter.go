package service

import (
	"slices"
	"strings"

	"getabib/internal/domain"
)

// FilterRaces aplica los filtros del listado. Filtros vacios no restringen.
// Una carrera sin terreno o sin precio pasa los filtros de terreno y precio; una fecha
// que no se puede interpretar pasa el rango de fechas.
func FilterRaces(races []domain.Race, f domain.RaceFilters) []domain.Race {
	out := make([]domain.Race, 0, len(races))
	for _, race := range races {
		if matchesFilters(race, f) {
			out = append(out, race)
		}
	}
	return out
}

func matchesFilters(race domain.Race, f domain.RaceFilters) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !containsFold(race.Name, q) && !containsFold(race.City, q) && !containsFold(race.State, q) {
			return false
		}
	}

	if len(f.Categories) > 0 && !slices.Contains(f.Categories, race.Category) {
		return false
	}

	if f.StartDate != nil || f.EndDate != nil {
		if date, ok := race.ParseDate(); ok {
			if f.StartDate != nil && date.Before(*f.StartDate) {
				return false
			}
			if f.EndDate != nil && date.After(*f.EndDate) {
				return false
			}
		}
	}

	if f.Location != "" {
		q := strings.ToLower(f.Location)
		if !containsFold(race.City, q) && !containsFold(race.State, q) {
			return false
		}
	}

	if len(f.Terrain) > 0 && race.Terrain != "" && !slices.Contains(f.Terrain, race.Terrain) {
		return false
	}

	if f.MaxPrice > 0 && race.Price > 0 && race.Price > f.MaxPrice {
		return false
	}
	return true
}

func containsFold(value, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(value), lowerNeedle)
}
