package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"getabib/internal/domain"
)

// clockTimePattern detecta tiempos sueltos tipo "3:45" cuando ninguna regla fijo targetTime.
var clockTimePattern = regexp2.MustCompile(`\b(\d{1,2}):(\d{2})\b`, regexp2.ECMAScript)

// beginnerTagIDs disparan experienceLevel=beginner.
var beginnerTagIDs = []string{"first-race", "first-marathon", "first-half"}

// advancedTagIDs disparan experienceLevel=advanced si no hubo tags de principiante.
var advancedTagIDs = []string{"sub-3", "pref-ultra"}

// AnalyzeGoals convierte texto libre en metas estructuradas recorriendo GoalPatterns en orden.
// Es pura y determinista: el mismo texto produce el mismo resultado, orden de tags incluido.
func AnalyzeGoals(text string) domain.ParsedGoals {
	goals := domain.EmptyParsedGoals()

	for _, p := range GoalPatterns {
		if !p.Matches(text) {
			continue
		}
		if !goals.HasTag(p.Tag.ID) {
			goals.Tags = append(goals.Tags, p.Tag)
		}

		switch p.Tag.Category {
		case domain.GoalCategoryDistance:
			goals.PreferredDistances = append(goals.PreferredDistances, p.Key)
		case domain.GoalCategoryTerrain:
			goals.PreferredTerrain = append(goals.PreferredTerrain, p.Key)
		case domain.GoalCategoryCourse:
			goals.CoursePreferences = append(goals.CoursePreferences, p.Key)
		case domain.GoalCategorySpecial:
			goals.SpecialGoals = append(goals.SpecialGoals, p.Tag.ID)
		case domain.GoalCategoryTime:
			if strings.HasPrefix(p.Tag.ID, targetTimeTagPrefix) {
				label := p.Tag.Label
				goals.TargetTime = &label
			}
		}
	}

	goals.ExperienceLevel = inferExperienceLevel(goals)

	if goals.TargetTime == nil {
		if clock, ok := findClockTime(text); ok {
			goals.TargetTime = &clock
		}
	}

	return goals
}

func inferExperienceLevel(goals domain.ParsedGoals) *domain.ExperienceLevel {
	var level domain.ExperienceLevel
	switch {
	case anyTag(goals, beginnerTagIDs):
		level = domain.ExperienceBeginner
	case anyTag(goals, advancedTagIDs):
		level = domain.ExperienceAdvanced
	case len(goals.Tags) > 0:
		level = domain.ExperienceIntermediate
	default:
		return nil
	}
	return &level
}

func anyTag(goals domain.ParsedGoals, ids []string) bool {
	for _, id := range ids {
		if goals.HasTag(id) {
			return true
		}
	}
	return false
}

// findClockTime toma el primer H:MM / HH:MM del texto con hora 1-12 y minutos 0-59.
func findClockTime(text string) (string, bool) {
	m, err := clockTimePattern.FindStringMatch(text)
	if err != nil || m == nil {
		return "", false
	}
	groups := m.Groups()
	hours, err := strconv.Atoi(groups[1].String())
	if err != nil {
		return "", false
	}
	minutes, err := strconv.Atoi(groups[2].String())
	if err != nil {
		return "", false
	}
	if hours < 1 || hours > 12 || minutes < 0 || minutes > 59 {
		return "", false
	}
	return strconv.Itoa(hours) + ":" + groups[2].String(), true
}

// distanceKeyCategories traduce las claves de la tabla a categorias de carrera.
var distanceKeyCategories = map[string]string{
	"marathon":     domain.CategoryMarathon,
	"halfMarathon": domain.CategoryHalf,
	"ultra":        domain.CategoryUltra,
	"fiveK":        domain.Category5K,
	"tenK":         domain.Category10K,
}

// terrainKeyTerrains traduce las claves de terreno de la tabla.
var terrainKeyTerrains = map[string]string{
	"trail": domain.TerrainTrail,
	"road":  domain.TerrainRoad,
}

const neutralGoalScore = 50

// ScoreRaceForGoals puntua 0-100 que tan bien una carrera cumple las metas parseadas.
// Sin tags devuelve 50. El resultado se normaliza por la cantidad de factores aplicables,
// asi que un unico factor cumplido por completo puede llegar a 100.
func ScoreRaceForGoals(race domain.Race, goals domain.ParsedGoals) int {
	if len(goals.Tags) == 0 {
		return neutralGoalScore
	}

	score := 0
	factors := 0

	if len(goals.PreferredDistances) > 0 {
		factors++
		for _, key := range goals.PreferredDistances {
			if cat, ok := distanceKeyCategories[key]; ok && cat == race.Category {
				score += 30
				break
			}
		}
	}

	if len(goals.PreferredTerrain) > 0 {
		factors++
		for _, key := range goals.PreferredTerrain {
			if terrain, ok := terrainKeyTerrains[key]; ok && race.Terrain != "" && terrain == race.Terrain {
				score += 25
				break
			}
		}
	}

	if len(goals.CoursePreferences) > 0 {
		factors++
		if goals.HasCoursePreference("hilly") && race.Elevation > 200 {
			score += 20
		}
		if goals.HasCoursePreference("flat") && race.Elevation < 100 {
			score += 20
		}
		if goals.HasCoursePreference("scenic") && race.Scenic() {
			score += 20
		}
	}

	// BQ: maratones de ruta rapidas y planas.
	if goals.HasSpecialGoal("bq") {
		factors++
		if race.Category == domain.CategoryMarathon && race.Terrain == domain.TerrainRoad {
			score += 25
			if race.Elevation < 150 {
				score += 10
			}
			if race.BQQualifier() {
				score += 15
			}
		}
	}

	if goals.ExperienceLevel != nil && *goals.ExperienceLevel == domain.ExperienceBeginner {
		factors++
		if race.BeginnerFriendly() {
			score += 20
		}
		if race.Category == domain.Category5K || race.Category == domain.Category10K {
			score += 15
		}
	}

	if goals.HasSpecialGoal("bucket-list") {
		factors++
		if race.IsFeatured {
			score += 25
		}
	}

	if factors == 0 {
		return neutralGoalScore
	}
	normalized := int(math.Round(float64(score) / float64(factors*25) * 100))
	if normalized > 100 {
		return 100
	}
	return normalized
}
