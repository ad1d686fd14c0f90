package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"getabib/internal/domain"
)

const (
	baseRelevanceScore = 50
	maxMatchReasons    = 3
	neutralPreference  = 50
	featuredBoost      = 8
)

// factorResult es el aporte de un factor: puntos y, opcionalmente, una razon visible.
type factorResult struct {
	points int
	reason string
}

// Regiones aproximadas de EEUU usadas para la proximidad.
var usRegions = [][]string{
	{"MA", "NY", "NJ", "PA", "CT", "RI", "ME", "NH", "VT", "DC", "MD", "VA"},
	{"CA", "WA", "OR"},
	{"IL", "OH", "MI", "MN", "WI", "IN", "MO"},
}

// regionOf devuelve el indice de la region del estado o -1.
func regionOf(state string) int {
	for i, region := range usRegions {
		if slices.Contains(region, state) {
			return i
		}
	}
	return -1
}

// ScoreRace puntua una carrera para un corredor sumando ocho factores sobre la base 50.
// now se recibe explicito para que el factor de fechas sea determinista.
func ScoreRace(race domain.Race, profile domain.RunnerProfile, now time.Time) domain.ScoredRace {
	score := baseRelevanceScore
	reasons := make([]string, 0, maxMatchReasons+1)

	factors := []factorResult{
		scoreDistanceMatch(race, profile.Personality, profile.Preferences),
		scoreTerrainMatch(race, profile.Personality, profile.Preferences),
		scoreLocationMatch(race, profile),
		scorePersonalityMatch(race, profile.Personality),
		scoreTimingMatch(race, now),
		scoreBehavioralSignals(race, profile.Behavior),
	}
	for _, f := range factors {
		score += f.points
		if f.reason != "" {
			reasons = append(reasons, f.reason)
		}
	}

	// El precio nunca aporta razon.
	score += scorePriceMatch(race, profile.Preferences).points

	if race.IsFeatured {
		score += featuredBoost
		reasons = append(reasons, "Popular race")
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	if len(reasons) > maxMatchReasons {
		reasons = reasons[:maxMatchReasons]
	}

	return domain.ScoredRace{
		Race:           race,
		RelevanceScore: float64(score),
		MatchReasons:   reasons,
	}
}

// ScoreRaces puntua en paralelo por bloques. El orden de salida es el de entrada.
func ScoreRaces(ctx context.Context, races []domain.Race, profile domain.RunnerProfile, now time.Time, workers int) ([]domain.ScoredRace, error) {
	out := make([]domain.ScoredRace, len(races))
	if len(races) == 0 {
		return out, nil
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (len(races) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(races); start += chunk {
		end := start + chunk
		if end > len(races) {
			end = len(races)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				out[i] = ScoreRace(races[i], profile, now)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func affinityOrNeutral(affinities domain.RaceAffinities, key string) int {
	if v := affinities[key]; v != 0 {
		return v
	}
	return neutralPreference
}

func scoreDistanceMatch(race domain.Race, personality domain.RunnerPersonality, prefs domain.RunnerPreferences) factorResult {
	if slices.Contains(prefs.PreferredDistances, race.Category) {
		label := race.DistanceLabel
		if label == "" {
			label = CategoryLabel(race.Category)
		}
		return factorResult{points: 25, reason: "Matches your " + label + " preference"}
	}

	aff := affinityOrNeutral(personality.RaceAffinities, race.Category)
	switch {
	case aff > 75:
		typeName := strings.Replace(string(personality.PrimaryType), "_", " ", 1)
		return factorResult{points: 20, reason: "Great for " + typeName + "s"}
	case aff > 50:
		return factorResult{points: 12}
	}
	return factorResult{points: 5}
}

func scoreTerrainMatch(race domain.Race, personality domain.RunnerPersonality, prefs domain.RunnerPreferences) factorResult {
	if race.Terrain == "" {
		return factorResult{points: 10}
	}

	pref := neutralPreference
	if v := prefs.Terrain[race.Terrain]; v != 0 {
		pref = v
	}

	if race.Terrain == domain.TerrainTrail && personality.Traits.Adventurous > 60 {
		return factorResult{points: 20, reason: "Trail run for the adventurous"}
	}
	switch {
	case pref > 75:
		return factorResult{points: 18, reason: strings.ToUpper(race.Terrain[:1]) + race.Terrain[1:] + " terrain you love"}
	case pref > 50:
		return factorResult{points: 12}
	}
	return factorResult{points: 5}
}

func scoreLocationMatch(race domain.Race, profile domain.RunnerProfile) factorResult {
	if profile.Location == nil {
		return factorResult{points: 10}
	}
	loc := profile.Location

	if race.State == loc.State {
		return factorResult{points: 18, reason: "Local race in " + race.State}
	}

	// Para exploradores las carreras de destino suman.
	if profile.Personality.Traits.Explorer > 70 {
		if race.Country != "US" || profile.Personality.RaceAffinities[domain.AffinityDestination] > 70 {
			return factorResult{points: 15, reason: "Destination race for your bucket list"}
		}
	}

	if userRegion := regionOf(loc.State); userRegion >= 0 && userRegion == regionOf(race.State) {
		return factorResult{points: 12, reason: "In your region"}
	}
	return factorResult{points: 5}
}

func scorePersonalityMatch(race domain.Race, personality domain.RunnerPersonality) factorResult {
	switch personality.PrimaryType {
	case domain.PersonalityTrailSeeker:
		if race.Terrain == domain.TerrainTrail {
			return factorResult{points: 15, reason: "Perfect for trail seekers"}
		}
	case domain.PersonalityPRHunter:
		if race.Elevation != 0 && race.Elevation < 100 {
			return factorResult{points: 15, reason: "Fast, flat PR course"}
		}
	case domain.PersonalityBucketLister:
		if race.IsFeatured {
			return factorResult{points: 15, reason: "Bucket list worthy"}
		}
	case domain.PersonalityUltraCurious:
		if race.Category == domain.CategoryUltra {
			return factorResult{points: 15, reason: "For the ultra curious"}
		}
	case domain.PersonalityCommunityRunner:
		if race.Category == domain.Category5K {
			return factorResult{points: 12, reason: "Great community event"}
		}
	case domain.PersonalityScenicExplorer:
		if race.Elevation > 500 {
			return factorResult{points: 15, reason: "Stunning views await"}
		}
	}
	return factorResult{points: 5}
}

func scoreTimingMatch(race domain.Race, now time.Time) factorResult {
	days, ok := race.DaysUntil(now)
	if !ok {
		return factorResult{points: 3}
	}
	switch {
	case days >= 60 && days <= 180:
		return factorResult{points: 10, reason: "Perfect timing to train"}
	case days >= 30 && days < 60:
		return factorResult{points: 7}
	case days >= 14 && days < 30:
		return factorResult{points: 5, reason: "Coming up soon!"}
	}
	return factorResult{points: 3}
}

func scoreBehavioralSignals(race domain.Race, behavior domain.RunnerBehavior) factorResult {
	points := 0
	views := behavior.CategoryViews[race.Category]
	switch {
	case views > 10:
		points += 10
	case views > 5:
		points += 5
	}
	if len(behavior.SavedRaces) > 0 {
		points += 5
	}

	res := factorResult{points: points}
	if points > 5 {
		res.reason = "Based on your browsing"
	}
	return res
}

func scorePriceMatch(race domain.Race, prefs domain.RunnerPreferences) factorResult {
	if race.Price == 0 || prefs.MaxPrice == 0 {
		return factorResult{points: 5}
	}
	switch {
	case race.Price <= prefs.MaxPrice:
		return factorResult{points: 10}
	case race.Price <= prefs.MaxPrice*1.2:
		return factorResult{points: 5}
	}
	return factorResult{points: 0}
}

// CategoryLabel es la etiqueta visible de una categoria de distancia.
func CategoryLabel(category string) string {
	switch category {
	case domain.Category5K:
		return "5K"
	case domain.Category10K:
		return "10K"
	case domain.CategoryHalf:
		return "Half Marathon"
	case domain.CategoryMarathon:
		return "Marathon"
	case domain.CategoryUltra:
		return "Ultra"
	}
	return category
}
