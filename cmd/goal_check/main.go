package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/joho/godotenv"

	"getabib/internal/domain"
	"getabib/internal/racesource"
	"getabib/internal/service"
)

const (
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorReset = "\033[0m"
)

// Scenario es un caso de verificacion offline del motor de metas y del scorer.
type Scenario struct {
	Name  string
	Check func() error
}

func main() {
	_ = godotenv.Load()

	passed, results := runScenarios(scenarios())
	for _, r := range results {
		fmt.Printf("=== Ejecutando: %s ===\n", r.name)
		if r.err != nil {
			fmt.Printf("%s❌ FAIL [%s] %v%s\n", colorRed, r.name, r.err, colorReset)
			continue
		}
		fmt.Printf("%s✅ PASS [%s]%s\n", colorGreen, r.name, colorReset)
	}

	if err := printSampleFeed(context.Background()); err != nil {
		fmt.Printf("%sfeed de muestra: %v%s\n", colorRed, err, colorReset)
	}

	fmt.Printf("\nResultado: %d/%d escenarios OK\n", passed, len(results))
	if passed != len(results) {
		os.Exit(1)
	}
}

type scenarioResult struct {
	name string
	err  error
}

func runScenarios(list []Scenario) (int, []scenarioResult) {
	passed := 0
	results := make([]scenarioResult, 0, len(list))
	for _, s := range list {
		err := s.Check()
		if err == nil {
			passed++
		}
		results = append(results, scenarioResult{name: s.Name, err: err})
	}
	return passed, results
}

func scenarios() []Scenario {
	return []Scenario{
		{Name: "A boston qualifier", Check: checkBostonQualifier},
		{Name: "B texto vacio", Check: checkEmptyText},
		{Name: "C primera carrera", Check: checkFirstRace},
		{Name: "D trail seeker", Check: checkTrailSeeker},
		{Name: "E bonus BQ", Check: checkBQBonus},
		{Name: "diversidad por categoria", Check: checkDiversity},
		{Name: "rasgos recortados", Check: checkTraitClamp},
	}
}

func checkBostonQualifier() error {
	goals := service.AnalyzeGoals("I want to qualify for Boston. My marathon PR is 3:45. I love trail races.")
	for _, id := range []string{"bq", "pr-goal", "pref-marathon", "pref-trail"} {
		if !goals.HasTag(id) {
			return fmt.Errorf("falta tag %s", id)
		}
	}
	if goals.ExperienceLevel == nil || *goals.ExperienceLevel != domain.ExperienceIntermediate {
		return fmt.Errorf("nivel esperado intermediate, got %v", goals.ExperienceLevel)
	}
	if !slices.Contains(goals.PreferredDistances, domain.CategoryMarathon) {
		return fmt.Errorf("preferredDistances sin marathon: %v", goals.PreferredDistances)
	}
	if !slices.Contains(goals.PreferredTerrain, domain.TerrainTrail) {
		return fmt.Errorf("preferredTerrain sin trail: %v", goals.PreferredTerrain)
	}
	return nil
}

func checkEmptyText() error {
	goals := service.AnalyzeGoals("")
	if len(goals.Tags) != 0 || goals.ExperienceLevel != nil || goals.TargetTime != nil {
		return fmt.Errorf("resultado no vacio: %+v", goals)
	}
	if goals.Tags == nil || goals.PreferredDistances == nil || goals.SpecialGoals == nil {
		return fmt.Errorf("listas nil en resultado vacio")
	}
	return nil
}

func checkFirstRace() error {
	goals := service.AnalyzeGoals("This is my first 5k, total beginner")
	if !goals.HasTag("first-race") {
		return fmt.Errorf("falta tag first-race")
	}
	if goals.ExperienceLevel == nil || *goals.ExperienceLevel != domain.ExperienceBeginner {
		return fmt.Errorf("nivel esperado beginner, got %v", goals.ExperienceLevel)
	}
	return nil
}

func checkTrailSeeker() error {
	traits := domain.TraitVector{Adventurous: 85, Competitive: 30, Social: 40, Endurance: 75, Explorer: 20, Casual: 30}
	if got := service.CalculatePersonalityType(traits); got != domain.PersonalityTrailSeeker {
		return fmt.Errorf("tipo esperado trail_seeker, got %s", got)
	}
	return nil
}

func checkBQBonus() error {
	goals := service.AnalyzeGoals("I want to qualify for Boston")
	if !goals.HasTag("bq") {
		return fmt.Errorf("falta tag bq")
	}
	race := domain.Race{
		Category:        domain.CategoryMarathon,
		Terrain:         domain.TerrainRoad,
		Elevation:       80,
		Characteristics: &domain.RaceCharacteristics{IsBQQualifier: true},
	}
	if score := service.ScoreRaceForGoals(race, goals); score <= 50 {
		return fmt.Errorf("score esperado > 50, got %d", score)
	}
	return nil
}

func checkDiversity() error {
	states := []string{"MA", "CA", "NY", "IL"}
	races := make([]domain.ScoredRace, 0, len(states))
	for i, st := range states {
		races = append(races, domain.ScoredRace{
			Race:           domain.Race{ID: fmt.Sprint(i), Category: domain.CategoryMarathon, State: st},
			RelevanceScore: float64(90 - i),
			MatchReasons:   []string{},
		})
	}
	got := service.ApplyDiversityRules(races)
	if got[2].RelevanceScore >= 88 {
		return fmt.Errorf("tercera maraton seguida sin penalizar: %v", got[2].RelevanceScore)
	}
	return nil
}

func checkTraitClamp() error {
	traits := service.ApplyQuizAnswer(
		domain.TraitVector{Adventurous: 95, Casual: 5},
		domain.TraitDelta{domain.TraitAdventurous: 20, domain.TraitCasual: -15},
	)
	if traits.Adventurous != domain.TraitMax || traits.Casual != domain.TraitMin {
		return fmt.Errorf("rasgos fuera de rango: %+v", traits)
	}
	return nil
}

// printSampleFeed muestra el top del feed de un trail seeker sobre el catalogo fijo.
func printSampleFeed(ctx context.Context) error {
	source := racesource.NewStaticSource(nil)
	races, err := source.Races(ctx)
	if err != nil {
		return err
	}
	traits := domain.TraitVector{Adventurous: 85, Competitive: 30, Social: 40, Endurance: 75, Explorer: 20, Casual: 30}
	profile := domain.RunnerProfile{
		ID:          "goal-check",
		Location:    &domain.RunnerLocation{City: "San Francisco", State: "CA", RadiusMiles: 100, Source: domain.LocationSourceManual},
		Personality: service.BuildPersonality(traits),
		Preferences: domain.DefaultRunnerPreferences(),
	}

	feed := service.PersonalizedFeed(races, profile, nil, time.Now().UTC())
	fmt.Printf("\n%s--- Feed de muestra (%s) ---%s\n", colorCyan, profile.Personality.PrimaryType, colorReset)
	for i, r := range feed {
		if i == 5 {
			break
		}
		fmt.Printf("[%d] %-32s %5.1f  %s\n", i+1, r.Name, r.RelevanceScore, service.MatchExplanation(r))
	}
	return nil
}
