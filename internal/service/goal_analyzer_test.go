package service

import (
	"reflect"
	"testing"

	"getabib/internal/domain"
)

func tagIDs(goals domain.ParsedGoals) []string {
	ids := make([]string, 0, len(goals.Tags))
	for _, t := range goals.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestAnalyzeGoals_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantTags    []string
		wantLevel   domain.ExperienceLevel
		wantTarget  string
		distances   []string
		terrain     []string
		specialGoal string
	}{
		{
			name:        "boston qualifier with pr and trail",
			text:        "I want to qualify for Boston. My marathon PR is 3:45. I love trail races.",
			wantTags:    []string{"bq", "pr-goal", "pref-marathon", "pref-trail"},
			wantLevel:   domain.ExperienceIntermediate,
			wantTarget:  "3:45",
			distances:   []string{"marathon"},
			terrain:     []string{"trail"},
			specialGoal: "bq",
		},
		{
			name:      "first 5k beginner",
			text:      "This is my first 5k, total beginner",
			wantTags:  []string{"first-race", "pref-5k"},
			wantLevel: domain.ExperienceBeginner,
			distances: []string{"fiveK"},
		},
		{
			name:      "ultra is advanced",
			text:      "thinking about my first ultra",
			wantTags:  []string{"pref-ultra"},
			wantLevel: domain.ExperienceAdvanced,
			distances: []string{"ultra"},
		},
		{
			name:       "last time rule wins",
			text:       "sub-3 or maybe sub 4 marathon",
			wantTags:   []string{"sub-3", "sub-4", "pref-marathon"},
			wantLevel:  domain.ExperienceAdvanced,
			wantTarget: "Sub-4:00 Marathon",
			distances:  []string{"marathon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goals := AnalyzeGoals(tt.text)

			if got := tagIDs(goals); !reflect.DeepEqual(got, tt.wantTags) {
				t.Fatalf("tags: expected %v, got %v", tt.wantTags, got)
			}
			if goals.ExperienceLevel == nil || *goals.ExperienceLevel != tt.wantLevel {
				t.Fatalf("expected level %q, got %v", tt.wantLevel, goals.ExperienceLevel)
			}
			if tt.wantTarget == "" {
				if goals.TargetTime != nil {
					t.Fatalf("expected no target time, got %q", *goals.TargetTime)
				}
			} else if goals.TargetTime == nil || *goals.TargetTime != tt.wantTarget {
				t.Fatalf("expected target %q, got %v", tt.wantTarget, goals.TargetTime)
			}
			if tt.distances != nil && !reflect.DeepEqual(goals.PreferredDistances, tt.distances) {
				t.Fatalf("distances: expected %v, got %v", tt.distances, goals.PreferredDistances)
			}
			if tt.terrain != nil && !reflect.DeepEqual(goals.PreferredTerrain, tt.terrain) {
				t.Fatalf("terrain: expected %v, got %v", tt.terrain, goals.PreferredTerrain)
			}
			if tt.specialGoal != "" && !goals.HasSpecialGoal(tt.specialGoal) {
				t.Fatalf("expected special goal %q in %v", tt.specialGoal, goals.SpecialGoals)
			}
		})
	}
}

func TestAnalyzeGoals_EmptyText(t *testing.T) {
	for _, text := range []string{"", "   ", "nothing relevant here"} {
		goals := AnalyzeGoals(text)
		if goals.Tags == nil || len(goals.Tags) != 0 {
			t.Fatalf("%q: expected empty non-nil tags, got %v", text, goals.Tags)
		}
		if goals.PreferredDistances == nil || goals.PreferredTerrain == nil ||
			goals.CoursePreferences == nil || goals.SpecialGoals == nil {
			t.Fatalf("%q: expected initialized lists", text)
		}
		if goals.ExperienceLevel != nil {
			t.Fatalf("%q: expected nil level, got %v", text, *goals.ExperienceLevel)
		}
		if goals.TargetTime != nil {
			t.Fatalf("%q: expected nil target, got %v", text, *goals.TargetTime)
		}
	}
}

func TestAnalyzeGoals_ClockFallback(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "aiming for 04:30 this fall", want: "4:30"},
		{text: "finish by 13:05", want: ""},
		{text: "goal 12:59 then", want: "12:59"},
		{text: "gun time 0:45", want: ""},
	}
	for _, tt := range tests {
		goals := AnalyzeGoals(tt.text)
		switch {
		case tt.want == "" && goals.TargetTime != nil:
			t.Fatalf("%q: expected no target, got %q", tt.text, *goals.TargetTime)
		case tt.want != "" && (goals.TargetTime == nil || *goals.TargetTime != tt.want):
			t.Fatalf("%q: expected %q, got %v", tt.text, tt.want, goals.TargetTime)
		}
	}
}

func TestAnalyzeGoals_HalfLookahead(t *testing.T) {
	if !AnalyzeGoals("a half in spring").HasTag("pref-half") {
		t.Fatalf("expected bare half to match")
	}
	if AnalyzeGoals("half the time I walk").HasTag("pref-half") {
		t.Fatalf("expected half followed by time not to match")
	}
}

func TestGoalPatterns_ASCIIDigits(t *testing.T) {
	if AnalyzeGoals("meta ٣:٤٥").TargetTime != nil {
		t.Fatalf("expected no target time from non-ASCII digits")
	}
	ok, err := clockTimePattern.MatchString("٣:٤٥")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if ok {
		t.Fatalf("expected non-ASCII digits not to match clock time")
	}
}

func TestAnalyzeGoals_DeterministicAndUnique(t *testing.T) {
	text := "Bucket list majors: Boston marathon, scenic coastal half marathon, charity 10k, trail ultra 50k"
	first := AnalyzeGoals(text)
	for i := 0; i < 5; i++ {
		if again := AnalyzeGoals(text); !reflect.DeepEqual(first, again) {
			t.Fatalf("expected deterministic output")
		}
	}
	seen := map[string]bool{}
	for _, id := range tagIDs(first) {
		if seen[id] {
			t.Fatalf("duplicate tag %q", id)
		}
		seen[id] = true
	}
}

func TestScoreRaceForGoals(t *testing.T) {
	bqMarathon := domain.Race{
		Category:        domain.CategoryMarathon,
		Terrain:         domain.TerrainRoad,
		Elevation:       80,
		Characteristics: &domain.RaceCharacteristics{IsBQQualifier: true},
	}

	if got := ScoreRaceForGoals(bqMarathon, domain.EmptyParsedGoals()); got != 50 {
		t.Fatalf("expected neutral 50 without tags, got %d", got)
	}

	bqOnly := domain.EmptyParsedGoals()
	tag, _ := GoalTagByID("bq")
	bqOnly.Tags = []domain.GoalTag{tag}
	bqOnly.SpecialGoals = []string{"bq"}
	if got := ScoreRaceForGoals(bqMarathon, bqOnly); got <= 50 {
		t.Fatalf("expected BQ bonus above 50, got %d", got)
	}
	if got := ScoreRaceForGoals(bqMarathon, bqOnly); got != 100 {
		t.Fatalf("expected capped 100, got %d", got)
	}

	trailGoals := AnalyzeGoals("trail marathon")
	if got := ScoreRaceForGoals(bqMarathon, trailGoals); got != 60 {
		t.Fatalf("expected distance-only match 30/50 -> 60, got %d", got)
	}

	beginner := AnalyzeGoals("my first race")
	fiveK := domain.Race{Category: domain.Category5K, Characteristics: &domain.RaceCharacteristics{IsBeginnerFriendly: true}}
	if got := ScoreRaceForGoals(fiveK, beginner); got != 100 {
		t.Fatalf("expected beginner 5k capped at 100, got %d", got)
	}

	for _, race := range []domain.Race{{}, bqMarathon, fiveK} {
		for _, goals := range []domain.ParsedGoals{bqOnly, trailGoals, beginner} {
			if got := ScoreRaceForGoals(race, goals); got < 0 || got > 100 {
				t.Fatalf("score out of range: %d", got)
			}
		}
	}
}
