package service

import (
	"errors"
	"testing"

	"getabib/internal/domain"
)

func TestCalculatePersonalityType(t *testing.T) {
	tests := []struct {
		name   string
		traits domain.TraitVector
		want   domain.PersonalityType
	}{
		{
			name:   "trail seeker wins over later rules",
			traits: domain.TraitVector{Adventurous: 85, Competitive: 30, Social: 40, Endurance: 75, Explorer: 20, Casual: 30},
			want:   domain.PersonalityTrailSeeker,
		},
		{
			name:   "pr hunter",
			traits: domain.TraitVector{Adventurous: 30, Competitive: 80, Social: 50, Endurance: 50, Explorer: 50, Casual: 50},
			want:   domain.PersonalityPRHunter,
		},
		{
			name:   "bucket lister",
			traits: domain.TraitVector{Adventurous: 50, Competitive: 50, Social: 50, Endurance: 50, Explorer: 75, Casual: 50},
			want:   domain.PersonalityBucketLister,
		},
		{
			name:   "community runner",
			traits: domain.TraitVector{Adventurous: 50, Competitive: 50, Social: 80, Endurance: 50, Explorer: 50, Casual: 60},
			want:   domain.PersonalityCommunityRunner,
		},
		{
			name:   "ultra curious",
			traits: domain.TraitVector{Adventurous: 50, Competitive: 50, Social: 50, Endurance: 90, Explorer: 50, Casual: 50},
			want:   domain.PersonalityUltraCurious,
		},
		{
			name:   "urban speedster",
			traits: domain.TraitVector{Adventurous: 45, Competitive: 65, Social: 50, Endurance: 50, Explorer: 50, Casual: 50},
			want:   domain.PersonalityUrbanSpeedster,
		},
		{
			name:   "neutral vector is newbie",
			traits: domain.DefaultTraitVector(),
			want:   domain.PersonalityNewbie,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculatePersonalityType(tt.traits); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestCalculatePersonalityType_TotalOverGrid(t *testing.T) {
	values := []int{0, 40, 50, 61, 71, 81, 100}
	for _, a := range values {
		for _, c := range values {
			for _, s := range values {
				for _, e := range values {
					v := domain.TraitVector{Adventurous: a, Competitive: c, Social: s, Endurance: e, Explorer: (a + c) / 2, Casual: (s + e) / 2}
					got := CalculatePersonalityType(v)
					if _, ok := personalityDescriptions[got]; !ok {
						t.Fatalf("unexpected type %q for %+v", got, v)
					}
				}
			}
		}
	}
}

func TestApplyQuizAnswer_ClampsEachStep(t *testing.T) {
	traits := domain.TraitVector{Adventurous: 95, Competitive: 5, Social: 50, Endurance: 50, Explorer: 50, Casual: 50}

	traits = ApplyQuizAnswer(traits, domain.TraitDelta{domain.TraitAdventurous: 20, domain.TraitCompetitive: -10})
	if traits.Adventurous != 100 || traits.Competitive != 0 {
		t.Fatalf("expected clamp to [0,100], got %+v", traits)
	}

	// El recorte se aplica por paso: bajar 30 desde 100 deja 70, no 85.
	traits = ApplyQuizAnswer(traits, domain.TraitDelta{domain.TraitAdventurous: -30})
	if traits.Adventurous != 70 {
		t.Fatalf("expected 70 after clamped step, got %d", traits.Adventurous)
	}

	same := ApplyQuizAnswer(traits, domain.TraitDelta{"speed": 40})
	if same != traits {
		t.Fatalf("expected unknown trait names ignored")
	}
}

func TestApplyQuizAnswers(t *testing.T) {
	answers := []QuizAnswer{
		{QuestionID: "terrain", OptionValue: "trail"},
		{QuestionID: "distance", OptionValue: "ultra"},
		{QuestionID: "travel", OptionValue: "local"},
	}
	traits, err := ApplyQuizAnswers(domain.DefaultTraitVector(), answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.TraitVector{Adventurous: 90, Competitive: 50, Social: 50, Endurance: 80, Explorer: 50, Casual: 50}
	if traits != want {
		t.Fatalf("expected %+v, got %+v", want, traits)
	}
	if got := CalculatePersonalityType(traits); got != domain.PersonalityTrailSeeker {
		t.Fatalf("expected trail seeker, got %s", got)
	}

	_, err = ApplyQuizAnswers(domain.DefaultTraitVector(), []QuizAnswer{
		{QuestionID: "terrain", OptionValue: "road"},
		{QuestionID: "terrain", OptionValue: "trail"},
	})
	if !errors.Is(err, ErrQuizAnswerRepeated) {
		t.Fatalf("expected ErrQuizAnswerRepeated, got %v", err)
	}

	_, err = ApplyQuizAnswers(domain.DefaultTraitVector(), []QuizAnswer{{QuestionID: "terrain", OptionValue: "lava"}})
	if !errors.Is(err, ErrUnknownQuizOption) {
		t.Fatalf("expected ErrUnknownQuizOption, got %v", err)
	}

	custom, err := ApplyQuizAnswers(domain.DefaultTraitVector(), []QuizAnswer{
		{QuestionID: "custom", Traits: domain.TraitDelta{domain.TraitSocial: 7}},
	})
	if err != nil || custom.Social != 57 {
		t.Fatalf("expected explicit delta applied, got %+v err=%v", custom, err)
	}
}

func TestCalculateRaceAffinities(t *testing.T) {
	got := CalculateRaceAffinities(domain.DefaultTraitVector())
	want := domain.RaceAffinities{
		domain.Affinity5K:          55,
		domain.Affinity10K:         60,
		domain.AffinityHalf:        65,
		domain.AffinityMarathon:    75,
		domain.AffinityUltra:       65,
		domain.AffinityTrail:       65,
		domain.AffinityRoad:        60,
		domain.AffinityThemed:      70,
		domain.AffinityDestination: 65,
		domain.AffinityLocal:       55,
	}
	for key, w := range want {
		if got[key] != w {
			t.Fatalf("%s: expected %d, got %d", key, w, got[key])
		}
	}

	maxed := CalculateRaceAffinities(domain.TraitVector{Adventurous: 100, Competitive: 100, Social: 100, Endurance: 100, Explorer: 100, Casual: 100})
	for key, v := range maxed {
		if v < 0 || v > 100 {
			t.Fatalf("%s out of range: %d", key, v)
		}
	}
}

func TestBuildPersonality(t *testing.T) {
	p := BuildPersonality(domain.DefaultTraitVector())
	if p.PrimaryType != domain.PersonalityNewbie {
		t.Fatalf("expected newbie, got %s", p.PrimaryType)
	}
	if p.SecondaryTypes == nil {
		t.Fatalf("expected non-nil secondary types")
	}
	if p.Description.Title == "" || len(p.RaceAffinities) != 10 {
		t.Fatalf("expected description and affinities, got %+v", p)
	}
	if d := PersonalityDescriptionFor("unknown"); d.Title != personalityDescriptions[domain.PersonalityNewbie].Title {
		t.Fatalf("expected newbie fallback, got %q", d.Title)
	}
}
