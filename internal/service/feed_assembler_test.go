package service

import (
	"fmt"
	"math"
	"testing"
	"time"

	"getabib/internal/domain"
)

func scored(id, category, state string, score float64, reasons ...string) domain.ScoredRace {
	if reasons == nil {
		reasons = []string{}
	}
	return domain.ScoredRace{
		Race:           domain.Race{ID: id, Category: category, State: state},
		RelevanceScore: score,
		MatchReasons:   reasons,
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestApplyDiversityRules_CategoryStreak(t *testing.T) {
	states := []string{"MA", "CA", "NY", "IL", "TX", "GA"}
	races := make([]domain.ScoredRace, 0, len(states))
	for i, st := range states {
		races = append(races, scored(fmt.Sprint(i), domain.CategoryMarathon, st, float64(90-i)))
	}

	got := ApplyDiversityRules(races)
	want := []float64{90, 89, 88 * 0.8, 87 * 0.8, 86 * 0.8, 85 * 0.8}
	for i := range want {
		if !approx(got[i].RelevanceScore, want[i]) {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i].RelevanceScore)
		}
	}
	if got[0].ID != "0" || got[5].ID != "5" {
		t.Fatalf("expected relative order kept, got %s..%s", got[0].ID, got[5].ID)
	}
	if races[2].RelevanceScore != 88 {
		t.Fatalf("expected input slice untouched")
	}
}

func TestApplyDiversityRules_PenalizedRaceDropsBelowOtherCategory(t *testing.T) {
	races := []domain.ScoredRace{
		scored("m1", domain.CategoryMarathon, "MA", 90),
		scored("m2", domain.CategoryMarathon, "CA", 89),
		scored("m3", domain.CategoryMarathon, "NY", 88),
		scored("k1", domain.Category5K, "IL", 80),
	}
	got := ApplyDiversityRules(races)
	order := []string{got[0].ID, got[1].ID, got[2].ID, got[3].ID}
	want := []string{"m1", "m2", "k1", "m3"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestApplyDiversityRules_StateStreak(t *testing.T) {
	races := []domain.ScoredRace{
		scored("a", domain.Category5K, "CA", 90),
		scored("b", domain.Category10K, "CA", 80),
		scored("c", domain.CategoryHalf, "CA", 70),
		scored("d", domain.CategoryMarathon, "CA", 60),
	}
	got := ApplyDiversityRules(races)
	if !approx(got[3].RelevanceScore, 54) {
		t.Fatalf("expected fourth CA race penalized to 54, got %v", got[3].RelevanceScore)
	}
	if got[2].RelevanceScore != 70 {
		t.Fatalf("expected third race untouched, got %v", got[2].RelevanceScore)
	}
}

func TestPersonalizedFeed_ExcludesIDs(t *testing.T) {
	races := []domain.Race{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	feed := PersonalizedFeed(races, domain.RunnerProfile{}, []string{"2"}, scoringNow)
	if len(feed) != 2 {
		t.Fatalf("expected 2 races, got %d", len(feed))
	}
	for _, r := range feed {
		if r.ID == "2" {
			t.Fatalf("expected excluded race missing")
		}
	}
	if got := PersonalizedFeed(nil, domain.RunnerProfile{}, nil, scoringNow); len(got) != 0 {
		t.Fatalf("expected empty feed, got %v", got)
	}
}

func TestGetFeedSections(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	local := scored("local", domain.Category5K, "CA", 95, "Local race in CA")
	local.Date = "2026-03-20"
	featured := scored("featured", domain.CategoryMarathon, "MA", 94)
	featured.IsFeatured = true
	featured.Date = "2026-09-01"
	browsing := scored("browsing", domain.Category10K, "NY", 93, "Based on your browsing")
	past := scored("past", domain.CategoryHalf, "TX", 92, "Matches your Half Marathon preference")
	past.Date = "2026-02-01"

	feed := []domain.ScoredRace{local, featured, browsing, past}
	for i := 0; i < 12; i++ {
		feed = append(feed, scored(fmt.Sprintf("filler-%d", i), domain.Category10K, "WA", float64(50-i)))
	}

	sections := GetFeedSections(feed, now)

	if len(sections.ForYou) != 10 || sections.ForYou[0].ID != "local" {
		t.Fatalf("expected top 10 in forYou, got %d", len(sections.ForYou))
	}
	assertIDs(t, "nearYou", sections.NearYou, "local")
	assertIDs(t, "bucketList", sections.BucketList, "featured")
	assertIDs(t, "comingSoon", sections.ComingSoon, "local")
	assertIDs(t, "basedOnHistory", sections.BasedOnHistory, "browsing", "past")

	empty := GetFeedSections(nil, now)
	if empty.ForYou == nil || empty.NearYou == nil || len(empty.ForYou) != 0 {
		t.Fatalf("expected empty non-nil sections, got %+v", empty)
	}
}

func assertIDs(t *testing.T, name string, races []domain.ScoredRace, ids ...string) {
	t.Helper()
	if len(races) != len(ids) {
		t.Fatalf("%s: expected %v, got %d races", name, ids, len(races))
	}
	for i, id := range ids {
		if races[i].ID != id {
			t.Fatalf("%s: expected %v at %d, got %s", name, id, i, races[i].ID)
		}
	}
}

func TestMatchExplanation(t *testing.T) {
	tests := []struct {
		reasons []string
		want    string
	}{
		{reasons: nil, want: "Popular race in your area"},
		{reasons: []string{"Local race in CA"}, want: "Local race in CA"},
		{reasons: []string{"Local race in CA", "In your region", "Popular race"}, want: "Local race in CA • In your region"},
	}
	for _, tt := range tests {
		got := MatchExplanation(domain.ScoredRace{MatchReasons: tt.reasons})
		if got != tt.want {
			t.Fatalf("expected %q, got %q", tt.want, got)
		}
	}
}
