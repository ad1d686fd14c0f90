package service

import (
	"slices"
	"sort"
	"strings"
	"time"

	"getabib/internal/domain"
)

const (
	diversityWindow         = 5
	categoryRepeatLimit     = 2
	stateRepeatLimit        = 3
	categoryRepeatPenalty   = 0.8
	stateRepeatPenalty      = 0.9
	forYouSectionSize       = 10
	secondarySectionSize    = 6
	comingSoonWindowDays    = 60
	defaultMatchExplanation = "Popular race in your area"
)

// SortByRelevance ordena de mayor a menor relevancia conservando el orden de empates.
func SortByRelevance(races []domain.ScoredRace) {
	sort.SliceStable(races, func(i, j int) bool {
		return races[i].RelevanceScore > races[j].RelevanceScore
	})
}

func countIn(window []string, value string) int {
	n := 0
	for _, v := range window {
		if v == value {
			n++
		}
	}
	return n
}

// ApplyDiversityRules recorre la lista ya ordenada penalizando rachas de la misma
// categoria (x0.8 si aparece 2+ veces en las ultimas 5) y del mismo estado (x0.9 si 3+),
// y reordena una sola vez al final. Es una pasada greedy: una carrera penalizada no se
// reevalua despues del reordenamiento.
func ApplyDiversityRules(races []domain.ScoredRace) []domain.ScoredRace {
	result := make([]domain.ScoredRace, 0, len(races))
	recentCategories := make([]string, 0, diversityWindow+1)
	recentStates := make([]string, 0, diversityWindow+1)

	for _, race := range races {
		if countIn(recentCategories, race.Category) >= categoryRepeatLimit {
			race.RelevanceScore *= categoryRepeatPenalty
		}
		if countIn(recentStates, race.State) >= stateRepeatLimit {
			race.RelevanceScore *= stateRepeatPenalty
		}
		result = append(result, race)

		recentCategories = append(recentCategories, race.Category)
		recentStates = append(recentStates, race.State)
		if len(recentCategories) > diversityWindow {
			recentCategories = recentCategories[1:]
		}
		if len(recentStates) > diversityWindow {
			recentStates = recentStates[1:]
		}
	}

	SortByRelevance(result)
	return result
}

// PersonalizedFeed excluye ids ya vistos, puntua, ordena y aplica diversidad.
func PersonalizedFeed(races []domain.Race, profile domain.RunnerProfile, excludeIDs []string, now time.Time) []domain.ScoredRace {
	scored := make([]domain.ScoredRace, 0, len(races))
	for _, race := range races {
		if slices.Contains(excludeIDs, race.ID) {
			continue
		}
		scored = append(scored, ScoreRace(race, profile, now))
	}
	SortByRelevance(scored)
	return ApplyDiversityRules(scored)
}

func anyReasonContains(race domain.ScoredRace, needles ...string) bool {
	for _, reason := range race.MatchReasons {
		for _, n := range needles {
			if strings.Contains(reason, n) {
				return true
			}
		}
	}
	return false
}

func takeMatching(races []domain.ScoredRace, limit int, keep func(domain.ScoredRace) bool) []domain.ScoredRace {
	out := make([]domain.ScoredRace, 0, limit)
	for _, r := range races {
		if len(out) == limit {
			break
		}
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// GetFeedSections parte el feed ya diversificado en secciones. Una carrera puede
// aparecer en mas de una seccion.
func GetFeedSections(feed []domain.ScoredRace, now time.Time) domain.FeedSections {
	forYou := feed
	if len(forYou) > forYouSectionSize {
		forYou = forYou[:forYouSectionSize]
	}

	sections := domain.FeedSections{ForYou: append([]domain.ScoredRace{}, forYou...)}
	sections.NearYou = takeMatching(feed, secondarySectionSize, func(r domain.ScoredRace) bool {
		return anyReasonContains(r, "Local", "your region")
	})
	sections.BucketList = takeMatching(feed, secondarySectionSize, func(r domain.ScoredRace) bool {
		return r.IsFeatured || anyReasonContains(r, "bucket list", "Bucket list")
	})
	sections.ComingSoon = takeMatching(feed, secondarySectionSize, func(r domain.ScoredRace) bool {
		days, ok := r.DaysUntil(now)
		return ok && days > 0 && days <= comingSoonWindowDays
	})
	sections.BasedOnHistory = takeMatching(feed, secondarySectionSize, func(r domain.ScoredRace) bool {
		return anyReasonContains(r, "browsing", "preference")
	})
	return sections
}

// MatchExplanation arma el texto "por que te va a gustar" a partir de las razones.
func MatchExplanation(race domain.ScoredRace) string {
	switch len(race.MatchReasons) {
	case 0:
		return defaultMatchExplanation
	case 1:
		return race.MatchReasons[0]
	}
	return strings.Join(race.MatchReasons[:2], " • ")
}
