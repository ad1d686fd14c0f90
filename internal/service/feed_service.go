package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"go.uber.org/zap"

	"getabib/internal/domain"
	"getabib/internal/metrics"
)

var ErrRefreshRateLimited = errors.New("race refresh rate limited")

const defaultScoringWorkers = 4

// RaceSource es el catalogo de carreras (agregador con cache o lista fija).
type RaceSource interface {
	Races(ctx context.Context) ([]domain.Race, error)
	Refresh(ctx context.Context) ([]domain.Race, error)
	Stats(ctx context.Context) (domain.RaceStats, error)
}

// ProfileBuilder arma el perfil explicito que recibe el scorer.
type ProfileBuilder interface {
	BuildProfile(ctx context.Context, runnerID string) (domain.RunnerProfile, error)
}

// GoalsReader lee el estado de metas persistido.
type GoalsReader interface {
	Get(ctx context.Context, runnerID string) (domain.GoalsState, error)
}

type FeedOptions struct {
	ExcludeIDs []string
	Limit      int
}

// FeedService une catalogo, perfil y metas para producir el feed personalizado.
type FeedService struct {
	logger   *zap.Logger
	source   RaceSource
	profiles ProfileBuilder
	goals    GoalsReader
	limiter  RefreshRateLimiter
	workers  int
	now      func() time.Time
}

func NewFeedService(
	logger *zap.Logger,
	source RaceSource,
	profiles ProfileBuilder,
	goals GoalsReader,
	limiter RefreshRateLimiter,
	workers int,
) *FeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limiter == nil {
		limiter = NewMemoryRefreshRateLimiter(time.Hour, 3)
	}
	if workers <= 0 {
		workers = defaultScoringWorkers
	}
	return &FeedService{
		logger:   logger,
		source:   source,
		profiles: profiles,
		goals:    goals,
		limiter:  limiter,
		workers:  workers,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Feed puntua el catalogo en paralelo, ordena, aplica diversidad y, si el corredor
// tiene metas confirmadas, adjunta goalScore a cada carrera.
func (s *FeedService) Feed(ctx context.Context, runnerID string, opts FeedOptions) ([]domain.ScoredRace, error) {
	started := time.Now()
	feed, _, err := s.buildFeed(ctx, runnerID, opts.ExcludeIDs)
	if err != nil {
		return nil, err
	}
	if opts.Limit > 0 && len(feed) > opts.Limit {
		feed = feed[:opts.Limit]
	}
	metrics.ObserveFeedBuild("feed", started)
	return feed, nil
}

func (s *FeedService) Sections(ctx context.Context, runnerID string) (domain.FeedSections, error) {
	started := time.Now()
	feed, _, err := s.buildFeed(ctx, runnerID, nil)
	if err != nil {
		return domain.FeedSections{}, err
	}
	metrics.ObserveFeedBuild("sections", started)
	return GetFeedSections(feed, s.now()), nil
}

// GoalFeed ordena el feed por goalScore (desempate por relevancia). Sin metas
// confirmadas devuelve el feed por relevancia.
func (s *FeedService) GoalFeed(ctx context.Context, runnerID string, limit int) ([]domain.ScoredRace, error) {
	started := time.Now()
	feed, hasGoals, err := s.buildFeed(ctx, runnerID, nil)
	if err != nil {
		return nil, err
	}
	if hasGoals {
		sort.SliceStable(feed, func(i, j int) bool {
			gi, gj := *feed[i].GoalScore, *feed[j].GoalScore
			if gi != gj {
				return gi > gj
			}
			return feed[i].RelevanceScore > feed[j].RelevanceScore
		})
	}
	if limit > 0 && len(feed) > limit {
		feed = feed[:limit]
	}
	metrics.ObserveFeedBuild("goals", started)
	return feed, nil
}

func (s *FeedService) buildFeed(ctx context.Context, runnerID string, excludeIDs []string) ([]domain.ScoredRace, bool, error) {
	profile, err := s.profiles.BuildProfile(ctx, runnerID)
	if err != nil {
		return nil, false, err
	}
	races, err := s.source.Races(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("load races: %w", err)
	}

	candidates := make([]domain.Race, 0, len(races))
	for _, r := range races {
		if !slices.Contains(excludeIDs, r.ID) {
			candidates = append(candidates, r)
		}
	}

	scored, err := ScoreRaces(ctx, candidates, profile, s.now(), s.workers)
	if err != nil {
		return nil, false, err
	}
	metrics.RacesScoredTotal.Add(float64(len(scored)))
	SortByRelevance(scored)
	feed := ApplyDiversityRules(scored)

	hasGoals := false
	if s.goals != nil {
		state, err := s.goals.Get(ctx, runnerID)
		if err != nil {
			// Sin metas el feed sigue siendo valido.
			s.logger.Warn("goals unavailable for feed", zap.String("runner_id", runnerID), zap.Error(err))
		} else if state.HasGoals() {
			hasGoals = true
			for i := range feed {
				g := ScoreRaceForGoals(feed[i].Race, state.ParsedGoals)
				feed[i].GoalScore = &g
			}
		}
	}

	s.logger.Debug("feed built",
		zap.String("runner_id", runnerID),
		zap.Int("candidates", len(candidates)),
		zap.Bool("goals", hasGoals),
	)
	return feed, hasGoals, nil
}

// Races devuelve el catalogo filtrado, sin personalizar.
func (s *FeedService) Races(ctx context.Context, filters domain.RaceFilters) ([]domain.Race, error) {
	races, err := s.source.Races(ctx)
	if err != nil {
		return nil, fmt.Errorf("load races: %w", err)
	}
	return FilterRaces(races, filters), nil
}

func (s *FeedService) RaceByID(ctx context.Context, id string) (domain.Race, bool, error) {
	races, err := s.source.Races(ctx)
	if err != nil {
		return domain.Race{}, false, fmt.Errorf("load races: %w", err)
	}
	for _, r := range races {
		if r.ID == id {
			return r, true, nil
		}
	}
	return domain.Race{}, false, nil
}

func (s *FeedService) Stats(ctx context.Context) (domain.RaceStats, error) {
	return s.source.Stats(ctx)
}

// Refresh fuerza la recarga del catalogo, limitado por corredor.
func (s *FeedService) Refresh(ctx context.Context, runnerID string) (int, error) {
	if !s.limiter.Allow(runnerID) {
		return 0, ErrRefreshRateLimited
	}
	races, err := s.source.Refresh(ctx)
	if err != nil {
		return 0, fmt.Errorf("refresh races: %w", err)
	}
	s.logger.Info("races refreshed", zap.String("runner_id", runnerID), zap.Int("races", len(races)))
	return len(races), nil
}
