package racesource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"getabib/internal/domain"
	"getabib/internal/metrics"
	"getabib/internal/repository"
)

const (
	catalogCacheKey  = "races:catalog"
	defaultBatchSize = 5
	defaultCacheTTL  = 24 * time.Hour

	// DefaultBatchDelay es la pausa entre lotes de estados.
	DefaultBatchDelay = 500 * time.Millisecond
)

// AllStates son los 50 estados mas DC.
var AllStates = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA",
	"HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD",
	"MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ",
	"NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC",
	"SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
	"DC",
}

// Options configura el agregador. BatchDelay 0 consulta los lotes sin pausa.
// Fallback se sirve (sin cachear) cuando ninguna fuente devolvio carreras.
type Options struct {
	States     []string
	BatchSize  int
	BatchDelay time.Duration
	CacheTTL   time.Duration
	Fallback   []domain.Race
}

// Aggregator junta las fuentes, deduplica y cachea el catalogo en el KV store.
type Aggregator struct {
	logger  *zap.Logger
	byState StateFetcher
	sources []Fetcher
	cache   repository.KVStore
	opts    Options
	mu      sync.Mutex
	now     func() time.Time
}

type cachedCatalog struct {
	Races     []domain.Race `json:"races"`
	FetchedAt time.Time     `json:"fetchedAt"`
}

func NewAggregator(logger *zap.Logger, byState StateFetcher, sources []Fetcher, cache repository.KVStore, opts Options) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = repository.NewMemoryKVStore()
	}
	if len(opts.States) == 0 {
		opts.States = AllStates
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.BatchDelay < 0 {
		opts.BatchDelay = 0
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	return &Aggregator{
		logger:  logger,
		byState: byState,
		sources: sources,
		cache:   cache,
		opts:    opts,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Races devuelve el catalogo cacheado o lo arma si no hay cache vigente.
func (a *Aggregator) Races(ctx context.Context) ([]domain.Race, error) {
	if catalog, ok := a.loadCache(ctx); ok {
		return catalog.Races, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	// Otro llamador pudo haber llenado el cache mientras esperabamos.
	if catalog, ok := a.loadCache(ctx); ok {
		return catalog.Races, nil
	}
	return a.fetchAll(ctx)
}

// Refresh borra el cache y vuelve a consultar todas las fuentes.
func (a *Aggregator) Refresh(ctx context.Context) ([]domain.Race, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.ClearCache(ctx); err != nil {
		a.logger.Warn("race cache clear failed", zap.Error(err))
	}
	return a.fetchAll(ctx)
}

func (a *Aggregator) ClearCache(ctx context.Context) error {
	if err := a.cache.Delete(ctx, catalogCacheKey); err != nil {
		return fmt.Errorf("clear race cache: %w", err)
	}
	metrics.RaceCacheSize.Set(0)
	return nil
}

// Stats resume el catalogo cacheado; sin cache devuelve todo en cero.
func (a *Aggregator) Stats(ctx context.Context) (domain.RaceStats, error) {
	catalog, ok := a.loadCache(ctx)
	if !ok {
		return computeStats(nil, nil, a.now()), nil
	}
	return computeStats(catalog.Races, &catalog.FetchedAt, a.now()), nil
}

func (a *Aggregator) fetchAll(ctx context.Context) ([]domain.Race, error) {
	started := time.Now()
	all := make([]domain.Race, 0, 512)

	if a.byState != nil {
		races, err := a.fetchStates(ctx, a.opts.States)
		if err != nil {
			return nil, err
		}
		all = append(all, races...)
	}

	for _, src := range a.sources {
		races, err := src.Fetch(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			a.logger.Warn("race source fetch failed", zap.String("source", src.Name()), zap.Error(err))
			continue
		}
		all = append(all, races...)
	}

	processed := ProcessRaces(all)
	if len(processed) == 0 {
		a.logger.Warn("no races from upstream sources, serving fallback list", zap.Int("fallback", len(a.opts.Fallback)))
		fallback := make([]domain.Race, len(a.opts.Fallback))
		copy(fallback, a.opts.Fallback)
		sortByDate(fallback)
		return fallback, nil
	}

	a.storeCache(ctx, processed)
	a.logger.Info("race catalog aggregated",
		zap.Int("races", len(processed)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return processed, nil
}

// fetchStates consulta los estados en lotes concurrentes con una pausa entre lotes.
// Un estado que falla se registra y se omite.
func (a *Aggregator) fetchStates(ctx context.Context, states []string) ([]domain.Race, error) {
	out := make([]domain.Race, 0, len(states)*16)
	for start := 0; start < len(states); start += a.opts.BatchSize {
		end := min(start+a.opts.BatchSize, len(states))
		batch := states[start:end]
		results := make([][]domain.Race, len(batch))

		var g errgroup.Group
		for i, state := range batch {
			g.Go(func() error {
				races, err := a.byState.FetchState(ctx, state)
				if err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						return err
					}
					a.logger.Warn("state fetch failed",
						zap.String("source", a.byState.Name()),
						zap.String("state", state),
						zap.Error(err),
					)
					return nil
				}
				results[i] = races
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for _, races := range results {
			out = append(out, races...)
		}

		if end < len(states) && a.opts.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(a.opts.BatchDelay):
			}
		}
	}
	return out, nil
}

func (a *Aggregator) loadCache(ctx context.Context) (cachedCatalog, bool) {
	raw, ok, err := a.cache.Get(ctx, catalogCacheKey)
	if err != nil {
		a.logger.Warn("race cache read failed", zap.Error(err))
		metrics.RaceCacheLookupsTotal.WithLabelValues("miss").Inc()
		return cachedCatalog{}, false
	}
	if !ok {
		metrics.RaceCacheLookupsTotal.WithLabelValues("miss").Inc()
		return cachedCatalog{}, false
	}

	var catalog cachedCatalog
	if err := json.Unmarshal([]byte(raw), &catalog); err != nil {
		a.logger.Warn("race cache unreadable", zap.Error(err))
		metrics.RaceCacheLookupsTotal.WithLabelValues("miss").Inc()
		return cachedCatalog{}, false
	}
	if len(catalog.Races) == 0 || a.now().Sub(catalog.FetchedAt) > a.opts.CacheTTL {
		metrics.RaceCacheLookupsTotal.WithLabelValues("stale").Inc()
		return cachedCatalog{}, false
	}
	metrics.RaceCacheLookupsTotal.WithLabelValues("hit").Inc()
	return catalog, true
}

func (a *Aggregator) storeCache(ctx context.Context, races []domain.Race) {
	payload, err := json.Marshal(cachedCatalog{Races: races, FetchedAt: a.now()})
	if err != nil {
		a.logger.Warn("race cache encode failed", zap.Error(err))
		return
	}
	if err := a.cache.Set(ctx, catalogCacheKey, string(payload), a.opts.CacheTTL); err != nil {
		a.logger.Warn("race cache write failed", zap.Error(err))
		return
	}
	metrics.RaceCacheSize.Set(float64(len(races)))
}
