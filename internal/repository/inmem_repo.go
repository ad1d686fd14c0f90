package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"getabib/internal/domain"
)

// Implementaciones en memoria con la misma semantica que las de Postgres
// (pgx.ErrNoRows cuando no hay fila). Las usa el CLI y los tests.

type MemoryRunnerRepository struct {
	mu      sync.RWMutex
	runners map[string]domain.Runner
}

func NewMemoryRunnerRepository() *MemoryRunnerRepository {
	return &MemoryRunnerRepository{runners: make(map[string]domain.Runner)}
}

func (r *MemoryRunnerRepository) Create(_ context.Context, runner domain.Runner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runners[runner.ID] = runner
	return nil
}

func (r *MemoryRunnerRepository) GetByID(_ context.Context, id string) (domain.Runner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	runner, ok := r.runners[id]
	if !ok {
		return domain.Runner{}, pgx.ErrNoRows
	}
	return runner, nil
}

func (r *MemoryRunnerRepository) GetByDeviceID(_ context.Context, deviceID string) (domain.Runner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, runner := range r.runners {
		if runner.DeviceID == deviceID {
			return runner, nil
		}
	}
	return domain.Runner{}, pgx.ErrNoRows
}

func (r *MemoryRunnerRepository) UpdateLocation(_ context.Context, id string, location *domain.RunnerLocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	runner, ok := r.runners[id]
	if !ok {
		return pgx.ErrNoRows
	}
	runner.Location = location
	runner.UpdatedAt = time.Now().UTC()
	r.runners[id] = runner
	return nil
}

func (r *MemoryRunnerRepository) UpdatePreferences(_ context.Context, id string, prefs domain.RunnerPreferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	runner, ok := r.runners[id]
	if !ok {
		return pgx.ErrNoRows
	}
	runner.Preferences = prefs
	runner.UpdatedAt = time.Now().UTC()
	r.runners[id] = runner
	return nil
}

type MemoryTraitRepository struct {
	mu     sync.RWMutex
	traits map[string]map[string]domain.Trait
}

func NewMemoryTraitRepository() *MemoryTraitRepository {
	return &MemoryTraitRepository{traits: make(map[string]map[string]domain.Trait)}
}

func (r *MemoryTraitRepository) Upsert(_ context.Context, trait domain.Trait) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byName, ok := r.traits[trait.RunnerID]
	if !ok {
		byName = make(map[string]domain.Trait)
		r.traits[trait.RunnerID] = byName
	}
	byName[trait.Trait] = trait
	return nil
}

func (r *MemoryTraitRepository) UpsertVector(ctx context.Context, runnerID string, traits domain.TraitVector) error {
	for _, row := range traits.Rows(runnerID, time.Now().UTC()) {
		if err := r.Upsert(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func (r *MemoryTraitRepository) FindByRunnerID(_ context.Context, runnerID string) ([]domain.Trait, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Trait, 0, len(r.traits[runnerID]))
	for _, t := range r.traits[runnerID] {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Trait < out[j].Trait })
	return out, nil
}

type MemorySavedRaceRepository struct {
	mu    sync.RWMutex
	saved map[string][]domain.SavedRace
}

func NewMemorySavedRaceRepository() *MemorySavedRaceRepository {
	return &MemorySavedRaceRepository{saved: make(map[string][]domain.SavedRace)}
}

func (r *MemorySavedRaceRepository) Save(_ context.Context, saved domain.SavedRace) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.saved[saved.RunnerID] {
		if s.Race.ID == saved.Race.ID {
			return nil
		}
	}
	r.saved[saved.RunnerID] = append(r.saved[saved.RunnerID], saved)
	return nil
}

func (r *MemorySavedRaceRepository) Delete(_ context.Context, runnerID, raceID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.saved[runnerID]
	for i, s := range list {
		if s.Race.ID == raceID {
			r.saved[runnerID] = append(list[:i:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *MemorySavedRaceRepository) DeleteAll(_ context.Context, runnerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.saved, runnerID)
	return nil
}

func (r *MemorySavedRaceRepository) ListByRunnerID(_ context.Context, runnerID string) ([]domain.SavedRace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.saved[runnerID]
	out := make([]domain.SavedRace, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, list[i])
	}
	return out, nil
}

type MemoryRaceViewRepository struct {
	mu    sync.RWMutex
	views map[string][]domain.RaceView
}

func NewMemoryRaceViewRepository() *MemoryRaceViewRepository {
	return &MemoryRaceViewRepository{views: make(map[string][]domain.RaceView)}
}

func (r *MemoryRaceViewRepository) Record(_ context.Context, view domain.RaceView) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[view.RunnerID] = append(r.views[view.RunnerID], view)
	return nil
}

func (r *MemoryRaceViewRepository) CategoryCounts(_ context.Context, runnerID string) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int)
	for _, v := range r.views[runnerID] {
		counts[v.Category]++
	}
	return counts, nil
}

func (r *MemoryRaceViewRepository) RecentRaceIDs(_ context.Context, runnerID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	views := r.views[runnerID]
	seen := make(map[string]struct{})
	var ids []string
	for i := len(views) - 1; i >= 0 && len(ids) < limit; i-- {
		id := views[i].RaceID
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
