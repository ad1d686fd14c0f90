package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"getabib/internal/domain"
	"getabib/internal/metrics"
	"getabib/internal/repository"
)

var ErrGoalTagUnknown = errors.New("goal tag unknown")

const goalsKeyPrefix = "goals:"

// ApplyGoalText re-analiza el texto. Los tags confirmados que siguen detectados se
// conservan y los nuevos se auto-confirman salvo que el corredor los haya descartado.
func ApplyGoalText(state domain.GoalsState, text string, now time.Time) domain.GoalsState {
	parsed := AnalyzeGoals(text)

	confirmed := make([]domain.GoalTag, 0, len(parsed.Tags))
	for _, ct := range state.ConfirmedTags {
		if parsed.HasTag(ct.ID) {
			confirmed = append(confirmed, ct)
		}
	}
	for _, t := range parsed.Tags {
		if slices.Contains(state.DismissedTagIDs, t.ID) || hasConfirmedTag(state.ConfirmedTags, t.ID) {
			continue
		}
		confirmed = append(confirmed, t)
	}

	dismissed := state.DismissedTagIDs
	if dismissed == nil {
		dismissed = []string{}
	}
	return domain.GoalsState{
		RawText:         text,
		ParsedGoals:     parsed,
		ConfirmedTags:   confirmed,
		DismissedTagIDs: dismissed,
		UpdatedAt:       &now,
	}
}

// ConfirmGoalTag agrega el tag a los confirmados y lo saca de los descartados.
// Si ya estaba confirmado el estado no cambia.
func ConfirmGoalTag(state domain.GoalsState, tag domain.GoalTag, now time.Time) domain.GoalsState {
	if hasConfirmedTag(state.ConfirmedTags, tag.ID) {
		return state
	}
	next := state
	next.ConfirmedTags = append(slices.Clone(state.ConfirmedTags), tag)
	next.DismissedTagIDs = slices.DeleteFunc(slices.Clone(state.DismissedTagIDs), func(id string) bool {
		return id == tag.ID
	})
	next.UpdatedAt = &now
	return next
}

// DismissGoalTag saca el tag de los confirmados y lo recuerda como descartado.
func DismissGoalTag(state domain.GoalsState, tagID string, now time.Time) domain.GoalsState {
	next := state
	next.ConfirmedTags = slices.DeleteFunc(slices.Clone(state.ConfirmedTags), func(t domain.GoalTag) bool {
		return t.ID == tagID
	})
	next.DismissedTagIDs = slices.Clone(state.DismissedTagIDs)
	if next.DismissedTagIDs == nil {
		next.DismissedTagIDs = []string{}
	}
	if !slices.Contains(next.DismissedTagIDs, tagID) {
		next.DismissedTagIDs = append(next.DismissedTagIDs, tagID)
	}
	next.UpdatedAt = &now
	return next
}

func hasConfirmedTag(tags []domain.GoalTag, id string) bool {
	return slices.ContainsFunc(tags, func(t domain.GoalTag) bool { return t.ID == id })
}

// GoalsService persiste el GoalsState de cada corredor en el KV store como JSON.
type GoalsService struct {
	logger *zap.Logger
	store  repository.KVStore
	now    func() time.Time
}

func NewGoalsService(logger *zap.Logger, store repository.KVStore) *GoalsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoalsService{
		logger: logger,
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func goalsKey(runnerID string) string {
	return goalsKeyPrefix + runnerID
}

// Get devuelve el estado guardado o el estado vacio si nunca se guardo.
func (s *GoalsService) Get(ctx context.Context, runnerID string) (domain.GoalsState, error) {
	raw, ok, err := s.store.Get(ctx, goalsKey(runnerID))
	if err != nil {
		return domain.GoalsState{}, fmt.Errorf("load goals: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return domain.EmptyGoalsState(), nil
	}
	state := domain.EmptyGoalsState()
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		// Documento ilegible: se arranca de cero.
		s.logger.Warn("discarding unreadable goals state", zap.String("runner_id", runnerID), zap.Error(err))
		return domain.EmptyGoalsState(), nil
	}
	return state, nil
}

func (s *GoalsService) save(ctx context.Context, runnerID string, state domain.GoalsState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode goals: %w", err)
	}
	if err := s.store.Set(ctx, goalsKey(runnerID), string(payload), 0); err != nil {
		return fmt.Errorf("save goals: %w", err)
	}
	return nil
}

func (s *GoalsService) UpdateGoalText(ctx context.Context, runnerID, text string) (domain.GoalsState, error) {
	current, err := s.Get(ctx, runnerID)
	if err != nil {
		return domain.GoalsState{}, err
	}
	next := ApplyGoalText(current, text, s.now())
	if err := s.save(ctx, runnerID, next); err != nil {
		return domain.GoalsState{}, err
	}

	for _, t := range next.ParsedGoals.Tags {
		metrics.GoalTagsDetectedTotal.WithLabelValues(t.ID).Inc()
	}
	s.logger.Info("goals updated",
		zap.String("runner_id", runnerID),
		zap.Int("tags", len(next.ParsedGoals.Tags)),
		zap.Int("confirmed", len(next.ConfirmedTags)),
	)
	return next, nil
}

// ConfirmTag acepta tags de la tabla o tags presentes en el ultimo analisis.
func (s *GoalsService) ConfirmTag(ctx context.Context, runnerID, tagID string) (domain.GoalsState, error) {
	current, err := s.Get(ctx, runnerID)
	if err != nil {
		return domain.GoalsState{}, err
	}
	tag, ok := GoalTagByID(tagID)
	if !ok {
		idx := slices.IndexFunc(current.ParsedGoals.Tags, func(t domain.GoalTag) bool { return t.ID == tagID })
		if idx < 0 {
			return domain.GoalsState{}, fmt.Errorf("%w: %s", ErrGoalTagUnknown, tagID)
		}
		tag = current.ParsedGoals.Tags[idx]
	}
	next := ConfirmGoalTag(current, tag, s.now())
	if err := s.save(ctx, runnerID, next); err != nil {
		return domain.GoalsState{}, err
	}
	return next, nil
}

func (s *GoalsService) DismissTag(ctx context.Context, runnerID, tagID string) (domain.GoalsState, error) {
	if strings.TrimSpace(tagID) == "" {
		return domain.GoalsState{}, fmt.Errorf("%w: empty id", ErrGoalTagUnknown)
	}
	current, err := s.Get(ctx, runnerID)
	if err != nil {
		return domain.GoalsState{}, err
	}
	next := DismissGoalTag(current, tagID, s.now())
	if err := s.save(ctx, runnerID, next); err != nil {
		return domain.GoalsState{}, err
	}
	return next, nil
}

// Clear borra la clave; el proximo Get devuelve el estado vacio.
func (s *GoalsService) Clear(ctx context.Context, runnerID string) error {
	if err := s.store.Delete(ctx, goalsKey(runnerID)); err != nil {
		return fmt.Errorf("clear goals: %w", err)
	}
	s.logger.Info("goals cleared", zap.String("runner_id", runnerID))
	return nil
}
