package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"getabib/internal/domain"
	"getabib/internal/metrics"
	"getabib/internal/repository"
)

var ErrQuizEmpty = errors.New("quiz answers required")

// ProfileService guarda el resultado del cuestionario y deriva la personalidad.
type ProfileService struct {
	logger *zap.Logger
	traits repository.TraitRepository
}

func NewProfileService(logger *zap.Logger, traits repository.TraitRepository) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{logger: logger, traits: traits}
}

// SubmitQuiz parte siempre del vector neutro, asi que repetir el cuestionario reemplaza
// los rasgos anteriores.
func (s *ProfileService) SubmitQuiz(ctx context.Context, runnerID string, answers []QuizAnswer) (domain.RunnerPersonality, error) {
	if len(answers) == 0 {
		return domain.RunnerPersonality{}, ErrQuizEmpty
	}

	traits, err := ApplyQuizAnswers(domain.DefaultTraitVector(), answers)
	if err != nil {
		return domain.RunnerPersonality{}, err
	}
	if err := s.traits.UpsertVector(ctx, runnerID, traits); err != nil {
		return domain.RunnerPersonality{}, fmt.Errorf("save traits: %w", err)
	}

	personality := BuildPersonality(traits)
	metrics.QuizSubmissionsTotal.WithLabelValues(string(personality.PrimaryType)).Inc()
	s.logger.Info("quiz submitted",
		zap.String("runner_id", runnerID),
		zap.String("personality", string(personality.PrimaryType)),
		zap.Int("answers", len(answers)),
	)
	return personality, nil
}

// GetPersonality devuelve la personalidad actual; sin cuestionario es la del vector neutro.
func (s *ProfileService) GetPersonality(ctx context.Context, runnerID string) (domain.RunnerPersonality, error) {
	rows, err := s.traits.FindByRunnerID(ctx, runnerID)
	if err != nil {
		return domain.RunnerPersonality{}, fmt.Errorf("load traits: %w", err)
	}
	return BuildPersonality(domain.TraitVectorFromRows(rows)), nil
}

// ResetPersonality vuelve todos los rasgos a 50.
func (s *ProfileService) ResetPersonality(ctx context.Context, runnerID string) (domain.RunnerPersonality, error) {
	traits := domain.DefaultTraitVector()
	if err := s.traits.UpsertVector(ctx, runnerID, traits); err != nil {
		return domain.RunnerPersonality{}, fmt.Errorf("reset traits: %w", err)
	}
	return BuildPersonality(traits), nil
}
