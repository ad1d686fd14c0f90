package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"getabib/internal/domain"
	"getabib/internal/repository"
)

var ErrRaceNotFound = errors.New("race not found")

// RaceLookup resuelve una carrera por id desde el catalogo vigente.
type RaceLookup interface {
	RaceByID(ctx context.Context, id string) (domain.Race, bool, error)
}

// SavedRaceService maneja la lista de carreras guardadas de cada corredor.
type SavedRaceService struct {
	logger *zap.Logger
	saved  repository.SavedRaceRepository
	races  RaceLookup
}

func NewSavedRaceService(logger *zap.Logger, saved repository.SavedRaceRepository, races RaceLookup) *SavedRaceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SavedRaceService{logger: logger, saved: saved, races: races}
}

// Save guarda una copia de la carrera para que la lista sobreviva a cambios del catalogo.
// Guardar dos veces la misma carrera no duplica.
func (s *SavedRaceService) Save(ctx context.Context, runnerID, raceID string) (domain.SavedRace, error) {
	race, err := s.lookup(ctx, raceID)
	if err != nil {
		return domain.SavedRace{}, err
	}
	saved := domain.SavedRace{
		ID:       uuid.NewString(),
		RunnerID: runnerID,
		Race:     race,
		SavedAt:  time.Now().UTC(),
	}
	if err := s.saved.Save(ctx, saved); err != nil {
		return domain.SavedRace{}, err
	}
	s.logger.Info("race saved", zap.String("runner_id", runnerID), zap.String("race_id", race.ID))
	return saved, nil
}

// Unsave devuelve false si la carrera no estaba guardada.
func (s *SavedRaceService) Unsave(ctx context.Context, runnerID, raceID string) (bool, error) {
	return s.saved.Delete(ctx, runnerID, strings.TrimSpace(raceID))
}

// Toggle guarda o quita la carrera y devuelve el estado final.
func (s *SavedRaceService) Toggle(ctx context.Context, runnerID, raceID string) (bool, error) {
	removed, err := s.Unsave(ctx, runnerID, raceID)
	if err != nil {
		return false, err
	}
	if removed {
		return false, nil
	}
	if _, err := s.Save(ctx, runnerID, raceID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *SavedRaceService) IsSaved(ctx context.Context, runnerID, raceID string) (bool, error) {
	list, err := s.saved.ListByRunnerID(ctx, runnerID)
	if err != nil {
		return false, err
	}
	for _, sr := range list {
		if sr.Race.ID == raceID {
			return true, nil
		}
	}
	return false, nil
}

func (s *SavedRaceService) List(ctx context.Context, runnerID string) ([]domain.SavedRace, error) {
	list, err := s.saved.ListByRunnerID(ctx, runnerID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.SavedRace{}
	}
	return list, nil
}

func (s *SavedRaceService) Clear(ctx context.Context, runnerID string) error {
	return s.saved.DeleteAll(ctx, runnerID)
}

func (s *SavedRaceService) lookup(ctx context.Context, raceID string) (domain.Race, error) {
	raceID = strings.TrimSpace(raceID)
	if raceID == "" || s.races == nil {
		return domain.Race{}, ErrRaceNotFound
	}
	race, ok, err := s.races.RaceByID(ctx, raceID)
	if err != nil {
		return domain.Race{}, err
	}
	if !ok {
		return domain.Race{}, ErrRaceNotFound
	}
	return race, nil
}
