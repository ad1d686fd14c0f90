package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"getabib/internal/domain"
	"getabib/internal/repository"
)

var (
	ErrRunnerNotFound  = errors.New("runner not found")
	ErrInvalidDevice   = errors.New("invalid device id")
	ErrInvalidLocation = errors.New("location could not be resolved")
)

const (
	defaultRadiusMiles  = 100
	recentViewsForScore = 50
	maxDisplayNameLen   = 60
)

// RunnerService coordina el alta de dispositivos, la ubicacion, las preferencias y la
// conducta registrada de cada corredor.
type RunnerService struct {
	logger  *zap.Logger
	runners repository.RunnerRepository
	traits  repository.TraitRepository
	views   repository.RaceViewRepository
	saved   repository.SavedRaceRepository
}

func NewRunnerService(
	logger *zap.Logger,
	runners repository.RunnerRepository,
	traits repository.TraitRepository,
	views repository.RaceViewRepository,
	saved repository.SavedRaceRepository,
) *RunnerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunnerService{
		logger:  logger,
		runners: runners,
		traits:  traits,
		views:   views,
		saved:   saved,
	}
}

type RegisterRunnerInput struct {
	DeviceID    string
	DisplayName string
}

// Register es idempotente por dispositivo: un device_id ya registrado devuelve su corredor.
// created indica si la fila es nueva.
func (s *RunnerService) Register(ctx context.Context, input RegisterRunnerInput) (domain.Runner, bool, error) {
	if s.runners == nil {
		return domain.Runner{}, false, errors.New("runner service not configured")
	}

	deviceID := strings.TrimSpace(input.DeviceID)
	if deviceID == "" {
		return domain.Runner{}, false, ErrInvalidDevice
	}

	existing, err := s.runners.GetByDeviceID(ctx, deviceID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Runner{}, false, err
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if utf8.RuneCountInString(displayName) > maxDisplayNameLen {
		displayName = string([]rune(displayName)[:maxDisplayNameLen])
	}

	now := time.Now().UTC()
	runner := domain.Runner{
		ID:          uuid.NewString(),
		DeviceID:    deviceID,
		DisplayName: displayName,
		Preferences: domain.DefaultRunnerPreferences(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.runners.Create(ctx, runner); err != nil {
		return domain.Runner{}, false, err
	}

	s.logger.Info("runner registered", zap.String("runner_id", runner.ID))
	return runner, true, nil
}

func (s *RunnerService) Get(ctx context.Context, runnerID string) (domain.Runner, error) {
	runner, err := s.runners.GetByID(ctx, runnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Runner{}, ErrRunnerNotFound
		}
		return domain.Runner{}, err
	}
	return runner, nil
}

// LocationInput acepta coordenadas (GPS) o texto libre (manual). Si solo llega el
// radio se actualiza el radio de la ubicacion actual.
type LocationInput struct {
	City        string              `json:"city"`
	Coordinates *domain.Coordinates `json:"coordinates"`
	RadiusMiles int                 `json:"radius"`
}

func (s *RunnerService) UpdateLocation(ctx context.Context, runnerID string, input LocationInput) (domain.Runner, error) {
	runner, err := s.Get(ctx, runnerID)
	if err != nil {
		return domain.Runner{}, err
	}

	radius := input.RadiusMiles
	if radius <= 0 && runner.Location != nil {
		radius = runner.Location.RadiusMiles
	}
	if radius <= 0 {
		radius = defaultRadiusMiles
	}

	var location *domain.RunnerLocation
	switch {
	case input.Coordinates != nil:
		coords := *input.Coordinates
		location = &domain.RunnerLocation{Coordinates: &coords, RadiusMiles: radius, Source: domain.LocationSourceGPS}
		if match, ok := ReverseGeocode(coords); ok {
			location.City = match.City
			location.State = match.State
		}
	case strings.TrimSpace(input.City) != "":
		match, ok := GeocodeCity(input.City)
		if !ok {
			return domain.Runner{}, fmt.Errorf("%w: %s", ErrInvalidLocation, input.City)
		}
		coords := match.Coords
		location = &domain.RunnerLocation{
			City:        match.City,
			State:       match.State,
			Coordinates: &coords,
			RadiusMiles: radius,
			Source:      domain.LocationSourceManual,
		}
	case runner.Location != nil:
		updated := *runner.Location
		updated.RadiusMiles = radius
		location = &updated
	default:
		return domain.Runner{}, ErrInvalidLocation
	}

	if err := s.runners.UpdateLocation(ctx, runnerID, location); err != nil {
		return domain.Runner{}, err
	}
	runner.Location = location
	return runner, nil
}

func (s *RunnerService) ClearLocation(ctx context.Context, runnerID string) error {
	if err := s.runners.UpdateLocation(ctx, runnerID, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRunnerNotFound
		}
		return err
	}
	return nil
}

// UpdatePreferences descarta categorias desconocidas y recorta los puntajes de terreno a 0-100.
func (s *RunnerService) UpdatePreferences(ctx context.Context, runnerID string, prefs domain.RunnerPreferences) (domain.Runner, error) {
	runner, err := s.Get(ctx, runnerID)
	if err != nil {
		return domain.Runner{}, err
	}

	clean := domain.DefaultRunnerPreferences()
	for _, d := range prefs.PreferredDistances {
		d = strings.ToLower(strings.TrimSpace(d))
		if slices.Contains(domain.RaceCategories, d) && !slices.Contains(clean.PreferredDistances, d) {
			clean.PreferredDistances = append(clean.PreferredDistances, d)
		}
	}
	for terrain, v := range prefs.Terrain {
		clean.Terrain[strings.ToLower(terrain)] = clampTrait(v)
	}
	if prefs.MaxPrice > 0 {
		clean.MaxPrice = prefs.MaxPrice
	}
	if prefs.MaxTravelMiles > 0 {
		clean.MaxTravelMiles = prefs.MaxTravelMiles
	}

	if err := s.runners.UpdatePreferences(ctx, runnerID, clean); err != nil {
		return domain.Runner{}, err
	}
	runner.Preferences = clean
	return runner, nil
}

func (s *RunnerService) RecordRaceView(ctx context.Context, runnerID, raceID, category string) error {
	raceID = strings.TrimSpace(raceID)
	if raceID == "" {
		return errors.New("race id required")
	}
	view := domain.RaceView{
		RunnerID: runnerID,
		RaceID:   raceID,
		Category: strings.ToLower(strings.TrimSpace(category)),
		ViewedAt: time.Now().UTC(),
	}
	return s.views.Record(ctx, view)
}

// BuildProfile arma el RunnerProfile que consume el scorer: personalidad desde los
// rasgos guardados, preferencias explicitas y conducta (vistas y guardadas).
func (s *RunnerService) BuildProfile(ctx context.Context, runnerID string) (domain.RunnerProfile, error) {
	runner, err := s.Get(ctx, runnerID)
	if err != nil {
		return domain.RunnerProfile{}, err
	}

	rows, err := s.traits.FindByRunnerID(ctx, runnerID)
	if err != nil {
		return domain.RunnerProfile{}, fmt.Errorf("load traits: %w", err)
	}
	categoryViews, err := s.views.CategoryCounts(ctx, runnerID)
	if err != nil {
		return domain.RunnerProfile{}, fmt.Errorf("load category views: %w", err)
	}
	viewed, err := s.views.RecentRaceIDs(ctx, runnerID, recentViewsForScore)
	if err != nil {
		return domain.RunnerProfile{}, fmt.Errorf("load viewed races: %w", err)
	}
	saved, err := s.saved.ListByRunnerID(ctx, runnerID)
	if err != nil {
		return domain.RunnerProfile{}, fmt.Errorf("load saved races: %w", err)
	}

	savedIDs := make([]string, 0, len(saved))
	for _, sr := range saved {
		savedIDs = append(savedIDs, sr.Race.ID)
	}
	if viewed == nil {
		viewed = []string{}
	}

	return domain.RunnerProfile{
		ID:          runner.ID,
		Name:        runner.DisplayName,
		Location:    runner.Location,
		Personality: BuildPersonality(domain.TraitVectorFromRows(rows)),
		Preferences: runner.Preferences,
		Behavior: domain.RunnerBehavior{
			ViewedRaces:   viewed,
			SavedRaces:    savedIDs,
			CategoryViews: categoryViews,
		},
	}, nil
}
