package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"getabib/internal/domain"
)

// RunnerRepository define el contrato de persistencia para corredores.
type RunnerRepository interface {
	Create(ctx context.Context, runner domain.Runner) error
	GetByID(ctx context.Context, id string) (domain.Runner, error)
	GetByDeviceID(ctx context.Context, deviceID string) (domain.Runner, error)
	UpdateLocation(ctx context.Context, id string, location *domain.RunnerLocation) error
	UpdatePreferences(ctx context.Context, id string, prefs domain.RunnerPreferences) error
}

// PgRunnerRepository implementa RunnerRepository usando pgxpool.
type PgRunnerRepository struct {
	pool *pgxpool.Pool
}

func NewPgRunnerRepository(pool *pgxpool.Pool) *PgRunnerRepository {
	return &PgRunnerRepository{pool: pool}
}

func (r *PgRunnerRepository) Create(ctx context.Context, runner domain.Runner) error {
	const query = `
		INSERT INTO runners (id, device_id, display_name, location, preferences, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	location, err := marshalNullable(runner.Location)
	if err != nil {
		return err
	}
	prefs, err := json.Marshal(runner.Preferences)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		runner.ID,
		runner.DeviceID,
		runner.DisplayName,
		location,
		prefs,
		runner.CreatedAt,
		runner.UpdatedAt,
	)
	return err
}

func (r *PgRunnerRepository) GetByID(ctx context.Context, id string) (domain.Runner, error) {
	const query = `
		SELECT id, device_id, display_name, location, preferences, created_at, updated_at
		FROM runners
		WHERE id = $1
	`
	return r.scanOne(ctx, query, id)
}

func (r *PgRunnerRepository) GetByDeviceID(ctx context.Context, deviceID string) (domain.Runner, error) {
	const query = `
		SELECT id, device_id, display_name, location, preferences, created_at, updated_at
		FROM runners
		WHERE device_id = $1
	`
	return r.scanOne(ctx, query, deviceID)
}

func (r *PgRunnerRepository) UpdateLocation(ctx context.Context, id string, location *domain.RunnerLocation) error {
	const query = `
		UPDATE runners SET location = $2, updated_at = NOW()
		WHERE id = $1
	`
	payload, err := marshalNullable(location)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, query, id, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgRunnerRepository) UpdatePreferences(ctx context.Context, id string, prefs domain.RunnerPreferences) error {
	const query = `
		UPDATE runners SET preferences = $2, updated_at = NOW()
		WHERE id = $1
	`
	payload, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	tag, err := r.pool.Exec(ctx, query, id, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgRunnerRepository) scanOne(ctx context.Context, query string, arg string) (domain.Runner, error) {
	var (
		runner      domain.Runner
		displayName *string
		location    []byte
		prefs       []byte
	)
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&runner.ID,
		&runner.DeviceID,
		&displayName,
		&location,
		&prefs,
		&runner.CreatedAt,
		&runner.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Runner{}, err
	}
	if err != nil {
		return domain.Runner{}, err
	}
	if displayName != nil {
		runner.DisplayName = *displayName
	}
	if len(location) > 0 {
		var loc domain.RunnerLocation
		if err := json.Unmarshal(location, &loc); err != nil {
			return domain.Runner{}, fmt.Errorf("decode location: %w", err)
		}
		runner.Location = &loc
	}
	runner.Preferences = domain.DefaultRunnerPreferences()
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &runner.Preferences); err != nil {
			return domain.Runner{}, fmt.Errorf("decode preferences: %w", err)
		}
	}
	return runner, nil
}

// marshalNullable devuelve nil (NULL) para punteros nil.
func marshalNullable[T any](v *T) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	return b, nil
}
