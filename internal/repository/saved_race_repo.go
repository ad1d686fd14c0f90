package repository

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"

	"getabib/internal/domain"
)

// SavedRaceRepository guarda una copia de la carrera al momento de guardarla, asi la lista
// sigue disponible aunque la fuente externa deje de publicarla.
type SavedRaceRepository interface {
	Save(ctx context.Context, saved domain.SavedRace) error
	Delete(ctx context.Context, runnerID, raceID string) (bool, error)
	DeleteAll(ctx context.Context, runnerID string) error
	ListByRunnerID(ctx context.Context, runnerID string) ([]domain.SavedRace, error)
}

type PgSavedRaceRepository struct {
	pool *pgxpool.Pool
}

func NewPgSavedRaceRepository(pool *pgxpool.Pool) *PgSavedRaceRepository {
	return &PgSavedRaceRepository{pool: pool}
}

func (r *PgSavedRaceRepository) Save(ctx context.Context, saved domain.SavedRace) error {
	const query = `
		INSERT INTO saved_races (id, runner_id, race_id, race, saved_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (runner_id, race_id) DO NOTHING
	`
	payload, err := json.Marshal(saved.Race)
	if err != nil {
		return fmt.Errorf("marshal race: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		saved.ID,
		saved.RunnerID,
		saved.Race.ID,
		payload,
		saved.SavedAt,
	)
	return err
}

func (r *PgSavedRaceRepository) Delete(ctx context.Context, runnerID, raceID string) (bool, error) {
	const query = `DELETE FROM saved_races WHERE runner_id = $1 AND race_id = $2`
	tag, err := r.pool.Exec(ctx, query, runnerID, raceID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgSavedRaceRepository) DeleteAll(ctx context.Context, runnerID string) error {
	const query = `DELETE FROM saved_races WHERE runner_id = $1`
	_, err := r.pool.Exec(ctx, query, runnerID)
	return err
}

func (r *PgSavedRaceRepository) ListByRunnerID(ctx context.Context, runnerID string) ([]domain.SavedRace, error) {
	const query = `
		SELECT id, runner_id, race, saved_at
		FROM saved_races
		WHERE runner_id = $1
		ORDER BY saved_at DESC
	`

	rows, err := r.pool.Query(ctx, query, runnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var saved []domain.SavedRace
	for rows.Next() {
		var (
			item    domain.SavedRace
			payload []byte
		)
		if err = rows.Scan(
			&item.ID,
			&item.RunnerID,
			&payload,
			&item.SavedAt,
		); err != nil {
			return nil, err
		}
		if err = json.Unmarshal(payload, &item.Race); err != nil {
			return nil, fmt.Errorf("decode saved race %s: %w", item.ID, err)
		}
		saved = append(saved, item)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return saved, nil
}
