package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"getabib/internal/domain"
)

type TraitRepository interface {
	Upsert(ctx context.Context, trait domain.Trait) error
	UpsertVector(ctx context.Context, runnerID string, traits domain.TraitVector) error
	FindByRunnerID(ctx context.Context, runnerID string) ([]domain.Trait, error)
}

type PgTraitRepository struct {
	pool *pgxpool.Pool
}

func NewPgTraitRepository(pool *pgxpool.Pool) *PgTraitRepository {
	return &PgTraitRepository{pool: pool}
}

const upsertTraitQuery = `
	INSERT INTO runner_traits (runner_id, trait, value, updated_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (runner_id, trait)
	DO UPDATE SET
		value = EXCLUDED.value,
		updated_at = EXCLUDED.updated_at
`

func (r *PgTraitRepository) Upsert(ctx context.Context, trait domain.Trait) error {
	_, err := r.pool.Exec(ctx, upsertTraitQuery,
		trait.RunnerID,
		trait.Trait,
		trait.Value,
		trait.UpdatedAt,
	)
	return err
}

// UpsertVector guarda los seis rasgos en una sola transaccion.
func (r *PgTraitRepository) UpsertVector(ctx context.Context, runnerID string, traits domain.TraitVector) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, row := range traits.Rows(runnerID, time.Now().UTC()) {
			batch.Queue(upsertTraitQuery, row.RunnerID, row.Trait, row.Value, row.UpdatedAt)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (r *PgTraitRepository) FindByRunnerID(ctx context.Context, runnerID string) ([]domain.Trait, error) {
	const query = `
		SELECT runner_id, trait, value, updated_at
		FROM runner_traits
		WHERE runner_id = $1
		ORDER BY trait
	`

	rows, err := r.pool.Query(ctx, query, runnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var traits []domain.Trait
	for rows.Next() {
		var t domain.Trait
		if err := rows.Scan(
			&t.RunnerID,
			&t.Trait,
			&t.Value,
			&t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		traits = append(traits, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return traits, nil
}
