package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"getabib/internal/domain"
)

// RaceViewRepository registra visitas al detalle de carreras y resume la conducta del corredor.
type RaceViewRepository interface {
	Record(ctx context.Context, view domain.RaceView) error
	CategoryCounts(ctx context.Context, runnerID string) (map[string]int, error)
	RecentRaceIDs(ctx context.Context, runnerID string, limit int) ([]string, error)
}

type PgRaceViewRepository struct {
	pool *pgxpool.Pool
}

func NewPgRaceViewRepository(pool *pgxpool.Pool) *PgRaceViewRepository {
	return &PgRaceViewRepository{pool: pool}
}

func (r *PgRaceViewRepository) Record(ctx context.Context, view domain.RaceView) error {
	const query = `
		INSERT INTO race_views (runner_id, race_id, category, viewed_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query,
		view.RunnerID,
		view.RaceID,
		view.Category,
		view.ViewedAt,
	)
	return err
}

func (r *PgRaceViewRepository) CategoryCounts(ctx context.Context, runnerID string) (map[string]int, error) {
	const query = `
		SELECT category, COUNT(*)
		FROM race_views
		WHERE runner_id = $1
		GROUP BY category
	`
	rows, err := r.pool.Query(ctx, query, runnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			category string
			n        int
		)
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		counts[category] = n
	}
	return counts, rows.Err()
}

// RecentRaceIDs devuelve ids distintos, del mas reciente al mas viejo.
func (r *PgRaceViewRepository) RecentRaceIDs(ctx context.Context, runnerID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT race_id
		FROM race_views
		WHERE runner_id = $1
		GROUP BY race_id
		ORDER BY MAX(viewed_at) DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, runnerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
