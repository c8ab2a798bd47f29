// Package repo contains PostgreSQL-backed implementations of the domain
// repositories.
package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"promoclip/internal/domain"
)

// GenerationRepositoryPG implements domain.GenerationRepository.
type GenerationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewGenerationRepository creates a generation repository backed by PostgreSQL.
func NewGenerationRepository(pool *pgxpool.Pool) *GenerationRepositoryPG {
	return &GenerationRepositoryPG{pool: pool}
}

// Create inserts a new generation record.
func (r *GenerationRepositoryPG) Create(ctx context.Context, gen *domain.Generation) error {
	query := `
INSERT INTO generations (id, state, model, prompt, aspect_ratio, duration, target_language, backend, task_id, video_url, content, error_message)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
`
	_, err := r.pool.Exec(ctx, query,
		gen.ID,
		gen.State,
		gen.Model,
		gen.Prompt,
		gen.AspectRatio,
		gen.Duration,
		gen.TargetLanguage,
		gen.Backend,
		gen.TaskID,
		gen.VideoURL,
		gen.Content,
		gen.ErrorMessage,
	)
	return err
}

// UpdateState records the latest observed state of a generation. Empty
// payload fields keep their previous values so a transient poll never erases
// an earlier result.
func (r *GenerationRepositoryPG) UpdateState(ctx context.Context, id string, state string, taskID, videoURL, content, errMsg string) error {
	query := `
UPDATE generations
SET state = $2,
    updated_at = NOW(),
    task_id = COALESCE(NULLIF($3, ''), task_id),
    video_url = COALESCE(NULLIF($4, ''), video_url),
    content = COALESCE(NULLIF($5, ''), content),
    error_message = COALESCE(NULLIF($6, ''), error_message)
WHERE id = $1;
`
	_, err := r.pool.Exec(ctx, query, id, state, taskID, videoURL, content, errMsg)
	return err
}

// GetByID fetches a generation by its identifier.
func (r *GenerationRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Generation, error) {
	query := selectGeneration + `WHERE id = $1;`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByTaskID fetches the generation that owns a provider task.
func (r *GenerationRepositoryPG) GetByTaskID(ctx context.Context, taskID string) (*domain.Generation, error) {
	query := selectGeneration + `WHERE task_id = $1 ORDER BY created_at DESC LIMIT 1;`
	return r.scanOne(r.pool.QueryRow(ctx, query, taskID))
}

// ListUnfinished returns generations still awaiting a terminal state, oldest
// first, for the poll worker to reconcile.
func (r *GenerationRepositoryPG) ListUnfinished(ctx context.Context, limit int) ([]domain.Generation, error) {
	query := selectGeneration + `
WHERE state IN ('pending', 'processing') AND task_id <> ''
ORDER BY created_at ASC
LIMIT $1;
`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Generation
	for rows.Next() {
		var gen domain.Generation
		if err := scanGeneration(rows, &gen); err != nil {
			return nil, err
		}
		out = append(out, gen)
	}
	return out, rows.Err()
}

const selectGeneration = `
SELECT id, state, model, prompt, aspect_ratio, duration, target_language, backend, task_id, video_url, content, error_message, created_at, updated_at
FROM generations
`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *GenerationRepositoryPG) scanOne(row pgx.Row) (*domain.Generation, error) {
	var gen domain.Generation
	if err := scanGeneration(row, &gen); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &gen, nil
}

func scanGeneration(row rowScanner, gen *domain.Generation) error {
	return row.Scan(
		&gen.ID,
		&gen.State,
		&gen.Model,
		&gen.Prompt,
		&gen.AspectRatio,
		&gen.Duration,
		&gen.TargetLanguage,
		&gen.Backend,
		&gen.TaskID,
		&gen.VideoURL,
		&gen.Content,
		&gen.ErrorMessage,
		&gen.CreatedAt,
		&gen.UpdatedAt,
	)
}
