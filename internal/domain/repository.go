package domain

import "context"

// GenerationRepository defines persistence for generation records.
type GenerationRepository interface {
	Create(ctx context.Context, gen *Generation) error
	UpdateState(ctx context.Context, id string, state string, taskID, videoURL, content, errMsg string) error
	GetByID(ctx context.Context, id string) (*Generation, error)
	GetByTaskID(ctx context.Context, taskID string) (*Generation, error)
	ListUnfinished(ctx context.Context, limit int) ([]Generation, error)
}
