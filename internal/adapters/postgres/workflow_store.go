package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// WorkflowStore implements ports.WorkflowStore.
type WorkflowStore struct {
	db *DB
}

func NewWorkflowStore(db *DB) *WorkflowStore {
	return &WorkflowStore{db: db}
}

// Stage returns the workflow stage of the delivery's latest workflow row.
// A delivery without a workflow has no stage; callers treat "" as non-draft.
func (s *WorkflowStore) Stage(ctx context.Context, deliveryID string) (string, error) {
	var stage string
	err := s.db.Pool.QueryRow(ctx, `
		SELECT stage
		FROM delivery_workflows
		WHERE delivery_id = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`, deliveryID).Scan(&stage)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query workflow stage: %w", err)
	}
	return stage, nil
}
