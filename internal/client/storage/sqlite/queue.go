package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ledgerkeep/ledgerkeep/internal/client/storage"
	"github.com/ledgerkeep/ledgerkeep/internal/models"
)

// Compile-time check that Storage implements QueueStorage
var _ storage.QueueStorage = (*Storage)(nil)

// SaveQueue atomically replaces the persisted queue.
// Порядок списка сохраняется через колонку position.
func (s *Storage) SaveQueue(ctx context.Context, actions []*models.Action) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Заменяем очередь целиком: так семантика идентична KV хранилищу
	if _, err := tx.ExecContext(ctx, "DELETE FROM actions"); err != nil {
		return fmt.Errorf("failed to clear actions: %w", err)
	}

	query := `
		INSERT INTO actions (id, position, kind, entity, payload, enqueued_at, retry_count, max_retries)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	for i, action := range actions {
		payload, err := json.Marshal(action.Payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}

		_, err = tx.ExecContext(ctx, query,
			action.ID,
			i,
			string(action.Kind),
			action.Entity,
			string(payload),
			action.EnqueuedAt.Unix(),
			action.RetryCount,
			action.MaxRetries,
		)
		if err != nil {
			return fmt.Errorf("failed to insert action: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// LoadQueue returns the persisted queue in insertion order
func (s *Storage) LoadQueue(ctx context.Context) ([]*models.Action, error) {
	query := `
		SELECT id, kind, entity, payload, enqueued_at, retry_count, max_retries
		FROM actions
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	actions := []*models.Action{}
	for rows.Next() {
		var (
			action     models.Action
			kind       string
			payload    string
			enqueuedAt int64
		)

		if err := rows.Scan(&action.ID, &kind, &action.Entity, &payload, &enqueuedAt, &action.RetryCount, &action.MaxRetries); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}

		if err := json.Unmarshal([]byte(payload), &action.Payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}

		action.Kind = models.ActionKind(kind)
		action.EnqueuedAt = time.Unix(enqueuedAt, 0).UTC()

		actions = append(actions, &action)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate actions: %w", err)
	}

	return actions, nil
}

// DeleteQueue removes the persisted queue entirely
func (s *Storage) DeleteQueue(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM actions"); err != nil {
		return fmt.Errorf("failed to delete actions: %w", err)
	}
	return nil
}
