package storage

import (
	"context"

	"github.com/ledgerkeep/ledgerkeep/internal/models"
)

//go:generate moq -out queue_mock.go . QueueStorage

// QueueStorage defines interface for persisting the pending action queue.
// Хранилище должно переживать перезапуск процесса; формат сериализации -
// упорядоченный список действий, непрозрачный для самого хранилища.
type QueueStorage interface {
	// SaveQueue atomically replaces the persisted queue with the given
	// actions, preserving their order
	SaveQueue(ctx context.Context, actions []*models.Action) error

	// LoadQueue returns the persisted queue in insertion order.
	// Returns an empty slice if nothing has been persisted yet
	LoadQueue(ctx context.Context) ([]*models.Action, error)

	// DeleteQueue removes the persisted queue entirely
	DeleteQueue(ctx context.Context) error
}
