package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/ledgerkeep/ledgerkeep/internal/client/storage"
	"github.com/ledgerkeep/ledgerkeep/internal/models"
)

// keyPending - ключ, под которым хранится сериализованная очередь.
// Очередь пишется целиком одним значением: список упорядочен, а замена
// всего списка атомарна в рамках одной bolt транзакции.
var keyPending = []byte("pending")

// Compile-time check that Storage implements QueueStorage
var _ storage.QueueStorage = (*Storage)(nil)

// SaveQueue atomically replaces the persisted queue
func (s *Storage) SaveQueue(ctx context.Context, actions []*models.Action) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		if bucket == nil {
			return fmt.Errorf("queue bucket not found")
		}

		// Сериализуем весь список в JSON
		data, err := json.Marshal(actions)
		if err != nil {
			return fmt.Errorf("failed to marshal queue: %w", err)
		}

		if err := bucket.Put(keyPending, data); err != nil {
			return fmt.Errorf("failed to save queue: %w", err)
		}

		return nil
	})
}

// LoadQueue returns the persisted queue in insertion order
func (s *Storage) LoadQueue(ctx context.Context) ([]*models.Action, error) {
	var actions []*models.Action

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		if bucket == nil {
			return fmt.Errorf("queue bucket not found")
		}

		data := bucket.Get(keyPending)
		if data == nil {
			// Очередь еще не сохранялась
			return nil
		}

		if err := json.Unmarshal(data, &actions); err != nil {
			return fmt.Errorf("failed to unmarshal queue: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	if actions == nil {
		actions = []*models.Action{}
	}

	return actions, nil
}

// DeleteQueue removes the persisted queue entirely
func (s *Storage) DeleteQueue(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		if bucket == nil {
			return fmt.Errorf("queue bucket not found")
		}

		if err := bucket.Delete(keyPending); err != nil {
			return fmt.Errorf("failed to delete queue: %w", err)
		}

		return nil
	})
}
