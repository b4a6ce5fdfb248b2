package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerkeep/ledgerkeep/internal/client/storage"
	"github.com/ledgerkeep/ledgerkeep/internal/models"
)

// Manager владеет in-memory зеркалом очереди отложенных действий и
// держит персистентное хранилище в синхронизации с каждой мутацией.
// Единственный писатель в QueueStorage: все мутации сериализованы
// мьютексом, порядок очереди - строго порядок постановки (FIFO).
//
// Порядок записи: сначала персистим, потом обновляем память. Ошибка
// персистенции логируется, а сессия продолжает работать на in-memory
// состоянии до восстановления хранилища.
type Manager struct {
	logger     *slog.Logger
	storage    storage.QueueStorage
	mu         sync.Mutex
	actions    []*models.Action
	maxRetries int
}

// NewManager создает менеджер очереди и загружает ранее сохраненные
// действия из хранилища - гарантия долговечности между рестартами.
// maxRetries задает лимит попыток для новых действий (0 = по умолчанию).
func NewManager(ctx context.Context, queueStorage storage.QueueStorage, maxRetries int, logger *slog.Logger) (*Manager, error) {
	if maxRetries <= 0 {
		maxRetries = models.DefaultMaxRetries
	}

	actions, err := queueStorage.LoadQueue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted queue: %w", err)
	}

	if len(actions) > 0 {
		logger.Info("Loaded persisted action queue", "count", len(actions))
	}

	return &Manager{
		logger:     logger,
		storage:    queueStorage,
		actions:    actions,
		maxRetries: maxRetries,
	}, nil
}

// Enqueue создает новое действие и ставит его в конец очереди.
// Для Update/Delete payload обязан содержать серверный id записи.
// maxRetries <= 0 означает лимит менеджера по умолчанию.
// Возвращает id созданного действия.
func (m *Manager) Enqueue(ctx context.Context, kind models.ActionKind, entity string, payload map[string]any, maxRetries int) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("invalid action kind: %q", kind)
	}
	if entity == "" {
		return "", fmt.Errorf("entity cannot be empty")
	}
	if maxRetries <= 0 {
		maxRetries = m.maxRetries
	}

	action := &models.Action{
		ID:         uuid.New().String(),
		Kind:       kind,
		Entity:     entity,
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
		RetryCount: 0,
		MaxRetries: maxRetries,
	}

	// Update/Delete без серверного id невыполнимы, отклоняем сразу
	if kind == models.ActionUpdate || kind == models.ActionDelete {
		if _, err := action.TargetID(); err != nil {
			return "", fmt.Errorf("cannot enqueue %s action: %w", kind, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := make([]*models.Action, len(m.actions), len(m.actions)+1)
	copy(next, m.actions)
	next = append(next, action)

	m.persist(ctx, next)
	m.actions = next

	m.logger.Debug("Enqueued action",
		"action_id", action.ID,
		"kind", action.Kind,
		"entity", action.Entity,
		"pending", len(next))

	return action.ID, nil
}

// ListPending возвращает снимок очереди в порядке постановки.
// Возвращаются копии: вызывающий код не может мутировать очередь.
func (m *Manager) ListPending(ctx context.Context) []*models.Action {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]*models.Action, 0, len(m.actions))
	for _, action := range m.actions {
		snapshot = append(snapshot, action.Clone())
	}

	return snapshot
}

// Remove удаляет действие по id и персистит обновленную очередь.
// Возвращает true если действие было найдено и удалено.
func (m *Manager) Remove(ctx context.Context, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, removed := m.without(map[string]struct{}{id: {}})
	if removed == 0 {
		return false
	}

	m.persist(ctx, next)
	m.actions = next

	return true
}

// RemoveMany удаляет пачку действий за одну запись в хранилище.
// Используется исполнителем в конце прохода: успешные и исчерпавшие
// лимит действия удаляются вместе. Возвращает число удаленных.
func (m *Manager) RemoveMany(ctx context.Context, ids []string) int {
	if len(ids) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next, removed := m.without(set)
	if removed == 0 {
		return 0
	}

	m.persist(ctx, next)
	m.actions = next

	return removed
}

// IncrementRetry увеличивает счетчик попыток действия.
// Возвращает копию обновленного действия. Решение об удалении
// исчерпавшего лимит действия принимает вызывающий код (исполнитель).
func (m *Manager) IncrementRetry(ctx context.Context, id string) (*models.Action, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, action := range m.actions {
		if action.ID != id {
			continue
		}

		action.RetryCount++
		m.persist(ctx, m.actions)

		return action.Clone(), true
	}

	return nil, false
}

// Clear полностью очищает очередь и персистентное хранилище.
// Предназначен для явного сброса по команде пользователя, ошибка
// хранилища здесь поднимается наверх.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.storage.DeleteQueue(ctx); err != nil {
		return fmt.Errorf("failed to clear persisted queue: %w", err)
	}

	m.actions = nil

	m.logger.Info("Cleared pending action queue")

	return nil
}

// Len возвращает текущую длину очереди
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.actions)
}

// persist пишет список в хранилище best-effort.
// Вызывается под мьютексом. Ошибка не прерывает операцию: сессия
// продолжает работать в памяти с пробелом в долговечности.
func (m *Manager) persist(ctx context.Context, actions []*models.Action) {
	if err := m.storage.SaveQueue(ctx, actions); err != nil {
		m.logger.Error("Failed to persist action queue, continuing in memory",
			"error", err,
			"count", len(actions))
	}
}

// without возвращает очередь без действий из set, сохраняя порядок.
// Вызывается под мьютексом.
func (m *Manager) without(set map[string]struct{}) ([]*models.Action, int) {
	next := make([]*models.Action, 0, len(m.actions))
	removed := 0

	for _, action := range m.actions {
		if _, ok := set[action.ID]; ok {
			removed++
			continue
		}
		next = append(next, action)
	}

	return next, removed
}
