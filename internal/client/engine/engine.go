package engine

import (
	"context"
	"log/slog"

	"github.com/ledgerkeep/ledgerkeep/internal/client/netmon"
	"github.com/ledgerkeep/ledgerkeep/internal/client/queue"
	"github.com/ledgerkeep/ledgerkeep/internal/client/scheduler"
	"github.com/ledgerkeep/ledgerkeep/internal/client/status"
	syncsvc "github.com/ledgerkeep/ledgerkeep/internal/client/sync"
	"github.com/ledgerkeep/ledgerkeep/internal/models"
)

// Engine - фасад движка офлайн-синхронизации для UI и бизнес-кода.
// Собирается явно из компонентов (никаких глобальных синглтонов):
// очередь, исполнитель, монитор сети, планировщик и notifier статуса
// передаются снаружи, что дает тестам изолированные экземпляры.
//
// Политика конфликтов - неявный last-write-wins: движок не выявляет
// конкурентные правки с других устройств.
type Engine struct {
	logger   *slog.Logger
	queue    *queue.Manager
	executor *syncsvc.Service
	monitor  *netmon.Monitor
	sched    *scheduler.Scheduler
	notifier *status.Notifier
	unsub    func()
}

// New создает движок из готовых компонентов
func New(
	queueManager *queue.Manager,
	executor *syncsvc.Service,
	monitor *netmon.Monitor,
	sched *scheduler.Scheduler,
	notifier *status.Notifier,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		logger:   logger,
		queue:    queueManager,
		executor: executor,
		monitor:  monitor,
		sched:    sched,
		notifier: notifier,
	}
}

// Start запускает монитор сети и планировщик.
// Переходы связи транслируются в снимок статуса.
func (e *Engine) Start(ctx context.Context) error {
	e.unsub = e.monitor.Subscribe(func(online bool) {
		e.notifier.SetOnline(online)
	})

	e.notifier.SetPending(e.queue.Len())

	e.monitor.Start(ctx)

	if err := e.sched.Start(ctx); err != nil {
		e.monitor.Stop()
		return err
	}

	return nil
}

// Close останавливает фоновые компоненты движка
func (e *Engine) Close() {
	if e.sched != nil {
		e.sched.Stop()
	}
	if e.monitor != nil {
		e.monitor.Stop()
	}
	if e.unsub != nil {
		e.unsub()
	}
}

// EnqueueCreate ставит в очередь создание новой записи
func (e *Engine) EnqueueCreate(ctx context.Context, entity string, data map[string]any) (string, error) {
	return e.enqueue(ctx, models.ActionCreate, entity, data)
}

// EnqueueUpdate ставит в очередь изменение записи.
// data обязан содержать серверный id записи в поле "id".
func (e *Engine) EnqueueUpdate(ctx context.Context, entity string, data map[string]any) (string, error) {
	return e.enqueue(ctx, models.ActionUpdate, entity, data)
}

// EnqueueDelete ставит в очередь удаление записи.
// data обязан содержать серверный id записи в поле "id".
func (e *Engine) EnqueueDelete(ctx context.Context, entity string, data map[string]any) (string, error) {
	return e.enqueue(ctx, models.ActionDelete, entity, data)
}

// GetStatus возвращает текущий снимок статуса синхронизации
func (e *Engine) GetStatus() models.SyncStatus {
	return e.notifier.Current()
}

// AddStatusListener подписывает callback на изменения статуса.
// Возвращает функцию отписки.
func (e *Engine) AddStatusListener(fn status.Listener) func() {
	return e.notifier.Subscribe(fn)
}

// ForceSync запускает проход синхронизации по явному запросу,
// игнорируя состояние монитора сети
func (e *Engine) ForceSync(ctx context.Context) (*syncsvc.Result, error) {
	return e.executor.ForceSync(ctx)
}

// ClearPendingActions очищает очередь и персистентное хранилище.
// Несинхронизированные изменения теряются безвозвратно.
func (e *Engine) ClearPendingActions(ctx context.Context) error {
	if err := e.queue.Clear(ctx); err != nil {
		return err
	}

	e.notifier.SetPending(0)

	return nil
}

// GetPendingActions возвращает снимок очереди для инспекции
func (e *Engine) GetPendingActions(ctx context.Context) []*models.Action {
	return e.queue.ListPending(ctx)
}

// enqueue ставит действие в очередь и обновляет счетчик в статусе
func (e *Engine) enqueue(ctx context.Context, kind models.ActionKind, entity string, data map[string]any) (string, error) {
	id, err := e.queue.Enqueue(ctx, kind, entity, data, 0)
	if err != nil {
		return "", err
	}

	e.notifier.SetPending(e.queue.Len())

	return id, nil
}
