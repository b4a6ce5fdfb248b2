package status

import (
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/ledgerkeep/ledgerkeep/internal/models"
)

// Listener получает снимок статуса при каждом его изменении
type Listener func(status models.SyncStatus)

// Notifier владеет текущим снимком SyncStatus и списком подписчиков.
// При изменении любого входа (связь, длина очереди, ход синхронизации)
// снимок пересчитывается и рассылается всем подписчикам.
//
// Доставка изолирована по подписчикам: паника в одном callback
// логируется и не мешает доставке остальным.
type Notifier struct {
	logger  *slog.Logger
	subs    map[int]Listener
	current models.SyncStatus
	nextID  int
	mu      sync.Mutex
}

// NewNotifier создает notifier с начальным состоянием (offline, пусто)
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{
		logger: logger,
		subs:   make(map[int]Listener),
	}
}

// Subscribe регистрирует подписчика и возвращает функцию отписки.
// Подписчику сразу доставляется текущий снимок.
func (n *Notifier) Subscribe(fn Listener) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	snapshot := n.snapshotLocked()
	n.mu.Unlock()

	n.deliver(fn, snapshot)

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

// Current возвращает текущий снимок статуса
func (n *Notifier) Current() models.SyncStatus {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.snapshotLocked()
}

// SetOnline обновляет состояние связи
func (n *Notifier) SetOnline(online bool) {
	n.update(func(s *models.SyncStatus) {
		s.IsOnline = online
	})
}

// SetSyncing обновляет признак идущей синхронизации
func (n *Notifier) SetSyncing(syncing bool) {
	n.update(func(s *models.SyncStatus) {
		s.IsSyncing = syncing
	})
}

// SetPending обновляет количество действий в очереди
func (n *Notifier) SetPending(count int) {
	n.update(func(s *models.SyncStatus) {
		s.PendingActions = count
	})
}

// FinishPass фиксирует итог прохода синхронизации: время прохода,
// список ошибок и снятый признак isSyncing - одним уведомлением.
// lastSync == nil оставляет прежнее время (проход без единой попытки).
func (n *Notifier) FinishPass(lastSync *time.Time, errs []string, pending int) {
	n.update(func(s *models.SyncStatus) {
		s.IsSyncing = false
		if lastSync != nil {
			s.LastSync = lastSync
		}
		s.Errors = errs
		s.PendingActions = pending
	})
}

// update мутирует снимок и рассылает его подписчикам.
// Список подписчиков копируется: доставка идет вне мьютекса,
// подписка/отписка во время доставки безопасны.
func (n *Notifier) update(mutate func(*models.SyncStatus)) {
	n.mu.Lock()
	mutate(&n.current)

	snapshot := n.snapshotLocked()
	subs := make([]Listener, 0, len(n.subs))
	for _, fn := range n.subs {
		subs = append(subs, fn)
	}
	n.mu.Unlock()

	for _, fn := range subs {
		n.deliver(fn, snapshot)
	}
}

// deliver доставляет снимок одному подписчику с изоляцией паники
func (n *Notifier) deliver(fn Listener, snapshot models.SyncStatus) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Status listener panicked",
				"error", r,
				"stack", string(debug.Stack()))
		}
	}()

	fn(snapshot)
}

// snapshotLocked возвращает копию снимка с собственным срезом ошибок.
// Вызывается под мьютексом.
func (n *Notifier) snapshotLocked() models.SyncStatus {
	snapshot := n.current

	if n.current.LastSync != nil {
		lastSync := *n.current.LastSync
		snapshot.LastSync = &lastSync
	}

	if n.current.Errors != nil {
		snapshot.Errors = make([]string, len(n.current.Errors))
		copy(snapshot.Errors, n.current.Errors)
	}

	return snapshot
}
