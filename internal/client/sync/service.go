package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	httpClient "github.com/ledgerkeep/ledgerkeep/internal/client/api"
	"github.com/ledgerkeep/ledgerkeep/internal/client/auth"
	"github.com/ledgerkeep/ledgerkeep/internal/client/queue"
	"github.com/ledgerkeep/ledgerkeep/internal/client/status"
)

// Connectivity сообщает текущее состояние связи с сервером
type Connectivity interface {
	IsOnline() bool
}

// Service выполняет проход синхронизации: разгружает очередь
// отложенных действий против удаленного API.
//
// Действия выполняются строго последовательно в порядке постановки.
// Ошибка одного действия не прерывает проход: каждое действие получает
// собственный исход. Отката уже примененных действий нет - действия
// независимые мутации, не транзакция. Транзиентные и постоянные ошибки
// сервера ретраятся одинаково до исчерпания лимита попыток.
type Service struct {
	logger   *slog.Logger
	api      httpClient.ClientAPI
	queue    *queue.Manager
	tokens   auth.TokenProvider
	network  Connectivity
	notifier *status.Notifier
	lastSync atomic.Pointer[time.Time]
	syncing  atomic.Bool
}

// NewService создает исполнитель синхронизации
func NewService(
	apiClient httpClient.ClientAPI,
	queueManager *queue.Manager,
	tokens auth.TokenProvider,
	network Connectivity,
	notifier *status.Notifier,
	logger *slog.Logger,
) *Service {
	return &Service{
		logger:   logger,
		api:      apiClient,
		queue:    queueManager,
		tokens:   tokens,
		network:  network,
		notifier: notifier,
	}
}

// Result содержит итог одного прохода синхронизации
type Result struct {
	Errors      []string // сообщения обо всех неудачных попытках прохода
	SyncedCount int      // количество успешно примененных действий
	Success     bool     // true если ни одна попытка не завершилась ошибкой
}

// Sync выполняет один проход синхронизации.
// No-op если проход уже идет, связи нет или очередь пуста - вызывать
// можно сколько угодно раз, защита от наложения проходов внутри.
// Per-action ошибки агрегируются в Result и никогда не поднимаются
// как error: error возвращается только на сбой самого механизма.
func (s *Service) Sync(ctx context.Context) (*Result, error) {
	return s.run(ctx, false)
}

// ForceSync выполняет проход, игнорируя состояние монитора сети.
// Для явного запроса пользователя: если связи действительно нет,
// каждая попытка завершится ошибкой и потратит retry budget -
// осознанная цена явного повтора.
func (s *Service) ForceSync(ctx context.Context) (*Result, error) {
	return s.run(ctx, true)
}

// IsSyncing сообщает, идет ли проход прямо сейчас
func (s *Service) IsSyncing() bool {
	return s.syncing.Load()
}

// LastSync возвращает время последнего прохода (nil если не было)
func (s *Service) LastSync() *time.Time {
	return s.lastSync.Load()
}

func (s *Service) run(ctx context.Context, force bool) (*Result, error) {
	// Единственный механизм дедупликации проходов: повторный вызов
	// при идущем проходе - мгновенный no-op
	if !s.syncing.CompareAndSwap(false, true) {
		return &Result{Success: true}, nil
	}
	defer s.syncing.Store(false)

	if !force && !s.network.IsOnline() {
		return &Result{Success: true}, nil
	}

	// Снимок очереди: действия, поставленные во время прохода,
	// попадут в следующий проход, не в текущий
	pending := s.queue.ListPending(ctx)
	if len(pending) == 0 {
		return &Result{Success: true}, nil
	}

	s.notifier.SetSyncing(true)

	s.logger.Info("Starting sync pass", "pending", len(pending))

	token, err := s.tokens.GetToken(ctx)
	if err != nil {
		// Без токена не выполнить ни одного действия; retry budget
		// не тратим и lastSync не трогаем - попыток не было
		s.logger.Warn("Sync pass aborted: no access token", "error", err)
		errs := []string{fmt.Sprintf("not authenticated: %v", err)}
		s.notifier.FinishPass(nil, errs, s.queue.Len())
		return &Result{Success: false, Errors: errs}, nil
	}

	var (
		toRemove []string
		errs     []string
		synced   int
	)

	for _, action := range pending {
		if err := s.api.Execute(ctx, token, action); err != nil {
			updated, ok := s.queue.IncrementRetry(ctx, action.ID)
			if !ok {
				// Действие убрано из очереди во время прохода (clear)
				continue
			}

			if updated.Exhausted() {
				// Лимит попыток исчерпан: действие удаляется без
				// дальнейших повторов
				toRemove = append(toRemove, action.ID)
				errs = append(errs, fmt.Sprintf("%s %s dropped after %d attempts: %v",
					action.Kind, action.Entity, updated.RetryCount, err))
				s.logger.Warn("Action exhausted retry budget, dropping",
					"action_id", action.ID,
					"kind", action.Kind,
					"entity", action.Entity,
					"attempts", updated.RetryCount)
				continue
			}

			errs = append(errs, fmt.Sprintf("%s %s failed (attempt %d/%d): %v",
				action.Kind, action.Entity, updated.RetryCount, updated.MaxRetries, err))
			s.logger.Warn("Action failed, will retry on next pass",
				"action_id", action.ID,
				"kind", action.Kind,
				"entity", action.Entity,
				"attempt", updated.RetryCount,
				"max_retries", updated.MaxRetries,
				"error", err)
			continue
		}

		toRemove = append(toRemove, action.ID)
		synced++
	}

	// Успешные и исчерпавшие лимит действия удаляются одной пачкой;
	// в очереди остаются только неудачные с запасом попыток
	s.queue.RemoveMany(ctx, toRemove)

	now := time.Now().UTC()
	s.lastSync.Store(&now)

	s.logger.Info("Sync pass completed",
		"synced", synced,
		"failed", len(errs),
		"remaining", s.queue.Len())

	s.notifier.FinishPass(&now, errs, s.queue.Len())

	return &Result{
		Success:     len(errs) == 0,
		SyncedCount: synced,
		Errors:      errs,
	}, nil
}
