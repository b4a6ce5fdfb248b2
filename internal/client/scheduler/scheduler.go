package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	syncsvc "github.com/ledgerkeep/ledgerkeep/internal/client/sync"
)

// DefaultSpec - расписание фоновой синхронизации по умолчанию
const DefaultSpec = "@every 30s"

// Network предоставляет состояние связи и подписку на его переходы
type Network interface {
	IsOnline() bool
	Subscribe(fn func(online bool)) func()
}

// Runner запускает один проход синхронизации
type Runner interface {
	Sync(ctx context.Context) (*syncsvc.Result, error)
}

// Scheduler решает, когда запускать проход синхронизации:
// по таймеру и при восстановлении связи. Своего лока от наложения
// проходов у планировщика нет - единственный механизм дедупликации
// это isSyncing guard самого исполнителя, и планировщик всегда
// вызывает синхронизацию через него.
type Scheduler struct {
	logger  *slog.Logger
	runner  Runner
	network Network
	cron    *cron.Cron
	unsub   func()
	spec    string
}

// New создает планировщик. spec - расписание в формате cron
// (поддерживается и @every); пустая строка означает DefaultSpec.
func New(runner Runner, network Network, spec string, logger *slog.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultSpec
	}

	return &Scheduler{
		logger:  logger,
		runner:  runner,
		network: network,
		spec:    spec,
	}
}

// Start запускает таймер и подписывается на переходы сети.
// При became-online синхронизация запускается немедленно.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron = cron.New()

	if _, err := s.cron.AddFunc(s.spec, func() {
		s.tick(ctx)
	}); err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", s.spec, err)
	}

	s.unsub = s.network.Subscribe(func(online bool) {
		if !online {
			return
		}
		s.logger.Debug("Network restored, triggering immediate sync")
		s.trigger(ctx)
	})

	s.cron.Start()

	s.logger.Info("Sync scheduler started", "schedule", s.spec)

	return nil
}

// Stop останавливает таймер и отписывается от монитора сети
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.unsub != nil {
		s.unsub()
	}
}

// tick - запуск по расписанию: только когда связь есть
func (s *Scheduler) tick(ctx context.Context) {
	if !s.network.IsOnline() {
		return
	}
	s.trigger(ctx)
}

// trigger вызывает проход; наложение проходов гасит guard исполнителя
func (s *Scheduler) trigger(ctx context.Context) {
	if _, err := s.runner.Sync(ctx); err != nil {
		s.logger.Error("Scheduled sync failed", "error", err)
	}
}
