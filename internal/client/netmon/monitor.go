package netmon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

//go:generate moq -out prober_mock.go . Prober

// Prober проверяет фактическую доступность сервера.
// Источник истины для монитора сети - успешность реального запроса,
// а не состояние сетевого интерфейса.
type Prober interface {
	// Probe returns nil if the server is reachable
	Probe(ctx context.Context) error
}

const (
	// DefaultInterval - период опроса доступности сервера
	DefaultInterval = 10 * time.Second

	// probeTimeout ограничивает длительность одной проверки
	probeTimeout = 5 * time.Second

	// probeRetries и probeBackoff сглаживают единичные потери пакетов:
	// прежде чем объявить offline, проверка повторяется с паузой
	probeRetries = 2
	probeBackoff = 500 * time.Millisecond
)

// Monitor наблюдает за доступностью сервера и рассылает подписчикам
// только переходы состояния (became-online / became-offline).
// Повторные сообщения об одном и том же состоянии подавляются.
type Monitor struct {
	logger   *slog.Logger
	prober   Prober
	subs     map[int]func(online bool)
	done     chan struct{}
	stopOnce sync.Once
	interval time.Duration
	nextID   int
	mu       sync.Mutex
	online   bool
	started  bool
}

// NewMonitor создает монитор сети.
// interval <= 0 означает DefaultInterval. Начальное состояние - offline,
// до первой успешной проверки.
func NewMonitor(prober Prober, interval time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Monitor{
		logger:   logger,
		prober:   prober,
		interval: interval,
		subs:     make(map[int]func(online bool)),
		done:     make(chan struct{}),
	}
}

// IsOnline возвращает текущее состояние связи
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.online
}

// Subscribe регистрирует подписчика на переходы состояния.
// Подписчик вызывается только при смене состояния (edge-triggered).
// Возвращает функцию отписки.
func (m *Monitor) Subscribe(fn func(online bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.subs[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Start запускает цикл опроса в отдельной горутине.
// Первая проверка выполняется сразу, дальше по интервалу.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	go m.loop(ctx)
}

// Stop останавливает цикл опроса
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
	})
}

// Check выполняет одну проверку доступности немедленно и обновляет
// состояние. Используется циклом опроса и однократными командами CLI.
func (m *Monitor) Check(ctx context.Context) bool {
	online := m.probe(ctx)
	m.setOnline(online)
	return online
}

// loop - основной цикл опроса
func (m *Monitor) loop(ctx context.Context) {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// probe проверяет доступность сервера с повтором.
// Единичная потеря пакета не должна переключать монитор в offline.
func (m *Monitor) probe(ctx context.Context) bool {
	backoff := retry.WithMaxRetries(probeRetries, retry.NewConstant(probeBackoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()

		if err := m.prober.Probe(probeCtx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})

	if err != nil {
		m.logger.Debug("Connectivity probe failed", "error", err)
		return false
	}

	return true
}

// setOnline обновляет состояние и уведомляет подписчиков при переходе
func (m *Monitor) setOnline(online bool) {
	m.mu.Lock()

	// Debounce: состояние не изменилось - подписчиков не беспокоим
	if online == m.online {
		m.mu.Unlock()
		return
	}

	m.online = online

	// Копируем список подписчиков: уведомление идет вне мьютекса,
	// подписка/отписка во время доставки безопасны
	subs := make([]func(online bool), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	if online {
		m.logger.Info("Network became online")
	} else {
		m.logger.Info("Network became offline")
	}

	for _, fn := range subs {
		fn(online)
	}
}
