package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkeep/ledgerkeep/internal/client/api"
	"github.com/ledgerkeep/ledgerkeep/internal/client/auth"
	"github.com/ledgerkeep/ledgerkeep/internal/client/netmon"
	"github.com/ledgerkeep/ledgerkeep/internal/client/queue"
	"github.com/ledgerkeep/ledgerkeep/internal/client/scheduler"
	"github.com/ledgerkeep/ledgerkeep/internal/client/status"
	"github.com/ledgerkeep/ledgerkeep/internal/client/storage/boltdb"
	syncsvc "github.com/ledgerkeep/ledgerkeep/internal/client/sync"
	"github.com/ledgerkeep/ledgerkeep/internal/models"
)

type harness struct {
	engine *Engine
	api    *api.ClientAPIMock
	// серверная доступность, которую видит health probe
	serverUp atomic.Bool
}

// newHarness собирает движок поверх реального bbolt и мокнутого API,
// как это делает композиция в main
func newHarness(t *testing.T) *harness {
	t.Helper()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := &harness{}

	h.api = &api.ClientAPIMock{
		ExecuteFunc: func(ctx context.Context, accessToken string, action *models.Action) error {
			if !h.serverUp.Load() {
				return errors.New("connection refused")
			}
			return nil
		},
		HealthFunc: func(ctx context.Context) error {
			if !h.serverUp.Load() {
				return errors.New("connection refused")
			}
			return nil
		},
	}

	store, err := boltdb.New(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	queueManager, err := queue.NewManager(ctx, store, 0, logger)
	require.NoError(t, err)

	tokens := &auth.TokenProviderMock{
		GetTokenFunc: func(ctx context.Context) (string, error) {
			return "test-token", nil
		},
	}

	notifier := status.NewNotifier(logger)
	monitor := netmon.NewMonitor(netmon.NewHealthProber(h.api), 20*time.Millisecond, logger)
	executor := syncsvc.NewService(h.api, queueManager, tokens, monitor, notifier, logger)
	sched := scheduler.New(executor, monitor, scheduler.DefaultSpec, logger)

	h.engine = New(queueManager, executor, monitor, sched, notifier, logger)

	return h
}

func TestEngine_EnqueueUpdatesStatus(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	id, err := h.engine.EnqueueCreate(ctx, "expenses", map[string]any{"amount": 12.5})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = h.engine.EnqueueUpdate(ctx, "invoices", map[string]any{"id": "inv-1", "status": "paid"})
	require.NoError(t, err)

	st := h.engine.GetStatus()
	assert.Equal(t, 2, st.PendingActions)

	pending := h.engine.GetPendingActions(ctx)
	require.Len(t, pending, 2)
	assert.Equal(t, models.ActionCreate, pending[0].Kind)
	assert.Equal(t, models.ActionUpdate, pending[1].Kind)
}

func TestEngine_EnqueueUpdateRequiresID(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.engine.EnqueueUpdate(ctx, "invoices", map[string]any{"status": "paid"})
	assert.Error(t, err)

	_, err = h.engine.EnqueueDelete(ctx, "invoices", nil)
	assert.Error(t, err)

	assert.Zero(t, h.engine.GetStatus().PendingActions)
}

func TestEngine_OfflineToOnlineSyncsQueue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newHarness(t)

	// Работаем офлайн: действия копятся в очереди
	_, err := h.engine.EnqueueCreate(ctx, "expenses", map[string]any{"amount": 10})
	require.NoError(t, err)
	_, err = h.engine.EnqueueCreate(ctx, "expenses", map[string]any{"amount": 20})
	require.NoError(t, err)

	require.NoError(t, h.engine.Start(ctx))
	defer h.engine.Close()

	st := h.engine.GetStatus()
	assert.False(t, st.IsOnline)
	assert.Equal(t, 2, st.PendingActions)

	// Сервер поднялся: монитор замечает, планировщик запускает проход
	h.serverUp.Store(true)

	assert.Eventually(t, func() bool {
		st := h.engine.GetStatus()
		return st.IsOnline && st.PendingActions == 0 && st.LastSync != nil
	}, 5*time.Second, 20*time.Millisecond)

	assert.Len(t, h.api.ExecuteCalls(), 2)
}

func TestEngine_StatusListenerReceivesTransitions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newHarness(t)
	h.serverUp.Store(true)

	online := make(chan bool, 8)
	unsubscribe := h.engine.AddStatusListener(func(s models.SyncStatus) {
		select {
		case online <- s.IsOnline:
		default:
		}
	})
	defer unsubscribe()

	require.NoError(t, h.engine.Start(ctx))
	defer h.engine.Close()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case isOnline := <-online:
			if isOnline {
				return
			}
		case <-deadline:
			t.Fatal("expected status snapshot with IsOnline=true")
		}
	}
}

func TestEngine_ForceSyncWorksWithoutStart(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.serverUp.Store(true)

	_, err := h.engine.EnqueueCreate(ctx, "expenses", map[string]any{"amount": 10})
	require.NoError(t, err)

	// Монитор не запущен и считает нас офлайн, но явный запрос
	// пользователя пробует синхронизацию в любом случае
	result, err := h.engine.ForceSync(ctx)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.SyncedCount)
	assert.Zero(t, h.engine.GetStatus().PendingActions)
}

func TestEngine_ClearPendingActions(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.engine.EnqueueCreate(ctx, "expenses", map[string]any{"amount": 10})
	require.NoError(t, err)

	require.NoError(t, h.engine.ClearPendingActions(ctx))
	assert.Zero(t, h.engine.GetStatus().PendingActions)
	assert.Empty(t, h.engine.GetPendingActions(ctx))
}

func TestEngine_QueueSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := boltdb.New(ctx, dbPath)
	require.NoError(t, err)

	queueManager, err := queue.NewManager(ctx, store, 0, logger)
	require.NoError(t, err)

	_, err = queueManager.Enqueue(ctx, models.ActionCreate, "expenses", map[string]any{"amount": 10}, 0)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Новый процесс: очередь загружается из того же файла
	reopened, err := boltdb.New(ctx, dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	restored, err := queue.NewManager(ctx, reopened, 0, logger)
	require.NoError(t, err)
	assert.Equal(t, 1, restored.Len())
}
