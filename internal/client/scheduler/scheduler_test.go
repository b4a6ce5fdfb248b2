package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncsvc "github.com/ledgerkeep/ledgerkeep/internal/client/sync"
)

type fakeNetwork struct {
	mu     sync.Mutex
	subs   []func(online bool)
	online bool
}

func (n *fakeNetwork) IsOnline() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.online
}

func (n *fakeNetwork) Subscribe(fn func(online bool)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, fn)
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.subs = nil
	}
}

func (n *fakeNetwork) setOnline(online bool) {
	n.mu.Lock()
	n.online = online
	subs := make([]func(online bool), len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	for _, fn := range subs {
		fn(online)
	}
}

type countingRunner struct {
	calls atomic.Int32
}

func (r *countingRunner) Sync(ctx context.Context) (*syncsvc.Result, error) {
	r.calls.Add(1)
	return &syncsvc.Result{Success: true}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := New(&countingRunner{}, &fakeNetwork{}, "not a schedule", testLogger())

	err := s.Start(context.Background())
	assert.Error(t, err)
}

func TestScheduler_DefaultSpec(t *testing.T) {
	s := New(&countingRunner{}, &fakeNetwork{}, "", testLogger())
	assert.Equal(t, DefaultSpec, s.spec)

	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}

func TestScheduler_TickSkipsWhenOffline(t *testing.T) {
	runner := &countingRunner{}
	network := &fakeNetwork{}
	s := New(runner, network, DefaultSpec, testLogger())

	s.tick(context.Background())
	assert.Zero(t, runner.calls.Load())

	network.setOnline(true)
	s.tick(context.Background())
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestScheduler_SyncsImmediatelyOnBecameOnline(t *testing.T) {
	runner := &countingRunner{}
	network := &fakeNetwork{}
	s := New(runner, network, DefaultSpec, testLogger())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	// Восстановление связи запускает проход, не дожидаясь таймера
	network.setOnline(true)
	assert.Equal(t, int32(1), runner.calls.Load())

	// Уход в offline проход не запускает
	network.setOnline(false)
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestScheduler_FiresOnSchedule(t *testing.T) {
	runner := &countingRunner{}
	network := &fakeNetwork{online: true}
	s := New(runner, network, "@every 1s", testLogger())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return runner.calls.Load() >= 1
	}, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_StopUnsubscribes(t *testing.T) {
	runner := &countingRunner{}
	network := &fakeNetwork{}
	s := New(runner, network, DefaultSpec, testLogger())

	require.NoError(t, s.Start(context.Background()))
	s.Stop()

	network.setOnline(true)
	assert.Zero(t, runner.calls.Load())
}

func TestScheduler_StopBeforeStart(t *testing.T) {
	s := New(&countingRunner{}, &fakeNetwork{}, DefaultSpec, testLogger())
	assert.NotPanics(t, s.Stop)
}
