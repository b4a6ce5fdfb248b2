package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ledgerkeep/ledgerkeep/internal/client/api"
	"github.com/ledgerkeep/ledgerkeep/internal/client/auth"
	"github.com/ledgerkeep/ledgerkeep/internal/client/cli"
	"github.com/ledgerkeep/ledgerkeep/internal/client/engine"
	"github.com/ledgerkeep/ledgerkeep/internal/client/iocli"
	"github.com/ledgerkeep/ledgerkeep/internal/client/netmon"
	"github.com/ledgerkeep/ledgerkeep/internal/client/queue"
	"github.com/ledgerkeep/ledgerkeep/internal/client/scheduler"
	"github.com/ledgerkeep/ledgerkeep/internal/client/status"
	"github.com/ledgerkeep/ledgerkeep/internal/client/storage"
	"github.com/ledgerkeep/ledgerkeep/internal/client/storage/boltdb"
	"github.com/ledgerkeep/ledgerkeep/internal/client/storage/sqlite"
	syncsvc "github.com/ledgerkeep/ledgerkeep/internal/client/sync"
	"github.com/ledgerkeep/ledgerkeep/internal/config"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// clientStorage объединяет контракты хранилища, которые реализует
// каждый бэкенд
type clientStorage interface {
	storage.QueueStorage
	storage.AuthStorage
	Close() error
}

func main() {
	cfg := config.Load()

	// Глобальные флаги; значения из окружения служат умолчаниями
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", cfg.ServerURL, "Server URL")
	dbPath := flag.String("db", cfg.DBPath, "Path to local database")
	backend := flag.String("backend", cfg.DBBackend, "Storage backend: bolt or sqlite")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage()
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	// Контекст с отменой по сигналу: нужен фоновому режиму
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Открываем локальное хранилище
	store, err := openStorage(ctx, *backend, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	// Собираем движок явно: никакого глобального состояния
	apiClient := api.NewClient(*serverURL)
	authService := auth.NewService(apiClient, store, logger)

	queueManager, err := queue.NewManager(ctx, store, cfg.MaxRetries, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load action queue: %v\n", err)
		os.Exit(1)
	}

	notifier := status.NewNotifier(logger)
	monitor := netmon.NewMonitor(netmon.NewHealthProber(apiClient), cfg.ProbeInterval, logger)
	executor := syncsvc.NewService(apiClient, queueManager, authService, monitor, notifier, logger)
	sched := scheduler.New(executor, monitor, cfg.SyncSchedule, logger)
	eng := engine.New(queueManager, executor, monitor, sched, notifier, logger)

	c := cli.New(iocli.NewStdio(), eng, authService, logger)

	if err := c.Run(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStorage создает бэкенд локального хранилища по имени
func openStorage(ctx context.Context, backend, dbPath string) (clientStorage, error) {
	switch backend {
	case "bolt":
		return boltdb.New(ctx, dbPath)
	case "sqlite":
		return sqlite.New(ctx, dbPath)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q (use bolt or sqlite)", backend)
	}
}

func printVersion() {
	fmt.Printf("LedgerKeep Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
