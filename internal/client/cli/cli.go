package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ledgerkeep/ledgerkeep/internal/client/auth"
	"github.com/ledgerkeep/ledgerkeep/internal/client/engine"
	"github.com/ledgerkeep/ledgerkeep/internal/client/iocli"
)

// Cli объединяет зависимости команд клиента
type Cli struct {
	io     iocli.IO
	engine *engine.Engine
	auth   *auth.Service
	logger *slog.Logger
}

// New создает CLI поверх движка и сервиса авторизации
func New(io iocli.IO, eng *engine.Engine, authService *auth.Service, logger *slog.Logger) *Cli {
	return &Cli{
		io:     io,
		engine: eng,
		auth:   authService,
		logger: logger,
	}
}

// Run выполняет команду с аргументами
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "add":
		return c.runAdd(ctx, args)
	case "update":
		return c.runUpdate(ctx, args)
	case "delete":
		return c.runDelete(ctx, args)
	case "pending":
		return c.runPending(ctx)
	case "sync":
		return c.runSync(ctx)
	case "clear":
		return c.runClear(ctx)
	case "run":
		return c.runDaemon(ctx)
	default:
		PrintUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

// PrintUsage выводит справку по командам
func PrintUsage() {
	fmt.Println("Usage: ledgerkeep [flags] <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  login                       Authenticate with the server")
	fmt.Println("  logout                      Remove the local session")
	fmt.Println("  status                      Show sync and session status")
	fmt.Println("  add -entity E -data JSON    Queue creation of a record")
	fmt.Println("  update -entity E -data JSON Queue update of a record (data must contain \"id\")")
	fmt.Println("  delete -entity E -id ID     Queue deletion of a record")
	fmt.Println("  pending                     List queued actions")
	fmt.Println("  sync                        Force a sync pass now")
	fmt.Println("  clear                       Drop all queued actions")
	fmt.Println("  run                         Run in background sync mode until interrupted")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -server URL    Server URL")
	fmt.Println("  -db PATH       Path to local database")
	fmt.Println("  -backend NAME  Storage backend: bolt or sqlite")
	fmt.Println("  -version       Show version information")
}
