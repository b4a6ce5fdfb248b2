package cli

import (
	"context"
	"time"

	"github.com/ledgerkeep/ledgerkeep/internal/models"
)

// runDaemon запускает движок в фоновом режиме: монитор сети и
// планировщик работают до отмены контекста (Ctrl+C), изменения
// статуса печатаются в терминал.
func (c *Cli) runDaemon(ctx context.Context) error {
	if err := c.engine.Start(ctx); err != nil {
		return err
	}
	defer c.engine.Close()

	unsubscribe := c.engine.AddStatusListener(func(status models.SyncStatus) {
		c.printStatusLine(status)
	})
	defer unsubscribe()

	c.io.Println("ledgerkeep running, press Ctrl+C to stop")

	<-ctx.Done()

	c.io.Println()
	c.io.Println("Shutting down...")

	return nil
}

func (c *Cli) printStatusLine(status models.SyncStatus) {
	state := "offline"
	if status.IsOnline {
		state = "online"
	}
	if status.IsSyncing {
		state = "syncing"
	}

	lastSync := "never"
	if status.LastSync != nil {
		lastSync = status.LastSync.Format(time.RFC3339)
	}

	c.io.Printf("[%s] pending=%d last_sync=%s errors=%d\n",
		state, status.PendingActions, lastSync, len(status.Errors))
}
