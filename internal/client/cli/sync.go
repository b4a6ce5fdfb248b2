package cli

import (
	"context"
	"fmt"
	"strings"
)

func (c *Cli) runSync(ctx context.Context) error {
	c.io.Println("=== Synchronization ===")
	c.io.Println()

	pending := c.engine.GetStatus().PendingActions
	if pending == 0 {
		c.io.Println("Nothing to synchronize.")
		return nil
	}

	c.io.Printf("Synchronizing %d pending action(s) with server...\n", pending)

	result, err := c.engine.ForceSync(ctx)
	if err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}

	c.io.Println()
	c.io.Printf("Synced:    %d action(s)\n", result.SyncedCount)

	remaining := c.engine.GetStatus().PendingActions
	if remaining > 0 {
		c.io.Printf("Remaining: %d action(s)\n", remaining)
	}

	if len(result.Errors) > 0 {
		c.io.Println()
		c.io.Println("Errors:")
		for _, msg := range result.Errors {
			c.io.Printf("  - %s\n", msg)
		}
		return nil
	}

	c.io.Println()
	c.io.Println("✓ Synchronization completed successfully!")

	return nil
}

func (c *Cli) runPending(ctx context.Context) error {
	actions := c.engine.GetPendingActions(ctx)

	if len(actions) == 0 {
		c.io.Println("No pending actions.")
		return nil
	}

	c.io.Printf("%d pending action(s):\n", len(actions))
	c.io.Println()

	for i, action := range actions {
		c.io.Printf("%3d. [%s] %s %s  retries %d/%d  queued %s\n",
			i+1,
			action.ID[:8],
			action.Kind,
			action.Entity,
			action.RetryCount,
			action.MaxRetries,
			action.EnqueuedAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}

func (c *Cli) runClear(ctx context.Context) error {
	actions := c.engine.GetPendingActions(ctx)
	if len(actions) == 0 {
		c.io.Println("No pending actions.")
		return nil
	}

	c.io.Printf("This will drop %d unsynchronized action(s) permanently.\n", len(actions))

	answer, err := c.io.ReadInput("Continue? [y/N]: ")
	if err != nil {
		return err
	}

	if strings.ToLower(answer) != "y" {
		c.io.Println("Aborted.")
		return nil
	}

	if err := c.engine.ClearPendingActions(ctx); err != nil {
		return err
	}

	c.io.Println("✓ Pending actions cleared")

	return nil
}
