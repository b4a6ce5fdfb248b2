package cli

import (
	"context"
	"fmt"
	"time"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Status ===")
	c.io.Println()

	// Состояние сессии
	isAuth, err := c.auth.IsAuthenticated(ctx)
	if err != nil {
		return fmt.Errorf("failed to check authentication: %w", err)
	}

	if !isAuth {
		c.io.Println("Session: not authenticated")
		c.io.Println()
		c.io.Println("Run 'ledgerkeep login' to authenticate.")
	} else {
		session, err := c.auth.Session(ctx)
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}

		expiresAt := time.Unix(session.ExpiresAt, 0)

		c.io.Println("Session: authenticated")
		c.io.Printf("Username: %s\n", session.Username)
		c.io.Printf("Token expires: %s\n", expiresAt.Format(time.RFC3339))

		if remaining := time.Until(expiresAt); remaining > 0 {
			c.io.Printf("Time remaining: %s\n", remaining.Round(time.Second))
		} else {
			c.io.Println("⚠️  Token has expired. Please login again.")
		}
	}

	// Состояние синхронизации
	status := c.engine.GetStatus()

	c.io.Println()
	if status.PendingActions > 0 {
		c.io.Printf("⚠️  Pending sync: %d action(s) waiting to be synchronized\n", status.PendingActions)
		c.io.Println("Run 'ledgerkeep sync' to synchronize with server.")
	} else {
		c.io.Println("✓ No pending actions")
	}

	if status.LastSync != nil {
		c.io.Printf("Last sync: %s\n", status.LastSync.Format(time.RFC3339))
	}

	for _, msg := range status.Errors {
		c.io.Printf("Last sync error: %s\n", msg)
	}

	return nil
}
