package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/ledgerkeep/ledgerkeep/internal/models"
)

// parseActionArgs разбирает флаги -entity и -data для команд очереди
func parseActionArgs(name string, args []string) (string, map[string]any, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	entity := fs.String("entity", "", "Remote collection name (e.g. expenses, invoices)")
	data := fs.String("data", "", "Record fields as a JSON object")

	if err := fs.Parse(args); err != nil {
		return "", nil, err
	}

	if *entity == "" {
		return "", nil, fmt.Errorf("-entity is required")
	}
	if *data == "" {
		return "", nil, fmt.Errorf("-data is required")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(*data), &payload); err != nil {
		return "", nil, fmt.Errorf("invalid -data JSON: %w", err)
	}

	return *entity, payload, nil
}

func (c *Cli) runAdd(ctx context.Context, args []string) error {
	entity, payload, err := parseActionArgs("add", args)
	if err != nil {
		return err
	}

	id, err := c.engine.EnqueueCreate(ctx, entity, payload)
	if err != nil {
		return err
	}

	c.io.Printf("✓ Queued CREATE %s (action %s)\n", entity, id)
	c.printPendingHint()

	return nil
}

func (c *Cli) runUpdate(ctx context.Context, args []string) error {
	entity, payload, err := parseActionArgs("update", args)
	if err != nil {
		return err
	}

	id, err := c.engine.EnqueueUpdate(ctx, entity, payload)
	if err != nil {
		return err
	}

	c.io.Printf("✓ Queued UPDATE %s (action %s)\n", entity, id)
	c.printPendingHint()

	return nil
}

func (c *Cli) runDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	entity := fs.String("entity", "", "Remote collection name")
	targetID := fs.String("id", "", "Server-assigned record id")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *entity == "" {
		return fmt.Errorf("-entity is required")
	}
	if *targetID == "" {
		return fmt.Errorf("-id is required")
	}

	payload := map[string]any{models.PayloadIDKey: *targetID}

	id, err := c.engine.EnqueueDelete(ctx, *entity, payload)
	if err != nil {
		return err
	}

	c.io.Printf("✓ Queued DELETE %s/%s (action %s)\n", *entity, *targetID, id)
	c.printPendingHint()

	return nil
}

func (c *Cli) printPendingHint() {
	status := c.engine.GetStatus()
	c.io.Printf("Pending actions: %d\n", status.PendingActions)
}
