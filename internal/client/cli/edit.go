package cli

import (
	"context"
	"fmt"
	"strings"
)

func (c *Cli) runCheckout(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: docspace checkout <doc-id>")
	}
	docID := args[0]

	if err := c.syncService.Checkout(ctx, docID); err != nil {
		return err
	}

	c.printf("✓ Document %s checked out\n", docID)
	return nil
}

func (c *Cli) runEdit(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: docspace edit <doc-id> [text]")
	}
	docID := args[0]

	var content string
	if len(args) > 1 {
		content = strings.Join(args[1:], " ")
	} else {
		input, err := c.readInput("New content: ")
		if err != nil {
			return fmt.Errorf("failed to read content: %w", err)
		}
		content = input
	}

	if err := c.syncService.Edit(ctx, docID, []byte(content)); err != nil {
		return err
	}

	c.println("✓ Edit recorded locally")
	c.println("Run 'docspace sync' to push it to the server.")

	return nil
}
