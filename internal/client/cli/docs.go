package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docspace-io/docspace/internal/client/storage"
	"github.com/docspace-io/docspace/internal/validation"
	"github.com/docspace-io/docspace/pkg/api"
)

func (c *Cli) runDocs(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: docspace docs <space-id>")
	}
	spaceID := args[0]

	token, err := c.authService.AccessToken(ctx)
	if err != nil {
		return err
	}

	resp, err := c.spaces.ListDocuments(ctx, token, spaceID)
	if err != nil {
		return err
	}

	if len(resp.Documents) == 0 {
		c.println("No documents in this space.")
		return nil
	}

	c.printf("Documents (%d):\n", len(resp.Documents))
	for _, doc := range resp.Documents {
		c.printf("  %s  %s (updated %s)\n",
			doc.ID, doc.Title, doc.UpdatedAt.Format(time.RFC3339))
	}

	return nil
}

func (c *Cli) runCreateDoc(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: docspace create-doc <space-id> <title>")
	}
	spaceID, title := args[0], args[1]

	if err := validation.ValidateTitle(title); err != nil {
		return err
	}

	token, err := c.authService.AccessToken(ctx)
	if err != nil {
		return err
	}

	doc, err := c.spaces.CreateDocument(ctx, token, spaceID, api.CreateDocumentRequest{
		Title: title,
	})
	if err != nil {
		return err
	}

	c.println("✓ Document created")
	c.printf("ID: %s\n", doc.ID)
	c.printf("Title: %s\n", doc.Title)
	c.println()
	c.printf("Run 'docspace checkout %s' to start editing locally.\n", doc.ID)

	return nil
}

func (c *Cli) runGet(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: docspace get <doc-id>")
	}
	docID := args[0]

	// Сначала локальная реплика, за ней сервер
	replica, err := c.replicas.GetReplica(ctx, docID)
	if err == nil {
		pending, err := c.replicas.GetPendingOperations(ctx, docID)
		if err != nil {
			return fmt.Errorf("failed to get pending operations: %w", err)
		}

		c.printf("Document: %s (local replica)\n", docID)
		c.printf("Title: %s\n", replica.Title)
		c.printf("Updated: %s\n", time.Unix(replica.UpdatedAt, 0).Format(time.RFC3339))
		if len(pending) > 0 {
			c.printf("Pending operations: %d\n", len(pending))
		}
		c.println()
		c.println(string(replica.Content))
		return nil
	}
	if !errors.Is(err, storage.ErrReplicaNotFound) {
		return fmt.Errorf("failed to get replica: %w", err)
	}

	token, err := c.authService.AccessToken(ctx)
	if err != nil {
		return err
	}

	doc, err := c.spaces.GetDocument(ctx, token, docID)
	if err != nil {
		return err
	}

	c.printf("Document: %s\n", doc.ID)
	c.printf("Title: %s\n", doc.Title)
	c.printf("Updated: %s\n", doc.UpdatedAt.Format(time.RFC3339))
	c.println()
	c.println(string(doc.Content))

	return nil
}

func (c *Cli) runDelete(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: docspace delete <doc-id>")
	}
	docID := args[0]

	token, err := c.authService.AccessToken(ctx)
	if err != nil {
		return err
	}

	if err := c.spaces.DeleteDocument(ctx, token, docID); err != nil {
		return err
	}

	// Удаляем локальную реплику вместе с неотправленными операциями
	if err := c.replicas.DeleteReplica(ctx, docID); err != nil && !errors.Is(err, storage.ErrReplicaNotFound) {
		return fmt.Errorf("failed to delete replica: %w", err)
	}

	c.printf("✓ Document %s deleted\n", docID)
	return nil
}
