package cli

import (
	"context"

	"github.com/docspace-io/docspace/internal/client/sync"
)

func (c *Cli) runSync(ctx context.Context, args []string) error {
	// С аргументом синхронизируется один документ, без - все реплики
	if len(args) > 0 {
		result, err := c.syncService.SyncDocument(ctx, args[0])
		if err != nil {
			return err
		}
		c.printSyncResult(result)
		return nil
	}

	results, err := c.syncService.SyncAll(ctx)
	for i := range results {
		c.printSyncResult(&results[i])
	}
	if err != nil {
		return err
	}

	if len(results) == 0 {
		c.println("Nothing to sync: no local replicas.")
	}

	return nil
}

func (c *Cli) printSyncResult(result *sync.SyncResult) {
	c.printf("✓ %s: pushed %d (accepted %d, discarded %d), pulled %d\n",
		result.DocumentID,
		result.Pushed,
		result.Accepted,
		result.Discarded,
		result.Pulled,
	)
}
