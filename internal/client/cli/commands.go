package cli

import (
	"context"
	"fmt"
)

// Run выполняет команду с аргументами
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.runRegister(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "spaces":
		return c.runSpaces(ctx)
	case "create-space":
		return c.runCreateSpace(ctx, args)
	case "docs":
		return c.runDocs(ctx, args)
	case "create-doc":
		return c.runCreateDoc(ctx, args)
	case "get":
		return c.runGet(ctx, args)
	case "delete":
		return c.runDelete(ctx, args)
	case "checkout":
		return c.runCheckout(ctx, args)
	case "edit":
		return c.runEdit(ctx, args)
	case "sync":
		return c.runSync(ctx, args)
	default:
		PrintUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}
