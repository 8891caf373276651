package cli

import (
	"context"
	"fmt"

	"github.com/docspace-io/docspace/internal/validation"
	"github.com/docspace-io/docspace/pkg/api"
)

func (c *Cli) runSpaces(ctx context.Context) error {
	token, err := c.authService.AccessToken(ctx)
	if err != nil {
		return err
	}

	resp, err := c.spaces.ListSpaces(ctx, token)
	if err != nil {
		return err
	}

	if len(resp.Spaces) == 0 {
		c.println("No spaces yet. Create one with 'docspace create-space <name> <slug>'.")
		return nil
	}

	c.printf("Spaces (%d):\n", len(resp.Spaces))
	for _, space := range resp.Spaces {
		c.printf("  %s  %s (%s)\n", space.ID, space.Name, space.Slug)
	}

	return nil
}

func (c *Cli) runCreateSpace(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: docspace create-space <name> <slug>")
	}
	name, slug := args[0], args[1]

	if err := validation.ValidateSlug(slug); err != nil {
		return err
	}

	token, err := c.authService.AccessToken(ctx)
	if err != nil {
		return err
	}

	space, err := c.spaces.CreateSpace(ctx, token, api.CreateSpaceRequest{
		Name: name,
		Slug: slug,
	})
	if err != nil {
		return err
	}

	c.println("✓ Space created")
	c.printf("ID: %s\n", space.ID)
	c.printf("Name: %s\n", space.Name)
	c.printf("Slug: %s\n", space.Slug)

	return nil
}
