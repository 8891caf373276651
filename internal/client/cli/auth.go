package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docspace-io/docspace/internal/client/auth"
	"github.com/docspace-io/docspace/internal/validation"
)

func (c *Cli) runRegister(ctx context.Context) error {
	c.println("=== Registration ===")
	c.println()

	username, err := c.readInput("Username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}
	if err := validation.ValidateUsername(username); err != nil {
		return err
	}

	password, err := c.readPassword(fmt.Sprintf("Password (min %d chars): ", validation.MinPasswordLen))
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return err
	}

	confirm, err := c.readPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	userID, err := c.authService.Register(ctx, username, password)
	if err != nil {
		return err
	}

	c.println()
	c.println("✓ Registration successful!")
	c.printf("User ID: %s\n", userID)
	c.println()
	c.println("Run 'docspace login' to start working.")

	return nil
}

func (c *Cli) runLogin(ctx context.Context) error {
	username, err := c.readInput("Username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}

	password, err := c.readPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	if err := c.authService.Login(ctx, username, password); err != nil {
		return err
	}

	c.printf("✓ Logged in as %s\n", username)
	return nil
}

func (c *Cli) runLogout(ctx context.Context) error {
	if err := c.authService.Logout(ctx); err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			c.println("Not authenticated")
			return nil
		}
		// Локальная сессия уже удалена, предупреждаем про сервер
		c.printf("Warning: %v\n", err)
	}

	c.println("✓ Logged out")
	return nil
}

func (c *Cli) runStatus(ctx context.Context) error {
	session, err := c.authService.Session(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			c.println("Status: Not authenticated")
			c.println()
			c.println("Run 'docspace login' to authenticate.")
			return nil
		}
		return err
	}

	expiresAt := time.Unix(session.ExpiresAt, 0)

	c.println("Status: Authenticated")
	c.printf("Username: %s\n", session.Username)
	c.printf("Token expires: %s\n", expiresAt.Format(time.RFC3339))

	replicas, err := c.replicas.ListReplicas(ctx)
	if err != nil {
		return fmt.Errorf("failed to list replicas: %w", err)
	}

	var pendingDocs, pendingOps int
	for _, replica := range replicas {
		ops, err := c.replicas.GetPendingOperations(ctx, replica.DocumentID)
		if err != nil {
			return fmt.Errorf("failed to get pending operations: %w", err)
		}
		if len(ops) > 0 {
			pendingDocs++
			pendingOps += len(ops)
		}
	}

	c.println()
	c.printf("Local replicas: %d\n", len(replicas))
	if pendingOps > 0 {
		c.printf("Pending sync: %d operation(s) in %d document(s)\n", pendingOps, pendingDocs)
		c.println("Run 'docspace sync' to push local changes.")
	} else {
		c.println("✓ All local changes synchronized")
	}

	return nil
}
