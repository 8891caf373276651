package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/docspace-io/docspace/internal/models"
	"github.com/docspace-io/docspace/internal/server/storage"
)

// CreateSpace creates a new space
// Returns ErrSpaceAlreadyExists if owner already has a space with this slug
func (s *Storage) CreateSpace(ctx context.Context, space *models.Space) error {
	query := `
		INSERT INTO spaces (id, owner_id, name, slug, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		space.ID,
		space.OwnerID,
		space.Name,
		space.Slug,
		space.CreatedAt.Unix(),
		space.UpdatedAt.Unix(),
	)

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrSpaceAlreadyExists
		}
		return fmt.Errorf("failed to insert space: %w", err)
	}

	return nil
}

// GetSpace retrieves space by ID
// Returns ErrSpaceNotFound if space doesn't exist
func (s *Storage) GetSpace(ctx context.Context, spaceID string) (*models.Space, error) {
	query := `
		SELECT id, owner_id, name, slug, created_at, updated_at
		FROM spaces
		WHERE id = ?
	`

	space := &models.Space{}
	var createdAt, updatedAt int64

	err := s.db.QueryRowContext(ctx, query, spaceID).Scan(
		&space.ID,
		&space.OwnerID,
		&space.Name,
		&space.Slug,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSpaceNotFound
		}
		return nil, fmt.Errorf("failed to get space: %w", err)
	}

	space.CreatedAt = unixToTime(createdAt)
	space.UpdatedAt = unixToTime(updatedAt)

	return space, nil
}

// ListSpaces retrieves all spaces owned by a user
// Returns empty slice if no spaces found
func (s *Storage) ListSpaces(ctx context.Context, ownerID string) ([]*models.Space, error) {
	query := `
		SELECT id, owner_id, name, slug, created_at, updated_at
		FROM spaces
		WHERE owner_id = ?
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query spaces: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var spaces []*models.Space

	for rows.Next() {
		space := &models.Space{}
		var createdAt, updatedAt int64

		if err := rows.Scan(
			&space.ID,
			&space.OwnerID,
			&space.Name,
			&space.Slug,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan space: %w", err)
		}

		space.CreatedAt = unixToTime(createdAt)
		space.UpdatedAt = unixToTime(updatedAt)
		spaces = append(spaces, space)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return spaces, nil
}

// DeleteSpace deletes space by ID together with its documents
// Returns ErrSpaceNotFound if space doesn't exist
func (s *Storage) DeleteSpace(ctx context.Context, spaceID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM spaces WHERE id = ?`, spaceID)
	if err != nil {
		return fmt.Errorf("failed to delete space: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrSpaceNotFound
	}

	return nil
}
