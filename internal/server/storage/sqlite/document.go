package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/docspace-io/docspace/internal/models"
	"github.com/docspace-io/docspace/internal/server/storage"
)

// CreateDocument creates a new document
func (s *Storage) CreateDocument(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (id, space_id, title, content, state_vector, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		doc.ID,
		doc.SpaceID,
		doc.Title,
		doc.Content,
		doc.StateVector,
		boolToInt(doc.Deleted),
		doc.CreatedAt.Unix(),
		doc.UpdatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	return nil
}

// GetDocument retrieves document by ID, including soft-deleted ones
// Returns ErrDocumentNotFound if document doesn't exist
func (s *Storage) GetDocument(ctx context.Context, docID string) (*models.Document, error) {
	query := `
		SELECT id, space_id, title, content, state_vector, deleted, created_at, updated_at
		FROM documents
		WHERE id = ?
	`

	doc := &models.Document{}
	var deleted int
	var createdAt, updatedAt int64

	err := s.db.QueryRowContext(ctx, query, docID).Scan(
		&doc.ID,
		&doc.SpaceID,
		&doc.Title,
		&doc.Content,
		&doc.StateVector,
		&deleted,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc.Deleted = intToBool(deleted)
	doc.CreatedAt = unixToTime(createdAt)
	doc.UpdatedAt = unixToTime(updatedAt)

	return doc, nil
}

// ListDocuments retrieves all non-deleted documents in a space
// Returns empty slice if no documents found
func (s *Storage) ListDocuments(ctx context.Context, spaceID string) ([]*models.Document, error) {
	query := `
		SELECT id, space_id, title, content, state_vector, deleted, created_at, updated_at
		FROM documents
		WHERE space_id = ? AND deleted = 0
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []*models.Document

	for rows.Next() {
		doc := &models.Document{}
		var deleted int
		var createdAt, updatedAt int64

		if err := rows.Scan(
			&doc.ID,
			&doc.SpaceID,
			&doc.Title,
			&doc.Content,
			&doc.StateVector,
			&deleted,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		doc.Deleted = intToBool(deleted)
		doc.CreatedAt = unixToTime(createdAt)
		doc.UpdatedAt = unixToTime(updatedAt)
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return docs, nil
}

// UpdateDocument updates title, content and state vector of a document
// Returns ErrDocumentNotFound if document doesn't exist
func (s *Storage) UpdateDocument(ctx context.Context, doc *models.Document) error {
	query := `
		UPDATE documents
		SET title = ?, content = ?, state_vector = ?, deleted = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		doc.Title,
		doc.Content,
		doc.StateVector,
		boolToInt(doc.Deleted),
		time.Now().Unix(),
		doc.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrDocumentNotFound
	}

	return nil
}

// SaveStateVector persists the document's encoded state vector
// Returns ErrDocumentNotFound if document doesn't exist
func (s *Storage) SaveStateVector(ctx context.Context, docID string, stateVector []byte) error {
	query := `
		UPDATE documents
		SET state_vector = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, stateVector, time.Now().Unix(), docID)
	if err != nil {
		return fmt.Errorf("failed to save state vector: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrDocumentNotFound
	}

	return nil
}

// DeleteDocument marks document as deleted (soft delete)
// Returns ErrDocumentNotFound if document doesn't exist
func (s *Storage) DeleteDocument(ctx context.Context, docID string) error {
	query := `
		UPDATE documents
		SET deleted = 1, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, time.Now().Unix(), docID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrDocumentNotFound
	}

	return nil
}
