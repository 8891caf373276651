package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/docspace-io/docspace/internal/models"
	"github.com/docspace-io/docspace/internal/server/storage"
)

// SaveAttachment stores a new attachment
func (s *Storage) SaveAttachment(ctx context.Context, att *models.Attachment) error {
	query := `
		INSERT INTO attachments (id, document_id, name, mime_type, size, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		att.ID,
		att.DocumentID,
		att.Name,
		att.MimeType,
		att.Size,
		att.Data,
		att.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert attachment: %w", err)
	}

	return nil
}

// GetAttachment retrieves attachment by ID including its content
// Returns ErrAttachmentNotFound if attachment doesn't exist
func (s *Storage) GetAttachment(ctx context.Context, attID string) (*models.Attachment, error) {
	query := `
		SELECT id, document_id, name, mime_type, size, data, created_at
		FROM attachments
		WHERE id = ?
	`

	att := &models.Attachment{}
	var createdAt int64

	err := s.db.QueryRowContext(ctx, query, attID).Scan(
		&att.ID,
		&att.DocumentID,
		&att.Name,
		&att.MimeType,
		&att.Size,
		&att.Data,
		&createdAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrAttachmentNotFound
		}
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}

	att.CreatedAt = unixToTime(createdAt)

	return att, nil
}

// ListAttachments retrieves attachment metadata for a document (no content)
// Returns empty slice if no attachments found
func (s *Storage) ListAttachments(ctx context.Context, docID string) ([]*models.Attachment, error) {
	query := `
		SELECT id, document_id, name, mime_type, size, created_at
		FROM attachments
		WHERE document_id = ?
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var attachments []*models.Attachment

	for rows.Next() {
		att := &models.Attachment{}
		var createdAt int64

		if err := rows.Scan(
			&att.ID,
			&att.DocumentID,
			&att.Name,
			&att.MimeType,
			&att.Size,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}

		att.CreatedAt = unixToTime(createdAt)
		attachments = append(attachments, att)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return attachments, nil
}

// DeleteAttachment deletes attachment by ID
// Returns ErrAttachmentNotFound if attachment doesn't exist
func (s *Storage) DeleteAttachment(ctx context.Context, attID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = ?`, attID)
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrAttachmentNotFound
	}

	return nil
}
