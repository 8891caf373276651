package storage

import (
	"context"

	"github.com/docspace-io/docspace/internal/models"
)

// SpaceStorage defines interface for space persistence
type SpaceStorage interface {
	// CreateSpace creates a new space
	// Returns ErrSpaceAlreadyExists if owner already has a space with this slug
	CreateSpace(ctx context.Context, space *models.Space) error

	// GetSpace retrieves space by ID
	// Returns ErrSpaceNotFound if space doesn't exist
	GetSpace(ctx context.Context, spaceID string) (*models.Space, error)

	// ListSpaces retrieves all spaces owned by a user
	// Returns empty slice if no spaces found
	ListSpaces(ctx context.Context, ownerID string) ([]*models.Space, error)

	// DeleteSpace deletes space by ID together with its documents
	// Returns ErrSpaceNotFound if space doesn't exist
	DeleteSpace(ctx context.Context, spaceID string) error
}

// DocumentStorage defines interface for document persistence
type DocumentStorage interface {
	// CreateDocument creates a new document
	CreateDocument(ctx context.Context, doc *models.Document) error

	// GetDocument retrieves document by ID, including soft-deleted ones
	// Returns ErrDocumentNotFound if document doesn't exist
	GetDocument(ctx context.Context, docID string) (*models.Document, error)

	// ListDocuments retrieves all non-deleted documents in a space
	// Returns empty slice if no documents found
	ListDocuments(ctx context.Context, spaceID string) ([]*models.Document, error)

	// UpdateDocument updates title, content and state vector of a document
	// Returns ErrDocumentNotFound if document doesn't exist
	UpdateDocument(ctx context.Context, doc *models.Document) error

	// SaveStateVector persists the document's encoded state vector
	// Returns ErrDocumentNotFound if document doesn't exist
	SaveStateVector(ctx context.Context, docID string, stateVector []byte) error

	// DeleteDocument marks document as deleted (soft delete)
	// Returns ErrDocumentNotFound if document doesn't exist
	DeleteDocument(ctx context.Context, docID string) error
}

// OperationStorage defines interface for the per-document operation log
type OperationStorage interface {
	// SaveOperation stores an operation identified by (document, replica, seq)
	// Insert is idempotent: returns false if the operation is already known
	SaveOperation(ctx context.Context, op *models.Operation) (bool, error)

	// GetOperationsInRange retrieves operations of one replica with
	// fromSeq <= seq <= toSeq, ordered by seq ascending
	// Returns empty slice if nothing found
	GetOperationsInRange(ctx context.Context, docID string, replicaID, fromSeq, toSeq uint64) ([]*models.Operation, error)

	// CountOperations returns the number of stored operations for a document
	CountOperations(ctx context.Context, docID string) (int, error)
}

// AttachmentStorage defines interface for file attachment persistence
type AttachmentStorage interface {
	// SaveAttachment stores a new attachment
	SaveAttachment(ctx context.Context, att *models.Attachment) error

	// GetAttachment retrieves attachment by ID including its content
	// Returns ErrAttachmentNotFound if attachment doesn't exist
	GetAttachment(ctx context.Context, attID string) (*models.Attachment, error)

	// ListAttachments retrieves attachment metadata for a document (no content)
	// Returns empty slice if no attachments found
	ListAttachments(ctx context.Context, docID string) ([]*models.Attachment, error)

	// DeleteAttachment deletes attachment by ID
	// Returns ErrAttachmentNotFound if attachment doesn't exist
	DeleteAttachment(ctx context.Context, attID string) error
}
