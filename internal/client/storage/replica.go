package storage

import (
	"context"

	"github.com/docspace-io/docspace/internal/models"
)

// Replica локальная копия документа на клиенте.
// StateVector - закодированный вектор, до которого реплика видела историю.
type Replica struct {
	DocumentID  string `json:"document_id"`
	Title       string `json:"title"`
	Content     []byte `json:"content"`
	StateVector []byte `json:"state_vector"`
	UpdatedAt   int64  `json:"updated_at"` // unix seconds
}

// ReplicaStorage defines interface for local document replicas
type ReplicaStorage interface {
	// SaveReplica stores or replaces the local replica of a document
	SaveReplica(ctx context.Context, replica *Replica) error

	// GetReplica retrieves the local replica of a document
	// Returns ErrReplicaNotFound if the document was never pulled
	GetReplica(ctx context.Context, docID string) (*Replica, error)

	// ListReplicas retrieves all local replicas
	ListReplicas(ctx context.Context) ([]*Replica, error)

	// DeleteReplica removes the local replica together with pending operations
	DeleteReplica(ctx context.Context, docID string) error

	// AppendPendingOperation stores a local operation not yet pushed to the server
	AppendPendingOperation(ctx context.Context, op *models.Operation) error

	// GetPendingOperations retrieves pending operations of a document ordered by seq
	GetPendingOperations(ctx context.Context, docID string) ([]*models.Operation, error)

	// ClearPendingOperations drops pending operations after a successful push
	ClearPendingOperations(ctx context.Context, docID string) error
}

// IdentityStorage defines interface for the client replica identity
type IdentityStorage interface {
	// GetReplicaID returns the stable replica ID of this client,
	// generating and persisting it on first call
	GetReplicaID(ctx context.Context) (uint64, error)
}
