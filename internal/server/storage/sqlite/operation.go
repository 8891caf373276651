package sqlite

import (
	"context"
	"fmt"

	"github.com/docspace-io/docspace/internal/models"
)

// SaveOperation stores an operation identified by (document, replica, seq)
// Insert is idempotent: returns false if the operation is already known
func (s *Storage) SaveOperation(ctx context.Context, op *models.Operation) (bool, error) {
	query := `
		INSERT OR IGNORE INTO operations (document_id, replica_id, seq, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	// ReplicaID/Seq приводятся к int64: SQLite INTEGER знаковый,
	// two's complement сохраняет все 64 бита без потерь.
	result, err := s.db.ExecContext(ctx, query,
		op.DocumentID,
		int64(op.ReplicaID),
		int64(op.Seq),
		op.Payload,
		op.CreatedAt.Unix(),
	)

	if err != nil {
		return false, fmt.Errorf("failed to insert operation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// GetOperationsInRange retrieves operations of one replica with
// fromSeq <= seq <= toSeq, ordered by seq ascending
// Returns empty slice if nothing found
func (s *Storage) GetOperationsInRange(ctx context.Context, docID string, replicaID, fromSeq, toSeq uint64) ([]*models.Operation, error) {
	query := `
		SELECT document_id, replica_id, seq, payload, created_at
		FROM operations
		WHERE document_id = ? AND replica_id = ? AND seq >= ? AND seq <= ?
		ORDER BY seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query, docID, int64(replicaID), int64(fromSeq), int64(toSeq))
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ops []*models.Operation

	for rows.Next() {
		op := &models.Operation{}
		var replica, seq, createdAt int64

		if err := rows.Scan(
			&op.DocumentID,
			&replica,
			&seq,
			&op.Payload,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}

		op.ReplicaID = uint64(replica)
		op.Seq = uint64(seq)
		op.CreatedAt = unixToTime(createdAt)
		ops = append(ops, op)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return ops, nil
}

// CountOperations returns the number of stored operations for a document
func (s *Storage) CountOperations(ctx context.Context, docID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM operations WHERE document_id = ?`, docID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count operations: %w", err)
	}
	return count, nil
}
