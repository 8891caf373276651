package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/docspace-io/docspace/internal/client/storage"
	"github.com/docspace-io/docspace/internal/models"
)

// SaveReplica stores or replaces the local replica of a document
func (s *Storage) SaveReplica(ctx context.Context, replica *storage.Replica) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketReplicas)
		if bucket == nil {
			return fmt.Errorf("replicas bucket not found")
		}

		data, err := json.Marshal(replica)
		if err != nil {
			return fmt.Errorf("failed to marshal replica: %w", err)
		}

		if err := bucket.Put([]byte(replica.DocumentID), data); err != nil {
			return fmt.Errorf("failed to save replica: %w", err)
		}

		return nil
	})
}

// GetReplica retrieves the local replica of a document
func (s *Storage) GetReplica(ctx context.Context, docID string) (*storage.Replica, error) {
	var replica *storage.Replica

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketReplicas)
		if bucket == nil {
			return fmt.Errorf("replicas bucket not found")
		}

		data := bucket.Get([]byte(docID))
		if data == nil {
			return storage.ErrReplicaNotFound
		}

		replica = &storage.Replica{}
		if err := json.Unmarshal(data, replica); err != nil {
			return fmt.Errorf("failed to unmarshal replica: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return replica, nil
}

// ListReplicas retrieves all local replicas
func (s *Storage) ListReplicas(ctx context.Context) ([]*storage.Replica, error) {
	replicas := make([]*storage.Replica, 0)

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketReplicas)
		if bucket == nil {
			return fmt.Errorf("replicas bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			replica := &storage.Replica{}
			if err := json.Unmarshal(v, replica); err != nil {
				return fmt.Errorf("failed to unmarshal replica %s: %w", k, err)
			}
			replicas = append(replicas, replica)
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return replicas, nil
}

// DeleteReplica removes the local replica together with pending operations
func (s *Storage) DeleteReplica(ctx context.Context, docID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketReplicas)
		if bucket == nil {
			return fmt.Errorf("replicas bucket not found")
		}

		if bucket.Get([]byte(docID)) == nil {
			return storage.ErrReplicaNotFound
		}

		if err := bucket.Delete([]byte(docID)); err != nil {
			return fmt.Errorf("failed to delete replica: %w", err)
		}

		pending := tx.Bucket(bucketPending)
		if pending == nil {
			return fmt.Errorf("pending bucket not found")
		}

		// Вложенный bucket операций может отсутствовать
		if pending.Bucket([]byte(docID)) != nil {
			if err := pending.DeleteBucket([]byte(docID)); err != nil {
				return fmt.Errorf("failed to delete pending operations: %w", err)
			}
		}

		return nil
	})
}

// AppendPendingOperation stores a local operation not yet pushed to the server
func (s *Storage) AppendPendingOperation(ctx context.Context, op *models.Operation) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		pending := tx.Bucket(bucketPending)
		if pending == nil {
			return fmt.Errorf("pending bucket not found")
		}

		bucket, err := pending.CreateBucketIfNotExists([]byte(op.DocumentID))
		if err != nil {
			return fmt.Errorf("failed to create pending bucket: %w", err)
		}

		data, err := json.Marshal(op)
		if err != nil {
			return fmt.Errorf("failed to marshal operation: %w", err)
		}

		// Ключ - big-endian seq, чтобы курсор отдавал операции по порядку
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, op.Seq)

		if err := bucket.Put(key, data); err != nil {
			return fmt.Errorf("failed to save operation: %w", err)
		}

		return nil
	})
}

// GetPendingOperations retrieves pending operations of a document ordered by seq
func (s *Storage) GetPendingOperations(ctx context.Context, docID string) ([]*models.Operation, error) {
	ops := make([]*models.Operation, 0)

	err := s.db.View(func(tx *bbolt.Tx) error {
		pending := tx.Bucket(bucketPending)
		if pending == nil {
			return fmt.Errorf("pending bucket not found")
		}

		bucket := pending.Bucket([]byte(docID))
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			op := &models.Operation{}
			if err := json.Unmarshal(v, op); err != nil {
				return fmt.Errorf("failed to unmarshal operation: %w", err)
			}
			ops = append(ops, op)
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return ops, nil
}

// ClearPendingOperations drops pending operations after a successful push
func (s *Storage) ClearPendingOperations(ctx context.Context, docID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		pending := tx.Bucket(bucketPending)
		if pending == nil {
			return fmt.Errorf("pending bucket not found")
		}

		if pending.Bucket([]byte(docID)) == nil {
			return nil
		}

		if err := pending.DeleteBucket([]byte(docID)); err != nil {
			return fmt.Errorf("failed to clear pending operations: %w", err)
		}

		return nil
	})
}
