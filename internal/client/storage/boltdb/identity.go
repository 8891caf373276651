package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

var replicaIDKey = []byte("replica_id")

// GetReplicaID возвращает стабильный идентификатор этой реплики,
// генерируя и сохраняя его при первом обращении.
// ID - младшие 8 байт случайного UUID.
func (s *Storage) GetReplicaID(ctx context.Context) (uint64, error) {
	var replicaID uint64

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMeta)
		if bucket == nil {
			return fmt.Errorf("meta bucket not found")
		}

		if data := bucket.Get(replicaIDKey); len(data) == 8 {
			replicaID = binary.LittleEndian.Uint64(data)
			return nil
		}

		id := uuid.New()
		replicaID = binary.LittleEndian.Uint64(id[8:])

		data := make([]byte, 8)
		binary.LittleEndian.PutUint64(data, replicaID)

		if err := bucket.Put(replicaIDKey, data); err != nil {
			return fmt.Errorf("failed to save replica id: %w", err)
		}

		return nil
	})

	if err != nil {
		return 0, err
	}

	return replicaID, nil
}
