package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docspace-io/docspace/internal/client/storage"
	"github.com/docspace-io/docspace/internal/models"
)

func TestStorage_ReplicaLifecycle(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.GetReplica(ctx, "doc-1")
	assert.ErrorIs(t, err, storage.ErrReplicaNotFound)

	replica := &storage.Replica{
		DocumentID:  "doc-1",
		Title:       "Notes",
		Content:     []byte("hello"),
		StateVector: []byte{1, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0},
		UpdatedAt:   time.Now().Unix(),
	}
	require.NoError(t, s.SaveReplica(ctx, replica))

	got, err := s.GetReplica(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, replica, got)

	// Перезапись
	replica.Content = []byte("updated")
	require.NoError(t, s.SaveReplica(ctx, replica))

	got, err = s.GetReplica(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("updated"), got.Content)

	list, err := s.ListReplicas(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.DeleteReplica(ctx, "doc-1"))

	_, err = s.GetReplica(ctx, "doc-1")
	assert.ErrorIs(t, err, storage.ErrReplicaNotFound)

	err = s.DeleteReplica(ctx, "doc-1")
	assert.ErrorIs(t, err, storage.ErrReplicaNotFound)
}

func TestStorage_PendingOperations(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	ops, err := s.GetPendingOperations(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, ops)

	// Записываем не по порядку, курсор должен вернуть по seq
	for _, seq := range []uint64{3, 1, 2} {
		require.NoError(t, s.AppendPendingOperation(ctx, &models.Operation{
			DocumentID: "doc-1",
			ReplicaID:  42,
			Seq:        seq,
			Payload:    []byte{byte(seq)},
		}))
	}

	ops, err = s.GetPendingOperations(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, ops, 3)
	for i, op := range ops {
		assert.Equal(t, uint64(i+1), op.Seq, "operations must be ordered by seq")
	}

	require.NoError(t, s.ClearPendingOperations(ctx, "doc-1"))

	ops, err = s.GetPendingOperations(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, ops)

	// Повторная очистка пустого лога не ошибка
	require.NoError(t, s.ClearPendingOperations(ctx, "doc-1"))
}

func TestStorage_DeleteReplica_DropsPending(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveReplica(ctx, &storage.Replica{
		DocumentID: "doc-1",
		Title:      "Notes",
	}))
	require.NoError(t, s.AppendPendingOperation(ctx, &models.Operation{
		DocumentID: "doc-1",
		ReplicaID:  42,
		Seq:        1,
		Payload:    []byte("op"),
	}))

	require.NoError(t, s.DeleteReplica(ctx, "doc-1"))

	ops, err := s.GetPendingOperations(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, ops)
}
