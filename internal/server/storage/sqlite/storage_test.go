package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/docspace-io/docspace/internal/models"
)

// newTestStorage создает in-memory SQLite storage с выполненными миграциями
func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	storage, err := New(context.Background(), ":memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, storage.Close())
	})

	return storage
}

// createTestUser создает пользователя и возвращает его
func createTestUser(t *testing.T, s *Storage) *models.User {
	t.Helper()

	now := time.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     "user_" + uuid.New().String()[:8],
		PasswordHash: "$2a$12$test-hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.CreateUser(context.Background(), user))

	return user
}

// createTestSpace создает пространство для пользователя
func createTestSpace(t *testing.T, s *Storage, ownerID string) *models.Space {
	t.Helper()

	now := time.Now()
	space := &models.Space{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      "Test Space",
		Slug:      "space-" + uuid.New().String()[:8],
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateSpace(context.Background(), space))

	return space
}

// createTestDocument создает документ в пространстве
func createTestDocument(t *testing.T, s *Storage, spaceID string) *models.Document {
	t.Helper()

	now := time.Now()
	doc := &models.Document{
		ID:          uuid.New().String(),
		SpaceID:     spaceID,
		Title:       "Test Document",
		Content:     []byte("hello"),
		StateVector: []byte{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, s.CreateDocument(context.Background(), doc))

	return doc
}

func TestNew_RunsMigrations(t *testing.T) {
	s := newTestStorage(t)

	// Таблицы должны существовать после миграций
	for _, table := range []string{"users", "refresh_tokens", "spaces", "documents", "operations", "attachments"} {
		var name string
		err := s.DB().QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}
