package handlers

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/docspace-io/docspace/internal/models"
	"github.com/docspace-io/docspace/internal/server/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockUserStorage is a mock implementation of UserStorage for testing
type mockUserStorage struct {
	users        map[string]*models.User // username -> User
	createError  error
	getUserError error
}

func newMockUserStorage() *mockUserStorage {
	return &mockUserStorage{users: make(map[string]*models.User)}
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	if m.createError != nil {
		return m.createError
	}
	if _, exists := m.users[user.Username]; exists {
		return storage.ErrUserAlreadyExists
	}
	m.users[user.Username] = user
	return nil
}

func (m *mockUserStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.getUserError != nil {
		return nil, m.getUserError
	}
	user, ok := m.users[username]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.getUserError != nil {
		return nil, m.getUserError
	}
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

// mockTokenStorage is a mock implementation of TokenStorage for testing
type mockTokenStorage struct {
	tokens      map[string]*models.RefreshToken // token -> RefreshToken
	saveError   error
	savedTokens []*models.RefreshToken
}

func newMockTokenStorage() *mockTokenStorage {
	return &mockTokenStorage{tokens: make(map[string]*models.RefreshToken)}
}

func (m *mockTokenStorage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.tokens[token.Token] = token
	m.savedTokens = append(m.savedTokens, token)
	return nil
}

func (m *mockTokenStorage) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.tokens[token]
	if !ok {
		return nil, storage.ErrTokenNotFound
	}
	return rt, nil
}

func (m *mockTokenStorage) DeleteRefreshToken(ctx context.Context, token string) error {
	if _, ok := m.tokens[token]; !ok {
		return storage.ErrTokenNotFound
	}
	delete(m.tokens, token)
	return nil
}

func (m *mockTokenStorage) DeleteUserTokens(ctx context.Context, userID string) (int, error) {
	deleted := 0
	for value, token := range m.tokens {
		if token.UserID == userID {
			delete(m.tokens, value)
			deleted++
		}
	}
	return deleted, nil
}

func (m *mockTokenStorage) DeleteExpiredTokens(ctx context.Context) (int, error) {
	return 0, nil
}

// mockSpaceStorage is a mock implementation of SpaceStorage for testing
type mockSpaceStorage struct {
	spaces map[string]*models.Space // id -> Space
}

func newMockSpaceStorage() *mockSpaceStorage {
	return &mockSpaceStorage{spaces: make(map[string]*models.Space)}
}

func (m *mockSpaceStorage) CreateSpace(ctx context.Context, space *models.Space) error {
	for _, existing := range m.spaces {
		if existing.OwnerID == space.OwnerID && existing.Slug == space.Slug {
			return storage.ErrSpaceAlreadyExists
		}
	}
	m.spaces[space.ID] = space
	return nil
}

func (m *mockSpaceStorage) GetSpace(ctx context.Context, spaceID string) (*models.Space, error) {
	space, ok := m.spaces[spaceID]
	if !ok {
		return nil, storage.ErrSpaceNotFound
	}
	return space, nil
}

func (m *mockSpaceStorage) ListSpaces(ctx context.Context, ownerID string) ([]*models.Space, error) {
	result := make([]*models.Space, 0)
	for _, space := range m.spaces {
		if space.OwnerID == ownerID {
			result = append(result, space)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockSpaceStorage) DeleteSpace(ctx context.Context, spaceID string) error {
	if _, ok := m.spaces[spaceID]; !ok {
		return storage.ErrSpaceNotFound
	}
	delete(m.spaces, spaceID)
	return nil
}

// mockDocumentStorage is a mock implementation of DocumentStorage for testing
type mockDocumentStorage struct {
	mu   sync.Mutex
	docs map[string]*models.Document // id -> Document
}

func newMockDocumentStorage() *mockDocumentStorage {
	return &mockDocumentStorage{docs: make(map[string]*models.Document)}
}

func (m *mockDocumentStorage) CreateDocument(ctx context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc.Clone()
	return nil
}

func (m *mockDocumentStorage) GetDocument(ctx context.Context, docID string) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[docID]
	if !ok {
		return nil, storage.ErrDocumentNotFound
	}
	return doc.Clone(), nil
}

func (m *mockDocumentStorage) ListDocuments(ctx context.Context, spaceID string) ([]*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*models.Document, 0)
	for _, doc := range m.docs {
		if doc.SpaceID == spaceID && !doc.Deleted {
			result = append(result, doc.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockDocumentStorage) UpdateDocument(ctx context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[doc.ID]; !ok {
		return storage.ErrDocumentNotFound
	}
	m.docs[doc.ID] = doc.Clone()
	return nil
}

func (m *mockDocumentStorage) SaveStateVector(ctx context.Context, docID string, stateVector []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[docID]
	if !ok {
		return storage.ErrDocumentNotFound
	}
	doc.StateVector = append([]byte(nil), stateVector...)
	return nil
}

func (m *mockDocumentStorage) DeleteDocument(ctx context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[docID]
	if !ok {
		return storage.ErrDocumentNotFound
	}
	doc.Deleted = true
	return nil
}

// mockOperationStorage is a mock implementation of OperationStorage for testing
type mockOperationStorage struct {
	mu  sync.Mutex
	ops []*models.Operation
}

func newMockOperationStorage() *mockOperationStorage {
	return &mockOperationStorage{}
}

func (m *mockOperationStorage) SaveOperation(ctx context.Context, op *models.Operation) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.ops {
		if existing.DocumentID == op.DocumentID && existing.ReplicaID == op.ReplicaID && existing.Seq == op.Seq {
			return false, nil
		}
	}
	m.ops = append(m.ops, op.Clone())
	return true, nil
}

func (m *mockOperationStorage) GetOperationsInRange(ctx context.Context, docID string, replicaID, fromSeq, toSeq uint64) ([]*models.Operation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*models.Operation, 0)
	for _, op := range m.ops {
		if op.DocumentID == docID && op.ReplicaID == replicaID && op.Seq >= fromSeq && op.Seq <= toSeq {
			result = append(result, op.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Seq < result[j].Seq })
	return result, nil
}

func (m *mockOperationStorage) CountOperations(ctx context.Context, docID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, op := range m.ops {
		if op.DocumentID == docID {
			count++
		}
	}
	return count, nil
}

// mockAttachmentStorage is a mock implementation of AttachmentStorage for testing
type mockAttachmentStorage struct {
	attachments map[string]*models.Attachment // id -> Attachment
}

func newMockAttachmentStorage() *mockAttachmentStorage {
	return &mockAttachmentStorage{attachments: make(map[string]*models.Attachment)}
}

func (m *mockAttachmentStorage) SaveAttachment(ctx context.Context, att *models.Attachment) error {
	m.attachments[att.ID] = att
	return nil
}

func (m *mockAttachmentStorage) GetAttachment(ctx context.Context, attID string) (*models.Attachment, error) {
	att, ok := m.attachments[attID]
	if !ok {
		return nil, storage.ErrAttachmentNotFound
	}
	return att, nil
}

func (m *mockAttachmentStorage) ListAttachments(ctx context.Context, docID string) ([]*models.Attachment, error) {
	result := make([]*models.Attachment, 0)
	for _, att := range m.attachments {
		if att.DocumentID == docID {
			meta := *att
			meta.Data = nil
			result = append(result, &meta)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockAttachmentStorage) DeleteAttachment(ctx context.Context, attID string) error {
	if _, ok := m.attachments[attID]; !ok {
		return storage.ErrAttachmentNotFound
	}
	delete(m.attachments, attID)
	return nil
}
