package services

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"grapheditor/application/ports"
	"grapheditor/domain/core/valueobjects"
	"grapheditor/domain/document"
	"grapheditor/domain/events"
	"grapheditor/domain/session"
	"grapheditor/domain/versioning"
	pkgerrors "grapheditor/pkg/errors"
)

// MockSessionRepository keeps sessions in a map
type MockSessionRepository struct {
	mu       sync.Mutex
	sessions map[session.ID]*session.Session
	saves    int
	saveErr  error
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{sessions: make(map[session.ID]*session.Session)}
}

func (m *MockSessionRepository) Save(ctx context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.sessions[s.ID()] = s
	return nil
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id session.ID) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("session")
	}
	return s, nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, id session.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions), nil
}

// MockLocker serializes everything behind one mutex
type MockLocker struct {
	mu sync.Mutex
}

func (m *MockLocker) Lock(ctx context.Context, id session.ID) (func(), error) {
	m.mu.Lock()
	return m.mu.Unlock, nil
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifySession(sessionID string, message interface{}) {
	m.Called(sessionID, message)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) ObserveOperation(operation string, duration time.Duration, err error) {
	m.Called(operation, duration, err)
}

func (m *MockMetrics) SetActiveSessions(n int) {
	m.Called(n)
}

func (m *MockMetrics) ObserveHistoryDepth(depth int) {
	m.Called(depth)
}

func (m *MockMetrics) IncStaleReferences(n int) {
	m.Called(n)
}

// fixedLayout puts every node on a diagonal
type fixedLayout struct{}

func (fixedLayout) Layout(nodeIDs []string, edges []valueobjects.EdgeKey) map[string]valueobjects.Position {
	out := make(map[string]valueobjects.Position, len(nodeIDs))
	for i, id := range nodeIDs {
		out[id] = valueobjects.MustPosition(float64(i*10), float64(i*10))
	}
	return out
}

type MockTemplateRegistry struct {
	mock.Mock
}

func (m *MockTemplateRegistry) List() []ports.TemplateInfo {
	args := m.Called()
	return args.Get(0).([]ports.TemplateInfo)
}

func (m *MockTemplateRegistry) Generate(name string, params map[string]interface{}) (document.RawGraph, error) {
	args := m.Called(name, params)
	return args.Get(0).(document.RawGraph), args.Error(1)
}

type MockDocumentCodec struct {
	mock.Mock
}

func (m *MockDocumentCodec) Encode(format ports.Format, v interface{}) ([]byte, error) {
	args := m.Called(format, v)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockDocumentCodec) Decode(format ports.Format, data []byte) (*document.Document, *document.GraphParams, error) {
	args := m.Called(format, data)
	var doc *document.Document
	if d := args.Get(0); d != nil {
		doc = d.(*document.Document)
	}
	var params *document.GraphParams
	if p := args.Get(1); p != nil {
		params = p.(*document.GraphParams)
	}
	return doc, params, args.Error(2)
}

// MockDocumentStore keeps the latest revision of each document in a map
type MockDocumentStore struct {
	mock.Mock
	docs map[string]ports.StoredDocument
}

func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{docs: make(map[string]ports.StoredDocument)}
}

func (m *MockDocumentStore) Save(ctx context.Context, doc ports.StoredDocument, expectedVersion int) error {
	args := m.Called(ctx, doc, expectedVersion)
	if args.Error(0) == nil {
		m.docs[doc.Meta.Name] = doc
	}
	return args.Error(0)
}

func (m *MockDocumentStore) Get(ctx context.Context, name string) (ports.StoredDocument, error) {
	doc, ok := m.docs[name]
	if !ok {
		return ports.StoredDocument{}, pkgerrors.NewNotFoundError("document " + name)
	}
	return doc, nil
}

func (m *MockDocumentStore) List(ctx context.Context) ([]versioning.DocumentVersion, error) {
	out := make([]versioning.DocumentVersion, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, d.Meta)
	}
	return out, nil
}

func (m *MockDocumentStore) Revisions(ctx context.Context, name string) ([]versioning.DocumentVersion, error) {
	doc, ok := m.docs[name]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("document " + name)
	}
	return []versioning.DocumentVersion{doc.Meta}, nil
}

func (m *MockDocumentStore) Delete(ctx context.Context, name string) error {
	delete(m.docs, name)
	return nil
}
