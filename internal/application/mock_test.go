package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"imageenhancer/internal/domain"
)

// MockHandleStore は、テスト用のモックハンドルストアです
type MockHandleStore struct {
	mu        sync.Mutex
	seq       int
	entries   map[string]mockEntry
	released  []string
	createErr error
}

type mockEntry struct {
	data      []byte
	mediaType string
}

func NewMockHandleStore() *MockHandleStore {
	return &MockHandleStore{entries: make(map[string]mockEntry)}
}

func (m *MockHandleStore) Create(ctx context.Context, data []byte, mediaType string) (domain.DisplayHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return domain.DisplayHandle{}, m.createErr
	}
	m.seq++
	id := fmt.Sprintf("h%d", m.seq)
	m.entries[id] = mockEntry{data: data, mediaType: mediaType}
	return domain.DisplayHandle{ID: id, MediaType: mediaType, URL: "/handles/" + id}, nil
}

func (m *MockHandleStore) Open(ctx context.Context, id string) (io.ReadCloser, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, "", domain.ErrHandleNotFound
	}
	return io.NopCloser(bytes.NewReader(e.data)), e.mediaType, nil
}

func (m *MockHandleStore) Release(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, id)
	m.released = append(m.released, id)
	return nil
}

func (m *MockHandleStore) Data(id string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	return e.data, e.mediaType, ok
}

func (m *MockHandleStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MockHandleStore) Released() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.released...)
}

// callRecorder は、エンコーダーとクライアントの呼び出し順序を記録します
type callRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *callRecorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

func (r *callRecorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// MockEncoder は、テスト用のモックエンコーダーです
type MockEncoder struct {
	recorder *callRecorder
	payload  domain.EncodedPayload
	err      error
}

func (m *MockEncoder) Encode(ctx context.Context, src domain.SourceFile) (domain.EncodedPayload, error) {
	if m.recorder != nil {
		m.recorder.record("encode")
	}
	return m.payload, m.err
}

// MockEditClient は、テスト用のモック画像編集クライアントです
type MockEditClient struct {
	recorder *callRecorder
	content  string
	ok       bool
	err      error

	mu       sync.Mutex
	requests []domain.EditRequest

	// block が設定されている場合、Submitはチャネルが閉じられるまで待機します
	block   chan struct{}
	entered chan struct{}
}

func (m *MockEditClient) Submit(ctx context.Context, request domain.EditRequest) (string, bool, error) {
	if m.recorder != nil {
		m.recorder.record("submit")
	}
	m.mu.Lock()
	m.requests = append(m.requests, request)
	m.mu.Unlock()

	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.block != nil {
		<-m.block
	}
	return m.content, m.ok, m.err
}

func (m *MockEditClient) Requests() []domain.EditRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.EditRequest(nil), m.requests...)
}

// mockSourceFile は、テスト用のファイルです
type mockSourceFile struct {
	data      []byte
	mediaType string
	openErr   error
	readErr   error
}

func (f mockSourceFile) Open(ctx context.Context) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	if f.readErr != nil {
		return io.NopCloser(&failingReader{err: f.readErr}), nil
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func (f mockSourceFile) MediaType() string {
	return f.mediaType
}

type failingReader struct {
	err error
}

func (r *failingReader) Read(p []byte) (int, error) {
	return 0, r.err
}

var errBoom = errors.New("boom")

// MockSessionRepository は、テスト用のモックセッションリポジトリです
type MockSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*Session
	saveErr  error
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{sessions: make(map[string]*Session)}
}

func (m *MockSessionRepository) Get(ctx context.Context, id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *MockSessionRepository) Save(ctx context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sessions[session.ID] = session
	return nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionRepository) List(ctx context.Context) []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}
