package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"imageenhancer/internal/domain"

	"github.com/google/uuid"
)

// entry は、表示ハンドルの背後にあるバイト列を保持します
type entry struct {
	data      []byte
	mediaType string
}

// HandleStore は、表示ハンドルをメモリ上で管理するストアの実装です
// 解放されたハンドルは即座に破棄され、以後参照できません
type HandleStore struct {
	urlPrefix string
	entries   map[string]entry
	mutex     sync.RWMutex
}

// NewHandleStore は新しいHandleStoreインスタンスを作成します
// urlPrefixは表示層がハンドルを参照するURLの接頭辞です（例: /handles/）
func NewHandleStore(urlPrefix string) *HandleStore {
	return &HandleStore{
		urlPrefix: urlPrefix,
		entries:   make(map[string]entry),
	}
}

// Create は、バイト列を保存して新しい表示ハンドルを発行します
func (s *HandleStore) Create(ctx context.Context, data []byte, mediaType string) (domain.DisplayHandle, error) {
	if ctx.Err() != nil {
		return domain.DisplayHandle{}, ctx.Err()
	}

	id := uuid.NewString()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.entries[id] = entry{data: data, mediaType: mediaType}

	return domain.DisplayHandle{
		ID:        id,
		MediaType: mediaType,
		URL:       s.urlPrefix + id,
	}, nil
}

// Open は、指定されたハンドルの内容とメディアタイプを返します
func (s *HandleStore) Open(ctx context.Context, id string) (io.ReadCloser, string, error) {
	if ctx.Err() != nil {
		return nil, "", ctx.Err()
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	e, exists := s.entries[id]
	if !exists {
		return nil, "", fmt.Errorf("ハンドル %s: %w", id, domain.ErrHandleNotFound)
	}

	return io.NopCloser(bytes.NewReader(e.data)), e.mediaType, nil
}

// Release は、指定されたハンドルを解放します。存在しないハンドルは無視します
// リークを防ぐため、キャンセル済みのコンテキストでも解放は行います
func (s *HandleStore) Release(_ context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.entries, id)
	return nil
}

// Len は、保持しているハンドルの数を返します
func (s *HandleStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.entries)
}

var _ domain.HandleStore = (*HandleStore)(nil)
