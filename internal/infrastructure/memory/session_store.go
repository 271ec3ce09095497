package memory

import (
	"context"
	"fmt"
	"sync"

	"imageenhancer/internal/application"
)

// SessionStore は、画面セッションをメモリ上で管理するリポジトリの実装です
// プロセスの終了とともにすべてのセッションは失われます
type SessionStore struct {
	sessions map[string]*application.Session
	mutex    sync.RWMutex
}

// NewSessionStore は新しいSessionStoreインスタンスを作成します
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*application.Session),
	}
}

// Get は、指定されたIDのセッションを取得します
func (r *SessionStore) Get(ctx context.Context, id string) (*application.Session, bool) {
	if ctx.Err() != nil {
		return nil, false
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	session, exists := r.sessions[id]
	return session, exists
}

// Save は、セッションを保存します
func (r *SessionStore) Save(ctx context.Context, session *application.Session) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if session == nil || session.ID == "" {
		return fmt.Errorf("セッションIDが空です")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.sessions[session.ID] = session
	return nil
}

// Delete は、指定されたIDのセッションを削除します
func (r *SessionStore) Delete(_ context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.sessions[id]; !exists {
		return fmt.Errorf("セッション %s が存在しません", id)
	}

	delete(r.sessions, id)
	return nil
}

// List は、保存されているすべてのセッションを返します
func (r *SessionStore) List(ctx context.Context) []*application.Session {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	sessions := make([]*application.Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

var _ application.SessionRepository = (*SessionStore)(nil)
