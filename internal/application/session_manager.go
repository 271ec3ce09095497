package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Session は、ブラウザセッションごとの画面コントローラーを保持します
type Session struct {
	ID         string
	Controller *ViewController
	LastSeen   time.Time
}

// SessionRepository は、セッションの保存と取得を行うインターフェースです
type SessionRepository interface {
	// Get は、指定されたIDのセッションを取得します
	Get(ctx context.Context, id string) (*Session, bool)

	// Save は、セッションを保存します
	Save(ctx context.Context, session *Session) error

	// Delete は、指定されたIDのセッションを削除します
	Delete(ctx context.Context, id string) error

	// List は、保存されているすべてのセッションを返します
	List(ctx context.Context) []*Session
}

// ControllerFactory は、新しいセッション用のコントローラーを作成する関数です
type ControllerFactory func(sessionID string) *ViewController

// SessionManager は、セッションIDと画面コントローラーの対応を管理します
// セッション同士が状態を共有することはありません
type SessionManager struct {
	repo    SessionRepository
	factory ControllerFactory
	ttl     time.Duration
	now     func() time.Time

	mu sync.Mutex
}

// NewSessionManager は新しいSessionManagerインスタンスを作成します
func NewSessionManager(repo SessionRepository, factory ControllerFactory, ttl time.Duration) *SessionManager {
	return &SessionManager{
		repo:    repo,
		factory: factory,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get は、セッションIDに対応するコントローラーを返します
// 不明なIDの場合は新しいセッションを作成し、そのIDを返します
func (m *SessionManager) Get(ctx context.Context, id string) (*ViewController, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != "" {
		if session, ok := m.repo.Get(ctx, id); ok {
			session.LastSeen = m.now()
			return session.Controller, session.ID, nil
		}
	}

	session := &Session{
		ID:       uuid.NewString(),
		LastSeen: m.now(),
	}
	session.Controller = m.factory(session.ID)

	if err := m.repo.Save(ctx, session); err != nil {
		return nil, "", err
	}

	log.Debug().Str("session", session.ID).Msg("新しいセッションを作成しました")
	return session.Controller, session.ID, nil
}

// Sweep は、一定時間操作のないセッションを破棄し、破棄した件数を返します
// 編集処理の実行中のセッションは破棄しません
func (m *SessionManager) Sweep(ctx context.Context, now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for _, session := range m.repo.List(ctx) {
		if now.Sub(session.LastSeen) < m.ttl {
			continue
		}
		if session.Controller.State().IsLoading() {
			continue
		}
		m.discardLocked(ctx, session)
		removed++
	}

	if removed > 0 {
		log.Info().Int("removed", removed).Msg("期限切れのセッションを破棄しました")
	}
	return removed
}

// Run は、コンテキストが終了するまで定期的にSweepを実行します
func (m *SessionManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx, m.now())
		}
	}
}

// Close は、すべてのセッションを破棄します
func (m *SessionManager) Close(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, session := range m.repo.List(ctx) {
		m.discardLocked(ctx, session)
	}
}

func (m *SessionManager) discardLocked(ctx context.Context, session *Session) {
	session.Controller.Close(ctx)
	if err := m.repo.Delete(ctx, session.ID); err != nil {
		log.Warn().Err(err).Str("session", session.ID).Msg("セッションの削除に失敗")
	}
}
