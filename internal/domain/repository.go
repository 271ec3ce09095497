package domain

import (
	"context"
	"io"
)

// HandleStore は、表示ハンドルの背後にあるバイト列を管理するインターフェースです
type HandleStore interface {
	// Create は、バイト列を保存して新しい表示ハンドルを発行します
	Create(ctx context.Context, data []byte, mediaType string) (DisplayHandle, error)

	// Open は、指定されたハンドルの内容とメディアタイプを返します
	Open(ctx context.Context, id string) (io.ReadCloser, string, error)

	// Release は、指定されたハンドルを解放します。存在しないハンドルは無視します
	Release(ctx context.Context, id string) error
}
