package config

import "time"

// GeminiConfig は、Gemini API関連の設定を定義します
type GeminiConfig struct {
	APIKey      string
	ModelName   string // 画像編集用モデル名
	BaseURL     string // 空の場合はSDKの既定のエンドポイントを使用
	Temperature float32
	TopP        float32
}

// ServerConfig は、HTTPサーバー関連の設定を定義します
type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
}

// SessionConfig は、画面セッション関連の設定を定義します
type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// LogConfig は、ログ出力関連の設定を定義します
type LogConfig struct {
	AppEnv string
	Level  string
}

// DefaultGeminiConfig は、デフォルトのGemini設定を返します
func DefaultGeminiConfig() *GeminiConfig {
	return &GeminiConfig{
		ModelName:   "gemini-2.5-flash-image-preview",
		Temperature: 0.7,
		TopP:        0.9,
	}
}
