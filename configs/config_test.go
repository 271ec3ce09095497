package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"imageenhancer/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv は、テスト中に実行環境の環境変数が影響しないようにします
func clearEnv(t *testing.T) {
	t.Helper()
	for _, b := range bindings {
		t.Setenv(b.env, "")
	}
}

func validConfig() *Config {
	return &Config{
		Gemini: config.GeminiConfig{
			APIKey:      "test-api-key",
			ModelName:   "gemini-2.5-flash-image-preview",
			Temperature: 0.7,
			TopP:        0.9,
		},
		Server: config.ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  10 << 20,
		},
		Session: config.SessionConfig{
			TTL:           30 * time.Minute,
			SweepInterval: time.Minute,
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "有効な設定",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "Gemini APIKeyが空",
			modify:  func(c *Config) { c.Gemini.APIKey = "" },
			wantErr: true,
			errMsg:  "GEMINI_API_KEY が設定されていません",
		},
		{
			name:    "モデル名が空",
			modify:  func(c *Config) { c.Gemini.ModelName = "" },
			wantErr: true,
			errMsg:  "GEMINI_IMAGE_MODEL が設定されていません",
		},
		{
			name:    "Temperatureが範囲外",
			modify:  func(c *Config) { c.Gemini.Temperature = 2.5 },
			wantErr: true,
			errMsg:  "GEMINI_TEMPERATURE は0から2の範囲である必要があります",
		},
		{
			name:    "TopPが0",
			modify:  func(c *Config) { c.Gemini.TopP = 0 },
			wantErr: true,
			errMsg:  "GEMINI_TOP_P は0より大きく1以下である必要があります",
		},
		{
			name:    "ポートが範囲外",
			modify:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
			errMsg:  "PORT は1から65535の範囲である必要があります",
		},
		{
			name:    "読み込みタイムアウトが0",
			modify:  func(c *Config) { c.Server.ReadTimeout = 0 },
			wantErr: true,
			errMsg:  "HTTP_READ_TIMEOUT、HTTP_WRITE_TIMEOUT、HTTP_IDLE_TIMEOUT は正の値である必要があります",
		},
		{
			name:    "シャットダウンタイムアウトが負",
			modify:  func(c *Config) { c.Server.ShutdownTimeout = -time.Second },
			wantErr: true,
			errMsg:  "SHUTDOWN_TIMEOUT は正の値である必要があります",
		},
		{
			name:    "アップロード上限が0",
			modify:  func(c *Config) { c.Server.MaxUploadBytes = 0 },
			wantErr: true,
			errMsg:  "MAX_UPLOAD_BYTES は正の整数である必要があります",
		},
		{
			name:    "セッションTTLが0",
			modify:  func(c *Config) { c.Session.TTL = 0 },
			wantErr: true,
			errMsg:  "SESSION_TTL は正の値である必要があります",
		},
		{
			name:    "掃除間隔が0",
			modify:  func(c *Config) { c.Session.SweepInterval = 0 },
			wantErr: true,
			errMsg:  "SESSION_SWEEP_INTERVAL は正の値である必要があります",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.errMsg, err.Error())
		})
	}
}

func TestLoadConfigFrom_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-api-key")

	cfg, err := LoadConfigFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "test-api-key", cfg.Gemini.APIKey)
	assert.Equal(t, "gemini-2.5-flash-image-preview", cfg.Gemini.ModelName)
	assert.Empty(t, cfg.Gemini.BaseURL)
	assert.Equal(t, float32(0.7), cfg.Gemini.Temperature)
	assert.Equal(t, float32(0.9), cfg.Gemini.TopP)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, time.Minute, cfg.Session.SweepInterval)
	assert.Equal(t, "production", cfg.Log.AppEnv)
	assert.Empty(t, cfg.Log.Level)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadConfigFrom_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("GEMINI_IMAGE_MODEL", "custom-image-model")
	t.Setenv("GEMINI_BASE_URL", "http://localhost:9999")
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("MAX_UPLOAD_BYTES", "2048")
	t.Setenv("APP_ENV", "development")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfigFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Gemini.APIKey)
	assert.Equal(t, "custom-image-model", cfg.Gemini.ModelName)
	assert.Equal(t, "http://localhost:9999", cfg.Gemini.BaseURL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Session.TTL)
	assert.Equal(t, int64(2048), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "development", cfg.Log.AppEnv)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigFrom_ConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	content := `
[gemini]
api_key = "file-key"
image_model = "file-model"

[server]
port = 3000

[session]
ttl = "10m"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))

	// 環境変数は設定ファイルより優先される
	t.Setenv("PORT", "4000")

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.Gemini.APIKey)
	assert.Equal(t, "file-model", cfg.Gemini.ModelName)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, 10*time.Minute, cfg.Session.TTL)
	assert.Equal(t, time.Minute, cfg.Session.SweepInterval)
}

func TestLoadConfigFrom_InvalidConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[gemini\napi_key = "), 0o600))

	_, err := LoadConfigFrom(dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "設定ファイルの読み込みに失敗")
}

func TestLoadConfigFrom_MissingAPIKey(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfigFrom(t.TempDir())

	require.Error(t, err)
	assert.Equal(t, "GEMINI_API_KEY が設定されていません", err.Error())
}
