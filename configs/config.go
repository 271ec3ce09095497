package configs

import (
	"errors"
	"fmt"
	"path/filepath"

	"imageenhancer/internal/infrastructure/config"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config は、アプリケーション全体の設定を定義します
type Config struct {
	Gemini  config.GeminiConfig
	Server  config.ServerConfig
	Session config.SessionConfig
	Log     config.LogConfig
}

// binding は、設定キーと環境変数、デフォルト値の対応です
type binding struct {
	key          string
	env          string
	defaultValue any
}

var bindings = []binding{
	{key: "gemini.api_key", env: "GEMINI_API_KEY", defaultValue: ""},
	{key: "gemini.image_model", env: "GEMINI_IMAGE_MODEL", defaultValue: "gemini-2.5-flash-image-preview"},
	{key: "gemini.base_url", env: "GEMINI_BASE_URL", defaultValue: ""},
	{key: "gemini.temperature", env: "GEMINI_TEMPERATURE", defaultValue: 0.7},
	{key: "gemini.top_p", env: "GEMINI_TOP_P", defaultValue: 0.9},
	{key: "server.port", env: "PORT", defaultValue: 8080},
	{key: "server.read_timeout", env: "HTTP_READ_TIMEOUT", defaultValue: "15s"},
	{key: "server.write_timeout", env: "HTTP_WRITE_TIMEOUT", defaultValue: "30s"},
	{key: "server.idle_timeout", env: "HTTP_IDLE_TIMEOUT", defaultValue: "60s"},
	{key: "server.shutdown_timeout", env: "SHUTDOWN_TIMEOUT", defaultValue: "10s"},
	{key: "server.max_upload_bytes", env: "MAX_UPLOAD_BYTES", defaultValue: 10 << 20},
	{key: "session.ttl", env: "SESSION_TTL", defaultValue: "30m"},
	{key: "session.sweep_interval", env: "SESSION_SWEEP_INTERVAL", defaultValue: "1m"},
	{key: "log.app_env", env: "APP_ENV", defaultValue: "production"},
	{key: "log.level", env: "LOG_LEVEL", defaultValue: ""},
}

// LoadConfig は、カレントディレクトリの.envとconfig.tomlおよび環境変数から設定を読み込みます
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(".")
}

// LoadConfigFrom は、指定したディレクトリの.envとconfig.tomlおよび環境変数から設定を読み込みます
// 優先順位は 環境変数 > config.toml > デフォルト値 です
func LoadConfigFrom(dir string) (*Config, error) {
	// .envファイルが存在しない場合は警告のみ出力（エラーにはしない）
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil {
		log.Warn().Err(err).Msg(".envファイルの読み込みに失敗しました")
	}

	v := viper.New()
	for _, b := range bindings {
		v.SetDefault(b.key, b.defaultValue)
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, fmt.Errorf("環境変数 %s のバインドに失敗: %w", b.env, err)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		}
		log.Debug().Str("dir", dir).Msg("config.tomlが見つからないため環境変数のみを使用します")
	}

	cfg := &Config{
		Gemini: config.GeminiConfig{
			APIKey:      v.GetString("gemini.api_key"),
			ModelName:   v.GetString("gemini.image_model"),
			BaseURL:     v.GetString("gemini.base_url"),
			Temperature: float32(v.GetFloat64("gemini.temperature")),
			TopP:        float32(v.GetFloat64("gemini.top_p")),
		},
		Server: config.ServerConfig{
			Port:            v.GetInt("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			IdleTimeout:     v.GetDuration("server.idle_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			MaxUploadBytes:  v.GetInt64("server.max_upload_bytes"),
		},
		Session: config.SessionConfig{
			TTL:           v.GetDuration("session.ttl"),
			SweepInterval: v.GetDuration("session.sweep_interval"),
		},
		Log: config.LogConfig{
			AppEnv: v.GetString("log.app_env"),
			Level:  v.GetString("log.level"),
		},
	}

	// 必須設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate は、設定の妥当性を検証します
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY が設定されていません")
	}

	if c.Gemini.ModelName == "" {
		return fmt.Errorf("GEMINI_IMAGE_MODEL が設定されていません")
	}

	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		return fmt.Errorf("GEMINI_TEMPERATURE は0から2の範囲である必要があります")
	}

	if c.Gemini.TopP <= 0 || c.Gemini.TopP > 1 {
		return fmt.Errorf("GEMINI_TOP_P は0より大きく1以下である必要があります")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT は1から65535の範囲である必要があります")
	}

	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 {
		return fmt.Errorf("HTTP_READ_TIMEOUT、HTTP_WRITE_TIMEOUT、HTTP_IDLE_TIMEOUT は正の値である必要があります")
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT は正の値である必要があります")
	}

	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES は正の整数である必要があります")
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL は正の値である必要があります")
	}

	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL は正の値である必要があります")
	}

	return nil
}

// Addr は、HTTPサーバーの待ち受けアドレスを返します
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
