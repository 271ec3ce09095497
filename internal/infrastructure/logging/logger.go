package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewLogger は、実行環境とログレベルに応じたzerolog.Loggerを作成します
// developmentでは人が読みやすいコンソール形式、それ以外ではJSON形式で出力します
func NewLogger(appEnv, level string) zerolog.Logger {
	return newLogger(os.Stdout, appEnv, level)
}

func newLogger(out io.Writer, appEnv, level string) zerolog.Logger {
	logger := zerolog.New(out).
		Level(parseLevel(appEnv, level)).
		With().
		Timestamp().
		Logger()

	if appEnv == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}

	return logger
}

// SetGlobal は、パッケージ全体で使用するグローバルロガーを設定します
func SetGlobal(logger zerolog.Logger) {
	log.Logger = logger
	zerolog.SetGlobalLevel(logger.GetLevel())
}

// parseLevel は、ログレベル文字列を解析します
// 空または不正な値の場合は、developmentならDebug、それ以外はInfoになります
func parseLevel(appEnv, level string) zerolog.Level {
	if level != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil && parsed != zerolog.NoLevel {
			return parsed
		}
	}
	if appEnv == "development" {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
