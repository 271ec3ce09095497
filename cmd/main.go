package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"imageenhancer/configs"
	"imageenhancer/internal/application"
	"imageenhancer/internal/infrastructure/gemini"
	"imageenhancer/internal/infrastructure/logging"
	"imageenhancer/internal/infrastructure/memory"
	"imageenhancer/internal/presentation/web"

	"github.com/rs/zerolog/log"
)

func main() {
	log.Info().Msg("画像編集Webアプリを起動中...")

	// 設定を読み込み
	config, err := configs.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("設定の読み込みに失敗")
	}

	logger := logging.NewLogger(config.Log.AppEnv, config.Log.Level)
	logging.SetGlobal(logger)

	// シグナルハンドリング
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Gemini APIクライアントを作成
	geminiClient, err := gemini.NewGeminiAPIClient(ctx, &config.Gemini)
	if err != nil {
		log.Fatal().Err(err).Msg("Gemini APIクライアントの作成に失敗")
	}
	log.Info().Str("model", geminiClient.Options().Model).Msg("Gemini APIクライアントを作成しました")

	// ストアとアプリケーションサービスを作成
	handles := memory.NewHandleStore(web.HandlePathPrefix)
	encoder := application.NewEncoder()
	sessions := application.NewSessionManager(
		memory.NewSessionStore(),
		func(sessionID string) *application.ViewController {
			return application.NewViewController(sessionID, encoder, geminiClient, handles)
		},
		config.Session.TTL,
	)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sessions.Run(sweepCtx, config.Session.SweepInterval)
	}()

	// Webハンドラを作成
	handler, err := web.NewWebHandler(sessions, handles, config.Server.MaxUploadBytes)
	if err != nil {
		log.Fatal().Err(err).Msg("Webハンドラの作成に失敗")
	}

	server := &http.Server{
		Addr:         config.Addr(),
		Handler:      web.NewRouter(handler, logger),
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		IdleTimeout:  config.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTPサーバーを起動しました")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// 終了シグナルまたはサーバーエラーを待機
	select {
	case <-ctx.Done():
		log.Info().Msg("終了シグナルを受信しました。サーバーを停止中...")
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("HTTPサーバーが異常終了しました")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTPサーバーの停止に失敗")
	}

	// 実行中の編集処理の完了を待ってからセッションを破棄
	attemptsDone := make(chan struct{})
	go func() {
		handler.Wait()
		close(attemptsDone)
	}()
	select {
	case <-attemptsDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("実行中の編集処理の完了を待たずに停止します")
	}

	stopSweep()
	<-sweepDone
	sessions.Close(context.Background())

	log.Info().Msg("サーバーが正常に停止しました。")
}
