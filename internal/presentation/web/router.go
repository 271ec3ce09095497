package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// HandlePathPrefix は、表示ハンドルのURLの接頭辞です
const HandlePathPrefix = "/handles/"

// NewRouter は、画面操作のルーティングを設定したhttp.Handlerを作成します
func NewRouter(h *WebHandler, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		RequestLogger(logger),
		middleware.Recoverer,
	)

	r.Get("/healthz", h.Health)

	r.Get("/", h.Index)
	r.Post("/image", h.UploadImage)
	r.Post("/prompt", h.ChangePrompt)
	r.Post("/enhance", h.Enhance)
	r.Get(HandlePathPrefix+"{id}", h.ServeHandle)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.State)
	})

	return r
}
