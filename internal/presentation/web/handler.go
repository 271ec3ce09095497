package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"

	"imageenhancer/internal/application"
	"imageenhancer/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// WebHandler は、画面操作のHTTPハンドラです
// 3つのユーザー操作（ファイル選択、指示の変更、編集の実行）をセッションのコントローラーに渡します
type WebHandler struct {
	sessions       *application.SessionManager
	handles        domain.HandleStore
	maxUploadBytes int64
	page           *template.Template

	// 実行中の編集処理
	attempts sync.WaitGroup
}

// NewWebHandler は新しいWebHandlerインスタンスを作成します
func NewWebHandler(sessions *application.SessionManager, handles domain.HandleStore, maxUploadBytes int64) (*WebHandler, error) {
	page, err := parsePage()
	if err != nil {
		return nil, fmt.Errorf("画面テンプレートの読み込みに失敗: %w", err)
	}

	return &WebHandler{
		sessions:       sessions,
		handles:        handles,
		maxUploadBytes: maxUploadBytes,
		page:           page,
	}, nil
}

// Wait は、バックグラウンドで実行中の編集処理がすべて終わるまで待機します
func (h *WebHandler) Wait() {
	h.attempts.Wait()
}

// Index は、現在の画面状態をHTMLとして表示します
func (h *WebHandler) Index(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.controller(w, r)
	if !ok {
		return
	}

	view := newStateView(controller.State())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.page.Execute(w, view); err != nil {
		log.Error().Err(err).Msg("画面の描画に失敗")
	}
}

// State は、現在の画面状態をJSONとして返します
func (h *WebHandler) State(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.controller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newStateView(controller.State()))
}

// UploadImage は、multipartで送信されたファイルを元画像として選択します
func (h *WebHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.controller(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.rejectUpload(w, r, controller, http.StatusRequestEntityTooLarge, "file_too_large",
				fmt.Sprintf("ファイルサイズが上限（%dバイト）を超えています", h.maxUploadBytes), application.UploadTooLargeMessage)
			return
		}
		h.rejectUpload(w, r, controller, http.StatusBadRequest, "bad_request", "フォームの解析に失敗しました", application.UploadFailedMessage)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("image")
	if err != nil {
		h.rejectUpload(w, r, controller, http.StatusBadRequest, "bad_request", "imageフィールドがありません", application.InvalidFileMessage)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.rejectUpload(w, r, controller, http.StatusBadRequest, "bad_request", "ファイルの読み込みに失敗しました", application.UploadFailedMessage)
		return
	}

	upload := domain.Upload{
		Filename:  header.Filename,
		MediaType: header.Header.Get("Content-Type"),
		Data:      data,
	}
	err = controller.SelectFile(r.Context(), upload)
	if errors.Is(err, domain.ErrSessionClosed) {
		// 取得直後に期限切れで破棄されたセッションは作り直す
		if controller, ok = h.controller(w, r); !ok {
			return
		}
		err = controller.SelectFile(r.Context(), upload)
	}
	h.respond(w, r, controller, http.StatusOK, err)
}

// ChangePrompt は、編集指示のテキストを更新します
func (h *WebHandler) ChangePrompt(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.controller(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "フォームの解析に失敗しました")
		return
	}

	controller.ChangeInstruction(r.PostFormValue("prompt"))
	h.respond(w, r, controller, http.StatusOK, nil)
}

// Enhance は、編集処理を開始します
// ネットワーク呼び出しはリクエストから切り離してバックグラウンドで実行し、画面は読み込み中の状態を表示します
func (h *WebHandler) Enhance(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.controller(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "フォームの解析に失敗しました")
		return
	}

	start := func(c *application.ViewController) (*application.Attempt, error) {
		// 指示入力と実行ボタンが同じフォームにある場合
		if _, present := r.PostForm["prompt"]; present {
			c.ChangeInstruction(r.PostFormValue("prompt"))
		}
		return c.StartEnhancement(r.Context())
	}

	attempt, err := start(controller)
	if errors.Is(err, domain.ErrSessionClosed) {
		if controller, ok = h.controller(w, r); !ok {
			return
		}
		attempt, err = start(controller)
	}
	if err != nil {
		h.respond(w, r, controller, http.StatusAccepted, err)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	h.attempts.Add(1)
	go func() {
		defer h.attempts.Done()
		attempt.Run(ctx)
	}()

	h.respond(w, r, controller, http.StatusAccepted, nil)
}

// ServeHandle は、表示ハンドルの画像データを返します
// 自分のセッションに属するハンドルのみ参照できます
func (h *WebHandler) ServeHandle(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.controller(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	filename, owned := ownedHandle(controller.State(), id)
	if !owned {
		writeError(w, http.StatusNotFound, "not_found", "画像が見つかりません")
		return
	}

	rc, mediaType, err := h.handles.Open(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrHandleNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "画像が見つかりません")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "画像の読み込みに失敗しました")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if r.URL.Query().Get("download") == "1" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	}
	if _, err := io.Copy(w, rc); err != nil {
		log.Warn().Err(err).Str("handle", id).Msg("画像の送信に失敗")
	}
}

// Health は、ヘルスチェック用のエンドポイントです
func (h *WebHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// controller は、リクエストのセッションに対応するコントローラーを返します
func (h *WebHandler) controller(w http.ResponseWriter, r *http.Request) (*application.ViewController, bool) {
	cookieID := sessionIDFromRequest(r)
	controller, id, err := h.sessions.Get(r.Context(), cookieID)
	if err != nil {
		log.Error().Err(err).Msg("セッションの取得に失敗")
		writeError(w, http.StatusInternalServerError, "internal", "セッションの取得に失敗しました")
		return nil, false
	}
	if id != cookieID {
		setSessionCookie(w, r, id)
	}
	return controller, true
}

// respond は、JSONを要求するクライアントには状態とステータスコードを返し、
// ブラウザのフォーム送信には画面へのリダイレクトを返します
func (h *WebHandler) respond(w http.ResponseWriter, r *http.Request, controller *application.ViewController, okStatus int, err error) {
	if !wantsJSON(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	status := okStatus
	if err != nil {
		status = statusFor(err)
	}
	writeJSON(w, status, newStateView(controller.State()))
}

// rejectUpload は、受け付けられなかったアップロードに応答します
// JSONを要求するクライアントにはエラーを返し、ブラウザには画面の状態にメッセージを設定してリダイレクトします
func (h *WebHandler) rejectUpload(w http.ResponseWriter, r *http.Request, controller *application.ViewController, status int, code, detail, viewMessage string) {
	if wantsJSON(r) {
		writeError(w, status, code, detail)
		return
	}
	controller.RejectUpload(viewMessage)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// statusFor は、コントローラーのエラーをHTTPステータスコードに変換します
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEnhancementInFlight), errors.Is(err, domain.ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrEnhancementUnavailable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// ownedHandle は、ハンドルがセッションの元画像または編集結果であればダウンロード用のファイル名を返します
func ownedHandle(state domain.ViewState, id string) (string, bool) {
	if id == "" {
		return "", false
	}
	if original := state.OriginalHandle(); original != nil && original.ID == id {
		filename := "original" + extensionFor(original.MediaType)
		if src, ok := state.Source(); ok && src.Filename != "" {
			filename = src.Filename
		}
		return filename, true
	}
	if edited := state.EditedHandle(); edited != nil && edited.ID == id {
		return "enhanced" + extensionFor(edited.MediaType), true
	}
	return "", false
}

func extensionFor(mediaType string) string {
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/svg+xml":
		return ".svg"
	}
	if sub, ok := strings.CutPrefix(mediaType, "image/"); ok && sub != "" {
		return "." + sub
	}
	return ".png"
}
