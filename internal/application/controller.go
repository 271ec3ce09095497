package application

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"imageenhancer/internal/domain"

	"github.com/rs/zerolog/log"
)

// 画面に表示するメッセージ
const (
	InvalidFileMessage    = "Please upload a valid image file."
	EnhanceFailedPrefix   = "Failed to enhance image."
	UnknownErrorMessage   = "An unknown error occurred."
	LoadFailedMessage     = "Failed to load the selected image."
	EmptyResultMessage    = "The API did not return an image. Please try a different prompt."
	UploadTooLargeMessage = "The selected file is too large."
	UploadFailedMessage   = "Failed to read the uploaded file."
	releaseFailedLogText  = "表示ハンドルの解放に失敗"
)

// ViewController は、1つの画面セッションの状態と状態遷移を管理します
// すべての状態変更はmuで保護され、編集処理は同時に1つしか実行されません
type ViewController struct {
	id      string
	encoder PayloadEncoder
	client  EditClient
	handles domain.HandleStore

	mu     sync.Mutex
	state  domain.ViewState
	closed bool
}

// NewViewController は新しいViewControllerインスタンスを作成します
func NewViewController(id string, encoder PayloadEncoder, client EditClient, handles domain.HandleStore) *ViewController {
	return &ViewController{
		id:      id,
		encoder: encoder,
		client:  client,
		handles: handles,
		state:   domain.NewViewState(),
	}
}

// ID は、コントローラーが属するセッションIDを返します
func (c *ViewController) ID() string {
	return c.id
}

// State は、現在の画面状態のスナップショットを返します
func (c *ViewController) State() domain.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SelectFile は、ユーザーが選択したファイルを元画像として設定します
func (c *ViewController) SelectFile(ctx context.Context, upload domain.Upload) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return domain.ErrSessionClosed
	}
	if c.state.IsLoading() {
		return domain.ErrEnhancementInFlight
	}

	if !upload.IsImage() {
		log.Info().Str("session", c.id).Str("media_type", upload.MediaType).Msg("画像以外のファイルが選択されました")
		c.state = c.state.Rejected(InvalidFileMessage)
		return domain.NewEditError(domain.ErrValidation, errors.New(InvalidFileMessage))
	}

	handle, err := c.handles.Create(ctx, upload.Data, upload.MediaType)
	if err != nil {
		log.Error().Err(err).Str("session", c.id).Msg("元画像の保存に失敗")
		c.state = c.state.Rejected(LoadFailedMessage)
		return err
	}

	// 以前の元画像と編集結果を解放
	c.releaseLocked(ctx, c.state.OriginalHandle())
	c.releaseLocked(ctx, c.state.EditedHandle())

	c.state = c.state.WithSource(domain.NewSourceImage(upload.Filename, upload.MediaType, handle, c.handles))

	log.Debug().Str("session", c.id).Str("handle", handle.ID).Stringer("upload", upload).Msg("元画像を設定しました")
	return nil
}

// ChangeInstruction は、編集指示のテキストのみを更新します
func (c *ViewController) ChangeInstruction(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = c.state.WithPrompt(text)
}

// RejectUpload は、アップロードを受け付けられなかった理由を画面に表示します
func (c *ViewController) RejectUpload(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = c.state.Rejected(message)
}

// RequestEnhancement は、編集処理を開始して完了まで待機します
// 開始できない状態の場合は何もせずにエラーを返します
func (c *ViewController) RequestEnhancement(ctx context.Context) error {
	attempt, err := c.StartEnhancement(ctx)
	if err != nil {
		return err
	}
	attempt.Run(ctx)
	return nil
}

// StartEnhancement は、ガード条件を確認してEnhancing状態に遷移し、実行前のAttemptを返します
func (c *ViewController) StartEnhancement(ctx context.Context) (*Attempt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, domain.ErrSessionClosed
	}
	if c.state.IsLoading() {
		return nil, domain.ErrEnhancementInFlight
	}
	if !c.state.CanEnhance() {
		return nil, domain.ErrEnhancementUnavailable
	}

	c.releaseLocked(ctx, c.state.EditedHandle())
	c.state = c.state.Enhancing()

	src, _ := c.state.Source()
	log.Info().Str("session", c.id).Str("file", src.Filename).Msg("画像の編集を開始します")

	return &Attempt{
		controller:  c,
		source:      src,
		instruction: c.state.PromptText(),
	}, nil
}

// Close は、セッション終了時にすべての表示ハンドルを解放します
func (c *ViewController) Close(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.releaseLocked(ctx, c.state.OriginalHandle())
	c.releaseLocked(ctx, c.state.EditedHandle())
	c.state = domain.NewViewState()
	c.closed = true
}

// complete は、編集結果を受け取ってSuccess状態に遷移します
func (c *ViewController) complete(ctx context.Context, edited domain.DisplayHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		c.releaseLocked(ctx, &edited)
		return
	}
	c.state = c.state.Succeeded(edited)
	log.Info().Str("session", c.id).Str("handle", edited.ID).Str("media_type", edited.MediaType).Msg("画像の編集が完了しました")
}

// fail は、エラーを画面表示用のメッセージに変換してFailed状態に遷移します
func (c *ViewController) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.state = c.state.Failed(failureMessage(err))
	log.Warn().Err(err).Str("session", c.id).Msg("画像の編集に失敗しました")
}

func (c *ViewController) releaseLocked(ctx context.Context, h *domain.DisplayHandle) {
	if h == nil {
		return
	}
	if err := c.handles.Release(ctx, h.ID); err != nil {
		log.Warn().Err(err).Str("session", c.id).Str("handle", h.ID).Msg(releaseFailedLogText)
	}
}

// Attempt は、1回の編集処理（エンコードと送信）を表します
type Attempt struct {
	controller  *ViewController
	source      domain.SourceImage
	instruction string
	started     atomic.Bool
}

// Run は、エンコードと送信を順番に実行し、結果をコントローラーの状態に反映します
// 失敗はすべて画面のエラーメッセージとして扱われ、呼び出し元には返しません
func (a *Attempt) Run(ctx context.Context) {
	if !a.started.CompareAndSwap(false, true) {
		return
	}
	c := a.controller

	payload, err := c.encoder.Encode(ctx, a.source)
	if err != nil {
		c.fail(err)
		return
	}

	content, ok, err := c.client.Submit(ctx, domain.EditRequest{Payload: payload, Instruction: a.instruction})
	if err != nil {
		c.fail(err)
		return
	}
	if !ok {
		c.fail(domain.NewEditError(domain.ErrEmptyResult, nil))
		return
	}

	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		c.fail(domain.NewEditError(domain.ErrDecode, err))
		return
	}

	edited, err := c.handles.Create(ctx, data, ResolveEditedMediaType(data))
	if err != nil {
		c.fail(err)
		return
	}

	c.complete(ctx, edited)
}

// ResolveEditedMediaType は、編集結果のバイト列から画像形式を判別します
// 画像として判別できない場合はimage/pngとみなします
func ResolveEditedMediaType(data []byte) string {
	if ct := http.DetectContentType(data); domain.IsImageMediaType(ct) {
		return ct
	}
	return domain.DefaultEditedMediaType
}

// failureMessage は、エラーを画面表示用のメッセージに変換します
func failureMessage(err error) string {
	msg := ""
	if errors.Is(err, domain.ErrEmptyResult) {
		msg = EmptyResultMessage
	} else if err != nil {
		msg = strings.TrimSpace(err.Error())
	}
	if msg == "" {
		msg = UnknownErrorMessage
	}
	return EnhanceFailedPrefix + " " + msg
}
