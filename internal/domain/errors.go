package domain

import "errors"

// ドメイン固有のエラー種別を定義
var (
	// ErrValidation は、画像以外のファイルや不足した入力が渡された場合のエラーです
	ErrValidation = errors.New("validation error")

	// ErrDecode は、エンコード結果からペイロードを取り出せなかった場合のエラーです
	ErrDecode = errors.New("decode error")

	// ErrRead は、ファイルの読み込みに失敗した場合のエラーです
	ErrRead = errors.New("read error")

	// ErrService は、画像編集サービスの呼び出しに失敗した場合のエラーです
	ErrService = errors.New("service error")

	// ErrEmptyResult は、呼び出しは成功したが画像が返されなかった場合のエラーです
	ErrEmptyResult = errors.New("edit service returned no image")

	// ErrEnhancementInFlight は、編集処理の実行中に新しい操作が要求された場合のエラーです
	ErrEnhancementInFlight = errors.New("enhancement already in progress")

	// ErrEnhancementUnavailable は、画像またはプロンプトが揃っていない場合のエラーです
	ErrEnhancementUnavailable = errors.New("enhancement requires an image and a prompt")

	// ErrSessionClosed は、破棄済みのセッションに操作が要求された場合のエラーです
	ErrSessionClosed = errors.New("session closed")

	// ErrHandleNotFound は、表示ハンドルが存在しないか解放済みの場合のエラーです
	ErrHandleNotFound = errors.New("display handle not found")
)

// EditError は、エラー種別と原因のエラーを組み合わせたエラーです
// メッセージは原因のエラーをそのまま返します
type EditError struct {
	Kind error
	Err  error
}

// NewEditError は新しいEditErrorを作成します
func NewEditError(kind, err error) *EditError {
	return &EditError{Kind: kind, Err: err}
}

func (e *EditError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return ""
}

// Unwrap は、種別と原因の両方をerrors.Isで判定できるようにします
func (e *EditError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
