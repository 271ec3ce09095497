package domain

import "strings"

// ViewState は、画面状態の唯一の情報源となる値オブジェクトです
// 状態遷移はメソッドで新しい値を返すことで行い、不正な組み合わせを作れないようにしています
//
//   - Empty: 元画像なし、編集結果なし
//   - Ready: 元画像あり、編集結果なし
//   - Enhancing: 元画像あり、編集結果なし、メッセージなし
//   - Success: 元画像あり、編集結果あり、失敗メッセージなし（不正なファイル選択の入力エラーのみ持てる）
//   - Failed: 元画像あり、編集結果なし、エラーメッセージあり
type ViewState struct {
	phase   Phase
	source  *SourceImage
	edited  *DisplayHandle
	prompt  string
	message string
}

// NewViewState は、Empty状態のViewStateを作成します
func NewViewState() ViewState {
	return ViewState{phase: PhaseEmpty}
}

// Phase は現在の状態種別を返します
func (s ViewState) Phase() Phase {
	return s.phase
}

// HasOriginal は、元画像が選択済みかどうかを返します
func (s ViewState) HasOriginal() bool {
	return s.source != nil
}

// Source は、選択済みの元画像を返します
func (s ViewState) Source() (SourceImage, bool) {
	if s.source == nil {
		return SourceImage{}, false
	}
	return *s.source, true
}

// OriginalHandle は、元画像の表示ハンドルを返します
func (s ViewState) OriginalHandle() *DisplayHandle {
	if s.source == nil {
		return nil
	}
	h := s.source.Handle
	return &h
}

// EditedHandle は、編集結果の表示ハンドルを返します
func (s ViewState) EditedHandle() *DisplayHandle {
	if s.edited == nil {
		return nil
	}
	h := *s.edited
	return &h
}

// PromptText は、入力中の編集指示を返します
func (s ViewState) PromptText() string {
	return s.prompt
}

// IsLoading は、編集処理の実行中かどうかを返します
func (s ViewState) IsLoading() bool {
	return s.phase == PhaseEnhancing
}

// ErrorMessage は、表示すべきエラーメッセージを返します。なければ空文字列です
func (s ViewState) ErrorMessage() string {
	return s.message
}

// CanEnhance は、編集を開始できる状態かどうかを判定します
func (s ViewState) CanEnhance() bool {
	return s.source != nil && strings.TrimSpace(s.prompt) != "" && s.phase != PhaseEnhancing
}

// WithSource は、新しい元画像を選択した状態を返します
// 以前の編集結果とメッセージは破棄されます
func (s ViewState) WithSource(src SourceImage) ViewState {
	return ViewState{
		phase:  PhaseReady,
		source: &src,
		prompt: s.prompt,
	}
}

// WithPrompt は、編集指示のみを更新した状態を返します
func (s ViewState) WithPrompt(prompt string) ViewState {
	s.prompt = prompt
	return s
}

// Rejected は、現在の状態を維持したまま入力エラーのメッセージを設定した状態を返します
// 実行中はメッセージを持てないため、そのままの状態を返します
func (s ViewState) Rejected(message string) ViewState {
	if s.phase == PhaseEnhancing {
		return s
	}
	s.message = message
	return s
}

// Enhancing は、編集処理を開始した状態を返します
func (s ViewState) Enhancing() ViewState {
	return ViewState{
		phase:  PhaseEnhancing,
		source: s.source,
		prompt: s.prompt,
	}
}

// Succeeded は、編集結果を受け取った状態を返します
func (s ViewState) Succeeded(edited DisplayHandle) ViewState {
	return ViewState{
		phase:  PhaseSuccess,
		source: s.source,
		edited: &edited,
		prompt: s.prompt,
	}
}

// Failed は、編集処理が失敗した状態を返します
func (s ViewState) Failed(message string) ViewState {
	return ViewState{
		phase:   PhaseFailed,
		source:  s.source,
		prompt:  s.prompt,
		message: message,
	}
}
