package web

import "imageenhancer/internal/domain"

// 読み込み中の画面を自動更新する間隔（秒）
const refreshSeconds = 2

// stateView は、画面状態を表示とJSONレスポンス用に平坦化したものです
type stateView struct {
	Phase        string                `json:"phase"`
	Status       string                `json:"status"`
	HasOriginal  bool                  `json:"has_original"`
	Filename     string                `json:"filename,omitempty"`
	Original     *domain.DisplayHandle `json:"original_handle"`
	Edited       *domain.DisplayHandle `json:"edited_handle"`
	Prompt       string                `json:"prompt_text"`
	IsLoading    bool                  `json:"is_loading"`
	ErrorMessage *string               `json:"error_message"`
	CanEnhance   bool                  `json:"can_enhance"`
}

func newStateView(state domain.ViewState) stateView {
	view := stateView{
		Phase:       state.Phase().String(),
		Status:      state.Phase().DisplayName(),
		HasOriginal: state.HasOriginal(),
		Original:    state.OriginalHandle(),
		Edited:      state.EditedHandle(),
		Prompt:      state.PromptText(),
		IsLoading:   state.IsLoading(),
		CanEnhance:  state.CanEnhance(),
	}
	if src, ok := state.Source(); ok {
		view.Filename = src.Filename
	}
	if msg := state.ErrorMessage(); msg != "" {
		view.ErrorMessage = &msg
	}
	return view
}

// Message は、表示するエラーメッセージを返します
func (v stateView) Message() string {
	if v.ErrorMessage == nil {
		return ""
	}
	return *v.ErrorMessage
}

// RefreshSeconds は、読み込み中の場合に画面を再読み込みする間隔を返します
func (v stateView) RefreshSeconds() int {
	if v.IsLoading {
		return refreshSeconds
	}
	return 0
}
