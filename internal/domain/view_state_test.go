package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSource(id string) SourceImage {
	return NewSourceImage("cat.png", "image/png", DisplayHandle{ID: id, MediaType: "image/png", URL: "/handles/" + id}, nil)
}

func TestNewViewState(t *testing.T) {
	s := NewViewState()

	assert.Equal(t, PhaseEmpty, s.Phase())
	assert.False(t, s.HasOriginal())
	assert.Nil(t, s.OriginalHandle())
	assert.Nil(t, s.EditedHandle())
	assert.False(t, s.IsLoading())
	assert.Empty(t, s.ErrorMessage())
	assert.False(t, s.CanEnhance())
}

func TestViewState_WithSourceClearsEditedAndMessage(t *testing.T) {
	s := NewViewState().
		WithPrompt("add a hat").
		WithSource(testSource("a")).
		Enhancing().
		Succeeded(DisplayHandle{ID: "edited"}).
		Rejected("Please upload a valid image file.")

	require.NotNil(t, s.EditedHandle())
	require.NotEmpty(t, s.ErrorMessage())

	s = s.WithSource(testSource("b"))

	assert.Equal(t, PhaseReady, s.Phase())
	assert.Equal(t, "b", s.OriginalHandle().ID)
	assert.Nil(t, s.EditedHandle())
	assert.Empty(t, s.ErrorMessage())
	assert.Equal(t, "add a hat", s.PromptText())
}

func TestViewState_EnhancingDropsStaleError(t *testing.T) {
	s := NewViewState().
		WithSource(testSource("a")).
		WithPrompt("add a hat").
		Enhancing().
		Failed("Failed to enhance image. boom")

	require.Equal(t, PhaseFailed, s.Phase())
	require.True(t, s.CanEnhance())

	s = s.Enhancing()

	assert.True(t, s.IsLoading())
	assert.Empty(t, s.ErrorMessage())
	assert.Nil(t, s.EditedHandle())
	assert.False(t, s.CanEnhance())
}

func TestViewState_RejectedIgnoredWhileEnhancing(t *testing.T) {
	s := NewViewState().WithSource(testSource("a")).WithPrompt("x").Enhancing()

	s = s.Rejected("Please upload a valid image file.")

	assert.True(t, s.IsLoading())
	assert.Empty(t, s.ErrorMessage())
}

func TestViewState_RejectedKeepsCurrentPhase(t *testing.T) {
	success := NewViewState().
		WithSource(testSource("a")).
		WithPrompt("add a hat").
		Enhancing().
		Succeeded(DisplayHandle{ID: "edited"})

	tests := []struct {
		name  string
		state ViewState
		phase Phase
	}{
		{name: "未選択", state: NewViewState(), phase: PhaseEmpty},
		{name: "準備完了", state: NewViewState().WithSource(testSource("a")), phase: PhaseReady},
		{name: "成功", state: success, phase: PhaseSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.state.Rejected("Please upload a valid image file.")

			assert.Equal(t, tt.phase, s.Phase())
			assert.Equal(t, "Please upload a valid image file.", s.ErrorMessage())
			assert.Equal(t, tt.state.OriginalHandle(), s.OriginalHandle())
			assert.Equal(t, tt.state.EditedHandle(), s.EditedHandle())
		})
	}

	// 成功状態では編集結果を保持したまま入力エラーのみを表示する
	s := success.Rejected("Please upload a valid image file.")
	require.NotNil(t, s.EditedHandle())
	assert.Equal(t, "edited", s.EditedHandle().ID)
	assert.False(t, s.IsLoading())
}

func TestViewState_CanEnhance(t *testing.T) {
	tests := []struct {
		name  string
		state ViewState
		want  bool
	}{
		{name: "画像なし", state: NewViewState().WithPrompt("add a hat"), want: false},
		{name: "プロンプトなし", state: NewViewState().WithSource(testSource("a")), want: false},
		{name: "空白のみのプロンプト", state: NewViewState().WithSource(testSource("a")).WithPrompt("   "), want: false},
		{name: "実行中", state: NewViewState().WithSource(testSource("a")).WithPrompt("add a hat").Enhancing(), want: false},
		{name: "準備完了", state: NewViewState().WithSource(testSource("a")).WithPrompt("add a hat"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.CanEnhance())
		})
	}
}

func TestViewState_HandlesAreCopies(t *testing.T) {
	s := NewViewState().WithSource(testSource("a"))

	h := s.OriginalHandle()
	h.ID = "mutated"

	assert.Equal(t, "a", s.OriginalHandle().ID)
}

func TestEditError(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := fmt.Errorf("wrapped: %w", NewEditError(ErrService, cause))

	assert.ErrorIs(t, err, ErrService)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrDecode)
	assert.Equal(t, "quota exceeded", NewEditError(ErrService, cause).Error())
	assert.Equal(t, ErrDecode.Error(), NewEditError(ErrDecode, nil).Error())

	var editErr *EditError
	require.ErrorAs(t, err, &editErr)
	assert.Equal(t, ErrService, editErr.Kind)
}
