package application

import (
	"context"

	"imageenhancer/internal/domain"
)

// EditClient は、画像編集サービスとの通信を行うクライアントのインターフェースです
type EditClient interface {
	// Submit は、エンコード済みの画像と編集指示を送信し、編集結果のbase64文字列を返します
	// 呼び出しは成功したが画像が含まれなかった場合は、okがfalseでエラーはnilになります
	Submit(ctx context.Context, request domain.EditRequest) (content string, ok bool, err error)
}

// PayloadEncoder は、選択されたファイルを送信可能な形式に変換するインターフェースです
type PayloadEncoder interface {
	// Encode は、ファイルの内容をbase64文字列とメディアタイプの組に変換します
	Encode(ctx context.Context, src domain.SourceFile) (domain.EncodedPayload, error)
}

// EditOptions は、画像編集時のオプションを定義します
type EditOptions struct {
	Model       string   `json:"model,omitempty"`
	Temperature float32  `json:"temperature,omitempty"`
	TopP        float32  `json:"top_p,omitempty"`
	Modalities  []string `json:"modalities,omitempty"`
}

// DefaultEditOptions は、デフォルトの画像編集オプションを返します
func DefaultEditOptions() EditOptions {
	return EditOptions{
		Model:       "gemini-2.5-flash-image-preview",
		Temperature: 0.7,
		TopP:        0.9,
		Modalities:  []string{"TEXT", "IMAGE"},
	}
}
