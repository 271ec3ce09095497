package application

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"imageenhancer/internal/domain"
)

// errPayloadNotFound は、data URIから本文を取り出せなかった場合のエラーです
var errPayloadNotFound = errors.New("could not extract the encoded image data from the file")

// Encoder は、選択されたファイルをbase64文字列とメディアタイプの組に変換します
type Encoder struct{}

// NewEncoder は新しいEncoderインスタンスを作成します
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode は、ファイル全体をdata URIとして読み込み、最初のカンマ以降を本文として返します
// メディアタイプはURIのヘッダーではなく、ファイル自身が宣言したものを使用します
func (e *Encoder) Encode(ctx context.Context, src domain.SourceFile) (domain.EncodedPayload, error) {
	if err := ctx.Err(); err != nil {
		return domain.EncodedPayload{}, domain.NewEditError(domain.ErrRead, err)
	}

	uri, err := readAsDataURI(ctx, src)
	if err != nil {
		return domain.EncodedPayload{}, domain.NewEditError(domain.ErrRead, err)
	}

	_, body, found := strings.Cut(uri, ",")
	if !found || body == "" {
		return domain.EncodedPayload{}, domain.NewEditError(domain.ErrDecode, errPayloadNotFound)
	}

	return domain.EncodedPayload{
		Content:   body,
		MediaType: src.MediaType(),
	}, nil
}

// readAsDataURI は、ファイルの内容を自己記述的なdata URIとして読み込みます
func readAsDataURI(ctx context.Context, src domain.SourceFile) (string, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	mediaType := src.MediaType()
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}

	var b strings.Builder
	b.WriteString("data:")
	b.WriteString(mediaType)
	b.WriteString(";base64,")

	enc := base64.NewEncoder(base64.StdEncoding, &b)
	if _, err := io.Copy(enc, rc); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("base64エンコードの終了に失敗: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	return b.String(), nil
}
