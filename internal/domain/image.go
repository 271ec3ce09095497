package domain

import (
	"context"
	"io"
	"strings"
)

// DefaultEditedMediaType は、編集結果の画像形式が判別できない場合に使用するメディアタイプです
const DefaultEditedMediaType = "image/png"

// SourceFile は、ユーザーが選択したバイナリファイルを表すインターフェースです
type SourceFile interface {
	// Open は、ファイルの内容を読み込むためのReaderを返します
	Open(ctx context.Context) (io.ReadCloser, error)

	// MediaType は、ファイル自身が宣言しているメディアタイプを返します
	MediaType() string
}

// DisplayHandle は、表示層が画像を再読み込みせずに表示するための参照です
type DisplayHandle struct {
	ID        string `json:"id"`
	MediaType string `json:"media_type"`
	URL       string `json:"url"`
}

// SourceImage は、ユーザーが選択した画像です
// バイト列はハンドルストアが所有し、ここでは参照のみを保持します
type SourceImage struct {
	Filename  string
	mediaType string
	Handle    DisplayHandle
	store     HandleStore
}

// NewSourceImage は新しいSourceImageを作成します
func NewSourceImage(filename, mediaType string, handle DisplayHandle, store HandleStore) SourceImage {
	return SourceImage{
		Filename:  filename,
		mediaType: mediaType,
		Handle:    handle,
		store:     store,
	}
}

// Open は、ハンドルストアから画像の内容を読み込みます
func (s SourceImage) Open(ctx context.Context) (io.ReadCloser, error) {
	if s.store == nil {
		return nil, ErrHandleNotFound
	}
	rc, _, err := s.store.Open(ctx, s.Handle.ID)
	return rc, err
}

// MediaType は、選択時に宣言されたメディアタイプを返します
func (s SourceImage) MediaType() string {
	return s.mediaType
}

// EncodedPayload は、base64でエンコードされた画像とメディアタイプの組です
type EncodedPayload struct {
	Content   string
	MediaType string
}

// EditRequest は、画像編集サービスに送信する要求です
type EditRequest struct {
	Payload     EncodedPayload
	Instruction string
}

// IsImageMediaType は、メディアタイプが画像を表すかどうかを判定します
func IsImageMediaType(mediaType string) bool {
	return strings.HasPrefix(mediaType, "image/")
}

// DataURI は、メディアタイプとbase64本文から自己記述的なdata URIを組み立てます
func DataURI(mediaType, content string) string {
	return "data:" + mediaType + ";base64," + content
}

var _ SourceFile = SourceImage{}
