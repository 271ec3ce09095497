package domain

import "fmt"

// Upload は、ファイル選択によって渡されたファイルを表現する値オブジェクトです
type Upload struct {
	Filename  string
	MediaType string
	Data      []byte
}

// IsImage は、宣言されたメディアタイプが画像かどうかを判定します
func (u Upload) IsImage() bool {
	return IsImageMediaType(u.MediaType)
}

// String はUploadの文字列表現を返します
func (u Upload) String() string {
	return fmt.Sprintf("Upload{Filename: %s, MediaType: %s, Size: %d}", u.Filename, u.MediaType, len(u.Data))
}
