package asset

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/go-storybook-kit/pkg/domain"
)

// LoadImage はシード画像を読み込み、拡張子と内容から MIME タイプを判定します。
// 画像以外のファイルはエラーになります。
func LoadImage(path string) (domain.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Image{}, fmt.Errorf("画像ファイルの読み込みに失敗しました (%s): %w", path, err)
	}
	mimeType, err := DetectImageType(filepath.Ext(path), data)
	if err != nil {
		return domain.Image{}, fmt.Errorf("%s: %w", path, err)
	}
	return domain.Image{Data: data, MIMEType: mimeType}, nil
}

// DetectImageType は拡張子を優先し、判定できなければ内容から画像の MIME タイプを判定します。
func DetectImageType(ext string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("画像データが空です")
	}
	mimeType := mime.TypeByExtension(strings.ToLower(ext))
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	mimeType, _, _ = strings.Cut(mimeType, ";")
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("画像ファイルではありません (MIME: %s)", mimeType)
	}
	return mimeType, nil
}
