package backend

import (
	"context"

	imagedom "github.com/shouni/gemini-image-kit/ports"
)

// Backend は生成モデルへの窓口です。各呼び出しは 1 回だけ行われ、再試行はしません。
type Backend interface {
	// GenerateContent はテキストと画像を組み合わせた入力から、テキストと画像のパート列を生成します。
	GenerateContent(ctx context.Context, req ContentRequest) (*ContentResponse, error)
	// GenerateImage はテキストプロンプトから画像を生成します。
	GenerateImage(ctx context.Context, req ImageRequest) ([]*imagedom.ImageResponse, error)
}
