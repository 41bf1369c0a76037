package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-storybook-kit/pkg/backend"
	"github.com/shouni/go-storybook-kit/pkg/config"
	"github.com/shouni/go-storybook-kit/pkg/domain"
)

// generateImage はテキストプロンプトから画像を 1 枚だけ生成し、先頭の画像を返します。
func generateImage(ctx context.Context, be backend.Backend, cfg config.Config, prompt string) (domain.Image, error) {
	slog.InfoContext(ctx, "画像を生成します", "model", cfg.ImageModel, "aspect_ratio", cfg.AspectRatio)

	images, err := be.GenerateImage(ctx, backend.ImageRequest{
		Model:       cfg.ImageModel,
		Prompt:      prompt,
		Count:       1,
		MIMEType:    cfg.ImageMIMEType,
		AspectRatio: cfg.AspectRatio,
	})
	if err != nil {
		return domain.Image{}, fmt.Errorf("%w: %w", domain.ErrImageGeneration, err)
	}
	if len(images) == 0 || images[0] == nil || len(images[0].Data) == 0 {
		return domain.Image{}, fmt.Errorf("%w: 画像が返されませんでした", domain.ErrImageGeneration)
	}

	mime := images[0].MimeType
	if mime == "" {
		mime = domain.DefaultImageMIMEType
	}
	return domain.Image{Data: images[0].Data, MIMEType: mime}, nil
}
