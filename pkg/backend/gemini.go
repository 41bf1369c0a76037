package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-storybook-kit/pkg/config"
	"github.com/shouni/go-storybook-kit/pkg/domain"

	imagedom "github.com/shouni/gemini-image-kit/ports"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// GeminiBackend は Gemini API (genai SDK) を用いた Backend の実装です。
type GeminiBackend struct {
	client  *genai.Client
	limiter *rate.Limiter
}

// NewGeminiBackend は設定から genai クライアントを初期化します。
// API キーが無い場合はネットワークに触れる前に ErrConfiguration を返します。
func NewGeminiBackend(ctx context.Context, cfg config.Config) (*GeminiBackend, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: Gemini API キーは必須です", domain.ErrConfiguration)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.RequestTimeout > 0 {
		clientConfig.HTTPOptions = genai.HTTPOptions{Timeout: genai.Ptr(cfg.RequestTimeout)}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}

	return &GeminiBackend{
		client:  client,
		limiter: newLimiter(cfg.RateInterval, cfg.RateBurst),
	}, nil
}

func newLimiter(interval time.Duration, burst int) *rate.Limiter {
	if burst < 1 {
		burst = 1
	}
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, burst)
	}
	return rate.NewLimiter(rate.Every(interval), burst)
}

// GenerateContent は Backend を実装します。
func (b *GeminiBackend) GenerateContent(ctx context.Context, req ContentRequest) (*ContentResponse, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("レートリミットの待機中にエラーが発生しました: %w", err)
	}

	contents := []*genai.Content{genai.NewContentFromParts(toGenaiParts(req.Parts), genai.RoleUser)}
	start := time.Now()
	resp, err := b.client.Models.GenerateContent(ctx, req.Model, contents, buildContentConfig(req))
	if err != nil {
		return nil, fmt.Errorf("コンテンツ生成に失敗しました (model: %s): %w", req.Model, err)
	}

	out := fromGenaiResponse(resp)
	slog.DebugContext(ctx, "GenerateContent completed",
		"model", req.Model,
		"parts", len(out.Parts),
		"block_reason", out.BlockReason,
		"finish_reason", out.FinishReason,
		"duration", time.Since(start))
	return out, nil
}

// GenerateImage は Backend を実装します。
func (b *GeminiBackend) GenerateImage(ctx context.Context, req ImageRequest) ([]*imagedom.ImageResponse, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("レートリミットの待機中にエラーが発生しました: %w", err)
	}

	count := req.Count
	if count < 1 {
		count = 1
	}
	imgConfig := &genai.GenerateImagesConfig{
		NumberOfImages:   int32(count),
		OutputMIMEType:   req.MIMEType,
		AspectRatio:      req.AspectRatio,
		IncludeRAIReason: true,
	}

	start := time.Now()
	resp, err := b.client.Models.GenerateImages(ctx, req.Model, req.Prompt, imgConfig)
	if err != nil {
		return nil, fmt.Errorf("画像生成に失敗しました (model: %s): %w", req.Model, err)
	}

	images := fromGeneratedImages(resp, req.MIMEType)
	slog.DebugContext(ctx, "GenerateImages completed",
		"model", req.Model,
		"images", len(images),
		"duration", time.Since(start))
	return images, nil
}

func buildContentConfig(req ContentRequest) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.SystemInstruction != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.ResponseSchema != nil {
		gc.ResponseMIMEType = "application/json"
		gc.ResponseSchema = req.ResponseSchema
	}
	if len(req.Modalities) > 0 {
		gc.ResponseModalities = req.Modalities
	}
	if req.DisableThinking {
		gc.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)}
	}
	return gc
}

func toGenaiParts(parts []Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		switch p.Kind {
		case PartText:
			out = append(out, genai.NewPartFromText(p.Text))
		case PartImage:
			mime := p.Image.MIMEType
			if mime == "" {
				mime = domain.DefaultImageMIMEType
			}
			out = append(out, genai.NewPartFromBytes(p.Image.Data, mime))
		}
	}
	return out
}

// fromGenaiResponse は先頭候補のパートをタグ付きパートに変換します。思考パートは除外します。
func fromGenaiResponse(resp *genai.GenerateContentResponse) *ContentResponse {
	out := &ContentResponse{}
	if resp == nil {
		return out
	}
	if resp.PromptFeedback != nil {
		out.BlockReason = string(resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return out
	}

	cand := resp.Candidates[0]
	out.FinishReason = string(cand.FinishReason)
	if cand.Content == nil {
		return out
	}
	for _, p := range cand.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		if p.InlineData != nil && len(p.InlineData.Data) > 0 {
			out.Parts = append(out.Parts, ImagePart(domain.Image{
				Data:     p.InlineData.Data,
				MIMEType: p.InlineData.MIMEType,
			}))
			continue
		}
		if p.Text != "" {
			out.Parts = append(out.Parts, TextPart(p.Text))
		}
	}
	return out
}

func fromGeneratedImages(resp *genai.GenerateImagesResponse, fallbackMIME string) []*imagedom.ImageResponse {
	if resp == nil {
		return nil
	}
	var images []*imagedom.ImageResponse
	for _, gi := range resp.GeneratedImages {
		if gi == nil || gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
			continue
		}
		mime := gi.Image.MIMEType
		if mime == "" {
			mime = fallbackMIME
		}
		images = append(images, &imagedom.ImageResponse{Data: gi.Image.ImageBytes, MimeType: mime})
	}
	return images
}
