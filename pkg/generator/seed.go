package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-storybook-kit/pkg/backend"
	"github.com/shouni/go-storybook-kit/pkg/config"
	"github.com/shouni/go-storybook-kit/pkg/domain"
	"github.com/shouni/go-storybook-kit/pkg/prompts"

	"google.golang.org/genai"
)

// seedSchema はシード画像の戦略で要求する JSON の形です。
var seedSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"storyText": {
			Type:        genai.TypeString,
			Description: "The first paragraph of the story for a children's book. Maximum 100 words.",
		},
		"imagePrompt": {
			Type:        genai.TypeString,
			Description: "A detailed prompt for an image generation model describing the scene of this paragraph. Do NOT include style descriptions.",
		},
	},
	Required: []string{"storyText", "imagePrompt"},
}

// SeedGenerator は物語の 1 ページ目を生成します。
type SeedGenerator struct {
	cfg           config.Config
	backend       backend.Backend
	promptBuilder prompts.StoryPrompt
}

// NewSeedGenerator は SeedGenerator を初期化します。
func NewSeedGenerator(cfg config.Config, be backend.Backend, pb prompts.StoryPrompt) *SeedGenerator {
	return &SeedGenerator{cfg: cfg, backend: be, promptBuilder: pb}
}

// Generate はシード画像の有無で戦略を切り替えて 1 ページ目を生成します。
func (g *SeedGenerator) Generate(ctx context.Context, prompt string, seed *domain.Image, anchor domain.StyleAnchor) (domain.Page, error) {
	prompt = strings.TrimSpace(prompt)
	if seed != nil && seed.Valid() {
		return g.fromImage(ctx, prompt, *seed, anchor)
	}
	return g.fromText(ctx, prompt, anchor)
}

// fromImage はシード画像から本文と場面の記述を得て、その記述から挿絵を生成します。
// 利用者のプロンプトは画像生成に直接使いません。
func (g *SeedGenerator) fromImage(ctx context.Context, prompt string, seed domain.Image, anchor domain.StyleAnchor) (domain.Page, error) {
	data := prompts.TemplateData{Idea: prompt}
	system, err := g.promptBuilder.Build(prompts.ModeSeedImageSystem, data)
	if err != nil {
		return domain.Page{}, fmt.Errorf("システムプロンプトの生成に失敗しました: %w", err)
	}
	user, err := g.promptBuilder.Build(prompts.ModeSeedImageUser, data)
	if err != nil {
		return domain.Page{}, fmt.Errorf("ユーザープロンプトの生成に失敗しました: %w", err)
	}

	slog.InfoContext(ctx, "シード画像から 1 ページ目の本文を生成します", "model", g.cfg.GeminiModel)
	resp, err := g.backend.GenerateContent(ctx, backend.ContentRequest{
		Model:             g.cfg.GeminiModel,
		Parts:             []backend.Part{backend.ImagePart(seed), backend.TextPart(user)},
		SystemInstruction: system,
		ResponseSchema:    seedSchema,
		Temperature:       g.cfg.StoryTemperature,
	})
	if err != nil {
		return domain.Page{}, fmt.Errorf("1 ページ目の本文生成に失敗しました: %w", err)
	}

	draft, err := parseSeedDraft(resp.Text())
	if err != nil {
		return domain.Page{}, err
	}

	img, err := generateImage(ctx, g.backend, g.cfg, prompts.ComposeImagePrompt(prompts.TrimSentenceEnd(draft.ImagePrompt), anchor.String()))
	if err != nil {
		return domain.Page{}, err
	}
	return domain.Page{Text: draft.StoryText, Image: img}, nil
}

// fromText は先にプロンプトから挿絵を生成し、その挿絵に合わせて本文を書きます。
func (g *SeedGenerator) fromText(ctx context.Context, prompt string, anchor domain.StyleAnchor) (domain.Page, error) {
	if prompt == "" {
		return domain.Page{}, domain.ErrMissingPrompt
	}

	img, err := generateImage(ctx, g.backend, g.cfg, prompts.ComposeImagePrompt(prompt, anchor.String()))
	if err != nil {
		return domain.Page{}, err
	}

	data := prompts.TemplateData{Idea: prompt}
	system, err := g.promptBuilder.Build(prompts.ModeSeedTextSystem, data)
	if err != nil {
		return domain.Page{}, fmt.Errorf("システムプロンプトの生成に失敗しました: %w", err)
	}
	user, err := g.promptBuilder.Build(prompts.ModeSeedTextUser, data)
	if err != nil {
		return domain.Page{}, fmt.Errorf("ユーザープロンプトの生成に失敗しました: %w", err)
	}

	slog.InfoContext(ctx, "生成した挿絵から 1 ページ目の本文を生成します", "model", g.cfg.GeminiModel)
	resp, err := g.backend.GenerateContent(ctx, backend.ContentRequest{
		Model:             g.cfg.GeminiModel,
		Parts:             []backend.Part{backend.ImagePart(img), backend.TextPart(user)},
		SystemInstruction: system,
		Temperature:       g.cfg.StoryTemperature,
	})
	if err != nil {
		return domain.Page{}, fmt.Errorf("1 ページ目の本文生成に失敗しました: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return domain.Page{}, domain.ErrEmptyText
	}
	return domain.Page{Text: text, Image: img}, nil
}
