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
)

// StyleDeriver は 1 回のテキスト生成でスタイルアンカーを導出します。
type StyleDeriver struct {
	cfg           config.Config
	backend       backend.Backend
	promptBuilder prompts.StoryPrompt
}

// NewStyleDeriver は StyleDeriver を初期化します。
func NewStyleDeriver(cfg config.Config, be backend.Backend, pb prompts.StoryPrompt) *StyleDeriver {
	return &StyleDeriver{cfg: cfg, backend: be, promptBuilder: pb}
}

// Derive はアイデアからキャラクターと画風を定める接尾辞を生成します。
// 思考は無効化され、結果は前後の空白を除いた空でない文字列です。
func (d *StyleDeriver) Derive(ctx context.Context, idea string) (domain.StyleAnchor, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return "", domain.ErrMissingPrompt
	}

	prompt, err := d.promptBuilder.Build(prompts.ModeStyle, prompts.TemplateData{Idea: idea})
	if err != nil {
		return "", fmt.Errorf("スタイルプロンプトの生成に失敗しました: %w", err)
	}

	slog.InfoContext(ctx, "スタイルアンカーを導出します", "model", d.cfg.GeminiModel)
	resp, err := d.backend.GenerateContent(ctx, backend.ContentRequest{
		Model:           d.cfg.GeminiModel,
		Parts:           []backend.Part{backend.TextPart(prompt)},
		Temperature:     d.cfg.StyleTemperature,
		DisableThinking: true,
	})
	if err != nil {
		return "", fmt.Errorf("スタイルアンカーの生成に失敗しました: %w", err)
	}

	anchor := strings.TrimSpace(resp.Text())
	if anchor == "" {
		return "", domain.ErrEmptyStyle
	}
	return domain.StyleAnchor(anchor), nil
}
