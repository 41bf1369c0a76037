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

// StoryExtender は直前の挿絵を編集しながら次のページを生成します。
type StoryExtender struct {
	cfg           config.Config
	backend       backend.Backend
	promptBuilder prompts.StoryPrompt
}

// NewStoryExtender は StoryExtender を初期化します。
func NewStoryExtender(cfg config.Config, be backend.Backend, pb prompts.StoryPrompt) *StoryExtender {
	return &StoryExtender{cfg: cfg, backend: be, promptBuilder: pb}
}

// Extend は物語全体の要約と指示を 1 回のマルチモーダル生成に渡し、新しいページを返します。
// story は変更されません。
func (e *StoryExtender) Extend(ctx context.Context, story *domain.Story, instruction string) (domain.Page, error) {
	last, ok := story.Last()
	if !ok {
		return domain.Page{}, domain.ErrEmptyHistory
	}
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return domain.Page{}, domain.ErrMissingPrompt
	}

	texts := make([]string, len(story.Pages))
	for i, p := range story.Pages {
		texts[i] = p.Text
	}
	prompt, err := e.promptBuilder.Build(prompts.ModeNextPage, prompts.TemplateData{
		StyleAnchor: story.StyleAnchor.String(),
		Recap:       prompts.NewRecap(texts),
		Instruction: instruction,
	})
	if err != nil {
		return domain.Page{}, fmt.Errorf("次ページのプロンプト生成に失敗しました: %w", err)
	}

	slog.InfoContext(ctx, "次のページを生成します",
		slog.String("model", e.cfg.EditModel),
		slog.Int("page", story.Len()+1))

	resp, err := e.backend.GenerateContent(ctx, backend.ContentRequest{
		Model:       e.cfg.EditModel,
		Parts:       []backend.Part{backend.ImagePart(last.Image), backend.TextPart(prompt)},
		Modalities:  []string{backend.ModalityImage, backend.ModalityText},
		Temperature: e.cfg.EditTemperature,
	})
	if err != nil {
		return domain.Page{}, fmt.Errorf("ページ %d の生成に失敗しました: %w", story.Len()+1, err)
	}
	if resp.Empty() {
		if resp == nil {
			return domain.Page{}, domain.ErrSafetyBlocked
		}
		slog.WarnContext(ctx, "ページの候補が返りませんでした",
			slog.String("block_reason", resp.BlockReason),
			slog.String("finish_reason", resp.FinishReason))
		if reason := firstNonEmpty(resp.BlockReason, resp.FinishReason); reason != "" {
			return domain.Page{}, fmt.Errorf("%w: %s", domain.ErrSafetyBlocked, reason)
		}
		return domain.Page{}, domain.ErrSafetyBlocked
	}

	page, err := ScanPage(resp.Parts)
	if err != nil && resp.FinishReason != "" {
		return domain.Page{}, fmt.Errorf("%w (finish_reason: %s)", err, resp.FinishReason)
	}
	return page, err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
