package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/go-storybook-kit/pkg/config"
	"github.com/shouni/go-storybook-kit/pkg/domain"
	"github.com/shouni/go-storybook-kit/pkg/generator"
)

// StartRequest は新しい物語を始めるための入力です。
type StartRequest struct {
	Prompt    string
	SeedImage *domain.Image
}

// StoryRunner はスタイル導出から 3 ページ目までの生成と、続きのページの生成を順に実行します。
type StoryRunner struct {
	cfg      config.Config
	style    generator.StyleAnchorDeriver
	seed     generator.SeedPageGenerator
	extender generator.PageExtender
}

// NewStoryRunner は、各生成器を依存性として注入し StoryRunner を初期化します。
func NewStoryRunner(
	cfg config.Config,
	style generator.StyleAnchorDeriver,
	seed generator.SeedPageGenerator,
	extender generator.PageExtender,
) *StoryRunner {
	return &StoryRunner{
		cfg:      cfg,
		style:    style,
		seed:     seed,
		extender: extender,
	}
}

// Start はスタイルアンカーを導出し、1 ページ目と固定の指示による 2・3 ページ目を順に生成します。
// いずれかの工程が失敗した場合は物語を返しません。onTransition は nil でも構いません。
func (r *StoryRunner) Start(ctx context.Context, req StartRequest, onTransition TransitionFunc) (*domain.Story, error) {
	notify := func(s State) {
		if onTransition != nil {
			onTransition(s)
		}
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, domain.ErrMissingPrompt
	}

	start := time.Now()
	slog.InfoContext(ctx, "StoryRunner: 物語の生成を開始します", "seed_image", req.SeedImage != nil)

	anchor, err := r.style.Derive(ctx, req.Prompt)
	if err != nil {
		return nil, fmt.Errorf("スタイルアンカーの導出に失敗しました: %w", err)
	}
	notify(StateStyleDerived)
	slog.InfoContext(ctx, "StoryRunner: スタイルアンカーを導出しました", "style_anchor", anchor.String())

	first, err := r.seed.Generate(ctx, req.Prompt, req.SeedImage, anchor)
	if err != nil {
		return nil, fmt.Errorf("1 ページ目の生成に失敗しました: %w", err)
	}
	story := (&domain.Story{StyleAnchor: anchor}).Append(first)
	notify(StateSeedCreated)

	second, err := r.extender.Extend(ctx, story, r.cfg.MiddleInstruction)
	if err != nil {
		return nil, fmt.Errorf("2 ページ目の生成に失敗しました: %w", err)
	}
	story = story.Append(second)
	notify(StatePage2Created)

	third, err := r.extender.Extend(ctx, story, r.cfg.EndingInstruction)
	if err != nil {
		return nil, fmt.Errorf("3 ページ目の生成に失敗しました: %w", err)
	}
	story = story.Append(third)
	notify(StateReady)

	slog.InfoContext(ctx, "StoryRunner: 物語の生成が完了しました",
		slog.Int("pages", story.Len()),
		slog.Duration("elapsed", time.Since(start)))
	return story, nil
}

// Continue は物語全体を文脈として次の 1 ページを生成します。story は変更されず、追加は呼び出し側が行います。
func (r *StoryRunner) Continue(ctx context.Context, story *domain.Story, instruction string) (domain.Page, error) {
	if story.Len() == 0 {
		return domain.Page{}, domain.ErrEmptyHistory
	}
	page, err := r.extender.Extend(ctx, story, instruction)
	if err != nil {
		return domain.Page{}, fmt.Errorf("ページ %d の生成に失敗しました: %w", story.Len()+1, err)
	}
	slog.InfoContext(ctx, "StoryRunner: ページを追加しました", slog.Int("page", story.Len()+1))
	return page, nil
}
