package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-storybook-kit/internal/builder"
	"github.com/shouni/go-storybook-kit/internal/config"
	"github.com/shouni/go-storybook-kit/pkg/asset"
	"github.com/shouni/go-storybook-kit/pkg/domain"
	"github.com/shouni/go-storybook-kit/pkg/publisher"
	"github.com/shouni/go-storybook-kit/pkg/runner"
	"github.com/shouni/go-storybook-kit/pkg/workflow"
)

// Execute は物語の開始、指定された続きの生成、書き出しを順に実行するのだ。
func Execute(ctx context.Context, opts config.GenerateOptions) (publisher.PublishResult, error) {
	if strings.TrimSpace(opts.Prompt) == "" {
		return publisher.PublishResult{}, domain.ErrMissingPrompt
	}
	formats, err := publisher.ParseFormats(opts.Formats)
	if err != nil {
		return publisher.PublishResult{}, err
	}

	cfg, err := builder.BuildConfig(opts)
	if err != nil {
		return publisher.PublishResult{}, err
	}
	m, err := builder.BuildManager(ctx, cfg)
	if err != nil {
		return publisher.PublishResult{}, err
	}
	return Run(ctx, m, opts, formats)
}

// Run は構築済みの Manager で生成と書き出しを行うのだ。
func Run(ctx context.Context, m *workflow.Manager, opts config.GenerateOptions, formats []publisher.Format) (publisher.PublishResult, error) {
	req := runner.StartRequest{Prompt: opts.Prompt}
	if opts.SeedImage != "" {
		img, err := asset.LoadImage(opts.SeedImage)
		if err != nil {
			return publisher.PublishResult{}, err
		}
		req.SeedImage = &img
	}

	// --- Phase 1: 最初の 3 ページ ---
	story, err := runStartStep(ctx, m, req)
	if err != nil {
		return publisher.PublishResult{}, err
	}

	// --- Phase 2: 続きのページ ---
	story = runContinueStep(ctx, m, story, opts.Continuations)

	// --- Phase 3: 書き出し ---
	return runPublishStep(ctx, m, story, runner.PublishRequest{
		OutputDir: opts.OutputDir,
		Title:     opts.Title,
		Formats:   formats,
		Narrate:   opts.Narrate,
	})
}

func runStartStep(ctx context.Context, m *workflow.Manager, req runner.StartRequest) (*domain.Story, error) {
	slog.InfoContext(ctx, "Phase 1: 物語の生成を開始するのだ...", "seed_image", req.SeedImage != nil)
	story, err := m.BuildStoryRunner().Start(ctx, req, func(s runner.State) {
		slog.InfoContext(ctx, "状態が遷移したのだ", "state", s.String())
	})
	if err != nil {
		return nil, fmt.Errorf("物語の開始に失敗したのだ: %w", err)
	}
	return story, nil
}

// runContinueStep は指示ごとに 1 ページずつ追加するのだ。
// 失敗した時点で打ち切り、それまでに確定したページで書き出しを続けるのだ。
func runContinueStep(ctx context.Context, m *workflow.Manager, story *domain.Story, instructions []string) *domain.Story {
	if len(instructions) == 0 {
		return story
	}
	slog.InfoContext(ctx, "Phase 2: 続きのページを生成するのだ...", "count", len(instructions))

	sr := m.BuildStoryRunner()
	for _, instruction := range instructions {
		page, err := sr.Continue(ctx, story, instruction)
		if err != nil {
			slog.WarnContext(ctx, "続きの生成を打ち切るのだ", "pages", story.Len(), "reason", domain.UserMessage(err), "error", err)
			break
		}
		story = story.Append(page)
	}
	return story
}

func runPublishStep(ctx context.Context, m *workflow.Manager, story *domain.Story, req runner.PublishRequest) (publisher.PublishResult, error) {
	slog.InfoContext(ctx, "Phase 3: 書き出しを開始するのだ...", "pages", story.Len(), "output_dir", req.OutputDir)
	res, err := m.BuildPublishRunner().Run(ctx, story, req)
	if err != nil {
		return publisher.PublishResult{}, fmt.Errorf("書き出しに失敗したのだ: %w", err)
	}
	return res, nil
}

// Serve は HTTP API サーバーを ctx がキャンセルされるまで起動するのだ。
func Serve(ctx context.Context, opts config.GenerateOptions) error {
	cfg, err := builder.BuildConfig(opts)
	if err != nil {
		return err
	}
	m, err := builder.BuildManager(ctx, cfg)
	if err != nil {
		return err
	}
	return builder.BuildServer(m).Run(ctx, cfg.ServerAddr)
}
