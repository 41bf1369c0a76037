package runner

import (
	"context"
	"log/slog"

	"github.com/shouni/go-storybook-kit/pkg/config"
	"github.com/shouni/go-storybook-kit/pkg/domain"
	"github.com/shouni/go-storybook-kit/pkg/narration"
	"github.com/shouni/go-storybook-kit/pkg/publisher"
)

// PublishRequest は書き出しの入力です。
type PublishRequest struct {
	OutputDir string
	Title     string
	Formats   []publisher.Format
	Narrate   bool
}

// DefaultPublisherRunner は pkg/publisher を利用した標準実装です。
type DefaultPublisherRunner struct {
	cfg       config.Config
	publisher *publisher.StoryPublisher
	narrator  narration.Narrator
}

// NewDefaultPublisherRunner は DefaultPublisherRunner を初期化します。narrator は nil でも構いません。
func NewDefaultPublisherRunner(cfg config.Config, pub *publisher.StoryPublisher, narrator narration.Narrator) *DefaultPublisherRunner {
	return &DefaultPublisherRunner{
		cfg:       cfg,
		publisher: pub,
		narrator:  narrator,
	}
}

// Run は必要に応じて全ページを読み上げたうえで物語を書き出します。
// 読み上げの失敗は警告として記録し、音声なしで書き出しを続けます。
func (pr *DefaultPublisherRunner) Run(ctx context.Context, story *domain.Story, req PublishRequest) (publisher.PublishResult, error) {
	opts := publisher.Options{
		OutputDir: req.OutputDir,
		Title:     req.Title,
		Formats:   req.Formats,
	}

	if req.Narrate && pr.narrator != nil {
		audio, err := narration.NarrateStory(ctx, pr.narrator, story, pr.cfg.NarrationParallels)
		if err != nil {
			slog.WarnContext(ctx, "読み上げ音声の生成に失敗したため、音声なしで書き出します", "error", err)
		} else {
			opts.Audio = audio
		}
	}

	return pr.publisher.Publish(ctx, story, opts)
}
