package workflow

import (
	"context"

	"github.com/shouni/go-storybook-kit/pkg/domain"
	"github.com/shouni/go-storybook-kit/pkg/publisher"
	"github.com/shouni/go-storybook-kit/pkg/runner"
	"github.com/shouni/go-storybook-kit/pkg/session"
)

// Workflow は、物語生成ワークフローの各工程を担当する Runner を構築するためのインターフェースを定義します。
type Workflow interface {
	BuildStoryRunner() StoryRunner
	BuildPublishRunner() PublishRunner
	BuildSessionStore() *session.Store
}

// StoryRunner は、物語の開始（3 ページの生成）と続きのページの生成を担います。
type StoryRunner interface {
	Start(ctx context.Context, req runner.StartRequest, onTransition runner.TransitionFunc) (*domain.Story, error)
	Continue(ctx context.Context, story *domain.Story, instruction string) (domain.Page, error)
}

// PublishRunner は、物語を指定された形式（HTML, PDF など）で書き出す責務を持ちます。
type PublishRunner interface {
	Run(ctx context.Context, story *domain.Story, req runner.PublishRequest) (publisher.PublishResult, error)
}
