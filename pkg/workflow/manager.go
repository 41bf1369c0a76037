package workflow

import (
	"context"
	"fmt"

	"github.com/shouni/go-storybook-kit/pkg/backend"
	"github.com/shouni/go-storybook-kit/pkg/config"
	"github.com/shouni/go-storybook-kit/pkg/generator"
	"github.com/shouni/go-storybook-kit/pkg/narration"
	"github.com/shouni/go-storybook-kit/pkg/prompts"
	"github.com/shouni/go-storybook-kit/pkg/publisher"
	"github.com/shouni/go-storybook-kit/pkg/runner"
	"github.com/shouni/go-storybook-kit/pkg/session"
	"github.com/shouni/go-storybook-kit/pkg/storage"
)

// ManagerArgs は Manager の構築に必要な依存関係です。Config 以外は nil の場合に既定の実装で初期化されます。
type ManagerArgs struct {
	Config        config.Config
	Backend       backend.Backend
	Writer        storage.Writer
	Narrator      narration.Narrator
	PromptBuilder prompts.StoryPrompt
}

// Manager は、ワークフローの各工程を担う Runner 群を構築・管理します。
type Manager struct {
	cfg           config.Config
	backend       backend.Backend
	writer        storage.Writer
	narrator      narration.Narrator
	promptBuilder prompts.StoryPrompt
}

// New は、設定を検証し依存関係を初期化した Manager を返します。
// API キーが無い場合はネットワークに触れる前に ErrConfiguration を返します。
func New(ctx context.Context, args ManagerArgs) (*Manager, error) {
	if err := args.Config.Validate(); err != nil {
		return nil, err
	}

	be, err := initializeBackend(ctx, args.Backend, args.Config)
	if err != nil {
		return nil, err
	}

	pb, err := initializePromptBuilder(args.PromptBuilder)
	if err != nil {
		return nil, err
	}

	writer, err := initializeWriter(ctx, args.Writer, args.Config)
	if err != nil {
		return nil, err
	}

	narrator := args.Narrator
	if narrator == nil {
		narrator = narration.NewElevenLabs(args.Config, nil)
	}

	return &Manager{
		cfg:           args.Config,
		backend:       be,
		writer:        writer,
		narrator:      narrator,
		promptBuilder: pb,
	}, nil
}

// Config は Manager の設定を返します。
func (m *Manager) Config() config.Config {
	return m.cfg
}

// Narrator は読み上げに用いる Narrator を返します。
func (m *Manager) Narrator() narration.Narrator {
	return m.narrator
}

// BuildStoryRunner は物語の生成を担当する Runner を作成します。
func (m *Manager) BuildStoryRunner() StoryRunner {
	return runner.NewStoryRunner(
		m.cfg,
		generator.NewStyleDeriver(m.cfg, m.backend, m.promptBuilder),
		generator.NewSeedGenerator(m.cfg, m.backend, m.promptBuilder),
		generator.NewStoryExtender(m.cfg, m.backend, m.promptBuilder),
	)
}

// BuildPublishRunner は成果物の書き出しを担当する Runner を作成します。
func (m *Manager) BuildPublishRunner() PublishRunner {
	return runner.NewDefaultPublisherRunner(m.cfg, publisher.NewStoryPublisher(m.writer), m.narrator)
}

// BuildSessionStore は HTTP サーバー用のセッションストアを作成します。
func (m *Manager) BuildSessionStore() *session.Store {
	return session.NewStore(m.BuildStoryRunner(), m.cfg.SessionTTL)
}

// initializeBackend は Backend を初期化します。
// 引数として既存の Backend が渡された場合はそれを返し、nil の場合は Gemini で新規作成します。
func initializeBackend(ctx context.Context, be backend.Backend, cfg config.Config) (backend.Backend, error) {
	if be != nil {
		return be, nil
	}
	gb, err := backend.NewGeminiBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return gb, nil
}

// initializePromptBuilder は StoryPrompt ビルダーを初期化します。
// 引数として既存のビルダーが渡された場合はそれを返し、nil の場合は新規作成します。
func initializePromptBuilder(pb prompts.StoryPrompt) (prompts.StoryPrompt, error) {
	if pb != nil {
		return pb, nil
	}
	b, err := prompts.NewTextPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("TextPromptBuilder の新規作成に失敗しました: %w", err)
	}
	return b, nil
}

// initializeWriter は出力先の Writer を初期化します。
func initializeWriter(ctx context.Context, w storage.Writer, cfg config.Config) (storage.Writer, error) {
	if w != nil {
		return w, nil
	}
	writer, err := storage.NewWriter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("出力先の初期化に失敗しました: %w", err)
	}
	return writer, nil
}
