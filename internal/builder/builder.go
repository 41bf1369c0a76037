package builder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-storybook-kit/internal/config"
	"github.com/shouni/go-storybook-kit/internal/server"

	appcfg "github.com/shouni/go-storybook-kit/pkg/config"
	"github.com/shouni/go-storybook-kit/pkg/workflow"
)

// BuildConfig は環境変数から設定を読み込み、CLI フラグで指定された値で上書きします。
// 空のフラグは環境変数または既定値を維持します。
func BuildConfig(opts config.GenerateOptions) (appcfg.Config, error) {
	cfg := appcfg.LoadConfig()

	if opts.AIModel != "" {
		cfg.GeminiModel = opts.AIModel
	}
	if opts.ImageModel != "" {
		cfg.ImageModel = opts.ImageModel
	}
	if opts.EditModel != "" {
		cfg.EditModel = opts.EditModel
	}
	if opts.Timeout > 0 {
		cfg.RequestTimeout = opts.Timeout
	}
	if opts.Addr != "" {
		cfg.ServerAddr = opts.Addr
	}

	if err := cfg.Validate(); err != nil {
		return appcfg.Config{}, err
	}
	return cfg, nil
}

// BuildManager は設定から Runner 群を管理する Manager を構築します。
func BuildManager(ctx context.Context, cfg appcfg.Config) (*workflow.Manager, error) {
	m, err := workflow.New(ctx, workflow.ManagerArgs{Config: cfg})
	if err != nil {
		return nil, fmt.Errorf("ワークフローの初期化に失敗しました: %w", err)
	}
	slog.DebugContext(ctx, "Manager を構築しました",
		"text_model", cfg.GeminiModel,
		"image_model", cfg.ImageModel,
		"edit_model", cfg.EditModel)
	return m, nil
}

// BuildServer はセッションストアと読み上げを接続した HTTP サーバーを構築します。
func BuildServer(m *workflow.Manager) *server.Server {
	return server.New(m.Config(), m.BuildSessionStore(), m.Narrator())
}
