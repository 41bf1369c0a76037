package builder

import (
	"errors"
	"testing"
	"time"

	"github.com/shouni/go-storybook-kit/internal/config"
	"github.com/shouni/go-storybook-kit/pkg/domain"

	appcfg "github.com/shouni/go-storybook-kit/pkg/config"
)

func TestBuildConfig(t *testing.T) {
	t.Run("フラグの値で設定を上書きする", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "test-key")
		t.Setenv("GEMINI_MODEL", "env-model")

		cfg, err := BuildConfig(config.GenerateOptions{
			ImageModel: "flag-image",
			Timeout:    30 * time.Second,
			Addr:       ":9090",
		})
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if cfg.GeminiModel != "env-model" {
			t.Errorf("空のフラグが環境変数を上書きしています: %q", cfg.GeminiModel)
		}
		if cfg.ImageModel != "flag-image" || cfg.EditModel != appcfg.DefaultEditModel {
			t.Errorf("モデル設定が不正です: %q, %q", cfg.ImageModel, cfg.EditModel)
		}
		if cfg.RequestTimeout != 30*time.Second || cfg.ServerAddr != ":9090" {
			t.Errorf("timeout = %v, addr = %q", cfg.RequestTimeout, cfg.ServerAddr)
		}
	})

	t.Run("API キーが無ければ ErrConfiguration", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		if _, err := BuildConfig(config.GenerateOptions{}); !errors.Is(err, domain.ErrConfiguration) {
			t.Fatalf("ErrConfiguration を期待しました: %v", err)
		}
	})
}
