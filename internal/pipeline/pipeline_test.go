package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shouni/go-storybook-kit/internal/config"
	"github.com/shouni/go-storybook-kit/pkg/backend"
	"github.com/shouni/go-storybook-kit/pkg/backend/backendtest"
	"github.com/shouni/go-storybook-kit/pkg/domain"
	"github.com/shouni/go-storybook-kit/pkg/publisher"
	"github.com/shouni/go-storybook-kit/pkg/workflow"

	appcfg "github.com/shouni/go-storybook-kit/pkg/config"
)

func newManager(t *testing.T, fake *backendtest.Fake) *workflow.Manager {
	t.Helper()
	cfg := appcfg.DefaultConfig()
	cfg.GeminiAPIKey = "test-key"
	m, err := workflow.New(context.Background(), workflow.ManagerArgs{Config: cfg, Backend: fake})
	if err != nil {
		t.Fatalf("workflow.New に失敗しました: %v", err)
	}
	return m
}

func readStory(t *testing.T, path string) domain.Story {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("story.json を読み込めません: %v", err)
	}
	var story domain.Story
	if err := json.Unmarshal(data, &story); err != nil {
		t.Fatalf("story.json を解析できません: %v", err)
	}
	return story
}

func TestRun(t *testing.T) {
	formats := []publisher.Format{publisher.FormatJSON, publisher.FormatHTML}

	t.Run("開始と続きの生成を行い、ローカルに書き出す", func(t *testing.T) {
		dir := t.TempDir()
		res, err := Run(context.Background(), newManager(t, &backendtest.Fake{}), config.GenerateOptions{
			Prompt:        "A fox finds a lantern",
			Continuations: []string{"The fox meets an owl."},
			OutputDir:     dir,
		}, formats)
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if got := readStory(t, res.JSONPath); got.Len() != 4 {
			t.Errorf("ページ数 = %d", got.Len())
		}
		if _, err := os.Stat(filepath.Join(dir, "story.html")); err != nil {
			t.Errorf("story.html がありません: %v", err)
		}
	})

	t.Run("続きの生成に失敗しても確定済みのページを書き出す", func(t *testing.T) {
		fake := &backendtest.Fake{}
		calls := 0
		fake.ContentFunc = func(_ context.Context, req backend.ContentRequest) (*backend.ContentResponse, error) {
			calls++
			// 導出、シード、2・3 ページ目の後は失敗させる
			if calls > 4 {
				return nil, errors.New("upstream unavailable")
			}
			return backendtest.DefaultContent(calls, req), nil
		}

		res, err := Run(context.Background(), newManager(t, fake), config.GenerateOptions{
			Prompt:        "A fox finds a lantern",
			Continuations: []string{"more", "and more"},
			OutputDir:     t.TempDir(),
		}, formats)
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if got := readStory(t, res.JSONPath); got.Len() != 3 {
			t.Errorf("ページ数 = %d", got.Len())
		}
		if calls != 5 {
			t.Errorf("最初の失敗で打ち切られていません: calls = %d", calls)
		}
	})

	t.Run("シード画像が読めなければ生成しない", func(t *testing.T) {
		fake := &backendtest.Fake{}
		_, err := Run(context.Background(), newManager(t, fake), config.GenerateOptions{
			Prompt:    "idea",
			SeedImage: filepath.Join(t.TempDir(), "missing.png"),
			OutputDir: t.TempDir(),
		}, formats)
		if err == nil {
			t.Fatal("エラーを期待しました")
		}
		if len(fake.Calls()) != 0 {
			t.Errorf("バックエンドが呼び出されています: %v", fake.Calls())
		}
	})
}

func TestExecute(t *testing.T) {
	t.Run("プロンプトが無ければ ErrMissingPrompt", func(t *testing.T) {
		if _, err := Execute(context.Background(), config.GenerateOptions{}); !errors.Is(err, domain.ErrMissingPrompt) {
			t.Fatalf("ErrMissingPrompt を期待しました: %v", err)
		}
	})

	t.Run("不明な形式はバックエンドを作る前にエラー", func(t *testing.T) {
		if _, err := Execute(context.Background(), config.GenerateOptions{Prompt: "idea", Formats: []string{"docx"}}); err == nil {
			t.Fatal("エラーを期待しました")
		}
	})
}
