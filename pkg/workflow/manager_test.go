package workflow

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/shouni/go-storybook-kit/pkg/backend"
	"github.com/shouni/go-storybook-kit/pkg/backend/backendtest"
	"github.com/shouni/go-storybook-kit/pkg/config"
	"github.com/shouni/go-storybook-kit/pkg/domain"
	"github.com/shouni/go-storybook-kit/pkg/publisher"
	"github.com/shouni/go-storybook-kit/pkg/runner"
)

type recordingWriter struct {
	mu    sync.Mutex
	paths []string
}

func (w *recordingWriter) Write(_ context.Context, path string, r io.Reader, _ string) error {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paths = append(w.paths, path)
	return nil
}

type failingNarrator struct{}

func (failingNarrator) Narrate(context.Context, string) ([]byte, error) {
	return nil, domain.ErrNarrationNotConfigured
}

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.GeminiAPIKey = "test-key"
	return cfg
}

func anchorFake() *backendtest.Fake {
	fake := &backendtest.Fake{}
	fake.ContentFunc = func(_ context.Context, req backend.ContentRequest) (*backend.ContentResponse, error) {
		if req.DisableThinking {
			return &backend.ContentResponse{Parts: []backend.Part{backend.TextPart(", in crayon style")}}, nil
		}
		return backendtest.DefaultContent(len(fake.ContentRequests()), req), nil
	}
	return fake
}

func TestNew(t *testing.T) {
	t.Run("API キーが無ければ ErrConfiguration を返しバックエンドを作らない", func(t *testing.T) {
		_, err := New(context.Background(), ManagerArgs{Config: config.DefaultConfig()})
		if !errors.Is(err, domain.ErrConfiguration) {
			t.Fatalf("ErrConfiguration を期待しました: %v", err)
		}
	})
}

func TestManager_EndToEnd(t *testing.T) {
	t.Run("物語を開始・継続し、書き出せる", func(t *testing.T) {
		w := &recordingWriter{}
		m, err := New(context.Background(), ManagerArgs{
			Config:   testConfig(),
			Backend:  anchorFake(),
			Writer:   w,
			Narrator: failingNarrator{},
		})
		if err != nil {
			t.Fatalf("New に失敗しました: %v", err)
		}

		sr := m.BuildStoryRunner()
		story, err := sr.Start(context.Background(), runner.StartRequest{Prompt: "A robot learns to paint"}, nil)
		if err != nil {
			t.Fatalf("Start に失敗しました: %v", err)
		}
		page, err := sr.Continue(context.Background(), story, "The robot paints the sea.")
		if err != nil {
			t.Fatalf("Continue に失敗しました: %v", err)
		}
		story = story.Append(page)

		res, err := m.BuildPublishRunner().Run(context.Background(), story, runner.PublishRequest{
			OutputDir: "out",
			Formats:   []publisher.Format{publisher.FormatJSON, publisher.FormatHTML},
			Narrate:   true,
		})
		if err != nil {
			t.Fatalf("書き出しに失敗しました: %v", err)
		}
		if res.JSONPath == "" || res.HTMLPath == "" || len(res.AudioPaths) != 0 {
			t.Errorf("結果が不正です: %+v", res)
		}
		if len(w.paths) != 2 {
			t.Errorf("書き込み回数 = %d (%v)", len(w.paths), w.paths)
		}
	})

	t.Run("セッションストアから物語を操作できる", func(t *testing.T) {
		m, err := New(context.Background(), ManagerArgs{Config: testConfig(), Backend: anchorFake(), Writer: &recordingWriter{}})
		if err != nil {
			t.Fatalf("New に失敗しました: %v", err)
		}
		store := m.BuildSessionStore()
		sess := store.Create()
		if _, err := sess.Start(context.Background(), runner.StartRequest{Prompt: "idea"}); err != nil {
			t.Fatalf("Start に失敗しました: %v", err)
		}
		got, err := store.Get(sess.ID())
		if err != nil {
			t.Fatalf("Get に失敗しました: %v", err)
		}
		if got.Snapshot().Story.Len() != 3 {
			t.Errorf("ページ数 = %d", got.Snapshot().Story.Len())
		}
	})
}
