package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shouni/go-storybook-kit/pkg/backend"
	"github.com/shouni/go-storybook-kit/pkg/backend/backendtest"
	"github.com/shouni/go-storybook-kit/pkg/config"
	"github.com/shouni/go-storybook-kit/pkg/domain"
	"github.com/shouni/go-storybook-kit/pkg/narration"
	"github.com/shouni/go-storybook-kit/pkg/workflow"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type narratorFunc func(ctx context.Context, text string) ([]byte, error)

func (f narratorFunc) Narrate(ctx context.Context, text string) ([]byte, error) {
	return f(ctx, text)
}

func newTestServer(t *testing.T, fake *backendtest.Fake, n narration.Narrator) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.GeminiAPIKey = "test-key"
	m, err := workflow.New(context.Background(), workflow.ManagerArgs{Config: cfg, Backend: fake, Narrator: n})
	if err != nil {
		t.Fatalf("workflow.New に失敗しました: %v", err)
	}
	return New(cfg, m.BuildSessionStore(), n)
}

func startForm(t *testing.T, prompt string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("prompt", prompt); err != nil {
		t.Fatalf("フォームの作成に失敗しました: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("フォームの作成に失敗しました: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func startStory(t *testing.T, s *Server) storyResponse {
	t.Helper()
	body, contentType := startForm(t, "A fox finds a lantern")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stories", body)
	req.Header.Set("Content-Type", contentType)

	rec := do(s, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got storyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("応答を解析できません: %v", err)
	}
	return got
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, &backendtest.Fake{}, nil)
	rec := do(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestServer_StoryLifecycle(t *testing.T) {
	t.Run("開始して 3 ページを返し、継続で 4 ページ目が追加される", func(t *testing.T) {
		s := newTestServer(t, &backendtest.Fake{}, nil)
		started := startStory(t, s)
		if started.ID == "" || started.Story.Len() != 3 || started.State != "ready" {
			t.Fatalf("開始結果が不正です: %+v", started)
		}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/stories/"+started.ID+"/pages", strings.NewReader(`{"instruction":"The fox goes home."}`))
		req.Header.Set("Content-Type", "application/json")
		rec := do(s, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var page pageResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
			t.Fatalf("応答を解析できません: %v", err)
		}
		if page.Number != 4 || page.Page.Text == "" {
			t.Errorf("ページが不正です: %+v", page)
		}

		rec = do(s, httptest.NewRequest(http.MethodGet, "/api/v1/stories/"+started.ID, nil))
		var got storyResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("応答を解析できません: %v", err)
		}
		if got.Story.Len() != 4 {
			t.Errorf("ページ数 = %d", got.Story.Len())
		}
	})

	t.Run("HTML として書き出せる", func(t *testing.T) {
		s := newTestServer(t, &backendtest.Fake{}, nil)
		started := startStory(t, s)

		rec := do(s, httptest.NewRequest(http.MethodGet, "/api/v1/stories/"+started.ID+"/export.html?title=Fox", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "<title>Fox</title>") {
			t.Errorf("タイトルが含まれていません")
		}
	})

	t.Run("削除後は 404", func(t *testing.T) {
		s := newTestServer(t, &backendtest.Fake{}, nil)
		started := startStory(t, s)

		rec := do(s, httptest.NewRequest(http.MethodDelete, "/api/v1/stories/"+started.ID, nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d", rec.Code)
		}
		rec = do(s, httptest.NewRequest(http.MethodGet, "/api/v1/stories/"+started.ID, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

func TestServer_Errors(t *testing.T) {
	t.Run("プロンプトが無ければ 400", func(t *testing.T) {
		s := newTestServer(t, &backendtest.Fake{}, nil)
		body, contentType := startForm(t, "  ")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/stories", body)
		req.Header.Set("Content-Type", contentType)

		rec := do(s, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if s.store.Len() != 0 {
			t.Errorf("失敗したセッションが残っています: %d", s.store.Len())
		}
	})

	t.Run("安全フィルターで止められた継続は 422 で、物語は変わらない", func(t *testing.T) {
		fake := &backendtest.Fake{}
		s := newTestServer(t, fake, nil)
		started := startStory(t, s)

		fake.ContentFunc = func(_ context.Context, req backend.ContentRequest) (*backend.ContentResponse, error) {
			return &backend.ContentResponse{BlockReason: "SAFETY"}, nil
		}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/stories/"+started.ID+"/pages", strings.NewReader(`{"instruction":"more"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := do(s, req)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}

		sess, err := s.store.Get(started.ID)
		if err != nil {
			t.Fatalf("Get に失敗しました: %v", err)
		}
		if got := sess.Snapshot().Story.Len(); got != 3 {
			t.Errorf("ページ数 = %d", got)
		}
	})

	t.Run("存在しないセッションは 404", func(t *testing.T) {
		s := newTestServer(t, &backendtest.Fake{}, nil)
		rec := do(s, httptest.NewRequest(http.MethodGet, "/api/v1/stories/missing/export.html", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

func TestServer_NarratePage(t *testing.T) {
	t.Run("指定ページの本文を読み上げる", func(t *testing.T) {
		var got string
		n := narratorFunc(func(_ context.Context, text string) ([]byte, error) {
			got = text
			return []byte("mp3"), nil
		})
		s := newTestServer(t, &backendtest.Fake{}, n)
		started := startStory(t, s)

		rec := do(s, httptest.NewRequest(http.MethodGet, "/api/v1/stories/"+started.ID+"/pages/2/narration", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "mp3" {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if got != started.Story.Pages[1].Text {
			t.Errorf("読み上げた本文 = %q", got)
		}
		if ct := rec.Header().Get("Content-Type"); ct != narration.AudioMIMEType {
			t.Errorf("Content-Type = %q", ct)
		}
	})

	t.Run("範囲外の index は 400", func(t *testing.T) {
		n := narratorFunc(func(context.Context, string) ([]byte, error) { return nil, nil })
		s := newTestServer(t, &backendtest.Fake{}, n)
		started := startStory(t, s)

		rec := do(s, httptest.NewRequest(http.MethodGet, "/api/v1/stories/"+started.ID+"/pages/9/narration", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrMissingPrompt, http.StatusBadRequest},
		{domain.ErrSessionNotFound, http.StatusNotFound},
		{domain.ErrBusy, http.StatusConflict},
		{domain.ErrSafetyBlocked, http.StatusUnprocessableEntity},
		{domain.ErrNarrationNotConfigured, http.StatusServiceUnavailable},
		{domain.ErrIncompleteGeneration, http.StatusBadGateway},
		{errors.New("unknown"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestServer_Run(t *testing.T) {
	t.Run("コンテキストのキャンセルで停止する", func(t *testing.T) {
		s := newTestServer(t, &backendtest.Fake{}, nil)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

		time.Sleep(50 * time.Millisecond)
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("予期しないエラー: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("サーバーが停止しませんでした")
		}
	})
}
