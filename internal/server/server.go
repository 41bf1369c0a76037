package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shouni/go-storybook-kit/pkg/config"
	"github.com/shouni/go-storybook-kit/pkg/domain"
	"github.com/shouni/go-storybook-kit/pkg/narration"
	"github.com/shouni/go-storybook-kit/pkg/session"

	"github.com/gin-gonic/gin"
)

const maxSeedImageBytes = 10 << 20

// Server は物語セッションを操作する HTTP API です。
type Server struct {
	cfg      config.Config
	store    *session.Store
	narrator narration.Narrator
	router   *gin.Engine
}

// New はルーティングを設定した Server を生成します。narrator は nil でも構いません。
func New(cfg config.Config, store *session.Store, narrator narration.Narrator) *Server {
	s := &Server{cfg: cfg, store: store, narrator: narrator}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.MaxMultipartMemory = maxSeedImageBytes

	router.GET("/health", s.health)
	api := router.Group("/api/v1")
	{
		api.POST("/stories", s.startStory)
		api.GET("/stories/:id", s.getStory)
		api.DELETE("/stories/:id", s.deleteStory)
		api.POST("/stories/:id/pages", s.continueStory)
		api.GET("/stories/:id/export.html", s.exportHTML)
		api.GET("/stories/:id/export.pdf", s.exportPDF)
		api.GET("/stories/:id/pages/:index/narration", s.narratePage)
	}

	s.router = router
	return s
}

// Handler は http.Handler として Server を返します。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run は ctx がキャンセルされるまで addr で待ち受けます。addr が空の場合は設定値を使います。
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = s.cfg.ServerAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP サーバーを起動します", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP サーバーの起動に失敗しました: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("HTTP サーバーを停止します")
		return srv.Shutdown(shutdownCtx)
	}
}

// statusFor はエラーの種類を HTTP ステータスに対応付けます。
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingPrompt), errors.Is(err, domain.ErrEmptyHistory):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, domain.ErrSafetyBlocked):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrConfiguration), errors.Is(err, domain.ErrNarrationNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "リクエストの処理に失敗しました", "path", c.FullPath(), "error", err)
	} else {
		slog.WarnContext(c.Request.Context(), "リクエストを処理できませんでした", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": domain.UserMessage(err)})
}
