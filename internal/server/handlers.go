package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shouni/go-storybook-kit/pkg/asset"
	"github.com/shouni/go-storybook-kit/pkg/domain"
	"github.com/shouni/go-storybook-kit/pkg/narration"
	"github.com/shouni/go-storybook-kit/pkg/publisher"
	"github.com/shouni/go-storybook-kit/pkg/runner"
	"github.com/shouni/go-storybook-kit/pkg/session"

	"github.com/gin-gonic/gin"
)

type storyResponse struct {
	ID        string        `json:"id"`
	State     string        `json:"state"`
	Story     *domain.Story `json:"story,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type continueRequest struct {
	Instruction string `json:"instruction"`
}

type pageResponse struct {
	ID     string      `json:"id"`
	Number int         `json:"number"`
	Page   domain.Page `json:"page"`
}

func newStoryResponse(snap session.Snapshot) storyResponse {
	return storyResponse{ID: snap.ID, State: snap.State.String(), Story: snap.Story, UpdatedAt: snap.UpdatedAt}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.store.Len()})
}

// startStory は multipart の prompt と任意の image から新しい物語を生成します。
func (s *Server) startStory(c *gin.Context) {
	req := runner.StartRequest{Prompt: c.PostForm("prompt")}

	seed, err := readSeedImage(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.SeedImage = seed

	sess := s.store.Create()
	if _, err := sess.Start(c.Request.Context(), req); err != nil {
		s.store.Delete(sess.ID())
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newStoryResponse(sess.Snapshot()))
}

func readSeedImage(c *gin.Context) (*domain.Image, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("画像の受け取りに失敗しました: %w", err)
	}
	if fh.Size > maxSeedImageBytes {
		return nil, fmt.Errorf("画像が大きすぎます (最大 %d バイト)", maxSeedImageBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("画像を開けませんでした: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSeedImageBytes))
	if err != nil {
		return nil, fmt.Errorf("画像の読み込みに失敗しました: %w", err)
	}
	mimeType, err := asset.DetectImageType(filepath.Ext(fh.Filename), data)
	if err != nil {
		return nil, err
	}
	return &domain.Image{Data: data, MIMEType: mimeType}, nil
}

func (s *Server) getStory(c *gin.Context) {
	sess, err := s.store.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newStoryResponse(sess.Snapshot()))
}

func (s *Server) deleteStory(c *gin.Context) {
	s.store.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (s *Server) continueStory(c *gin.Context) {
	sess, err := s.store.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var body continueRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "instruction を JSON で指定してください"})
		return
	}

	page, number, err := sess.Continue(c.Request.Context(), body.Instruction)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pageResponse{ID: sess.ID(), Number: number, Page: page})
}

func (s *Server) readyStory(c *gin.Context) (*domain.Story, bool) {
	sess, err := s.store.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	story := sess.Snapshot().Story
	if story.Len() == 0 {
		respondError(c, domain.ErrEmptyHistory)
		return nil, false
	}
	return story, true
}

func (s *Server) exportHTML(c *gin.Context) {
	story, ok := s.readyStory(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := publisher.RenderHTML(&buf, c.Query("title"), story); err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) exportPDF(c *gin.Context) {
	story, ok := s.readyStory(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := publisher.RenderPDF(&buf, c.Query("title"), story); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+asset.DefaultStoryPDF+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// narratePage は 1 始まりの index で指定されたページを読み上げます。
func (s *Server) narratePage(c *gin.Context) {
	if s.narrator == nil {
		respondError(c, domain.ErrNarrationNotConfigured)
		return
	}
	story, ok := s.readyStory(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 1 || index > story.Len() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("index は 1 から %d の範囲で指定してください", story.Len())})
		return
	}

	audio, err := s.narrator.Narrate(c.Request.Context(), story.Pages[index-1].Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, narration.AudioMIMEType, audio)
}
