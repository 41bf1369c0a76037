// Package backendtest はテスト用の記録付き Backend を提供します。
package backendtest

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/shouni/go-storybook-kit/pkg/backend"
	"github.com/shouni/go-storybook-kit/pkg/domain"

	imagedom "github.com/shouni/gemini-image-kit/ports"
)

const (
	CallContent = "content"
	CallImage   = "image"
)

// Fake は呼び出しを記録し、設定された関数（未設定なら既定の応答）で結果を返す Backend です。
type Fake struct {
	ContentFunc func(ctx context.Context, req backend.ContentRequest) (*backend.ContentResponse, error)
	ImageFunc   func(ctx context.Context, req backend.ImageRequest) ([]*imagedom.ImageResponse, error)

	mu              sync.Mutex
	calls           []string
	contentRequests []backend.ContentRequest
	imageRequests   []backend.ImageRequest
}

// GenerateContent は backend.Backend を実装します。
func (f *Fake) GenerateContent(ctx context.Context, req backend.ContentRequest) (*backend.ContentResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, CallContent)
	f.contentRequests = append(f.contentRequests, req)
	n := len(f.contentRequests)
	f.mu.Unlock()

	if f.ContentFunc != nil {
		return f.ContentFunc(ctx, req)
	}
	return DefaultContent(n, req), nil
}

// GenerateImage は backend.Backend を実装します。
func (f *Fake) GenerateImage(ctx context.Context, req backend.ImageRequest) ([]*imagedom.ImageResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, CallImage)
	f.imageRequests = append(f.imageRequests, req)
	n := len(f.imageRequests)
	f.mu.Unlock()

	if f.ImageFunc != nil {
		return f.ImageFunc(ctx, req)
	}
	return []*imagedom.ImageResponse{{Data: []byte(fmt.Sprintf("image-%d", n)), MimeType: "image/jpeg"}}, nil
}

// Calls は呼び出された順にメソッド種別を返します。
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// ContentRequests は記録された GenerateContent の入力を返します。
func (f *Fake) ContentRequests() []backend.ContentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.contentRequests)
}

// ImageRequests は記録された GenerateImage の入力を返します。
func (f *Fake) ImageRequests() []backend.ImageRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.imageRequests)
}

// DefaultContent は要求の形に応じた既定の応答を返します。
//   - 画像モダリティを含む要求: 本文と編集後の画像
//   - スキーマ付きの要求: storyText と imagePrompt を持つ JSON
//   - それ以外: 単一のテキスト
func DefaultContent(n int, req backend.ContentRequest) *backend.ContentResponse {
	switch {
	case slices.Contains(req.Modalities, backend.ModalityImage):
		return &backend.ContentResponse{Parts: []backend.Part{
			backend.TextPart(fmt.Sprintf("page text %d", n)),
			backend.ImagePart(domain.Image{Data: []byte(fmt.Sprintf("edited-%d", n)), MIMEType: "image/png"}),
		}}
	case req.ResponseSchema != nil:
		return &backend.ContentResponse{Parts: []backend.Part{
			backend.TextPart(`{"storyText": "A fox finds a lantern.", "imagePrompt": "A small fox holding a glowing lantern"}`),
		}}
	default:
		return &backend.ContentResponse{Parts: []backend.Part{backend.TextPart(fmt.Sprintf("text %d", n))}}
	}
}
