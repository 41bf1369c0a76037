package narration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/shouni/go-storybook-kit/pkg/config"
	"github.com/shouni/go-storybook-kit/pkg/domain"

	"github.com/shouni/go-http-kit/httpkit"
)

// AudioMIMEType は読み上げ音声の形式です。
const AudioMIMEType = "audio/mpeg"

// Narrator はテキストを音声に変換する契約です。
type Narrator interface {
	Narrate(ctx context.Context, text string) ([]byte, error)
}

// ElevenLabs は ElevenLabs の text-to-speech API を用いた Narrator の実装です。
type ElevenLabs struct {
	apiKey     string
	baseURL    string
	voiceID    string
	modelID    string
	stability  float64
	similarity float64
	client     *httpkit.Client
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type speechRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type apiError struct {
	Detail struct {
		Message string `json:"message"`
	} `json:"detail"`
}

// NewElevenLabs は設定から ElevenLabs クライアントを生成します。
// doer が nil の場合は go-http-kit の安全な HTTP クライアントを使います。
func NewElevenLabs(cfg config.Config, doer httpkit.Doer) *ElevenLabs {
	var opts []httpkit.ClientOption
	if doer != nil {
		opts = append(opts, httpkit.WithHTTPClient(doer))
	}
	return &ElevenLabs{
		apiKey:     cfg.ElevenLabsAPIKey,
		baseURL:    strings.TrimRight(cfg.ElevenLabsBaseURL, "/"),
		voiceID:    cfg.ElevenLabsVoiceID,
		modelID:    cfg.ElevenLabsModelID,
		stability:  cfg.VoiceStability,
		similarity: cfg.VoiceSimilarity,
		client:     httpkit.New(cfg.RequestTimeout, opts...),
	}
}

// Narrate はテキストを MP3 音声に変換します。空白だけのテキストは API を呼ばずに空の音声を返します。
// 失敗しても再試行はしません。
func (e *ElevenLabs) Narrate(ctx context.Context, text string) ([]byte, error) {
	if e.apiKey == "" {
		return nil, domain.ErrNarrationNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return []byte{}, nil
	}

	body, err := json.Marshal(speechRequest{
		Text:          text,
		ModelID:       e.modelID,
		VoiceSettings: voiceSettings{Stability: e.stability, SimilarityBoost: e.similarity},
	})
	if err != nil {
		return nil, fmt.Errorf("リクエストの生成に失敗しました: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s", e.baseURL, url.PathEscape(e.voiceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("リクエストの生成に失敗しました: %w", err)
	}
	req.Header.Set("Accept", AudioMIMEType)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", e.apiKey)

	slog.DebugContext(ctx, "ElevenLabs に読み上げを依頼します", "voice_id", e.voiceID, "chars", len(text))
	// DoRequest はバックオフ付きで再試行するため、Do と HandleResponse で 1 回だけ送ります
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("音声合成リクエストに失敗しました: %w", err)
	}
	data, err := httpkit.HandleResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("ElevenLabs API エラー: %s", errorDetail(err))
	}
	return data, nil
}

// errorDetail は 4xx 応答の detail.message を取り出し、無ければ元のエラー文を返します。
func errorDetail(err error) string {
	var httpErr *httpkit.NonRetryableHTTPError
	if errors.As(err, &httpErr) {
		var apiErr apiError
		if json.Unmarshal(httpErr.Body, &apiErr) == nil && apiErr.Detail.Message != "" {
			return fmt.Sprintf("%s (status: %d)", apiErr.Detail.Message, httpErr.StatusCode)
		}
	}
	return err.Error()
}
