package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-storybook-kit/pkg/domain"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義
const (
	DefaultGeminiModel      = "gemini-2.5-flash"
	DefaultImageModel       = "imagen-4.0-generate-001"
	DefaultEditModel        = "gemini-2.5-flash-image-preview"
	DefaultImageMIMEType    = "image/jpeg"
	DefaultAspectRatio      = "1:1"
	DefaultStyleTemperature = 0.7
	DefaultStoryTemperature = 0.8
	DefaultEditTemperature  = 0.7
	DefaultRateInterval     = 2 * time.Second
	DefaultRateBurst        = 1
	DefaultRequestTimeout   = 120 * time.Second

	// DefaultMiddleInstruction は 2 ページ目（物語の中盤）を作るための固定指示です。
	DefaultMiddleInstruction = "Continue the story with a heartwarming middle part. Introduce a gentle, positive challenge or a moment of discovery."
	// DefaultEndingInstruction は 3 ページ目（物語の結末）を作るための固定指示です。
	DefaultEndingInstruction = "Conclude this short story with a sweet and happy ending, resolving any challenges and leaving a warm feeling."

	DefaultElevenLabsBaseURL  = "https://api.elevenlabs.io"
	DefaultElevenLabsVoiceID  = "21m00Tcm4TlvDq8ikWAM"
	DefaultElevenLabsModelID  = "eleven_multilingual_v2"
	DefaultVoiceStability     = 0.5
	DefaultVoiceSimilarity    = 0.75
	DefaultNarrationParallels = 3

	DefaultServerAddr = ":8080"
	DefaultSessionTTL = 2 * time.Hour
	DefaultStoryTitle = "My AI Story"
)

// Config は Go Storybook Kit の各 Runner を動作させるための基本設定です。
type Config struct {
	// --- AI Model Settings ---
	GeminiModel string // スタイル・本文生成用
	ImageModel  string // シードページの画像生成用 (Imagen)
	EditModel   string // 前ページ画像の編集によるページ拡張用

	// --- Google AI (Gemini API) Settings ---
	GeminiAPIKey string

	// --- Generation Settings ---
	StyleTemperature  float32
	StoryTemperature  float32
	EditTemperature   float32
	ImageMIMEType     string
	AspectRatio       string
	MiddleInstruction string
	EndingInstruction string
	RateInterval      time.Duration
	RateBurst         int

	// --- Timeout ---
	RequestTimeout time.Duration

	// --- Narration (ElevenLabs) ---
	ElevenLabsAPIKey   string
	ElevenLabsBaseURL  string
	ElevenLabsVoiceID  string
	ElevenLabsModelID  string
	VoiceStability     float64
	VoiceSimilarity    float64
	NarrationParallels int

	// --- Storage (MinIO) ---
	MinioEndpoint  string // 空の場合はローカルファイルシステムへ出力します
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string

	// --- Server ---
	ServerAddr string
	SessionTTL time.Duration
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		GeminiModel:        DefaultGeminiModel,
		ImageModel:         DefaultImageModel,
		EditModel:          DefaultEditModel,
		StyleTemperature:   DefaultStyleTemperature,
		StoryTemperature:   DefaultStoryTemperature,
		EditTemperature:    DefaultEditTemperature,
		ImageMIMEType:      DefaultImageMIMEType,
		AspectRatio:        DefaultAspectRatio,
		MiddleInstruction:  DefaultMiddleInstruction,
		EndingInstruction:  DefaultEndingInstruction,
		RateInterval:       DefaultRateInterval,
		RateBurst:          DefaultRateBurst,
		RequestTimeout:     DefaultRequestTimeout,
		ElevenLabsBaseURL:  DefaultElevenLabsBaseURL,
		ElevenLabsVoiceID:  DefaultElevenLabsVoiceID,
		ElevenLabsModelID:  DefaultElevenLabsModelID,
		VoiceStability:     DefaultVoiceStability,
		VoiceSimilarity:    DefaultVoiceSimilarity,
		NarrationParallels: DefaultNarrationParallels,
		ServerAddr:         DefaultServerAddr,
		SessionTTL:         DefaultSessionTTL,
	}
}

// LoadConfig は DefaultConfig を基に環境変数の値を上書きした設定を返します。
func LoadConfig() Config {
	cfg := DefaultConfig()

	cfg.GeminiAPIKey = envutil.GetEnv("GEMINI_API_KEY", "")
	cfg.GeminiModel = envutil.GetEnv("GEMINI_MODEL", cfg.GeminiModel)
	cfg.ImageModel = envutil.GetEnv("IMAGE_MODEL", cfg.ImageModel)
	cfg.EditModel = envutil.GetEnv("EDIT_MODEL", cfg.EditModel)
	cfg.MiddleInstruction = envutil.GetEnv("STORY_MIDDLE_INSTRUCTION", cfg.MiddleInstruction)
	cfg.EndingInstruction = envutil.GetEnv("STORY_ENDING_INSTRUCTION", cfg.EndingInstruction)
	cfg.RateInterval = durationEnv("RATE_INTERVAL", cfg.RateInterval)
	cfg.RequestTimeout = durationEnv("REQUEST_TIMEOUT", cfg.RequestTimeout)

	cfg.ElevenLabsAPIKey = envutil.GetEnv("ELEVENLABS_API_KEY", "")
	cfg.ElevenLabsBaseURL = envutil.GetEnv("ELEVENLABS_BASE_URL", cfg.ElevenLabsBaseURL)
	cfg.ElevenLabsVoiceID = envutil.GetEnv("ELEVENLABS_VOICE_ID", cfg.ElevenLabsVoiceID)
	cfg.ElevenLabsModelID = envutil.GetEnv("ELEVENLABS_MODEL_ID", cfg.ElevenLabsModelID)
	cfg.NarrationParallels = intEnv("NARRATION_PARALLELS", cfg.NarrationParallels)

	cfg.MinioEndpoint = envutil.GetEnv("MINIO_ENDPOINT", "")
	cfg.MinioAccessKey = envutil.GetEnv("MINIO_ACCESS_KEY", "")
	cfg.MinioSecretKey = envutil.GetEnv("MINIO_SECRET_KEY", "")
	cfg.MinioBucket = envutil.GetEnv("MINIO_BUCKET", "storybook")

	cfg.ServerAddr = envutil.GetEnv("SERVER_ADDR", cfg.ServerAddr)
	cfg.SessionTTL = durationEnv("SESSION_TTL", cfg.SessionTTL)

	return cfg
}

// Validate はネットワーク呼び出しの前に必須設定が揃っているかを確認します。
func (c Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY が設定されていません", domain.ErrConfiguration)
	}
	if c.MiddleInstruction == "" || c.EndingInstruction == "" {
		return fmt.Errorf("%w: 中盤・結末の指示は必須です", domain.ErrConfiguration)
	}
	return nil
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("環境変数の期間指定を解釈できないため既定値を使用します", "key", key, "value", raw, "error", err)
		return fallback
	}
	return d
}

func intEnv(key string, fallback int) int {
	n := envutil.GetEnvAsInt(key, fallback)
	if n <= 0 {
		slog.Warn("環境変数の数値指定が正でないため既定値を使用します", "key", key, "value", n)
		return fallback
	}
	return n
}
