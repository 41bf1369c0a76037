package config

import (
	"time"
)

// デフォルト値の定義なのだ
const (
	DefaultOutputDir   = "output"
	DefaultFormats     = "html,pdf,json,images"
	DefaultHTTPTimeout = 120 * time.Second
)

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// 物語の入力
	Prompt        string   // --prompt
	SeedImage     string   // --seed-image
	Continuations []string // --continue（指定順に続きのページを生成するのだ）

	// 出力設定
	OutputDir string   // --output-dir
	Title     string   // --title
	Formats   []string // --format
	Narrate   bool     // --narrate

	// AI挙動設定
	AIModel    string        // --model: テキスト生成用の Gemini モデル
	ImageModel string        // --image-model: シードページの画像生成用モデル
	EditModel  string        // --edit-model: ページ拡張用の画像編集モデル
	Timeout    time.Duration // --http-timeout

	// サーバー設定
	Addr string // --addr
}
