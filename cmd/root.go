package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/shouni/go-storybook-kit/internal/config"
	"github.com/shouni/go-storybook-kit/pkg/domain"

	"github.com/joho/godotenv"
	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"
)

// opts は各サブコマンドで共有する実行時パラメータなのだ。
var opts config.GenerateOptions

// addAppFlags は、すべてのサブコマンドに効くグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.AIModel, "model", "", "スタイルと本文の生成に使う Gemini モデル名なのだ（空なら環境変数か既定値）。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", "", "1ページ目の画像生成に使うモデル名なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.EditModel, "edit-model", "", "前ページ画像の編集に使うモデル名なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.Timeout, "http-timeout", config.DefaultHTTPTimeout, "AI リクエストのタイムアウトなのだ。")
}

// preRunAppE は、コマンド実行前に .env の読み込みと必須チェックを行うのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	// .env が無いのは普通のことなので、それ以外の失敗だけ知らせるのだ
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn(".env の読み込みに失敗したのだ", "error", err)
	}

	// Gemini APIを利用するため、APIキーの存在チェックは欠かせないのだ！
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("%w: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ", domain.ErrConfiguration)
	}
	return nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	clibase.Execute(
		"storybook",
		addAppFlags,
		preRunAppE,
		generateCmd,
		serveCmd,
	)
}
