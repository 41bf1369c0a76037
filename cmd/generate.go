package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-storybook-kit/internal/config"
	"github.com/shouni/go-storybook-kit/internal/pipeline"
	appcfg "github.com/shouni/go-storybook-kit/pkg/config"

	"github.com/spf13/cobra"
)

// generateCmd は、アイデアから絵本を生成して書き出すのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "アイデアから挿絵付きの物語を生成しますなのだ。",
	Long: `スタイルを決めてから最初の3ページを生成し、--continue の指示ごとに続きを追加するのだ。
出力は JSON・HTML・PDF・ページ画像（必要なら読み上げ音声も）になるのだよ。`,
	Example: `  storybook generate -p "A fox finds a lantern" -c "The fox meets an owl." --format html,pdf
  storybook generate -p "Make this a bedtime story" -s photo.jpg --narrate`,
	RunE: generateCommand,
}

func init() {
	generateCmd.Flags().StringVarP(&opts.Prompt, "prompt", "p", "", "物語のアイデアなのだ（必須）。")
	generateCmd.Flags().StringVarP(&opts.SeedImage, "seed-image", "s", "", "1ページ目の元にする画像ファイルなのだ。")
	generateCmd.Flags().StringArrayVarP(&opts.Continuations, "continue", "c", nil, "続きのページへの指示なのだ。指定した回数だけページが増えるのだ。")
	generateCmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", config.DefaultOutputDir, "成果物を保存するディレクトリなのだ。")
	generateCmd.Flags().StringVar(&opts.Title, "title", appcfg.DefaultStoryTitle, "HTML・PDF のタイトルなのだ。")
	generateCmd.Flags().StringSliceVar(&opts.Formats, "format", []string{config.DefaultFormats}, "出力形式（html,pdf,json,images）なのだ。")
	generateCmd.Flags().BoolVar(&opts.Narrate, "narrate", false, "ElevenLabs で各ページの読み上げ音声も作るのだ。")
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if strings.TrimSpace(opts.Prompt) == "" {
		return fmt.Errorf("物語のアイデア（--prompt）を指定してほしいのだ")
	}

	slog.Info("絵本生成パイプラインを起動するのだ！",
		"seed_image", opts.SeedImage,
		"continuations", len(opts.Continuations),
		"output", opts.OutputDir)

	res, err := pipeline.Execute(ctx, opts)
	if err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("すべての生成工程が完了したのだ！",
		"json", res.JSONPath,
		"html", res.HTMLPath,
		"pdf", res.PDFPath,
		"images", len(res.ImagePaths),
		"audio", len(res.AudioPaths))
	return nil
}
