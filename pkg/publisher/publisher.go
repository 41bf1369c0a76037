package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/shouni/go-storybook-kit/pkg/asset"
	"github.com/shouni/go-storybook-kit/pkg/config"
	"github.com/shouni/go-storybook-kit/pkg/domain"
	"github.com/shouni/go-storybook-kit/pkg/narration"
	"github.com/shouni/go-storybook-kit/pkg/storage"

	"golang.org/x/sync/errgroup"
)

const defaultTitle = config.DefaultStoryTitle

// Format は出力形式です。
type Format string

const (
	FormatHTML   Format = "html"
	FormatPDF    Format = "pdf"
	FormatJSON   Format = "json"
	FormatImages Format = "images"
)

// AllFormats は対応しているすべての出力形式です。
var AllFormats = []Format{FormatHTML, FormatPDF, FormatJSON, FormatImages}

// ParseFormats は "html,pdf" のような指定を Format の並びに変換します。
func ParseFormats(values []string) ([]Format, error) {
	var formats []Format
	for _, v := range values {
		for _, s := range strings.Split(v, ",") {
			f := Format(strings.ToLower(strings.TrimSpace(s)))
			if f == "" {
				continue
			}
			if !slices.Contains(AllFormats, f) {
				return nil, fmt.Errorf("不明な出力形式です: '%s'", s)
			}
			if !slices.Contains(formats, f) {
				formats = append(formats, f)
			}
		}
	}
	return formats, nil
}

// Options はパブリッシュ動作を制御する設定項目です。
type Options struct {
	OutputDir string
	Title     string
	Formats   []Format
	// Audio はページ順の読み上げ音声です。空の場合は書き出しません。
	Audio [][]byte
}

// PublishResult はパブリッシュ処理の結果として生成されたファイルの情報を保持します。
type PublishResult struct {
	JSONPath   string
	HTMLPath   string
	PDFPath    string
	ImagePaths []string
	AudioPaths []string
}

// StoryPublisher は物語を各形式に変換し、Writer を通じて書き出します。
// 書き出しに失敗しても物語は変更されません。
type StoryPublisher struct {
	writer storage.Writer
}

// NewStoryPublisher は StoryPublisher を生成します。
func NewStoryPublisher(writer storage.Writer) *StoryPublisher {
	return &StoryPublisher{writer: writer}
}

// Publish は指定された形式で物語を書き出し、生成されたファイル情報を返却します。
func (p *StoryPublisher) Publish(ctx context.Context, story *domain.Story, opts Options) (PublishResult, error) {
	result := PublishResult{}
	if err := story.Validate(); err != nil {
		return result, fmt.Errorf("書き出し対象の物語が不正です: %w", err)
	}
	formats := opts.Formats
	if len(formats) == 0 {
		formats = AllFormats
	}

	if slices.Contains(formats, FormatJSON) {
		path, err := p.writeJSON(ctx, story, opts.OutputDir)
		if err != nil {
			return result, err
		}
		result.JSONPath = path
	}

	if slices.Contains(formats, FormatHTML) {
		var buf bytes.Buffer
		if err := RenderHTML(&buf, opts.Title, story); err != nil {
			return result, err
		}
		path, err := p.write(ctx, opts.OutputDir, asset.DefaultStoryHTML, &buf, "text/html; charset=utf-8")
		if err != nil {
			return result, err
		}
		result.HTMLPath = path
	}

	if slices.Contains(formats, FormatPDF) {
		var buf bytes.Buffer
		if err := RenderPDF(&buf, opts.Title, story); err != nil {
			return result, err
		}
		path, err := p.write(ctx, opts.OutputDir, asset.DefaultStoryPDF, &buf, "application/pdf")
		if err != nil {
			return result, err
		}
		result.PDFPath = path
	}

	if slices.Contains(formats, FormatImages) {
		paths, err := p.saveImages(ctx, story, opts.OutputDir)
		if err != nil {
			return result, fmt.Errorf("画像の書き込みに失敗しました: %w", err)
		}
		result.ImagePaths = paths
	}

	if len(opts.Audio) > 0 {
		paths, err := p.saveAudio(ctx, opts.Audio, opts.OutputDir)
		if err != nil {
			return result, fmt.Errorf("音声の書き込みに失敗しました: %w", err)
		}
		result.AudioPaths = paths
	}

	slog.InfoContext(ctx, "物語を書き出しました",
		"output_dir", opts.OutputDir,
		"pages", story.Len(),
		"html", result.HTMLPath,
		"pdf", result.PDFPath)
	return result, nil
}

func (p *StoryPublisher) writeJSON(ctx context.Context, story *domain.Story, dir string) (string, error) {
	data, err := json.MarshalIndent(story, "", "  ")
	if err != nil {
		return "", fmt.Errorf("JSONの生成に失敗しました: %w", err)
	}
	return p.write(ctx, dir, asset.DefaultStoryJSON, bytes.NewReader(data), "application/json")
}

func (p *StoryPublisher) write(ctx context.Context, dir, name string, r io.Reader, contentType string) (string, error) {
	path, err := asset.ResolveOutputPath(dir, name)
	if err != nil {
		return "", fmt.Errorf("出力パスの解決に失敗しました: %w", err)
	}
	if err := p.writer.Write(ctx, path, r, contentType); err != nil {
		return "", fmt.Errorf("%s の書き込みに失敗しました: %w", name, err)
	}
	return path, nil
}

// saveImages は各ページの画像を並行して書き出し、ページ順のパスを返します。
func (p *StoryPublisher) saveImages(ctx context.Context, story *domain.Story, dir string) ([]string, error) {
	paths := make([]string, story.Len())
	eg, egCtx := errgroup.WithContext(ctx)
	for i, page := range story.Pages {
		eg.Go(func() error {
			path, err := asset.PageImagePath(dir, i+1, page.Image.MIMEType)
			if err != nil {
				return fmt.Errorf("出力パスの解決に失敗しました: %w", err)
			}
			if err := p.writer.Write(egCtx, path, bytes.NewReader(page.Image.Data), page.Image.MIMEType); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func (p *StoryPublisher) saveAudio(ctx context.Context, audio [][]byte, dir string) ([]string, error) {
	var paths []string
	for i, data := range audio {
		if len(data) == 0 {
			continue
		}
		path, err := asset.NarrationPath(dir, i+1)
		if err != nil {
			return nil, fmt.Errorf("出力パスの解決に失敗しました: %w", err)
		}
		if err := p.writer.Write(ctx, path, bytes.NewReader(data), narration.AudioMIMEType); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
