package publisher

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/shouni/go-storybook-kit/pkg/domain"
)

//go:embed templates/story.html
var storyHTML string

var storyTemplate = template.Must(template.New("story").Parse(storyHTML))

type htmlPage struct {
	Number   int
	Text     template.HTML
	ImageSrc template.URL
}

type htmlDocument struct {
	Title string
	Pages []htmlPage
}

// RenderHTML は画像を data URI として埋め込んだ単一の HTML 文書を書き出します。
// 本文の改行は <br> に変換されます。
func RenderHTML(w io.Writer, title string, story *domain.Story) error {
	if story.Len() == 0 {
		return domain.ErrEmptyHistory
	}
	if strings.TrimSpace(title) == "" {
		title = defaultTitle
	}

	doc := htmlDocument{Title: title, Pages: make([]htmlPage, len(story.Pages))}
	for i, p := range story.Pages {
		doc.Pages[i] = htmlPage{
			Number:   i + 1,
			Text:     textToHTML(p.Text),
			ImageSrc: template.URL(p.Image.DataURI()),
		}
	}
	if err := storyTemplate.Execute(w, doc); err != nil {
		return fmt.Errorf("HTMLの生成に失敗しました: %w", err)
	}
	return nil
}

// textToHTML は本文をエスケープし、改行を <br> に置き換えます。
func textToHTML(text string) template.HTML {
	escaped := template.HTMLEscapeString(strings.TrimSpace(text))
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}
