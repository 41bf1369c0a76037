package generator

import (
	"fmt"
	"strings"

	"github.com/shouni/go-storybook-kit/pkg/backend"
	"github.com/shouni/go-storybook-kit/pkg/domain"
)

// ScanPage はパート列を 1 度だけ走査し、本文と挿絵を取り出します。
// パートの順序には依存せず、複数ある場合は最後に現れたものを採用します。
func ScanPage(parts []backend.Part) (domain.Page, error) {
	var page domain.Page
	for _, p := range parts {
		switch p.Kind {
		case backend.PartText:
			if text := strings.TrimSpace(p.Text); text != "" {
				page.Text = text
			}
		case backend.PartImage:
			if p.Image.Valid() {
				page.Image = p.Image
			}
		}
	}

	switch {
	case page.Text == "" && !page.Image.Valid():
		return domain.Page{}, fmt.Errorf("%w: 本文と画像の両方が欠けています", domain.ErrIncompleteGeneration)
	case page.Text == "":
		return domain.Page{}, fmt.Errorf("%w: 本文が欠けています", domain.ErrIncompleteGeneration)
	case !page.Image.Valid():
		return domain.Page{}, fmt.Errorf("%w: 画像が欠けています", domain.ErrIncompleteGeneration)
	}
	if page.Image.MIMEType == "" {
		page.Image.MIMEType = domain.DefaultImageMIMEType
	}
	return page, nil
}
