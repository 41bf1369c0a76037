package publisher

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/shouni/go-storybook-kit/pkg/domain"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin     = 15.0
	pdfFontSize   = 14.0
	pdfLineHeight = 7.0
	pdfGap        = 8.0
)

// RenderPDF は 1 ページにつき挿絵 1 枚と本文を配置した A4 の PDF を書き出します。
// 挿絵はページ幅に合わせて縦横比を保ったまま拡大縮小し、本文はその下に両端揃えで配置します。
func RenderPDF(w io.Writer, title string, story *domain.Story) error {
	if story.Len() == 0 {
		return domain.ErrEmptyHistory
	}
	if strings.TrimSpace(title) == "" {
		title = defaultTitle
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator("go-storybook-kit", true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*pdfMargin
	maxImageH := pageH*0.6 - pdfMargin

	for i, page := range story.Pages {
		pdf.AddPage()

		imageType, err := pdfImageType(page.Image.MIMEType)
		if err != nil {
			return fmt.Errorf("ページ %d: %w", i+1, err)
		}
		name := fmt.Sprintf("page-%d", i+1)
		opts := fpdf.ImageOptions{ImageType: imageType, ReadDpi: false}
		info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(page.Image.Data))
		if !pdf.Ok() || info == nil {
			return fmt.Errorf("ページ %d の画像の読み込みに失敗しました: %w", i+1, pdf.Error())
		}

		imgW, imgH := fitImage(info.Width(), info.Height(), contentW, maxImageH)
		x := pdfMargin + (contentW-imgW)/2
		pdf.ImageOptions(name, x, pdfMargin, imgW, imgH, false, opts, 0, "")

		pdf.SetY(pdfMargin + imgH + pdfGap)
		pdf.SetFont("Times", "", pdfFontSize)
		pdf.MultiCell(contentW, pdfLineHeight, tr(strings.TrimSpace(page.Text)), "", "J", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("PDFの生成に失敗しました: %w", err)
	}
	return nil
}

// fitImage は縦横比を保ったまま maxW × maxH に収まる寸法を返します。
func fitImage(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return maxW, maxW
	}
	outW := maxW
	outH := h * maxW / w
	if outH > maxH {
		outH = maxH
		outW = w * maxH / h
	}
	return outW, outH
}

func pdfImageType(mimeType string) (string, error) {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg", "":
		return "JPG", nil
	case "image/png":
		return "PNG", nil
	case "image/gif":
		return "GIF", nil
	default:
		return "", fmt.Errorf("PDF に埋め込めない画像形式です: %s", mimeType)
	}
}
