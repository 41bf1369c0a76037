package backend

import (
	"strings"

	"github.com/shouni/go-storybook-kit/pkg/domain"

	"google.golang.org/genai"
)

// PartKind はマルチモーダルなパートの種類です。
type PartKind int

const (
	PartText PartKind = iota + 1
	PartImage
)

// String はログ出力用の名前を返します。
func (k PartKind) String() string {
	switch k {
	case PartText:
		return "text"
	case PartImage:
		return "image"
	default:
		return "unknown"
	}
}

// Part はテキストか画像のどちらか一方を保持するタグ付きのパートです。
type Part struct {
	Kind  PartKind
	Text  string
	Image domain.Image
}

// TextPart はテキストのパートを生成します。
func TextPart(text string) Part {
	return Part{Kind: PartText, Text: text}
}

// ImagePart は画像のパートを生成します。
func ImagePart(img domain.Image) Part {
	return Part{Kind: PartImage, Image: img}
}

// レスポンスのモダリティ指定です。
var (
	ModalityText  = string(genai.ModalityText)
	ModalityImage = string(genai.ModalityImage)
)

// ContentRequest はマルチモーダル生成 1 回分の入力です。
type ContentRequest struct {
	Model             string
	Parts             []Part
	SystemInstruction string
	// ResponseSchema が指定された場合、JSON での応答を要求します。
	ResponseSchema  *genai.Schema
	Modalities      []string
	Temperature     float32
	DisableThinking bool
}

// ContentResponse は先頭候補のパート列と、遮断理由などの付随情報です。
type ContentResponse struct {
	Parts        []Part
	BlockReason  string
	FinishReason string
}

// Empty は候補もパートも返らなかったかどうかを返します。
func (r *ContentResponse) Empty() bool {
	return r == nil || len(r.Parts) == 0
}

// Text はテキストパートを連結して返します。
func (r *ContentResponse) Text() string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Parts {
		if p.Kind == PartText {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// ImageRequest はテキストからの画像生成 1 回分の入力です。
type ImageRequest struct {
	Model       string
	Prompt      string
	Count       int
	MIMEType    string
	AspectRatio string
}
