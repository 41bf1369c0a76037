package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DefaultImageMIMEType はモデルが MIME タイプを返さなかった場合に用いる画像形式です。
const DefaultImageMIMEType = "image/jpeg"

// StyleAnchor は物語全体で共有される、キャラクターと画風を定める短い記述です。
// 画像生成プロンプトの末尾に付与され、ページ間の見た目の一貫性を保ちます。
type StyleAnchor string

// String は StyleAnchor を文字列として返します。
func (s StyleAnchor) String() string {
	return string(s)
}

// Image は生成または入力された挿絵のバイト列と MIME タイプです。
// JSON では data が base64 文字列として表現されます。
type Image struct {
	Data     []byte `json:"data"`
	MIMEType string `json:"mime_type"`
}

// Valid は画像データが存在するかどうかを返します。
func (img Image) Valid() bool {
	return len(img.Data) > 0
}

// Base64 は画像データを標準 base64 でエンコードした文字列を返します。
func (img Image) Base64() string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

// DataURI は HTML に直接埋め込める data URI を返します。
func (img Image) DataURI() string {
	mime := img.MIMEType
	if mime == "" {
		mime = DefaultImageMIMEType
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, img.Base64())
}

// Page は物語の 1 ページ分（本文と挿絵）です。
type Page struct {
	Text  string `json:"text"`
	Image Image  `json:"image"`
}

// Validate は本文と挿絵の両方が揃っていることを確認します。
func (p Page) Validate() error {
	if strings.TrimSpace(p.Text) == "" {
		return ErrEmptyText
	}
	if !p.Image.Valid() {
		return ErrImageGeneration
	}
	return nil
}

// Story はスタイルアンカーと順序付きページ列からなる物語です。
// ページは追記のみで、既存ページが書き換えられることはありません。
type Story struct {
	StyleAnchor StyleAnchor `json:"style_anchor"`
	Pages       []Page      `json:"pages"`
}

// Len はページ数を返します。
func (s *Story) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Pages)
}

// Last は最後のページを返します。ページが無い場合は false を返します。
func (s *Story) Last() (Page, bool) {
	if s.Len() == 0 {
		return Page{}, false
	}
	return s.Pages[len(s.Pages)-1], true
}

// Append は page を末尾に加えた新しい Story を返します。レシーバは変更されません。
func (s *Story) Append(page Page) *Story {
	next := &Story{StyleAnchor: s.StyleAnchor}
	next.Pages = make([]Page, 0, len(s.Pages)+1)
	next.Pages = append(next.Pages, s.Pages...)
	next.Pages = append(next.Pages, page)
	return next
}

// Clone は画像バイト列まで含めて複製した Story を返します。
func (s *Story) Clone() *Story {
	if s == nil {
		return nil
	}
	out := &Story{StyleAnchor: s.StyleAnchor, Pages: make([]Page, len(s.Pages))}
	for i, p := range s.Pages {
		data := make([]byte, len(p.Image.Data))
		copy(data, p.Image.Data)
		out.Pages[i] = Page{Text: p.Text, Image: Image{Data: data, MIMEType: p.Image.MIMEType}}
	}
	return out
}

// Validate は物語が公開可能な状態（アンカーあり、1 ページ以上、全ページ有効）かを確認します。
func (s *Story) Validate() error {
	if s == nil || strings.TrimSpace(string(s.StyleAnchor)) == "" {
		return ErrEmptyStyle
	}
	if len(s.Pages) == 0 {
		return ErrEmptyHistory
	}
	for i, p := range s.Pages {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("ページ %d が不正です: %w", i+1, err)
		}
	}
	return nil
}
