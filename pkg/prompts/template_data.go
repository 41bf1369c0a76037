package prompts

import (
	_ "embed"
)

const (
	ModeStyle           = "style"
	ModeSeedImageSystem = "seed_image_system"
	ModeSeedImageUser   = "seed_image_user"
	ModeSeedTextSystem  = "seed_text_system"
	ModeSeedTextUser    = "seed_text_user"
	ModeNextPage        = "next_page"
)

// RecapEntry は「これまでの物語」に並べる 1 ページ分の要約です。
type RecapEntry struct {
	Number int
	Text   string
}

// TemplateData はプロンプトテンプレートに渡すデータ構造です。
type TemplateData struct {
	Idea        string
	StyleAnchor string
	Recap       []RecapEntry
	Instruction string
}

var (
	//go:embed templates/style.md
	StylePrompt string
	//go:embed templates/seed_image_system.md
	SeedImageSystemPrompt string
	//go:embed templates/seed_image_user.md
	SeedImageUserPrompt string
	//go:embed templates/seed_text_system.md
	SeedTextSystemPrompt string
	//go:embed templates/seed_text_user.md
	SeedTextUserPrompt string
	//go:embed templates/next_page.md
	NextPagePrompt string
)

// allTemplates はモードとテンプレート文字列を紐づけるマップです。
var allTemplates = map[string]string{
	ModeStyle:           StylePrompt,
	ModeSeedImageSystem: SeedImageSystemPrompt,
	ModeSeedImageUser:   SeedImageUserPrompt,
	ModeSeedTextSystem:  SeedTextSystemPrompt,
	ModeSeedTextUser:    SeedTextUserPrompt,
	ModeNextPage:        NextPagePrompt,
}
