package prompts

import (
	"strings"
	"testing"
)

func TestTextPromptBuilder_Build(t *testing.T) {
	b, err := NewTextPromptBuilder()
	if err != nil {
		t.Fatalf("NewTextPromptBuilder に失敗しました: %v", err)
	}

	t.Run("スタイルプロンプトにアイデアが埋め込まれる", func(t *testing.T) {
		got, err := b.Build(ModeStyle, TemplateData{Idea: "a shy dragon"})
		if err != nil {
			t.Fatalf("Build に失敗しました: %v", err)
		}
		if !strings.Contains(got, `"a shy dragon"`) {
			t.Errorf("アイデアが含まれていません: %s", got)
		}
	})

	t.Run("次ページのプロンプトは番号付きの要約と 2 つの手順を含む", func(t *testing.T) {
		got, err := b.Build(ModeNextPage, TemplateData{
			StyleAnchor: ", soft watercolor",
			Recap:       NewRecap([]string{"First.", " Second. "}),
			Instruction: "A storm arrives.",
		})
		if err != nil {
			t.Fatalf("Build に失敗しました: %v", err)
		}
		for _, want := range []string{
			`The art style is: ", soft watercolor".`,
			"Page 1: First.\n\nPage 2: Second.",
			`user instruction: "A storm arrives."`,
			"1. Write a new story paragraph",
			"2. Edit the input image",
			"You MUST output both the text and the new image.",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("%q が含まれていません:\n%s", want, got)
			}
		}
		if strings.Contains(got, "Page 3:") {
			t.Errorf("存在しないページが要約に含まれています:\n%s", got)
		}
	})

	t.Run("不明なモードはエラー", func(t *testing.T) {
		if _, err := b.Build("unknown", TemplateData{}); err == nil {
			t.Error("エラーを期待しました")
		}
	})
}

func TestComposeImagePrompt(t *testing.T) {
	tests := []struct {
		name   string
		scene  string
		anchor string
		want   string
	}{
		{"区切り文字で始まるアンカーはそのまま連結", "A squirrel in a forest", ", in watercolor style.", "A squirrel in a forest, in watercolor style."},
		{"利用者の場面の句読点は変えない", "The knight waits...", "in watercolor", "The knight waits..., in watercolor"},
		{"区切り文字が無ければカンマで繋ぐ", "A squirrel", "watercolor style", "A squirrel, watercolor style"},
		{"アンカーが空なら場面のみ", "A squirrel", "  ", "A squirrel"},
		{"場面が空ならアンカーのみ", "", ", watercolor style", "watercolor style"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComposeImagePrompt(tt.scene, tt.anchor); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTrimSentenceEnd(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want string
	}{
		{"末尾のピリオドを 1 つ取り除く", "A squirrel in a forest. ", "A squirrel in a forest"},
		{"省略記号は残す", "The knight waits...", "The knight waits..."},
		{"ピリオドが無ければそのまま", "A squirrel", "A squirrel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimSentenceEnd(tt.desc); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
