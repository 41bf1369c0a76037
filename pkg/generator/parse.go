package generator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shouni/go-storybook-kit/pkg/domain"
)

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

// seedDraft はシード画像の戦略で返される構造化レスポンスです。
type seedDraft struct {
	StoryText   string
	ImagePrompt string
}

// seedDraftJSON は必須フィールドの有無を判別するための受け口です。
type seedDraftJSON struct {
	StoryText   *string `json:"storyText"`
	ImagePrompt *string `json:"imagePrompt"`
}

// parseSeedDraft はモデルの応答から JSON を取り出して seedDraft に変換します。
// コードブロックで囲まれた応答や前後に文章が付いた応答も受け付けます。
// 必須フィールドが無い応答は ErrMalformedResponse、空白だけの storyText は ErrEmptyText になります。
func parseSeedDraft(raw string) (seedDraft, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return seedDraft{}, fmt.Errorf("%w: 応答が空です", domain.ErrMalformedResponse)
	}

	var rawJSON string
	matches := jsonBlockRegex.FindStringSubmatch(raw)
	if len(matches) > 1 {
		rawJSON = matches[1]
	} else {
		firstBracket := strings.Index(raw, "{")
		lastBracket := strings.LastIndex(raw, "}")
		if firstBracket != -1 && lastBracket > firstBracket {
			rawJSON = raw[firstBracket : lastBracket+1]
		} else {
			rawJSON = raw
		}
	}

	var wire seedDraftJSON
	if err := json.Unmarshal([]byte(rawJSON), &wire); err != nil {
		return seedDraft{}, fmt.Errorf("%w: JSONの解析に失敗しました (応答抜粋: %q): %w", domain.ErrMalformedResponse, truncateString(raw, 200), err)
	}
	if wire.StoryText == nil {
		return seedDraft{}, fmt.Errorf("%w: storyText がありません", domain.ErrMalformedResponse)
	}
	if wire.ImagePrompt == nil {
		return seedDraft{}, fmt.Errorf("%w: imagePrompt がありません", domain.ErrMalformedResponse)
	}

	draft := seedDraft{
		StoryText:   strings.TrimSpace(*wire.StoryText),
		ImagePrompt: strings.TrimSpace(*wire.ImagePrompt),
	}
	if draft.StoryText == "" {
		return seedDraft{}, fmt.Errorf("%w: storyText が空です", domain.ErrEmptyText)
	}
	if draft.ImagePrompt == "" {
		return seedDraft{}, fmt.Errorf("%w: imagePrompt が空です", domain.ErrMalformedResponse)
	}
	return draft, nil
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
