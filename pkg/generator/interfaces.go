package generator

import (
	"context"

	"github.com/shouni/go-storybook-kit/pkg/domain"
)

// StyleAnchorDeriver は、利用者のアイデアから物語全体のスタイルアンカーを導出します。
type StyleAnchorDeriver interface {
	Derive(ctx context.Context, idea string) (domain.StyleAnchor, error)
}

// SeedPageGenerator は、物語の 1 ページ目を生成します。
// seed が nil の場合はテキストのみの戦略、そうでなければシード画像の戦略を使います。
type SeedPageGenerator interface {
	Generate(ctx context.Context, prompt string, seed *domain.Image, anchor domain.StyleAnchor) (domain.Page, error)
}

// PageExtender は、これまでのページと指示から次の 1 ページを生成します。
type PageExtender interface {
	Extend(ctx context.Context, story *domain.Story, instruction string) (domain.Page, error)
}
