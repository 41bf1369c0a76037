package narration

import (
	"context"
	"fmt"

	"github.com/shouni/go-storybook-kit/pkg/domain"

	"golang.org/x/sync/errgroup"
)

// NarrateStory は全ページの本文を並行して読み上げ、ページ順の音声を返します。
// 1 ページでも失敗した場合は全体を失敗として扱います。物語は変更されません。
func NarrateStory(ctx context.Context, n Narrator, story *domain.Story, parallels int) ([][]byte, error) {
	if story.Len() == 0 {
		return nil, domain.ErrEmptyHistory
	}
	if parallels < 1 {
		parallels = 1
	}

	audio := make([][]byte, story.Len())
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(parallels)
	for i, page := range story.Pages {
		eg.Go(func() error {
			data, err := n.Narrate(egCtx, page.Text)
			if err != nil {
				return fmt.Errorf("ページ %d の読み上げに失敗しました: %w", i+1, err)
			}
			audio[i] = data
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return audio, nil
}
