package cmd

import (
	"testing"

	appcfg "github.com/shouni/go-storybook-kit/pkg/config"
)

func TestGenerateFlags(t *testing.T) {
	t.Run("タイトルの既定値は書き出しと同じ値を使う", func(t *testing.T) {
		f := generateCmd.Flags().Lookup("title")
		if f == nil {
			t.Fatal("--title フラグがありません")
		}
		if f.DefValue != appcfg.DefaultStoryTitle {
			t.Errorf("DefValue = %q, want %q", f.DefValue, appcfg.DefaultStoryTitle)
		}
	})
}
