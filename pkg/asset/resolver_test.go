package asset

import (
	"os"
	"path/filepath"
	"testing"
)

// pngHeader は PNG シグネチャを含む最小限のバイト列です。
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestFileRegex(t *testing.T) {
	t.Run("ページ画像と読み上げ音声のファイル名に一致する", func(t *testing.T) {
		for _, name := range []string{"page_1.jpg", "page_12.png", "page_3.webp"} {
			if !PageFileRegex.MatchString(name) {
				t.Errorf("%s に一致しません", name)
			}
		}
		if PageFileRegex.MatchString("page.jpg") || PageFileRegex.MatchString("page_1.mp3") {
			t.Error("ページ画像以外に一致しています")
		}
		if !NarrationFileRegex.MatchString("page_2.mp3") {
			t.Error("page_2.mp3 に一致しません")
		}
	})
}

func TestIndexedPaths(t *testing.T) {
	t.Run("ページ画像と音声の連番パスを組み立てる", func(t *testing.T) {
		got, err := PageImagePath("out", 2, "image/png")
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if want := filepath.Join("out", DefaultImageDir, "page_2.png"); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
		got, err = NarrationPath("out", 3)
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if want := filepath.Join("out", DefaultAudioDir, "page_3.mp3"); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("リモートの出力先は URL として結合する", func(t *testing.T) {
		got, err := PageImagePath("s3://bucket/story", 1, "image/jpeg")
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if got != "s3://bucket/story/images/page_1.jpg" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("1 未満のページ番号はエラー", func(t *testing.T) {
		if _, err := PageImagePath("out", 0, "image/png"); err == nil {
			t.Error("エラーを期待しました")
		}
	})

	t.Run("規則に合わない名前はエラー", func(t *testing.T) {
		if _, err := indexedAssetPath("out", DefaultAudioDir, "voice.wav", 1, NarrationFileRegex); err == nil {
			t.Error("エラーを期待しました")
		}
	})
}

func TestExtensionFor(t *testing.T) {
	tests := map[string]string{"image/png": ".png", "image/jpeg": ".jpg", "IMAGE/WEBP": ".webp", "": ".jpg"}
	for in, want := range tests {
		if got := ExtensionFor(in); got != want {
			t.Errorf("ExtensionFor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()

	t.Run("拡張子が無くても内容から判定する", func(t *testing.T) {
		path := filepath.Join(dir, "seed")
		if err := os.WriteFile(path, pngHeader, 0o644); err != nil {
			t.Fatal(err)
		}
		img, err := LoadImage(path)
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if img.MIMEType != "image/png" {
			t.Errorf("MIMEType = %q", img.MIMEType)
		}
	})

	t.Run("画像以外はエラー", func(t *testing.T) {
		path := filepath.Join(dir, "note.txt")
		if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadImage(path); err == nil {
			t.Error("エラーを期待しました")
		}
	})
}
