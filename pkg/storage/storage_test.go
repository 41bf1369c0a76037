package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalWriter_Write(t *testing.T) {
	t.Run("親ディレクトリを作成して書き込む", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "images", "page_1.jpg")
		if err := NewLocalWriter().Write(context.Background(), path, strings.NewReader("data"), "image/jpeg"); err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		got, err := os.ReadFile(path)
		if err != nil || string(got) != "data" {
			t.Errorf("書き込み内容が不正です: %q, %v", got, err)
		}
	})
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		raw      string
		endpoint string
		secure   bool
	}{
		{"localhost:9000", "localhost:9000", false},
		{"http://minio:9000", "minio:9000", false},
		{"https://s3.example.com", "s3.example.com", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			endpoint, secure, err := parseEndpoint(tt.raw)
			if err != nil {
				t.Fatalf("予期しないエラー: %v", err)
			}
			if endpoint != tt.endpoint || secure != tt.secure {
				t.Errorf("got (%s, %v), want (%s, %v)", endpoint, secure, tt.endpoint, tt.secure)
			}
		})
	}
}

func TestObjectName(t *testing.T) {
	t.Run("先頭のスラッシュと ./ を取り除く", func(t *testing.T) {
		if got := ObjectName("./output/story.html"); got != "output/story.html" {
			t.Errorf("got %q", got)
		}
		if got := ObjectName("/stories/abc/page_1.jpg"); got != "stories/abc/page_1.jpg" {
			t.Errorf("got %q", got)
		}
	})
}
