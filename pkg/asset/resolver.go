package asset

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shouni/go-utils/urlpath"
)

const (
	// DefaultImageDir はページ画像を格納するデフォルトのディレクトリ名です。
	DefaultImageDir = "images"
	// DefaultAudioDir は読み上げ音声を格納するデフォルトのディレクトリ名です。
	DefaultAudioDir = "audio"
	// DefaultStoryJSON は物語のデフォルト JSON ファイル名です。
	DefaultStoryJSON = "story.json"
	// DefaultStoryHTML は物語のデフォルト HTML ファイル名です。
	DefaultStoryHTML = "story.html"
	// DefaultStoryPDF は物語のデフォルト PDF ファイル名です。
	DefaultStoryPDF = "story.pdf"
	// DefaultPageFileName はページ画像の共通のベースファイル名です。
	DefaultPageFileName = "page.jpg"
	// DefaultNarrationFileName は読み上げ音声の共通のベースファイル名です。
	DefaultNarrationFileName = "page.mp3"
)

// pageBaseName はページ画像と読み上げ音声に共通するベース名 ("page") です。
var pageBaseName = strings.TrimSuffix(DefaultPageFileName, filepath.Ext(DefaultPageFileName))

var (
	// PageFileRegex はページ画像 (page_1.jpg, page_2.png 等) に一致します
	PageFileRegex = createIndexedRegex(pageBaseName, `\.(?:jpg|png|webp)`)
	// NarrationFileRegex は読み上げ音声 (page_1.mp3 等) に一致します
	NarrationFileRegex = createIndexedRegex(pageBaseName, regexp.QuoteMeta(filepath.Ext(DefaultNarrationFileName)))
)

// ResolveOutputPath は、ベースとなるディレクトリパスとファイル名から最終的な出力パスを生成します。
// ベースが gs:// や s3:// の場合は URL として結合します。
func ResolveOutputPath(baseDir, fileName string) (string, error) {
	return urlpath.ResolvePath(baseDir, fileName)
}

// GenerateIndexedPath は、指定されたベースパスの拡張子の前に連番を挿入し、
// 新しいパス文字列を生成します。index は1以上の整数である必要があります。
// 例: "path/to/page.jpg", 1 -> "path/to/page_1.jpg"
func GenerateIndexedPath(basePath string, index int) (string, error) {
	return urlpath.GenerateIndexedPath(basePath, index)
}

// PageImagePath は n ページ目（1 始まり）の画像の出力パスを MIME タイプに合った拡張子で返します。
func PageImagePath(baseDir string, n int, mimeType string) (string, error) {
	return indexedAssetPath(baseDir, DefaultImageDir, pageBaseName+ExtensionFor(mimeType), n, PageFileRegex)
}

// NarrationPath は n ページ目（1 始まり）の読み上げ音声の出力パスを返します。
func NarrationPath(baseDir string, n int) (string, error) {
	return indexedAssetPath(baseDir, DefaultAudioDir, DefaultNarrationFileName, n, NarrationFileRegex)
}

// indexedAssetPath は baseDir/subDir 配下に連番付きのファイルパスを組み立て、
// 生成されたファイル名が pattern に一致することを確認します。
func indexedAssetPath(baseDir, subDir, fileName string, n int, pattern *regexp.Regexp) (string, error) {
	dir, err := ResolveOutputPath(baseDir, subDir)
	if err != nil {
		return "", err
	}
	base, err := ResolveOutputPath(dir, fileName)
	if err != nil {
		return "", err
	}
	p, err := GenerateIndexedPath(base, n)
	if err != nil {
		return "", err
	}
	if name := path.Base(filepath.ToSlash(p)); !pattern.MatchString(name) {
		return "", fmt.Errorf("出力ファイル名が規則に一致しません: %s", name)
	}
	return p, nil
}

// ExtensionFor は画像の MIME タイプに対応する拡張子を返します。不明な場合は ".jpg" です。
func ExtensionFor(mimeType string) string {
	preferred := map[string]string{"image/png": ".png", "image/jpeg": ".jpg", "image/webp": ".webp"}
	if ext, ok := preferred[strings.ToLower(mimeType)]; ok {
		return ext
	}
	return ".jpg"
}

// createIndexedRegex は、ベース名と拡張子のパターンからインデックス付きファイル用の正規表現を生成します。
// 例: "page", `\.mp3` -> ^page_\d+\.mp3$
func createIndexedRegex(baseName, extPattern string) *regexp.Regexp {
	pattern := fmt.Sprintf(`^%s_\d+%s$`, regexp.QuoteMeta(baseName), extPattern)
	return regexp.MustCompile(pattern)
}
