package prompts

import "strings"

// ComposeImagePrompt は場面の記述にスタイルアンカーを付与した画像生成プロンプトを返します。
// 場面は前後の空白以外そのまま使います。アンカーが区切り文字（"," または ";"）で始まる場合はそのまま連結し、そうでなければ ", " で繋ぎます。
func ComposeImagePrompt(scene, anchor string) string {
	scene = strings.TrimSpace(scene)
	anchor = strings.TrimSpace(anchor)
	switch {
	case anchor == "":
		return scene
	case scene == "":
		return strings.TrimLeft(anchor, ",; ")
	case strings.HasPrefix(anchor, ",") || strings.HasPrefix(anchor, ";"):
		return scene + anchor
	default:
		return scene + ", " + anchor
	}
}

// TrimSentenceEnd はモデルが書いた場面の記述から末尾のピリオドを 1 つだけ取り除きます。
// 省略記号（"..."）はそのまま残します。
func TrimSentenceEnd(desc string) string {
	desc = strings.TrimSpace(desc)
	if strings.HasSuffix(desc, "...") {
		return desc
	}
	return strings.TrimSuffix(desc, ".")
}
