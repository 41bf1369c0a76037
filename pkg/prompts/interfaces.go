package prompts

// StoryPrompt は、各生成工程のプロンプトを構築する契約です。
type StoryPrompt interface {
	// Build は、指定されたモード（例: "style", "next_page"）とデータに基づいてプロンプト文字列を生成します。
	Build(mode string, data TemplateData) (string, error)
}
