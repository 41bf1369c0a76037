package domain

import "errors"

var (
	// ErrConfiguration は API キーなどの必須設定が欠けていることを示します。
	ErrConfiguration = errors.New("configuration error")
	// ErrMissingPrompt はプロンプト（または続きの指示）が空であることを示します。
	ErrMissingPrompt = errors.New("missing prompt")
	// ErrEmptyStyle はスタイルアンカーの生成結果が空だったことを示します。
	ErrEmptyStyle = errors.New("empty style anchor")
	// ErrEmptyText は本文の生成結果が空だったことを示します。
	ErrEmptyText = errors.New("empty story text")
	// ErrMalformedResponse は構造化レスポンスを解釈できなかったことを示します。
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrImageGeneration は画像が 1 枚も返らなかったことを示します。
	ErrImageGeneration = errors.New("image generation failed")
	// ErrIncompleteGeneration はページ拡張で本文か画像の片方が欠けていたことを示します。
	ErrIncompleteGeneration = errors.New("incomplete generation")
	// ErrSafetyBlocked は候補やパートが返らず、安全フィルタで遮断されたとみなすことを示します。
	ErrSafetyBlocked = errors.New("blocked by safety filter")
	// ErrEmptyHistory は拡張元となるページが存在しないことを示します。
	ErrEmptyHistory = errors.New("story has no pages")
	// ErrBusy は同じ物語に対する生成処理が既に進行中であることを示します。
	ErrBusy = errors.New("story generation already in progress")
	// ErrSessionNotFound は指定された物語セッションが存在しないことを示します。
	ErrSessionNotFound = errors.New("story session not found")
	// ErrNarrationNotConfigured は読み上げ用の API キーが設定されていないことを示します。
	ErrNarrationNotConfigured = errors.New("narration is not configured")
)

// UserMessage はエラーの種類に応じて、利用者に表示する文言を返します。
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "The story service is not configured. Please set the API key and try again."
	case errors.Is(err, ErrMissingPrompt):
		return "Please enter a prompt to start your story."
	case errors.Is(err, ErrSafetyBlocked):
		return "The request was blocked by the content safety filter. Please try a different instruction."
	case errors.Is(err, ErrIncompleteGeneration):
		return "The model did not return both the text and the illustration for the next page. Please try again."
	case errors.Is(err, ErrImageGeneration):
		return "The illustration could not be generated. Please try a different prompt."
	case errors.Is(err, ErrEmptyStyle), errors.Is(err, ErrEmptyText), errors.Is(err, ErrMalformedResponse):
		return "The story could not be written from this idea. Please try a different prompt."
	case errors.Is(err, ErrEmptyHistory):
		return "Start a story before asking for the next page."
	case errors.Is(err, ErrBusy):
		return "The story is still being written. Please wait for the current page to finish."
	case errors.Is(err, ErrSessionNotFound):
		return "This story could not be found. It may have expired."
	case errors.Is(err, ErrNarrationNotConfigured):
		return "Narration is not available because no voice API key is configured."
	default:
		return "Something went wrong while creating the story. Please try again."
	}
}
