package llm

import (
	"strings"
	"unicode/utf8"
)

// SystemPrompt positions the model as the shop's inventory assistant.
const SystemPrompt = "あなたは楽器店の在庫管理システムのアシスタントです。" +
	"テキストから楽器の商品情報を正確に抽出してJSONで返してください。"

// maxPromptText caps the embedded source text so one oversized catalog page
// cannot blow the context window.
const maxPromptText = 12000

// BuildUserPrompt composes the extraction prompt: it states the target JSON
// array shape, forbids inference and fabrication, instructs empty strings
// for absent fields, and embeds the source text verbatim. Deterministic by
// construction — the only variable part is the text itself.
func BuildUserPrompt(text string) string {
	if len(text) > maxPromptText {
		cut := maxPromptText
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	var b strings.Builder
	b.WriteString("以下のテキストから楽器商品の情報をJSON配列で抽出してください。\n\n")
	b.WriteString("【重要な制約】:\n")
	b.WriteString("- テキストに明確に記載されている情報のみを抽出する\n")
	b.WriteString("- 推測や想像で情報を補完しない\n")
	b.WriteString("- 見つからない項目は空文字 \"\" にする\n")
	b.WriteString("- 存在しない情報は絶対に追加しない\n\n")
	b.WriteString("JSONフォーマット:\n")
	b.WriteString(`[{"category":"","product_name":"","manufacturer":"","model_number":"","color":"","price":"","condition":"","notes":""}]`)
	b.WriteString("\n\n抽出対象テキスト:\n")
	b.WriteString(text)
	return b.String()
}
