package generator

import (
	"fmt"
	"strings"

	"auto_slide_deck_generator/theme"
)

// Prompt 表示发送给 LLM 的 system/user 消息。
type Prompt struct {
	System string
	User   string
}

const outlineSystemPrompt = "You are an expert presentation designer. " +
	"Answer with a single JSON object only: no markdown, no explanations."

// BuildOutlinePrompt 生成要求输出 JSON 幻灯片大纲的提示词。
func BuildOutlinePrompt(spec Spec) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Turn the text below into a structured, engaging and %s slide deck outline.\n\n", spec.Tone))
	sb.WriteString("Instructions:\n")
	sb.WriteString(fmt.Sprintf("1. Produce approximately %d content slides.\n", spec.NumSlides))
	sb.WriteString("2. The first item in \"slides\" is the title slide: its \"title\" is the deck title and its \"points\" hold at most one short subtitle.\n")
	sb.WriteString("3. Every following slide has a concise \"title\" and 3 to 5 \"points\", each a short string.\n")
	sb.WriteString(fmt.Sprintf("4. \"theme_suggestions\" lists, best first, the themes that fit the topic, chosen from: %s.\n",
		strings.Join(theme.Names(), ", ")))
	sb.WriteString("5. Output only the JSON object, shaped like this example:\n")
	sb.WriteString(`{"slides": [{"title": "The Impact of AI", "points": ["Exploring new frontiers"]}, {"title": "Key Drivers", "points": ["Compute", "Data", "Talent"]}], "theme_suggestions": ["technology"]}`)
	sb.WriteString("\n\nText to analyze:\n---\n")
	sb.WriteString(spec.Text)
	sb.WriteString("\n---\nJSON output:")

	return Prompt{
		System: outlineSystemPrompt,
		User:   sb.String(),
	}
}
