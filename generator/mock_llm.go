package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// MockLLM 一个简单的占位实现，便于本地调试，不调用外部模型。
// 输出带 ```json 围栏的大纲，和真实模型的习惯一致。
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	topic := mockTopic(prompt.User)
	slides := []Slide{
		{Title: topic, Points: []string{"An automatically generated overview"}},
		{Title: "Background", Points: []string{"Where the topic comes from", "Why it matters now", "Who is affected"}},
		{Title: "Key Ideas", Points: []string{"First principle", "Second principle", "Open questions"}},
		{Title: "Next Steps", Points: []string{"Summarize the findings", "Agree on owners", "Review in a month"}},
	}
	payload, err := json.Marshal(map[string]any{
		"slides":            slides,
		"theme_suggestions": []string{"business"},
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("```json\n%s\n```", payload), nil
}

// mockTopic 取提示词中待分析文本的首行作为标题。
func mockTopic(user string) string {
	_, after, ok := strings.Cut(user, "---\n")
	if !ok {
		return "Generated Presentation"
	}
	line, _, _ := strings.Cut(strings.TrimSpace(after), "\n")
	line = strings.TrimSpace(line)
	if line == "" || line == "---" {
		return "Generated Presentation"
	}
	if r := []rune(line); len(r) > 60 {
		line = string(r[:60])
	}
	return line
}
