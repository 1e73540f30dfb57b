package generator

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// stripStrong 去掉成对的 **…** 标记，其余字符原样保留。
// 只处理由纯文本和 ** 强调组成的单段文本；含 "__"、单个 *、代码、链接、转义等一律不改。
func stripStrong(s string) string {
	if !strings.Contains(s, "**") || strings.Contains(s, "__") {
		return s
	}
	src := []byte(s)
	doc := markdown.Parser().Parse(text.NewReader(src))
	para := doc.FirstChild()
	if para == nil || para.NextSibling() != nil || para.Kind() != ast.KindParagraph {
		return s
	}

	var b strings.Builder
	pairs := 0
	ok := true
	_ = ast.Walk(para, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Paragraph:
		case *ast.Emphasis:
			if node.Level != 2 {
				ok = false
				return ast.WalkStop, nil
			}
			pairs++
		case *ast.Text:
			if node.SoftLineBreak() || node.HardLineBreak() {
				ok = false
				return ast.WalkStop, nil
			}
			b.Write(node.Segment.Value(src))
		default:
			ok = false
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})

	out := b.String()
	// only the delimiters may disappear
	if !ok || pairs == 0 || len(out) != len(s)-4*pairs || strings.TrimSpace(out) == "" {
		return s
	}
	return out
}

// stripStrongOutline applies stripStrong to every title and point in place.
func stripStrongOutline(o Outline) {
	for i := range o.Slides {
		o.Slides[i].Title = stripStrong(o.Slides[i].Title)
		for j, p := range o.Slides[i].Points {
			o.Slides[i].Points[j] = stripStrong(p)
		}
	}
}
