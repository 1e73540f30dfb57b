package generator

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

const excerptLimit = 300

// themeKeys are the accepted spellings of the theme suggestion list; the
// first one present wins.
var themeKeys = []string{"theme_suggestions", "themeSuggestions", "themes"}

// pointKeys are probed in order for a slide's bullet points.
var pointKeys = []string{"points", "bullets", "content"}

// pointStrategy turns one field value into bullet points, or declines.
type pointStrategy func(v any, warn func(msg string, args ...any)) ([]string, bool)

// pointStrategies are tried in order against each present point key.
var pointStrategies = []pointStrategy{pointsFromList, pointsFromBlock}

// Normalize 校验并把模型原始文本转换为 Outline，标题和要点原样保留（只去首尾空白）。
// 仅在文本不是预期结构的 JSON 对象时返回 *MalformedOutlineError；零张幻灯片也是合法结果。
func Normalize(raw string, logger *slog.Logger) (Outline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cleaned := stripFence(raw)

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return Outline{}, &MalformedOutlineError{Reason: "invalid json", Excerpt: Excerpt(cleaned, excerptLimit), Err: err}
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return Outline{}, &MalformedOutlineError{Reason: "not an object", Excerpt: Excerpt(cleaned, excerptLimit)}
	}

	rawSlides, err := objectList(obj, "slides")
	if err != nil {
		return Outline{}, &MalformedOutlineError{Reason: "wrong shape", Excerpt: Excerpt(cleaned, excerptLimit), Err: err}
	}
	hints, err := themeSuggestions(obj)
	if err != nil {
		return Outline{}, &MalformedOutlineError{Reason: "wrong shape", Excerpt: Excerpt(cleaned, excerptLimit), Err: err}
	}

	slides := make([]Slide, 0, len(rawSlides))
	for i, fields := range rawSlides {
		slides = append(slides, buildSlide(i+1, fields, logger))
	}
	return Outline{Slides: slides, ThemeHints: hints}, nil
}

// stripFence removes one leading ```json / ``` marker and one trailing ```.
func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case hasPrefixFold(s, "```json"):
		s = s[len("```json"):]
	case strings.HasPrefix(s, "```"):
		s = s[len("```"):]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func objectList(obj map[string]any, key string) ([]map[string]any, error) {
	v, present := obj[key]
	if !present {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%q must be a list, got %s", key, jsonType(v))
	}
	out := make([]map[string]any, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%q[%d] must be an object, got %s", key, i, jsonType(item))
		}
		out = append(out, m)
	}
	return out, nil
}

func themeSuggestions(obj map[string]any) ([]string, error) {
	for _, key := range themeKeys {
		v, present := obj[key]
		if !present {
			continue
		}
		list, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%q must be a list, got %s", key, jsonType(v))
		}
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%q[%d] must be a string, got %s", key, i, jsonType(item))
			}
			out = append(out, s)
		}
		return out, nil
	}
	return []string{}, nil
}

func buildSlide(n int, fields map[string]any, logger *slog.Logger) Slide {
	warn := func(msg string, args ...any) {
		logger.Warn(msg, append([]any{"slide", n}, args...)...)
	}

	title := ""
	switch v := fields["title"].(type) {
	case string:
		title = strings.TrimSpace(v)
	case nil:
	default:
		warn("slide title is not a string", "type", jsonType(v))
	}
	if title == "" {
		title = fmt.Sprintf("Slide %d", n)
	}

	points := []string{}
	for _, key := range pointKeys {
		v, present := fields[key]
		if !present {
			continue
		}
		found, ok := extractPoints(v, func(msg string, args ...any) {
			warn(msg, append([]any{"field", key}, args...)...)
		})
		if ok {
			points = found
			break
		}
		warn("point field has unusable type, trying next field", "field", key, "type", jsonType(v))
	}
	return Slide{Title: title, Points: points}
}

func extractPoints(v any, warn func(msg string, args ...any)) ([]string, bool) {
	for _, strategy := range pointStrategies {
		if points, ok := strategy(v, warn); ok {
			return points, true
		}
	}
	return nil, false
}

// pointsFromList accepts a JSON array; non-string entries are dropped.
func pointsFromList(v any, warn func(msg string, args ...any)) ([]string, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	points := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			warn("dropping non-string point", "index", i, "type", jsonType(item))
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			points = append(points, s)
		}
	}
	return points, true
}

// pointsFromBlock accepts a single string where every line starting with a
// bullet marker is one point.
func pointsFromBlock(v any, warn func(msg string, args ...any)) ([]string, bool) {
	block, ok := v.(string)
	if !ok {
		return nil, false
	}
	points := []string{}
	skipped := 0
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		item, ok := cutBulletMarker(line)
		if !ok {
			skipped++
			continue
		}
		if item != "" {
			points = append(points, item)
		}
	}
	if skipped > 0 {
		warn("ignoring lines without a bullet marker", "lines", skipped)
	}
	return points, true
}

func cutBulletMarker(line string) (string, bool) {
	for _, marker := range []string{"-", "•"} {
		if rest, ok := strings.CutPrefix(line, marker); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
