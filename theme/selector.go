package theme

import (
	"sort"
	"strings"
	"unicode"
)

// Select returns the first suggested name present in the catalog, or the
// default theme when nothing matches. The caller controls priority through
// the order of suggested.
func Select(suggested []string) Definition {
	for _, name := range suggested {
		if d, ok := Lookup(name); ok {
			return d
		}
	}
	return Default()
}

// Infer returns the themes whose keywords occur in text, most hits first.
// Ties keep catalog order. Single-word keywords only match whole words.
func Infer(text string) []string {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return nil
	}
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(lower, isSeparator) {
		words[w] = struct{}{}
	}
	phrase := " " + strings.Join(strings.FieldsFunc(lower, isSeparator), " ") + " "

	type scored struct {
		name string
		hits int
		rank int
	}
	var found []scored
	for rank, name := range order {
		hits := 0
		for _, kw := range aliases[name] {
			if strings.Contains(kw, " ") {
				if strings.Contains(phrase, " "+kw+" ") {
					hits++
				}
				continue
			}
			if _, ok := words[kw]; ok {
				hits++
			}
		}
		if hits > 0 {
			found = append(found, scored{name: name, hits: hits, rank: rank})
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].hits != found[j].hits {
			return found[i].hits > found[j].hits
		}
		return found[i].rank < found[j].rank
	})
	out := make([]string, 0, len(found))
	for _, f := range found {
		out = append(out, f.name)
	}
	return out
}

// Hints builds the ordered suggestion list for Select: model suggestions as
// given, then themes inferred from those suggestions, then themes inferred
// from the topic. Duplicates and blanks are dropped.
func Hints(modelSuggestions []string, topic string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		key := normalizeName(s)
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	for _, s := range modelSuggestions {
		add(s)
	}
	for _, s := range Infer(strings.Join(modelSuggestions, " ")) {
		add(s)
	}
	for _, s := range Infer(topic) {
		add(s)
	}
	return out
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
