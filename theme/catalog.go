// Package theme holds the fixed catalog of visual themes and the rules used to
// pick one of them for a deck.
package theme

import (
	"fmt"
	"strings"
)

// DefaultName is the fallback theme; it is always present in the catalog.
const DefaultName = "default"

// RGB is a 24-bit colour in "RRGGBB" hex form.
type RGB string

// Valid reports whether c is exactly six hex digits.
func (c RGB) Valid() bool {
	if len(c) != 6 {
		return false
	}
	for _, r := range c {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')) {
			return false
		}
	}
	return true
}

// Hex returns the upper-case hex form.
func (c RGB) Hex() string { return strings.ToUpper(string(c)) }

// BackgroundKind selects how a slide background is filled.
type BackgroundKind string

const (
	BackgroundSolid    BackgroundKind = "solid"
	BackgroundGradient BackgroundKind = "gradient"
)

// Background describes the slide fill. Color2 and AngleDegrees only apply to gradients.
type Background struct {
	Kind         BackgroundKind `json:"kind"`
	Color1       RGB            `json:"color1"`
	Color2       RGB            `json:"color2,omitempty"`
	AngleDegrees int            `json:"angle_degrees,omitempty"`
}

// Colors are the colour roles used by the renderer.
type Colors struct {
	Primary   RGB `json:"primary"`
	Secondary RGB `json:"secondary"`
	Accent    RGB `json:"accent"`
	Text      RGB `json:"text"`
}

// Definition is one named visual theme.
type Definition struct {
	Name       string     `json:"name"`
	Colors     Colors     `json:"colors"`
	Background Background `json:"background"`
	FontFamily string     `json:"font_family"`
}

// Validate checks the colour roles and background spec.
func (d Definition) Validate() error {
	for role, c := range map[string]RGB{
		"primary":   d.Colors.Primary,
		"secondary": d.Colors.Secondary,
		"accent":    d.Colors.Accent,
		"text":      d.Colors.Text,
	} {
		if !c.Valid() {
			return fmt.Errorf("theme %s: invalid %s colour %q", d.Name, role, c)
		}
	}
	if d.FontFamily == "" {
		return fmt.Errorf("theme %s: font family is empty", d.Name)
	}
	return d.Background.Validate()
}

// Validate checks that the background can be applied as described.
func (b Background) Validate() error {
	switch b.Kind {
	case BackgroundSolid:
		if !b.Color1.Valid() {
			return fmt.Errorf("solid background: invalid colour %q", b.Color1)
		}
	case BackgroundGradient:
		if !b.Color1.Valid() || !b.Color2.Valid() {
			return fmt.Errorf("gradient background: invalid stops %q, %q", b.Color1, b.Color2)
		}
	default:
		return fmt.Errorf("unsupported background kind %q", b.Kind)
	}
	return nil
}

// order is the catalog order; it breaks ties during keyword inference.
var order = []string{"technology", "nature", "business", "education", DefaultName}

var catalog = map[string]Definition{
	"technology": {
		Name:       "technology",
		Colors:     Colors{Primary: "003366", Secondary: "0072C6", Accent: "66B2FF", Text: "333333"},
		Background: Background{Kind: BackgroundGradient, Color1: "E0E8F0", Color2: "F0F8FF", AngleDegrees: 45},
		FontFamily: "Arial",
	},
	"nature": {
		Name:       "nature",
		Colors:     Colors{Primary: "228B22", Secondary: "3CB371", Accent: "90EE90", Text: "2F4F2F"},
		Background: Background{Kind: BackgroundGradient, Color1: "E6F5E6", Color2: "F0FFF0", AngleDegrees: 45},
		FontFamily: "Verdana",
	},
	"business": {
		Name:       "business",
		Colors:     Colors{Primary: "404040", Secondary: "808080", Accent: "D3D3D3", Text: "000000"},
		Background: Background{Kind: BackgroundGradient, Color1: "E8E8E8", Color2: "F5F5F5", AngleDegrees: 45},
		FontFamily: "Calibri",
	},
	"education": {
		Name:       "education",
		Colors:     Colors{Primary: "FF8C00", Secondary: "FFA500", Accent: "FFD700", Text: "542C06"},
		Background: Background{Kind: BackgroundGradient, Color1: "FFF5E0", Color2: "FFF8DC", AngleDegrees: 45},
		FontFamily: "Tahoma",
	},
	DefaultName: {
		Name:       DefaultName,
		Colors:     Colors{Primary: "BDC3C7", Secondary: "3498DB", Accent: "2980B9", Text: "ECF0F1"},
		Background: Background{Kind: BackgroundGradient, Color1: "2C3E50", Color2: "485A6D", AngleDegrees: 45},
		FontFamily: "Calibri",
	},
}

// aliases maps theme names to the lowercase topic keywords that suggest them.
var aliases = map[string][]string{
	"technology": {
		"ai", "artificial intelligence", "tech", "technology", "innovation", "digital",
		"software", "computer", "robotics", "automation", "future tech",
		"advancements", "transformation", "singularity", "algorithm",
	},
	"nature": {
		"nature", "environment", "eco", "green", "forest", "outdoors", "wildlife",
		"sustainability", "conservation", "planet", "earth", "natural",
	},
	"business": {
		"business", "finance", "corporate", "company", "market", "economic", "investment",
		"strategy", "management", "entrepreneur", "commerce", "industry", "reports",
	},
	"education": {
		"education", "learning", "school", "university", "academic", "study", "teaching",
		"knowledge", "curriculum", "student", "pedagogy",
	},
}

// Lookup returns the theme registered under name.
func Lookup(name string) (Definition, bool) {
	d, ok := catalog[normalizeName(name)]
	return d, ok
}

// Default returns the fallback theme.
func Default() Definition {
	return catalog[DefaultName]
}

// Names lists the catalog in its fixed order.
func Names() []string {
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// All returns every definition in catalog order.
func All() []Definition {
	out := make([]Definition, 0, len(order))
	for _, name := range order {
		out = append(out, catalog[name])
	}
	return out
}

// Aliases returns a copy of the keywords registered for name.
func Aliases(name string) []string {
	words := aliases[normalizeName(name)]
	out := make([]string, len(words))
	copy(out, words)
	return out
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
