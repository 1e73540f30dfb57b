package generator

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const DefaultTone = "professional"

// Limits bounds what a caller may ask for.
type Limits struct {
	MinTextChars  int
	MaxTextChars  int
	MaxToneChars  int
	DefaultSlides int
	MaxSlides     int
}

func DefaultLimits() Limits {
	return Limits{
		MinTextChars:  10,
		MaxTextChars:  10000,
		MaxToneChars:  100,
		DefaultSlides: 5,
		MaxSlides:     30,
	}
}

// Apply trims and defaults spec, then checks it against l. A zero NumSlides
// means "use the default".
func (l Limits) Apply(spec Spec) (Spec, error) {
	spec.Text = strings.TrimSpace(spec.Text)
	spec.Tone = strings.TrimSpace(spec.Tone)

	n := utf8.RuneCountInString(spec.Text)
	switch {
	case n == 0:
		return Spec{}, &InputValidationError{Field: "text", Reason: "must not be empty"}
	case n < l.MinTextChars:
		return Spec{}, &InputValidationError{Field: "text", Reason: fmt.Sprintf("must be at least %d characters", l.MinTextChars)}
	case l.MaxTextChars > 0 && n > l.MaxTextChars:
		return Spec{}, &InputValidationError{Field: "text", Reason: fmt.Sprintf("must be at most %d characters", l.MaxTextChars)}
	}

	if spec.Tone == "" {
		spec.Tone = DefaultTone
	}
	if l.MaxToneChars > 0 && utf8.RuneCountInString(spec.Tone) > l.MaxToneChars {
		return Spec{}, &InputValidationError{Field: "tone", Reason: fmt.Sprintf("must be at most %d characters", l.MaxToneChars)}
	}

	if spec.NumSlides == 0 {
		spec.NumSlides = l.DefaultSlides
	}
	if spec.NumSlides < 1 || (l.MaxSlides > 0 && spec.NumSlides > l.MaxSlides) {
		return Spec{}, &InputValidationError{Field: "num_slides", Reason: fmt.Sprintf("must be between 1 and %d", l.MaxSlides)}
	}
	return spec, nil
}
