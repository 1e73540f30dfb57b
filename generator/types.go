package generator

// Spec describes one generation request before 调用模型。
type Spec struct {
	Text      string
	Tone      string
	NumSlides int
}

// Slide is one normalized slide: a title and its flat bullet points.
type Slide struct {
	Title  string   `json:"title"`
	Points []string `json:"points"`
}

// Outline is the normalized model output for one request. Slides[0] is the
// cover slide; its first point, if any, becomes the subtitle.
type Outline struct {
	Slides     []Slide  `json:"slides"`
	ThemeHints []string `json:"theme_hints"`
}

// Cover returns the first slide, if there is one.
func (o Outline) Cover() (Slide, bool) {
	if len(o.Slides) == 0 {
		return Slide{}, false
	}
	return o.Slides[0], true
}

// Content returns every slide after the cover.
func (o Outline) Content() []Slide {
	if len(o.Slides) < 2 {
		return nil
	}
	return o.Slides[1:]
}
