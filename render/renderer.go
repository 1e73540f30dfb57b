// Package render turns a normalized outline and a theme into a .pptx
// document, and manages the generated files on disk.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	ppt "github.com/VantageDataChat/GoPPT"

	"auto_slide_deck_generator/generator"
	"auto_slide_deck_generator/theme"
)

const (
	EmptyTitle       = "Empty Presentation"
	FallbackSubtitle = "Content Overview"

	fallbackFont = "Calibri"
	bulletChar   = "•"
)

// 16:9 widescreen is 13.333 x 7.5 inches.
var (
	slideWidth = ppt.Inch(13.333)

	coverMarginX  = ppt.Inch(0.9)
	coverTitleY   = ppt.Inch(2.2)
	coverTitleH   = ppt.Inch(1.6)
	coverSubY     = ppt.Inch(4.0)
	coverSubH     = ppt.Inch(1.0)
	contentMargin = ppt.Inch(0.6)
	contentTitleY = ppt.Inch(0.4)
	contentTitleH = ppt.Inch(1.1)
	bodyY         = ppt.Inch(1.7)
	bodyH         = ppt.Inch(5.3)
)

// Renderer builds decks. It keeps no per-deck state and is safe for
// concurrent use.
type Renderer struct {
	sizing  SizePolicy
	creator string
	logger  *slog.Logger
}

func NewRenderer(sizing SizePolicy, logger *slog.Logger) *Renderer {
	if sizing == nil {
		sizing = FixedSizing{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{sizing: sizing, creator: "auto_slide_deck_generator", logger: logger}
}

// Render produces the .pptx bytes for outline styled with def. The first
// slide is the cover; an empty outline yields one placeholder cover.
func (r *Renderer) Render(outline generator.Outline, def theme.Definition) (data []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			data, err = nil, &RenderError{Stage: "build", Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	p := r.build(outline, def)
	var buf bytes.Buffer
	if err := p.WriteTo(&buf); err != nil {
		return nil, &RenderError{Stage: "write", Err: err}
	}
	if buf.Len() == 0 {
		return nil, &RenderError{Stage: "write", Err: errors.New("empty document")}
	}
	return buf.Bytes(), nil
}

func (r *Renderer) build(outline generator.Outline, def theme.Definition) *ppt.Presentation {
	p := ppt.New()
	p.GetLayout().SetLayout(ppt.LayoutScreen16x9)

	bg := backgroundFill(def.Background, r.logger)
	font := def.FontFamily
	if font == "" {
		font = fallbackFont
	}
	s := slideStyle{def: def, font: font, bg: bg}

	cover, ok := outline.Cover()
	if !ok {
		p.GetDocumentProperties().Title = EmptyTitle
		r.coverSlide(p.GetActiveSlide(), s, EmptyTitle, "")
		return p
	}

	p.GetDocumentProperties().Title = cover.Title
	p.GetDocumentProperties().Creator = r.creator

	subtitle := FallbackSubtitle
	if len(cover.Points) > 0 {
		subtitle = cover.Points[0]
	}
	r.coverSlide(p.GetActiveSlide(), s, cover.Title, subtitle)

	for _, slide := range outline.Content() {
		r.contentSlide(p.CreateSlide(), s, slide)
	}
	return p
}

type slideStyle struct {
	def  theme.Definition
	font string
	bg   *ppt.Fill
}

// fill returns a copy so slides never share one *Fill.
func (s slideStyle) fill() *ppt.Fill {
	f := *s.bg
	return &f
}

func (r *Renderer) coverSlide(slide *ppt.Slide, s slideStyle, title, subtitle string) {
	slide.SetName(title)
	slide.SetBackground(s.fill())

	titleBox := slide.CreateRichTextShape()
	titleBox.SetOffsetX(coverMarginX).SetOffsetY(coverTitleY)
	titleBox.SetWidth(slideWidth - 2*coverMarginX).SetHeight(coverTitleH)
	titleBox.SetWordWrap(true)
	titleBox.SetTextAnchor(ppt.TextAnchorMiddle)
	run := titleBox.CreateTextRun(title)
	run.GetFont().SetName(s.font).SetSize(r.sizing.Size(CoverTitleSize)).SetBold(true).SetColor(color(s.def.Colors.Primary.Hex()))
	centre(titleBox.GetActiveParagraph())

	if subtitle == "" {
		return
	}
	subBox := slide.CreateRichTextShape()
	subBox.SetOffsetX(coverMarginX).SetOffsetY(coverSubY)
	subBox.SetWidth(slideWidth - 2*coverMarginX).SetHeight(coverSubH)
	subBox.SetWordWrap(true)
	run = subBox.CreateTextRun(subtitle)
	run.GetFont().SetName(s.font).SetSize(r.sizing.Size(SubtitleSize)).SetColor(color(s.def.Colors.Text.Hex()))
	centre(subBox.GetActiveParagraph())
}

func (r *Renderer) contentSlide(slide *ppt.Slide, s slideStyle, content generator.Slide) {
	slide.SetName(content.Title)
	slide.SetBackground(s.fill())

	titleBox := slide.CreateRichTextShape()
	titleBox.SetOffsetX(contentMargin).SetOffsetY(contentTitleY)
	titleBox.SetWidth(slideWidth - 2*contentMargin).SetHeight(contentTitleH)
	titleBox.SetWordWrap(true)
	titleBox.SetTextAnchor(ppt.TextAnchorMiddle)
	run := titleBox.CreateTextRun(content.Title)
	run.GetFont().SetName(s.font).SetSize(r.sizing.Size(ContentTitleSize)).SetBold(true).SetColor(color(s.def.Colors.Primary.Hex()))

	if len(content.Points) == 0 {
		return
	}
	body := slide.CreateRichTextShape()
	body.SetOffsetX(contentMargin + ppt.Inch(0.2)).SetOffsetY(bodyY)
	body.SetWidth(slideWidth - 2*contentMargin - ppt.Inch(0.2)).SetHeight(bodyH)
	body.SetWordWrap(true)
	body.SetAutoFit(ppt.AutoFitNormal)

	size := r.sizing.Size(BodySize)
	for i, point := range content.Points {
		para := body.GetActiveParagraph()
		if i > 0 {
			para = body.CreateParagraph()
		}
		bullet := ppt.NewBullet()
		bullet.SetCharBullet(bulletChar, s.font)
		bullet.SetColor(color(s.def.Colors.Accent.Hex()))
		para.SetBullet(bullet)
		para.CreateTextRun(point).GetFont().SetName(s.font).SetSize(size).SetColor(color(s.def.Colors.Text.Hex()))
	}
}

func centre(p *ppt.Paragraph) {
	p.SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalCenter))
}
