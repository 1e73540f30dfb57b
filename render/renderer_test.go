package render

import (
	"bytes"
	"log/slog"
	"testing"

	ppt "github.com/VantageDataChat/GoPPT"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto_slide_deck_generator/generator"
	"auto_slide_deck_generator/theme"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func sampleOutline() generator.Outline {
	return generator.Outline{
		Slides: []generator.Slide{
			{Title: "Rivers of the World", Points: []string{"A short tour"}},
			{Title: "The Nile", Points: []string{"Longest river", "Flows north", "Eleven countries"}},
			{Title: "The Amazon", Points: []string{"Largest by volume", "Rainforest basin"}},
		},
	}
}

func mustTheme(t *testing.T, name string) theme.Definition {
	t.Helper()
	def, ok := theme.Lookup(name)
	require.True(t, ok)
	return def
}

// runs returns every text run on the slide in shape and paragraph order.
func runs(t *testing.T, s *ppt.Slide) []*ppt.TextRun {
	t.Helper()
	var out []*ppt.TextRun
	for _, sh := range s.GetShapes() {
		rts, ok := sh.(*ppt.RichTextShape)
		if !ok {
			continue
		}
		for _, para := range rts.GetParagraphs() {
			for _, el := range para.GetElements() {
				if tr, ok := el.(*ppt.TextRun); ok {
					out = append(out, tr)
				}
			}
		}
	}
	return out
}

func texts(t *testing.T, s *ppt.Slide) []string {
	t.Helper()
	var out []string
	for _, tr := range runs(t, s) {
		out = append(out, tr.GetText())
	}
	return out
}

func readBack(t *testing.T, data []byte) *ppt.Presentation {
	t.Helper()
	pres, err := ppt.ReadFrom(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return pres
}

func TestRenderer_Render_RoundTrip(t *testing.T) {
	r := NewRenderer(FixedSizing{}, quietLogger())

	data, err := r.Render(sampleOutline(), mustTheme(t, "nature"))

	require.NoError(t, err)
	pres := readBack(t, data)
	require.Equal(t, 3, pres.GetSlideCount())

	cover, err := pres.GetSlide(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rivers of the World", "A short tour"}, texts(t, cover))

	nile, err := pres.GetSlide(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"The Nile", "Longest river", "Flows north", "Eleven countries"}, texts(t, nile))

	amazon, err := pres.GetSlide(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"The Amazon", "Largest by volume", "Rainforest basin"}, texts(t, amazon))
}

func TestRenderer_EmptyOutline(t *testing.T) {
	r := NewRenderer(nil, quietLogger())

	data, err := r.Render(generator.Outline{}, mustTheme(t, "default"))

	require.NoError(t, err)
	pres := readBack(t, data)
	require.Equal(t, 1, pres.GetSlideCount())
	slide, err := pres.GetSlide(0)
	require.NoError(t, err)
	assert.Equal(t, []string{EmptyTitle}, texts(t, slide))
}

func TestRenderer_CoverSubtitleFallback(t *testing.T) {
	r := NewRenderer(FixedSizing{}, quietLogger())
	outline := generator.Outline{Slides: []generator.Slide{{Title: "Only a title"}}}

	p := r.build(outline, mustTheme(t, "business"))

	require.Equal(t, 1, p.GetSlideCount())
	cover, err := p.GetSlide(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Only a title", FallbackSubtitle}, texts(t, cover))
}

func TestRenderer_ThemeStyling(t *testing.T) {
	def := mustTheme(t, "technology")
	r := NewRenderer(FixedSizing{}, quietLogger())

	p := r.build(sampleOutline(), def)

	cover, err := p.GetSlide(0)
	require.NoError(t, err)
	coverRuns := runs(t, cover)
	require.Len(t, coverRuns, 2)
	title := coverRuns[0].GetFont()
	assert.True(t, title.Bold)
	assert.Equal(t, def.FontFamily, title.Name)
	assert.Equal(t, "FF"+def.Colors.Primary.Hex(), title.Color.ARGB)
	assert.Equal(t, 44, title.Size)
	sub := coverRuns[1].GetFont()
	assert.False(t, sub.Bold)
	assert.Equal(t, "FF"+def.Colors.Text.Hex(), sub.Color.ARGB)
	assert.Equal(t, 22, sub.Size)

	content, err := p.GetSlide(1)
	require.NoError(t, err)
	contentRuns := runs(t, content)
	assert.Equal(t, 34, contentRuns[0].GetFont().Size)
	for _, tr := range contentRuns[1:] {
		assert.Equal(t, 18, tr.GetFont().Size)
		assert.Equal(t, "FF"+def.Colors.Text.Hex(), tr.GetFont().Color.ARGB)
	}

	for _, s := range []*ppt.Slide{cover, content} {
		bg := s.GetBackground()
		require.NotNil(t, bg)
		assert.Equal(t, ppt.FillGradientLinear, bg.Type)
		assert.Equal(t, "FF"+def.Background.Color1.Hex(), bg.Color.ARGB)
		assert.Equal(t, "FF"+def.Background.Color2.Hex(), bg.EndColor.ARGB)
		assert.Equal(t, 45, bg.Rotation)
	}
}

func TestRenderer_BulletsAreFlat(t *testing.T) {
	r := NewRenderer(FixedSizing{}, quietLogger())

	p := r.build(sampleOutline(), mustTheme(t, "education"))

	slide, err := p.GetSlide(2)
	require.NoError(t, err)
	var body *ppt.RichTextShape
	for _, sh := range slide.GetShapes() {
		if rts, ok := sh.(*ppt.RichTextShape); ok {
			body = rts
		}
	}
	require.NotNil(t, body)
	paras := body.GetParagraphs()
	require.Len(t, paras, 2)
	for _, para := range paras {
		require.NotNil(t, para.GetBullet())
		assert.Equal(t, bulletChar, para.GetBullet().Style)
	}
}

func TestRenderer_InvalidBackgroundFallsBack(t *testing.T) {
	def := mustTheme(t, "business")
	def.Background = theme.Background{Kind: theme.BackgroundGradient, Color1: "nothex", Color2: "FFFFFF"}
	var logs bytes.Buffer
	r := NewRenderer(FixedSizing{}, slog.New(slog.NewTextHandler(&logs, nil)))

	p := r.build(sampleOutline(), def)

	for i := 0; i < p.GetSlideCount(); i++ {
		s, err := p.GetSlide(i)
		require.NoError(t, err)
		bg := s.GetBackground()
		require.NotNil(t, bg)
		assert.Equal(t, ppt.FillSolid, bg.Type)
		assert.Equal(t, "FF"+NeutralBackground, bg.Color.ARGB)
	}
	assert.Contains(t, logs.String(), "using neutral fill")
}

func TestRenderer_SolidBackground(t *testing.T) {
	def := mustTheme(t, "default")
	def.Background = theme.Background{Kind: theme.BackgroundSolid, Color1: "112233"}

	fill := backgroundFill(def.Background, quietLogger())

	assert.Equal(t, ppt.FillSolid, fill.Type)
	assert.Equal(t, "FF112233", fill.Color.ARGB)
}

func TestRenderer_DoesNotMutateInput(t *testing.T) {
	outline := sampleOutline()
	before := sampleOutline()
	r := NewRenderer(NewRandomSizing(7), quietLogger())

	_, err := r.Render(outline, mustTheme(t, "nature"))

	require.NoError(t, err)
	assert.Equal(t, before, outline)
}

func TestRenderer_RenderTwiceSameContent(t *testing.T) {
	r := NewRenderer(NewRandomSizing(1), quietLogger())
	def := mustTheme(t, "business")

	first, err := r.Render(sampleOutline(), def)
	require.NoError(t, err)
	second, err := r.Render(sampleOutline(), def)
	require.NoError(t, err)

	a, b := readBack(t, first), readBack(t, second)
	require.Equal(t, a.GetSlideCount(), b.GetSlideCount())
	for i := 0; i < a.GetSlideCount(); i++ {
		sa, err := a.GetSlide(i)
		require.NoError(t, err)
		sb, err := b.GetSlide(i)
		require.NoError(t, err)
		assert.Equal(t, texts(t, sa), texts(t, sb))
	}
}
