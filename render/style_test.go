package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedSizing(t *testing.T) {
	s := FixedSizing{}
	assert.Equal(t, 44, s.Size(CoverTitleSize))
	assert.Equal(t, 34, s.Size(ContentTitleSize))
	assert.Equal(t, 22, s.Size(SubtitleSize))
	assert.Equal(t, 18, s.Size(BodySize))
}

func TestRandomSizing_StaysInBounds(t *testing.T) {
	s := NewRandomSizing(42)
	for _, b := range []Bounds{CoverTitleSize, ContentTitleSize, SubtitleSize, BodySize} {
		for i := 0; i < 200; i++ {
			got := s.Size(b)
			assert.GreaterOrEqual(t, got, b.Min)
			assert.LessOrEqual(t, got, b.Max)
		}
	}
	assert.Equal(t, 12, s.Size(Bounds{Min: 12, Max: 12}))
}

func TestParseSizing(t *testing.T) {
	p, err := ParseSizing("", 1)
	require.NoError(t, err)
	assert.IsType(t, FixedSizing{}, p)

	p, err = ParseSizing("Random", 1)
	require.NoError(t, err)
	assert.IsType(t, &RandomSizing{}, p)

	_, err = ParseSizing("huge", 1)
	assert.Error(t, err)
}
