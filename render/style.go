package render

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

// Bounds is an inclusive font size range in points.
type Bounds struct {
	Min int
	Max int
}

var (
	CoverTitleSize   = Bounds{Min: 40, Max: 48}
	ContentTitleSize = Bounds{Min: 30, Max: 38}
	SubtitleSize     = Bounds{Min: 20, Max: 24}
	BodySize         = Bounds{Min: 16, Max: 20}
)

// SizePolicy picks a font size inside b.
type SizePolicy interface {
	Size(b Bounds) int
}

// FixedSizing always uses the midpoint, so output is reproducible.
type FixedSizing struct{}

func (FixedSizing) Size(b Bounds) int {
	return b.Min + (b.Max-b.Min)/2
}

// RandomSizing draws uniformly within the bounds.
type RandomSizing struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomSizing(seed uint64) *RandomSizing {
	return &RandomSizing{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *RandomSizing) Size(b Bounds) int {
	if b.Max <= b.Min {
		return b.Min
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return b.Min + r.rnd.IntN(b.Max-b.Min+1)
}

const (
	SizingFixed  = "fixed"
	SizingRandom = "random"
)

// ParseSizing maps a config value onto a SizePolicy.
func ParseSizing(name string, seed uint64) (SizePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SizingFixed:
		return FixedSizing{}, nil
	case SizingRandom:
		return NewRandomSizing(seed), nil
	default:
		return nil, fmt.Errorf("unknown font sizing %q (want %s or %s)", name, SizingFixed, SizingRandom)
	}
}
