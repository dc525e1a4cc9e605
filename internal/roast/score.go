package roast

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"sync"
)

// Score bounds.
const (
	MinScore         = 1
	MaxScore         = 100
	MaxFallbackScore = 40
)

// scorePattern matches the first "NN/100" in a reply. RE2's \s is ASCII only,
// so Unicode spaces (NBSP, narrow NBSP, BOM) are listed explicitly.
var scorePattern = regexp.MustCompile(`(\d{1,3})[\s\p{Zs}\x{FEFF}]*/[\s\p{Zs}\x{FEFF}]*100`)

// ParseScore returns the score from the first "NN/100" occurrence in text.
// ok is false when there is no match or the value is outside [1,100].
func ParseScore(text string) (score int, ok bool) {
	m := scorePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < MinScore || n > MaxScore {
		return 0, false
	}
	return n, true
}

// FallbackScorer draws uniform scores in [1,40] for replies without a usable score.
type FallbackScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFallbackScorer uses src for randomness; a nil src uses the global generator.
func NewFallbackScorer(src rand.Source) *FallbackScorer {
	f := &FallbackScorer{}
	if src != nil {
		f.rng = rand.New(src)
	}
	return f
}

// Score returns a fresh fallback score.
func (f *FallbackScorer) Score() int {
	if f == nil || f.rng == nil {
		return rand.IntN(MaxFallbackScore) + 1
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rng.IntN(MaxFallbackScore) + 1
}

// Extract returns the parsed score from text, or a fallback score.
// The result is always within [1,100].
func (f *FallbackScorer) Extract(text string) (score int, parsed bool) {
	if n, ok := ParseScore(text); ok {
		return n, true
	}
	return f.Score(), false
}
