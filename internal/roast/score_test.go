package roast

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseScore(t *testing.T) {
	cases := []struct {
		text  string
		score int
		ok    bool
	}{
		{"Your site is a crime. score: 7/100", 7, true},
		{"Integrity score: 42 / 100, generous.", 42, true},
		{"100/100 flawless, said no one", 100, true},
		{"1/100", 1, true},
		{"first 12/100 then 99/100", 12, true},
		{"score 0/100", 0, false},
		{"score 150/100", 0, false},
		{"no score here", 0, false},
		{"50/99 is not the pattern", 0, false},
		{"meh 42\u00a0/\u00a0100", 42, true},
		{"ugh 17\u202f/\u202f100", 17, true},
		{"tab\t33\t/\t100", 33, true},
		{"", 0, false},
	}
	for _, tc := range cases {
		score, ok := ParseScore(tc.text)
		assert.Equal(t, tc.ok, ok, tc.text)
		assert.Equal(t, tc.score, score, tc.text)
	}
}

func TestParseScore_OnlyFirstMatchCounts(t *testing.T) {
	// The first match is out of range; the later valid one is ignored.
	_, ok := ParseScore("0/100 but really 55/100")
	assert.False(t, ok)
}

func TestFallbackScorer_Range(t *testing.T) {
	f := NewFallbackScorer(rand.NewPCG(1, 2))
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		s := f.Score()
		assert.GreaterOrEqual(t, s, 1)
		assert.LessOrEqual(t, s, MaxFallbackScore)
		seen[s] = true
	}
	// A uniform draw over 2000 samples hits both ends.
	assert.True(t, seen[1])
	assert.True(t, seen[MaxFallbackScore])
}

func TestFallbackScorer_SeededIsDeterministic(t *testing.T) {
	a := NewFallbackScorer(rand.NewPCG(7, 7))
	b := NewFallbackScorer(rand.NewPCG(7, 7))
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Score(), b.Score())
	}
}

func TestFallbackScorer_GlobalSource(t *testing.T) {
	f := NewFallbackScorer(nil)
	for i := 0; i < 100; i++ {
		s := f.Score()
		assert.True(t, s >= 1 && s <= MaxFallbackScore, "score %d out of range", s)
	}
}

func TestFallbackScorer_ConcurrentUse(t *testing.T) {
	f := NewFallbackScorer(rand.NewPCG(3, 4))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s := f.Score()
				if s < 1 || s > MaxFallbackScore {
					t.Errorf("score %d out of range", s)
				}
			}
		}()
	}
	wg.Wait()
}

func TestExtract(t *testing.T) {
	f := NewFallbackScorer(rand.NewPCG(5, 6))

	score, parsed := f.Extract("a solid 73/100")
	assert.True(t, parsed)
	assert.Equal(t, 73, score)

	for _, text := range []string{"0/100", "150/100", "no pattern", ""} {
		score, parsed = f.Extract(text)
		assert.False(t, parsed, text)
		assert.True(t, score >= 1 && score <= MaxFallbackScore, "fallback %d for %q", score, text)
	}
}
