package collocation

import (
	"math"
	"math/bits"
	"sort"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/errors"
)

const (
	keySep = "\x00"
	small  = 1e-20
)

// Finder holds the n-gram counts of one order together with the counts of
// every gapped sub-pattern needed to build contingency tables. Patterns are
// identified by a position mask whose bit 0 is always set: for order 3 the
// mask 0b101 counts (w1, *, w3) pairs.
//
// A pattern starting at position i is counted whenever it fits inside the
// stream, so unigrams are counted at every position and the total equals
// the stream length. Filters only remove n-grams; marginals stay intact.
type Finder struct {
	order     int
	total     int
	ngrams    map[string]int
	seen      []string
	marginals map[string]int
}

func NewFinder(stream []string, order int) (*Finder, error) {
	if order < 2 || order > MaxOrder {
		return nil, apperrors.Newf(apperrors.ErrInvariantViolation, "collocation",
			"association order must be in [2, %d], got %d", MaxOrder, order)
	}
	f := &Finder{
		order:     order,
		total:     len(stream),
		ngrams:    make(map[string]int),
		marginals: make(map[string]int),
	}
	parts := make([]string, 0, order)
	for i := range stream {
		for mask := 1; mask < 1<<order; mask += 2 {
			if i+bits.Len(uint(mask)) > len(stream) {
				continue
			}
			parts = parts[:0]
			for j := 0; j < order; j++ {
				if mask&(1<<j) != 0 {
					parts = append(parts, stream[i+j])
				}
			}
			f.marginals[patternKey(mask, parts)]++
		}
		if i+order <= len(stream) {
			key := strings.Join(stream[i:i+order], keySep)
			if _, ok := f.ngrams[key]; !ok {
				f.seen = append(f.seen, key)
			}
			f.ngrams[key]++
		}
	}
	return f, nil
}

func patternKey(mask int, parts []string) string {
	return string(rune('0'+mask)) + keySep + strings.Join(parts, keySep)
}

// Total is the number of tokens in the stream.
func (f *Finder) Total() int { return f.total }

// Count returns the number of occurrences of the n-gram tokens.
func (f *Finder) Count(tokens []string) int {
	return f.ngrams[strings.Join(tokens, keySep)]
}

// ApplyFreqFilter removes n-grams occurring fewer than minFreq times.
func (f *Finder) ApplyFreqFilter(minFreq int) {
	for key, c := range f.ngrams {
		if c < minFreq {
			delete(f.ngrams, key)
		}
	}
}

// ApplyWordFilter removes n-grams containing a token for which drop is true.
func (f *Finder) ApplyWordFilter(drop func(string) bool) {
	for key := range f.ngrams {
		for _, w := range strings.Split(key, keySep) {
			if drop(w) {
				delete(f.ngrams, key)
				break
			}
		}
	}
}

// marginal returns the count of the tokens of ngram at the positions of set.
func (f *Finder) marginal(ngram []string, set int) int {
	if set == 0 {
		return f.total
	}
	shift := bits.TrailingZeros(uint(set))
	parts := make([]string, 0, f.order)
	for j := shift; j < f.order; j++ {
		if set&(1<<j) != 0 {
			parts = append(parts, ngram[j])
		}
	}
	return f.marginals[patternKey(set>>shift, parts)]
}

// Contingency returns the 2^n observed cells for ngram. In cell c, bit j set
// means position j holds some word other than ngram[j].
func (f *Finder) Contingency(ngram []string) []float64 {
	n := f.order
	full := 1<<n - 1
	cells := make([]float64, 1<<n)
	for c := range cells {
		fixed := full &^ c
		sum := 0
		// Inclusion-exclusion over the subsets of the "other" positions.
		for sub := c; ; sub = (sub - 1) & c {
			v := f.marginal(ngram, fixed|sub)
			if bits.OnesCount(uint(sub))%2 == 1 {
				sum -= v
			} else {
				sum += v
			}
			if sub == 0 {
				break
			}
		}
		cells[c] = float64(sum)
	}
	return cells
}

// ExpectedValues returns the cell counts expected under independence.
func ExpectedValues(cont []float64) []float64 {
	n := bits.Len(uint(len(cont))) - 1
	total := 0.0
	for _, v := range cont {
		total += v
	}
	denom := math.Pow(total, float64(n-1))
	exp := make([]float64, len(cont))
	for c := range cont {
		prod := 1.0
		for j := 0; j < n; j++ {
			bit := 1 << j
			axis := 0.0
			for x, v := range cont {
				if x&bit == c&bit {
					axis += v
				}
			}
			prod *= axis
		}
		exp[c] = prod / denom
	}
	return exp
}

// LikelihoodRatio scores a contingency table. Empty cells contribute
// nothing.
func LikelihoodRatio(cont []float64) float64 {
	exp := ExpectedValues(cont)
	sum := 0.0
	for i, obs := range cont {
		if obs <= 0 {
			continue
		}
		sum += obs * math.Log(obs/(exp[i]+small)+small)
	}
	return 2 * sum
}

// ScoreLikelihoodRatio ranks the remaining n-grams by descending score,
// breaking ties by ascending token tuple.
func (f *Finder) ScoreLikelihoodRatio() []Scored {
	out := make([]Scored, 0, len(f.ngrams))
	for _, key := range f.seen {
		if _, ok := f.ngrams[key]; !ok {
			continue
		}
		tokens := strings.Split(key, keySep)
		out = append(out, Scored{Tokens: tokens, Score: LikelihoodRatio(f.Contingency(tokens))})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return lessTokens(out[i].Tokens, out[j].Tokens)
	})
	return out
}

func lessTokens(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
