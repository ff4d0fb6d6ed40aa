// Package collocation discovers candidate n-grams of order 1 to 4 in a flat
// token stream. Order 1 is ranked by raw frequency; orders 2 to 4 are ranked
// by the log-likelihood ratio of their contingency table.
package collocation

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/errors"
)

const (
	MethodRawFrequency    = "raw frequency"
	MethodLikelihoodRatio = "likelihood ratio"

	MinOrder = 1
	MaxOrder = 4
)

// Scored is one ranked n-gram.
type Scored struct {
	Tokens []string
	Score  float64
}

// Text renders the n-gram as a space-joined phrase.
func (s Scored) Text() string {
	return strings.Join(s.Tokens, " ")
}

// Result is the ranked list produced for one order.
type Result struct {
	Order  int
	Method string
	Rows   []Scored
}

// Options are the knobs shared by every order.
type Options struct {
	// Threshold is the minimum count of an n-gram.
	Threshold int
	// Limit keeps the top Limit rows per order; 0 keeps all of them.
	Limit      int
	ForceLimit bool
}

// MethodFor returns the ranking method used for order.
func MethodFor(order int) string {
	if order == 1 {
		return MethodRawFrequency
	}
	return MethodLikelihoodRatio
}

// Unigrams counts tokens and returns those longer than two characters whose
// count reaches threshold, by descending count. Equal counts keep the order
// of first occurrence.
func Unigrams(stream []string, threshold int) []Scored {
	counts := make(map[string]int, len(stream)/2)
	var order []string
	for _, tok := range stream {
		if _, seen := counts[tok]; !seen {
			order = append(order, tok)
		}
		counts[tok]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	out := make([]Scored, 0, len(order))
	for _, tok := range order {
		c := counts[tok]
		if utf8.RuneCountInString(tok) > 2 && c >= threshold {
			out = append(out, Scored{Tokens: []string{tok}, Score: float64(c)})
		}
	}
	return out
}

// ScoreOrder ranks the n-grams of one order before truncation.
func ScoreOrder(stream []string, order, threshold int) ([]Scored, error) {
	switch {
	case order == 1:
		return Unigrams(stream, threshold), nil
	case order >= 2 && order <= MaxOrder:
		f, err := NewFinder(stream, order)
		if err != nil {
			return nil, err
		}
		f.ApplyFreqFilter(threshold)
		f.ApplyWordFilter(func(w string) bool { return utf8.RuneCountInString(w) < 2 })
		return f.ScoreLikelihoodRatio(), nil
	default:
		return nil, apperrors.Newf(apperrors.ErrInvariantViolation, "collocation",
			"n-gram order must be in [%d, %d], got %d", MinOrder, MaxOrder, order)
	}
}

// Truncate keeps the first limit rows. For raw-frequency lists without
// force, the limit first grows to cover every leading row whose score still
// reaches threshold, so a frequency tier is never cut in half.
func Truncate(rows []Scored, limit int, force bool, method string, threshold int) []Scored {
	if limit <= 0 {
		return rows
	}
	if !force && method == MethodRawFrequency {
		grown := 0
		for _, r := range rows {
			if r.Score < float64(threshold) {
				break
			}
			grown++
		}
		if grown > limit {
			limit = grown
		}
	}
	if limit > len(rows) {
		limit = len(rows)
	}
	return rows[:limit]
}

// Process scores orders 1 to 4 concurrently and returns them in order.
func Process(ctx context.Context, stream []string, opts Options) ([]Result, error) {
	results := make([]Result, MaxOrder)
	g, ctx := errgroup.WithContext(ctx)
	for order := MinOrder; order <= MaxOrder; order++ {
		order := order
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := ScoreOrder(stream, order, opts.Threshold)
			if err != nil {
				return err
			}
			method := MethodFor(order)
			results[order-1] = Result{
				Order:  order,
				Method: method,
				Rows:   Truncate(rows, opts.Limit, opts.ForceLimit, method, opts.Threshold),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
