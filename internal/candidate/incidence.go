package candidate

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Counter counts how many blobs contain a phrase and how often it occurs.
type Counter interface {
	Count(phrase string, blobs []string) (documents, occurrences int)
}

// LiteralCounter matches the phrase as a literal substring and counts
// non-overlapping occurrences.
type LiteralCounter struct{}

func (LiteralCounter) Count(phrase string, blobs []string) (int, int) {
	docs, occ := 0, 0
	for _, blob := range blobs {
		if n := strings.Count(blob, phrase); n > 0 {
			docs++
			occ += n
		}
	}
	return docs, occ
}

// PatternCounter compiles the phrase as a regular expression. Phrases that
// do not compile are counted literally.
type PatternCounter struct {
	Logger *slog.Logger
}

func (p PatternCounter) Count(phrase string, blobs []string) (int, int) {
	re, err := regexp.Compile(phrase)
	if err != nil {
		if p.Logger != nil {
			p.Logger.Warn("phrase is not a valid pattern, counting literally",
				"phrase", phrase,
				"error", err,
			)
		}
		return LiteralCounter{}.Count(phrase, blobs)
	}
	docs, occ := 0, 0
	for _, blob := range blobs {
		if n := len(re.FindAllStringIndex(blob, -1)); n > 0 {
			docs++
			occ += n
		}
	}
	return docs, occ
}

// CountIncidence sets DocumentIncidence and OccurrenceCount of every row,
// using up to workers goroutines.
func CountIncidence(ctx context.Context, t Table, blobs []string, counter Counter, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range t {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t[i].DocumentIncidence, t[i].OccurrenceCount = counter.Count(t[i].Text, blobs)
			return nil
		})
	}
	return g.Wait()
}
