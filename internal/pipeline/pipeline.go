// Package pipeline runs one terminology-mining pass over a document set:
// tokenize, score n-grams of order 1 to 4, build the candidate table, then
// annotate it with containment and corpus incidence. Every stage is timed as
// a child span of the run and fails the run on error.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/candidate"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/collocation"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/search"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/store"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/tracing"
)

// Stage names used for spans, metrics and error context.
const (
	StageTokenize    = "tokenize"
	StageScore       = "score"
	StageBuild       = "build"
	StageContainment = "containment"
	StageIncidence   = "incidence"
	StageValidate    = "validate"
	StageSearch      = "search"
)

// Result is everything a run produced.
type Result struct {
	Run    store.Run
	Table  candidate.Table
	Corpus *corpus.Corpus
	// Search is nil when no keyword patterns are configured.
	Search *search.Result
	Span   *tracing.Span
}

// Pipeline holds the validated configuration of a run. It is reusable across
// clusters.
type Pipeline struct {
	tok      corpus.TextTokenizer
	version  string
	analysis config.AnalysisConfig
	columns  string
	analyzer *search.Analyzer
	metrics  *metrics.Metrics
}

// New validates cfg before any document is touched. version identifies the
// tokenizer and is part of the run id. m may be nil.
func New(tok corpus.TextTokenizer, version string, cfg *config.Config, m *metrics.Metrics) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := search.ParseColumns(cfg.Search.Columns); err != nil {
		return nil, err
	}
	p := &Pipeline{
		tok:      tok,
		version:  version,
		analysis: cfg.Analysis,
		columns:  cfg.Search.Columns,
		metrics:  m,
	}
	if len(cfg.Search.Patterns) > 0 {
		a, err := search.NewAnalyzer(cfg.Search.Columns, cfg.Search.Patterns)
		if err != nil {
			return nil, err
		}
		p.analyzer = a
	}
	return p, nil
}

// Threshold returns the effective frequency floor for a corpus of the given
// size.
func Threshold(cfg config.AnalysisConfig, documents int) int {
	if cfg.MinimumFrequencyThreshold > 0 {
		return cfg.MinimumFrequencyThreshold
	}
	t := int(math.Ceil(float64(documents) * cfg.MinimumFrequencyRatio))
	if t < 1 {
		t = 1
	}
	return t
}

// RunID derives a stable identifier from the parameters that influence the
// output and the ordered documents.
func (p *Pipeline) RunID(cluster string, docs []corpus.Document) string {
	h := sha256.New()
	field := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0x1f})
	}
	a := p.analysis
	field(p.version)
	field(cluster)
	field(strconv.Itoa(Threshold(a, len(docs))))
	field(strconv.Itoa(a.CandidateLimit))
	field(strconv.FormatBool(a.ForceLimit))
	field(a.ContainmentMode)
	field(a.IncidenceMode)
	for _, d := range docs {
		field(d.ID)
		field(d.Title)
		field(d.Abstract)
		field(d.Keywords)
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// Run mines docs. cluster only labels the run; filtering happens upstream.
func (p *Pipeline) Run(ctx context.Context, cluster string, docs []corpus.Document) (*Result, error) {
	runID := p.RunID(cluster, docs)
	ctx = logger.WithRunID(ctx, runID)
	log := logger.FromContext(ctx).With("component", "pipeline")
	ctx, root := tracing.StartSpan(ctx, "mining-run", runID)
	root.SetAttr("documents", len(docs))
	if cluster != "" {
		root.SetAttr("cluster", cluster)
	}

	res, err := p.run(ctx, runID, cluster, docs)
	if err != nil {
		root.Fail(err)
		root.Log(log)
		return nil, err
	}
	root.End()
	root.Log(log)
	res.Span = root
	res.Run.StageDurations = root.StageDurations()
	res.Run.CreatedAt = root.EndTime.UTC()
	log.Info("mining run finished",
		"documents", res.Run.Documents,
		"tokens", res.Run.Tokens,
		"threshold", res.Run.Threshold,
		"candidates", len(res.Table),
		"duration_ms", root.Duration.Milliseconds(),
	)
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, runID, cluster string, docs []corpus.Document) (*Result, error) {
	threshold := Threshold(p.analysis, len(docs))
	logger.FromContext(ctx).Info("mining run started",
		"documents", len(docs),
		"threshold", threshold,
		"candidate_limit", p.analysis.CandidateLimit,
	)

	var c *corpus.Corpus
	err := p.stage(ctx, StageTokenize, func(ctx context.Context, span *tracing.Span) error {
		var err error
		c, err = corpus.NewProcessor(p.tok, p.analysis.Workers).Process(ctx, docs)
		if err != nil {
			return err
		}
		span.SetAttr("warnings", len(c.Warnings))
		return nil
	})
	if err != nil {
		return nil, err
	}
	stream := c.Stream()

	var results []collocation.Result
	err = p.stage(ctx, StageScore, func(ctx context.Context, span *tracing.Span) error {
		var err error
		results, err = collocation.Process(ctx, stream, collocation.Options{
			Threshold:  threshold,
			Limit:      p.analysis.CandidateLimit,
			ForceLimit: p.analysis.ForceLimit,
		})
		span.SetAttr("tokens", len(stream))
		return err
	})
	if err != nil {
		return nil, err
	}

	var table candidate.Table
	err = p.stage(ctx, StageBuild, func(ctx context.Context, span *tracing.Span) error {
		var err error
		table, err = candidate.Build(results)
		span.SetAttr("candidates", len(table))
		return err
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, StageContainment, func(ctx context.Context, span *tracing.Span) error {
		candidate.AnalyzeContainment(table, p.matcher())
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, StageIncidence, func(ctx context.Context, span *tracing.Span) error {
		return candidate.CountIncidence(ctx, table, c.Blobs(), p.counter(ctx), p.analysis.Workers)
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, StageValidate, func(ctx context.Context, span *tracing.Span) error {
		return table.Validate()
	})
	if err != nil {
		return nil, err
	}

	var found *search.Result
	if p.analyzer != nil {
		err = p.stage(ctx, StageSearch, func(ctx context.Context, span *tracing.Span) error {
			r := p.analyzer.Analyze(docs)
			found = &r
			span.SetAttr("occurrences", len(r.Occurrences))
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	p.record(c, table)
	return &Result{
		Run: store.Run{
			ID:             runID,
			Cluster:        cluster,
			Documents:      len(docs),
			Tokens:         len(stream),
			Threshold:      threshold,
			CandidateLimit: p.analysis.CandidateLimit,
			Warnings:       len(c.Warnings),
		},
		Table:  table,
		Corpus: c,
		Search: found,
	}, nil
}

// stage runs fn inside a child span and reports its duration.
func (p *Pipeline) stage(ctx context.Context, name string, fn func(ctx context.Context, span *tracing.Span) error) error {
	ctx, span := tracing.StartChildSpan(ctx, name)
	start := time.Now()
	err := fn(ctx, span)
	if err != nil {
		span.Fail(err)
		return fmt.Errorf("%s stage: %w", name, err)
	}
	span.End()
	if p.metrics != nil {
		p.metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
	return nil
}

func (p *Pipeline) matcher() candidate.Matcher {
	if p.analysis.ContainmentMode == config.ContainmentTokenBoundary {
		return candidate.TokenMatch
	}
	return candidate.SubstringMatch
}

func (p *Pipeline) counter(ctx context.Context) candidate.Counter {
	if p.analysis.IncidenceMode == config.IncidencePattern {
		return candidate.PatternCounter{Logger: logger.FromContext(ctx).With("component", "incidence")}
	}
	return candidate.LiteralCounter{}
}

func (p *Pipeline) record(c *corpus.Corpus, table candidate.Table) {
	if p.metrics == nil {
		return
	}
	p.metrics.DocumentsProcessed.Add(float64(c.Len()))
	for _, w := range c.Warnings {
		p.metrics.DataQualityWarnings.WithLabelValues(w.Field).Inc()
	}
	counts := table.CountByOrder()
	for order := collocation.MinOrder; order <= collocation.MaxOrder; order++ {
		p.metrics.CandidatesByOrder.WithLabelValues(strconv.Itoa(order)).Set(float64(counts[order]))
	}
}
