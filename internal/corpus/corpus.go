// Package corpus tokenizes documents into the three parallel title, abstract
// and keyword lists and derives the flat token stream and the per-document
// text blobs from them.
package corpus

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/errors"
)

// Document is one analysed record.
type Document struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Keywords string `json:"author_keywords"`
	Year     int    `json:"year,omitempty"`
	Cluster  string `json:"cluster,omitempty"`
}

// Field names used in warnings.
const (
	FieldTitle    = "title"
	FieldAbstract = "abstract"
	FieldKeywords = "author_keywords"
)

// TextTokenizer turns free text into sentences of kept tokens.
type TextTokenizer interface {
	Tokenize(ctx context.Context, text string) ([][]string, error)
}

// Corpus holds the tokenized documents. Titles, Abstracts and Keywords are
// parallel to Documents.
type Corpus struct {
	Documents []Document
	Titles    [][][]string
	Abstracts [][][]string
	Keywords  [][]string
	Warnings  []apperrors.Warning
}

func (c *Corpus) Len() int { return len(c.Documents) }

// Validate checks that the parallel lists line up.
func (c *Corpus) Validate() error {
	n := len(c.Documents)
	if len(c.Titles) != n || len(c.Abstracts) != n || len(c.Keywords) != n {
		return apperrors.Newf(apperrors.ErrInvariantViolation, "tokenize",
			"length mismatch: %d documents, %d titles, %d abstracts, %d keyword lists",
			n, len(c.Titles), len(c.Abstracts), len(c.Keywords))
	}
	return nil
}

// Stream concatenates title, abstract and keyword tokens of every document
// in corpus order.
func (c *Corpus) Stream() []string {
	var out []string
	for i := range c.Documents {
		out = append(out, tokenizer.Flatten(c.Titles[i])...)
		out = append(out, tokenizer.Flatten(c.Abstracts[i])...)
		out = append(out, c.Keywords[i]...)
	}
	return out
}

// Blobs renders each document as one text, title first, then abstract and
// keywords. Empty parts are skipped.
func (c *Corpus) Blobs() []string {
	out := make([]string, len(c.Documents))
	for i := range c.Documents {
		parts := make([]string, 0, 3)
		for _, p := range []string{
			tokenizer.Join(tokenizer.Flatten(c.Titles[i])),
			tokenizer.Join(tokenizer.Flatten(c.Abstracts[i])),
			tokenizer.Join(c.Keywords[i]),
		} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		out[i] = strings.Join(parts, " ")
	}
	return out
}

// FilterCluster returns the documents whose cluster equals cluster.
func FilterCluster(docs []Document, cluster string) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if d.Cluster == cluster {
			out = append(out, d)
		}
	}
	return out
}

// Processor tokenizes documents with a bounded number of goroutines. The
// output order always follows the input order.
type Processor struct {
	tok     TextTokenizer
	workers int
	logger  *slog.Logger
}

func NewProcessor(tok TextTokenizer, workers int) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{
		tok:     tok,
		workers: workers,
		logger:  slog.Default().With("component", "corpus-processor"),
	}
}

type docResult struct {
	title    [][]string
	abstract [][]string
	keywords []string
	warnings []apperrors.Warning
}

// Process tokenizes docs. A tokenizer failure aborts the run with the
// offending document attached.
func (p *Processor) Process(ctx context.Context, docs []Document) (*Corpus, error) {
	results := make([]docResult, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range docs {
		i := i
		g.Go(func() error {
			r, err := p.processOne(gctx, docs[i])
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := &Corpus{
		Documents: docs,
		Titles:    make([][][]string, len(docs)),
		Abstracts: make([][][]string, len(docs)),
		Keywords:  make([][]string, len(docs)),
	}
	for i, r := range results {
		c.Titles[i] = r.title
		c.Abstracts[i] = r.abstract
		c.Keywords[i] = r.keywords
		c.Warnings = append(c.Warnings, r.warnings...)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	for _, w := range c.Warnings {
		p.logger.Debug("data quality", "document", w.DocumentID, "field", w.Field, "message", w.Message)
	}
	if len(c.Warnings) > 0 {
		p.logger.Warn("documents with empty fields", "warnings", len(c.Warnings), "documents", len(docs))
	}
	return c, nil
}

func (p *Processor) processOne(ctx context.Context, d Document) (docResult, error) {
	var r docResult
	var err error
	r.title, err = p.tok.Tokenize(ctx, d.Title)
	if err != nil {
		return r, &apperrors.AppError{Err: err, Stage: "tokenize", DocumentID: d.ID, Message: "tokenizing title"}
	}
	r.abstract, err = p.tok.Tokenize(ctx, tokenizer.RemoveSponsor(d.Abstract))
	if err != nil {
		return r, &apperrors.AppError{Err: err, Stage: "tokenize", DocumentID: d.ID, Message: "tokenizing abstract"}
	}
	r.keywords = tokenizer.KeywordTokens(d.Keywords)

	check := func(field, raw string, empty bool) {
		if !empty {
			return
		}
		msg := "field is empty"
		if strings.TrimSpace(raw) != "" {
			msg = "no tokens left after filtering"
		}
		r.warnings = append(r.warnings, apperrors.Warning{DocumentID: d.ID, Field: field, Message: msg})
	}
	check(FieldTitle, d.Title, len(tokenizer.Flatten(r.title)) == 0)
	check(FieldAbstract, d.Abstract, len(tokenizer.Flatten(r.abstract)) == 0)
	check(FieldKeywords, d.Keywords, len(r.keywords) == 0)
	return r, nil
}
