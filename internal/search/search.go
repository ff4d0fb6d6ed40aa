// Package search finds named keyword patterns in the title, abstract and
// author-keyword fields of documents.
package search

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/errors"
)

// Selectors lists the accepted column selectors.
var Selectors = []string{"TAK", "TA", "T", "A", "K"}

// Field is one searchable document field.
type Field string

const (
	Title    Field = "title"
	Abstract Field = "abstract"
	Keywords Field = "author_keywords"
)

// ParseColumns maps a selector such as "TA" to the fields it covers, in
// title, abstract, keywords order.
func ParseColumns(selector string) ([]Field, error) {
	if selector == "" {
		return nil, apperrors.New(apperrors.ErrConfiguration, "search", "no search columns selected")
	}
	known := false
	for _, s := range Selectors {
		if s == selector {
			known = true
			break
		}
	}
	if !known {
		return nil, apperrors.Newf(apperrors.ErrConfiguration, "search",
			"unknown search selector %q, must be one of %s", selector, strings.Join(Selectors, ", "))
	}
	var fields []Field
	if strings.Contains(selector, "T") {
		fields = append(fields, Title)
	}
	if strings.Contains(selector, "A") {
		fields = append(fields, Abstract)
	}
	if strings.Contains(selector, "K") {
		fields = append(fields, Keywords)
	}
	return fields, nil
}

// Occurrence is one pattern match in one document.
type Occurrence struct {
	DocumentID string `json:"document_id"`
	Year       int    `json:"year"`
	Keyword    string `json:"keyword"`
	Term       string `json:"term"`
}

// Header returns the column names of occurrence output.
func Header() []string {
	return []string{"document", "year", "keyword", "term"}
}

func (o Occurrence) Record() []string {
	return []string{o.DocumentID, strconv.Itoa(o.Year), o.Keyword, o.Term}
}

// Tally summarises the matches of one keyword.
type Tally struct {
	Keyword     string
	Documents   int
	Occurrences int
}

// Result is the outcome of a search over a document set.
type Result struct {
	Occurrences    []Occurrence
	WithoutMention []corpus.Document
	Tallies        []Tally
}

// Analyzer holds the compiled alternation of all keyword patterns.
type Analyzer struct {
	fields []Field
	re     *regexp.Regexp
	names  []string
	groups map[int]string
}

// NewAnalyzer validates the selector and compiles the patterns into
// (?P<name>pattern)|... in configuration order.
func NewAnalyzer(selector string, patterns []config.KeywordPattern) (*Analyzer, error) {
	fields, err := ParseColumns(selector)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return nil, apperrors.New(apperrors.ErrConfiguration, "search", "no keyword patterns configured")
	}
	names := make([]string, 0, len(patterns))
	alts := make([]string, 0, len(patterns))
	seen := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		if seen[p.Name] {
			return nil, apperrors.Newf(apperrors.ErrConfiguration, "search", "duplicate keyword name %q", p.Name)
		}
		seen[p.Name] = true
		names = append(names, p.Name)
		alts = append(alts, fmt.Sprintf("(?P<%s>%s)", p.Name, p.Pattern))
	}
	re, err := regexp.Compile(strings.Join(alts, "|"))
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrConfiguration, "search", "compiling keyword patterns: %v", err)
	}
	groups := make(map[int]string, len(names))
	for i, name := range re.SubexpNames() {
		if seen[name] {
			groups[i] = name
		}
	}
	return &Analyzer{fields: fields, re: re, names: names, groups: groups}, nil
}

// Fields returns the fields searched.
func (a *Analyzer) Fields() []Field { return a.fields }

// Pattern returns the combined expression.
func (a *Analyzer) Pattern() string { return a.re.String() }

// SearchText joins the selected fields of d with ". " and lower-cases it.
func (a *Analyzer) SearchText(d corpus.Document) string {
	parts := make([]string, 0, len(a.fields))
	for _, f := range a.fields {
		switch f {
		case Title:
			parts = append(parts, d.Title)
		case Abstract:
			parts = append(parts, d.Abstract)
		case Keywords:
			parts = append(parts, d.Keywords)
		}
	}
	return strings.ToLower(strings.Join(parts, ". "))
}

// Analyze scans every document and collects occurrences in document order.
func (a *Analyzer) Analyze(docs []corpus.Document) Result {
	var res Result
	type counts struct{ docs, occ int }
	perKeyword := make(map[string]*counts, len(a.names))
	for _, n := range a.names {
		perKeyword[n] = &counts{}
	}
	for _, d := range docs {
		text := a.SearchText(d)
		matches := a.re.FindAllStringSubmatchIndex(text, -1)
		if len(matches) == 0 {
			res.WithoutMention = append(res.WithoutMention, d)
			continue
		}
		inDoc := make(map[string]bool)
		for _, m := range matches {
			name := a.groupOf(m)
			res.Occurrences = append(res.Occurrences, Occurrence{
				DocumentID: d.ID,
				Year:       d.Year,
				Keyword:    name,
				Term:       text[m[0]:m[1]],
			})
			if c, ok := perKeyword[name]; ok {
				c.occ++
				if !inDoc[name] {
					inDoc[name] = true
					c.docs++
				}
			}
		}
	}
	for _, n := range a.names {
		res.Tallies = append(res.Tallies, Tally{Keyword: n, Documents: perKeyword[n].docs, Occurrences: perKeyword[n].occ})
	}
	return res
}

// groupOf returns the name of the keyword alternative that produced m.
func (a *Analyzer) groupOf(m []int) string {
	for i := 1; 2*i+1 < len(m); i++ {
		if m[2*i] < 0 {
			continue
		}
		if name, ok := a.groups[i]; ok {
			return name
		}
	}
	return ""
}
