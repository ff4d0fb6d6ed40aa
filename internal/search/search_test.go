package search

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/errors"
)

var patterns = []config.KeywordPattern{
	{Name: "pvi", Pattern: `visual(ly)? impair\w*`},
	{Name: "braille", Pattern: `braille`},
}

func docs() []corpus.Document {
	return []corpus.Document{
		{ID: "d1", Year: 2019, Title: "Braille for the Visually Impaired", Abstract: "Refreshable braille displays"},
		{ID: "d2", Year: 2020, Title: "Audio games", Abstract: "Sound only."},
		{ID: "d3", Year: 2021, Title: "Maps", Keywords: "Braille; tactile"},
	}
}

func TestParseColumns(t *testing.T) {
	tests := []struct {
		selector string
		want     []Field
	}{
		{"TAK", []Field{Title, Abstract, Keywords}},
		{"TA", []Field{Title, Abstract}},
		{"T", []Field{Title}},
		{"A", []Field{Abstract}},
		{"K", []Field{Keywords}},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			got, err := ParseColumns(tt.selector)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseColumns(%q) = %v, want %v", tt.selector, got, tt.want)
			}
		})
	}
}

func TestParseColumnsRejects(t *testing.T) {
	for _, sel := range []string{"", "TK", "tak", "X", "TAKX"} {
		if _, err := ParseColumns(sel); !errors.Is(err, apperrors.ErrConfiguration) {
			t.Errorf("ParseColumns(%q): expected configuration error, got %v", sel, err)
		}
	}
}

func TestNewAnalyzerRejects(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		patterns []config.KeywordPattern
	}{
		{"bad selector", "KT", patterns},
		{"no patterns", "TAK", nil},
		{"bad expression", "TAK", []config.KeywordPattern{{Name: "x", Pattern: "("}}},
		{"duplicate name", "TAK", []config.KeywordPattern{{Name: "x", Pattern: "a"}, {Name: "x", Pattern: "b"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAnalyzer(tt.selector, tt.patterns); !errors.Is(err, apperrors.ErrConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestSearchText(t *testing.T) {
	a, err := NewAnalyzer("TA", patterns)
	if err != nil {
		t.Fatal(err)
	}
	got := a.SearchText(docs()[0])
	want := "braille for the visually impaired. refreshable braille displays"
	if got != want {
		t.Errorf("SearchText() = %q, want %q", got, want)
	}
	if a.Pattern() != `(?P<pvi>visual(ly)? impair\w*)|(?P<braille>braille)` {
		t.Errorf("unexpected pattern %q", a.Pattern())
	}
}

func TestAnalyze(t *testing.T) {
	a, err := NewAnalyzer("TAK", patterns)
	if err != nil {
		t.Fatal(err)
	}
	res := a.Analyze(docs())
	want := []Occurrence{
		{DocumentID: "d1", Year: 2019, Keyword: "braille", Term: "braille"},
		{DocumentID: "d1", Year: 2019, Keyword: "pvi", Term: "visually impaired"},
		{DocumentID: "d1", Year: 2019, Keyword: "braille", Term: "braille"},
		{DocumentID: "d3", Year: 2021, Keyword: "braille", Term: "braille"},
	}
	if !reflect.DeepEqual(res.Occurrences, want) {
		t.Errorf("Occurrences = %+v, want %+v", res.Occurrences, want)
	}
	if len(res.WithoutMention) != 1 || res.WithoutMention[0].ID != "d2" {
		t.Errorf("unexpected documents without mention %+v", res.WithoutMention)
	}
	wantTallies := []Tally{
		{Keyword: "pvi", Documents: 1, Occurrences: 1},
		{Keyword: "braille", Documents: 2, Occurrences: 3},
	}
	if !reflect.DeepEqual(res.Tallies, wantTallies) {
		t.Errorf("Tallies = %+v, want %+v", res.Tallies, wantTallies)
	}
}

func TestAnalyzeTitleOnly(t *testing.T) {
	a, err := NewAnalyzer("T", patterns)
	if err != nil {
		t.Fatal(err)
	}
	res := a.Analyze(docs())
	if len(res.Occurrences) != 2 {
		t.Errorf("expected 2 title occurrences, got %+v", res.Occurrences)
	}
	if len(res.WithoutMention) != 2 {
		t.Errorf("expected d2 and d3 without mention, got %+v", res.WithoutMention)
	}
}

func TestOccurrenceRecord(t *testing.T) {
	o := Occurrence{DocumentID: "d1", Year: 2019, Keyword: "pvi", Term: "visually impaired"}
	if got := o.Record(); !reflect.DeepEqual(got, []string{"d1", "2019", "pvi", "visually impaired"}) {
		t.Errorf("Record() = %v", got)
	}
	if len(Header()) != 4 {
		t.Errorf("unexpected header %v", Header())
	}
}
