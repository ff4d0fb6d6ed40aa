package candidate

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/collocation"
	apperrors "github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/errors"
)

func row(score float64, tokens ...string) collocation.Scored {
	return collocation.Scored{Tokens: tokens, Score: score}
}

func sampleResults() []collocation.Result {
	return []collocation.Result{
		{Order: 1, Method: collocation.MethodRawFrequency, Rows: []collocation.Scored{row(9, "vision"), row(4, "art")}},
		{Order: 2, Method: collocation.MethodLikelihoodRatio, Rows: []collocation.Scored{row(12.5, "low", "vision"), row(3, "smart", "phone")}},
		{Order: 3, Method: collocation.MethodLikelihoodRatio, Rows: []collocation.Scored{row(7.25, "low", "vision", "aid")}},
		{Order: 4, Method: collocation.MethodLikelihoodRatio},
	}
}

func TestBuildKeepsOrderAndRanking(t *testing.T) {
	table, err := Build(sampleResults())
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, c := range table {
		got = append(got, c.Text)
	}
	want := []string{"vision", "art", "low vision", "smart phone", "low vision aid"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Build() texts = %v, want %v", got, want)
	}
	if table[0].Method != collocation.MethodRawFrequency || table[2].Method != collocation.MethodLikelihoodRatio {
		t.Errorf("unexpected methods %q, %q", table[0].Method, table[2].Method)
	}
	counts := table.CountByOrder()
	if counts[1] != 2 || counts[2] != 2 || counts[3] != 1 || counts[4] != 0 {
		t.Errorf("unexpected per-order counts %v", counts)
	}
}

func TestBuildRejectsBadOrder(t *testing.T) {
	_, err := Build([]collocation.Result{{Order: 5, Rows: []collocation.Scored{row(1, "a", "b", "c", "d", "e")}}})
	if !errors.Is(err, apperrors.ErrInvariantViolation) {
		t.Errorf("expected invariant violation, got %v", err)
	}
}

func TestContainmentScenario(t *testing.T) {
	table, err := Build([]collocation.Result{
		{Order: 1, Method: collocation.MethodRawFrequency, Rows: []collocation.Scored{row(3, "vision")}},
		{Order: 3, Method: collocation.MethodLikelihoodRatio, Rows: []collocation.Scored{row(2, "low", "vision", "aid")}},
	})
	if err != nil {
		t.Fatal(err)
	}
	AnalyzeContainment(table, SubstringMatch)
	if table[0].ContainedInCount != 1 || !reflect.DeepEqual(table[0].ContainedIn, []string{"low vision aid"}) {
		t.Errorf("unexpected containment %+v", table[0])
	}
	if table[1].ContainedInCount != 0 {
		t.Errorf("highest order should not be contained, got %+v", table[1])
	}
}

func TestContainmentModes(t *testing.T) {
	tests := []struct {
		name  string
		match Matcher
		art   []string
	}{
		{"substring", SubstringMatch, []string{"smart phone"}},
		{"token boundary", TokenMatch, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Build(sampleResults())
			if err != nil {
				t.Fatal(err)
			}
			AnalyzeContainment(table, tt.match)
			if !reflect.DeepEqual(table[1].ContainedIn, tt.art) {
				t.Errorf("art contained in %v, want %v", table[1].ContainedIn, tt.art)
			}
			want := []string{"low vision", "low vision aid"}
			if !reflect.DeepEqual(table[0].ContainedIn, want) {
				t.Errorf("vision contained in %v, want %v", table[0].ContainedIn, want)
			}
			if err := table.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestIncidenceScenario(t *testing.T) {
	blobs := []string{
		"eye tracking for low vision readers",
		"screen magnifiers and eye tracking. eye tracking calibration",
		"braille displays",
	}
	tests := []struct {
		name    string
		counter Counter
	}{
		{"literal", LiteralCounter{}},
		{"pattern", PatternCounter{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := Table{{Order: 2, Text: "eye tracking"}}
			if err := CountIncidence(context.Background(), table, blobs, tt.counter, 2); err != nil {
				t.Fatal(err)
			}
			if table[0].DocumentIncidence != 2 || table[0].OccurrenceCount != 3 {
				t.Errorf("expected incidence 2 and occurrences 3, got %d and %d",
					table[0].DocumentIncidence, table[0].OccurrenceCount)
			}
		})
	}
}

func TestIncidenceLiteralIgnoresMetacharacters(t *testing.T) {
	blobs := []string{"visual impairment (vi) study", "vi study"}
	literal := Table{{Order: 1, Text: "(vi)"}}
	if err := CountIncidence(context.Background(), literal, blobs, LiteralCounter{}, 0); err != nil {
		t.Fatal(err)
	}
	if literal[0].DocumentIncidence != 1 || literal[0].OccurrenceCount != 1 {
		t.Errorf("literal: got %+v", literal[0])
	}
	pattern := Table{{Order: 1, Text: "(vi)"}}
	if err := CountIncidence(context.Background(), pattern, blobs, PatternCounter{}, 0); err != nil {
		t.Fatal(err)
	}
	// As a pattern the group matches every "vi", including the one in "visual".
	if pattern[0].DocumentIncidence != 2 || pattern[0].OccurrenceCount != 3 {
		t.Errorf("pattern: got %+v", pattern[0])
	}
}

func TestPatternCounterFallsBackToLiteral(t *testing.T) {
	docs, occ := PatternCounter{}.Count("(pvi", []string{"low vision (pvi", "none"})
	if docs != 1 || occ != 1 {
		t.Errorf("expected literal fallback 1/1, got %d/%d", docs, occ)
	}
}

func TestIncidenceBound(t *testing.T) {
	blobs := []string{"aid aid aid", "aid", "", "first aid kit aid"}
	table := Table{{Order: 1, Text: "aid"}, {Order: 1, Text: "kit"}, {Order: 1, Text: "none"}}
	if err := CountIncidence(context.Background(), table, blobs, LiteralCounter{}, 1); err != nil {
		t.Fatal(err)
	}
	for _, c := range table {
		if c.DocumentIncidence > c.OccurrenceCount {
			t.Errorf("%s: incidence %d exceeds occurrences %d", c.Text, c.DocumentIncidence, c.OccurrenceCount)
		}
	}
	if table[0].DocumentIncidence != 3 || table[0].OccurrenceCount != 6 {
		t.Errorf("unexpected counts for aid: %+v", table[0])
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name  string
		table Table
	}{
		{"order", Table{{Order: 0, Text: "x"}}},
		{"empty text", Table{{Order: 1}}},
		{"count mismatch", Table{{Order: 1, Text: "aid", ContainedIn: []string{"first aid"}}, {Order: 2, Text: "first aid"}}},
		{"container not higher", Table{{Order: 2, Text: "aid kit", ContainedIn: []string{"aid kit"}, ContainedInCount: 1}}},
		{"incidence bound", Table{{Order: 1, Text: "aid", DocumentIncidence: 2, OccurrenceCount: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.table.Validate(); !errors.Is(err, apperrors.ErrInvariantViolation) {
				t.Errorf("expected invariant violation, got %v", err)
			}
		})
	}
}

func TestRecord(t *testing.T) {
	c := Candidate{
		Order:             1,
		Text:              "vision",
		Method:            collocation.MethodRawFrequency,
		Score:             9,
		ContainedIn:       []string{"low vision", "low vision aid"},
		ContainedInCount:  2,
		DocumentIncidence: 7,
		OccurrenceCount:   11,
	}
	want := []string{"1", "vision", "raw frequency", "9", "low vision; low vision aid", "2", "7", "11"}
	if got := c.Record(); !reflect.DeepEqual(got, want) {
		t.Errorf("Record() = %v, want %v", got, want)
	}
	if len(Header()) != len(want) {
		t.Errorf("header has %d columns, record %d", len(Header()), len(want))
	}
}
