package collocation

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/errors"
)

func scenarioStream() []string {
	var stream []string
	for i := 0; i < 5; i++ {
		stream = append(stream, "assistive", "technology")
	}
	return append(stream, "the", "device")
}

func texts(rows []Scored) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Text()
	}
	return out
}

func TestUnigramsScenario(t *testing.T) {
	rows := Unigrams(scenarioStream(), 2)
	if got, want := texts(rows), []string{"assistive", "technology"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Unigrams() = %v, want %v", got, want)
	}
	for _, r := range rows {
		if r.Score != 5 {
			t.Errorf("%s: expected count 5, got %v", r.Text(), r.Score)
		}
	}
}

func TestUnigramsOrdering(t *testing.T) {
	stream := strings.Fields("zeta alpha zeta beta alpha gamma zeta")
	rows := Unigrams(stream, 1)
	want := []string{"zeta", "alpha", "beta", "gamma"}
	if got := texts(rows); !reflect.DeepEqual(got, want) {
		t.Errorf("expected count desc then first occurrence, got %v", got)
	}
}

func TestUnigramsLengthFloor(t *testing.T) {
	rows := Unigrams([]string{"ai", "ai", "ai", "vr", "map", "map"}, 1)
	if got := texts(rows); !reflect.DeepEqual(got, []string{"map"}) {
		t.Errorf("tokens of two runes or fewer must be dropped, got %v", got)
	}
	// Rune length, not byte length.
	rows = Unigrams([]string{"été"}, 1)
	if len(rows) != 1 {
		t.Errorf("three-rune token should be kept, got %v", rows)
	}
}

func TestBigramLikelihoodRatio(t *testing.T) {
	rows, err := ScoreOrder(strings.Fields("xx yy xx yy"), 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 bigrams, got %v", rows)
	}
	if rows[0].Text() != "xx yy" || math.Abs(rows[0].Score-8*math.Ln2) > 1e-9 {
		t.Errorf("expected (xx yy, 8ln2), got (%s, %v)", rows[0].Text(), rows[0].Score)
	}
	if rows[1].Text() != "yy xx" || math.Abs(rows[1].Score) > 1e-9 {
		t.Errorf("expected (yy xx, 0), got (%s, %v)", rows[1].Text(), rows[1].Score)
	}
}

func TestQuadgramLikelihoodRatio(t *testing.T) {
	stream := strings.Fields("aa bb cc dd aa bb cc dd aa bb ee dd cc aa bb cc dd ee")
	f, err := NewFinder(stream, 4)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		ngram string
		cont  []float64
		score float64
	}{
		{"aa bb cc dd", []float64{3, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 13}, 45.50466640604893},
		{"bb cc dd ee", []float64{1, 0, 0, 0, 0, 0, 0, 1, 2, 0, 1, 0, 0, 1, 0, 12}, 28.123189981465693},
		{"dd cc aa bb", []float64{1, 0, 0, 3, 0, 0, 0, 0, 0, 0, 0, 0, 0, 3, 3, 8}, 25.27039524294367},
	}
	for _, tt := range tests {
		t.Run(tt.ngram, func(t *testing.T) {
			cont := f.Contingency(strings.Fields(tt.ngram))
			if !reflect.DeepEqual(cont, tt.cont) {
				t.Fatalf("contingency = %v, want %v", cont, tt.cont)
			}
			if s := LikelihoodRatio(cont); math.Abs(s-tt.score) > 1e-9 {
				t.Errorf("score = %.12f, want %.12f", s, tt.score)
			}
		})
	}

	rows, err := ScoreOrder(stream, 4, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Text() != "aa bb cc dd" || math.Abs(rows[0].Score-tests[0].score) > 1e-9 {
		t.Errorf("expected only (aa bb cc dd, %v), got %v", tests[0].score, rows)
	}
}

func TestTieBreakByTokens(t *testing.T) {
	rows, err := ScoreOrder(strings.Fields("dd cc bb aa"), 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"bb aa", "cc bb", "dd cc"}
	if got := texts(rows); !reflect.DeepEqual(got, want) {
		t.Errorf("equal scores should sort by token tuple, got %v", got)
	}
}

func TestContingencyBigram(t *testing.T) {
	f, err := NewFinder(scenarioStream(), 2)
	if err != nil {
		t.Fatal(err)
	}
	got := f.Contingency([]string{"assistive", "technology"})
	want := []float64{5, 0, 0, 7}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Contingency() = %v, want %v", got, want)
	}
	got = f.Contingency([]string{"technology", "assistive"})
	want = []float64{4, 1, 1, 6}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Contingency() = %v, want %v", got, want)
	}
}

func TestContingencySumsToTotal(t *testing.T) {
	stream := strings.Fields("low vision aid for low vision users with low vision aid devices")
	for order := 2; order <= MaxOrder; order++ {
		f, err := NewFinder(stream, order)
		if err != nil {
			t.Fatal(err)
		}
		ngram := stream[:order]
		cont := f.Contingency(ngram)
		if len(cont) != 1<<order {
			t.Fatalf("order %d: expected %d cells, got %d", order, 1<<order, len(cont))
		}
		sum := 0.0
		for _, v := range cont {
			sum += v
		}
		if int(sum) != f.Total() {
			t.Errorf("order %d: cells sum to %v, want %d", order, sum, f.Total())
		}
		if int(cont[0]) != f.Count(ngram) {
			t.Errorf("order %d: first cell %v, want n-gram count %d", order, cont[0], f.Count(ngram))
		}
	}
}

func TestExpectedValuesIndependent(t *testing.T) {
	// A table that is exactly independent scores zero.
	cont := []float64{1, 1, 1, 1}
	exp := ExpectedValues(cont)
	for i, v := range exp {
		if v != 1 {
			t.Errorf("cell %d: expected 1, got %v", i, v)
		}
	}
	if s := LikelihoodRatio(cont); s != 0 {
		t.Errorf("expected 0, got %v", s)
	}
}

func TestFiltersDoNotChangeScores(t *testing.T) {
	stream := strings.Fields("aa b aa b cc dd cc dd aa b")
	plain, err := NewFinder(stream, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := LikelihoodRatio(plain.Contingency([]string{"cc", "dd"}))

	rows, err := ScoreOrder(stream, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range rows {
		for _, tok := range r.Tokens {
			if tok == "b" {
				t.Errorf("n-gram with a one-character token survived: %v", r.Tokens)
			}
		}
	}
	var found bool
	for _, r := range rows {
		if r.Text() == "cc dd" {
			found = true
			if r.Score != want {
				t.Errorf("filtering changed the score: %v vs %v", r.Score, want)
			}
		}
	}
	if !found {
		t.Errorf("expected cc dd to survive, got %v", texts(rows))
	}
}

func TestFrequencyFloor(t *testing.T) {
	stream := scenarioStream()
	for order := 2; order <= MaxOrder; order++ {
		f, err := NewFinder(stream, order)
		if err != nil {
			t.Fatal(err)
		}
		rows, err := ScoreOrder(stream, order, 2)
		if err != nil {
			t.Fatal(err)
		}
		for _, r := range rows {
			if c := f.Count(r.Tokens); c < 2 {
				t.Errorf("order %d: %s has count %d below the floor", order, r.Text(), c)
			}
		}
	}
}

func TestScoreOrderRejectsBadOrder(t *testing.T) {
	for _, order := range []int{0, 5, -1} {
		_, err := ScoreOrder([]string{"aa", "bb"}, order, 1)
		if !errors.Is(err, apperrors.ErrInvariantViolation) {
			t.Errorf("order %d: expected invariant violation, got %v", order, err)
		}
	}
	if _, err := NewFinder(nil, 1); !errors.Is(err, apperrors.ErrInvariantViolation) {
		t.Errorf("finder of order 1: expected invariant violation, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	rows := []Scored{{Score: 5}, {Score: 5}, {Score: 3}, {Score: 2}, {Score: 1}}
	tests := []struct {
		name   string
		limit  int
		force  bool
		method string
		want   int
	}{
		{"unlimited", 0, false, MethodRawFrequency, 5},
		{"grow to frequency tier", 2, false, MethodRawFrequency, 4},
		{"forced", 2, true, MethodRawFrequency, 2},
		{"likelihood ratio is not grown", 2, false, MethodLikelihoodRatio, 2},
		{"limit above length", 10, false, MethodLikelihoodRatio, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(rows, tt.limit, tt.force, tt.method, 2)
			if len(got) != tt.want {
				t.Errorf("expected %d rows, got %d", tt.want, len(got))
			}
		})
	}
}

func TestProcessScenario(t *testing.T) {
	results, err := Process(context.Background(), scenarioStream(), Options{Threshold: 2, Limit: 100})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 result sets, got %d", len(results))
	}
	for i, r := range results {
		if r.Order != i+1 {
			t.Errorf("result %d has order %d", i, r.Order)
		}
		if r.Method != MethodFor(r.Order) {
			t.Errorf("order %d: unexpected method %q", r.Order, r.Method)
		}
	}
	if got := texts(results[0].Rows); !reflect.DeepEqual(got, []string{"assistive", "technology"}) {
		t.Errorf("unexpected unigrams %v", got)
	}
	if got := texts(results[1].Rows); !reflect.DeepEqual(got, []string{"assistive technology", "technology assistive"}) {
		t.Errorf("unexpected bigrams %v", got)
	}
}

func TestProcessDeterministic(t *testing.T) {
	stream := strings.Fields("braille display braille reader screen reader braille display screen reader audio game braille display")
	first, err := Process(context.Background(), stream, Options{Threshold: 1})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := Process(context.Background(), stream, Options{Threshold: 1})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatal("Process is not deterministic")
		}
	}
}

func TestProcessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Process(ctx, scenarioStream(), Options{Threshold: 1}); err == nil {
		t.Error("expected error from cancelled context")
	}
}
