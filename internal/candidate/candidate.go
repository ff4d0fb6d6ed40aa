// Package candidate assembles the ranked n-grams of every order into a single
// table and annotates each row with containment and corpus incidence.
package candidate

import (
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/collocation"
	apperrors "github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/errors"
)

// ContainedInSeparator joins the contained-in list in tabular output.
const ContainedInSeparator = "; "

// Candidate is one potential multi-word expression.
type Candidate struct {
	Order             int      `json:"order"`
	Text              string   `json:"text"`
	Method            string   `json:"method"`
	Score             float64  `json:"score"`
	ContainedIn       []string `json:"contained_in"`
	ContainedInCount  int      `json:"contained_in_count"`
	DocumentIncidence int      `json:"document_incidence"`
	OccurrenceCount   int      `json:"occurrence_count"`
}

// Table holds candidates in order 1..4, each order in its own ranking.
type Table []Candidate

// Build appends the per-order results in ascending order. Duplicated texts
// across orders are kept.
func Build(results []collocation.Result) (Table, error) {
	n := 0
	for _, r := range results {
		n += len(r.Rows)
	}
	table := make(Table, 0, n)
	prev := 0
	for _, r := range results {
		if r.Order < collocation.MinOrder || r.Order > collocation.MaxOrder {
			return nil, apperrors.Newf(apperrors.ErrInvariantViolation, "candidate-set",
				"result set has order %d", r.Order)
		}
		if r.Order < prev {
			return nil, apperrors.Newf(apperrors.ErrInvariantViolation, "candidate-set",
				"result sets out of order: %d after %d", r.Order, prev)
		}
		prev = r.Order
		for _, row := range r.Rows {
			text := row.Text()
			if text == "" {
				return nil, apperrors.Newf(apperrors.ErrInvariantViolation, "candidate-set",
					"empty candidate text at order %d", r.Order)
			}
			table = append(table, Candidate{
				Order:  r.Order,
				Text:   text,
				Method: r.Method,
				Score:  row.Score,
			})
		}
	}
	return table, nil
}

// CountByOrder returns the number of candidates per order, indexed by order.
func (t Table) CountByOrder() [collocation.MaxOrder + 1]int {
	var counts [collocation.MaxOrder + 1]int
	for _, c := range t {
		counts[c.Order]++
	}
	return counts
}

// Validate checks the structural invariants of an annotated table.
func (t Table) Validate() error {
	orders := make(map[string][]int, len(t))
	for _, c := range t {
		orders[c.Text] = append(orders[c.Text], c.Order)
	}
	for i, c := range t {
		if c.Order < collocation.MinOrder || c.Order > collocation.MaxOrder {
			return apperrors.Newf(apperrors.ErrInvariantViolation, "validate",
				"row %d (%q) has order %d", i, c.Text, c.Order)
		}
		if c.Text == "" {
			return apperrors.Newf(apperrors.ErrInvariantViolation, "validate", "row %d has empty text", i)
		}
		if c.ContainedInCount != len(c.ContainedIn) {
			return apperrors.Newf(apperrors.ErrInvariantViolation, "validate",
				"row %d (%q): contained-in count %d but %d entries", i, c.Text, c.ContainedInCount, len(c.ContainedIn))
		}
		for _, higher := range c.ContainedIn {
			if !hasGreater(orders[higher], c.Order) {
				return apperrors.Newf(apperrors.ErrInvariantViolation, "validate",
					"row %d (%q): container %q is not of greater order", i, c.Text, higher)
			}
		}
		if c.DocumentIncidence > c.OccurrenceCount {
			return apperrors.Newf(apperrors.ErrInvariantViolation, "validate",
				"row %d (%q): incidence %d exceeds occurrences %d", i, c.Text, c.DocumentIncidence, c.OccurrenceCount)
		}
	}
	return nil
}

func hasGreater(orders []int, than int) bool {
	for _, o := range orders {
		if o > than {
			return true
		}
	}
	return false
}

// Header returns the column names of the tabular output.
func Header() []string {
	return []string{
		"order",
		"potential phrase",
		"method",
		"score",
		"contained-in",
		"contained-in count",
		"document incidence",
		"occurrence count",
	}
}

// Record renders c as a row matching Header.
func (c Candidate) Record() []string {
	return []string{
		strconv.Itoa(c.Order),
		c.Text,
		c.Method,
		strconv.FormatFloat(c.Score, 'g', -1, 64),
		strings.Join(c.ContainedIn, ContainedInSeparator),
		strconv.Itoa(c.ContainedInCount),
		strconv.Itoa(c.DocumentIncidence),
		strconv.Itoa(c.OccurrenceCount),
	}
}
