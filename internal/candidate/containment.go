package candidate

import "strings"

// Matcher reports whether container holds text.
type Matcher func(container, text string) bool

// SubstringMatch is plain case-sensitive substring containment, so "art"
// is found inside "smart phone".
func SubstringMatch(container, text string) bool {
	return strings.Contains(container, text)
}

// TokenMatch only accepts text as a whole run of space-separated tokens of
// container.
func TokenMatch(container, text string) bool {
	return strings.Contains(" "+container+" ", " "+text+" ")
}

// AnalyzeContainment fills ContainedIn with every row of strictly greater
// order whose text matches, in table order.
func AnalyzeContainment(t Table, match Matcher) {
	for i := range t {
		var in []string
		for j := range t {
			if t[j].Order > t[i].Order && match(t[j].Text, t[i].Text) {
				in = append(in, t[j].Text)
			}
		}
		t[i].ContainedIn = in
		t[i].ContainedInCount = len(in)
	}
}
