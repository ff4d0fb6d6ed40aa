package tokenizer

import (
	"regexp"
	"unicode/utf8"
)

// bracketPattern matches parenthesised or bracketed content such as "(PVI)".
var bracketPattern = regexp.MustCompile(`[\(\[].*?[\)\]]`)

// Rule excludes a token from the analysis stream when Match returns true.
type Rule struct {
	Name  string
	Match func(Token) bool
}

// Rule names, reported to exclusion hooks and metrics.
const (
	RuleShortToken       = "short-token"
	RuleFunctionWord     = "function-word"
	RuleInnerPunctuation = "inner-punctuation"
	RuleStopWord         = "stop-word"
	RuleAcronym          = "acronym"
)

// Rules is the ordered exclusion table; the first matching rule wins and a
// token matching none of them is kept.
var Rules = []Rule{
	{
		Name: RuleShortToken,
		Match: func(t Token) bool {
			return t.POS != Punctuation && utf8.RuneCountInString(t.Text) < 2
		},
	},
	{
		Name: RuleFunctionWord,
		Match: func(t Token) bool {
			_, ok := functionPOS[t.POS]
			return ok
		},
	},
	{
		Name: RuleInnerPunctuation,
		Match: func(t Token) bool {
			return t.POS == Punctuation && !IsSeparator(t.Text)
		},
	},
	{
		Name:  RuleStopWord,
		Match: func(t Token) bool { return IsStopWord(t.Text) },
	},
	{
		Name:  RuleAcronym,
		Match: func(t Token) bool { return bracketPattern.MatchString(t.Text) },
	},
}

// Exclude returns the name of the first rule that excludes t, or "" when t
// is kept.
func Exclude(t Token) string {
	for _, rule := range Rules {
		if rule.Match(t) {
			return rule.Name
		}
	}
	return ""
}

// Keep reports whether t survives the exclusion table.
func Keep(t Token) bool {
	return Exclude(t) == ""
}

// Filter returns the tokens of in that survive the exclusion table.
func Filter(in []Token) []Token {
	out := make([]Token, 0, len(in))
	for _, t := range in {
		if Keep(t) {
			out = append(out, t)
		}
	}
	return out
}
