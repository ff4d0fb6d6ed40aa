package tokenizer

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// KeywordSeparator is the token inserted between two author keywords.
const KeywordSeparator = ";"

var keywordCleaner = strings.NewReplacer("-", " ", ".", "")

// KeywordTokens turns an author-keyword field such as
// "Color to gray; probabilistic graphical model; visual cue." into
// ["color to gray", ";", "probabilistic graphical model", ";", "visual cue"].
// Each keyword stays a single token. Keywords that are empty after cleaning
// are dropped together with their separator.
func KeywordTokens(field string) []string {
	field = strings.ToLower(norm.NFC.String(field))
	if strings.TrimSpace(field) == "" {
		return nil
	}
	parts := strings.Split(field, "; ")
	keywords := make([]string, 0, len(parts))
	for _, kw := range parts {
		kw = keywordCleaner.Replace(kw)
		kw = bracketPattern.ReplaceAllString(kw, "")
		kw = strings.TrimSpace(kw)
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	tokens := make([]string, 0, 2*len(keywords))
	for i, kw := range keywords {
		if i > 0 {
			tokens = append(tokens, KeywordSeparator)
		}
		tokens = append(tokens, kw)
	}
	return tokens
}
