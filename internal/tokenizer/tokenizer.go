// Package tokenizer turns raw title, abstract and keyword text into the
// normalised token sequences the collocation scorer consumes. Text is split
// into sentences and POS-tagged words, lower-cased, and passed through an
// ordered exclusion table that removes function words, inner punctuation,
// stop words and bracketed acronyms.
package tokenizer

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Token is a lower-cased word or punctuation unit with its POS category.
type Token struct {
	Text string `json:"text"`
	POS  POS    `json:"pos"`
}

// NewToken normalises a tagged word into a Token.
func NewToken(word TaggedWord) Token {
	return Token{Text: strings.ToLower(word.Text), POS: word.POS}
}

// Sentence is an ordered sequence of kept tokens.
type Sentence []Token

// Texts returns the token texts of s.
func (s Sentence) Texts() []string {
	out := make([]string, len(s))
	for i, t := range s {
		out[i] = t.Text
	}
	return out
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithExcludeHook registers fn to be called with the rule name of every
// excluded token.
func WithExcludeHook(fn func(rule string)) Option {
	return func(t *Tokenizer) { t.onExclude = fn }
}

// Tokenizer applies tagging and the exclusion table. It holds no per-call
// state and is safe for concurrent use when its Tagger is.
type Tokenizer struct {
	tagger    Tagger
	onExclude func(rule string)
}

func New(tagger Tagger, opts ...Option) *Tokenizer {
	t := &Tokenizer{tagger: tagger}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Version identifies the tokenisation behaviour, used to key caches.
func (t *Tokenizer) Version() string {
	return "tak-v1/" + t.tagger.Name()
}

// Sentences tags text and returns its sentences of kept tokens.
func (t *Tokenizer) Sentences(text string) ([]Sentence, error) {
	text = norm.NFC.String(text)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	tagged, err := t.tagger.Tag(text)
	if err != nil {
		return nil, err
	}
	sentences := make([]Sentence, 0, len(tagged))
	for _, words := range tagged {
		kept := make(Sentence, 0, len(words))
		for _, w := range words {
			tok := NewToken(w)
			if rule := Exclude(tok); rule != "" {
				if t.onExclude != nil {
					t.onExclude(rule)
				}
				continue
			}
			kept = append(kept, tok)
		}
		sentences = append(sentences, kept)
	}
	return sentences, nil
}

// Tokenize is Sentences reduced to token texts.
func (t *Tokenizer) Tokenize(ctx context.Context, text string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sentences, err := t.Sentences(text)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(sentences))
	for i, s := range sentences {
		out[i] = s.Texts()
	}
	return out, nil
}

// Flatten concatenates sentences into one token sequence.
func Flatten(sentences [][]string) []string {
	n := 0
	for _, s := range sentences {
		n += len(s)
	}
	out := make([]string, 0, n)
	for _, s := range sentences {
		out = append(out, s...)
	}
	return out
}

// Join renders tokens as text, with a space before every token that is not
// a separator punctuation mark.
func Join(tokens []string) string {
	var b strings.Builder
	for i, tok := range tokens {
		b.WriteString(tok)
		if i+1 < len(tokens) && !IsSeparator(tokens[i+1]) {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
