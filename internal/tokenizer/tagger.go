package tokenizer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
)

// TaggedWord is one word of raw text with its universal POS category, before
// normalisation.
type TaggedWord struct {
	Text string
	POS  POS
}

// Tagger segments text into sentences of POS-tagged words.
type Tagger interface {
	Name() string
	Tag(text string) ([][]TaggedWord, error)
}

// ProseTagger tags with the averaged-perceptron model shipped with prose and
// folds its Penn Treebank tags onto the universal tagset.
type ProseTagger struct{}

func NewProseTagger() *ProseTagger {
	return &ProseTagger{}
}

func (p *ProseTagger) Name() string { return "prose" }

// Tag runs segmentation, tokenisation and tagging in one prose document and
// assigns each token to the sentence whose text contains it.
func (p *ProseTagger) Tag(text string) ([][]TaggedWord, error) {
	doc, err := prose.NewDocument(text, prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("prose document: %w", err)
	}
	sents := doc.Sentences()
	tokens := doc.Tokens()
	if len(sents) == 0 {
		sents = []prose.Sentence{{Text: text}}
	}
	out := make([][]TaggedWord, len(sents))
	cur, cursor := 0, 0
	for _, tok := range tokens {
		word := TaggedWord{Text: tok.Text, POS: FromPenn(tok.Tag)}
		for cur < len(sents)-1 && !strings.Contains(sents[cur].Text[cursor:], tok.Text) {
			cur++
			cursor = 0
		}
		if idx := strings.Index(sents[cur].Text[cursor:], tok.Text); idx >= 0 {
			cursor += idx + len(tok.Text)
		}
		out[cur] = append(out[cur], word)
	}
	return out, nil
}

// RuleTagger is a deterministic tagger built from closed-class word lists
// and suffix heuristics. It needs no model and is used offline and in tests.
type RuleTagger struct{}

func NewRuleTagger() *RuleTagger {
	return &RuleTagger{}
}

func (r *RuleTagger) Name() string { return "rules" }

var ruleWordPattern = regexp.MustCompile(`[\(\[][^\(\)\[\]]*[\)\]]|[\pL\pN]+(?:['’\-][\pL\pN]+)*|[^\s\pL\pN]`)

var closedClass = map[string]POS{}

func init() {
	lexicon := map[POS]string{
		Determiner:  "the a an this that these those some any each every no which whose all both another either neither",
		Adposition:  "of in on at by for with from into onto upon about against between through during before after above below under over within without among across toward towards via per than like along around behind beyond despite inside outside since throughout",
		Conjunction: "and or but nor yet if while although though because whereas unless whether",
		Pronoun:     "i me my mine myself we us our ours ourselves you your yours yourself he him his himself she her hers herself it its itself they them their theirs themselves who whom what",
		Particle:    "to up out off 's",
		Verb:        "is are was were be been being am has have had do does did can could will would shall should may might must",
		Adverb:      "not also very often however thus then here there now still already",
		Numeral:     "one two three four five six seven eight nine ten hundred thousand",
	}
	for pos, words := range lexicon {
		for _, w := range strings.Fields(words) {
			closedClass[w] = pos
		}
	}
}

var adjectiveSuffixes = []string{"ous", "ful", "able", "ible", "ive", "al", "ic", "less"}

// Tag splits text into words and ends a sentence after '.', '!' or '?'.
func (r *RuleTagger) Tag(text string) ([][]TaggedWord, error) {
	var sentences [][]TaggedWord
	var current []TaggedWord
	for _, w := range ruleWordPattern.FindAllString(text, -1) {
		tw := TaggedWord{Text: w, POS: ruleTag(w)}
		current = append(current, tw)
		if w == "." || w == "!" || w == "?" {
			sentences = append(sentences, current)
			current = nil
		}
	}
	if len(current) > 0 {
		sentences = append(sentences, current)
	}
	return sentences, nil
}

func ruleTag(word string) POS {
	lower := strings.ToLower(word)
	if pos, ok := closedClass[lower]; ok {
		return pos
	}
	runes := []rune(word)
	if len(runes) == 1 && (unicode.IsPunct(runes[0]) || unicode.IsSymbol(runes[0])) {
		return Punctuation
	}
	if isNumeric(lower) {
		return Numeral
	}
	switch {
	case strings.HasSuffix(lower, "ly"):
		return Adverb
	case strings.HasSuffix(lower, "ing"), strings.HasSuffix(lower, "ed"):
		return Verb
	}
	for _, suffix := range adjectiveSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return Adjective
		}
	}
	return Noun
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
