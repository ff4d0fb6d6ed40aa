package tokenizer

// POS is a coarse part-of-speech category of the universal tagset.
type POS string

const (
	Adjective   POS = "ADJ"
	Adposition  POS = "ADP"
	Adverb      POS = "ADV"
	Conjunction POS = "CONJ"
	Determiner  POS = "DET"
	Noun        POS = "NOUN"
	Numeral     POS = "NUM"
	Particle    POS = "PRT"
	Pronoun     POS = "PRON"
	Verb        POS = "VERB"
	Punctuation POS = "."
	Other       POS = "X"
)

// pennToUniversal folds Penn Treebank tags onto the universal tagset.
var pennToUniversal = map[string]POS{
	"!": Punctuation, "#": Punctuation, "$": Punctuation, "''": Punctuation,
	"``": Punctuation, "(": Punctuation, ")": Punctuation, ",": Punctuation,
	"-LRB-": Punctuation, "-RRB-": Punctuation, ".": Punctuation,
	":": Punctuation, "?": Punctuation,

	"CC": Conjunction,
	"CD": Numeral,
	"DT": Determiner, "EX": Determiner, "PDT": Determiner, "WDT": Determiner,
	"FW": Other, "LS": Other, "SYM": Other, "UH": Other,
	"IN": Adposition,
	"JJ": Adjective, "JJR": Adjective, "JJS": Adjective,
	"MD": Verb, "VB": Verb, "VBD": Verb, "VBG": Verb, "VBN": Verb, "VBP": Verb, "VBZ": Verb,
	"NN": Noun, "NNP": Noun, "NNPS": Noun, "NNS": Noun,
	"POS": Particle, "RP": Particle, "TO": Particle,
	"PRP": Pronoun, "PRP$": Pronoun, "WP": Pronoun, "WP$": Pronoun,
	"RB": Adverb, "RBR": Adverb, "RBS": Adverb, "WRB": Adverb,
}

// FromPenn maps a Penn Treebank tag to its universal category. Unknown tags
// map to Other.
func FromPenn(tag string) POS {
	if pos, ok := pennToUniversal[tag]; ok {
		return pos
	}
	return Other
}

// functionPOS are the categories excluded from the analysis stream.
var functionPOS = map[POS]struct{}{
	Adposition:  {},
	Conjunction: {},
	Determiner:  {},
	Numeral:     {},
	Particle:    {},
	Pronoun:     {},
}

// separators are the sentence-level punctuation marks that stay in the
// stream so that n-gram windows see clause boundaries.
var separators = map[string]struct{}{
	"!": {}, ",": {}, ".": {}, ":": {}, ";": {}, "?": {},
}

// IsSeparator reports whether s is one of the sentence-level separators.
func IsSeparator(s string) bool {
	_, ok := separators[s]
	return ok
}
