package hebrew

// Affix and stop-word tables, written in everyday orthography (final
// letters included where a reader expects them). All lookups happen
// after final-form mapping, so init rewrites each table through
// mapFinal before use.

// prefixLetters are single-letter particles glued to the front of Hebrew
// words: ב (in), ל (to), מ (from), ש (that), ה (the), ו (and), כ (as).
var prefixLetters = map[rune]struct{}{
	'ב': {}, 'ל': {}, 'מ': {}, 'ש': {}, 'ה': {}, 'ו': {}, 'כ': {},
}

// suffixSource lists strippable suffixes longest first, so plural and
// possessive endings win over their single-letter tails.
var suffixSource = []string{
	"ים", "ות", "נו", "כם", "הן",
	"ה", "י", "ך",
}

// stopSource lists common Hebrew function words: pronouns, conjunctions
// and particles that carry no retrieval value.
var stopSource = []string{
	"אני", "אתה", "את", "הוא", "היא",
	"אנחנו", "אתם", "הם", "הן",
	"של", "עם", "על", "אל",
	"לא", "כן", "זה", "זאת",
	"אם", "כי", "גם", "רק", "או", "אבל",
	"יש", "אין", "היה", "היתה",
	"מה", "מי", "כל", "אשר",
}

var (
	suffixes  [][]rune
	stopTerms map[string]struct{}
)

func init() {
	suffixes = make([][]rune, len(suffixSource))
	for i, s := range suffixSource {
		suffixes[i] = mapFinals([]rune(s))
	}

	stopTerms = make(map[string]struct{}, len(stopSource))
	for _, s := range stopSource {
		stopTerms[string(mapFinals([]rune(s)))] = struct{}{}
	}
}

func mapFinals(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = mapFinal(r)
	}
	return out
}
