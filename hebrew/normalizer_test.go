package hebrew

import (
	"testing"
)

func terms(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Term
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "prefix and suffix stripped",
			text: "בדיקה",
			want: []string{"דיק"},
		},
		{
			name: "niqqud stripped",
			text: "בְּדִיקָה",
			want: []string{"דיק"},
		},
		{
			name: "definite article stripped",
			text: "הנדסית",
			want: []string{"נדסית"},
		},
		{
			name: "plural suffix after final mapping",
			text: "ספרים",
			want: []string{"ספר"},
		},
		{
			name: "possessive plural suffix",
			text: "ספרכם",
			want: []string{"ספר"},
		},
		{
			name: "one suffix at most",
			text: "ילדיהן",
			want: []string{"ילדי"},
		},
		{
			name: "stop word dropped",
			text: "הוא הלך",
			want: []string{"לכ"},
		},
		{
			name: "prefixed stop word dropped",
			text: "והוא",
			want: nil,
		},
		{
			name: "stop word caught before stripping",
			text: "היתה",
			want: nil,
		},
		{
			name: "short tokens dropped",
			text: "א ב אב",
			want: []string{"אב"},
		},
		{
			name: "maqaf splits words",
			text: "בדיקת־חשמל",
			want: []string{"דיקת", "חשמל"},
		},
		{
			name: "hebrew and latin runs never merge",
			text: "בדיקה123abc",
			want: []string{"דיק", "123abc"},
		},
		{
			name: "latin lowercased",
			text: "API חשמל",
			want: []string{"api", "חשמל"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name: "punctuation only",
			text: "?! ,,, --",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := terms(Normalize(tt.text))
			if !equalStrings(got, tt.want) {
				t.Errorf("Normalize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	text := "בדיקת מערכת החשמל בבניין 12 הושלמה על ידי הצוות"
	first := Normalize(text)
	for range 5 {
		again := Normalize(text)
		if len(again) != len(first) {
			t.Fatalf("Normalize() length changed between calls: %d vs %d", len(again), len(first))
		}
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("Normalize() token %d changed between calls: %+v vs %+v", i, again[i], first[i])
			}
		}
	}
}

func TestNormalize_Positions(t *testing.T) {
	// Stop words do not consume positions; emitted tokens number 0..n-1.
	tokens := Normalize("הוא בדק מערכת")
	if len(tokens) != 2 {
		t.Fatalf("Normalize() returned %d tokens, want 2", len(tokens))
	}
	for i, tok := range tokens {
		if tok.Position != uint32(i) {
			t.Errorf("token %d has position %d, want %d", i, tok.Position, i)
		}
	}
}

func TestNormalize_FinalFormsMatch(t *testing.T) {
	// A word ending in final kaf must normalize identically to the same
	// word written with the regular form.
	finalForm := Normalize("שלך")
	regular := Normalize("שלכ")
	if !equalStrings(terms(finalForm), terms(regular)) {
		t.Errorf("final and regular forms diverge: %v vs %v", terms(finalForm), terms(regular))
	}

	// A bare final letter is a 1-letter token and is dropped.
	tokens := Normalize("שלום ך")
	if len(tokens) != 1 {
		t.Errorf("Normalize(\"שלום ך\") = %v, want a single token", terms(tokens))
	}
}

func TestNormalizeWord(t *testing.T) {
	tests := []struct {
		name   string
		word   string
		want   string
		wantOk bool
	}{
		{name: "regular word", word: "בדיקה", want: "דיק", wantOk: true},
		{name: "stop word", word: "של", wantOk: false},
		{name: "too short", word: "א", wantOk: false},
		{name: "word with punctuation", word: "חשמל,", want: "חשמל", wantOk: true},
		{name: "no letters", word: "?!", wantOk: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeWord(tt.word)
			if ok != tt.wantOk {
				t.Fatalf("NormalizeWord(%q) ok = %v, want %v", tt.word, ok, tt.wantOk)
			}
			if ok && got != tt.want {
				t.Errorf("NormalizeWord(%q) = %q, want %q", tt.word, got, tt.want)
			}
		})
	}
}

func TestNormalizePrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   []string
	}{
		{name: "plain prefix", prefix: "חש", want: []string{"חש"}},
		{name: "particle variant added", prefix: "בדי", want: []string{"בדי", "די"}},
		{name: "two letters keep particle", prefix: "בד", want: []string{"בד"}},
		{name: "too short", prefix: "א", want: nil},
		{name: "empty", prefix: "", want: nil},
		{name: "niqqud stripped", prefix: "בְּדִי", want: []string{"בדי", "די"}},
		{name: "final form folded", prefix: "אם", want: []string{"אמ"}},
		{name: "latin lowercased", prefix: "Ab", want: []string{"ab"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePrefix(tt.prefix)
			if !equalStrings(got, tt.want) {
				t.Errorf("NormalizePrefix(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestRoot(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{term: "דיק", want: "דיק"},
		{term: "ערכת", want: "ערכ"},
		{term: "אב", want: "אב"},
		{term: "", want: ""},
	}

	for _, tt := range tests {
		if got := Root(tt.term); got != tt.want {
			t.Errorf("Root(%q) = %q, want %q", tt.term, got, tt.want)
		}
	}
}
