// Copyright 2025 Ogen Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package hebrew normalizes Hebrew (and mixed Hebrew/Latin) text into
// index terms.
//
// Normalization applies, in order:
//   - niqqud and cantillation marks (U+0591..U+05C7) are dropped; the
//     punctuation signs inside that block (maqaf, paseq, sof pasuq, nun
//     hafukha) split words instead
//   - final letter forms (ך ם ן ף ץ) fold to their regular forms
//   - text splits into runs of Hebrew letters and runs of ASCII
//     letters/digits; the two never merge into one term
//   - runs shorter than 2 letters are dropped
//   - Hebrew runs lose at most one particle prefix (ב ל מ ש ה ו כ) and
//     then at most one suffix (ים ות ה י ך נו כם הן), each only while 2
//     letters remain
//   - stop words are dropped, checked both before and after affix
//     stripping so that a bare pronoun and its prefixed form (הוא, והוא)
//     are both caught
//
// The pipeline is deterministic and side-effect free: identical input
// always yields the identical term sequence.
package hebrew

// Token is a normalized term and its ordinal position in the emitted
// token stream.
type Token struct {
	Term     string
	Position uint32
}

// Normalize breaks text into normalized tokens. Positions number the
// emitted tokens, so they are always strictly increasing.
func Normalize(text string) []Token {
	var tokens []Token
	var pos uint32
	scan(text, func(run []rune, hebr bool) {
		term, ok := normalizeRun(run, hebr)
		if !ok {
			return
		}
		tokens = append(tokens, Token{Term: term, Position: pos})
		pos++
	})
	return tokens
}

// NormalizeWord returns the first term in s that survives normalization.
// It reports ok=false when no run survives (too short, stop word, no
// letters at all).
func NormalizeWord(s string) (term string, ok bool) {
	scan(s, func(run []rune, hebr bool) {
		if ok {
			return
		}
		term, ok = normalizeRun(run, hebr)
	})
	return term, ok
}

// NormalizePrefix prepares a user-typed prefix for vocabulary matching.
// It returns the cleaned prefix and, when the prefix opens with a
// particle letter, a second candidate with that letter removed, since
// indexed terms have their particle prefixes stripped. Prefixes shorter
// than 2 letters yield nil. Suffixes and stop words are left alone: a
// prefix is not a complete word.
func NormalizePrefix(prefix string) []string {
	var first []rune
	var hebr, seen bool
	scan(prefix, func(run []rune, h bool) {
		if seen {
			return
		}
		first = append(first, run...)
		hebr = h
		seen = true
	})
	if len(first) < 2 {
		return nil
	}
	candidates := []string{string(first)}
	if hebr && len(first) > 2 {
		if _, isPrefix := prefixLetters[first[0]]; isPrefix {
			candidates = append(candidates, string(first[1:]))
		}
	}
	return candidates
}

// Root returns the crude root heuristic for a normalized term: its first
// three letters. This is not morphological analysis; it exists as a
// ranking aid only and is never used for matching.
func Root(term string) string {
	rs := []rune(term)
	if len(rs) <= 3 {
		return term
	}
	return string(rs[:3])
}

// scan walks text and hands each maximal same-script run to emit. Marks
// are dropped without breaking the run; final forms arrive already
// folded; ASCII letters arrive lowercased.
func scan(text string, emit func(run []rune, hebrew bool)) {
	var run []rune
	var hebr bool
	flush := func() {
		if len(run) > 0 {
			emit(run, hebr)
			run = run[:0]
		}
	}
	for _, r := range text {
		switch {
		case isHebrewLetter(r):
			if len(run) > 0 && !hebr {
				flush()
			}
			hebr = true
			run = append(run, mapFinal(r))
		case isASCIIAlnum(r):
			if len(run) > 0 && hebr {
				flush()
			}
			hebr = false
			run = append(run, lowerASCII(r))
		case isMark(r):
			// niqqud or cantillation inside a word
		default:
			flush()
		}
	}
	flush()
}

func normalizeRun(run []rune, hebr bool) (string, bool) {
	if len(run) < 2 {
		return "", false
	}
	if !hebr {
		return string(run), true
	}
	if _, stop := stopTerms[string(run)]; stop {
		return "", false
	}
	stripped := stripAffixes(run)
	if _, stop := stopTerms[string(stripped)]; stop {
		return "", false
	}
	return string(stripped), true
}

// stripAffixes removes at most one particle prefix and one suffix, each
// only when at least 2 letters remain afterwards.
func stripAffixes(word []rune) []rune {
	if len(word) > 2 {
		if _, isPrefix := prefixLetters[word[0]]; isPrefix {
			word = word[1:]
		}
	}
	for _, suf := range suffixes {
		if len(word)-len(suf) < 2 {
			continue
		}
		if hasSuffix(word, suf) {
			word = word[:len(word)-len(suf)]
			break
		}
	}
	return word
}

func hasSuffix(word, suf []rune) bool {
	off := len(word) - len(suf)
	for i, r := range suf {
		if word[off+i] != r {
			return false
		}
	}
	return true
}

func isHebrewLetter(r rune) bool {
	return r >= 'א' && r <= 'ת'
}

// isMark reports whether r is a Hebrew diacritic to drop. The
// punctuation signs inside the mark block are not marks: they separate
// words.
func isMark(r rune) bool {
	if r < 0x0591 || r > 0x05C7 {
		return false
	}
	switch r {
	case 0x05BE, 0x05C0, 0x05C3, 0x05C6: // maqaf, paseq, sof pasuq, nun hafukha
		return false
	}
	return true
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func lowerASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

func mapFinal(r rune) rune {
	switch r {
	case 'ך':
		return 'כ'
	case 'ם':
		return 'מ'
	case 'ן':
		return 'נ'
	case 'ף':
		return 'פ'
	case 'ץ':
		return 'צ'
	}
	return r
}
