package search

import (
	"strings"

	"github.com/ogenlabs/hipus/hebrew"
)

// snippetRadius is the number of raw words kept on each side of the
// first matched word.
const snippetRadius = 5

// Snippet returns a window of the raw text centered on the first word
// whose normalized form is one of the matched terms. When no word
// matches, the leading words are returned instead. Truncated edges are
// marked with an ellipsis.
func Snippet(text string, matched map[string]struct{}) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	center := 0
	for i, word := range words {
		term, ok := hebrew.NormalizeWord(word)
		if !ok {
			continue
		}
		if _, hit := matched[term]; hit {
			center = i
			break
		}
	}

	start := center - snippetRadius
	if start < 0 {
		start = 0
	}
	end := center + snippetRadius + 1
	if end > len(words) {
		end = len(words)
	}

	snippet := strings.Join(words[start:end], " ")
	if start > 0 {
		snippet = "... " + snippet
	}
	if end < len(words) {
		snippet = snippet + " ..."
	}
	return snippet
}
