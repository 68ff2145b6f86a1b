// Package suggest serves autocomplete over the normalized vocabulary.
//
// Terms live in a skip list keyed by term, so a prefix query is one
// Find followed by an ordered walk. Ranking happens per query: matches
// sort by descending document frequency, then alphabetically.
package suggest

import (
	"sort"
	"strings"
	"sync"

	"github.com/huandu/skiplist"

	"github.com/ogenlabs/hipus/core"
	"github.com/ogenlabs/hipus/hebrew"
)

// Suggester indexes vocabulary terms for prefix completion. Safe for
// concurrent use.
type Suggester struct {
	mu    sync.RWMutex
	terms *skiplist.SkipList
}

// New creates an empty suggester.
func New() *Suggester {
	return &Suggester{
		terms: skiplist.New(skiplist.String),
	}
}

// Update records a term with its current document frequency. A zero
// frequency removes the term.
func (s *Suggester) Update(term string, docFrequency uint32) {
	if term == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if docFrequency == 0 {
		s.terms.Remove(term)
		return
	}
	s.terms.Set(term, docFrequency)
}

// Remove drops a term from the suggester.
func (s *Suggester) Remove(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terms.Remove(term)
}

// Len returns the number of indexed terms.
func (s *Suggester) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.terms.Len()
}

// Suggest completes a user-typed prefix. The prefix is normalized first
// (niqqud stripped, final forms folded); prefixes shorter than 2 letters
// return nothing. When the prefix starts with a particle letter, terms
// matching the particle-stripped variant are included too, since indexed
// terms carry no particle prefixes.
//
// Results order by descending document frequency, then alphabetically.
// A non-positive limit means no truncation.
func (s *Suggester) Suggest(prefix string, limit int) []core.Suggestion {
	candidates := hebrew.NormalizePrefix(prefix)
	if len(candidates) == 0 {
		return nil
	}

	s.mu.RLock()
	matched := make(map[string]uint32)
	for _, candidate := range candidates {
		for elem := s.terms.Find(candidate); elem != nil; elem = elem.Next() {
			term := elem.Key().(string)
			if !strings.HasPrefix(term, candidate) {
				break
			}
			matched[term] = elem.Value.(uint32)
		}
	}
	s.mu.RUnlock()

	if len(matched) == 0 {
		return nil
	}
	suggestions := make([]core.Suggestion, 0, len(matched))
	for term, df := range matched {
		suggestions = append(suggestions, core.Suggestion{Term: term, DocFrequency: df})
	}
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].DocFrequency != suggestions[j].DocFrequency {
			return suggestions[i].DocFrequency > suggestions[j].DocFrequency
		}
		return suggestions[i].Term < suggestions[j].Term
	})
	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}
