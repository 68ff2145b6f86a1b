package tfidf

import (
	"sync/atomic"
	"time"
)

// Scorer publishes the active VectorSet. Rebuilds prepare a complete
// replacement set and Swap it in; readers always score against a fully
// built set. A scorer that has never been swapped scores nothing.
type Scorer struct {
	current atomic.Pointer[VectorSet]
}

// NewScorer creates a scorer with no active vector set.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Swap atomically replaces the active set. The previous set stays valid
// for readers that already hold it.
func (s *Scorer) Swap(set *VectorSet) {
	s.current.Store(set)
}

// Current returns the active set, or nil before the first build.
func (s *Scorer) Current() *VectorSet {
	return s.current.Load()
}

// Similarity scores against the active set. Before the first build it
// returns nothing.
func (s *Scorer) Similarity(queryTerms []string) []DocScore {
	return s.current.Load().Similarity(queryTerms)
}

// Generation returns the index generation of the active set, 0 before
// the first build.
func (s *Scorer) Generation() uint64 {
	return s.current.Load().Generation()
}

// BuiltAt returns when the active set was built.
func (s *Scorer) BuiltAt() time.Time {
	return s.current.Load().BuiltAt()
}
