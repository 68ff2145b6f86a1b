package search

import (
	"github.com/ogenlabs/hipus/core"
	"github.com/ogenlabs/hipus/fuzzy"
)

// Monitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type Monitor interface {
	Start(query string)
	AfterNormalize(terms []string)
	AfterExactMatch(ids []core.DocID)
	AfterFuzzyExpansion(term string, matches []fuzzy.Match)
	AfterFuzzyMatch(ids []core.DocID)
	AfterSemanticMatch(ids []core.DocID)
	Finish(hits []core.SearchHit)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                {}
func (n *noopMonitor) AfterNormalize(_ []string)                     {}
func (n *noopMonitor) AfterExactMatch(_ []core.DocID)                {}
func (n *noopMonitor) AfterFuzzyExpansion(_ string, _ []fuzzy.Match) {}
func (n *noopMonitor) AfterFuzzyMatch(_ []core.DocID)                {}
func (n *noopMonitor) AfterSemanticMatch(_ []core.DocID)             {}
func (n *noopMonitor) Finish(_ []core.SearchHit)                     {}
