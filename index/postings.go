package index

import (
	"github.com/ogenlabs/hipus/core"
	"github.com/ogenlabs/hipus/hebrew"
)

// BuildPostings groups a normalized token stream into per-term postings
// for one document. Token positions arrive strictly increasing, so each
// posting's position list is strictly increasing as well.
func BuildPostings(id core.DocID, tokens []hebrew.Token) map[string]*core.Posting {
	postings := make(map[string]*core.Posting)
	for _, token := range tokens {
		p, exists := postings[token.Term]
		if !exists {
			p = &core.Posting{
				DocId:     id,
				Positions: make([]uint32, 0, 4),
			}
			postings[token.Term] = p
		}
		p.Frequency++
		p.Positions = append(p.Positions, token.Position)
	}
	return postings
}
