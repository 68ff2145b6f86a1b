// Package tfidf ranks documents by cosine similarity over sparse
// term-frequency / inverse-document-frequency vectors.
//
// Vector sets are immutable once built. A rebuild constructs a fresh set
// from an index snapshot and swaps it in atomically (see Scorer), so
// readers never observe a half-built state. Between rebuilds the active
// set may lag the index; that staleness window is part of the contract,
// and callers filter out hits for documents that no longer exist.
package tfidf

import (
	"math"
	"sort"
	"time"

	"github.com/ogenlabs/hipus/core"
	"github.com/ogenlabs/hipus/index"
)

// DocScore is one scored document.
type DocScore struct {
	Id    core.DocID
	Score float64
}

// VectorSet holds the per-document tf-idf vectors for one build.
type VectorSet struct {
	vectors  map[core.DocID]map[string]float64
	norms    map[core.DocID]float64
	idf      map[string]float64
	termDocs map[string][]core.DocID
	docCount int

	generation uint64
	builtAt    time.Time
}

// Builder accumulates term entries into a VectorSet. Feed it every term
// of one index snapshot, then call Finish. Not safe for concurrent use.
type Builder struct {
	set      *VectorSet
	total    float64
	finished bool
}

// NewBuilder starts a build over a corpus of docCount documents taken
// from the given index generation.
func NewBuilder(docCount int, generation uint64) *Builder {
	return &Builder{
		set: &VectorSet{
			vectors:    make(map[core.DocID]map[string]float64),
			norms:      make(map[core.DocID]float64),
			idf:        make(map[string]float64),
			termDocs:   make(map[string][]core.DocID),
			docCount:   docCount,
			generation: generation,
		},
		total: float64(docCount),
	}
}

// AddTerm folds one vocabulary term into the vectors under construction.
// Terms present in every document carry idf 0 and are skipped: they can
// never contribute to a score.
func (b *Builder) AddTerm(entry index.TermEntry) {
	if b.finished || entry.Stats.DocFrequency == 0 || b.set.docCount == 0 {
		return
	}
	idf := math.Log(b.total / float64(entry.Stats.DocFrequency))
	if idf <= 0 {
		return
	}
	b.set.idf[entry.Term] = idf

	docs := make([]core.DocID, 0, len(entry.Postings))
	for _, posting := range entry.Postings {
		weight := float64(posting.Frequency) * idf
		vec, exists := b.set.vectors[posting.DocId]
		if !exists {
			vec = make(map[string]float64)
			b.set.vectors[posting.DocId] = vec
		}
		vec[entry.Term] = weight
		docs = append(docs, posting.DocId)
	}
	b.set.termDocs[entry.Term] = docs
}

// Finish computes vector norms and seals the set. The builder must not
// be reused afterwards.
func (b *Builder) Finish() *VectorSet {
	b.finished = true
	for id, vec := range b.set.vectors {
		var sum float64
		for _, w := range vec {
			sum += w * w
		}
		b.set.norms[id] = math.Sqrt(sum)
	}
	b.set.builtAt = time.Now()
	return b.set
}

// Build constructs a VectorSet from a full index snapshot in one call.
func Build(entries []index.TermEntry, docCount int, generation uint64) *VectorSet {
	builder := NewBuilder(docCount, generation)
	for _, entry := range entries {
		builder.AddTerm(entry)
	}
	return builder.Finish()
}

// Similarity scores documents against a normalized query term list by
// cosine similarity. Terms outside the build's vocabulary contribute
// zero. Only documents with score > 0 come back, best first, ties broken
// by document id.
func (s *VectorSet) Similarity(queryTerms []string) []DocScore {
	if s == nil || len(queryTerms) == 0 {
		return nil
	}

	queryVec := make(map[string]float64)
	for _, term := range queryTerms {
		if idf, known := s.idf[term]; known {
			queryVec[term] += idf
		}
	}
	var queryNorm float64
	for _, w := range queryVec {
		queryNorm += w * w
	}
	queryNorm = math.Sqrt(queryNorm)
	if queryNorm == 0 {
		return nil
	}

	dots := make(map[core.DocID]float64)
	for term, qw := range queryVec {
		for _, id := range s.termDocs[term] {
			dots[id] += qw * s.vectors[id][term]
		}
	}

	scores := make([]DocScore, 0, len(dots))
	for id, dot := range dots {
		if dot <= 0 {
			continue
		}
		scores = append(scores, DocScore{
			Id:    id,
			Score: dot / (queryNorm * s.norms[id]),
		})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Id < scores[j].Id
	})
	return scores
}

// DocCount returns the corpus size the set was built over.
func (s *VectorSet) DocCount() int {
	if s == nil {
		return 0
	}
	return s.docCount
}

// Generation returns the index generation the set was built from.
func (s *VectorSet) Generation() uint64 {
	if s == nil {
		return 0
	}
	return s.generation
}

// BuiltAt returns when Finish sealed the set.
func (s *VectorSet) BuiltAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.builtAt
}
