// Package index maintains the in-memory inverted index: term to posting
// maps plus vocabulary statistics, guarded by a single read-write lock.
//
// The index is the authoritative in-process view of what is searchable.
// Persistence is layered underneath it (see the storage package); at
// startup the index is hydrated from the store, after which mutations go
// through Put and Remove which report vocabulary deltas the caller can
// forward to the fuzzy and suggestion structures.
package index

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ogenlabs/hipus/core"
)

// Index is a thread-safe inverted index. Reads run concurrently;
// mutations serialize behind the write lock.
type Index struct {
	mu       sync.RWMutex
	postings map[string]map[core.DocID]*core.Posting
	vocab    map[string]*core.TermStats
	docTerms map[core.DocID][]string

	// generation counts mutations. The cache layer keys entries by it, so
	// bumping it is what invalidates cached results.
	generation atomic.Uint64
}

// TermEntry is one vocabulary term with its statistics and postings,
// as returned by Snapshot.
type TermEntry struct {
	Term     string
	Stats    core.TermStats
	Postings []core.Posting
}

// New creates an empty index.
func New() *Index {
	return &Index{
		postings: make(map[string]map[core.DocID]*core.Posting),
		vocab:    make(map[string]*core.TermStats),
		docTerms: make(map[core.DocID][]string),
	}
}

// Put inserts or replaces the postings of one document. Calling Put again
// with the same id first discards the previous postings, so re-indexing
// never accumulates duplicates.
//
// The returned delta maps every term whose document frequency changed to
// its new document frequency; 0 means the term left the vocabulary.
func (ix *Index) Put(id core.DocID, docPostings map[string]*core.Posting) map[string]uint32 {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	delta := make(map[string]uint32)
	ix.dropLocked(id, delta)

	terms := make([]string, 0, len(docPostings))
	for term, posting := range docPostings {
		docs, exists := ix.postings[term]
		if !exists {
			docs = make(map[core.DocID]*core.Posting)
			ix.postings[term] = docs
		}
		docs[id] = posting

		stats, exists := ix.vocab[term]
		if !exists {
			stats = &core.TermStats{}
			ix.vocab[term] = stats
		}
		stats.DocFrequency++
		stats.CollectionFrequency += uint64(posting.Frequency)
		delta[term] = stats.DocFrequency

		terms = append(terms, term)
	}
	sort.Strings(terms)
	ix.docTerms[id] = terms

	ix.generation.Add(1)
	return delta
}

// Remove deletes all postings of one document. It reports existed=false
// when the id was never indexed; the index is unchanged in that case.
func (ix *Index) Remove(id core.DocID) (delta map[string]uint32, existed bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, existed = ix.docTerms[id]; !existed {
		return nil, false
	}
	delta = make(map[string]uint32)
	ix.dropLocked(id, delta)
	delete(ix.docTerms, id)

	ix.generation.Add(1)
	return delta, true
}

// dropLocked removes the current postings of id and adjusts vocabulary
// counts, recording new document frequencies in delta. Caller holds the
// write lock.
func (ix *Index) dropLocked(id core.DocID, delta map[string]uint32) {
	for _, term := range ix.docTerms[id] {
		docs := ix.postings[term]
		posting, exists := docs[id]
		if !exists {
			continue
		}
		delete(docs, id)
		if len(docs) == 0 {
			delete(ix.postings, term)
		}

		stats := ix.vocab[term]
		stats.DocFrequency--
		stats.CollectionFrequency -= uint64(posting.Frequency)
		if stats.DocFrequency == 0 {
			delete(ix.vocab, term)
			delta[term] = 0
		} else {
			delta[term] = stats.DocFrequency
		}
	}
}

// Restore bulk-loads one term during hydration. It bypasses delta
// accounting and generation bumps; call it only before the index is
// shared with readers.
func (ix *Index) Restore(term string, stats core.TermStats, postings []core.Posting) {
	docs := make(map[core.DocID]*core.Posting, len(postings))
	for i := range postings {
		p := postings[i]
		docs[p.DocId] = &p
		ix.docTerms[p.DocId] = append(ix.docTerms[p.DocId], term)
	}
	ix.postings[term] = docs
	s := stats
	ix.vocab[term] = &s
}

// RestoreDoc records a document id that indexed to zero terms, so the
// document count stays accurate after hydration.
func (ix *Index) RestoreDoc(id core.DocID) {
	if _, exists := ix.docTerms[id]; !exists {
		ix.docTerms[id] = nil
	}
}

// Lookup returns a copy of the postings for an exact term, sorted by
// document id. A term outside the vocabulary yields nil.
func (ix *Index) Lookup(term string) []core.Posting {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	docs, exists := ix.postings[term]
	if !exists {
		return nil
	}
	result := make([]core.Posting, 0, len(docs))
	for _, posting := range docs {
		result = append(result, *posting)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DocId < result[j].DocId
	})
	return result
}

// BooleanQuery resolves a set of terms to document ids: the intersection
// of their posting sets when matchAll is true, the union otherwise. Ids
// come back sorted. An empty term list yields nil either way.
func (ix *Index) BooleanQuery(terms []string, matchAll bool) []core.DocID {
	if len(terms) == 0 {
		return nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var result map[core.DocID]struct{}
	if matchAll {
		for i, term := range terms {
			docs := ix.postings[term]
			if len(docs) == 0 {
				return nil
			}
			if i == 0 {
				result = make(map[core.DocID]struct{}, len(docs))
				for id := range docs {
					result[id] = struct{}{}
				}
				continue
			}
			for id := range result {
				if _, exists := docs[id]; !exists {
					delete(result, id)
				}
			}
			if len(result) == 0 {
				return nil
			}
		}
	} else {
		result = make(map[core.DocID]struct{})
		for _, term := range terms {
			for id := range ix.postings[term] {
				result[id] = struct{}{}
			}
		}
	}

	ids := make([]core.DocID, 0, len(result))
	for id := range result {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Stats returns the vocabulary statistics for a term.
func (ix *Index) Stats(term string) (core.TermStats, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	stats, exists := ix.vocab[term]
	if !exists {
		return core.TermStats{}, false
	}
	return *stats, true
}

// DocCount returns the number of indexed documents, including documents
// whose text normalized to zero terms.
func (ix *Index) DocCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docTerms)
}

// Contains reports whether a document id is currently indexed.
func (ix *Index) Contains(id core.DocID) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, exists := ix.docTerms[id]
	return exists
}

// TermCount returns the vocabulary size.
func (ix *Index) TermCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vocab)
}

// DocTerms returns the sorted terms one document currently contains.
func (ix *Index) DocTerms(id core.DocID) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	terms, exists := ix.docTerms[id]
	if !exists {
		return nil
	}
	out := make([]string, len(terms))
	copy(out, terms)
	return out
}

// ForEachTerm calls fn for every vocabulary term under the read lock.
// fn must not call back into the index.
func (ix *Index) ForEachTerm(fn func(term string, stats core.TermStats)) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	for term, stats := range ix.vocab {
		fn(term, *stats)
	}
}

// Snapshot copies the whole index ordered by term, postings ordered by
// document id. Vector rebuilds work from a snapshot so they never hold
// the index lock while computing.
func (ix *Index) Snapshot() []TermEntry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	entries := make([]TermEntry, 0, len(ix.vocab))
	for term, docs := range ix.postings {
		postings := make([]core.Posting, 0, len(docs))
		for _, posting := range docs {
			postings = append(postings, *posting)
		}
		sort.Slice(postings, func(i, j int) bool {
			return postings[i].DocId < postings[j].DocId
		})
		entries = append(entries, TermEntry{
			Term:     term,
			Stats:    *ix.vocab[term],
			Postings: postings,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

// Generation returns the mutation counter. It increments on every Put
// and Remove that changes the index.
func (ix *Index) Generation() uint64 {
	return ix.generation.Load()
}
