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


// Package fuzzy expands query terms into similar vocabulary terms.
//
// Similarity is an edit-distance ratio: 1 - distance/maxLen over
// ascii-folded forms, so a one-letter typo in a four-letter Hebrew word
// scores 0.75. Candidate generation goes through trigram buckets rather
// than a full vocabulary scan: every term is registered under the
// 32-bit hashes of its padded trigrams, and a query only examines terms
// sharing at least one trigram hash. For thresholds of 0.7 and above
// this loses no candidates, because a term close enough to pass always
// has more unedited trigrams than an edit can destroy.
package fuzzy

import (
	"sort"
	"sync"

	farmhash "github.com/leemcloughlin/gofarmhash"
	"github.com/xrash/smetrics"
)

// DefaultThreshold is the similarity cutoff used when the caller passes
// a non-positive threshold.
const DefaultThreshold = 0.75

const trigramSeed uint32 = 0x9E3779B9

// Match is one vocabulary term that cleared the similarity threshold.
type Match struct {
	Term       string
	Similarity float64
}

// Matcher indexes the vocabulary by trigram signature for typo-tolerant
// expansion. Safe for concurrent use.
type Matcher struct {
	mu      sync.RWMutex
	buckets map[uint32]map[string]struct{}
	folded  map[string]string
}

// NewMatcher creates an empty matcher.
func NewMatcher() *Matcher {
	return &Matcher{
		buckets: make(map[uint32]map[string]struct{}),
		folded:  make(map[string]string),
	}
}

// Add registers a vocabulary term. Adding a term twice is a no-op.
func (m *Matcher) Add(term string) {
	if term == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.folded[term]; exists {
		return
	}
	folded := asciiFold(term)
	m.folded[term] = folded
	for _, h := range trigramHashes(folded) {
		bucket, exists := m.buckets[h]
		if !exists {
			bucket = make(map[string]struct{})
			m.buckets[h] = bucket
		}
		bucket[term] = struct{}{}
	}
}

// Remove drops a term that left the vocabulary.
func (m *Matcher) Remove(term string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	folded, exists := m.folded[term]
	if !exists {
		return
	}
	delete(m.folded, term)
	for _, h := range trigramHashes(folded) {
		bucket := m.buckets[h]
		delete(bucket, term)
		if len(bucket) == 0 {
			delete(m.buckets, h)
		}
	}
}

// Len returns the number of registered terms.
func (m *Matcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.folded)
}

// Expand returns the vocabulary terms whose similarity to token reaches
// threshold, best first, ties broken by term. The threshold is
// inclusive. No match yields an empty result, never an error. A
// non-positive threshold falls back to DefaultThreshold.
func (m *Matcher) Expand(token string, threshold float64) []Match {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if token == "" {
		return nil
	}
	foldedQuery := asciiFold(token)

	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	var matches []Match
	for _, h := range trigramHashes(foldedQuery) {
		for term := range m.buckets[h] {
			if _, done := seen[term]; done {
				continue
			}
			seen[term] = struct{}{}

			sim := similarity(foldedQuery, m.folded[term])
			if sim >= threshold {
				matches = append(matches, Match{Term: term, Similarity: sim})
			}
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Term < matches[j].Term
	})
	return matches
}

// similarity is 1 - editDistance/maxLen over folded forms. Two empty
// strings count as identical.
func similarity(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	dist := smetrics.WagnerFischer(a, b, 1, 1, 1)
	return 1 - float64(dist)/float64(maxLen)
}

// trigramHashes hashes the 3-grams of "$"+folded+"$". A 2-letter term
// still yields two trigrams, so every indexable term lands in at least
// one bucket.
func trigramHashes(folded string) []uint32 {
	padded := make([]byte, 0, len(folded)+2)
	padded = append(padded, '$')
	padded = append(padded, folded...)
	padded = append(padded, '$')
	if len(padded) < 3 {
		return nil
	}

	hashes := make([]uint32, 0, len(padded)-2)
	for i := 0; i+3 <= len(padded); i++ {
		hashes = append(hashes, farmhash.Hash32WithSeed(padded[i:i+3], trigramSeed))
	}
	return hashes
}
