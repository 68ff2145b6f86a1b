package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// DocID is the caller-supplied identifier of an indexed document.
// It is opaque to the engine: any non-empty string works.
type DocID string

// DocKey is the fixed-width internal key derived from a DocID.
// It is used in storage keys and anywhere a compact identifier is needed.
type DocKey uint64

// KeyFromID derives a deterministic DocKey from a DocID using BLAKE2b hashing.
// Identical ids always produce identical keys.
func KeyFromID(id DocID) DocKey {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(id))
	sum := h.Sum(nil)
	return DocKey(binary.LittleEndian.Uint64(sum))
}

// HashString hashes an arbitrary string to a 64-bit value using BLAKE2b.
// Used for cache keys.
func HashString(s string) uint64 {
	h, _ := blake2b.New(8, nil)
	h.Write([]byte(s))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// Document represents a unit of indexed content: raw text plus optional metadata.
// Indexing the same id again replaces the previous version wholesale.
type Document struct {
	Id         DocID
	Text       string
	Metadata   map[string]string // Optional metadata (e.g., "source", "author")
	IndexedAt  time.Time         // When the document was first indexed
	UpdatedAt  time.Time         // When the document was last re-indexed
	TokenCount uint32            // Number of terms the text normalized to
}

// Posting links one term to one document: how often the term occurs and at
// which token positions. Positions are ordinals within the normalized token
// stream, strictly increasing.
type Posting struct {
	DocId     DocID
	Frequency uint32
	Positions []uint32
}

// TermStats holds the vocabulary entry for a term: how many distinct
// documents contain it and how many occurrences exist across the collection.
type TermStats struct {
	DocFrequency        uint32
	CollectionFrequency uint64
}

// SearchHit represents a single ranked search result.
type SearchHit struct {
	DocId   DocID   `json:"documentId"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet,omitempty"`
}

// Suggestion is a single autocomplete candidate.
type Suggestion struct {
	Term         string `json:"term"`
	DocFrequency uint32 `json:"docFrequency"`
}

// IndexMeta describes a persisted index so an engine can refuse stores
// written with an incompatible record layout.
type IndexMeta struct {
	FormatVersion uint32
	Generation    uint64
	UpdatedAt     time.Time
}

// FormatVersion is the current on-disk format version. Bump on any
// incompatible change to stored record layouts.
const FormatVersion uint32 = 1
