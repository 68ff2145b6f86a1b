package badger

import (
	"encoding/binary"

	"github.com/ogenlabs/hipus/core"
)

// Key prefixes for different data types. No prefix is a prefix of
// another, so prefix scans never pick up foreign records.
const (
	docRecordPrefix = "docrec"
	docTermsPrefix  = "doctrm"
	postingPrefix   = "pstrec"
	indexMetaKey    = "idxmeta"
)

// makeDocumentKey generates a key for a document record.
// Format: prefix:dockey
func makeDocumentKey(key core.DocKey) []byte {
	return makeDocKeyedKey(docRecordPrefix, key)
}

// makeDocTermsKey generates a key for a document's term list.
// Format: prefix:dockey
func makeDocTermsKey(key core.DocKey) []byte {
	return makeDocKeyedKey(docTermsPrefix, key)
}

func makeDocKeyedKey(prefix string, key core.DocKey) []byte {
	prefixBytes := []byte(prefix + ":")
	prefixSize := len(prefixBytes)
	buf := make([]byte, prefixSize+8)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(key))
	return buf
}

// makePostingKey generates a composite key for a term's posting in one
// document. Format: prefix:term:dockey
//
// Normalized terms contain only Hebrew letters and ASCII alphanumerics,
// never ':', so the term can be recovered from fixed offsets. Sorting
// groups all postings of a term together, ordered by dockey.
func makePostingKey(term string, key core.DocKey) []byte {
	prefixBytes := []byte(postingPrefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + len(term) + 1 + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	offset += copy(buf[offset:], term)
	buf[offset] = ':'
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(key))
	return buf
}

// splitPostingKey recovers the term from a posting key.
// Returns false if the key is too short to hold a term.
func splitPostingKey(key []byte) (string, bool) {
	prefixSize := len(postingPrefix) + 1
	if len(key) < prefixSize+1+1+8 {
		return "", false
	}
	return string(key[prefixSize : len(key)-9]), true
}

// makeMetaKey generates the key for the index metadata singleton.
func makeMetaKey() []byte {
	return []byte(indexMetaKey)
}
