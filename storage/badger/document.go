package badger

import (
	"context"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ogenlabs/hipus/core"
	"github.com/ogenlabs/hipus/storage"
)

// DocumentStore implements storage.Store for BadgerDB.
type DocumentStore struct {
	backend *Backend
}

var _ storage.Store = (*DocumentStore)(nil)

// NewStore opens a BadgerDB-backed store at the given path.
// The directory is created if it doesn't exist.
func NewStore(path string) (storage.Store, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return newDocumentStore(backend), nil
}

func newDocumentStore(backend *Backend) *DocumentStore {
	return &DocumentStore{backend: backend}
}

// Close closes the underlying database.
func (s *DocumentStore) Close() error {
	return s.backend.Close()
}

// WithTransaction delegates to the backend.
func (s *DocumentStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.backend.WithTransaction(ctx, fn)
}

// SaveDocument stores a document together with its term postings,
// replacing any prior version. The document record, the term list, and
// every posting commit in one transaction. Postings for terms the prior
// version had and the new one lacks are deleted in the same transaction.
func (s *DocumentStore) SaveDocument(ctx context.Context, doc *core.Document, postings map[string]*core.Posting) error {
	key := core.KeyFromID(doc.Id)
	return s.backend.WithTx(func(tx *badger.Txn) error {
		// Read old record to detect replacement
		old, err := readDocument(tx, makeDocumentKey(key))
		if err != nil {
			return err
		}

		doc.UpdatedAt = time.Now().UTC()
		if old != nil {
			doc.IndexedAt = old.IndexedAt
		} else {
			doc.IndexedAt = doc.UpdatedAt
		}

		// Remove postings for terms the new version no longer has
		if old != nil {
			oldTerms, err := readTerms(tx, makeDocTermsKey(key))
			if err != nil {
				return err
			}
			for _, term := range oldTerms {
				if _, ok := postings[term]; !ok {
					if err := tx.Delete(makePostingKey(term, key)); err != nil {
						return err
					}
				}
			}
		}

		// Store primary record
		if err := tx.Set(makeDocumentKey(key), storage.MarshalDocument(doc)); err != nil {
			return err
		}

		// Store postings and the term list
		terms := make([]string, 0, len(postings))
		for term, posting := range postings {
			terms = append(terms, term)
			if err := tx.Set(makePostingKey(term, key), storage.MarshalPosting(posting)); err != nil {
				return err
			}
		}
		sort.Strings(terms)
		if err := tx.Set(makeDocTermsKey(key), storage.MarshalTerms(terms)); err != nil {
			return err
		}

		return commit(tx)
	}, true)
}

// DeleteDocument removes a document, its term list, and all its postings.
func (s *DocumentStore) DeleteDocument(ctx context.Context, id core.DocID) error {
	key := core.KeyFromID(id)
	return s.backend.WithTx(func(tx *badger.Txn) error {
		old, err := readDocument(tx, makeDocumentKey(key))
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		oldTerms, err := readTerms(tx, makeDocTermsKey(key))
		if err != nil {
			return err
		}
		for _, term := range oldTerms {
			if err := tx.Delete(makePostingKey(term, key)); err != nil {
				return err
			}
		}
		if err := tx.Delete(makeDocTermsKey(key)); err != nil {
			return err
		}
		if err := tx.Delete(makeDocumentKey(key)); err != nil {
			return err
		}

		return commit(tx)
	}, true)
}

// GetDocument retrieves a single document by ID.
func (s *DocumentStore) GetDocument(ctx context.Context, id core.DocID) (*core.Document, error) {
	var result *core.Document
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readDocument(tx, makeDocumentKey(core.KeyFromID(id)))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetDocuments retrieves multiple documents by their IDs.
// Missing documents are skipped, not reported as errors.
func (s *DocumentStore) GetDocuments(ctx context.Context, ids ...core.DocID) ([]*core.Document, error) {
	var result []*core.Document
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			doc, err := readDocument(tx, makeDocumentKey(core.KeyFromID(id)))
			if err != nil {
				return err
			}
			if doc != nil {
				result = append(result, doc)
			}
		}
		return nil
	}, false)
	return result, err
}

// ForEachDocument visits every stored document in key order.
func (s *DocumentStore) ForEachDocument(ctx context.Context, fn func(doc *core.Document) error) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var doc *core.Document
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			}); err != nil {
				return err
			}
			if err := fn(doc); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// CountDocuments returns the number of stored documents.
func (s *DocumentStore) CountDocuments(ctx context.Context) (int, error) {
	var count int
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docRecordPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Helper methods

// readDocument reads a document record from the transaction.
// Returns (nil, nil) if the key doesn't exist.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalDocument(val)
		return unmarshalErr
	})
	return doc, err
}

// readTerms reads a document's term list from the transaction.
// Returns (nil, nil) if the key doesn't exist.
func readTerms(tx *badger.Txn, key []byte) ([]string, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var terms []string
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		terms, unmarshalErr = storage.UnmarshalTerms(val)
		return unmarshalErr
	})
	return terms, err
}
