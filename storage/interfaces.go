package storage

import (
	"context"

	"github.com/ogenlabs/hipus/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository provides operations for managing documents and their
// term postings.
type DocumentRepository interface {
	Repository

	// SaveDocument stores a document together with its term postings,
	// replacing any prior version atomically. Postings for terms the
	// prior version had and the new one lacks are removed.
	SaveDocument(ctx context.Context, doc *core.Document, postings map[string]*core.Posting) error

	// DeleteDocument removes a document and all of its postings.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id core.DocID) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.DocID) (*core.Document, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, ids ...core.DocID) ([]*core.Document, error)

	// ForEachDocument visits every stored document.
	// Iteration stops at the first error from fn.
	ForEachDocument(ctx context.Context, fn func(doc *core.Document) error) error

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)
}

// IndexLoader streams the persisted posting lists, grouped by term.
// It exists so the in-memory index can be rebuilt on startup without
// re-tokenizing every document.
type IndexLoader interface {
	// LoadPostings invokes fn once per term with the term's aggregate
	// statistics and its full posting list. Terms arrive in key order.
	// Iteration stops at the first error from fn.
	LoadPostings(ctx context.Context, fn func(term string, stats core.TermStats, postings []core.Posting) error) error
}

// MetaStore persists index-level metadata such as the on-disk format
// version and lifetime counters.
type MetaStore interface {
	// GetMeta retrieves the stored index metadata.
	// Returns (nil, nil) if no metadata has been written yet.
	GetMeta(ctx context.Context) (*core.IndexMeta, error)

	// PutMeta stores the index metadata, overwriting any prior value.
	PutMeta(ctx context.Context, meta *core.IndexMeta) error
}

// Store combines every storage capability behind one interface.
// Backend constructors return this type.
type Store interface {
	DocumentRepository
	IndexLoader
	MetaStore
}
