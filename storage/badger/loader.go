package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/ogenlabs/hipus/core"
	"github.com/ogenlabs/hipus/storage"
)

// LoadPostings streams every persisted posting list, grouped by term.
// Term statistics are derived from the postings themselves rather than
// stored separately, so they can never drift from the posting records.
func (s *DocumentStore) LoadPostings(ctx context.Context, fn func(term string, stats core.TermStats, postings []core.Posting) error) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(postingPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		var (
			current string
			group   []core.Posting
		)
		flush := func() error {
			if len(group) == 0 {
				return nil
			}
			stats := core.TermStats{DocFrequency: uint32(len(group))}
			for i := range group {
				stats.CollectionFrequency += uint64(group[i].Frequency)
			}
			err := fn(current, stats, group)
			group = nil
			return err
		}

		// Sorted iteration delivers all postings of one term
		// consecutively, so a term change means the group is complete.
		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			term, ok := splitPostingKey(item.Key())
			if !ok {
				return fmt.Errorf("%w: malformed posting key %q",
					core.ErrCorruptRecord, item.Key())
			}
			if term != current {
				if err := flush(); err != nil {
					return err
				}
				current = term
			}

			var posting *core.Posting
			if err := item.Value(func(val []byte) error {
				var err error
				posting, err = storage.UnmarshalPosting(val)
				return err
			}); err != nil {
				return err
			}
			group = append(group, *posting)
		}

		return flush()
	}, false)
}
