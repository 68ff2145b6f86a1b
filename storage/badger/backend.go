package badger

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/ogenlabs/hipus/storage"
)

// Backend is the low-level Badger handle the document store runs on. It
// owns the database lifecycle and the transaction helpers; record layout
// belongs to the callers.
type Backend struct {
	db *badger.DB
}

// dbLogger routes Badger's internal logging through slog. Badger's info
// output is compaction and value-log detail, so it lands at debug;
// warnings and errors keep their level.
type dbLogger struct {
	logger *slog.Logger
}

var _ badger.Logger = (*dbLogger)(nil)

func (l *dbLogger) Errorf(msg string, items ...any) {
	l.logger.Error(fmt.Sprintf(msg, items...))
}

func (l *dbLogger) Warningf(msg string, items ...any) {
	l.logger.Warn(fmt.Sprintf(msg, items...))
}

func (l *dbLogger) Infof(msg string, items ...any) {
	l.logger.Debug(fmt.Sprintf(msg, items...))
}

func (l *dbLogger) Debugf(msg string, items ...any) {
	l.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBackend opens the database at path, creating the directory when it
// does not exist. With inMemory set, path is ignored and nothing touches
// disk.
func OpenBackend(path string, inMemory bool) (*Backend, error) {
	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory %s: %w", path, err)
		}
		opts = badger.DefaultOptions(path)
	}

	opts.Compression = options.None
	opts.Logger = &dbLogger{logger: slog.Default().With("component", "badger")}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger: %w", err)
	}
	return &Backend{db: db}, nil
}

// Close closes the underlying database. Transactions started afterwards
// fail with storage.ErrStorageClosed.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed reports whether Close has been called.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx runs fn with a transaction, read-write when update is set. The
// transaction is always discarded afterwards; a writing fn commits
// before returning, which makes the discard a no-op on success.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, update bool) error {
	if b.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	tx := b.db.NewTransaction(update)
	defer tx.Discard()
	return fn(tx)
}

// WithTransaction runs fn and commits a surrounding read-write
// transaction, satisfying the storage.Store contract.
func (b *Backend) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return b.WithTx(func(tx *badger.Txn) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return commit(tx)
	}, true)
}

// commit applies tx, mapping failures to storage.ErrTransactionFailed.
func commit(tx *badger.Txn) error {
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
	}
	return nil
}
