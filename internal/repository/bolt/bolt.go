// Package bolt implements the repository interfaces using bbolt as the
// storage backend.
//
// WHY BBOLT?
// bbolt is an embedded key-value store — a single file, fully transactional,
// no server process. It is the same shape as the collections this app needs:
// named buckets of records keyed by a store-assigned integer, with extra
// buckets acting as secondary indices. Reads and writes happen inside
// serialized transactions (View for read-only, Update for read-write), and
// a write transaction spanning several buckets commits atomically — which
// is exactly what cascading delete wants.
//
// LAYOUT:
//   - "categories" / "snippets"  — the record buckets. Key: 8-byte big-endian
//     ID from the bucket sequence. Value: the JSON-encoded record.
//   - "*_idx_*" — index buckets. Unique index (category name): name → ID.
//     Non-unique indices: composite key (indexed value + record ID) with an
//     empty value, scanned by key prefix.
//   - "meta" — holds the schema version byte that gates one-time structural
//     upgrades. Bucket creation is idempotent, so re-running the upgrade
//     step against an up-to-date store is a no-op.
//
// Big-endian encoding matters: it makes numeric keys sort in numeric order,
// so prefix scans and natural key order both work with bbolt's sorted keys.
package bolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/rs/xid"
	"go.etcd.io/bbolt"

	"github.com/sakif/notepaste/internal/apperror"
)

// schemaVersion gates structural upgrades. Any change to the bucket layout
// requires bumping this and adding an idempotent creation step in migrate —
// never removing or redefining an existing bucket in place.
const schemaVersion uint64 = 1

// openTimeout bounds how long an open waits for the file lock held by
// another process before reporting the store as blocked.
const openTimeout = 1 * time.Second

const (
	bucketMeta       = "meta"
	bucketCategories = "categories"
	bucketSnippets   = "snippets"

	bucketCategoryNameIdx    = "categories_idx_name" // unique: name -> id
	bucketCategoryCreatedIdx = "categories_idx_created_at"

	bucketSnippetNameIdx     = "snippets_idx_name"
	bucketSnippetCategoryIdx = "snippets_idx_category_id"
	bucketSnippetLanguageIdx = "snippets_idx_language"
	bucketSnippetCreatedIdx  = "snippets_idx_created_at"
)

var keySchemaVersion = []byte("schemaVersion")

// schemaBuckets lists every bucket migrate must ensure, in creation order.
// Additive only — version bumps append, they never remove.
var schemaBuckets = []string{
	bucketCategories,
	bucketCategoryNameIdx,
	bucketCategoryCreatedIdx,
	bucketSnippets,
	bucketSnippetNameIdx,
	bucketSnippetCategoryIdx,
	bucketSnippetLanguageIdx,
	bucketSnippetCreatedIdx,
}

// DB owns the single lazily-opened bbolt connection and provides the
// repository methods. Create one per store file and share it; the first
// operation opens the file and runs the schema upgrade, later operations
// reuse the cached connection. After Close, the next operation reopens.
//
// There is deliberately no package-level instance: the composition root
// owns the *DB and passes it (behind the repository interfaces) to the
// services, which keeps tests isolated on independent store files.
type DB struct {
	path   string
	logger *slog.Logger

	mu   sync.Mutex
	conn *bbolt.DB
}

// New prepares a DB for the store file at path. The file is not touched
// until the first operation needs a connection.
func New(path string, logger *slog.Logger) *DB {
	if logger == nil {
		logger = slog.Default()
	}
	return &DB{path: path, logger: logger}
}

// connect returns the cached connection, opening (and upgrading) the store
// on first use. Concurrent callers serialize on the mutex, so a burst of
// first calls still results in exactly one open.
func (db *DB) connect(ctx context.Context) (*bbolt.DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.conn != nil {
		return db.conn, nil
	}

	// The Timeout turns "another process holds the file lock" into an
	// error instead of waiting forever.
	conn, err := bbolt.Open(db.path, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		if errors.Is(err, bbolt.ErrTimeout) {
			return nil, apperror.Blocked("opening store")
		}
		return nil, fmt.Errorf("bolt: opening store: %w", err)
	}

	// Schema creation happens exactly once per version transition, inside
	// the open step, before any repository transaction can begin.
	if err := conn.Update(migrate); err != nil {
		conn.Close()
		return nil, err
	}

	db.conn = conn
	db.logger.Info("store opened",
		slog.String("path", db.path),
		slog.String("conn", xid.New().String()),
	)
	return conn, nil
}

// migrate brings the bucket layout up to schemaVersion. Safe to re-run:
// every step is CreateBucketIfNotExists, so an up-to-date store passes
// through untouched.
func migrate(tx *bbolt.Tx) error {
	meta, err := tx.CreateBucketIfNotExists([]byte(bucketMeta))
	if err != nil {
		return fmt.Errorf("bolt: creating meta bucket: %w", err)
	}

	if raw := meta.Get(keySchemaVersion); raw != nil {
		if have := btoi(raw); have > schemaVersion {
			// The file was written by a newer build. Touching it could
			// corrupt structures this build does not know about.
			return apperror.VersionMismatch(have, schemaVersion)
		}
	}

	for _, name := range schemaBuckets {
		if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
			return fmt.Errorf("bolt: creating bucket %s: %w", name, err)
		}
	}

	return meta.Put(keySchemaVersion, itob(schemaVersion))
}

// Close releases the connection and clears the cache. The DB stays usable:
// the next operation reopens the file.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.conn == nil {
		return nil
	}
	err := db.conn.Close()
	db.conn = nil
	if err != nil {
		return fmt.Errorf("bolt: closing store: %w", err)
	}
	db.logger.Info("store closed", slog.String("path", db.path))
	return nil
}

// Destroy closes any open connection, then removes the store file.
// Fails with apperror.ErrBlocked if another process still holds the file,
// and is not retried automatically.
func (db *DB) Destroy(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := db.Close(); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	// Probe the file lock before removing: deleting a store out from under
	// a live connection in another process must fail loudly, not silently
	// unlink their data.
	probe, err := bbolt.Open(db.path, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		if errors.Is(err, bbolt.ErrTimeout) {
			return apperror.Blocked("destroying store")
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("bolt: destroying store: %w", err)
	}
	if err := probe.Close(); err != nil {
		return fmt.Errorf("bolt: destroying store: %w", err)
	}

	if err := os.Remove(db.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("bolt: destroying store: %w", err)
	}
	db.logger.Info("store destroyed", slog.String("path", db.path))
	return nil
}

// view runs a read-only transaction against the (lazily opened) store.
func (db *DB) view(ctx context.Context, fn func(tx *bbolt.Tx) error) error {
	conn, err := db.connect(ctx)
	if err != nil {
		return err
	}
	return conn.View(fn)
}

// update runs a read-write transaction against the (lazily opened) store.
func (db *DB) update(ctx context.Context, fn func(tx *bbolt.Tx) error) error {
	conn, err := db.connect(ctx)
	if err != nil {
		return err
	}
	return conn.Update(fn)
}

// itob encodes an integer as an 8-byte big-endian key.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// btoi decodes an 8-byte big-endian key back to an integer.
func btoi(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

// indexKey builds a composite key for a non-unique string index:
// the indexed value, a NUL separator, then the record ID. The separator
// keeps "go" from matching entries indexed under "gox".
func indexKey(value string, id uint64) []byte {
	k := make([]byte, 0, len(value)+9)
	k = append(k, value...)
	k = append(k, 0)
	return append(k, itob(id)...)
}

// indexPrefix is the scan prefix matching every indexKey for value.
func indexPrefix(value string) []byte {
	return append([]byte(value), 0)
}

// timeKey builds a composite key for a createdAt index: big-endian
// nanoseconds then the record ID, so entries sort chronologically.
func timeKey(t time.Time, id uint64) []byte {
	return append(itob(uint64(t.UnixNano())), itob(id)...)
}

// scanIndex walks every composite key in bucket that starts with prefix
// and hands the trailing record ID to fn.
func scanIndex(b *bbolt.Bucket, prefix []byte, fn func(id uint64) error) error {
	c := b.Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		if err := fn(btoi(k[len(k)-8:])); err != nil {
			return err
		}
	}
	return nil
}
