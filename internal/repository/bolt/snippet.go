package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"

	"github.com/sakif/notepaste/internal/apperror"
	"github.com/sakif/notepaste/internal/model"
	"github.com/sakif/notepaste/internal/repository"
)

var _ repository.SnippetRepository = (*Snippets)(nil)

// Snippets is the snippet repository backed by a shared *DB.
type Snippets struct {
	db *DB
}

// NewSnippets returns the snippet repository for db.
func NewSnippets(db *DB) *Snippets {
	return &Snippets{db: db}
}

// GetAll returns every snippet in natural key order.
func (r *Snippets) GetAll(ctx context.Context) ([]model.Snippet, error) {
	snippets := make([]model.Snippet, 0)
	err := r.db.view(ctx, func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketSnippets)).ForEach(func(k, v []byte) error {
			var s model.Snippet
			if err := json.Unmarshal(v, &s); err != nil {
				return err
			}
			snippets = append(snippets, s)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("bolt: listing snippets: %w", err)
	}
	return snippets, nil
}

// GetByID returns the snippet or apperror.ErrNotFound.
func (r *Snippets) GetByID(ctx context.Context, id int64) (*model.Snippet, error) {
	var snippet model.Snippet
	err := r.db.view(ctx, func(tx *bbolt.Tx) error {
		raw := tx.Bucket([]byte(bucketSnippets)).Get(itob(uint64(id)))
		if raw == nil {
			return apperror.NotFound("snippet", id)
		}
		return json.Unmarshal(raw, &snippet)
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, fmt.Errorf("bolt: getting snippet %d: %w", id, err)
	}
	return &snippet, nil
}

// GetByCategory is an equality scan of the categoryId index: it walks the
// index entries prefixed with the category's key and loads each record.
// A categoryID nothing references yields an empty slice, not an error.
func (r *Snippets) GetByCategory(ctx context.Context, categoryID int64) ([]model.Snippet, error) {
	snippets := make([]model.Snippet, 0)
	err := r.db.view(ctx, func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketSnippets))
		idx := tx.Bucket([]byte(bucketSnippetCategoryIdx))
		return scanIndex(idx, itob(uint64(categoryID)), func(id uint64) error {
			raw := b.Get(itob(id))
			if raw == nil {
				// Index entry without a record means the index itself is
				// broken; surface it rather than skipping silently.
				return fmt.Errorf("category index points at missing snippet %d", id)
			}
			var s model.Snippet
			if err := json.Unmarshal(raw, &s); err != nil {
				return err
			}
			snippets = append(snippets, s)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("bolt: listing snippets for category %d: %w", categoryID, err)
	}
	return snippets, nil
}

// GetByLanguage is an equality scan of the language index.
func (r *Snippets) GetByLanguage(ctx context.Context, language string) ([]model.Snippet, error) {
	snippets := make([]model.Snippet, 0)
	err := r.db.view(ctx, func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketSnippets))
		idx := tx.Bucket([]byte(bucketSnippetLanguageIdx))
		return scanIndex(idx, indexPrefix(language), func(id uint64) error {
			raw := b.Get(itob(id))
			if raw == nil {
				return fmt.Errorf("language index points at missing snippet %d", id)
			}
			var s model.Snippet
			if err := json.Unmarshal(raw, &s); err != nil {
				return err
			}
			snippets = append(snippets, s)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("bolt: listing snippets for language %q: %w", language, err)
	}
	return snippets, nil
}

// Add inserts a new snippet with a store-assigned ID and fresh
// timestamps. CategoryID is stored as given — it is never validated
// against the category collection.
func (r *Snippets) Add(ctx context.Context, snippet *model.Snippet) error {
	err := r.db.update(ctx, func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketSnippets))
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		now := time.Now()
		snippet.ID = int64(seq)
		snippet.CreatedAt = now
		snippet.UpdatedAt = now

		data, err := json.Marshal(snippet)
		if err != nil {
			return err
		}
		if err := b.Put(itob(seq), data); err != nil {
			return err
		}
		return putSnippetIndexes(tx, snippet)
	})
	if err != nil {
		return fmt.Errorf("bolt: adding snippet: %w", err)
	}

	r.db.logger.Info("snippet added",
		slog.Int64("id", snippet.ID),
		slog.String("name", snippet.Name),
		slog.String("language", snippet.Language),
	)
	return nil
}

// Update overwrites the snippet by ID, refreshing UpdatedAt and
// preserving CreatedAt. Index entries for name, language, and category
// follow the new values inside the same transaction.
func (r *Snippets) Update(ctx context.Context, snippet *model.Snippet) error {
	err := r.db.update(ctx, func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketSnippets))
		key := itob(uint64(snippet.ID))

		raw := b.Get(key)
		if raw == nil {
			return apperror.NotFound("snippet", snippet.ID)
		}
		var stored model.Snippet
		if err := json.Unmarshal(raw, &stored); err != nil {
			return err
		}

		if err := delSnippetIndexes(tx, &stored); err != nil {
			return err
		}

		snippet.CreatedAt = stored.CreatedAt
		snippet.UpdatedAt = time.Now()

		data, err := json.Marshal(snippet)
		if err != nil {
			return err
		}
		if err := b.Put(key, data); err != nil {
			return err
		}
		return putSnippetIndexes(tx, snippet)
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return fmt.Errorf("bolt: updating snippet %d: %w", snippet.ID, err)
	}

	r.db.logger.Info("snippet updated", slog.Int64("id", snippet.ID))
	return nil
}

// Delete removes one snippet and its index entries.
func (r *Snippets) Delete(ctx context.Context, id int64) error {
	err := r.db.update(ctx, func(tx *bbolt.Tx) error {
		return deleteSnippetTx(tx, id)
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return fmt.Errorf("bolt: deleting snippet %d: %w", id, err)
	}

	r.db.logger.Info("snippet deleted", slog.Int64("id", id))
	return nil
}

// DeleteByCategory removes every snippet referencing categoryID in one
// transaction. Used by the category cascade and exposed for bulk cleanup.
// Deleting for a category nothing references is a no-op, not an error.
func (r *Snippets) DeleteByCategory(ctx context.Context, categoryID int64) error {
	var removed int
	err := r.db.update(ctx, func(tx *bbolt.Tx) error {
		n, err := deleteSnippetsByCategoryTx(tx, categoryID)
		removed = n
		return err
	})
	if err != nil {
		return fmt.Errorf("bolt: deleting snippets for category %d: %w", categoryID, err)
	}

	r.db.logger.Info("snippets deleted by category",
		slog.Int64("categoryId", categoryID),
		slog.Int("count", removed),
	)
	return nil
}

// deleteSnippetTx removes one snippet record plus its index entries.
func deleteSnippetTx(tx *bbolt.Tx, id int64) error {
	b := tx.Bucket([]byte(bucketSnippets))
	key := itob(uint64(id))

	raw := b.Get(key)
	if raw == nil {
		return apperror.NotFound("snippet", id)
	}
	var stored model.Snippet
	if err := json.Unmarshal(raw, &stored); err != nil {
		return err
	}

	if err := delSnippetIndexes(tx, &stored); err != nil {
		return err
	}
	return b.Delete(key)
}

// deleteSnippetsByCategoryTx cascades inside the caller's transaction and
// reports how many snippets went away. Collects IDs first — mutating a
// bucket invalidates a cursor mid-scan.
func deleteSnippetsByCategoryTx(tx *bbolt.Tx, categoryID int64) (int, error) {
	idx := tx.Bucket([]byte(bucketSnippetCategoryIdx))

	ids := make([]int64, 0)
	if err := scanIndex(idx, itob(uint64(categoryID)), func(id uint64) error {
		ids = append(ids, int64(id))
		return nil
	}); err != nil {
		return 0, err
	}

	for _, id := range ids {
		if err := deleteSnippetTx(tx, id); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

func putSnippetIndexes(tx *bbolt.Tx, s *model.Snippet) error {
	id := uint64(s.ID)
	if err := tx.Bucket([]byte(bucketSnippetNameIdx)).Put(indexKey(s.Name, id), nil); err != nil {
		return err
	}
	if err := tx.Bucket([]byte(bucketSnippetCategoryIdx)).Put(append(itob(uint64(s.CategoryID)), itob(id)...), nil); err != nil {
		return err
	}
	if err := tx.Bucket([]byte(bucketSnippetLanguageIdx)).Put(indexKey(s.Language, id), nil); err != nil {
		return err
	}
	return tx.Bucket([]byte(bucketSnippetCreatedIdx)).Put(timeKey(s.CreatedAt, id), nil)
}

func delSnippetIndexes(tx *bbolt.Tx, s *model.Snippet) error {
	id := uint64(s.ID)
	if err := tx.Bucket([]byte(bucketSnippetNameIdx)).Delete(indexKey(s.Name, id)); err != nil {
		return err
	}
	if err := tx.Bucket([]byte(bucketSnippetCategoryIdx)).Delete(append(itob(uint64(s.CategoryID)), itob(id)...)); err != nil {
		return err
	}
	if err := tx.Bucket([]byte(bucketSnippetLanguageIdx)).Delete(indexKey(s.Language, id)); err != nil {
		return err
	}
	return tx.Bucket([]byte(bucketSnippetCreatedIdx)).Delete(timeKey(s.CreatedAt, id))
}
