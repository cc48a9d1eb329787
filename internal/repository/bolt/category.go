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

// Compile-time check that *Categories satisfies the repository interface.
var _ repository.CategoryRepository = (*Categories)(nil)

// Categories is the category repository backed by a shared *DB.
type Categories struct {
	db *DB
}

// NewCategories returns the category repository for db.
func NewCategories(db *DB) *Categories {
	return &Categories{db: db}
}

// GetAll returns every category in natural key order (ascending ID).
// Records are unmarshalled into fresh structs, so callers always hold
// copies, never anything backed by the store's memory.
func (r *Categories) GetAll(ctx context.Context) ([]model.Category, error) {
	categories := make([]model.Category, 0)
	err := r.db.view(ctx, func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketCategories)).ForEach(func(k, v []byte) error {
			var c model.Category
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			categories = append(categories, c)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("bolt: listing categories: %w", err)
	}
	return categories, nil
}

// GetByID returns the category or apperror.ErrNotFound.
func (r *Categories) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	var category model.Category
	err := r.db.view(ctx, func(tx *bbolt.Tx) error {
		raw := tx.Bucket([]byte(bucketCategories)).Get(itob(uint64(id)))
		if raw == nil {
			return apperror.NotFound("category", id)
		}
		return json.Unmarshal(raw, &category)
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, fmt.Errorf("bolt: getting category %d: %w", id, err)
	}
	return &category, nil
}

// Add inserts a new category, letting the store assign the ID from the
// bucket sequence. IDs are never reused, even after deletes.
// Fails with apperror.ErrConflict if the name is already taken.
func (r *Categories) Add(ctx context.Context, category *model.Category) error {
	err := r.db.update(ctx, func(tx *bbolt.Tx) error {
		names := tx.Bucket([]byte(bucketCategoryNameIdx))
		if names.Get([]byte(category.Name)) != nil {
			return apperror.Conflict("category", category.Name)
		}

		b := tx.Bucket([]byte(bucketCategories))
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		now := time.Now()
		category.ID = int64(seq)
		category.CreatedAt = now
		category.UpdatedAt = now

		data, err := json.Marshal(category)
		if err != nil {
			return err
		}
		if err := b.Put(itob(seq), data); err != nil {
			return err
		}
		if err := names.Put([]byte(category.Name), itob(seq)); err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketCategoryCreatedIdx)).Put(timeKey(now, seq), nil)
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return fmt.Errorf("bolt: adding category: %w", err)
	}

	r.db.logger.Info("category added",
		slog.Int64("id", category.ID),
		slog.String("name", category.Name),
	)
	return nil
}

// Update overwrites the category by ID. CreatedAt is preserved from the
// stored record; UpdatedAt is refreshed. A rename keeps the unique name
// index in step, failing with apperror.ErrConflict if the new name is
// taken — in which case nothing is written.
func (r *Categories) Update(ctx context.Context, category *model.Category) error {
	err := r.db.update(ctx, func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketCategories))
		key := itob(uint64(category.ID))

		raw := b.Get(key)
		if raw == nil {
			return apperror.NotFound("category", category.ID)
		}
		var stored model.Category
		if err := json.Unmarshal(raw, &stored); err != nil {
			return err
		}

		if stored.Name != category.Name {
			names := tx.Bucket([]byte(bucketCategoryNameIdx))
			if names.Get([]byte(category.Name)) != nil {
				return apperror.Conflict("category", category.Name)
			}
			if err := names.Delete([]byte(stored.Name)); err != nil {
				return err
			}
			if err := names.Put([]byte(category.Name), key); err != nil {
				return err
			}
		}

		category.CreatedAt = stored.CreatedAt
		category.UpdatedAt = time.Now()

		data, err := json.Marshal(category)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return fmt.Errorf("bolt: updating category %d: %w", category.ID, err)
	}

	r.db.logger.Info("category updated",
		slog.Int64("id", category.ID),
		slog.String("name", category.Name),
	)
	return nil
}

// Delete removes the category and cascades to every snippet referencing
// it, all inside one write transaction: either the category and all of
// its snippets are gone, or — on any failure — nothing changed.
func (r *Categories) Delete(ctx context.Context, id int64) error {
	var removed int
	err := r.db.update(ctx, func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketCategories))
		key := itob(uint64(id))

		raw := b.Get(key)
		if raw == nil {
			return apperror.NotFound("category", id)
		}
		var stored model.Category
		if err := json.Unmarshal(raw, &stored); err != nil {
			return err
		}

		n, err := deleteSnippetsByCategoryTx(tx, id)
		if err != nil {
			return err
		}
		removed = n

		if err := tx.Bucket([]byte(bucketCategoryNameIdx)).Delete([]byte(stored.Name)); err != nil {
			return err
		}
		if err := tx.Bucket([]byte(bucketCategoryCreatedIdx)).Delete(timeKey(stored.CreatedAt, uint64(id))); err != nil {
			return err
		}
		return b.Delete(key)
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return fmt.Errorf("bolt: deleting category %d: %w", id, err)
	}

	r.db.logger.Info("category deleted",
		slog.Int64("id", id),
		slog.Int("snippets_removed", removed),
	)
	return nil
}
