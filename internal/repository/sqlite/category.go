package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/notepaste/internal/apperror"
	"github.com/sakif/notepaste/internal/model"
	"github.com/sakif/notepaste/internal/repository"
)

var _ repository.CategoryRepository = (*Categories)(nil)

// Categories is the category repository backed by a shared *DB.
type Categories struct {
	db *DB
}

// NewCategories returns the category repository for db.
func NewCategories(db *DB) *Categories {
	return &Categories{db: db}
}

func (r *Categories) GetAll(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing categories: %w", err)
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating categories: %w", err)
	}
	return categories, nil
}

func (r *Categories) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	var c model.Category
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("category", id)
		}
		return nil, fmt.Errorf("sqlite: getting category %d: %w", id, err)
	}
	return &c, nil
}

// Add inserts a new category. The name is checked inside the insert
// transaction so a duplicate fails cleanly with apperror.ErrConflict
// instead of a driver-specific constraint error.
func (r *Categories) Add(ctx context.Context, category *model.Category) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: adding category: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM categories WHERE name = ?`, category.Name).Scan(&exists)
	if err == nil {
		return apperror.Conflict("category", category.Name)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sqlite: checking category name: %w", err)
	}

	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now

	result, err := tx.ExecContext(ctx,
		`INSERT INTO categories (name, created_at, updated_at) VALUES (?, ?, ?)`,
		category.Name, category.CreatedAt, category.UpdatedAt)
	if err != nil {
		return fmt.Errorf("sqlite: inserting category: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading generated category id: %w", err)
	}
	category.ID = id

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: adding category: %w", err)
	}
	return nil
}

// Update overwrites the category by ID, refreshing updated_at and leaving
// created_at untouched.
func (r *Categories) Update(ctx context.Context, category *model.Category) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: updating category %d: %w", category.ID, err)
	}
	defer tx.Rollback()

	var stored model.Category
	err = tx.QueryRowContext(ctx,
		`SELECT name, created_at FROM categories WHERE id = ?`, category.ID,
	).Scan(&stored.Name, &stored.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound("category", category.ID)
		}
		return fmt.Errorf("sqlite: getting category %d: %w", category.ID, err)
	}

	if stored.Name != category.Name {
		var exists int
		err = tx.QueryRowContext(ctx,
			`SELECT 1 FROM categories WHERE name = ?`, category.Name).Scan(&exists)
		if err == nil {
			return apperror.Conflict("category", category.Name)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("sqlite: checking category name: %w", err)
		}
	}

	category.CreatedAt = stored.CreatedAt
	category.UpdatedAt = time.Now()

	if _, err := tx.ExecContext(ctx,
		`UPDATE categories SET name = ?, updated_at = ? WHERE id = ?`,
		category.Name, category.UpdatedAt, category.ID); err != nil {
		return fmt.Errorf("sqlite: updating category %d: %w", category.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: updating category %d: %w", category.ID, err)
	}
	return nil
}

// Delete removes the category and every snippet referencing it in one
// transaction — either both deletes commit or neither does.
func (r *Categories) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: deleting category %d: %w", id, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snippets WHERE category_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting snippets for category %d: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting category %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("category", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: deleting category %d: %w", id, err)
	}
	return nil
}
