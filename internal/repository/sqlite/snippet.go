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

var _ repository.SnippetRepository = (*Snippets)(nil)

// Snippets is the snippet repository backed by a shared *DB.
type Snippets struct {
	db *DB
}

// NewSnippets returns the snippet repository for db.
func NewSnippets(db *DB) *Snippets {
	return &Snippets{db: db}
}

const snippetColumns = `id, name, code, language, description, category_id, created_at, updated_at`

func scanSnippet(row interface{ Scan(...any) error }) (model.Snippet, error) {
	var s model.Snippet
	err := row.Scan(&s.ID, &s.Name, &s.Code, &s.Language, &s.Description,
		&s.CategoryID, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *Snippets) queryAll(ctx context.Context, query string, args ...any) ([]model.Snippet, error) {
	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snippets := make([]model.Snippet, 0)
	for rows.Next() {
		s, err := scanSnippet(rows)
		if err != nil {
			return nil, err
		}
		snippets = append(snippets, s)
	}
	return snippets, rows.Err()
}

func (r *Snippets) GetAll(ctx context.Context) ([]model.Snippet, error) {
	snippets, err := r.queryAll(ctx,
		`SELECT `+snippetColumns+` FROM snippets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets: %w", err)
	}
	return snippets, nil
}

func (r *Snippets) GetByID(ctx context.Context, id int64) (*model.Snippet, error) {
	s, err := scanSnippet(r.db.conn.QueryRowContext(ctx,
		`SELECT `+snippetColumns+` FROM snippets WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("sqlite: getting snippet %d: %w", id, err)
	}
	return &s, nil
}

// GetByCategory is an equality query against the category_id index.
func (r *Snippets) GetByCategory(ctx context.Context, categoryID int64) ([]model.Snippet, error) {
	snippets, err := r.queryAll(ctx,
		`SELECT `+snippetColumns+` FROM snippets WHERE category_id = ? ORDER BY id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets for category %d: %w", categoryID, err)
	}
	return snippets, nil
}

// GetByLanguage is an equality query against the language index.
func (r *Snippets) GetByLanguage(ctx context.Context, language string) ([]model.Snippet, error) {
	snippets, err := r.queryAll(ctx,
		`SELECT `+snippetColumns+` FROM snippets WHERE language = ? ORDER BY id`, language)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets for language %q: %w", language, err)
	}
	return snippets, nil
}

// Add inserts a new snippet. category_id is stored as given — never
// validated against the categories table.
func (r *Snippets) Add(ctx context.Context, snippet *model.Snippet) error {
	now := time.Now()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now

	result, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO snippets (name, code, language, description, category_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snippet.Name, snippet.Code, snippet.Language, snippet.Description,
		snippet.CategoryID, snippet.CreatedAt, snippet.UpdatedAt)
	if err != nil {
		return fmt.Errorf("sqlite: inserting snippet: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading generated snippet id: %w", err)
	}
	snippet.ID = id
	return nil
}

// Update overwrites the snippet by ID with a refreshed updated_at.
// created_at is not part of the UPDATE, so it stays immutable; the stored
// value is read back onto the struct for the caller.
func (r *Snippets) Update(ctx context.Context, snippet *model.Snippet) error {
	var createdAt time.Time
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT created_at FROM snippets WHERE id = ?`, snippet.ID).Scan(&createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound("snippet", snippet.ID)
		}
		return fmt.Errorf("sqlite: getting snippet %d: %w", snippet.ID, err)
	}

	snippet.CreatedAt = createdAt
	snippet.UpdatedAt = time.Now()

	if _, err := r.db.conn.ExecContext(ctx,
		`UPDATE snippets
		 SET name = ?, code = ?, language = ?, description = ?, category_id = ?, updated_at = ?
		 WHERE id = ?`,
		snippet.Name, snippet.Code, snippet.Language, snippet.Description,
		snippet.CategoryID, snippet.UpdatedAt, snippet.ID); err != nil {
		return fmt.Errorf("sqlite: updating snippet %d: %w", snippet.ID, err)
	}
	return nil
}

// Delete removes a snippet by ID, reporting NotFound when the row never
// existed (RowsAffected is the existence check, same query either way).
func (r *Snippets) Delete(ctx context.Context, id int64) error {
	result, err := r.db.conn.ExecContext(ctx, `DELETE FROM snippets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting snippet %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("snippet", id)
	}
	return nil
}

// DeleteByCategory bulk-removes every snippet referencing categoryID.
// Zero matches is a no-op, not an error.
func (r *Snippets) DeleteByCategory(ctx context.Context, categoryID int64) error {
	if _, err := r.db.conn.ExecContext(ctx,
		`DELETE FROM snippets WHERE category_id = ?`, categoryID); err != nil {
		return fmt.Errorf("sqlite: deleting snippets for category %d: %w", categoryID, err)
	}
	return nil
}
