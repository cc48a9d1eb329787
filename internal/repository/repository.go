// Package repository defines the storage interfaces the service layer
// programs against. Two implementations exist: the bolt package (the
// primary embedded key-value backend) and the sqlite package. Services
// never import either directly — the composition root picks one.
package repository

import (
	"context"

	"github.com/sakif/notepaste/internal/model"
)

// CategoryRepository is CRUD over the category collection.
//
// Add assigns the generated ID and both timestamps on the passed struct.
// Update overwrites by ID, refreshing UpdatedAt and preserving CreatedAt.
// Delete cascades: the category and every snippet referencing it are
// removed in a single storage transaction — all or nothing.
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]model.Category, error)
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	Add(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id int64) error
}

// SnippetRepository is CRUD plus index-scoped lookups over the snippet
// collection. GetByCategory and GetByLanguage are equality scans of the
// corresponding secondary index, not full-collection filters.
type SnippetRepository interface {
	GetAll(ctx context.Context) ([]model.Snippet, error)
	GetByID(ctx context.Context, id int64) (*model.Snippet, error)
	GetByCategory(ctx context.Context, categoryID int64) ([]model.Snippet, error)
	GetByLanguage(ctx context.Context, language string) ([]model.Snippet, error)
	Add(ctx context.Context, snippet *model.Snippet) error
	Update(ctx context.Context, snippet *model.Snippet) error
	Delete(ctx context.Context, id int64) error
	DeleteByCategory(ctx context.Context, categoryID int64) error
}
