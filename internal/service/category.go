// Package service contains the business logic layer of the application.
//
// Services validate input, enforce business rules, and log domain events;
// repositories read and write the store. Services take the repository
// INTERFACES from internal/repository, not a concrete backend — the
// composition root decides whether bolt or sqlite sits underneath, and
// tests substitute in-memory mocks.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/notepaste/internal/apperror"
	"github.com/sakif/notepaste/internal/model"
	"github.com/sakif/notepaste/internal/repository"
)

// MaxCategoryNameLength bounds user-supplied category names.
const MaxCategoryNameLength = 100

// CategoryService handles business logic for categories, including the
// cascading delete that takes a category's snippets with it.
type CategoryService struct {
	repo   repository.CategoryRepository
	logger *slog.Logger
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo repository.CategoryRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		repo:   repo,
		logger: logger,
	}
}

// GetAll returns every category.
func (s *CategoryService) GetAll(ctx context.Context) ([]model.Category, error) {
	categories, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list categories", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

// GetByID returns one category, or apperror.ErrNotFound.
func (s *CategoryService) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	if id <= 0 {
		return nil, apperror.ValidationFailed("id", "category ID must be positive")
	}
	// NotFound is a normal answer here, not a failure — don't log it.
	return s.repo.GetByID(ctx, id)
}

// Create validates and saves a new category. The store assigns the ID and
// rejects a name that is already taken (apperror.ErrConflict).
func (s *CategoryService) Create(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)

	if name == "" {
		return nil, apperror.ValidationFailed("name", "category name is required")
	}
	if len(name) > MaxCategoryNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("category name must be %d characters or less", MaxCategoryNameLength))
	}

	category := &model.Category{Name: name}
	if err := s.repo.Add(ctx, category); err != nil {
		s.logger.Error("failed to create category",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("category created",
		slog.Int64("id", category.ID),
		slog.String("name", category.Name),
	)
	return category, nil
}

// Update renames an existing category, refreshing its updatedAt.
// Renaming onto a name another category holds fails with
// apperror.ErrConflict and changes nothing.
func (s *CategoryService) Update(ctx context.Context, id int64, name string) (*model.Category, error) {
	if id <= 0 {
		return nil, apperror.ValidationFailed("id", "category ID must be positive")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "category name is required")
	}
	if len(name) > MaxCategoryNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("category name must be %d characters or less", MaxCategoryNameLength))
	}

	category := &model.Category{ID: id, Name: name}
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("category updated",
		slog.Int64("id", category.ID),
		slog.String("name", category.Name),
	)
	return category, nil
}

// Delete removes a category together with all snippets that reference it.
// The repository runs the cascade in a single transaction, so a failure
// leaves both collections exactly as they were.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperror.ValidationFailed("id", "category ID must be positive")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("category deleted", slog.Int64("id", id))
	return nil
}
