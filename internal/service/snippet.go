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

// Validation constants.
const (
	MaxSnippetNameLength = 100
	MaxCodeLength        = 100000 // ~100KB of code
)

// SnippetService handles business logic for code snippets, including the
// substring search over the collection.
type SnippetService struct {
	repo   repository.SnippetRepository
	logger *slog.Logger
}

// NewSnippetService creates a new SnippetService.
func NewSnippetService(repo repository.SnippetRepository, logger *slog.Logger) *SnippetService {
	return &SnippetService{
		repo:   repo,
		logger: logger,
	}
}

// GetAll returns every snippet.
func (s *SnippetService) GetAll(ctx context.Context) ([]model.Snippet, error) {
	snippets, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list snippets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing snippets: %w", err)
	}
	return snippets, nil
}

// GetByID returns one snippet, or apperror.ErrNotFound.
func (s *SnippetService) GetByID(ctx context.Context, id int64) (*model.Snippet, error) {
	if id <= 0 {
		return nil, apperror.ValidationFailed("id", "snippet ID must be positive")
	}
	return s.repo.GetByID(ctx, id)
}

// GetByCategory returns the snippets filed under categoryID, via the
// store's categoryId index.
func (s *SnippetService) GetByCategory(ctx context.Context, categoryID int64) ([]model.Snippet, error) {
	if categoryID <= 0 {
		return nil, apperror.ValidationFailed("categoryId", "category ID must be positive")
	}
	snippets, err := s.repo.GetByCategory(ctx, categoryID)
	if err != nil {
		s.logger.Error("failed to list snippets by category",
			slog.Int64("categoryId", categoryID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing snippets by category: %w", err)
	}
	return snippets, nil
}

// GetByLanguage returns the snippets written in language, via the store's
// language index. The match is exact — "Go" and "go" are different keys.
func (s *SnippetService) GetByLanguage(ctx context.Context, language string) ([]model.Snippet, error) {
	language = strings.TrimSpace(language)
	if language == "" {
		return nil, apperror.ValidationFailed("language", "language is required")
	}
	snippets, err := s.repo.GetByLanguage(ctx, language)
	if err != nil {
		s.logger.Error("failed to list snippets by language",
			slog.String("language", language),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing snippets by language: %w", err)
	}
	return snippets, nil
}

// Search performs a case-insensitive substring match of query against each
// snippet's name, code, and description — a snippet matches if ANY of the
// three contains the query. A non-zero categoryID narrows the result to
// that category afterwards.
//
// The scan is linear over the full collection with no persistent search
// index; fine for a local, single-user store with modest volume. An empty
// query trivially matches every snippet — callers that want "no query, no
// results" suppress the call themselves.
func (s *SnippetService) Search(ctx context.Context, query string, categoryID int64) ([]model.Snippet, error) {
	snippets, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to search snippets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("searching snippets: %w", err)
	}

	needle := strings.ToLower(query)
	matches := make([]model.Snippet, 0)
	for _, snippet := range snippets {
		if !strings.Contains(strings.ToLower(snippet.Name), needle) &&
			!strings.Contains(strings.ToLower(snippet.Code), needle) &&
			!strings.Contains(strings.ToLower(snippet.Description), needle) {
			continue
		}
		if categoryID != 0 && snippet.CategoryID != categoryID {
			continue
		}
		matches = append(matches, snippet)
	}
	return matches, nil
}

// Create validates and saves a new snippet. CategoryID is recorded as
// given: the store keeps no foreign keys, so a dangling reference is the
// caller's problem, not an error here.
func (s *SnippetService) Create(ctx context.Context, name, code, language, description string, categoryID int64) (*model.Snippet, error) {
	name = strings.TrimSpace(name)

	if name == "" {
		return nil, apperror.ValidationFailed("name", "snippet name is required")
	}
	if len(name) > MaxSnippetNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("snippet name must be %d characters or less", MaxSnippetNameLength))
	}
	if len(code) > MaxCodeLength {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
	}

	snippet := &model.Snippet{
		Name:        name,
		Code:        code,
		Language:    strings.TrimSpace(language),
		Description: strings.TrimSpace(description),
		CategoryID:  categoryID,
	}

	if err := s.repo.Add(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.Int64("id", snippet.ID),
		slog.String("name", snippet.Name),
	)
	return snippet, nil
}

// Update modifies an existing snippet.
//
// STRATEGY: "Fetch then update" — fetch the existing snippet (confirming
// it exists), apply changes to the copy, save it back. Empty name or
// language means "don't change"; code and description are always set (the
// user may legitimately clear them); categoryID 0 means "don't move".
func (s *SnippetService) Update(ctx context.Context, id int64, name, code, language, description string, categoryID int64) (*model.Snippet, error) {
	if id <= 0 {
		return nil, apperror.ValidationFailed("id", "snippet ID must be positive")
	}

	snippet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		if len(name) > MaxSnippetNameLength {
			return nil, apperror.ValidationFailed("name",
				fmt.Sprintf("snippet name must be %d characters or less", MaxSnippetNameLength))
		}
		snippet.Name = name
	}
	if language = strings.TrimSpace(language); language != "" {
		snippet.Language = language
	}
	if len(code) > MaxCodeLength {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
	}
	snippet.Code = code
	snippet.Description = strings.TrimSpace(description)
	if categoryID != 0 {
		snippet.CategoryID = categoryID
	}

	if err := s.repo.Update(ctx, snippet); err != nil {
		s.logger.Error("failed to update snippet",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated",
		slog.Int64("id", snippet.ID),
		slog.String("name", snippet.Name),
	)
	return snippet, nil
}

// Delete removes a snippet by its ID.
// Returns apperror.ErrNotFound if the snippet doesn't exist.
func (s *SnippetService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperror.ValidationFailed("id", "snippet ID must be positive")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("snippet deleted", slog.Int64("id", id))
	return nil
}

// DeleteByCategory bulk-removes every snippet filed under categoryID.
func (s *SnippetService) DeleteByCategory(ctx context.Context, categoryID int64) error {
	if categoryID <= 0 {
		return apperror.ValidationFailed("categoryId", "category ID must be positive")
	}

	if err := s.repo.DeleteByCategory(ctx, categoryID); err != nil {
		s.logger.Error("failed to delete snippets by category",
			slog.Int64("categoryId", categoryID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting snippets by category: %w", err)
	}

	s.logger.Info("snippets deleted by category", slog.Int64("categoryId", categoryID))
	return nil
}
