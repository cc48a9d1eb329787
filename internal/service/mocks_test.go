package service

import (
	"context"

	"github.com/sakif/notepaste/internal/apperror"
	"github.com/sakif/notepaste/internal/model"
)

// fakeCategoryRepo is an in-memory CategoryRepository. Setting failWith
// makes every method return that error, for exercising failure paths.
type fakeCategoryRepo struct {
	categories []model.Category
	nextID     int64
	failWith   error
}

func (f *fakeCategoryRepo) GetAll(ctx context.Context) ([]model.Category, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]model.Category, len(f.categories))
	copy(out, f.categories)
	return out, nil
}

func (f *fakeCategoryRepo) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, c := range f.categories {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, apperror.NotFound("category", id)
}

func (f *fakeCategoryRepo) Add(ctx context.Context, category *model.Category) error {
	if f.failWith != nil {
		return f.failWith
	}
	for _, c := range f.categories {
		if c.Name == category.Name {
			return apperror.Conflict("category", category.Name)
		}
	}
	f.nextID++
	category.ID = f.nextID
	f.categories = append(f.categories, *category)
	return nil
}

func (f *fakeCategoryRepo) Update(ctx context.Context, category *model.Category) error {
	if f.failWith != nil {
		return f.failWith
	}
	for i, c := range f.categories {
		if c.ID == category.ID {
			f.categories[i].Name = category.Name
			return nil
		}
	}
	return apperror.NotFound("category", category.ID)
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id int64) error {
	if f.failWith != nil {
		return f.failWith
	}
	for i, c := range f.categories {
		if c.ID == id {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("category", id)
}

// fakeSnippetRepo is an in-memory SnippetRepository.
type fakeSnippetRepo struct {
	snippets []model.Snippet
	nextID   int64
	failWith error
}

func (f *fakeSnippetRepo) GetAll(ctx context.Context) ([]model.Snippet, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]model.Snippet, len(f.snippets))
	copy(out, f.snippets)
	return out, nil
}

func (f *fakeSnippetRepo) GetByID(ctx context.Context, id int64) (*model.Snippet, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, s := range f.snippets {
		if s.ID == id {
			s := s
			return &s, nil
		}
	}
	return nil, apperror.NotFound("snippet", id)
}

func (f *fakeSnippetRepo) GetByCategory(ctx context.Context, categoryID int64) ([]model.Snippet, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]model.Snippet, 0)
	for _, s := range f.snippets {
		if s.CategoryID == categoryID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSnippetRepo) GetByLanguage(ctx context.Context, language string) ([]model.Snippet, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]model.Snippet, 0)
	for _, s := range f.snippets {
		if s.Language == language {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSnippetRepo) Add(ctx context.Context, snippet *model.Snippet) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.nextID++
	snippet.ID = f.nextID
	f.snippets = append(f.snippets, *snippet)
	return nil
}

func (f *fakeSnippetRepo) Update(ctx context.Context, snippet *model.Snippet) error {
	if f.failWith != nil {
		return f.failWith
	}
	for i, s := range f.snippets {
		if s.ID == snippet.ID {
			f.snippets[i] = *snippet
			return nil
		}
	}
	return apperror.NotFound("snippet", snippet.ID)
}

func (f *fakeSnippetRepo) Delete(ctx context.Context, id int64) error {
	if f.failWith != nil {
		return f.failWith
	}
	for i, s := range f.snippets {
		if s.ID == id {
			f.snippets = append(f.snippets[:i], f.snippets[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("snippet", id)
}

func (f *fakeSnippetRepo) DeleteByCategory(ctx context.Context, categoryID int64) error {
	if f.failWith != nil {
		return f.failWith
	}
	kept := f.snippets[:0]
	for _, s := range f.snippets {
		if s.CategoryID != categoryID {
			kept = append(kept, s)
		}
	}
	f.snippets = kept
	return nil
}
