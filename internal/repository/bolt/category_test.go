package bolt

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/notepaste/internal/apperror"
	"github.com/sakif/notepaste/internal/model"
)

func createTestCategory(t *testing.T, db *DB, name string) *model.Category {
	t.Helper()
	category := &model.Category{Name: name}
	if err := NewCategories(db).Add(context.Background(), category); err != nil {
		t.Fatalf("failed to create test category %q: %v", name, err)
	}
	return category
}

func createTestSnippet(t *testing.T, db *DB, name, language string, categoryID int64) *model.Snippet {
	t.Helper()
	snippet := &model.Snippet{
		Name:       name,
		Code:       "fmt.Println(42)",
		Language:   language,
		CategoryID: categoryID,
	}
	if err := NewSnippets(db).Add(context.Background(), snippet); err != nil {
		t.Fatalf("failed to create test snippet %q: %v", name, err)
	}
	return snippet
}

// =========================================================================
// ADD TESTS
// =========================================================================

func TestCategoryAdd(t *testing.T) {
	db := newTestDB(t)
	repo := NewCategories(db)

	category := &model.Category{Name: "Go"}
	if err := repo.Add(context.Background(), category); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if category.ID <= 0 {
		t.Errorf("Add() assigned ID = %d, want positive", category.ID)
	}
	if category.CreatedAt.IsZero() {
		t.Error("Add() did not set CreatedAt")
	}
	if category.UpdatedAt.IsZero() {
		t.Error("Add() did not set UpdatedAt")
	}

	// Round-trip: read it back under the generated key.
	found, err := repo.GetByID(context.Background(), category.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Name != "Go" {
		t.Errorf("Name = %q, want %q", found.Name, "Go")
	}
	if found.ID != category.ID {
		t.Errorf("ID = %d, want %d", found.ID, category.ID)
	}
}

func TestCategoryAdd_DuplicateName(t *testing.T) {
	db := newTestDB(t)
	repo := NewCategories(db)

	first := createTestCategory(t, db, "Go")

	err := repo.Add(context.Background(), &model.Category{Name: "Go"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Add() duplicate error = %v, want ErrConflict", err)
	}

	// The failed insert must not have touched the first row.
	found, err := repo.GetByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Name != "Go" || !found.UpdatedAt.Equal(first.UpdatedAt) {
		t.Errorf("first category mutated by failed duplicate insert: %+v", found)
	}

	all, err := repo.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("GetAll() = %d categories, want 1", len(all))
	}
}

func TestCategoryIDsNeverReused(t *testing.T) {
	db := newTestDB(t)
	repo := NewCategories(db)

	first := createTestCategory(t, db, "Go")
	if err := repo.Delete(context.Background(), first.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	second := createTestCategory(t, db, "Rust")
	if second.ID <= first.ID {
		t.Errorf("ID after delete = %d, want > %d (ids are never reused)", second.ID, first.ID)
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestCategoryGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := NewCategories(db).GetByID(context.Background(), 9999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestCategoryGetAll_NaturalKeyOrder(t *testing.T) {
	db := newTestDB(t)

	createTestCategory(t, db, "Go")
	createTestCategory(t, db, "Rust")
	createTestCategory(t, db, "Zig")

	all, err := NewCategories(db).GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("GetAll() = %d categories, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].ID <= all[i-1].ID {
			t.Errorf("GetAll() not in ascending key order: %d then %d", all[i-1].ID, all[i].ID)
		}
	}
}

func TestCategoryGetAll_Empty(t *testing.T) {
	db := newTestDB(t)

	all, err := NewCategories(db).GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(all) != 0 {
		t.Errorf("GetAll() = %d categories, want 0", len(all))
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestCategoryUpdate_Rename(t *testing.T) {
	db := newTestDB(t)
	repo := NewCategories(db)

	created := createTestCategory(t, db, "Go")

	renamed := &model.Category{ID: created.ID, Name: "Golang"}
	if err := repo.Update(context.Background(), renamed); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := repo.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Name != "Golang" {
		t.Errorf("Name = %q, want %q", found.Name, "Golang")
	}
	if !found.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt changed on update: %v -> %v", created.CreatedAt, found.CreatedAt)
	}
	if !found.UpdatedAt.After(created.UpdatedAt) {
		t.Errorf("UpdatedAt not refreshed: %v", found.UpdatedAt)
	}

	// The old name is free again.
	if err := repo.Add(context.Background(), &model.Category{Name: "Go"}); err != nil {
		t.Errorf("Add() with freed name error = %v", err)
	}
}

func TestCategoryUpdate_NameTaken(t *testing.T) {
	db := newTestDB(t)
	repo := NewCategories(db)

	createTestCategory(t, db, "Go")
	other := createTestCategory(t, db, "Rust")

	err := repo.Update(context.Background(), &model.Category{ID: other.ID, Name: "Go"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Update() onto taken name error = %v, want ErrConflict", err)
	}

	// Nothing was written.
	found, err := repo.GetByID(context.Background(), other.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Name != "Rust" {
		t.Errorf("Name = %q, want %q (failed rename must not stick)", found.Name, "Rust")
	}
}

func TestCategoryUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := NewCategories(db).Update(context.Background(), &model.Category{ID: 9999, Name: "Ghost"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// DELETE / CASCADE TESTS
// =========================================================================

func TestCategoryDelete_Cascade(t *testing.T) {
	db := newTestDB(t)
	categories := NewCategories(db)
	snippets := NewSnippets(db)

	doomed := createTestCategory(t, db, "Go")
	kept := createTestCategory(t, db, "Rust")

	createTestSnippet(t, db, "hello", "go", doomed.ID)
	createTestSnippet(t, db, "world", "go", doomed.ID)
	survivor := createTestSnippet(t, db, "ferris", "rust", kept.ID)

	if err := categories.Delete(context.Background(), doomed.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	// The category and all of its snippets are gone.
	if _, err := categories.GetByID(context.Background(), doomed.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after cascade error = %v, want ErrNotFound", err)
	}
	orphans, err := snippets.GetByCategory(context.Background(), doomed.ID)
	if err != nil {
		t.Fatalf("GetByCategory() error = %v", err)
	}
	if len(orphans) != 0 {
		t.Errorf("GetByCategory() after cascade = %d snippets, want 0", len(orphans))
	}

	// The other category's snippet is untouched.
	if _, err := snippets.GetByID(context.Background(), survivor.ID); err != nil {
		t.Errorf("GetByID() for surviving snippet error = %v", err)
	}
}

func TestCategoryDelete_NoSnippets(t *testing.T) {
	db := newTestDB(t)
	repo := NewCategories(db)

	created := createTestCategory(t, db, "Empty")
	if err := repo.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(context.Background(), created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestCategoryDelete_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := NewCategories(db).Delete(context.Background(), 9999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}
