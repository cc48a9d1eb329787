package model

import "time"

// Snippet represents a saved code snippet.
//
// CategoryID is a logical reference to Category.ID. The store does NOT
// enforce it — a snippet can carry a CategoryID that no longer resolves,
// and repositories never validate it on write. Callers that need strict
// integrity must check it themselves.
//
// CreatedAt is set once at insert and immutable afterwards; UpdatedAt is
// refreshed on every update.
type Snippet struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Language    string    `json:"language"`
	Description string    `json:"description"`
	CategoryID  int64     `json:"categoryId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
