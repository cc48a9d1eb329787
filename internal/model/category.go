// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Category groups snippets under a user-chosen name.
//
// ID is assigned by the store on insert and never changes afterwards.
// Name is unique across all categories — the store rejects duplicates.
// The `json:"..."` tags match the field names of the persisted records,
// so a Category round-trips through the store byte-for-byte.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
