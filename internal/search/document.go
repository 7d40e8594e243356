// Package search provides full-text catalog search backed by Bleve.
package search

import (
	"github.com/inkwellapp/inkwell-server/internal/domain"
)

// BookDocument is the flattened representation of a book in the search
// index.
type BookDocument struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	AuthorID    string  `json:"author_id"`
	CategoryID  string  `json:"category_id"`
	Price       float64 `json:"price"`
	CreatedAt   int64   `json:"created_at"`
}

// NewBookDocument flattens a catalog book for indexing. Deleted and archived
// books should not be passed here; the caller filters them out.
func NewBookDocument(book *domain.Book) *BookDocument {
	desc := book.Description.Long
	if desc == "" {
		desc = book.Description.Short
	}
	return &BookDocument{
		ID:          book.ID,
		Title:       book.Title,
		Description: desc,
		AuthorID:    book.AuthorID,
		CategoryID:  book.CategoryID,
		Price:       book.Price,
		CreatedAt:   book.CreatedAt.UnixMilli(),
	}
}

// ToMap converts the document to a map so field names match the index
// mapping exactly.
func (d *BookDocument) ToMap() map[string]any {
	return map[string]any{
		"id":          d.ID,
		"title":       d.Title,
		"description": d.Description,
		"author_id":   d.AuthorID,
		"category_id": d.CategoryID,
		"price":       d.Price,
		"created_at":  d.CreatedAt,
	}
}
