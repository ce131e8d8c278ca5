package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookFilter narrows catalog listings. Query matches title, author and
// genre; the dedicated fields match only their own column. All matches
// are case-insensitive substring matches and combine with AND.
type BookFilter struct {
	Query  string
	Title  string
	Author string
	Genre  string
}

// BookStore defines persistence operations for the catalog.
type BookStore interface {
	Create(ctx context.Context, book Book) (Book, error)
	Update(ctx context.Context, book Book) (Book, error)
	GetByID(ctx context.Context, id uuid.UUID) (Book, error)
	List(ctx context.Context, filter BookFilter) ([]Book, error)
	// Delete removes a book, or returns ErrConflict while any active
	// borrowing still references it.
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	ISBNTaken(ctx context.Context, isbn string, exclude uuid.UUID) (bool, error)
	TitleAuthorTaken(ctx context.Context, title, author string, exclude uuid.UUID) (bool, error)
}

// Book represents a catalog entry. AvailableCopies is derived from the
// active borrowing count on every read and is never written back.
type Book struct {
	ID              uuid.UUID
	Title           string
	Author          string
	Genre           string
	ISBN            string
	TotalCopies     int
	Description     string
	AvailableCopies int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Available reports whether at least one copy can still be borrowed.
func (b Book) Available() bool {
	return b.AvailableCopies > 0
}
