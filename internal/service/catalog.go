package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/irozhkov/library-server/internal/logger"
	"github.com/irozhkov/library-server/internal/model"
	"github.com/irozhkov/library-server/internal/policy"
)

// BookAttrs carries the caller-supplied book fields for create/update.
type BookAttrs struct {
	Title       string
	Author      string
	Genre       string
	ISBN        string
	TotalCopies int
	Description string
}

// Catalog manages the book catalog.
type Catalog struct {
	bookStore model.BookStore
	logger    *logger.Logger
}

func NewCatalog(bookStore model.BookStore, logger *logger.Logger) *Catalog {
	return &Catalog{
		bookStore: bookStore,
		logger:    logger,
	}
}

// validate collects every violated book invariant. exclude skips the
// book's own row on updates when checking the uniqueness constraints.
func (c *Catalog) validate(ctx context.Context, attrs BookAttrs, exclude uuid.UUID) error {
	messages := make([]string, 0, 4)
	if strings.TrimSpace(attrs.Title) == "" {
		messages = append(messages, "Title can't be blank")
	}
	if strings.TrimSpace(attrs.Author) == "" {
		messages = append(messages, "Author can't be blank")
	}
	if strings.TrimSpace(attrs.Genre) == "" {
		messages = append(messages, "Genre can't be blank")
	}
	if strings.TrimSpace(attrs.ISBN) == "" {
		messages = append(messages, "ISBN can't be blank")
	}
	if attrs.TotalCopies < 0 {
		messages = append(messages, "Total copies must be greater than or equal to 0")
	}

	if strings.TrimSpace(attrs.ISBN) != "" {
		taken, err := c.bookStore.ISBNTaken(ctx, attrs.ISBN, exclude)
		if err != nil {
			return fmt.Errorf("failed to check isbn uniqueness: %w", err)
		}
		if taken {
			messages = append(messages, "ISBN has already been taken")
		}
	}
	if strings.TrimSpace(attrs.Title) != "" && strings.TrimSpace(attrs.Author) != "" {
		taken, err := c.bookStore.TitleAuthorTaken(ctx, attrs.Title, attrs.Author, exclude)
		if err != nil {
			return fmt.Errorf("failed to check title/author uniqueness: %w", err)
		}
		if taken {
			messages = append(messages, "Title and author combination already exists")
		}
	}

	if len(messages) > 0 {
		return model.NewValidationError(messages...)
	}
	return nil
}

// Create adds a book to the catalog. Librarian only.
func (c *Catalog) Create(ctx context.Context, actor model.User, attrs BookAttrs) (model.Book, error) {
	if !policy.Allowed(actor.Role, policy.BookWrite) {
		return model.Book{}, model.ErrForbidden
	}

	if err := c.validate(ctx, attrs, uuid.Nil); err != nil {
		return model.Book{}, err
	}

	now := time.Now()
	book := model.Book{
		ID:          uuid.New(),
		Title:       attrs.Title,
		Author:      attrs.Author,
		Genre:       attrs.Genre,
		ISBN:        attrs.ISBN,
		TotalCopies: attrs.TotalCopies,
		Description: attrs.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	book, err := c.bookStore.Create(ctx, book)
	if err != nil {
		if _, ok := model.AsValidationError(err); ok {
			return model.Book{}, err
		}
		return model.Book{}, fmt.Errorf("failed to create book: %w", err)
	}

	c.logger.Info("Catalog service: book created",
		"book_id", book.ID,
		"title", book.Title)

	return book, nil
}

// Update replaces a book's attributes. Librarian only.
func (c *Catalog) Update(ctx context.Context, actor model.User, id uuid.UUID, attrs BookAttrs) (model.Book, error) {
	if !policy.Allowed(actor.Role, policy.BookWrite) {
		return model.Book{}, model.ErrForbidden
	}

	book, err := c.bookStore.GetByID(ctx, id)
	if err != nil {
		return model.Book{}, err
	}

	if err := c.validate(ctx, attrs, id); err != nil {
		return model.Book{}, err
	}

	book.Title = attrs.Title
	book.Author = attrs.Author
	book.Genre = attrs.Genre
	book.ISBN = attrs.ISBN
	book.TotalCopies = attrs.TotalCopies
	book.Description = attrs.Description
	book.UpdatedAt = time.Now()

	book, err = c.bookStore.Update(ctx, book)
	if err != nil {
		if _, ok := model.AsValidationError(err); ok {
			return model.Book{}, err
		}
		return model.Book{}, fmt.Errorf("failed to update book: %w", err)
	}

	return book, nil
}

// Get returns a single book with its current available copy count.
func (c *Catalog) Get(ctx context.Context, actor model.User, id uuid.UUID) (model.Book, error) {
	if !policy.Allowed(actor.Role, policy.BookRead) {
		return model.Book{}, model.ErrForbidden
	}

	return c.bookStore.GetByID(ctx, id)
}

// List returns the catalog narrowed by the filter.
func (c *Catalog) List(ctx context.Context, actor model.User, filter model.BookFilter) ([]model.Book, error) {
	if !policy.Allowed(actor.Role, policy.BookRead) {
		return nil, model.ErrForbidden
	}

	return c.bookStore.List(ctx, filter)
}

// Delete removes a book. Librarian only; blocked with ErrConflict while
// any active borrowing references the book.
func (c *Catalog) Delete(ctx context.Context, actor model.User, id uuid.UUID) error {
	if !policy.Allowed(actor.Role, policy.BookWrite) {
		return model.ErrForbidden
	}

	if err := c.bookStore.Delete(ctx, id); err != nil {
		return err
	}

	c.logger.Info("Catalog service: book deleted", "book_id", id)

	return nil
}
