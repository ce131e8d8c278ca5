package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/irozhkov/library-server/internal/model"
)

const foreignKeyViolationCode = "23503"

var _ model.BookStore = (*BookRepository)(nil)

type BookRepository struct {
	db *Connection
}

func NewBookRepository(db *Connection) *BookRepository {
	return &BookRepository{
		db: db,
	}
}

// available_copies is always recomputed from the active borrowing count,
// never stored.
const bookColumns = `b.id, b.title, b.author, b.genre, b.isbn, b.total_copies, b.description,
		b.total_copies - (SELECT COUNT(*) FROM borrowings WHERE book_id = b.id AND returned_at IS NULL) AS available_copies,
		b.created_at, b.updated_at`

func scanBook(row pgx.Row) (model.Book, error) {
	var book model.Book
	err := row.Scan(
		&book.ID, &book.Title, &book.Author, &book.Genre, &book.ISBN,
		&book.TotalCopies, &book.Description, &book.AvailableCopies,
		&book.CreatedAt, &book.UpdatedAt,
	)
	return book, err
}

// bookUniqueViolation translates a unique-index violation into the same
// validation message the pre-insert check produces, so a write that
// loses the check-then-insert race reads no differently to the caller.
func bookUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return nil
	}
	switch pgErr.ConstraintName {
	case "index_books_on_isbn":
		return model.NewValidationError("ISBN has already been taken")
	case "index_books_on_title_author":
		return model.NewValidationError("Title and author combination already exists")
	}
	return nil
}

func (r *BookRepository) Create(ctx context.Context, book model.Book) (model.Book, error) {
	query := `INSERT INTO books AS b (id, title, author, genre, isbn, total_copies, description, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING ` + bookColumns

	savedBook, err := scanBook(r.db.QueryRow(ctx, query,
		book.ID, book.Title, book.Author, book.Genre, book.ISBN,
		book.TotalCopies, book.Description, book.CreatedAt, book.UpdatedAt,
	))
	if err != nil {
		if vErr := bookUniqueViolation(err); vErr != nil {
			return model.Book{}, vErr
		}
		return model.Book{}, fmt.Errorf("failed to create book: %w", err)
	}

	return savedBook, nil
}

func (r *BookRepository) Update(ctx context.Context, book model.Book) (model.Book, error) {
	query := `UPDATE books AS b
			  SET title = $2, author = $3, genre = $4, isbn = $5, total_copies = $6, description = $7, updated_at = $8
			  WHERE id = $1
			  RETURNING ` + bookColumns

	savedBook, err := scanBook(r.db.QueryRow(ctx, query,
		book.ID, book.Title, book.Author, book.Genre, book.ISBN,
		book.TotalCopies, book.Description, book.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Book{}, model.ErrNotFound
		}
		if vErr := bookUniqueViolation(err); vErr != nil {
			return model.Book{}, vErr
		}
		return model.Book{}, fmt.Errorf("failed to update book: %w", err)
	}

	return savedBook, nil
}

func (r *BookRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books b WHERE b.id = $1`

	book, err := scanBook(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Book{}, model.ErrNotFound
		}
		return model.Book{}, fmt.Errorf("failed to get book by id: %w", err)
	}

	return book, nil
}

// List applies the filter criteria as independent case-insensitive
// substring predicates. An empty filter returns the whole catalog.
func (r *BookRepository) List(ctx context.Context, filter model.BookFilter) ([]model.Book, error) {
	conditions := make([]string, 0, 4)
	args := make([]any, 0, 4)

	addCondition := func(condition, value string) {
		args = append(args, "%"+value+"%")
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if filter.Query != "" {
		addCondition("(b.title ILIKE $%[1]d OR b.author ILIKE $%[1]d OR b.genre ILIKE $%[1]d)", filter.Query)
	}
	if filter.Title != "" {
		addCondition("b.title ILIKE $%d", filter.Title)
	}
	if filter.Author != "" {
		addCondition("b.author ILIKE $%d", filter.Author)
	}
	if filter.Genre != "" {
		addCondition("b.genre ILIKE $%d", filter.Genre)
	}

	query := `SELECT ` + bookColumns + ` FROM books b`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY b.title, b.author`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}

	return books, nil
}

// Delete removes a book unless an active borrowing still references it.
// The existence guard runs in the same statement as the delete, so a
// borrow committed between a read and this call cannot be lost. Returned
// borrowings go with the book via the cascading foreign key.
func (r *BookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM books b
			  WHERE b.id = $1
			  AND NOT EXISTS (SELECT 1 FROM borrowings WHERE book_id = b.id AND returned_at IS NULL)`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
			return model.ErrConflict
		}
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check book existence: %w", err)
		}
		if exists {
			return model.ErrConflict
		}
		return model.ErrNotFound
	}

	return nil
}

func (r *BookRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return count, nil
}

func (r *BookRepository) ISBNTaken(ctx context.Context, isbn string, exclude uuid.UUID) (bool, error) {
	var taken bool
	query := `SELECT EXISTS (SELECT 1 FROM books WHERE isbn = $1 AND id <> $2)`
	if err := r.db.QueryRow(ctx, query, isbn, exclude).Scan(&taken); err != nil {
		return false, fmt.Errorf("failed to check isbn uniqueness: %w", err)
	}
	return taken, nil
}

func (r *BookRepository) TitleAuthorTaken(ctx context.Context, title, author string, exclude uuid.UUID) (bool, error) {
	var taken bool
	query := `SELECT EXISTS (SELECT 1 FROM books WHERE title = $1 AND author = $2 AND id <> $3)`
	if err := r.db.QueryRow(ctx, query, title, author, exclude).Scan(&taken); err != nil {
		return false, fmt.Errorf("failed to check title/author uniqueness: %w", err)
	}
	return taken, nil
}
