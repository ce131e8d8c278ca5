package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/irozhkov/library-server/internal/model"
)

var _ model.BorrowingStore = (*BorrowingRepository)(nil)

type BorrowingRepository struct {
	db *Connection
}

func NewBorrowingRepository(db *Connection) *BorrowingRepository {
	return &BorrowingRepository{
		db: db,
	}
}

const borrowingColumns = `br.id, br.user_id, br.book_id, br.borrowed_at, br.due_at, br.returned_at, br.created_at, br.updated_at`

// Reads join the referenced user and book the way the API renders them.
const borrowingJoinedQuery = `SELECT ` + borrowingColumns + `,
		u.name, u.email, u.role,
		b.title, b.author, b.genre, b.isbn
	FROM borrowings br
	JOIN users u ON u.id = br.user_id
	JOIN books b ON b.id = br.book_id`

func scanJoinedBorrowing(row pgx.Row) (model.Borrowing, error) {
	var borrowing model.Borrowing
	err := row.Scan(
		&borrowing.ID, &borrowing.UserID, &borrowing.BookID,
		&borrowing.BorrowedAt, &borrowing.DueAt, &borrowing.ReturnedAt,
		&borrowing.CreatedAt, &borrowing.UpdatedAt,
		&borrowing.User.Name, &borrowing.User.Email, &borrowing.User.Role,
		&borrowing.Book.Title, &borrowing.Book.Author, &borrowing.Book.Genre, &borrowing.Book.ISBN,
	)
	if err != nil {
		return model.Borrowing{}, err
	}
	borrowing.User.ID = borrowing.UserID
	borrowing.Book.ID = borrowing.BookID
	return borrowing, nil
}

const uniqueViolationCode = "23505"

// CreateActive inserts a loan while holding both lending invariants at
// the instant of insert. The book row is locked FOR UPDATE so two
// concurrent borrows of the last copy serialize, and the partial unique
// index on active (user_id, book_id) backs the uniqueness invariant for
// anything that slips past the in-transaction check.
func (r *BorrowingRepository) CreateActive(ctx context.Context, borrowing model.Borrowing) (model.Borrowing, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return model.Borrowing{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var totalCopies int
	err = tx.QueryRow(ctx, `SELECT total_copies FROM books WHERE id = $1 FOR UPDATE`, borrowing.BookID).Scan(&totalCopies)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Borrowing{}, model.ErrNotFound
		}
		return model.Borrowing{}, fmt.Errorf("failed to lock book row: %w", err)
	}

	var activeCount int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM borrowings WHERE book_id = $1 AND returned_at IS NULL`,
		borrowing.BookID,
	).Scan(&activeCount)
	if err != nil {
		return model.Borrowing{}, fmt.Errorf("failed to count active borrowings: %w", err)
	}
	if activeCount >= totalCopies {
		return model.Borrowing{}, model.ErrNoAvailableCopies
	}

	var saved model.Borrowing
	err = tx.QueryRow(ctx,
		`INSERT INTO borrowings AS br (id, user_id, book_id, borrowed_at, due_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+borrowingColumns,
		borrowing.ID, borrowing.UserID, borrowing.BookID,
		borrowing.BorrowedAt, borrowing.DueAt, borrowing.CreatedAt, borrowing.UpdatedAt,
	).Scan(
		&saved.ID, &saved.UserID, &saved.BookID,
		&saved.BorrowedAt, &saved.DueAt, &saved.ReturnedAt,
		&saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return model.Borrowing{}, model.ErrDuplicateBorrowing
		}
		return model.Borrowing{}, fmt.Errorf("failed to create borrowing: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Borrowing{}, fmt.Errorf("failed to commit borrowing: %w", err)
	}

	return saved, nil
}

func (r *BorrowingRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Borrowing, error) {
	borrowing, err := scanJoinedBorrowing(r.db.QueryRow(ctx, borrowingJoinedQuery+` WHERE br.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Borrowing{}, model.ErrNotFound
		}
		return model.Borrowing{}, fmt.Errorf("failed to get borrowing by id: %w", err)
	}

	return borrowing, nil
}

func (r *BorrowingRepository) ListAll(ctx context.Context) ([]model.Borrowing, error) {
	rows, err := r.db.Query(ctx, borrowingJoinedQuery+` ORDER BY br.borrowed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list borrowings: %w", err)
	}
	defer rows.Close()

	return collectBorrowings(rows)
}

func (r *BorrowingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Borrowing, error) {
	rows, err := r.db.Query(ctx, borrowingJoinedQuery+` WHERE br.user_id = $1 ORDER BY br.borrowed_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list borrowings by user: %w", err)
	}
	defer rows.Close()

	return collectBorrowings(rows)
}

func (r *BorrowingRepository) ListOverdueByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]model.Borrowing, error) {
	rows, err := r.db.Query(ctx,
		borrowingJoinedQuery+` WHERE br.user_id = $1 AND br.returned_at IS NULL AND br.due_at < $2 ORDER BY br.borrowed_at DESC`,
		userID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue borrowings: %w", err)
	}
	defer rows.Close()

	return collectBorrowings(rows)
}

func collectBorrowings(rows pgx.Rows) ([]model.Borrowing, error) {
	borrowings := make([]model.Borrowing, 0)
	for rows.Next() {
		borrowing, err := scanJoinedBorrowing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan borrowing: %w", err)
		}
		borrowings = append(borrowings, borrowing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate borrowings: %w", err)
	}

	return borrowings, nil
}

// MarkReturned performs the single Active -> Returned transition. The
// returned_at IS NULL guard makes a second return a no-op on state.
func (r *BorrowingRepository) MarkReturned(ctx context.Context, id uuid.UUID, returnedAt time.Time) (model.Borrowing, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE borrowings SET returned_at = $2, updated_at = $2 WHERE id = $1 AND returned_at IS NULL`,
		id, returnedAt,
	)
	if err != nil {
		return model.Borrowing{}, fmt.Errorf("failed to mark borrowing returned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM borrowings WHERE id = $1)`, id).Scan(&exists); err != nil {
			return model.Borrowing{}, fmt.Errorf("failed to check borrowing existence: %w", err)
		}
		if exists {
			return model.Borrowing{}, model.ErrAlreadyReturned
		}
		return model.Borrowing{}, model.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *BorrowingRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM borrowings WHERE returned_at IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active borrowings: %w", err)
	}
	return count, nil
}

func (r *BorrowingRepository) CountDueBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM borrowings WHERE returned_at IS NULL AND due_at >= $1 AND due_at <= $2`,
		from, to,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count due borrowings: %w", err)
	}
	return count, nil
}

// OverdueMembers lists every member holding at least one overdue loan,
// annotated with their overdue count.
func (r *BorrowingRepository) OverdueMembers(ctx context.Context, now time.Time) ([]model.OverdueMember, error) {
	query := `SELECT u.id, u.name, u.email, COUNT(*) AS overdue_count
			  FROM borrowings br
			  JOIN users u ON u.id = br.user_id
			  WHERE u.role = $1 AND br.returned_at IS NULL AND br.due_at < $2
			  GROUP BY u.id, u.name, u.email
			  ORDER BY u.name`

	rows, err := r.db.Query(ctx, query, model.RoleMember, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue members: %w", err)
	}
	defer rows.Close()

	members := make([]model.OverdueMember, 0)
	for rows.Next() {
		var member model.OverdueMember
		if err := rows.Scan(&member.UserID, &member.Name, &member.Email, &member.OverdueCount); err != nil {
			return nil, fmt.Errorf("failed to scan overdue member: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate overdue members: %w", err)
	}

	return members, nil
}

func (r *BorrowingRepository) HasActive(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM borrowings WHERE user_id = $1 AND book_id = $2 AND returned_at IS NULL)`
	if err := r.db.QueryRow(ctx, query, userID, bookID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active borrowing: %w", err)
	}
	return exists, nil
}
