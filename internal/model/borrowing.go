package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LoanPeriod is the fixed lending term applied to every borrowing.
const LoanPeriod = 14 * 24 * time.Hour

// OverdueMember is a dashboard row for a member holding overdue loans.
type OverdueMember struct {
	UserID       uuid.UUID
	Name         string
	Email        string
	OverdueCount int64
}

// BorrowingStore defines persistence operations for loans.
//
// CreateActive must hold the availability and uniqueness invariants at
// the instant of insert: it returns ErrNoAvailableCopies when the book
// has no free copy left and ErrDuplicateBorrowing when the user already
// holds an active loan of the book, both evaluated atomically with
// respect to concurrent creates.
type BorrowingStore interface {
	CreateActive(ctx context.Context, borrowing Borrowing) (Borrowing, error)
	GetByID(ctx context.Context, id uuid.UUID) (Borrowing, error)
	ListAll(ctx context.Context) ([]Borrowing, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Borrowing, error)
	ListOverdueByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]Borrowing, error)
	// MarkReturned performs the single Active -> Returned transition.
	// It returns ErrAlreadyReturned without touching state when the
	// borrowing is already returned.
	MarkReturned(ctx context.Context, id uuid.UUID, returnedAt time.Time) (Borrowing, error)
	CountActive(ctx context.Context) (int64, error)
	CountDueBetween(ctx context.Context, from, to time.Time) (int64, error)
	OverdueMembers(ctx context.Context, now time.Time) ([]OverdueMember, error)
	HasActive(ctx context.Context, userID, bookID uuid.UUID) (bool, error)
}

// Borrowing represents a single loan of one book copy to one user.
// User and Book are filled on reads that join the referenced rows and
// are zero-valued otherwise.
type Borrowing struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	BookID     uuid.UUID
	BorrowedAt time.Time
	DueAt      time.Time
	ReturnedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	User       User
	Book       Book
}

// Active reports whether the loan has not been returned yet.
func (b Borrowing) Active() bool {
	return b.ReturnedAt == nil
}

// Overdue reports whether the loan is active past its due date.
func (b Borrowing) Overdue(now time.Time) bool {
	return b.Active() && b.DueAt.Before(now)
}
