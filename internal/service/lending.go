package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/irozhkov/library-server/internal/logger"
	"github.com/irozhkov/library-server/internal/model"
	"github.com/irozhkov/library-server/internal/policy"
)

// Lending runs the borrowing state machine: loans are created active by
// members and transition exactly once to returned by librarians.
type Lending struct {
	borrowingStore model.BorrowingStore
	bookStore      model.BookStore
	logger         *logger.Logger
}

func NewLending(borrowingStore model.BorrowingStore, bookStore model.BookStore, logger *logger.Logger) *Lending {
	return &Lending{
		borrowingStore: borrowingStore,
		bookStore:      bookStore,
		logger:         logger,
	}
}

// Borrow creates an active loan of the book for the acting member with
// the fixed 14-day term.
//
// The availability and uniqueness checks here give complete error
// messages on the fast path; the store re-evaluates both atomically at
// insert time, so a race lost between check and insert still comes back
// as the same ValidationError.
func (l *Lending) Borrow(ctx context.Context, actor model.User, bookID uuid.UUID) (model.Borrowing, error) {
	if !policy.Allowed(actor.Role, policy.BorrowingCreate) {
		return model.Borrowing{}, model.ErrForbidden
	}

	book, err := l.bookStore.GetByID(ctx, bookID)
	if err != nil {
		return model.Borrowing{}, err
	}

	messages := make([]string, 0, 2)
	if !book.Available() {
		messages = append(messages, model.ErrNoAvailableCopies.Error())
	}
	hasActive, err := l.borrowingStore.HasActive(ctx, actor.ID, bookID)
	if err != nil {
		return model.Borrowing{}, fmt.Errorf("failed to check active borrowing: %w", err)
	}
	if hasActive {
		messages = append(messages, model.ErrDuplicateBorrowing.Error())
	}
	if len(messages) > 0 {
		return model.Borrowing{}, model.NewValidationError(messages...)
	}

	now := time.Now()
	borrowing := model.Borrowing{
		ID:         uuid.New(),
		UserID:     actor.ID,
		BookID:     bookID,
		BorrowedAt: now,
		DueAt:      now.Add(model.LoanPeriod),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	// Always true with the fixed term; kept as a guard against a
	// misconfigured clock source.
	if !borrowing.DueAt.After(borrowing.BorrowedAt) {
		return model.Borrowing{}, model.NewValidationError("Due date must be after the borrowed date")
	}

	borrowing, err = l.borrowingStore.CreateActive(ctx, borrowing)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNoAvailableCopies):
			return model.Borrowing{}, model.NewValidationError(model.ErrNoAvailableCopies.Error())
		case errors.Is(err, model.ErrDuplicateBorrowing):
			return model.Borrowing{}, model.NewValidationError(model.ErrDuplicateBorrowing.Error())
		case errors.Is(err, model.ErrNotFound):
			return model.Borrowing{}, model.ErrNotFound
		}
		return model.Borrowing{}, fmt.Errorf("failed to create borrowing: %w", err)
	}

	l.logger.Info("Lending service: book borrowed",
		"borrowing_id", borrowing.ID,
		"user_id", actor.ID,
		"book_id", bookID,
		"due_at", borrowing.DueAt)

	return borrowing, nil
}

// Return marks a loan returned. Librarian only; a second return reports
// ErrAlreadyReturned and leaves state untouched.
func (l *Lending) Return(ctx context.Context, actor model.User, borrowingID uuid.UUID) (model.Borrowing, error) {
	if !policy.Allowed(actor.Role, policy.BorrowingReturn) {
		return model.Borrowing{}, model.ErrForbidden
	}

	borrowing, err := l.borrowingStore.MarkReturned(ctx, borrowingID, time.Now())
	if err != nil {
		return model.Borrowing{}, err
	}

	l.logger.Info("Lending service: borrowing returned",
		"borrowing_id", borrowing.ID,
		"user_id", borrowing.UserID,
		"book_id", borrowing.BookID)

	return borrowing, nil
}

// List returns every loan for librarians and the actor's own loans for
// members, newest first.
func (l *Lending) List(ctx context.Context, actor model.User) ([]model.Borrowing, error) {
	if policy.Allowed(actor.Role, policy.BorrowingReadAny) {
		return l.borrowingStore.ListAll(ctx)
	}

	return l.borrowingStore.ListByUser(ctx, actor.ID)
}

// Get returns a single loan. Members may only read their own.
func (l *Lending) Get(ctx context.Context, actor model.User, borrowingID uuid.UUID) (model.Borrowing, error) {
	borrowing, err := l.borrowingStore.GetByID(ctx, borrowingID)
	if err != nil {
		return model.Borrowing{}, err
	}

	if !policy.Allowed(actor.Role, policy.BorrowingReadAny) && borrowing.UserID != actor.ID {
		return model.Borrowing{}, model.ErrForbidden
	}

	return borrowing, nil
}
