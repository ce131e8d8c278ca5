package service

import (
	"context"
	"fmt"
	"time"

	"github.com/irozhkov/library-server/internal/logger"
	"github.com/irozhkov/library-server/internal/model"
	"github.com/irozhkov/library-server/internal/policy"
)

// LibrarianSummary is the global lending overview.
type LibrarianSummary struct {
	TotalBooks         int64
	TotalBorrowedBooks int64
	BooksDueToday      int64
	OverdueMembers     []model.OverdueMember
}

// MemberSummary is a member's own lending overview. BorrowedBooks
// includes returned loans; OverdueBooks is the overdue active subset.
type MemberSummary struct {
	BorrowedBooks []model.Borrowing
	OverdueBooks  []model.Borrowing
}

// Dashboard aggregates lending state for the summary views.
type Dashboard struct {
	bookStore      model.BookStore
	borrowingStore model.BorrowingStore
	logger         *logger.Logger
}

func NewDashboard(bookStore model.BookStore, borrowingStore model.BorrowingStore, logger *logger.Logger) *Dashboard {
	return &Dashboard{
		bookStore:      bookStore,
		borrowingStore: borrowingStore,
		logger:         logger,
	}
}

// dayBounds returns the inclusive start and end of now's calendar day.
func dayBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}

// ForLibrarian computes the global dashboard. Librarian only.
func (d *Dashboard) ForLibrarian(ctx context.Context, actor model.User) (LibrarianSummary, error) {
	if actor.Role != model.RoleLibrarian || !policy.Allowed(actor.Role, policy.DashboardView) {
		return LibrarianSummary{}, model.ErrForbidden
	}

	totalBooks, err := d.bookStore.Count(ctx)
	if err != nil {
		return LibrarianSummary{}, fmt.Errorf("failed to count books: %w", err)
	}

	activeCount, err := d.borrowingStore.CountActive(ctx)
	if err != nil {
		return LibrarianSummary{}, fmt.Errorf("failed to count active borrowings: %w", err)
	}

	now := time.Now()
	dayStart, dayEnd := dayBounds(now)
	dueToday, err := d.borrowingStore.CountDueBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return LibrarianSummary{}, fmt.Errorf("failed to count borrowings due today: %w", err)
	}

	overdueMembers, err := d.borrowingStore.OverdueMembers(ctx, now)
	if err != nil {
		return LibrarianSummary{}, fmt.Errorf("failed to list overdue members: %w", err)
	}

	return LibrarianSummary{
		TotalBooks:         totalBooks,
		TotalBorrowedBooks: activeCount,
		BooksDueToday:      dueToday,
		OverdueMembers:     overdueMembers,
	}, nil
}

// ForMember computes the actor's own dashboard.
func (d *Dashboard) ForMember(ctx context.Context, actor model.User) (MemberSummary, error) {
	if !policy.Allowed(actor.Role, policy.DashboardView) {
		return MemberSummary{}, model.ErrForbidden
	}

	borrowed, err := d.borrowingStore.ListByUser(ctx, actor.ID)
	if err != nil {
		return MemberSummary{}, fmt.Errorf("failed to list borrowings: %w", err)
	}

	overdue, err := d.borrowingStore.ListOverdueByUser(ctx, actor.ID, time.Now())
	if err != nil {
		return MemberSummary{}, fmt.Errorf("failed to list overdue borrowings: %w", err)
	}

	return MemberSummary{
		BorrowedBooks: borrowed,
		OverdueBooks:  overdue,
	}, nil
}
