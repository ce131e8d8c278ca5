package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/irozhkov/library-server/internal/model"
	"github.com/irozhkov/library-server/internal/service"
)

type userResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

func newUserResponse(user model.User) userResponse {
	return userResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role.String(),
	}
}

type bookResponse struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Genre           string    `json:"genre"`
	ISBN            string    `json:"isbn"`
	TotalCopies     int       `json:"total_copies"`
	Description     string    `json:"description"`
	AvailableCopies int       `json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func newBookResponse(book model.Book) bookResponse {
	return bookResponse{
		ID:              book.ID,
		Title:           book.Title,
		Author:          book.Author,
		Genre:           book.Genre,
		ISBN:            book.ISBN,
		TotalCopies:     book.TotalCopies,
		Description:     book.Description,
		AvailableCopies: book.AvailableCopies,
		CreatedAt:       book.CreatedAt,
		UpdatedAt:       book.UpdatedAt,
	}
}

func newBookResponses(books []model.Book) []bookResponse {
	out := make([]bookResponse, 0, len(books))
	for _, book := range books {
		out = append(out, newBookResponse(book))
	}
	return out
}

type borrowingBookResponse struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
	Genre  string    `json:"genre"`
	ISBN   string    `json:"isbn"`
}

type borrowingResponse struct {
	ID         uuid.UUID             `json:"id"`
	BorrowedAt time.Time             `json:"borrowed_at"`
	DueAt      time.Time             `json:"due_at"`
	ReturnedAt *time.Time            `json:"returned_at"`
	User       userResponse          `json:"user"`
	Book       borrowingBookResponse `json:"book"`
}

func newBorrowingResponse(borrowing model.Borrowing) borrowingResponse {
	return borrowingResponse{
		ID:         borrowing.ID,
		BorrowedAt: borrowing.BorrowedAt,
		DueAt:      borrowing.DueAt,
		ReturnedAt: borrowing.ReturnedAt,
		User: userResponse{
			ID:    borrowing.UserID,
			Name:  borrowing.User.Name,
			Email: borrowing.User.Email,
			Role:  borrowing.User.Role.String(),
		},
		Book: borrowingBookResponse{
			ID:     borrowing.BookID,
			Title:  borrowing.Book.Title,
			Author: borrowing.Book.Author,
			Genre:  borrowing.Book.Genre,
			ISBN:   borrowing.Book.ISBN,
		},
	}
}

func newBorrowingResponses(borrowings []model.Borrowing) []borrowingResponse {
	out := make([]borrowingResponse, 0, len(borrowings))
	for _, borrowing := range borrowings {
		out = append(out, newBorrowingResponse(borrowing))
	}
	return out
}

type overdueMemberResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	OverdueBooks int64     `json:"overdue_books"`
}

type librarianDashboardResponse struct {
	TotalBooks         int64                   `json:"total_books"`
	TotalBorrowedBooks int64                   `json:"total_borrowed_books"`
	BooksDueToday      int64                   `json:"books_due_today"`
	OverdueMembers     []overdueMemberResponse `json:"overdue_members"`
}

func newLibrarianDashboardResponse(summary service.LibrarianSummary) librarianDashboardResponse {
	members := make([]overdueMemberResponse, 0, len(summary.OverdueMembers))
	for _, m := range summary.OverdueMembers {
		members = append(members, overdueMemberResponse{
			ID:           m.UserID,
			Name:         m.Name,
			Email:        m.Email,
			OverdueBooks: m.OverdueCount,
		})
	}
	return librarianDashboardResponse{
		TotalBooks:         summary.TotalBooks,
		TotalBorrowedBooks: summary.TotalBorrowedBooks,
		BooksDueToday:      summary.BooksDueToday,
		OverdueMembers:     members,
	}
}

type memberDashboardResponse struct {
	BorrowedBooks []borrowingResponse `json:"borrowed_books"`
	OverdueBooks  []borrowingResponse `json:"overdue_books"`
}

func newMemberDashboardResponse(summary service.MemberSummary) memberDashboardResponse {
	return memberDashboardResponse{
		BorrowedBooks: newBorrowingResponses(summary.BorrowedBooks),
		OverdueBooks:  newBorrowingResponses(summary.OverdueBooks),
	}
}
