// Package mocks holds hand-written testify mocks for the store and
// token interfaces used by the service tests.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/irozhkov/library-server/internal/model"
)

type UserStore struct {
	mock.Mock
}

func (m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

type BookStore struct {
	mock.Mock
}

func (m *BookStore) Create(ctx context.Context, book model.Book) (model.Book, error) {
	args := m.Called(ctx, book)
	return args.Get(0).(model.Book), args.Error(1)
}

func (m *BookStore) Update(ctx context.Context, book model.Book) (model.Book, error) {
	args := m.Called(ctx, book)
	return args.Get(0).(model.Book), args.Error(1)
}

func (m *BookStore) GetByID(ctx context.Context, id uuid.UUID) (model.Book, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Book), args.Error(1)
}

func (m *BookStore) List(ctx context.Context, filter model.BookFilter) ([]model.Book, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.Book), args.Error(1)
}

func (m *BookStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *BookStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *BookStore) ISBNTaken(ctx context.Context, isbn string, exclude uuid.UUID) (bool, error) {
	args := m.Called(ctx, isbn, exclude)
	return args.Bool(0), args.Error(1)
}

func (m *BookStore) TitleAuthorTaken(ctx context.Context, title, author string, exclude uuid.UUID) (bool, error) {
	args := m.Called(ctx, title, author, exclude)
	return args.Bool(0), args.Error(1)
}

type BorrowingStore struct {
	mock.Mock
}

func (m *BorrowingStore) CreateActive(ctx context.Context, borrowing model.Borrowing) (model.Borrowing, error) {
	args := m.Called(ctx, borrowing)
	if rf, ok := args.Get(0).(func(context.Context, model.Borrowing) (model.Borrowing, error)); ok {
		return rf(ctx, borrowing)
	}
	return args.Get(0).(model.Borrowing), args.Error(1)
}

func (m *BorrowingStore) GetByID(ctx context.Context, id uuid.UUID) (model.Borrowing, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Borrowing), args.Error(1)
}

func (m *BorrowingStore) ListAll(ctx context.Context) ([]model.Borrowing, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Borrowing), args.Error(1)
}

func (m *BorrowingStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Borrowing, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Borrowing), args.Error(1)
}

func (m *BorrowingStore) ListOverdueByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]model.Borrowing, error) {
	args := m.Called(ctx, userID, now)
	return args.Get(0).([]model.Borrowing), args.Error(1)
}

func (m *BorrowingStore) MarkReturned(ctx context.Context, id uuid.UUID, returnedAt time.Time) (model.Borrowing, error) {
	args := m.Called(ctx, id, returnedAt)
	return args.Get(0).(model.Borrowing), args.Error(1)
}

func (m *BorrowingStore) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *BorrowingStore) CountDueBetween(ctx context.Context, from, to time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *BorrowingStore) OverdueMembers(ctx context.Context, now time.Time) ([]model.OverdueMember, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]model.OverdueMember), args.Error(1)
}

func (m *BorrowingStore) HasActive(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, bookID)
	return args.Bool(0), args.Error(1)
}

type TokenManager struct {
	mock.Mock
}

func (m *TokenManager) Issue(userID uuid.UUID) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *TokenManager) Verify(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}
