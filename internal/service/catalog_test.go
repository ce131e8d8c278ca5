package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/irozhkov/library-server/internal/mocks"
	"github.com/irozhkov/library-server/internal/model"
	"github.com/irozhkov/library-server/internal/testutil"
)

func validAttrs() BookAttrs {
	return BookAttrs{
		Title:       "The Dispossessed",
		Author:      "Ursula K. Le Guin",
		Genre:       "Science Fiction",
		ISBN:        "978-0061054884",
		TotalCopies: 3,
	}
}

func TestCatalog_Create_Success(t *testing.T) {
	ctx := context.Background()
	bookStore := &mocks.BookStore{}
	attrs := validAttrs()

	bookStore.On("ISBNTaken", mock.Anything, attrs.ISBN, uuid.Nil).Return(false, nil)
	bookStore.On("TitleAuthorTaken", mock.Anything, attrs.Title, attrs.Author, uuid.Nil).Return(false, nil)
	bookStore.On("Create", mock.Anything, mock.MatchedBy(func(b model.Book) bool {
		return b.Title == attrs.Title && b.TotalCopies == 3
	})).Return(model.Book{ID: uuid.New(), Title: attrs.Title, TotalCopies: 3, AvailableCopies: 3}, nil)

	c := NewCatalog(bookStore, testutil.MakeNoopLogger())

	book, err := c.Create(ctx, librarian(), attrs)
	require.NoError(t, err)
	assert.Equal(t, 3, book.AvailableCopies)
	bookStore.AssertExpectations(t)
}

func TestCatalog_Create_MemberForbidden(t *testing.T) {
	ctx := context.Background()
	bookStore := &mocks.BookStore{}

	c := NewCatalog(bookStore, testutil.MakeNoopLogger())

	_, err := c.Create(ctx, member(), validAttrs())
	require.ErrorIs(t, err, model.ErrForbidden)
	bookStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCatalog_Create_CollectsAllViolations(t *testing.T) {
	ctx := context.Background()
	bookStore := &mocks.BookStore{}

	c := NewCatalog(bookStore, testutil.MakeNoopLogger())

	_, err := c.Create(ctx, librarian(), BookAttrs{TotalCopies: -1})
	ve, ok := model.AsValidationError(err)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{
		"Title can't be blank",
		"Author can't be blank",
		"Genre can't be blank",
		"ISBN can't be blank",
		"Total copies must be greater than or equal to 0",
	}, ve.Messages)
}

func TestCatalog_Create_DuplicateISBNAndPair(t *testing.T) {
	ctx := context.Background()
	bookStore := &mocks.BookStore{}
	attrs := validAttrs()

	bookStore.On("ISBNTaken", mock.Anything, attrs.ISBN, uuid.Nil).Return(true, nil)
	bookStore.On("TitleAuthorTaken", mock.Anything, attrs.Title, attrs.Author, uuid.Nil).Return(true, nil)

	c := NewCatalog(bookStore, testutil.MakeNoopLogger())

	_, err := c.Create(ctx, librarian(), attrs)
	ve, ok := model.AsValidationError(err)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{
		"ISBN has already been taken",
		"Title and author combination already exists",
	}, ve.Messages)
}

func TestCatalog_Create_LostRaceReportsTakenISBN(t *testing.T) {
	ctx := context.Background()
	bookStore := &mocks.BookStore{}
	attrs := validAttrs()

	// Another create with the same ISBN committed between the
	// uniqueness checks and the insert.
	bookStore.On("ISBNTaken", mock.Anything, attrs.ISBN, uuid.Nil).Return(false, nil)
	bookStore.On("TitleAuthorTaken", mock.Anything, attrs.Title, attrs.Author, uuid.Nil).Return(false, nil)
	bookStore.On("Create", mock.Anything, mock.Anything).
		Return(model.Book{}, model.NewValidationError("ISBN has already been taken"))

	c := NewCatalog(bookStore, testutil.MakeNoopLogger())

	_, err := c.Create(ctx, librarian(), attrs)
	ve, ok := model.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"ISBN has already been taken"}, ve.Messages)
}

func TestCatalog_Update_Success(t *testing.T) {
	ctx := context.Background()
	bookStore := &mocks.BookStore{}
	bookID := uuid.New()
	attrs := validAttrs()
	attrs.TotalCopies = 5

	bookStore.On("GetByID", mock.Anything, bookID).Return(model.Book{ID: bookID, TotalCopies: 3}, nil)
	bookStore.On("ISBNTaken", mock.Anything, attrs.ISBN, bookID).Return(false, nil)
	bookStore.On("TitleAuthorTaken", mock.Anything, attrs.Title, attrs.Author, bookID).Return(false, nil)
	bookStore.On("Update", mock.Anything, mock.MatchedBy(func(b model.Book) bool {
		return b.ID == bookID && b.TotalCopies == 5
	})).Return(model.Book{ID: bookID, TotalCopies: 5}, nil)

	c := NewCatalog(bookStore, testutil.MakeNoopLogger())

	book, err := c.Update(ctx, librarian(), bookID, attrs)
	require.NoError(t, err)
	assert.Equal(t, 5, book.TotalCopies)
}

func TestCatalog_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	bookStore := &mocks.BookStore{}
	bookID := uuid.New()

	bookStore.On("GetByID", mock.Anything, bookID).Return(model.Book{}, model.ErrNotFound)

	c := NewCatalog(bookStore, testutil.MakeNoopLogger())

	_, err := c.Update(ctx, librarian(), bookID, validAttrs())
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestCatalog_Delete_Conflict(t *testing.T) {
	ctx := context.Background()
	bookStore := &mocks.BookStore{}
	bookID := uuid.New()

	bookStore.On("Delete", mock.Anything, bookID).Return(model.ErrConflict)

	c := NewCatalog(bookStore, testutil.MakeNoopLogger())

	err := c.Delete(ctx, librarian(), bookID)
	require.ErrorIs(t, err, model.ErrConflict)
}

func TestCatalog_Delete_MemberForbidden(t *testing.T) {
	ctx := context.Background()
	bookStore := &mocks.BookStore{}

	c := NewCatalog(bookStore, testutil.MakeNoopLogger())

	err := c.Delete(ctx, member(), uuid.New())
	require.ErrorIs(t, err, model.ErrForbidden)
	bookStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCatalog_List_PassesFilter(t *testing.T) {
	ctx := context.Background()
	bookStore := &mocks.BookStore{}
	filter := model.BookFilter{Query: "le guin", Genre: "fiction"}

	bookStore.On("List", mock.Anything, filter).Return([]model.Book{{}}, nil)

	c := NewCatalog(bookStore, testutil.MakeNoopLogger())

	books, err := c.List(ctx, member(), filter)
	require.NoError(t, err)
	assert.Len(t, books, 1)
	bookStore.AssertExpectations(t)
}
