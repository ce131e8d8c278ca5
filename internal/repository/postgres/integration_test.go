//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/irozhkov/library-server/internal/model"
	repo "github.com/irozhkov/library-server/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "library_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/library_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newConnection(t *testing.T) *repo.Connection {
	t.Helper()

	conn, err := repo.NewConnection(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func createUser(t *testing.T, conn *repo.Connection, role model.Role) model.User {
	t.Helper()

	now := time.Now()
	user, err := repo.NewUserRepository(conn).Create(context.Background(), model.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        fmt.Sprintf("user-%s@example.com", uuid.NewString()),
		PasswordHash: []byte("$2a$04$fakehashfortest"),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	return user
}

func createBook(t *testing.T, conn *repo.Connection, totalCopies int) model.Book {
	t.Helper()

	now := time.Now()
	suffix := uuid.NewString()
	book, err := repo.NewBookRepository(conn).Create(context.Background(), model.Book{
		ID:          uuid.New(),
		Title:       "Title " + suffix,
		Author:      "Author " + suffix,
		Genre:       "Fiction",
		ISBN:        "isbn-" + suffix,
		TotalCopies: totalCopies,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
	return book
}

func borrow(t *testing.T, conn *repo.Connection, userID, bookID uuid.UUID) model.Borrowing {
	t.Helper()

	borrowing, err := attemptBorrow(conn, userID, bookID)
	require.NoError(t, err)
	return borrowing
}

func attemptBorrow(conn *repo.Connection, userID, bookID uuid.UUID) (model.Borrowing, error) {
	now := time.Now()
	return repo.NewBorrowingRepository(conn).CreateActive(context.Background(), model.Borrowing{
		ID:         uuid.New(),
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: now,
		DueAt:      now.Add(model.LoanPeriod),
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func makeOverdue(t *testing.T, conn *repo.Connection, borrowingID uuid.UUID) {
	t.Helper()

	_, err := conn.Exec(context.Background(),
		`UPDATE borrowings SET borrowed_at = NOW() - INTERVAL '15 days', due_at = NOW() - INTERVAL '1 day' WHERE id = $1`, borrowingID)
	require.NoError(t, err)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	conn := newConnection(t)
	ur := repo.NewUserRepository(conn)

	user := createUser(t, conn, model.RoleMember)

	now := time.Now()
	_, err := ur.Create(ctx, model.User{
		ID:           uuid.New(),
		Name:         "Second User",
		Email:        user.Email,
		PasswordHash: []byte("$2a$04$fakehashfortest"),
		Role:         model.RoleMember,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	vErr, ok := model.AsValidationError(err)
	require.True(t, ok, "duplicate email must come back as a validation error")
	assert.Equal(t, []string{"Email has already been taken"}, vErr.Messages)
}

func TestUserRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	conn := newConnection(t)
	ur := repo.NewUserRepository(conn)

	user := createUser(t, conn, model.RoleMember)

	byID, err := ur.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)

	byEmail, err := ur.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = ur.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestBookRepository_UniqueConstraints(t *testing.T) {
	ctx := context.Background()
	conn := newConnection(t)
	br := repo.NewBookRepository(conn)

	book := createBook(t, conn, 1)

	now := time.Now()
	_, err := br.Create(ctx, model.Book{
		ID: uuid.New(), Title: "Other", Author: "Other", Genre: "Fiction",
		ISBN: book.ISBN, TotalCopies: 1, CreatedAt: now, UpdatedAt: now,
	})
	vErr, ok := model.AsValidationError(err)
	require.True(t, ok, "duplicate isbn must come back as a validation error")
	assert.Equal(t, []string{"ISBN has already been taken"}, vErr.Messages)

	_, err = br.Create(ctx, model.Book{
		ID: uuid.New(), Title: book.Title, Author: book.Author, Genre: "Fiction",
		ISBN: "isbn-" + uuid.NewString(), TotalCopies: 1, CreatedAt: now, UpdatedAt: now,
	})
	vErr, ok = model.AsValidationError(err)
	require.True(t, ok, "duplicate (title, author) must come back as a validation error")
	assert.Equal(t, []string{"Title and author combination already exists"}, vErr.Messages)

	// Same mapping when an update collides with another row.
	other := createBook(t, conn, 1)
	other.ISBN = book.ISBN
	_, err = br.Update(ctx, other)
	vErr, ok = model.AsValidationError(err)
	require.True(t, ok, "update onto a taken isbn must come back as a validation error")
	assert.Equal(t, []string{"ISBN has already been taken"}, vErr.Messages)

	taken, err := br.ISBNTaken(ctx, book.ISBN, uuid.Nil)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = br.ISBNTaken(ctx, book.ISBN, book.ID)
	require.NoError(t, err)
	assert.False(t, taken, "a book's own row must not count against it")
}

func TestBookRepository_Search(t *testing.T) {
	ctx := context.Background()
	conn := newConnection(t)
	br := repo.NewBookRepository(conn)

	now := time.Now()
	marker := uuid.NewString()
	_, err := br.Create(ctx, model.Book{
		ID: uuid.New(), Title: "Left Hand " + marker, Author: "Le Guin " + marker,
		Genre: "SciFi " + marker, ISBN: "isbn-" + uuid.NewString(), TotalCopies: 1,
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	_, err = br.Create(ctx, model.Book{
		ID: uuid.New(), Title: "Earthsea " + marker, Author: "Le Guin " + marker,
		Genre: "Fantasy " + marker, ISBN: "isbn-" + uuid.NewString(), TotalCopies: 1,
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	// Case-insensitive substring over title, author and genre.
	books, err := br.List(ctx, model.BookFilter{Query: "left hand " + marker})
	require.NoError(t, err)
	require.Len(t, books, 1)

	// Filters combine with AND.
	books, err = br.List(ctx, model.BookFilter{Author: "le guin " + marker, Genre: "fantasy"})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Contains(t, books[0].Title, "Earthsea")

	books, err = br.List(ctx, model.BookFilter{Author: "le guin " + marker})
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestAvailableCopies_TracksActiveBorrowings(t *testing.T) {
	ctx := context.Background()
	conn := newConnection(t)
	br := repo.NewBookRepository(conn)
	bor := repo.NewBorrowingRepository(conn)

	member := createUser(t, conn, model.RoleMember)
	book := createBook(t, conn, 2)
	assert.Equal(t, 2, book.AvailableCopies)

	borrowing := borrow(t, conn, member.ID, book.ID)

	got, err := br.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableCopies)

	_, err = bor.MarkReturned(ctx, borrowing.ID, time.Now())
	require.NoError(t, err)

	got, err = br.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableCopies)
}

func TestCreateActive_CapacityExhausted(t *testing.T) {
	conn := newConnection(t)

	memberA := createUser(t, conn, model.RoleMember)
	memberB := createUser(t, conn, model.RoleMember)
	book := createBook(t, conn, 1)

	first := borrow(t, conn, memberA.ID, book.ID)

	_, err := attemptBorrow(conn, memberB.ID, book.ID)
	require.ErrorIs(t, err, model.ErrNoAvailableCopies)

	// Returning frees the copy for the other member.
	_, err = repo.NewBorrowingRepository(conn).MarkReturned(context.Background(), first.ID, time.Now())
	require.NoError(t, err)

	_, err = attemptBorrow(conn, memberB.ID, book.ID)
	require.NoError(t, err)
}

func TestCreateActive_DuplicateActivePair(t *testing.T) {
	conn := newConnection(t)

	member := createUser(t, conn, model.RoleMember)
	book := createBook(t, conn, 5)

	borrow(t, conn, member.ID, book.ID)

	_, err := attemptBorrow(conn, member.ID, book.ID)
	require.ErrorIs(t, err, model.ErrDuplicateBorrowing)
}

func TestCreateActive_ConcurrentBorrowsOfLastCopy(t *testing.T) {
	conn := newConnection(t)

	const attempts = 8
	book := createBook(t, conn, 1)

	users := make([]model.User, attempts)
	for i := range users {
		users[i] = createUser(t, conn, model.RoleMember)
	}

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = attemptBorrow(conn, users[i].ID, book.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, model.ErrNoAvailableCopies)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent borrow of the last copy may win")

	got, err := repo.NewBookRepository(conn).GetByID(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableCopies)
}

func TestMarkReturned_SecondReturnIsNoop(t *testing.T) {
	ctx := context.Background()
	conn := newConnection(t)
	bor := repo.NewBorrowingRepository(conn)

	member := createUser(t, conn, model.RoleMember)
	book := createBook(t, conn, 1)
	borrowing := borrow(t, conn, member.ID, book.ID)

	returned, err := bor.MarkReturned(ctx, borrowing.ID, time.Now())
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnedAt)

	_, err = bor.MarkReturned(ctx, borrowing.ID, time.Now().Add(time.Hour))
	require.ErrorIs(t, err, model.ErrAlreadyReturned)

	unchanged, err := bor.GetByID(ctx, borrowing.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, *returned.ReturnedAt, *unchanged.ReturnedAt, time.Second)
}

func TestMarkReturned_UnknownID(t *testing.T) {
	conn := newConnection(t)

	_, err := repo.NewBorrowingRepository(conn).MarkReturned(context.Background(), uuid.New(), time.Now())
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestBookDelete_BlockedByActiveBorrowing(t *testing.T) {
	ctx := context.Background()
	conn := newConnection(t)
	br := repo.NewBookRepository(conn)
	bor := repo.NewBorrowingRepository(conn)

	member := createUser(t, conn, model.RoleMember)
	book := createBook(t, conn, 1)
	borrowing := borrow(t, conn, member.ID, book.ID)

	err := br.Delete(ctx, book.ID)
	require.ErrorIs(t, err, model.ErrConflict)

	_, err = bor.MarkReturned(ctx, borrowing.ID, time.Now())
	require.NoError(t, err)

	// Once the loan is returned the book deletes, taking its loan
	// history along via the cascading foreign key.
	require.NoError(t, br.Delete(ctx, book.ID))

	_, err = br.GetByID(ctx, book.ID)
	require.ErrorIs(t, err, model.ErrNotFound)

	_, err = bor.GetByID(ctx, borrowing.ID)
	require.ErrorIs(t, err, model.ErrNotFound, "returned borrowings must be deleted with the book")
}

func TestOverdueMembers_AppearAndDisappear(t *testing.T) {
	ctx := context.Background()
	conn := newConnection(t)
	bor := repo.NewBorrowingRepository(conn)

	member := createUser(t, conn, model.RoleMember)
	book := createBook(t, conn, 1)
	borrowing := borrow(t, conn, member.ID, book.ID)
	makeOverdue(t, conn, borrowing.ID)

	members, err := bor.OverdueMembers(ctx, time.Now())
	require.NoError(t, err)

	found := false
	for _, m := range members {
		if m.UserID == member.ID {
			found = true
			assert.Equal(t, int64(1), m.OverdueCount)
		}
	}
	assert.True(t, found, "member with an overdue loan must be listed")

	overdue, err := bor.ListOverdueByUser(ctx, member.ID, time.Now())
	require.NoError(t, err)
	require.Len(t, overdue, 1)

	_, err = bor.MarkReturned(ctx, borrowing.ID, time.Now())
	require.NoError(t, err)

	members, err = bor.OverdueMembers(ctx, time.Now())
	require.NoError(t, err)
	for _, m := range members {
		assert.NotEqual(t, member.ID, m.UserID, "returned loan must drop the member from the list")
	}
}

func TestCountDueBetween_CalendarDayBoundaries(t *testing.T) {
	ctx := context.Background()
	conn := newConnection(t)
	bor := repo.NewBorrowingRepository(conn)

	member := createUser(t, conn, model.RoleMember)
	book := createBook(t, conn, 1)
	borrowing := borrow(t, conn, member.ID, book.ID)

	dueAt := borrowing.DueAt
	dayStart := time.Date(dueAt.Year(), dueAt.Month(), dueAt.Day(), 0, 0, 0, 0, dueAt.Location())
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Nanosecond)

	before, err := bor.CountDueBetween(ctx, dayStart.AddDate(0, 0, -1), dayEnd.AddDate(0, 0, -1))
	require.NoError(t, err)

	count, err := bor.CountDueBetween(ctx, dayStart, dayEnd)
	require.NoError(t, err)
	assert.Greater(t, count, before)
}

func TestBorrowingRepository_JoinedReads(t *testing.T) {
	ctx := context.Background()
	conn := newConnection(t)
	bor := repo.NewBorrowingRepository(conn)

	member := createUser(t, conn, model.RoleMember)
	book := createBook(t, conn, 1)
	borrowing := borrow(t, conn, member.ID, book.ID)

	got, err := bor.GetByID(ctx, borrowing.ID)
	require.NoError(t, err)
	assert.Equal(t, member.Email, got.User.Email)
	assert.Equal(t, book.Title, got.Book.Title)
	assert.Equal(t, model.LoanPeriod, got.DueAt.Sub(got.BorrowedAt))

	own, err := bor.ListByUser(ctx, member.ID)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, borrowing.ID, own[0].ID)
}
