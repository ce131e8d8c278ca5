package migrations

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	goose.AddMigrationContext(upSeedLibrarian, downSeedLibrarian)
}

const seedLibrarianEmail = "librarian@library.local"

// Librarians are provisioned out-of-band, never via self-signup, so the
// initial account is seeded here. The password comes from
// SEED_LIBRARIAN_PASSWORD and falls back to a development default.
func upSeedLibrarian(ctx context.Context, tx *sql.Tx) error {
	password := os.Getenv("SEED_LIBRARIAN_PASSWORD")
	if password == "" {
		password = "librarian"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, 1, $5, $5)
		 ON CONFLICT (email) DO NOTHING`,
		uuid.New(), "Head Librarian", seedLibrarianEmail, hash, now,
	)
	return err
}

func downSeedLibrarian(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM users WHERE email = $1`, seedLibrarianEmail)
	return err
}
