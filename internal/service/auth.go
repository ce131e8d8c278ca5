package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/irozhkov/library-server/internal/logger"
	"github.com/irozhkov/library-server/internal/model"
)

const minPasswordLength = 6

// Auth handles signup, login and token-based identification.
type Auth struct {
	userStore    model.UserStore
	tokenManager model.TokenManager
	logger       *logger.Logger
}

func NewAuth(userStore model.UserStore, tokenManager model.TokenManager, logger *logger.Logger) *Auth {
	return &Auth{
		userStore:    userStore,
		tokenManager: tokenManager,
		logger:       logger,
	}
}

// NormalizeEmail lowercases and trims an email the way it is persisted,
// making lookups case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers a new member account and issues its first token.
// Self-signup never creates librarians; those are seeded out-of-band.
func (a *Auth) Signup(ctx context.Context, name, email, password string) (model.User, string, error) {
	email = NormalizeEmail(email)

	messages := make([]string, 0, 4)
	if strings.TrimSpace(name) == "" {
		messages = append(messages, "Name can't be blank")
	}
	if email == "" {
		messages = append(messages, "Email can't be blank")
	} else if _, err := mail.ParseAddress(email); err != nil {
		messages = append(messages, "Email is invalid")
	} else {
		_, err := a.userStore.GetByEmail(ctx, email)
		if err == nil {
			messages = append(messages, "Email has already been taken")
		} else if !errors.Is(err, model.ErrNotFound) {
			return model.User{}, "", fmt.Errorf("failed to get user by email: %w", err)
		}
	}
	if len(password) < minPasswordLength {
		messages = append(messages, fmt.Sprintf("Password is too short (minimum is %d characters)", minPasswordLength))
	}
	if len(messages) > 0 {
		return model.User{}, "", model.NewValidationError(messages...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := model.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleMember,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	user, err = a.userStore.Create(ctx, user)
	if err != nil {
		// A signup racing this one past the GetByEmail check loses at
		// the unique index and comes back as a plain validation error.
		if _, ok := model.AsValidationError(err); ok {
			return model.User{}, "", err
		}
		a.logger.Error("Auth service: failed to create user",
			"email", email,
			"error", err.Error())
		return model.User{}, "", fmt.Errorf("failed to create user: %w", err)
	}

	signedToken, err := a.tokenManager.Issue(user.ID)
	if err != nil {
		return model.User{}, "", fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: user signed up",
		"user_id", user.ID,
		"email", user.Email)

	return user, signedToken, nil
}

// Login verifies credentials and issues a token. The same
// ErrInvalidCredentials covers unknown email and wrong password.
func (a *Auth) Login(ctx context.Context, email, password string) (model.User, string, error) {
	user, err := a.userStore.GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, "", model.ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, "", fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return model.User{}, "", model.ErrInvalidCredentials
	}

	signedToken, err := a.tokenManager.Issue(user.ID)
	if err != nil {
		return model.User{}, "", fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: user logged in",
		"user_id", user.ID,
		"email", user.Email)

	return user, signedToken, nil
}

// Identify resolves a bearer token to the user it was issued for.
func (a *Auth) Identify(ctx context.Context, signedToken string) (model.User, error) {
	userID, err := a.tokenManager.Verify(signedToken)
	if err != nil {
		return model.User{}, err
	}

	user, err := a.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.ErrTokenMalformed
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}
