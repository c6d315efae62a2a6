// Package auth owns credential hashing and the account lifecycle. It never
// touches sessions or cookies; those belong to the web layer.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"

	"finance-tracker/internal/core"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLen is the minimum accepted password length.
const MinPasswordLen = 4

var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLen)

	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidateCredentials checks email shape and password length before any
// account mutation.
func ValidateCredentials(email, password string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	if len(password) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	return nil
}

// Store is the slice of the persistence layer auth needs.
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*core.User, error)
	GetUserByEmail(ctx context.Context, email string) (*core.User, error)
	UpdateUserPassword(ctx context.Context, email, passwordHash string) (bool, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// HashPassword derives a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches a stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Register creates an account. A taken email surfaces as the store's
// ErrEmailTaken; callers branch on it with errors.Is.
func (s *Service) Register(ctx context.Context, email, password string) (*core.User, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.store.CreateUser(ctx, email, hash)
}

// Authenticate resolves credentials to a user. Unknown email and wrong
// password both come back as nil; the caller cannot tell them apart.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*core.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if user == nil || !CheckPassword(user.PasswordHash, password) {
		return nil, nil
	}
	return user, nil
}

// ResetPassword replaces the credential for an email, reporting whether the
// account existed.
func (s *Service) ResetPassword(ctx context.Context, email, newPassword string) (bool, error) {
	if len(newPassword) < MinPasswordLen {
		return false, ErrPasswordTooShort
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return false, err
	}
	return s.store.UpdateUserPassword(ctx, email, hash)
}

// NewSessionToken returns a random 256-bit token in hex.
func NewSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
