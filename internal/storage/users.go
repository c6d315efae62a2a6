package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"finance-tracker/internal/core"
)

// ErrEmailTaken reports a registration against an email that already has an
// account. It is the only storage error callers branch on.
var ErrEmailTaken = errors.New("email already registered")

// CreateUser inserts an account row. The unique index on email enforces the
// one-account-per-login invariant; a violation surfaces as ErrEmailTaken.
func (s *SQLiteStore) CreateUser(ctx context.Context, email, passwordHash string) (*core.User, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash) VALUES (?, ?)",
		email, passwordHash,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user id: %w", err)
	}
	return s.GetUserByID(ctx, id)
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*core.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, created_at FROM users WHERE id = ?", id)
	return scanUser(row)
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, created_at FROM users WHERE email = ?", email)
	return scanUser(row)
}

// UpdateUserPassword replaces the credential hash for an email, reporting
// whether the account existed.
func (s *SQLiteStore) UpdateUserPassword(ctx context.Context, email, passwordHash string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ? WHERE email = ?", passwordHash, email)
	if err != nil {
		return false, fmt.Errorf("update password: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update password rows: %w", err)
	}
	return n > 0, nil
}

func scanUser(row *sql.Row) (*core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
