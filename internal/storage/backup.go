package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Backup writes a consistent copy of the live database to dst using
// VACUUM INTO, which is safe while the store is open.
func (s *SQLiteStore) Backup(ctx context.Context, dst string) error {
	// VACUUM INTO refuses to overwrite an existing file.
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale backup: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", dst); err != nil {
		return fmt.Errorf("vacuum into backup: %w", err)
	}

	slog.InfoContext(ctx, "Backup created", "path", dst)
	return nil
}

// RestoreFrom replaces the store's contents with those of a backup file
// while the store stays open. The backup is attached and copied table by
// table inside one transaction, so readers never see a half-restored
// database. Sessions are restored too: tokens minted after the backup
// stop working, exactly as with a file-level restore.
func (s *SQLiteStore) RestoreFrom(ctx context.Context, src string) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("open backup: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "ATTACH DATABASE ? AS backup", src); err != nil {
		return fmt.Errorf("attach backup: %w", err)
	}
	defer func() {
		if _, err := s.db.ExecContext(ctx, "DETACH DATABASE backup"); err != nil {
			slog.ErrorContext(ctx, "Failed to detach backup", "error", err)
		}
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin restore: %w", err)
	}
	defer tx.Rollback()

	// Children first on delete, parents first on copy.
	for _, stmt := range []string{
		"DELETE FROM sessions",
		"DELETE FROM transactions",
		"DELETE FROM budgets",
		"DELETE FROM users",
		"INSERT INTO users SELECT * FROM backup.users",
		"INSERT INTO transactions SELECT * FROM backup.transactions",
		"INSERT INTO budgets SELECT * FROM backup.budgets",
		"INSERT INTO sessions SELECT * FROM backup.sessions",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("restore step %q: %w", stmt, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit restore: %w", err)
	}

	slog.InfoContext(ctx, "Restore completed", "path", src)
	return nil
}

// Restore copies a backup file over the database file. The store must not
// be open on dst while this runs; callers restore before opening or after
// closing the store.
func Restore(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create database file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy backup: %w", err)
	}
	return out.Sync()
}
