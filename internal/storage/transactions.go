package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"finance-tracker/internal/core"
)

// AddTransaction inserts a ledger row and returns its id. The date comes
// from the caller's clock; amounts are stored as given, the ledger does not
// enforce a sign or a minimum.
func (s *SQLiteStore) AddTransaction(ctx context.Context, userID int64, kind core.TransactionKind, category string, amount float64, date, description string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, type, category, amount, date, description)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, kind, category, amount, date, description,
	)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction added",
		"id", id,
		"user_id", userID,
		"kind", kind,
		"category", category,
		"amount", amount,
		"date", date)

	return id, nil
}

// UpdateTransaction mutates a row scoped by (id, user). An empty date keeps
// the stored date. The returned bool distinguishes "updated" from "no such
// row or not yours"; both non-matches are reported the same way.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, id, userID int64, kind core.TransactionKind, category string, amount float64, description, date string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions
		 SET type = ?, category = ?, amount = ?, description = ?,
		     date = COALESCE(NULLIF(?, ''), date)
		 WHERE id = ? AND user_id = ?`,
		kind, category, amount, description, date, id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("update transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update transaction rows: %w", err)
	}
	return n > 0, nil
}

// DeleteTransaction removes a row scoped by (id, user).
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id, userID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete transaction rows: %w", err)
	}
	return n > 0, nil
}

// DeleteTransactionByID removes a row without ownership scoping. Reserved
// for the admin CLI; never reachable from a web request.
func (s *SQLiteStore) DeleteTransactionByID(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete transaction by id: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete transaction rows: %w", err)
	}

	if n > 0 {
		slog.WarnContext(ctx, "Transaction removed via privileged path", "id", id)
	}
	return n > 0, nil
}

// ListRecentTransactions returns the newest rows first: date descending,
// then id descending so same-day entries come back newest-inserted first.
func (s *SQLiteStore) ListRecentTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, type, category, amount, date, description
		 FROM transactions
		 WHERE user_id = ?
		 ORDER BY date DESC, id DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListTransactions returns every row for the user, same ordering as
// ListRecentTransactions.
func (s *SQLiteStore) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, type, category, amount, date, description
		 FROM transactions
		 WHERE user_id = ?
		 ORDER BY date DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListTransactionsForWindow returns the user's rows whose date starts
// with the given prefix, a month ("2025-01") or a year ("2025").
func (s *SQLiteStore) ListTransactionsForWindow(ctx context.Context, userID int64, datePrefix string) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, type, category, amount, date, description
		 FROM transactions
		 WHERE user_id = ? AND date LIKE ?
		 ORDER BY date DESC, id DESC`,
		userID, datePrefix+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions for window: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetTransaction fetches a row scoped by (id, user). Absence is not an
// error: the caller gets nil.
func (s *SQLiteStore) GetTransaction(ctx context.Context, id, userID int64) (*core.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, type, category, amount, date, description
		 FROM transactions
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	return scanTransaction(row)
}

// GetTransactionByID fetches a row by id alone (privileged path).
func (s *SQLiteStore) GetTransactionByID(ctx context.Context, id int64) (*core.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, type, category, amount, date, description
		 FROM transactions
		 WHERE id = ?`,
		id,
	)
	return scanTransaction(row)
}

func scanTransaction(row *sql.Row) (*core.Transaction, error) {
	var t core.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.Kind, &t.Category, &t.Amount, &t.Date, &t.Description)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return &t, nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Kind, &t.Category, &t.Amount, &t.Date, &t.Description); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}
