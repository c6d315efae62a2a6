package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"finance-tracker/internal/core"
)

// SetBudget upserts the monthly limit for (user, category, month) in a
// single statement. The unique index on the natural key makes concurrent
// sets for the same key converge on one row with the last writer's limit.
func (s *SQLiteStore) SetBudget(ctx context.Context, userID int64, category string, limit float64, month string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, category, monthly_limit, month)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, category, month)
		 DO UPDATE SET monthly_limit = excluded.monthly_limit`,
		userID, category, limit, month,
	)
	if err != nil {
		return fmt.Errorf("set budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget set",
		"user_id", userID,
		"category", category,
		"month", month,
		"limit", limit)

	return nil
}

// ListBudgets returns the user's budget rows. With a month it returns that
// month ordered by category; without, all months ordered newest month first
// then category.
func (s *SQLiteStore) ListBudgets(ctx context.Context, userID int64, month string) ([]core.Budget, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if month != "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, user_id, category, monthly_limit, month
			 FROM budgets
			 WHERE user_id = ? AND month = ?
			 ORDER BY category ASC`,
			userID, month,
		)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, user_id, category, monthly_limit, month
			 FROM budgets
			 WHERE user_id = ?
			 ORDER BY month DESC, category ASC`,
			userID,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.MonthlyLimit, &b.Month); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return out, nil
}

// GetBudget fetches one budget row by its natural key, nil when absent.
func (s *SQLiteStore) GetBudget(ctx context.Context, userID int64, category, month string) (*core.Budget, error) {
	var b core.Budget
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, category, monthly_limit, month
		 FROM budgets
		 WHERE user_id = ? AND category = ? AND month = ?`,
		userID, category, month,
	).Scan(&b.ID, &b.UserID, &b.Category, &b.MonthlyLimit, &b.Month)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return &b, nil
}
