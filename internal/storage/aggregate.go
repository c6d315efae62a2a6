package storage

import (
	"context"
	"fmt"

	"finance-tracker/internal/core"
)

// SummaryForWindow sums amounts by kind over every transaction whose date
// starts with the given prefix. A year ("2024") covers the year, a
// year-month ("2024-05") the month. Kinds with no rows stay at zero.
func (s *SQLiteStore) SummaryForWindow(ctx context.Context, userID int64, datePrefix string) (core.Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT type, COALESCE(SUM(amount), 0)
		 FROM transactions
		 WHERE user_id = ? AND date LIKE ?
		 GROUP BY type`,
		userID, datePrefix+"%",
	)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summary for window: %w", err)
	}
	defer rows.Close()

	var sum core.Summary
	for rows.Next() {
		var (
			kind  core.TransactionKind
			total float64
		)
		if err := rows.Scan(&kind, &total); err != nil {
			return core.Summary{}, fmt.Errorf("scan summary row: %w", err)
		}
		switch kind {
		case core.Income:
			sum.Income = total
		case core.Expense:
			sum.Expense = total
		}
	}
	if err := rows.Err(); err != nil {
		return core.Summary{}, fmt.Errorf("iterate summary rows: %w", err)
	}

	sum.Savings = sum.Income - sum.Expense
	return sum, nil
}

// CategoryBreakdown groups the window's transactions by (category, kind),
// biggest totals first.
func (s *SQLiteStore) CategoryBreakdown(ctx context.Context, userID int64, datePrefix string) ([]core.CategoryTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, type, SUM(amount) AS total
		 FROM transactions
		 WHERE user_id = ? AND date LIKE ?
		 GROUP BY category, type
		 ORDER BY total DESC`,
		userID, datePrefix+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryTotal
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Kind, &ct.Total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}
	return out, nil
}

// MonthlyBreakdown groups a year's transactions by (year-month, kind) in
// calendar order. The month key is carved out of the ISO date text.
func (s *SQLiteStore) MonthlyBreakdown(ctx context.Context, userID int64, yearPrefix string) ([]core.MonthlyTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT substr(date, 1, 7) AS month, type, SUM(amount) AS total
		 FROM transactions
		 WHERE user_id = ? AND date LIKE ?
		 GROUP BY month, type
		 ORDER BY month ASC`,
		userID, yearPrefix+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("monthly breakdown: %w", err)
	}
	defer rows.Close()

	var out []core.MonthlyTotal
	for rows.Next() {
		var mt core.MonthlyTotal
		if err := rows.Scan(&mt.Month, &mt.Kind, &mt.Total); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		out = append(out, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly totals: %w", err)
	}
	return out, nil
}

// SpentByCategory sums the user's expense transactions for one category in
// one month. Income rows never count against a budget.
func (s *SQLiteStore) SpentByCategory(ctx context.Context, userID int64, category, month string) (float64, error) {
	var spent float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0)
		 FROM transactions
		 WHERE user_id = ? AND category = ? AND type = 'expense' AND date LIKE ?`,
		userID, category, month+"%",
	).Scan(&spent)
	if err != nil {
		return 0, fmt.Errorf("spent by category: %w", err)
	}
	return spent, nil
}
