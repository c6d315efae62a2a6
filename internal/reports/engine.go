// Package reports derives summaries, breakdowns and budget status views
// from the ledger. Everything here is computed fresh on each call; nothing
// is cached or persisted.
package reports

import (
	"context"
	"fmt"

	"finance-tracker/internal/core"
)

// Store is the slice of the persistence layer the engine reads from.
type Store interface {
	SummaryForWindow(ctx context.Context, userID int64, datePrefix string) (core.Summary, error)
	CategoryBreakdown(ctx context.Context, userID int64, datePrefix string) ([]core.CategoryTotal, error)
	MonthlyBreakdown(ctx context.Context, userID int64, yearPrefix string) ([]core.MonthlyTotal, error)
	SpentByCategory(ctx context.Context, userID int64, category, month string) (float64, error)
	ListBudgets(ctx context.Context, userID int64, month string) ([]core.Budget, error)
	GetBudget(ctx context.Context, userID int64, category, month string) (*core.Budget, error)
}

type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Summary sums income and expenses over a date-prefix window. The window is
// a year ("2024") or a year-month ("2024-05").
func (e *Engine) Summary(ctx context.Context, userID int64, datePrefix string) (core.Summary, error) {
	sum, err := e.store.SummaryForWindow(ctx, userID, datePrefix)
	if err != nil {
		return core.Summary{}, fmt.Errorf("window summary: %w", err)
	}
	return sum, nil
}

// CategoryBreakdown groups the window by (category, kind), largest first.
func (e *Engine) CategoryBreakdown(ctx context.Context, userID int64, datePrefix string) ([]core.CategoryTotal, error) {
	out, err := e.store.CategoryBreakdown(ctx, userID, datePrefix)
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	return out, nil
}

// MonthlyBreakdown groups a year by (month, kind) in calendar order.
func (e *Engine) MonthlyBreakdown(ctx context.Context, userID int64, yearPrefix string) ([]core.MonthlyTotal, error) {
	out, err := e.store.MonthlyBreakdown(ctx, userID, yearPrefix)
	if err != nil {
		return nil, fmt.Errorf("monthly breakdown: %w", err)
	}
	return out, nil
}

// BudgetStatus reports each budget of the month against what was actually
// spent, ordered by category. Status rows are derived on the spot from the
// budget limit and the matching expense sum.
func (e *Engine) BudgetStatus(ctx context.Context, userID int64, month string) ([]core.BudgetStatus, error) {
	budgets, err := e.store.ListBudgets(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	out := make([]core.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent, err := e.store.SpentByCategory(ctx, userID, b.Category, month)
		if err != nil {
			return nil, fmt.Errorf("spent for %q: %w", b.Category, err)
		}
		out = append(out, core.NewBudgetStatus(b.Category, b.MonthlyLimit, spent))
	}
	return out, nil
}

// CategoryStatus derives the status view for a single category, nil when
// no budget is set for it.
func (e *Engine) CategoryStatus(ctx context.Context, userID int64, category, month string) (*core.BudgetStatus, error) {
	budget, err := e.store.GetBudget(ctx, userID, category, month)
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	if budget == nil {
		return nil, nil
	}

	spent, err := e.store.SpentByCategory(ctx, userID, category, month)
	if err != nil {
		return nil, fmt.Errorf("spent for %q: %w", category, err)
	}

	st := core.NewBudgetStatus(category, budget.MonthlyLimit, spent)
	return &st, nil
}

// CheckBudget reports whether spending in one category has gone strictly
// past its limit. No budget row means no warning, however much was spent.
func (e *Engine) CheckBudget(ctx context.Context, userID int64, category, month string) (bool, error) {
	st, err := e.CategoryStatus(ctx, userID, category, month)
	if err != nil {
		return false, err
	}
	return st != nil && st.Exceeded, nil
}

// MonthlyReport bundles the month's summary with its category breakdown.
type MonthlyReport struct {
	Month      string
	Summary    core.Summary
	Categories []core.CategoryTotal
}

// YearlyReport bundles the year's summary with its month-by-month totals.
type YearlyReport struct {
	Year    string
	Summary core.Summary
	Months  []core.MonthlyTotal
}

func (e *Engine) MonthlyReport(ctx context.Context, userID int64, month string) (MonthlyReport, error) {
	sum, err := e.Summary(ctx, userID, month)
	if err != nil {
		return MonthlyReport{}, err
	}
	cats, err := e.CategoryBreakdown(ctx, userID, month)
	if err != nil {
		return MonthlyReport{}, err
	}
	return MonthlyReport{Month: month, Summary: sum, Categories: cats}, nil
}

func (e *Engine) YearlyReport(ctx context.Context, userID int64, year string) (YearlyReport, error) {
	sum, err := e.Summary(ctx, userID, year)
	if err != nil {
		return YearlyReport{}, err
	}
	months, err := e.MonthlyBreakdown(ctx, userID, year)
	if err != nil {
		return YearlyReport{}, err
	}
	return YearlyReport{Year: year, Summary: sum, Months: months}, nil
}
