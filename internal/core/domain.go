package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"
)

// Date layouts used everywhere. Dates are stored as ISO text so that
// lexical order equals chronological order and a string prefix selects a
// calendar period ("2024-05" matches the whole month, "2024" the whole year).
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

type (
	TransactionKind string

	Transaction struct {
		ID          int64
		UserID      int64
		Kind        TransactionKind
		Category    string
		Amount      float64
		Date        string // YYYY-MM-DD
		Description string
	}

	Budget struct {
		ID           int64
		UserID       int64
		Category     string
		MonthlyLimit float64
		Month        string // YYYY-MM
	}

	User struct {
		ID           int64
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	// Summary aggregates a user's transactions over a date window.
	Summary struct {
		Income  float64
		Expense float64
		Savings float64
	}

	// CategoryTotal is one row of a per-category breakdown.
	CategoryTotal struct {
		Category string
		Kind     TransactionKind
		Total    float64
	}

	// MonthlyTotal is one row of a per-month breakdown within a year.
	MonthlyTotal struct {
		Month string // YYYY-MM
		Kind  TransactionKind
		Total float64
	}

	// BudgetStatus is derived from a Budget row and the matching expense
	// transactions. It is recomputed on every query, never persisted.
	BudgetStatus struct {
		Category   string
		Limit      float64
		Spent      float64
		Remaining  float64
		Percentage float64
		Exceeded   bool
	}
)

var (
	ErrInvalidKind   = errors.New("invalid transaction kind")
	ErrInvalidDate   = errors.New("invalid date, want YYYY-MM-DD")
	ErrInvalidMonth  = errors.New("invalid month, want YYYY-MM")
	ErrEmptyCategory = errors.New("empty category")
)

// ParseKind maps free-form input to a TransactionKind.
func ParseKind(s string) (TransactionKind, error) {
	switch TransactionKind(strings.TrimSpace(strings.ToLower(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	default:
		return "", ErrInvalidKind
	}
}

func (k TransactionKind) Validate() error {
	if k != Income && k != Expense {
		return ErrInvalidKind
	}
	return nil
}

// ValidDate reports whether s is a well-formed ISO calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidMonth reports whether s is a well-formed ISO year-month key.
func ValidMonth(s string) bool {
	_, err := time.Parse(MonthLayout, s)
	return err == nil
}

// MonthOf returns the YYYY-MM prefix of an ISO date.
func MonthOf(date string) string {
	if len(date) < len("2006-01") {
		return date
	}
	return date[:len("2006-01")]
}

// NewBudgetStatus derives the reporting view for one budget row.
// Percentage is 0 when the limit is 0; Exceeded is strictly greater-than,
// so spending exactly up to the limit does not trip it.
func NewBudgetStatus(category string, limit, spent float64) BudgetStatus {
	pct := 0.0
	if limit != 0 {
		pct = spent / limit * 100
	}
	return BudgetStatus{
		Category:   category,
		Limit:      limit,
		Spent:      spent,
		Remaining:  limit - spent,
		Percentage: pct,
		Exceeded:   spent > limit,
	}
}
