// Package services orchestrates ledger writes with budget checking and
// alert publishing. Handlers talk to this layer, not to storage directly.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"finance-tracker/internal/amqp"
	"finance-tracker/internal/core"
	"finance-tracker/internal/reports"
)

// LedgerStore is the slice of the persistence layer the service writes to.
type LedgerStore interface {
	AddTransaction(ctx context.Context, userID int64, kind core.TransactionKind, category string, amount float64, date, description string) (int64, error)
	UpdateTransaction(ctx context.Context, id, userID int64, kind core.TransactionKind, category string, amount float64, description, date string) (bool, error)
	DeleteTransaction(ctx context.Context, id, userID int64) (bool, error)
	GetTransaction(ctx context.Context, id, userID int64) (*core.Transaction, error)
	ListRecentTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error)
	ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
	ListTransactionsForWindow(ctx context.Context, userID int64, datePrefix string) ([]core.Transaction, error)
}

// AlertPublisher pushes budget alerts to the message broker.
type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error
}

type LedgerService struct {
	store  LedgerStore
	engine *reports.Engine
	alerts AlertPublisher
	clock  core.Clock
}

// NewLedgerService wires the ledger. alerts may be nil when no broker is
// configured; alert publishing is then skipped.
func NewLedgerService(store LedgerStore, engine *reports.Engine, alerts AlertPublisher, clock core.Clock) *LedgerService {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &LedgerService{store: store, engine: engine, alerts: alerts, clock: clock}
}

// AddTransaction records a transaction dated today per the injected clock,
// then checks the touched budget. The write always wins: a failed budget
// check or publish is logged, never returned.
func (s *LedgerService) AddTransaction(ctx context.Context, userID int64, kind core.TransactionKind, category string, amount float64, description string) (int64, error) {
	date := s.clock.Today()

	id, err := s.store.AddTransaction(ctx, userID, kind, category, amount, date, description)
	if err != nil {
		return 0, fmt.Errorf("add transaction: %w", err)
	}

	if kind == core.Expense {
		s.alertIfExceeded(ctx, userID, category, core.MonthOf(date))
	}
	return id, nil
}

// UpdateTransaction mutates a row scoped by (id, user), reporting whether a
// row matched. An empty date keeps the stored one.
func (s *LedgerService) UpdateTransaction(ctx context.Context, id, userID int64, kind core.TransactionKind, category string, amount float64, description, date string) (bool, error) {
	found, err := s.store.UpdateTransaction(ctx, id, userID, kind, category, amount, description, date)
	if err != nil {
		return false, fmt.Errorf("update transaction: %w", err)
	}
	if !found {
		return false, nil
	}

	if kind == core.Expense {
		// The stored row has the effective date, whether or not the
		// caller changed it.
		if tx, err := s.store.GetTransaction(ctx, id, userID); err == nil && tx != nil {
			s.alertIfExceeded(ctx, userID, category, core.MonthOf(tx.Date))
		}
	}
	return true, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id, userID int64) (bool, error) {
	found, err := s.store.DeleteTransaction(ctx, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	return found, nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, id, userID int64) (*core.Transaction, error) {
	return s.store.GetTransaction(ctx, id, userID)
}

func (s *LedgerService) RecentTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	return s.store.ListRecentTransactions(ctx, userID, limit)
}

func (s *LedgerService) AllTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

// TransactionsForMonth returns the user's rows within one month.
func (s *LedgerService) TransactionsForMonth(ctx context.Context, userID int64, month string) ([]core.Transaction, error) {
	return s.store.ListTransactionsForWindow(ctx, userID, month)
}

// Today exposes the service clock's current date for handlers that render it.
func (s *LedgerService) Today() string { return s.clock.Today() }

// CurrentMonth exposes the service clock's current month.
func (s *LedgerService) CurrentMonth() string { return s.clock.CurrentMonth() }

func (s *LedgerService) alertIfExceeded(ctx context.Context, userID int64, category, month string) {
	st, err := s.engine.CategoryStatus(ctx, userID, category, month)
	if err != nil {
		slog.WarnContext(ctx, "Budget check failed", "error", err,
			"user_id", userID, "category", category, "month", month)
		return
	}
	if st == nil || !st.Exceeded {
		return
	}

	slog.WarnContext(ctx, "Budget exceeded",
		"user_id", userID,
		"category", category,
		"month", month,
		"spent", st.Spent,
		"limit", st.Limit)

	if s.alerts == nil {
		return
	}

	msg := amqp.NewBudgetAlertMessage(userID, category, month, st.Spent, st.Limit)
	if err := s.alerts.PublishBudgetAlert(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish budget alert", "error", err,
			"user_id", userID, "category", category)
	}
}
