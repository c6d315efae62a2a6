package services

import (
	"context"
	"testing"

	"finance-tracker/internal/amqp"
	"finance-tracker/internal/core"
	"finance-tracker/internal/reports"
	"finance-tracker/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	today string
}

func (c fixedClock) Today() string        { return c.today }
func (c fixedClock) CurrentMonth() string { return core.MonthOf(c.today) }

type capturingPublisher struct {
	alerts []*amqp.BudgetAlertMessage
}

func (p *capturingPublisher) PublishBudgetAlert(_ context.Context, msg *amqp.BudgetAlertMessage) error {
	p.alerts = append(p.alerts, msg)
	return nil
}

func newTestLedger(t *testing.T, today string) (*LedgerService, *storage.SQLiteStore, *capturingPublisher, int64) {
	t.Helper()

	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	u, err := store.CreateUser(context.Background(), "ledger@example.com", "hash")
	require.NoError(t, err)

	pub := &capturingPublisher{}
	svc := NewLedgerService(store, reports.NewEngine(store), pub, fixedClock{today: today})
	return svc, store, pub, u.ID
}

func TestAddTransactionUsesClockDate(t *testing.T) {
	svc, store, _, user := newTestLedger(t, "2024-06-15")
	ctx := context.Background()

	id, err := svc.AddTransaction(ctx, user, core.Income, "Salary", 10000, "june pay")
	require.NoError(t, err)

	tx, err := store.GetTransaction(ctx, id, user)
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, "2024-06-15", tx.Date)
	assert.Equal(t, "june pay", tx.Description)
}

func TestAddExpensePublishesAlertWhenExceeded(t *testing.T) {
	svc, store, pub, user := newTestLedger(t, "2024-06-15")
	ctx := context.Background()

	require.NoError(t, store.SetBudget(ctx, user, "Food", 1500, "2024-06"))

	// Under the limit: no alert.
	_, err := svc.AddTransaction(ctx, user, core.Expense, "Food", 1500, "")
	require.NoError(t, err)
	assert.Empty(t, pub.alerts, "spending exactly the limit must not alert")

	// Past the limit: exactly one alert with the derived numbers.
	_, err = svc.AddTransaction(ctx, user, core.Expense, "Food", 500, "")
	require.NoError(t, err)
	require.Len(t, pub.alerts, 1)
	alert := pub.alerts[0]
	assert.Equal(t, user, alert.UserID)
	assert.Equal(t, "Food", alert.Category)
	assert.Equal(t, "2024-06", alert.Month)
	assert.Equal(t, 2000.0, alert.Spent)
	assert.Equal(t, 1500.0, alert.Limit)
}

func TestAddIncomeNeverAlerts(t *testing.T) {
	svc, store, pub, user := newTestLedger(t, "2024-06-15")
	ctx := context.Background()

	require.NoError(t, store.SetBudget(ctx, user, "Food", 100, "2024-06"))

	_, err := svc.AddTransaction(ctx, user, core.Income, "Food", 99999, "")
	require.NoError(t, err)
	assert.Empty(t, pub.alerts)
}

func TestAddExpenseWithoutBudgetDoesNotAlert(t *testing.T) {
	svc, _, pub, user := newTestLedger(t, "2024-06-15")

	_, err := svc.AddTransaction(context.Background(), user, core.Expense, "Gadgets", 12345, "")
	require.NoError(t, err)
	assert.Empty(t, pub.alerts)
}

func TestUpdateTransactionOwnershipAndAlert(t *testing.T) {
	svc, store, pub, user := newTestLedger(t, "2024-06-15")
	ctx := context.Background()

	other, err := store.CreateUser(ctx, "other@example.com", "hash")
	require.NoError(t, err)

	require.NoError(t, store.SetBudget(ctx, user, "Food", 100, "2024-06"))
	id, err := svc.AddTransaction(ctx, user, core.Expense, "Food", 50, "")
	require.NoError(t, err)
	require.Empty(t, pub.alerts)

	// Wrong owner: reported not found, row untouched, no alert.
	found, err := svc.UpdateTransaction(ctx, id, other.ID, core.Expense, "Food", 5000, "", "")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, pub.alerts)

	// Right owner raising the amount past the limit alerts.
	found, err = svc.UpdateTransaction(ctx, id, user, core.Expense, "Food", 150, "", "")
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, pub.alerts, 1)
	assert.Equal(t, 150.0, pub.alerts[0].Spent)
}

func TestDeleteTransactionScoped(t *testing.T) {
	svc, store, _, user := newTestLedger(t, "2024-06-15")
	ctx := context.Background()

	other, err := store.CreateUser(ctx, "other@example.com", "hash")
	require.NoError(t, err)

	id, err := svc.AddTransaction(ctx, user, core.Expense, "Food", 50, "")
	require.NoError(t, err)

	found, err := svc.DeleteTransaction(ctx, id, other.ID)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = svc.DeleteTransaction(ctx, id, user)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestNilPublisherIsSafe(t *testing.T) {
	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	u, err := store.CreateUser(context.Background(), "np@example.com", "hash")
	require.NoError(t, err)

	svc := NewLedgerService(store, reports.NewEngine(store), nil, fixedClock{today: "2024-06-15"})
	ctx := context.Background()

	require.NoError(t, store.SetBudget(ctx, u.ID, "Food", 10, "2024-06"))
	_, err = svc.AddTransaction(ctx, u.ID, core.Expense, "Food", 100, "")
	require.NoError(t, err, "a missing broker must not fail the write")
}
