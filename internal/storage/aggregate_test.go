package storage

import (
	"context"
	"testing"

	"finance-tracker/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AggregateTestSuite struct {
	suite.Suite
	store *SQLiteStore
	ctx   context.Context
	user  int64
	other int64
}

func (s *AggregateTestSuite) SetupTest() {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(s.T(), err)
	s.store = store
	s.ctx = context.Background()

	u, err := store.CreateUser(s.ctx, "agg@example.com", "hash")
	require.NoError(s.T(), err)
	o, err := store.CreateUser(s.ctx, "other@example.com", "hash")
	require.NoError(s.T(), err)
	s.user = u.ID
	s.other = o.ID
}

func (s *AggregateTestSuite) TearDownTest() {
	s.store.Close()
}

func (s *AggregateTestSuite) add(userID int64, kind core.TransactionKind, category string, amount float64, date string) {
	_, err := s.store.AddTransaction(s.ctx, userID, kind, category, amount, date, "")
	require.NoError(s.T(), err)
}

func (s *AggregateTestSuite) TestSummaryForMonthWindow() {
	s.add(s.user, core.Income, "Salary", 10000, "2024-06-01")
	s.add(s.user, core.Expense, "Food", 2000, "2024-06-20")
	s.add(s.user, core.Expense, "Food", 999, "2024-07-01")  // outside window
	s.add(s.other, core.Income, "Salary", 5555, "2024-06-02") // other user

	sum, err := s.store.SummaryForWindow(s.ctx, s.user, "2024-06")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 10000.0, sum.Income)
	assert.Equal(s.T(), 2000.0, sum.Expense)
	assert.Equal(s.T(), 8000.0, sum.Savings)
}

func (s *AggregateTestSuite) TestSummaryForYearWindow() {
	s.add(s.user, core.Income, "Salary", 100, "2024-01-15")
	s.add(s.user, core.Income, "Salary", 200, "2024-11-15")
	s.add(s.user, core.Expense, "Food", 50, "2024-06-15")
	s.add(s.user, core.Expense, "Food", 70, "2023-12-31")

	sum, err := s.store.SummaryForWindow(s.ctx, s.user, "2024")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 300.0, sum.Income)
	assert.Equal(s.T(), 50.0, sum.Expense)
	assert.Equal(s.T(), 250.0, sum.Savings)
}

func (s *AggregateTestSuite) TestSummaryEmptyWindowIsZero() {
	sum, err := s.store.SummaryForWindow(s.ctx, s.user, "2019-01")
	require.NoError(s.T(), err)
	assert.Zero(s.T(), sum.Income)
	assert.Zero(s.T(), sum.Expense)
	assert.Zero(s.T(), sum.Savings)
}

func (s *AggregateTestSuite) TestCategoryBreakdownOrderedByTotal() {
	s.add(s.user, core.Expense, "Food", 300, "2024-06-01")
	s.add(s.user, core.Expense, "Food", 200, "2024-06-02")
	s.add(s.user, core.Expense, "Rent", 900, "2024-06-03")
	s.add(s.user, core.Income, "Salary", 5000, "2024-06-05")

	got, err := s.store.CategoryBreakdown(s.ctx, s.user, "2024-06")
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 3)
	assert.Equal(s.T(), core.CategoryTotal{Category: "Salary", Kind: core.Income, Total: 5000}, got[0])
	assert.Equal(s.T(), core.CategoryTotal{Category: "Rent", Kind: core.Expense, Total: 900}, got[1])
	assert.Equal(s.T(), core.CategoryTotal{Category: "Food", Kind: core.Expense, Total: 500}, got[2])
}

func (s *AggregateTestSuite) TestMonthlyBreakdownOrderedByMonth() {
	s.add(s.user, core.Expense, "Food", 100, "2024-03-10")
	s.add(s.user, core.Income, "Salary", 4000, "2024-01-31")
	s.add(s.user, core.Expense, "Food", 150, "2024-01-05")

	got, err := s.store.MonthlyBreakdown(s.ctx, s.user, "2024")
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 3)
	assert.Equal(s.T(), "2024-01", got[0].Month)
	assert.Equal(s.T(), "2024-01", got[1].Month)
	assert.Equal(s.T(), "2024-03", got[2].Month)
}

func (s *AggregateTestSuite) TestSpentByCategoryCountsOnlyExpenses() {
	s.add(s.user, core.Expense, "Food", 700, "2024-06-01")
	s.add(s.user, core.Expense, "Food", 300, "2024-06-28")
	s.add(s.user, core.Income, "Food", 250, "2024-06-10")  // refunds do not reduce spend
	s.add(s.user, core.Expense, "Food", 400, "2024-07-01") // next month
	s.add(s.user, core.Expense, "Rent", 900, "2024-06-01") // other category

	spent, err := s.store.SpentByCategory(s.ctx, s.user, "Food", "2024-06")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1000.0, spent)
}

func (s *AggregateTestSuite) TestSpentByCategoryEmpty() {
	spent, err := s.store.SpentByCategory(s.ctx, s.user, "Travel", "2024-06")
	require.NoError(s.T(), err)
	assert.Zero(s.T(), spent)
}

func TestAggregateTestSuite(t *testing.T) {
	suite.Run(t, new(AggregateTestSuite))
}
