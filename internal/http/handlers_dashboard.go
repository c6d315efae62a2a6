package http

import (
	"context"
	"log/slog"
	"net/http"

	"finance-tracker/internal/core"
	"finance-tracker/internal/reports"
)

const recentTransactionLimit = 10

// dashboardViewModel is the data for the landing page: this month at a
// glance plus the latest activity.
type dashboardViewModel struct {
	Email    string
	Month    string
	Summary  core.Summary
	Recent   []core.Transaction
	Statuses []core.BudgetStatus
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	month := s.ledger.CurrentMonth()

	report, err := s.monthlyReport(r.Context(), user.ID, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard report failed", "error", err, "user_id", user.ID, "month", month)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	recent, err := s.ledger.RecentTransactions(r.Context(), user.ID, recentTransactionLimit)
	if err != nil {
		slog.ErrorContext(r.Context(), "Recent transactions failed", "error", err, "user_id", user.ID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	statuses, err := s.engine.BudgetStatus(r.Context(), user.ID, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Budget status failed", "error", err, "user_id", user.ID, "month", month)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "dashboard.html", dashboardViewModel{
		Email:    user.Email,
		Month:    month,
		Summary:  report.Summary,
		Recent:   recent,
		Statuses: statuses,
	})
}

// monthlyReport serves reports through the LRU cache.
func (s *Server) monthlyReport(ctx context.Context, userID int64, month string) (reports.MonthlyReport, error) {
	key := s.reportCacheKey(userID, month)
	if cached, found := s.reportCache.Get(key); found {
		slog.DebugContext(ctx, "Report cache hit", "user_id", userID, "month", month)
		return cached, nil
	}

	report, err := s.engine.MonthlyReport(ctx, userID, month)
	if err != nil {
		return reports.MonthlyReport{}, err
	}

	s.reportCache.Set(key, report)
	return report, nil
}
