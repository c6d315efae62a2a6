package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"finance-tracker/internal/core"
	"finance-tracker/internal/reports"
)

// reportsViewModel combines the month drill-down with the year overview.
type reportsViewModel struct {
	Month   string
	Year    string
	Monthly reports.MonthlyReport
	Yearly  reports.YearlyReport
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month == "" {
		month = s.ledger.CurrentMonth()
	}
	if !core.ValidMonth(month) {
		slog.WarnContext(r.Context(), "Invalid month parameter", "month", month)
		month = s.ledger.CurrentMonth()
	}

	year := strings.TrimSpace(r.URL.Query().Get("year"))
	if year == "" || len(year) != 4 {
		year = month[:4]
	}

	monthly, err := s.monthlyReport(r.Context(), user.ID, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Monthly report failed", "error", err, "user_id", user.ID, "month", month)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	yearly, err := s.engine.YearlyReport(r.Context(), user.ID, year)
	if err != nil {
		slog.ErrorContext(r.Context(), "Yearly report failed", "error", err, "user_id", user.ID, "year", year)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "reports.html", reportsViewModel{
		Month:   month,
		Year:    year,
		Monthly: monthly,
		Yearly:  yearly,
	})
}

// budgetsViewModel is the data for the budget management page.
type budgetsViewModel struct {
	Error    string
	Message  string
	Month    string
	Budgets  []core.Budget
	Statuses []core.BudgetStatus
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	s.renderBudgets(w, r, month, "", "")
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	if err := r.ParseForm(); err != nil {
		s.renderBudgets(w, r, "", "Invalid form submission", "")
		return
	}

	// Render the month being edited, not the current one.
	month := strings.TrimSpace(r.Form.Get("month"))

	category := sanitizeInput(r.Form.Get("category"))
	if category == "" {
		s.renderBudgets(w, r, month, "Category is required", "")
		return
	}

	limit, err := strconv.ParseFloat(strings.TrimSpace(r.Form.Get("limit")), 64)
	if err != nil || limit < 0 {
		s.renderBudgets(w, r, month, "Limit must be a non-negative number", "")
		return
	}

	if month == "" {
		month = s.ledger.CurrentMonth()
	}
	if !core.ValidMonth(month) {
		s.renderBudgets(w, r, "", "Month must look like 2025-01", "")
		return
	}

	if err := s.store.SetBudget(r.Context(), user.ID, category, limit, month); err != nil {
		slog.ErrorContext(r.Context(), "Set budget failed", "error", err, "user_id", user.ID, "category", category)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.invalidateUserCache(user.ID)
	slog.InfoContext(r.Context(), "Budget set via web",
		"user_id", user.ID, "category", category, "month", month, "limit", limit)
	s.renderBudgets(w, r, month, "", "Budget saved")
}

func (s *Server) renderBudgets(w http.ResponseWriter, r *http.Request, month, errMsg, message string) {
	user := userFromContext(r)
	if month == "" || !core.ValidMonth(month) {
		month = s.ledger.CurrentMonth()
	}

	budgets, err := s.store.ListBudgets(r.Context(), user.ID, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "List budgets failed", "error", err, "user_id", user.ID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	statuses, err := s.engine.BudgetStatus(r.Context(), user.ID, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Budget status failed", "error", err, "user_id", user.ID, "month", month)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "budgets.html", budgetsViewModel{
		Error:    errMsg,
		Message:  message,
		Month:    month,
		Budgets:  budgets,
		Statuses: statuses,
	})
}
