package http

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"finance-tracker/internal/core"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money": formatAmount,
		"pct": func(p float64) string {
			return strconv.FormatFloat(p, 'f', 1, 64)
		},
	}
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "template", name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
	}
}

// sanitizeInput removes control characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// transactionForm is the parsed add/edit form payload.
type transactionForm struct {
	Kind        core.TransactionKind
	Category    string
	Amount      float64
	Date        string
	Description string
}

func parseTransactionForm(r *http.Request) (transactionForm, error) {
	if err := r.ParseForm(); err != nil {
		return transactionForm{}, fmt.Errorf("parse form: %w", err)
	}

	kind, err := core.ParseKind(r.Form.Get("type"))
	if err != nil {
		return transactionForm{}, err
	}

	category := sanitizeInput(r.Form.Get("category"))
	if category == "" {
		return transactionForm{}, core.ErrEmptyCategory
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(r.Form.Get("amount")), 64)
	if err != nil {
		return transactionForm{}, fmt.Errorf("invalid amount %q", r.Form.Get("amount"))
	}

	date := strings.TrimSpace(r.Form.Get("date"))
	if date != "" && !core.ValidDate(date) {
		return transactionForm{}, core.ErrInvalidDate
	}

	return transactionForm{
		Kind:        kind,
		Category:    category,
		Amount:      amount,
		Date:        date,
		Description: sanitizeInput(r.Form.Get("description")),
	}, nil
}

// invalidateUserCache drops every cached report for a user after a write.
func (s *Server) invalidateUserCache(userID int64) {
	s.reportCache.DeletePrefix(strconv.FormatInt(userID, 10) + ":")
}

func (s *Server) reportCacheKey(userID int64, month string) string {
	return strconv.FormatInt(userID, 10) + ":" + month
}
