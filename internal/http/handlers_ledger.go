package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"finance-tracker/internal/core"
)

// transactionViewModel feeds the add/edit form.
type transactionViewModel struct {
	Error       string
	IsEdit      bool
	Transaction *core.Transaction
	Today       string
}

func (s *Server) handleTransactionForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "transaction_form.html", transactionViewModel{Today: s.ledger.Today()})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	form, err := parseTransactionForm(r)
	if err != nil {
		s.render(w, r, "transaction_form.html", transactionViewModel{
			Error: err.Error(),
			Today: s.ledger.Today(),
		})
		return
	}

	id, err := s.ledger.AddTransaction(r.Context(), user.ID, form.Kind, form.Category, form.Amount, form.Description)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create transaction failed", "error", err, "user_id", user.ID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.invalidateUserCache(user.ID)
	slog.InfoContext(r.Context(), "Transaction created via web",
		"user_id", user.ID, "transaction_id", id, "type", string(form.Kind), "category", form.Category)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleEditTransactionForm(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}

	tx, err := s.ledger.GetTransaction(r.Context(), id, user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Load transaction failed", "error", err, "user_id", user.ID, "transaction_id", id)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if tx == nil {
		http.Error(w, "Transaction not found", http.StatusNotFound)
		return
	}

	s.render(w, r, "transaction_form.html", transactionViewModel{
		IsEdit:      true,
		Transaction: tx,
		Today:       s.ledger.Today(),
	})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}

	form, err := parseTransactionForm(r)
	if err != nil {
		tx, _ := s.ledger.GetTransaction(r.Context(), id, user.ID)
		s.render(w, r, "transaction_form.html", transactionViewModel{
			Error:       err.Error(),
			IsEdit:      tx != nil,
			Transaction: tx,
			Today:       s.ledger.Today(),
		})
		return
	}

	found, err := s.ledger.UpdateTransaction(r.Context(), id, user.ID, form.Kind, form.Category, form.Amount, form.Description, form.Date)
	if err != nil {
		slog.ErrorContext(r.Context(), "Update transaction failed", "error", err, "user_id", user.ID, "transaction_id", id)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "Transaction not found", http.StatusNotFound)
		return
	}

	s.invalidateUserCache(user.ID)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}

	found, err := s.ledger.DeleteTransaction(r.Context(), id, user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Delete transaction failed", "error", err, "user_id", user.ID, "transaction_id", id)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "Transaction not found", http.StatusNotFound)
		return
	}

	s.invalidateUserCache(user.ID)
	slog.InfoContext(r.Context(), "Transaction deleted via web", "user_id", user.ID, "transaction_id", id)
	http.Redirect(w, r, "/", http.StatusFound)
}
