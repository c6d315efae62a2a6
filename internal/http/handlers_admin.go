package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"finance-tracker/internal/core"
	"finance-tracker/internal/export"
)

// handleExport streams the current user's monthly report as a download.
// ?format=csv|json|pdf, ?month=YYYY-MM (defaults to the current month).
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	format, err := export.ParseFormat(strings.TrimSpace(r.URL.Query().Get("format")))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month == "" {
		month = s.ledger.CurrentMonth()
	}
	if !core.ValidMonth(month) {
		http.Error(w, "month must look like 2025-01", http.StatusBadRequest)
		return
	}

	rep, err := s.buildExportReport(r, user.ID, user.Email, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Export assembly failed", "error", err, "user_id", user.ID, "month", month)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="report_%s.%s"`, month, format))

	if err := export.Write(w, format, rep); err != nil {
		slog.ErrorContext(r.Context(), "Export write failed", "error", err, "user_id", user.ID, "format", string(format))
	}
}

func (s *Server) buildExportReport(r *http.Request, userID int64, email, month string) (export.Report, error) {
	monthly, err := s.engine.MonthlyReport(r.Context(), userID, month)
	if err != nil {
		return export.Report{}, err
	}
	statuses, err := s.engine.BudgetStatus(r.Context(), userID, month)
	if err != nil {
		return export.Report{}, err
	}
	txs, err := s.ledger.TransactionsForMonth(r.Context(), userID, month)
	if err != nil {
		return export.Report{}, err
	}
	return export.BuildReport(monthly, statuses, txs, email), nil
}

// backupViewModel is the data for the backup page.
type backupViewModel struct {
	Error      string
	Message    string
	BackupPath string
}

func (s *Server) handleBackupForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "backup.html", backupViewModel{BackupPath: s.backupPath})
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("action") == "restore" {
		s.handleRestore(w, r)
		return
	}

	if err := s.store.Backup(r.Context(), s.backupPath); err != nil {
		slog.ErrorContext(r.Context(), "Backup failed", "error", err, "path", s.backupPath)
		s.render(w, r, "backup.html", backupViewModel{
			Error:      "Backup failed, check the server logs",
			BackupPath: s.backupPath,
		})
		return
	}

	slog.InfoContext(r.Context(), "Backup completed", "path", s.backupPath)
	s.render(w, r, "backup.html", backupViewModel{
		Message:    "Backup written to " + s.backupPath,
		BackupPath: s.backupPath,
	})
}

// handleRestore loads the configured backup back into the live database.
// Every cached report is dropped afterwards; the restored data may differ
// in any month for any user.
func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RestoreFrom(r.Context(), s.backupPath); err != nil {
		slog.ErrorContext(r.Context(), "Restore failed", "error", err, "path", s.backupPath)
		s.render(w, r, "backup.html", backupViewModel{
			Error:      "Restore failed, check the server logs",
			BackupPath: s.backupPath,
		})
		return
	}
	s.reportCache.Purge()

	slog.InfoContext(r.Context(), "Restore completed", "path", s.backupPath)
	s.render(w, r, "backup.html", backupViewModel{
		Message:    "Database restored from " + s.backupPath,
		BackupPath: s.backupPath,
	})
}
