// Package export renders a user's monthly report as CSV, JSON or PDF.
// The writer functions stream to any io.Writer; the file helpers wrap
// them with timestamped filenames for the CLI.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"finance-tracker/internal/core"
	"finance-tracker/internal/reports"
)

// Format names a supported output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON, FormatPDF:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported export format %q (want csv, json or pdf)", s)
}

// Report bundles everything an export carries for one user and month.
type Report struct {
	Email        string               `json:"email"`
	Month        string               `json:"month"`
	Summary      core.Summary         `json:"summary"`
	Categories   []core.CategoryTotal `json:"categories"`
	Statuses     []core.BudgetStatus  `json:"budget_statuses"`
	Transactions []core.Transaction   `json:"transactions"`
}

// BuildReport assembles the export payload from the report engine and the
// transaction list.
func BuildReport(monthly reports.MonthlyReport, statuses []core.BudgetStatus, txs []core.Transaction, email string) Report {
	return Report{
		Email:        email,
		Month:        monthly.Month,
		Summary:      monthly.Summary,
		Categories:   monthly.Categories,
		Statuses:     statuses,
		Transactions: txs,
	}
}

// Write dispatches on format.
func Write(w io.Writer, format Format, rep Report) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, rep)
	case FormatJSON:
		return WriteJSON(w, rep)
	case FormatPDF:
		return WritePDF(w, rep)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// ContentType returns the MIME type for HTTP downloads.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// WriteCSV emits the transaction list with a summary block on top.
func WriteCSV(w io.Writer, rep Report) error {
	cw := csv.NewWriter(w)

	meta := [][]string{
		{"Month", rep.Month},
		{"Income", fmt.Sprintf("%.2f", rep.Summary.Income)},
		{"Expense", fmt.Sprintf("%.2f", rep.Summary.Expense)},
		{"Savings", fmt.Sprintf("%.2f", rep.Summary.Savings)},
		{},
		{"ID", "Type", "Category", "Amount", "Date", "Description"},
	}
	for _, row := range meta {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}

	for _, tx := range rep.Transactions {
		record := []string{
			fmt.Sprintf("%d", tx.ID),
			string(tx.Kind),
			tx.Category,
			fmt.Sprintf("%.2f", tx.Amount),
			tx.Date,
			tx.Description,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON emits the full report as indented JSON.
func WriteJSON(w io.Writer, rep Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rep); err != nil {
		return fmt.Errorf("encode report json: %w", err)
	}
	return nil
}

// --- File helpers ---

// ToFile writes the report under dir with a timestamped name and returns
// the absolute path.
func ToFile(rep Report, format Format, base, dir string) (string, error) {
	outputFilename, err := generateFilename(base, dir, string(format))
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer file.Close()

	if err := Write(file, format, rep); err != nil {
		return "", err
	}
	return filepath.Abs(outputFilename)
}

// generateFilename creates a timestamped filename and ensures the directory exists.
func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory %q: %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", base, timestamp, ext)), nil
}
