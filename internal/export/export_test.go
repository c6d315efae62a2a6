package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-tracker/internal/core"
	"finance-tracker/internal/reports"
)

func sampleReport() Report {
	monthly := reports.MonthlyReport{
		Month:   "2025-03",
		Summary: core.Summary{Income: 2500, Expense: 955.20, Savings: 1544.80},
		Categories: []core.CategoryTotal{
			{Category: "Rent", Kind: core.Expense, Total: 900},
			{Category: "Groceries", Kind: core.Expense, Total: 55.20},
		},
	}
	statuses := []core.BudgetStatus{
		core.NewBudgetStatus("Groceries", 50, 55.20),
	}
	txs := []core.Transaction{
		{ID: 1, Kind: core.Income, Category: "Salary", Amount: 2500, Date: "2025-03-01"},
		{ID: 2, Kind: core.Expense, Category: "Rent", Amount: 900, Date: "2025-03-02", Description: "march"},
		{ID: 3, Kind: core.Expense, Category: "Groceries", Amount: 55.20, Date: "2025-03-10"},
	}
	return BuildReport(monthly, statuses, txs, "anna@example.com")
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"csv", "json", "pdf"} {
		f, err := ParseFormat(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, string(f))
	}

	_, err := ParseFormat("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleReport()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "Month,2025-03", lines[0])
	assert.Equal(t, "Savings,1544.80", lines[3])
	assert.Contains(t, buf.String(), "ID,Type,Category,Amount,Date,Description")
	assert.Contains(t, buf.String(), "2,expense,Rent,900.00,2025-03-02,march")
}

func TestWriteJSONRoundTrip(t *testing.T) {
	rep := sampleReport()

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, rep))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, rep.Email, decoded.Email)
	assert.Equal(t, rep.Summary, decoded.Summary)
	require.Len(t, decoded.Statuses, 1)
	assert.True(t, decoded.Statuses[0].Exceeded)
}

func TestWritePDFProducesDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, sampleReport()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")), "output must start with the PDF magic")
	assert.Greater(t, buf.Len(), 1000)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv", FormatCSV.ContentType())
	assert.Equal(t, "application/json", FormatJSON.ContentType())
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
}
