package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders a one-page (or longer) monthly statement.
func WritePDF(w io.Writer, rep Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	drawSection := func(title string, content string) {
		if strings.TrimSpace(content) == "" {
			return
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)

		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.MultiCell(190, 5, tr(content), "", "L", false)
		pdf.Ln(8)
	}

	pdf.AddPage()

	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("  Monthly Statement %s", rep.Month)), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Account: %s", rep.Email)), "", 1, "L", true, 0, "")
	pdf.Ln(10)

	summary := fmt.Sprintf("Income: %.2f\nExpenses: %.2f\nSavings: %.2f",
		rep.Summary.Income, rep.Summary.Expense, rep.Summary.Savings)
	drawSection("Summary", summary)

	if len(rep.Categories) > 0 {
		var b strings.Builder
		for _, c := range rep.Categories {
			b.WriteString(fmt.Sprintf("%s (%s): %.2f\n", c.Category, c.Kind, c.Total))
		}
		drawSection("By Category", b.String())
	}

	if len(rep.Statuses) > 0 {
		var b strings.Builder
		for _, st := range rep.Statuses {
			state := "within budget"
			if st.Exceeded {
				state = "EXCEEDED"
			}
			b.WriteString(fmt.Sprintf("%s: spent %.2f of %.2f (%.1f%%, %s)\n",
				st.Category, st.Spent, st.Limit, st.Percentage, state))
		}
		drawSection("Budgets", b.String())
	}

	if len(rep.Transactions) > 0 {
		var b strings.Builder
		for _, tx := range rep.Transactions {
			desc := tx.Description
			if desc != "" {
				desc = " - " + desc
			}
			b.WriteString(fmt.Sprintf("%s  %-7s  %-15s  %10.2f%s\n",
				tx.Date, tx.Kind, tx.Category, tx.Amount, desc))
		}
		drawSection("Transactions", b.String())
	}

	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	footerText := fmt.Sprintf("Generated %s", time.Now().Format("2006-01-02"))
	pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
