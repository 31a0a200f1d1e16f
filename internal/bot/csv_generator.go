package bot

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"gitlab.com/yelinaung/budget-bot/internal/expense"
	"gitlab.com/yelinaung/budget-bot/internal/ledger"
	"gitlab.com/yelinaung/budget-bot/internal/models"
)

var csvHeader = []string{"ID", "Date", "Category", "Subcategory", "Comment", "Amount"}

// GenerateExpensesCSV generates a CSV file from a list of expenses.
// Dates are rendered in loc.
func GenerateExpensesCSV(expenses []models.Expense, loc *time.Location) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range expenses {
		e := &expenses[i]
		row := []string{
			strconv.FormatInt(e.ID, 10),
			e.CreatedAt.In(loc).Format("2006-01-02 15:04:05"),
			e.Category,
			expense.SubcategoryName(e.SubcategoryKey()),
			e.CommentText(),
			strconv.FormatInt(e.Amount, 10),
		}

		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// exportFilename creates a filename like "expenses_2026-01.csv".
func exportFilename(month ledger.Month) string {
	return fmt.Sprintf("expenses_%s.csv", month)
}
