package ledger

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/budget-bot/internal/models"
)

var hundred = decimal.NewFromInt(100)

// CategoryTotal is the amount spent in one category (and sub-category, when set).
type CategoryTotal struct {
	Category    string
	Subcategory string
	Total       int64
}

// Summary is the spent-vs-budget view of one month.
type Summary struct {
	Budget     int64
	Spent      int64
	Remaining  int64
	Count      int
	Categories []CategoryTotal
}

// PercentUsed returns spent as a percentage of budget rounded to one decimal place.
// The second result is false when no budget is set.
func (s Summary) PercentUsed() (decimal.Decimal, bool) {
	if s.Budget <= 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(s.Spent).Mul(hundred).Div(decimal.NewFromInt(s.Budget)).Round(1), true
}

// MonthlySummary sums the expenses that fall inside w. Budget is 0 when unset.
// Categories keep the order in which they first appear.
func MonthlySummary(budget int64, expenses []models.Expense, w Window) Summary {
	var inWindow []models.Expense
	for i := range expenses {
		if w.Contains(expenses[i].CreatedAt) {
			inWindow = append(inWindow, expenses[i])
		}
	}
	sortChronologically(inWindow)

	totals := groupByCategory(inWindow)
	var spent int64
	for _, t := range totals {
		spent += t.Total
	}

	return Summary{
		Budget:     budget,
		Spent:      spent,
		Remaining:  budget - spent,
		Count:      len(inWindow),
		Categories: totals,
	}
}

// Trends groups all given expenses by category, largest total first.
// Equal totals are ordered by category name.
func Trends(expenses []models.Expense) []CategoryTotal {
	sorted := slices.Clone(expenses)
	sortChronologically(sorted)

	totals := groupByCategory(sorted)
	slices.SortStableFunc(totals, func(a, b CategoryTotal) int {
		return cmp.Or(cmp.Compare(b.Total, a.Total), strings.Compare(a.Category, b.Category))
	})
	return totals
}

func sortChronologically(expenses []models.Expense) {
	slices.SortStableFunc(expenses, func(a, b models.Expense) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// groupByCategory groups case-insensitively; the first spelling seen is kept for display.
func groupByCategory(expenses []models.Expense) []CategoryTotal {
	index := make(map[string]int)
	var totals []CategoryTotal

	for i := range expenses {
		e := &expenses[i]
		key := strings.ToLower(strings.TrimSpace(e.Category)) + "\x00" + e.SubcategoryKey()
		if pos, ok := index[key]; ok {
			totals[pos].Total += e.Amount
			continue
		}
		index[key] = len(totals)
		totals = append(totals, CategoryTotal{
			Category:    strings.TrimSpace(e.Category),
			Subcategory: e.SubcategoryKey(),
			Total:       e.Amount,
		})
	}
	return totals
}

// Projection is the outcome of a savings goal check.
type Projection struct {
	Goal       int64
	Remaining  int64
	DaysLeft   int
	Reachable  bool
	DailyLimit int64
	Shortfall  int64
}

// SavingsProjection computes how much can be spent per day while still saving goal.
// When remaining < goal only the shortfall is reported.
func SavingsProjection(remaining, goal int64, daysLeft int) Projection {
	p := Projection{Goal: goal, Remaining: remaining, DaysLeft: daysLeft}
	if remaining < goal {
		p.Shortfall = goal - remaining
		return p
	}

	p.Reachable = true
	if daysLeft > 0 {
		p.DailyLimit = (remaining - goal) / int64(daysLeft)
	}
	return p
}

// MonthReport is one row of the all-months overview.
type MonthReport struct {
	Month     string
	Budget    int64
	Spent     int64
	Remaining int64
}

// AllMonths builds one report per stored budget, newest month first. Each month's
// spend is computed from the full history using that month's own window.
func AllMonths(budgets []models.MonthBudget, expenses []models.Expense, loc *time.Location) ([]MonthReport, error) {
	reports := make([]MonthReport, 0, len(budgets))
	for _, b := range budgets {
		month, err := ParseMonth(b.Month)
		if err != nil {
			return nil, fmt.Errorf("failed to build month report: %w", err)
		}

		summary := MonthlySummary(b.Budget, expenses, month.Window(loc))
		reports = append(reports, MonthReport{
			Month:     month.String(),
			Budget:    b.Budget,
			Spent:     summary.Spent,
			Remaining: summary.Remaining,
		})
	}

	slices.SortFunc(reports, func(a, b MonthReport) int {
		return strings.Compare(b.Month, a.Month)
	})
	return reports, nil
}
