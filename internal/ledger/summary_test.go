package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/budget-bot/internal/models"
)

func strPtr(s string) *string {
	return &s
}

func expenseAt(id int64, amount int64, category string, at time.Time) models.Expense {
	return models.Expense{ID: id, UserID: 1, Amount: amount, Category: category, CreatedAt: at}
}

func TestMonthlySummary(t *testing.T) {
	t.Parallel()

	w := Month{Year: 2026, Month: time.October}.Window(time.UTC)
	day := func(d int) time.Time { return time.Date(2026, time.October, d, 12, 0, 0, 0, time.UTC) }

	t.Run("sums only expenses inside the window", func(t *testing.T) {
		t.Parallel()
		expenses := []models.Expense{
			expenseAt(1, 1000, "еда", day(1)),
			expenseAt(2, 2000, "такси", day(15)),
			expenseAt(3, 4000, "кофе", time.Date(2026, time.September, 30, 23, 59, 59, 0, time.UTC)),
			expenseAt(4, 8000, "аренда", w.End),
		}

		s := MonthlySummary(10000, expenses, w)
		require.Equal(t, int64(3000), s.Spent)
		require.Equal(t, int64(7000), s.Remaining)
		require.Equal(t, 2, s.Count)
	})

	t.Run("expense exactly at next month start is excluded", func(t *testing.T) {
		t.Parallel()
		expenses := []models.Expense{
			expenseAt(1, 500, "еда", w.Start),
			expenseAt(2, 700, "еда", w.End),
		}

		s := MonthlySummary(0, expenses, w)
		require.Equal(t, int64(500), s.Spent)
	})

	t.Run("missing budget counts as zero", func(t *testing.T) {
		t.Parallel()
		s := MonthlySummary(0, []models.Expense{expenseAt(1, 1500, "еда", day(2))}, w)
		require.Equal(t, int64(-1500), s.Remaining)
		_, ok := s.PercentUsed()
		require.False(t, ok)
	})

	t.Run("categories keep insertion order", func(t *testing.T) {
		t.Parallel()
		expenses := []models.Expense{
			expenseAt(3, 300, "кофе", day(3)),
			expenseAt(1, 100, "такси", day(1)),
			expenseAt(2, 5000, "аренда", day(2)),
			expenseAt(4, 200, "Такси", day(4)),
		}

		s := MonthlySummary(0, expenses, w)
		require.Equal(t, []CategoryTotal{
			{Category: "такси", Total: 300},
			{Category: "аренда", Total: 5000},
			{Category: "кофе", Total: 300},
		}, s.Categories)
	})

	t.Run("sub-categories are grouped separately", func(t *testing.T) {
		t.Parallel()
		wolt := expenseAt(1, 4000, "еда", day(1))
		wolt.Subcategory = strPtr("wolt")
		grocery := expenseAt(2, 6000, "еда", day(2))
		grocery.Subcategory = strPtr("grocery")
		wolt2 := expenseAt(3, 1000, "еда", day(3))
		wolt2.Subcategory = strPtr("wolt")

		s := MonthlySummary(0, []models.Expense{wolt, grocery, wolt2}, w)
		require.Equal(t, []CategoryTotal{
			{Category: "еда", Subcategory: "wolt", Total: 5000},
			{Category: "еда", Subcategory: "grocery", Total: 6000},
		}, s.Categories)
	})

	t.Run("percent used is rounded to one decimal", func(t *testing.T) {
		t.Parallel()
		s := MonthlySummary(30000, []models.Expense{expenseAt(1, 10000, "еда", day(1))}, w)
		pct, ok := s.PercentUsed()
		require.True(t, ok)
		require.Equal(t, "33.3", pct.String())
	})

	t.Run("empty month", func(t *testing.T) {
		t.Parallel()
		s := MonthlySummary(50000, nil, w)
		require.Zero(t, s.Spent)
		require.Equal(t, int64(50000), s.Remaining)
		require.Empty(t, s.Categories)
	})
}

func TestTrends(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	expenses := []models.Expense{
		expenseAt(1, 100, "кофе", at),
		expenseAt(2, 9000, "аренда", at.AddDate(0, -2, 0)),
		expenseAt(3, 300, "такси", at.Add(time.Hour)),
		expenseAt(4, 200, "кофе", at.Add(2*time.Hour)),
	}

	got := Trends(expenses)
	require.Equal(t, []CategoryTotal{
		{Category: "аренда", Total: 9000},
		{Category: "кофе", Total: 300},
		{Category: "такси", Total: 300},
	}, got)

	require.Equal(t, int64(1), expenses[0].ID, "input must not be reordered")
}

func TestSavingsProjection(t *testing.T) {
	t.Parallel()

	t.Run("daily limit is floored", func(t *testing.T) {
		t.Parallel()
		p := SavingsProjection(10000, 4000, 10)
		require.True(t, p.Reachable)
		require.Equal(t, int64(600), p.DailyLimit)
		require.Zero(t, p.Shortfall)
	})

	t.Run("fractional limit rounds down", func(t *testing.T) {
		t.Parallel()
		p := SavingsProjection(10000, 0, 3)
		require.Equal(t, int64(3333), p.DailyLimit)
	})

	t.Run("exactly reachable goal leaves zero per day", func(t *testing.T) {
		t.Parallel()
		p := SavingsProjection(5000, 5000, 7)
		require.True(t, p.Reachable)
		require.Zero(t, p.DailyLimit)
	})

	t.Run("shortfall when remaining is below goal", func(t *testing.T) {
		t.Parallel()
		p := SavingsProjection(3000, 5000, 7)
		require.False(t, p.Reachable)
		require.Equal(t, int64(2000), p.Shortfall)
		require.Zero(t, p.DailyLimit)
	})

	t.Run("negative remaining", func(t *testing.T) {
		t.Parallel()
		p := SavingsProjection(-1000, 5000, 7)
		require.False(t, p.Reachable)
		require.Equal(t, int64(6000), p.Shortfall)
	})
}

func TestAllMonths(t *testing.T) {
	t.Parallel()

	budgets := []models.MonthBudget{
		{UserID: 1, Month: "2026-08", Budget: 100000},
		{UserID: 1, Month: "2026-10", Budget: 200000},
		{UserID: 1, Month: "2026-09", Budget: 150000},
	}
	expenses := []models.Expense{
		expenseAt(1, 10000, "еда", time.Date(2026, time.August, 31, 23, 0, 0, 0, time.UTC)),
		expenseAt(2, 20000, "еда", time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)),
		expenseAt(3, 5000, "кофе", time.Date(2026, time.September, 30, 23, 59, 0, 0, time.UTC)),
		expenseAt(4, 7000, "такси", time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)),
		expenseAt(5, 1000, "такси", time.Date(2026, time.July, 15, 0, 0, 0, 0, time.UTC)),
	}

	reports, err := AllMonths(budgets, expenses, time.UTC)
	require.NoError(t, err)
	require.Equal(t, []MonthReport{
		{Month: "2026-10", Budget: 200000, Spent: 7000, Remaining: 193000},
		{Month: "2026-09", Budget: 150000, Spent: 25000, Remaining: 125000},
		{Month: "2026-08", Budget: 100000, Spent: 10000, Remaining: 90000},
	}, reports)

	t.Run("malformed stored month is an error", func(t *testing.T) {
		t.Parallel()
		_, err := AllMonths([]models.MonthBudget{{Month: "2026-10-31"}}, nil, time.UTC)
		require.Error(t, err)
	})
}
