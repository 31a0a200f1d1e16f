package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/budget-bot/internal/database"
	"gitlab.com/yelinaung/budget-bot/internal/models"
)

func TestResetMonth(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()
	users := NewUserRepository(tx)
	months := NewMonthRepository(tx)
	expenses := NewExpenseRepository(tx)

	user, err := users.EnsureByTelegramID(ctx, 7001)
	require.NoError(t, err)
	other, err := users.EnsureByTelegramID(ctx, 7002)
	require.NoError(t, err)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	_, err = months.Upsert(ctx, user.ID, "2024-03", 100000)
	require.NoError(t, err)
	_, err = months.Upsert(ctx, user.ID, "2024-02", 90000)
	require.NoError(t, err)
	_, err = months.Upsert(ctx, other.ID, "2024-03", 80000)
	require.NoError(t, err)

	add := func(userID int64, at time.Time) {
		require.NoError(t, expenses.Create(ctx, &models.Expense{
			UserID: userID, Amount: 10, Category: "кофе", CreatedAt: at,
		}))
	}
	add(user.ID, start)
	add(user.ID, start.Add(10*24*time.Hour))
	add(user.ID, start.Add(-time.Hour))
	add(user.ID, end)
	add(other.ID, start.Add(time.Hour))

	res, err := ResetMonth(ctx, tx, user.ID, "2024-03", start, end)
	require.NoError(t, err)
	require.Equal(t, int64(2), res.ExpensesDeleted)
	require.True(t, res.BudgetDeleted)

	_, err = months.Get(ctx, user.ID, "2024-03")
	require.ErrorIs(t, err, ErrNotFound)

	prev, err := months.Get(ctx, user.ID, "2024-02")
	require.NoError(t, err)
	require.Equal(t, int64(90000), prev.Budget)

	remaining, err := expenses.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 2, "expenses outside the window survive")

	otherExpenses, err := expenses.ListByUser(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, otherExpenses, 1)

	_, err = months.Get(ctx, other.ID, "2024-03")
	require.NoError(t, err)
}

func TestResetMonth_EmptyMonth(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()

	user, err := NewUserRepository(tx).EnsureByTelegramID(ctx, 7101)
	require.NoError(t, err)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	res, err := ResetMonth(ctx, tx, user.ID, "2024-03", start, start.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Zero(t, res.ExpensesDeleted)
	require.False(t, res.BudgetDeleted)
}
