package repository

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/yelinaung/budget-bot/internal/database"
)

// ResetResult describes what a month reset removed.
type ResetResult struct {
	ExpensesDeleted int64
	BudgetDeleted   bool
}

// ResetMonth deletes a user's expenses in [start, end) and the month's budget row.
// When db can begin a transaction both deletes commit together.
func ResetMonth(ctx context.Context, db database.PGXDB, userID int64, month string, start, end time.Time) (ResetResult, error) {
	beginner, ok := db.(database.TxBeginner)
	if !ok {
		return resetMonth(ctx, db, userID, month, start, end)
	}

	tx, err := beginner.Begin(ctx)
	if err != nil {
		return ResetResult{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := resetMonth(ctx, tx, userID, month, start, end)
	if err != nil {
		return ResetResult{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ResetResult{}, fmt.Errorf("commit tx: %w", err)
	}
	return res, nil
}

func resetMonth(ctx context.Context, db database.PGXDB, userID int64, month string, start, end time.Time) (ResetResult, error) {
	deleted, err := NewExpenseRepository(db).DeleteByUserBetween(ctx, userID, start, end)
	if err != nil {
		return ResetResult{}, fmt.Errorf("delete month expenses: %w", err)
	}
	budgetDeleted, err := NewMonthRepository(db).Delete(ctx, userID, month)
	if err != nil {
		return ResetResult{}, fmt.Errorf("delete month budget: %w", err)
	}
	return ResetResult{ExpensesDeleted: deleted, BudgetDeleted: budgetDeleted}, nil
}

// MonthResetter runs ResetMonth against a fixed database handle.
type MonthResetter struct {
	db database.PGXDB
}

// NewMonthResetter creates a new MonthResetter.
func NewMonthResetter(db database.PGXDB) *MonthResetter {
	return &MonthResetter{db: db}
}

// ResetMonth deletes a user's expenses in [start, end) and the month's budget row.
func (r *MonthResetter) ResetMonth(ctx context.Context, userID int64, month string, start, end time.Time) (ResetResult, error) {
	return ResetMonth(ctx, r.db, userID, month, start, end)
}
