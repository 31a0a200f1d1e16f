package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"gitlab.com/yelinaung/budget-bot/internal/database"
	"gitlab.com/yelinaung/budget-bot/internal/models"
)

const expenseColumns = `id, user_id, amount, category, comment, subcategory, created_at`

// ExpenseRepository handles expense database operations.
type ExpenseRepository struct {
	db database.PGXDB
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db database.PGXDB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create adds a new expense. A zero CreatedAt lets the database stamp the row.
func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	var createdAt *time.Time
	if !expense.CreatedAt.IsZero() {
		createdAt = &expense.CreatedAt
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO expenses (user_id, amount, category, comment, subcategory, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
		RETURNING id, created_at
	`, expense.UserID, expense.Amount, expense.Category, expense.Comment, expense.Subcategory, createdAt,
	).Scan(&expense.ID, &expense.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// ListByUser retrieves every expense of a user in chronological order.
func (r *ExpenseRepository) ListByUser(ctx context.Context, userID int64) ([]models.Expense, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+expenseColumns+` FROM expenses
		WHERE user_id = $1
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// ListByUserBetween retrieves a user's expenses in [start, end), chronologically.
func (r *ExpenseRepository) ListByUserBetween(ctx context.Context, userID int64, start, end time.Time) ([]models.Expense, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+expenseColumns+` FROM expenses
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at, id
	`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses by date range: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// ListRecentBetween retrieves up to limit of a user's newest expenses in [start, end).
func (r *ExpenseRepository) ListRecentBetween(
	ctx context.Context,
	userID int64,
	start, end time.Time,
	limit int,
) ([]models.Expense, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+expenseColumns+` FROM expenses
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`, userID, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent expenses: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// DeleteOwned removes an expense only if it belongs to userID.
// Returns ErrNotFound when no such expense exists for that user.
func (r *ExpenseRepository) DeleteOwned(ctx context.Context, userID, id int64) (*models.Expense, error) {
	rows, err := r.db.Query(ctx, `
		DELETE FROM expenses WHERE id = $1 AND user_id = $2
		RETURNING `+expenseColumns, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete expense: %w", err)
	}
	defer rows.Close()

	deleted, err := scanExpenses(rows)
	if err != nil {
		return nil, err
	}
	if len(deleted) == 0 {
		return nil, fmt.Errorf("failed to delete expense %d: %w", id, ErrNotFound)
	}
	return &deleted[0], nil
}

// DeleteByUserBetween removes a user's expenses in [start, end) and returns how many were removed.
func (r *ExpenseRepository) DeleteByUserBetween(ctx context.Context, userID int64, start, end time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM expenses
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
	`, userID, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expenses by date range: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanExpenses(rows pgx.Rows) ([]models.Expense, error) {
	var expenses []models.Expense
	for rows.Next() {
		var exp models.Expense
		if err := rows.Scan(
			&exp.ID, &exp.UserID, &exp.Amount, &exp.Category,
			&exp.Comment, &exp.Subcategory, &exp.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}
