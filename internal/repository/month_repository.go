package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"gitlab.com/yelinaung/budget-bot/internal/database"
	"gitlab.com/yelinaung/budget-bot/internal/models"
)

// MonthRepository handles month budget database operations.
type MonthRepository struct {
	db database.PGXDB
}

// NewMonthRepository creates a new MonthRepository.
func NewMonthRepository(db database.PGXDB) *MonthRepository {
	return &MonthRepository{db: db}
}

// Upsert sets the budget for a user's month, replacing any previous value.
func (r *MonthRepository) Upsert(ctx context.Context, userID int64, month string, budget int64) (*models.MonthBudget, error) {
	mb := models.MonthBudget{UserID: userID, Month: month}
	err := r.db.QueryRow(ctx, `
		INSERT INTO months (user_id, month, budget)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, month) DO UPDATE SET budget = EXCLUDED.budget
		RETURNING budget, created_at
	`, userID, month, budget).Scan(&mb.Budget, &mb.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert month budget: %w", err)
	}
	return &mb, nil
}

// Get retrieves the budget for a user's month.
func (r *MonthRepository) Get(ctx context.Context, userID int64, month string) (*models.MonthBudget, error) {
	mb := models.MonthBudget{UserID: userID, Month: month}
	err := r.db.QueryRow(ctx, `
		SELECT budget, created_at FROM months
		WHERE user_id = $1 AND month = $2
	`, userID, month).Scan(&mb.Budget, &mb.CreatedAt)
	if err != nil {
		return nil, notFound("failed to get month budget", err)
	}
	return &mb, nil
}

// ListByUser returns every stored month budget for a user, newest month first.
func (r *MonthRepository) ListByUser(ctx context.Context, userID int64) ([]models.MonthBudget, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, month, budget, created_at FROM months
		WHERE user_id = $1
		ORDER BY month DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query month budgets: %w", err)
	}
	defer rows.Close()

	var months []models.MonthBudget
	for rows.Next() {
		var mb models.MonthBudget
		if err := rows.Scan(&mb.UserID, &mb.Month, &mb.Budget, &mb.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan month budget: %w", err)
		}
		months = append(months, mb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating month budgets: %w", err)
	}
	return months, nil
}

// Delete removes a user's month budget. Returns whether a row was removed.
func (r *MonthRepository) Delete(ctx context.Context, userID int64, month string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM months WHERE user_id = $1 AND month = $2`, userID, month)
	if err != nil {
		return false, fmt.Errorf("failed to delete month budget: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// notFound wraps err, mapping a missing row to ErrNotFound.
func notFound(msg string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
