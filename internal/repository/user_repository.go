package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitlab.com/yelinaung/budget-bot/internal/database"
	"gitlab.com/yelinaung/budget-bot/internal/models"
)

// UserRepository handles user database operations.
type UserRepository struct {
	db database.PGXDB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db database.PGXDB) *UserRepository {
	return &UserRepository{db: db}
}

// EnsureByTelegramID returns the user for a Telegram account, creating it on first contact.
// Known users are served by a read; the insert only runs for new accounts.
func (r *UserRepository) EnsureByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	existing, err := r.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	var user models.User
	err = r.db.QueryRow(ctx, `
		INSERT INTO users (telegram_id)
		VALUES ($1)
		ON CONFLICT (telegram_id) DO UPDATE SET telegram_id = EXCLUDED.telegram_id
		RETURNING id, telegram_id, created_at
	`, telegramID).Scan(&user.ID, &user.TelegramID, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}
	return &user, nil
}

// GetByTelegramID retrieves a user by Telegram account ID.
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(ctx, `
		SELECT id, telegram_id, created_at
		FROM users WHERE telegram_id = $1
	`, telegramID).Scan(&user.ID, &user.TelegramID, &user.CreatedAt)
	if err != nil {
		return nil, notFound("failed to get user", err)
	}
	return &user, nil
}

// ListWithoutExpensesSince returns users who have not logged an expense at or after since.
func (r *UserRepository) ListWithoutExpensesSince(ctx context.Context, since time.Time) ([]models.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.telegram_id, u.created_at
		FROM users u
		WHERE NOT EXISTS (
			SELECT 1 FROM expenses e
			WHERE e.user_id = u.id AND e.created_at >= $1
		)
		ORDER BY u.id
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query idle users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.TelegramID, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}
