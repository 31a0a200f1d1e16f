// Package models defines the domain entities for the budget tracker.
package models

import (
	"time"
)

// CurrencySymbol is appended to every amount shown to the user.
const CurrencySymbol = "₸"

// MaxAmount bounds budgets, savings goals and single expense amounts.
const MaxAmount int64 = 1_000_000_000

// User is a chat participant. Created lazily on first interaction and never deleted.
type User struct {
	ID         int64
	TelegramID int64
	CreatedAt  time.Time
}

// MonthBudget is the budget a user set for one calendar month.
// Month is formatted as YYYY-MM; there is at most one row per (user, month).
type MonthBudget struct {
	UserID    int64
	Month     string
	Budget    int64
	CreatedAt time.Time
}

// Expense is a single spending entry. The month it belongs to is derived
// from CreatedAt, never stored.
type Expense struct {
	ID          int64
	UserID      int64
	Amount      int64
	Category    string
	Comment     *string
	Subcategory *string
	CreatedAt   time.Time
}

// CommentText returns the comment or an empty string.
func (e Expense) CommentText() string {
	if e.Comment == nil {
		return ""
	}
	return *e.Comment
}

// SubcategoryKey returns the stored sub-category key or an empty string.
func (e Expense) SubcategoryKey() string {
	if e.Subcategory == nil {
		return ""
	}
	return *e.Subcategory
}
