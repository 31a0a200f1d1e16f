// Package repository implements PostgreSQL persistence for users, month budgets and expenses.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist or belongs to another user.
var ErrNotFound = errors.New("not found")
