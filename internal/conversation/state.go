// Package conversation implements the per-chat dialogue state machine.
//
// Every chat is in exactly one State. An incoming message or button press is
// turned into an Event, and Transition returns the next State together with the
// Effects the caller must carry out (replies, datastore writes). Transition is
// pure: it never touches the network or the database.
package conversation

import (
	"gitlab.com/yelinaung/budget-bot/internal/expense"
)

// State is one of Idle, AwaitingBudget, AwaitingExpense, AwaitingSaveGoal,
// AwaitingSubcategory or ConfirmReset.
type State interface {
	// Name is used for logging and tracing.
	Name() string
	isState()
}

// Idle means no flow is active.
type Idle struct{}

// AwaitingBudget waits for the monthly budget amount.
type AwaitingBudget struct{}

// AwaitingExpense waits for one or more expense lines.
type AwaitingExpense struct{}

// AwaitingSaveGoal waits for the amount the user wants to save this month.
type AwaitingSaveGoal struct{}

// AwaitingSubcategory holds a parsed food expense until the user picks a sub-category.
// Only Owner, the telegram id that entered it, may resolve it.
type AwaitingSubcategory struct {
	Pending expense.Candidate
	Owner   int64
}

// ConfirmReset is the double confirmation before the current month is wiped.
// Step is 1 after the reset command and 2 after the first "да".
type ConfirmReset struct {
	Step int
}

func (Idle) Name() string                { return "idle" }
func (AwaitingBudget) Name() string      { return "awaiting_budget" }
func (AwaitingExpense) Name() string     { return "awaiting_expense" }
func (AwaitingSaveGoal) Name() string    { return "awaiting_save_goal" }
func (AwaitingSubcategory) Name() string { return "awaiting_subcategory" }
func (s ConfirmReset) Name() string {
	if s.Step == 2 {
		return "confirm_reset_2"
	}
	return "confirm_reset_1"
}

func (Idle) isState()                {}
func (AwaitingBudget) isState()      {}
func (AwaitingExpense) isState()     {}
func (AwaitingSaveGoal) isState()    {}
func (AwaitingSubcategory) isState() {}
func (ConfirmReset) isState()        {}
