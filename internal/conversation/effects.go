package conversation

import (
	"gitlab.com/yelinaung/budget-bot/internal/expense"
)

// Effect is an instruction produced by Transition for the caller to execute.
type Effect interface {
	isEffect()
}

type (
	// ShowMenu greets the user and shows the main keyboard.
	ShowMenu struct{}
	// Hint reminds an idle user to pick a menu action.
	Hint struct{}
	// Cancelled confirms that the active flow was dropped.
	Cancelled struct{}

	// PromptBudget asks for the monthly budget.
	PromptBudget struct{}
	// SaveBudget upserts the current month's budget.
	SaveBudget struct{ Amount int64 }
	// RejectBudget re-prompts after invalid budget input.
	RejectBudget struct{}

	// PromptExpense asks for expense lines.
	PromptExpense struct{}
	// SaveExpenses persists every parsed line and reports the failed ones.
	SaveExpenses struct {
		Lines  []expense.ParsedLine
		Failed []expense.FailedLine
	}
	// RejectExpenses reports that no line could be parsed.
	RejectExpenses struct{ Failed []expense.FailedLine }
	// AskSubcategory shows the sub-category keyboard for the pending line.
	// Skipped lines were parsed but are not saved in this submission.
	AskSubcategory struct {
		Line    expense.ParsedLine
		Skipped []expense.ParsedLine
		Failed  []expense.FailedLine
	}
	// RemindSubcategory repeats the sub-category question after stray text.
	RemindSubcategory struct{ Pending expense.Candidate }
	// SaveSubcategorized persists the pending expense with the chosen sub-category.
	SaveSubcategorized struct {
		Candidate   expense.Candidate
		Subcategory expense.Subcategory
	}
	// DiscardPending drops the pending expense after the user cancelled the choice.
	DiscardPending struct{}
	// StaleChoice answers a sub-category press when nothing is pending.
	StaleChoice struct{}
	// ForeignChoice answers a sub-category press from someone other than
	// the user who entered the pending expense.
	ForeignChoice struct{}

	// PromptGoal asks how much the user wants to save.
	PromptGoal struct{}
	// ProjectSavings reports the daily limit or the shortfall for Goal.
	ProjectSavings struct{ Goal int64 }
	// RejectGoal re-prompts after invalid goal input.
	RejectGoal struct{}

	// PromptResetConfirm asks for confirmation Step (1 or 2).
	PromptResetConfirm struct{ Step int }
	// ResetMonth deletes the current month's expenses and budget.
	ResetMonth struct{}

	// ShowSummary shows spent vs budget for the current month.
	ShowSummary struct{}
	// ShowTrends shows all-time totals per category.
	ShowTrends struct{}
	// ShowMonths lists every month with a stored budget.
	ShowMonths struct{}
	// ShowDeleteList lists recent expenses with delete buttons.
	ShowDeleteList struct{}
	// ExportMonth sends the current month's expenses as CSV.
	ExportMonth struct{}
)

func (ShowMenu) isEffect()           {}
func (Hint) isEffect()               {}
func (Cancelled) isEffect()          {}
func (PromptBudget) isEffect()       {}
func (SaveBudget) isEffect()         {}
func (RejectBudget) isEffect()       {}
func (PromptExpense) isEffect()      {}
func (SaveExpenses) isEffect()       {}
func (RejectExpenses) isEffect()     {}
func (AskSubcategory) isEffect()     {}
func (RemindSubcategory) isEffect()  {}
func (SaveSubcategorized) isEffect() {}
func (DiscardPending) isEffect()     {}
func (StaleChoice) isEffect()        {}
func (ForeignChoice) isEffect()      {}
func (PromptGoal) isEffect()         {}
func (ProjectSavings) isEffect()     {}
func (RejectGoal) isEffect()         {}
func (PromptResetConfirm) isEffect() {}
func (ResetMonth) isEffect()         {}
func (ShowSummary) isEffect()        {}
func (ShowTrends) isEffect()         {}
func (ShowMonths) isEffect()         {}
func (ShowDeleteList) isEffect()     {}
func (ExportMonth) isEffect()        {}
