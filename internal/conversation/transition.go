package conversation

import (
	"strconv"
	"strings"

	"gitlab.com/yelinaung/budget-bot/internal/expense"
	"gitlab.com/yelinaung/budget-bot/internal/models"
)

// YesToken confirms the month reset. Compared case-insensitively.
const YesToken = "да"

// Transition computes the next state and the effects for one event.
func Transition(state State, event Event) (State, []Effect) {
	if state == nil {
		state = Idle{}
	}

	switch ev := event.(type) {
	case CommandEvent:
		return onCommand(state, ev.Command)
	case SubcategoryEvent:
		return onSubcategory(state, ev)
	case TextEvent:
		return onText(state, ev)
	default:
		return state, nil
	}
}

func onCommand(state State, cmd Command) (State, []Effect) {
	switch cmd {
	case CommandCancel:
		return Idle{}, []Effect{Cancelled{}}

	// Entering a flow always replaces whatever was active before.
	case CommandNewMonth:
		return AwaitingBudget{}, []Effect{PromptBudget{}}
	case CommandAddExpense:
		return AwaitingExpense{}, []Effect{PromptExpense{}}
	case CommandSavingsTips:
		return AwaitingSaveGoal{}, []Effect{PromptGoal{}}
	case CommandResetMonth:
		return ConfirmReset{Step: 1}, []Effect{PromptResetConfirm{Step: 1}}

	case CommandStart:
		return state, []Effect{ShowMenu{}}
	case CommandSummary:
		return state, []Effect{ShowSummary{}}
	case CommandTrends:
		return state, []Effect{ShowTrends{}}
	case CommandMonths:
		return state, []Effect{ShowMonths{}}
	case CommandDeleteList:
		return state, []Effect{ShowDeleteList{}}
	case CommandExport:
		return state, []Effect{ExportMonth{}}
	default:
		return state, nil
	}
}

func onSubcategory(state State, ev SubcategoryEvent) (State, []Effect) {
	pending, ok := state.(AwaitingSubcategory)
	if !ok {
		return state, []Effect{StaleChoice{}}
	}
	if ev.From != pending.Owner {
		return state, []Effect{ForeignChoice{}}
	}
	if ev.Cancel {
		return Idle{}, []Effect{DiscardPending{}}
	}
	return Idle{}, []Effect{SaveSubcategorized{Candidate: pending.Pending, Subcategory: ev.Choice}}
}

func onText(state State, ev TextEvent) (State, []Effect) {
	text := ev.Text
	switch st := state.(type) {
	case AwaitingBudget:
		amount, ok := ParseAmount(text)
		if !ok {
			return st, []Effect{RejectBudget{}}
		}
		return Idle{}, []Effect{SaveBudget{Amount: amount}}

	case AwaitingExpense:
		return onExpenseText(st, ev)

	case AwaitingSaveGoal:
		goal, ok := ParseAmount(text)
		if !ok {
			return st, []Effect{RejectGoal{}}
		}
		return Idle{}, []Effect{ProjectSavings{Goal: goal}}

	case AwaitingSubcategory:
		return st, []Effect{RemindSubcategory{Pending: st.Pending}}

	case ConfirmReset:
		if !IsYes(text) {
			return st, nil
		}
		if st.Step == 1 {
			return ConfirmReset{Step: 2}, []Effect{PromptResetConfirm{Step: 2}}
		}
		return Idle{}, []Effect{ResetMonth{}}

	default:
		if IsYes(text) {
			return state, nil
		}
		return state, []Effect{Hint{}}
	}
}

// onExpenseText handles a submission of one or more expense lines. Only the
// first parsed line is carried forward when it needs a sub-category.
func onExpenseText(state AwaitingExpense, ev TextEvent) (State, []Effect) {
	batch := expense.ParseLines(ev.Text)
	if len(batch.Parsed) == 0 {
		return state, []Effect{RejectExpenses{Failed: batch.Failed}}
	}

	first := batch.Parsed[0]
	if expense.NeedsSubcategory(first.Candidate.Category) {
		return AwaitingSubcategory{Pending: first.Candidate, Owner: ev.From}, []Effect{AskSubcategory{
			Line:    first,
			Skipped: batch.Parsed[1:],
			Failed:  batch.Failed,
		}}
	}

	return Idle{}, []Effect{SaveExpenses{Lines: batch.Parsed, Failed: batch.Failed}}
}

// ParseAmount accepts a plain positive integer no larger than models.MaxAmount.
func ParseAmount(text string) (int64, bool) {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > 10 {
		return 0, false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil || n < 1 || n > models.MaxAmount {
		return 0, false
	}
	return n, true
}

// IsYes reports whether text is the confirmation token.
func IsYes(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), YesToken)
}
