package conversation

import (
	"gitlab.com/yelinaung/budget-bot/internal/expense"
)

// Command is a menu button or slash command.
type Command int

// Commands understood by the router.
const (
	CommandStart Command = iota + 1
	CommandNewMonth
	CommandAddExpense
	CommandSavingsTips
	CommandResetMonth
	CommandCancel
	CommandSummary
	CommandTrends
	CommandMonths
	CommandDeleteList
	CommandExport
)

var commandNames = map[Command]string{
	CommandStart:       "start",
	CommandNewMonth:    "new_month",
	CommandAddExpense:  "add_expense",
	CommandSavingsTips: "savings_tips",
	CommandResetMonth:  "reset_month",
	CommandCancel:      "cancel",
	CommandSummary:     "summary",
	CommandTrends:      "trends",
	CommandMonths:      "months",
	CommandDeleteList:  "delete_list",
	CommandExport:      "export",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Event is CommandEvent, TextEvent or SubcategoryEvent.
type Event interface {
	isEvent()
}

// CommandEvent is a recognised command.
type CommandEvent struct {
	Command Command
}

// TextEvent is any other text message. From is the sender's telegram id.
type TextEvent struct {
	Text string
	From int64
}

// SubcategoryEvent is a press on one of the sub-category buttons.
type SubcategoryEvent struct {
	Choice expense.Subcategory
	Cancel bool
	From   int64
}

// WithSender returns event with its sender set. Commands carry no sender.
func WithSender(event Event, from int64) Event {
	switch ev := event.(type) {
	case TextEvent:
		ev.From = from
		return ev
	case SubcategoryEvent:
		ev.From = from
		return ev
	default:
		return event
	}
}

func (CommandEvent) isEvent()     {}
func (TextEvent) isEvent()        {}
func (SubcategoryEvent) isEvent() {}
