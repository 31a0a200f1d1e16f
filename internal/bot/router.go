package bot

import (
	"strings"

	"github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/budget-bot/internal/conversation"
)

// Reply keyboard labels.
const (
	labelNewMonth    = "✅ Новый месяц"
	labelAddExpense  = "➕ Добавить расход"
	labelSummary     = "📊 Посчитать расходы"
	labelTrends      = "📈 Тренды по категориям"
	labelMonths      = "📅 Месяцы"
	labelDeleteList  = "🗑️ Удалить расход"
	labelSavingsTips = "💡 Советы по экономии"
	labelExport      = "📤 Экспорт"
	labelResetMonth  = "❌ Сбросить месяц"
	labelCancel      = "🚫 Отмена"
)

var labelCommands = map[string]conversation.Command{
	labelNewMonth:    conversation.CommandNewMonth,
	labelAddExpense:  conversation.CommandAddExpense,
	labelSummary:     conversation.CommandSummary,
	labelTrends:      conversation.CommandTrends,
	labelMonths:      conversation.CommandMonths,
	labelDeleteList:  conversation.CommandDeleteList,
	labelSavingsTips: conversation.CommandSavingsTips,
	labelExport:      conversation.CommandExport,
	labelResetMonth:  conversation.CommandResetMonth,
	labelCancel:      conversation.CommandCancel,
}

var slashCommands = map[string]conversation.Command{
	"/start":    conversation.CommandStart,
	"/help":     conversation.CommandStart,
	"/newmonth": conversation.CommandNewMonth,
	"/add":      conversation.CommandAddExpense,
	"/summary":  conversation.CommandSummary,
	"/trends":   conversation.CommandTrends,
	"/months":   conversation.CommandMonths,
	"/delete":   conversation.CommandDeleteList,
	"/savings":  conversation.CommandSavingsTips,
	"/export":   conversation.CommandExport,
	"/reset":    conversation.CommandResetMonth,
	"/cancel":   conversation.CommandCancel,
}

// routeText maps a message to a conversation event. Menu labels and known
// slash commands become commands; everything else is free text.
func routeText(text string) conversation.Event {
	trimmed := strings.TrimSpace(text)
	if cmd, ok := labelCommands[trimmed]; ok {
		return conversation.CommandEvent{Command: cmd}
	}
	if strings.HasPrefix(trimmed, "/") {
		if cmd, ok := slashCommands[commandName(trimmed)]; ok {
			return conversation.CommandEvent{Command: cmd}
		}
	}
	return conversation.TextEvent{Text: text}
}

// commandName returns the lower-cased /command without arguments or @botname suffix.
func commandName(text string) string {
	name, _, _ := strings.Cut(text, " ")
	name, _, _ = strings.Cut(name, "@")
	return strings.ToLower(name)
}

// mainKeyboard is the persistent reply keyboard.
func mainKeyboard() *models.ReplyKeyboardMarkup {
	row := func(labels ...string) []models.KeyboardButton {
		buttons := make([]models.KeyboardButton, 0, len(labels))
		for _, l := range labels {
			buttons = append(buttons, models.KeyboardButton{Text: l})
		}
		return buttons
	}

	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			row(labelNewMonth, labelAddExpense),
			row(labelSummary, labelTrends),
			row(labelMonths, labelDeleteList),
			row(labelSavingsTips, labelExport),
			row(labelResetMonth, labelCancel),
		},
		ResizeKeyboard: true,
	}
}
