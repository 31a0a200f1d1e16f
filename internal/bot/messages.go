package bot

import (
	"fmt"
	"strconv"
	"strings"

	"gitlab.com/yelinaung/budget-bot/internal/expense"
	"gitlab.com/yelinaung/budget-bot/internal/ledger"
	"gitlab.com/yelinaung/budget-bot/internal/models"
)

const (
	genericErrorText      = "⚠️ Что-то пошло не так, попробуй позже."
	notAllowedText        = "⛔ У тебя нет доступа к этому боту."
	malformedCallbackText = "❌ Некорректная кнопка."
	expenseGoneText       = "❌ Расход не найден."
	staleChoiceText       = "Этот выбор уже неактуален."
	foreignChoiceText     = "Этот расход добавил другой пользователь."

	welcomeText = `👋 Привет! Я помогу вести бюджет.

<b>С чего начать:</b>
1. «✅ Новый месяц» и введи бюджет.
2. «➕ Добавить расход» и отправь строки вида <code>еда - обед 5000</code> или <code>такси 1500</code>.
3. «📊 Посчитать расходы», чтобы увидеть остаток.`
	hintText      = "👇 Выбери действие в меню."
	cancelledText = "🚫 Отменено."

	promptBudgetFmt = "💰 Введи бюджет на %s целым числом в ₸."
	rejectBudget    = "❌ Нужно целое число от 1 до 1000000000. Попробуй ещё раз."
	budgetSavedFmt  = "✅ Бюджет на %s: <b>%s</b>"

	promptExpenseText = `✍️ Отправь расходы, по одному на строку:
<code>категория - комментарий сумма</code>
<code>категория сумма</code>

Например:
<code>еда - обед 5000</code>
<code>такси 1500</code>`

	promptSubcategoryFmt = "%s\n\nГде была еда?"
	discardedText        = "🚫 Расход не сохранён."

	promptGoalText = "💡 Сколько хочешь отложить до конца месяца? Введи целое число в ₸."
	rejectGoalText = "❌ Нужно целое число от 1 до 1000000000. Попробуй ещё раз."

	resetConfirm1Fmt = "⚠️ Удалить все расходы и бюджет за %s? Напиши «да», чтобы продолжить."
	resetConfirm2Fmt = "❗ Точно? Это нельзя отменить. Напиши «да» ещё раз, чтобы сбросить %s."
	resetDoneFmt     = "🧹 Месяц %s сброшен. Удалено расходов: %d."

	noExpensesMonthText = "В этом месяце ещё нет расходов."
	noExpensesText      = "Пока нет ни одного расхода."
	noMonthsText        = "Ещё нет ни одного месяца. Начни с «✅ Новый месяц»."
	reminderText        = "👋 Сегодня ещё нет ни одного расхода. Не забудь записать траты через «➕ Добавить расход»."
)

// formatAmount renders an amount in tenge.
func formatAmount(n int64) string {
	return strconv.FormatInt(n, 10) + " " + models.CurrencySymbol
}

// escapeHTML escapes user text for Telegram HTML parse mode.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// categoryLabel renders a category with its glyph and optional sub-category.
func categoryLabel(category, subcategoryKey string) string {
	label := expense.Glyph(category) + " " + escapeHTML(category)
	if subcategoryKey != "" {
		label += " (" + escapeHTML(expense.SubcategoryName(subcategoryKey)) + ")"
	}
	return label
}

// formatCandidate renders one parsed expense line.
func formatCandidate(c expense.Candidate, subcategoryKey string) string {
	line := fmt.Sprintf("%s: <b>%s</b>", categoryLabel(c.Category, subcategoryKey), formatAmount(c.Amount))
	if comment := c.CommentText(); comment != "" {
		line += " · " + escapeHTML(comment)
	}
	return line
}

// formatExpense renders a stored expense.
func formatExpense(e *models.Expense) string {
	line := fmt.Sprintf("%s: <b>%s</b>", categoryLabel(e.Category, e.SubcategoryKey()), formatAmount(e.Amount))
	if comment := e.CommentText(); comment != "" {
		line += " · " + escapeHTML(comment)
	}
	return line
}

func failedLinesText(failed []expense.FailedLine) string {
	if len(failed) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("❌ Не удалось разобрать:\n")
	for _, f := range failed {
		fmt.Fprintf(&sb, "• строка %d: <code>%s</code>\n", f.Number, escapeHTML(f.Raw))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func skippedLinesText(skipped []expense.ParsedLine) string {
	if len(skipped) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("⏭️ Не сохранены, отправь их ещё раз после выбора:\n")
	for _, s := range skipped {
		fmt.Fprintf(&sb, "• строка %d: <code>%s</code>\n", s.Number, escapeHTML(s.Raw))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func joinBlocks(blocks ...string) string {
	nonEmpty := blocks[:0:0]
	for _, b := range blocks {
		if b != "" {
			nonEmpty = append(nonEmpty, b)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}

func summaryText(month ledger.Month, s ledger.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 <b>%s</b>\n\n", month)

	if s.Budget > 0 {
		fmt.Fprintf(&sb, "Бюджет: %s\n", formatAmount(s.Budget))
	} else {
		sb.WriteString("Бюджет: не задан\n")
	}
	fmt.Fprintf(&sb, "Потрачено: %s", formatAmount(s.Spent))
	if pct, ok := s.PercentUsed(); ok {
		fmt.Fprintf(&sb, " (%s%%)", pct.StringFixed(1))
	}
	fmt.Fprintf(&sb, "\nОстаток: <b>%s</b>\n", formatAmount(s.Remaining))

	if len(s.Categories) == 0 {
		sb.WriteString("\n" + noExpensesMonthText)
		return sb.String()
	}

	sb.WriteString("\n<b>По категориям:</b>\n")
	for _, c := range s.Categories {
		fmt.Fprintf(&sb, "%s: %s\n", categoryLabel(c.Category, c.Subcategory), formatAmount(c.Total))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func trendsText(totals []ledger.CategoryTotal) string {
	var sb strings.Builder
	sb.WriteString("📈 <b>Тренды по категориям</b>\n\n")
	var all int64
	for i, c := range totals {
		fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, categoryLabel(c.Category, c.Subcategory), formatAmount(c.Total))
		all += c.Total
	}
	fmt.Fprintf(&sb, "\nВсего: <b>%s</b>", formatAmount(all))
	return sb.String()
}

func monthsText(reports []ledger.MonthReport) string {
	var sb strings.Builder
	sb.WriteString("📅 <b>Месяцы</b>\n")
	for _, r := range reports {
		fmt.Fprintf(&sb, "\n<b>%s</b>\nБюджет: %s\nПотрачено: %s\nОстаток: %s\n",
			r.Month, formatAmount(r.Budget), formatAmount(r.Spent), formatAmount(r.Remaining))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func projectionText(p ledger.Projection) string {
	if !p.Reachable {
		return fmt.Sprintf("😕 Остаток %s, до цели %s не хватает <b>%s</b>.",
			formatAmount(p.Remaining), formatAmount(p.Goal), formatAmount(p.Shortfall))
	}
	return fmt.Sprintf("💡 Чтобы отложить %s, трать не больше <b>%s</b> в день.\nДней до конца месяца: %d.",
		formatAmount(p.Goal), formatAmount(p.DailyLimit), p.DaysLeft)
}
