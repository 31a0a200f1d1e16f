package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"gitlab.com/yelinaung/budget-bot/internal/conversation"
	"gitlab.com/yelinaung/budget-bot/internal/expense"
	"gitlab.com/yelinaung/budget-bot/internal/ledger"
	"gitlab.com/yelinaung/budget-bot/internal/logger"
	"gitlab.com/yelinaung/budget-bot/internal/models"
	"gitlab.com/yelinaung/budget-bot/internal/repository"
	"golang.org/x/sync/errgroup"
)

// turnCtx carries what effects need to know about the update being handled.
type turnCtx struct {
	chatID     int64
	telegramID int64
	user       *models.User

	// callbackID and messageID are set when the turn started from an inline button.
	callbackID string
	messageID  int
	answered   bool

	session *conversation.Turn
	log     zerolog.Logger
}

// handleMessageCore runs one text message through the conversation.
func (b *Bot) handleMessageCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	b.runTurn(ctx, tg, &turnCtx{chatID: msg.Chat.ID, telegramID: msg.From.ID}, routeText(msg.Text))
}

// runTurn applies event to the chat's session and executes the resulting effects.
// Turns for the same chat are serialized by the session lock.
func (b *Bot) runTurn(ctx context.Context, tg TelegramAPI, t *turnCtx, event conversation.Event) {
	session := b.sessions.Acquire(t.chatID)
	defer session.Release()
	t.session = session
	t.log = logger.ForTurn(t.chatID, t.telegramID)

	prev := session.State()
	next, effects := conversation.Transition(prev, conversation.WithSender(event, t.telegramID))
	session.Set(next)

	t.log.Debug().
		Str("from", prev.Name()).
		Str("to", next.Name()).
		Int("effects", len(effects)).
		Msg("Conversation transition")

	for _, eff := range effects {
		if err := b.execute(ctx, tg, t, eff); err != nil {
			b.failTurn(ctx, tg, t, effectOp(eff), err)
			return
		}
	}

	if t.callbackID != "" && !t.answered {
		b.answerCallback(ctx, tg, t.callbackID, "")
	}
}

// failTurn applies the datastore error policy: the session returns to idle,
// the user gets a generic apology and the failure is logged.
func (b *Bot) failTurn(ctx context.Context, tg TelegramAPI, t *turnCtx, op string, err error) {
	t.session.Set(conversation.Idle{})
	t.log.Error().Err(err).Str("op", op).Msg("Datastore operation failed")
	markSpanError(ctx, err)
	b.metrics.DatastoreError(ctx, op)

	if t.callbackID != "" && !t.answered {
		b.answerCallback(ctx, tg, t.callbackID, "")
	}
	b.send(ctx, tg, t.chatID, genericErrorText, mainKeyboard())
}

func effectOp(eff conversation.Effect) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", eff), "conversation.")
}

// currentUser returns the stored user for the turn, creating it if needed.
func (b *Bot) currentUser(ctx context.Context, t *turnCtx) (*models.User, error) {
	if t.user != nil {
		return t.user, nil
	}
	if user := userFromContext(ctx); user != nil && user.TelegramID == t.telegramID {
		t.user = user
		return user, nil
	}
	user, err := b.users.EnsureByTelegramID(ctx, t.telegramID)
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	t.user = user
	return user, nil
}

func (b *Bot) currentMonth() ledger.Month {
	return ledger.MonthOf(b.now(), b.loc)
}

// execute performs one effect. Only datastore failures are returned; send
// failures are logged and do not abort the turn.
func (b *Bot) execute(ctx context.Context, tg TelegramAPI, t *turnCtx, eff conversation.Effect) error {
	switch e := eff.(type) {
	case conversation.ShowMenu:
		b.send(ctx, tg, t.chatID, welcomeText, mainKeyboard())
	case conversation.Hint:
		b.send(ctx, tg, t.chatID, hintText, mainKeyboard())
	case conversation.Cancelled:
		b.send(ctx, tg, t.chatID, cancelledText, mainKeyboard())

	case conversation.PromptBudget:
		b.send(ctx, tg, t.chatID, fmt.Sprintf(promptBudgetFmt, b.currentMonth()), nil)
	case conversation.SaveBudget:
		return b.saveBudget(ctx, tg, t, e.Amount)
	case conversation.RejectBudget:
		b.send(ctx, tg, t.chatID, rejectBudget, nil)

	case conversation.PromptExpense:
		b.send(ctx, tg, t.chatID, promptExpenseText, nil)
	case conversation.SaveExpenses:
		return b.saveExpenses(ctx, tg, t, e)
	case conversation.RejectExpenses:
		b.metrics.LinesFailed(ctx, len(e.Failed))
		failed := failedLinesText(e.Failed)
		if failed == "" {
			failed = "❌ Не вижу ни одной строки с расходом."
		}
		b.send(ctx, tg, t.chatID, joinBlocks(failed, promptExpenseText), nil)
	case conversation.AskSubcategory:
		b.metrics.LinesFailed(ctx, len(e.Failed))
		text := joinBlocks(
			fmt.Sprintf(promptSubcategoryFmt, formatCandidate(e.Line.Candidate, "")),
			skippedLinesText(e.Skipped),
			failedLinesText(e.Failed),
		)
		b.send(ctx, tg, t.chatID, text, subcategoryKeyboard())
	case conversation.RemindSubcategory:
		b.send(ctx, tg, t.chatID, fmt.Sprintf(promptSubcategoryFmt, formatCandidate(e.Pending, "")), subcategoryKeyboard())
	case conversation.SaveSubcategorized:
		return b.saveSubcategorized(ctx, tg, t, e)
	case conversation.DiscardPending:
		b.respond(ctx, tg, t, discardedText)
	case conversation.StaleChoice:
		if t.callbackID != "" {
			b.answerAlert(ctx, tg, t.callbackID, staleChoiceText)
			t.answered = true
		}
	case conversation.ForeignChoice:
		t.log.Warn().Msg("Sub-category press from another user rejected")
		if t.callbackID != "" {
			b.answerAlert(ctx, tg, t.callbackID, foreignChoiceText)
			t.answered = true
		}

	case conversation.PromptGoal:
		b.send(ctx, tg, t.chatID, promptGoalText, nil)
	case conversation.ProjectSavings:
		return b.projectSavings(ctx, tg, t, e.Goal)
	case conversation.RejectGoal:
		b.send(ctx, tg, t.chatID, rejectGoalText, nil)

	case conversation.PromptResetConfirm:
		format := resetConfirm1Fmt
		if e.Step > 1 {
			format = resetConfirm2Fmt
		}
		b.send(ctx, tg, t.chatID, fmt.Sprintf(format, b.currentMonth()), nil)
	case conversation.ResetMonth:
		return b.resetMonth(ctx, tg, t)

	case conversation.ShowSummary:
		return b.showSummary(ctx, tg, t)
	case conversation.ShowTrends:
		return b.showTrends(ctx, tg, t)
	case conversation.ShowMonths:
		return b.showMonths(ctx, tg, t)
	case conversation.ShowDeleteList:
		return b.showDeleteList(ctx, tg, t)
	case conversation.ExportMonth:
		return b.exportMonth(ctx, tg, t)

	default:
		t.log.Warn().Str("effect", effectOp(eff)).Msg("Unhandled effect")
	}
	return nil
}

func (b *Bot) saveBudget(ctx context.Context, tg TelegramAPI, t *turnCtx, amount int64) error {
	user, err := b.currentUser(ctx, t)
	if err != nil {
		return err
	}

	month := b.currentMonth()
	mb, err := b.months.Upsert(ctx, user.ID, month.String(), amount)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}

	t.log.Info().Str("month", month.String()).Msg("Budget saved")
	b.send(ctx, tg, t.chatID, fmt.Sprintf(budgetSavedFmt, month, formatAmount(mb.Budget)), mainKeyboard())
	return nil
}

func newExpense(userID int64, c expense.Candidate, sub *string, createdAt time.Time) *models.Expense {
	return &models.Expense{
		UserID:      userID,
		Amount:      c.Amount,
		Category:    c.Category,
		Comment:     c.Comment,
		Subcategory: sub,
		CreatedAt:   createdAt,
	}
}

// saveExpenses writes every parsed line concurrently. Each line is an
// independent write: a failed line is reported and never retried.
func (b *Bot) saveExpenses(ctx context.Context, tg TelegramAPI, t *turnCtx, e conversation.SaveExpenses) error {
	user, err := b.currentUser(ctx, t)
	if err != nil {
		return err
	}

	createdAt := b.now()
	results := make([]error, len(e.Lines))
	var g errgroup.Group
	g.SetLimit(max(b.insertLimit, 1))
	for i, line := range e.Lines {
		g.Go(func() error {
			results[i] = b.expenses.Create(ctx, newExpense(user.ID, line.Candidate, nil, createdAt))
			return nil
		})
	}
	_ = g.Wait()

	var saved, unsaved []expense.ParsedLine
	var firstErr error
	for i, line := range e.Lines {
		if results[i] != nil {
			t.log.Error().Err(results[i]).Int("line", line.Number).Str("op", "create_expense").Msg("Failed to save expense line")
			if firstErr == nil {
				firstErr = results[i]
			}
			unsaved = append(unsaved, line)
			continue
		}
		saved = append(saved, line)
	}

	b.metrics.ExpensesSaved(ctx, len(saved))
	b.metrics.LinesFailed(ctx, len(unsaved)+len(e.Failed))

	if len(saved) == 0 {
		return fmt.Errorf("create expenses: %w", firstErr)
	}

	var sb strings.Builder
	sb.WriteString("✅ Сохранено:\n")
	for _, line := range saved {
		sb.WriteString(formatCandidate(line.Candidate, "") + "\n")
	}

	var unsavedText string
	if len(unsaved) > 0 {
		var ub strings.Builder
		ub.WriteString("⚠️ Не сохранились из-за ошибки, отправь их ещё раз:\n")
		for _, line := range unsaved {
			fmt.Fprintf(&ub, "• строка %d: <code>%s</code>\n", line.Number, escapeHTML(line.Raw))
		}
		unsavedText = strings.TrimRight(ub.String(), "\n")
	}

	text := joinBlocks(strings.TrimRight(sb.String(), "\n"), unsavedText, failedLinesText(e.Failed))
	b.send(ctx, tg, t.chatID, text, mainKeyboard())
	return nil
}

func (b *Bot) saveSubcategorized(ctx context.Context, tg TelegramAPI, t *turnCtx, e conversation.SaveSubcategorized) error {
	user, err := b.currentUser(ctx, t)
	if err != nil {
		return err
	}

	key := e.Subcategory.Key()
	if err := b.expenses.Create(ctx, newExpense(user.ID, e.Candidate, &key, b.now())); err != nil {
		return fmt.Errorf("create expense: %w", err)
	}

	b.metrics.ExpensesSaved(ctx, 1)
	b.respond(ctx, tg, t, "✅ Сохранено: "+formatCandidate(e.Candidate, key))
	return nil
}

// monthSummary loads the current month's budget and expenses.
func (b *Bot) monthSummary(ctx context.Context, userID int64) (ledger.Month, ledger.Summary, error) {
	month := b.currentMonth()
	w := month.Window(b.loc)

	var budget int64
	mb, err := b.months.Get(ctx, userID, month.String())
	switch {
	case err == nil:
		budget = mb.Budget
	case errors.Is(err, repository.ErrNotFound):
	default:
		return month, ledger.Summary{}, fmt.Errorf("get budget: %w", err)
	}

	expenses, err := b.expenses.ListByUserBetween(ctx, userID, w.Start, w.End)
	if err != nil {
		return month, ledger.Summary{}, fmt.Errorf("list month expenses: %w", err)
	}

	return month, ledger.MonthlySummary(budget, expenses, w), nil
}

func (b *Bot) projectSavings(ctx context.Context, tg TelegramAPI, t *turnCtx, goal int64) error {
	user, err := b.currentUser(ctx, t)
	if err != nil {
		return err
	}

	_, summary, err := b.monthSummary(ctx, user.ID)
	if err != nil {
		return err
	}

	daysLeft := ledger.DaysLeft(b.now().In(b.loc))
	p := ledger.SavingsProjection(summary.Remaining, goal, daysLeft)
	b.send(ctx, tg, t.chatID, projectionText(p), mainKeyboard())
	return nil
}

func (b *Bot) resetMonth(ctx context.Context, tg TelegramAPI, t *turnCtx) error {
	user, err := b.currentUser(ctx, t)
	if err != nil {
		return err
	}

	month := b.currentMonth()
	w := month.Window(b.loc)
	res, err := b.resetter.ResetMonth(ctx, user.ID, month.String(), w.Start, w.End)
	if err != nil {
		return fmt.Errorf("reset month: %w", err)
	}

	b.metrics.MonthReset(ctx)
	t.log.Info().
		Str("month", month.String()).
		Int64("expenses_deleted", res.ExpensesDeleted).
		Bool("budget_deleted", res.BudgetDeleted).
		Msg("Month reset")
	b.send(ctx, tg, t.chatID, fmt.Sprintf(resetDoneFmt, month, res.ExpensesDeleted), mainKeyboard())
	return nil
}

func (b *Bot) showSummary(ctx context.Context, tg TelegramAPI, t *turnCtx) error {
	user, err := b.currentUser(ctx, t)
	if err != nil {
		return err
	}

	month, summary, err := b.monthSummary(ctx, user.ID)
	if err != nil {
		return err
	}

	b.send(ctx, tg, t.chatID, summaryText(month, summary), mainKeyboard())
	return nil
}

func (b *Bot) showMonths(ctx context.Context, tg TelegramAPI, t *turnCtx) error {
	user, err := b.currentUser(ctx, t)
	if err != nil {
		return err
	}

	budgets, err := b.months.ListByUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("list months: %w", err)
	}
	if len(budgets) == 0 {
		b.send(ctx, tg, t.chatID, noMonthsText, mainKeyboard())
		return nil
	}

	expenses, err := b.expenses.ListByUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}

	reports, err := ledger.AllMonths(budgets, expenses, b.loc)
	if err != nil {
		return err
	}

	b.send(ctx, tg, t.chatID, monthsText(reports), mainKeyboard())
	return nil
}

// send delivers an HTML message; failures are logged only.
func (b *Bot) send(ctx context.Context, tg TelegramAPI, chatID int64, text string, markup tgmodels.ReplyMarkup) {
	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   tgmodels.ParseModeHTML,
		ReplyMarkup: markup,
	})
	if err != nil {
		logger.Log.Error().Err(err).Str("chat_hash", logger.HashChatID(chatID)).Msg("Failed to send message")
	}
}

// respond edits the button message for callback turns and sends a new message otherwise.
func (b *Bot) respond(ctx context.Context, tg TelegramAPI, t *turnCtx, text string) {
	if t.messageID == 0 {
		b.send(ctx, tg, t.chatID, text, mainKeyboard())
		return
	}

	_, err := tg.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    t.chatID,
		MessageID: t.messageID,
		Text:      text,
		ParseMode: tgmodels.ParseModeHTML,
	})
	if err != nil {
		t.log.Error().Err(err).Msg("Failed to edit message")
	}
}

func (b *Bot) answerCallback(ctx context.Context, tg TelegramAPI, callbackID, text string) {
	_, err := tg.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to answer callback query")
	}
}

func (b *Bot) answerAlert(ctx context.Context, tg TelegramAPI, callbackID, text string) {
	_, err := tg.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       true,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to answer callback query")
	}
}
