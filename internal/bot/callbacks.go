package bot

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/budget-bot/internal/conversation"
	"gitlab.com/yelinaung/budget-bot/internal/expense"
	"gitlab.com/yelinaung/budget-bot/internal/logger"
	"gitlab.com/yelinaung/budget-bot/internal/repository"
)

const (
	deleteCallbackPrefix      = "delete_"
	subcategoryCallbackPrefix = "sub_"
	subcategoryCancelKey      = "cancel"
)

var expenseIDPattern = regexp.MustCompile(`^[1-9][0-9]{0,18}$`)

// parseDeletePayload extracts the expense id from "delete_<id>".
func parseDeletePayload(data string) (int64, bool) {
	raw, ok := strings.CutPrefix(data, deleteCallbackPrefix)
	if !ok || !expenseIDPattern.MatchString(raw) {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// parseSubcategoryPayload maps "sub_<key>" and "sub_cancel" to a conversation event.
func parseSubcategoryPayload(data string) (conversation.SubcategoryEvent, bool) {
	key, ok := strings.CutPrefix(data, subcategoryCallbackPrefix)
	if !ok {
		return conversation.SubcategoryEvent{}, false
	}
	if key == subcategoryCancelKey {
		return conversation.SubcategoryEvent{Cancel: true}, true
	}
	sub, ok := expense.ParseSubcategory(key)
	if !ok {
		return conversation.SubcategoryEvent{}, false
	}
	return conversation.SubcategoryEvent{Choice: sub}, true
}

// subcategoryKeyboard offers every food sub-category plus cancel.
func subcategoryKeyboard() *tgmodels.InlineKeyboardMarkup {
	subs := expense.Subcategories()
	row := make([]tgmodels.InlineKeyboardButton, 0, len(subs))
	for _, s := range subs {
		row = append(row, tgmodels.InlineKeyboardButton{
			Text:         s.Label(),
			CallbackData: subcategoryCallbackPrefix + s.Key(),
		})
	}
	return &tgmodels.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgmodels.InlineKeyboardButton{
			row,
			{{Text: labelCancel, CallbackData: subcategoryCallbackPrefix + subcategoryCancelKey}},
		},
	}
}

func callbackTurn(update *tgmodels.Update) *turnCtx {
	cq := update.CallbackQuery
	t := &turnCtx{
		chatID:     extractChatID(update),
		telegramID: cq.From.ID,
		callbackID: cq.ID,
	}
	if msg := cq.Message.Message; msg != nil {
		t.messageID = msg.ID
	}
	return t
}

func (b *Bot) handleDeleteCallback(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleDeleteCallbackCore(ctx, tgBot, update)
}

// handleDeleteCallbackCore deletes one expense owned by the caller.
func (b *Bot) handleDeleteCallbackCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	cq := update.CallbackQuery
	if cq == nil {
		return
	}

	id, ok := parseDeletePayload(cq.Data)
	if !ok {
		logger.Log.Warn().Str("data", cq.Data).Msg("Malformed delete payload")
		b.answerAlert(ctx, tg, cq.ID, malformedCallbackText)
		return
	}

	t := callbackTurn(update)
	session := b.sessions.Acquire(t.chatID)
	defer session.Release()
	t.session = session
	t.log = logger.ForTurn(t.chatID, t.telegramID)

	user, err := b.currentUser(ctx, t)
	if err != nil {
		b.failTurn(ctx, tg, t, "delete_expense", err)
		return
	}

	deleted, err := b.expenses.DeleteOwned(ctx, user.ID, id)
	if errors.Is(err, repository.ErrNotFound) {
		t.log.Warn().Int64("expense_id", id).Msg("Delete rejected: expense missing or not owned")
		b.answerAlert(ctx, tg, t.callbackID, expenseGoneText)
		return
	}
	if err != nil {
		b.failTurn(ctx, tg, t, "delete_expense", err)
		return
	}

	t.log.Info().Int64("expense_id", id).Msg("Expense deleted")
	b.answerCallback(ctx, tg, t.callbackID, "Удалено")
	t.answered = true
	b.respond(ctx, tg, t, "🗑️ Удалено: "+formatExpense(deleted))
}

func (b *Bot) handleSubcategoryCallback(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleSubcategoryCallbackCore(ctx, tgBot, update)
}

// handleSubcategoryCallbackCore feeds a sub-category button press into the conversation.
func (b *Bot) handleSubcategoryCallbackCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	cq := update.CallbackQuery
	if cq == nil {
		return
	}

	event, ok := parseSubcategoryPayload(cq.Data)
	if !ok {
		logger.Log.Warn().Str("data", cq.Data).Msg("Malformed sub-category payload")
		b.answerAlert(ctx, tg, cq.ID, malformedCallbackText)
		return
	}

	b.runTurn(ctx, tg, callbackTurn(update), event)
}
