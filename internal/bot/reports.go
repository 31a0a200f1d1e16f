package bot

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/budget-bot/internal/ledger"
)

// deleteListLimit is how many recent expenses the delete list offers.
const deleteListLimit = 5

func (b *Bot) showTrends(ctx context.Context, tg TelegramAPI, t *turnCtx) error {
	user, err := b.currentUser(ctx, t)
	if err != nil {
		return err
	}

	all, err := b.expenses.ListByUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}
	if len(all) == 0 {
		b.send(ctx, tg, t.chatID, noExpensesText, mainKeyboard())
		return nil
	}

	totals := ledger.Trends(all)
	b.send(ctx, tg, t.chatID, trendsText(totals), mainKeyboard())

	chart, err := GenerateTrendsChart(totals)
	if err != nil {
		t.log.Warn().Err(err).Msg("Failed to render trends chart")
		return nil
	}
	b.sendDocument(ctx, tg, t, trendsChartFilename(b.now().In(b.loc)), "📈 Расходы по категориям", chart)
	return nil
}

func (b *Bot) showDeleteList(ctx context.Context, tg TelegramAPI, t *turnCtx) error {
	user, err := b.currentUser(ctx, t)
	if err != nil {
		return err
	}

	month := b.currentMonth()
	w := month.Window(b.loc)
	recent, err := b.expenses.ListRecentBetween(ctx, user.ID, w.Start, w.End, deleteListLimit)
	if err != nil {
		return fmt.Errorf("list recent expenses: %w", err)
	}
	if len(recent) == 0 {
		b.send(ctx, tg, t.chatID, noExpensesMonthText, mainKeyboard())
		return nil
	}

	b.send(ctx, tg, t.chatID, fmt.Sprintf("🗑️ Последние расходы за %s. Нажми кнопку, чтобы удалить:", month), mainKeyboard())
	for i := range recent {
		e := &recent[i]
		b.send(ctx, tg, t.chatID, formatExpense(e), &tgmodels.InlineKeyboardMarkup{
			InlineKeyboard: [][]tgmodels.InlineKeyboardButton{{
				{Text: "🗑️ Удалить", CallbackData: fmt.Sprintf("%s%d", deleteCallbackPrefix, e.ID)},
			}},
		})
	}
	return nil
}

func (b *Bot) exportMonth(ctx context.Context, tg TelegramAPI, t *turnCtx) error {
	user, err := b.currentUser(ctx, t)
	if err != nil {
		return err
	}

	month := b.currentMonth()
	w := month.Window(b.loc)
	expenses, err := b.expenses.ListByUserBetween(ctx, user.ID, w.Start, w.End)
	if err != nil {
		return fmt.Errorf("list month expenses: %w", err)
	}
	if len(expenses) == 0 {
		b.send(ctx, tg, t.chatID, noExpensesMonthText, mainKeyboard())
		return nil
	}

	data, err := GenerateExpensesCSV(expenses, b.loc)
	if err != nil {
		t.log.Error().Err(err).Msg("Failed to generate CSV export")
		b.send(ctx, tg, t.chatID, genericErrorText, mainKeyboard())
		return nil
	}

	var total int64
	for i := range expenses {
		total += expenses[i].Amount
	}
	caption := fmt.Sprintf("📤 Расходы за %s: %d шт., всего %s", month, len(expenses), formatAmount(total))
	b.sendDocument(ctx, tg, t, exportFilename(month), caption, data)
	return nil
}

func (b *Bot) sendDocument(ctx context.Context, tg TelegramAPI, t *turnCtx, filename, caption string, data []byte) {
	_, err := tg.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: t.chatID,
		Document: &tgmodels.InputFileUpload{
			Filename: filename,
			Data:     bytes.NewReader(data),
		},
		Caption: caption,
	})
	if err != nil {
		t.log.Error().Err(err).Str("filename", filename).Msg("Failed to send document")
	}
}
