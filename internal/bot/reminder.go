package bot

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"gitlab.com/yelinaung/budget-bot/internal/logger"
	"gitlab.com/yelinaung/budget-bot/internal/models"
)

const (
	// ReminderCheckInterval is how often the reminder loop checks whether to send reminders.
	ReminderCheckInterval = 30 * time.Minute
	// ReminderTimeout is the maximum time a single reminder check can take.
	ReminderTimeout = 2 * time.Minute
)

// startDailyReminderLoop runs a periodic loop that nudges users who have not
// logged any expenses for the current day.
func (b *Bot) startDailyReminderLoop(ctx context.Context) {
	if !b.cfg.DailyReminderEnabled {
		logger.Log.Info().Msg("Daily reminder is disabled")
		return
	}

	logger.Log.Info().
		Int("hour", b.cfg.ReminderHour).
		Str("timezone", b.loc.String()).
		Msg("Daily reminder loop started")

	reminded := make(map[int64]string)
	ticker := time.NewTicker(ReminderCheckInterval)
	defer ticker.Stop()

	select {
	case <-ctx.Done():
		logger.Log.Info().Msg("Daily reminder loop stopped")
		return
	default:
	}

	// Run one check immediately so reminders aren't skipped when the process
	// starts during the configured reminder hour.
	b.checkAndSendReminders(ctx, reminded, b.now().In(b.loc))

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info().Msg("Daily reminder loop stopped")
			return
		case <-ticker.C:
			b.checkAndSendReminders(ctx, reminded, b.now().In(b.loc))
		}
	}
}

// checkAndSendReminders sends one reminder per user per day during the
// configured hour. reminded maps telegram ids to the date they were reminded.
func (b *Bot) checkAndSendReminders(ctx context.Context, reminded map[int64]string, now time.Time) {
	if now.Hour() != b.cfg.ReminderHour {
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, ReminderTimeout)
	defer cancel()

	todayStr := now.Format("2006-01-02")

	// Prune entries from previous days so the map doesn't grow unbounded.
	for uid, dateStr := range reminded {
		if dateStr != todayStr {
			delete(reminded, uid)
		}
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, b.loc)

	users, err := b.users.ListWithoutExpensesSince(checkCtx, startOfDay)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to fetch users for daily reminder")
		b.metrics.DatastoreError(checkCtx, "list_idle_users")
		return
	}

	for _, user := range users {
		if reminded[user.TelegramID] == todayStr || !b.remindable(user) {
			continue
		}

		_, err = b.messageSender.SendMessage(checkCtx, &bot.SendMessageParams{
			ChatID:      user.TelegramID,
			Text:        reminderText,
			ReplyMarkup: mainKeyboard(),
		})
		if err != nil {
			logger.Log.Warn().Err(err).Str("user_hash", logger.HashUserID(user.TelegramID)).Msg("Failed to send daily reminder")
			continue
		}

		reminded[user.TelegramID] = todayStr
		logger.Log.Debug().Str("user_hash", logger.HashUserID(user.TelegramID)).Msg("Sent daily reminder")
	}
}

// remindable filters stored users through the id allow-list. Usernames are not
// stored, so a username-only allow-list trusts that the user was admitted before.
func (b *Bot) remindable(user models.User) bool {
	if len(b.cfg.AllowedUserIDs) == 0 || len(b.cfg.AllowedUsernames) > 0 {
		return true
	}
	return b.cfg.IsUserAllowed(user.TelegramID, "")
}
