package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCheckAndSendReminders(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 15, 20, 30, 0, 0, time.UTC)
	todayStr := now.Format("2006-01-02")

	t.Run("sends reminder when user has no expenses today", func(t *testing.T) {
		t.Parallel()
		tb := newTestBot(t)
		tb.seedExpense(t, alice, 500, "кофе", now.AddDate(0, 0, -1))

		reminded := make(map[int64]string)
		tb.checkAndSendReminders(context.Background(), reminded, now)

		require.Equal(t, 1, tb.tg.SentMessageCount())
		msg := tb.tg.LastSentMessage()
		require.Equal(t, alice, msg.ChatID)
		require.Equal(t, reminderText, msg.Text)
		require.Equal(t, todayStr, reminded[alice])
	})

	t.Run("skips user with expenses today", func(t *testing.T) {
		t.Parallel()
		tb := newTestBot(t)
		tb.seedExpense(t, alice, 500, "кофе", now.Add(-time.Hour))

		tb.checkAndSendReminders(context.Background(), make(map[int64]string), now)
		require.Zero(t, tb.tg.SentMessageCount())
	})

	t.Run("does nothing outside reminder hour", func(t *testing.T) {
		t.Parallel()
		tb := newTestBot(t)
		tb.seedBudget(t, alice, "2024-03", 1000)

		tb.checkAndSendReminders(context.Background(), make(map[int64]string), now.Add(-2*time.Hour))
		require.Zero(t, tb.tg.SentMessageCount())
	})

	t.Run("reminds once per day", func(t *testing.T) {
		t.Parallel()
		tb := newTestBot(t)
		tb.seedBudget(t, alice, "2024-03", 1000)

		reminded := make(map[int64]string)
		tb.checkAndSendReminders(context.Background(), reminded, now)
		tb.checkAndSendReminders(context.Background(), reminded, now.Add(15*time.Minute))
		require.Equal(t, 1, tb.tg.SentMessageCount())

		tb.checkAndSendReminders(context.Background(), reminded, now.AddDate(0, 0, 1))
		require.Equal(t, 2, tb.tg.SentMessageCount())
		require.Len(t, reminded, 1)
	})

	t.Run("skips users dropped from id allow-list", func(t *testing.T) {
		t.Parallel()
		tb := newTestBot(t)
		const bob int64 = 5151
		tb.seedBudget(t, alice, "2024-03", 1000)
		tb.seedBudget(t, bob, "2024-03", 1000)
		tb.cfg.AllowedUserIDs = []int64{bob}

		tb.checkAndSendReminders(context.Background(), make(map[int64]string), now)
		require.Equal(t, 1, tb.tg.SentMessageCount())
		require.Equal(t, bob, tb.tg.LastSentMessage().ChatID)
	})

	t.Run("retries when send fails", func(t *testing.T) {
		t.Parallel()
		tb := newTestBot(t)
		tb.seedBudget(t, alice, "2024-03", 1000)
		tb.tg.SendMessageError = errors.New("telegram unavailable")

		reminded := make(map[int64]string)
		tb.checkAndSendReminders(context.Background(), reminded, now)
		require.Empty(t, reminded)
	})

	t.Run("store failure sends nothing", func(t *testing.T) {
		t.Parallel()
		tb := newTestBot(t)
		tb.seedBudget(t, alice, "2024-03", 1000)
		tb.store.failWith(errors.New("db down"))

		tb.checkAndSendReminders(context.Background(), make(map[int64]string), now)
		require.Zero(t, tb.tg.SentMessageCount())
	})
}

func TestStartDailyReminderLoopDisabled(t *testing.T) {
	t.Parallel()
	tb := newTestBot(t)
	tb.cfg.DailyReminderEnabled = false

	done := make(chan struct{})
	go func() {
		tb.startDailyReminderLoop(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reminder loop should return immediately when disabled")
	}
}

func TestStartDailyReminderLoopStopsOnCancel(t *testing.T) {
	t.Parallel()
	tb := newTestBot(t)
	tb.cfg.DailyReminderEnabled = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		tb.startDailyReminderLoop(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reminder loop should stop on cancelled context")
	}
	require.Zero(t, tb.tg.SentMessageCount())
}
