package bot

import (
	"context"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/budget-bot/internal/conversation"
	"gitlab.com/yelinaung/budget-bot/internal/logger"
	"gitlab.com/yelinaung/budget-bot/internal/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type userCtxKey struct{}

// withUser stores the resolved user for the rest of the update.
func withUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

func userFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userCtxKey{}).(*models.User)
	return user
}

// tracingMiddleware opens one span per update and counts it.
func (b *Bot) tracingMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
		ctx, span := b.startUpdateSpan(ctx, update)
		defer span.End()
		next(ctx, tgBot, update)
	}
}

func (b *Bot) startUpdateSpan(ctx context.Context, update *tgmodels.Update) (context.Context, trace.Span) {
	kind := updateKind(update)
	ctx, span := b.tracer.Start(ctx, "telegram.update",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("telegram.update.kind", kind),
			attribute.Int64("telegram.update.id", update.ID),
		),
	)
	b.metrics.UpdateHandled(ctx, kind)
	return ctx, span
}

// accessMiddleware applies the allow-list, logs the input and lazily creates the user.
func (b *Bot) accessMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
		ctx, ok := b.admit(ctx, tgBot, update)
		if !ok {
			return
		}
		next(ctx, tgBot, update)
	}
}

// admit is the testable body of accessMiddleware. It returns a context carrying
// the stored user, or false when the update must not be handled.
func (b *Bot) admit(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) (context.Context, bool) {
	userID := extractUserID(update)
	if userID == 0 {
		return ctx, false
	}

	username := extractUsername(update)
	logUserAction(userID, update)

	if !b.cfg.IsUserAllowed(userID, username) {
		logger.Log.Warn().
			Str("user_hash", logger.HashUserID(userID)).
			Msg("Blocked user not on allow-list")
		if update.Message != nil {
			b.send(ctx, tg, update.Message.Chat.ID, notAllowedText, nil)
		}
		if update.CallbackQuery != nil {
			b.answerAlert(ctx, tg, update.CallbackQuery.ID, notAllowedText)
		}
		return ctx, false
	}

	user, err := b.users.EnsureByTelegramID(ctx, userID)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("op", "ensure_user").
			Str("user_hash", logger.HashUserID(userID)).
			Msg("Failed to register user")
		markSpanError(ctx, err)
		b.metrics.DatastoreError(ctx, "ensure_user")
		if chatID := extractChatID(update); chatID != 0 {
			session := b.sessions.Acquire(chatID)
			session.Set(conversation.Idle{})
			session.Release()
			b.send(ctx, tg, chatID, genericErrorText, mainKeyboard())
		}
		if update.CallbackQuery != nil {
			b.answerCallback(ctx, tg, update.CallbackQuery.ID, "")
		}
		return ctx, false
	}

	return withUser(ctx, user), true
}

func markSpanError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// logUserAction logs the user's input with hashed ids and redacted text.
func logUserAction(userID int64, update *tgmodels.Update) {
	switch {
	case update.Message != nil:
		msg := update.Message
		event := logger.Log.Info().
			Str("user_hash", logger.HashUserID(userID)).
			Str("chat_hash", logger.HashChatID(msg.Chat.ID))

		if msg.Text != "" {
			event = event.Str("text", logger.SanitizeText(msg.Text))
		} else {
			event = event.Str("type", "non_text")
		}

		event.Msg("User input")

	case update.CallbackQuery != nil:
		logger.Log.Info().
			Str("user_hash", logger.HashUserID(userID)).
			Str("data", update.CallbackQuery.Data).
			Msg("Callback query")
	}
}

func updateKind(update *tgmodels.Update) string {
	switch {
	case update.Message != nil:
		return "message"
	case update.CallbackQuery != nil:
		return "callback"
	case update.EditedMessage != nil:
		return "edited_message"
	default:
		return "other"
	}
}

// extractUsername gets the username from the update.
func extractUsername(update *tgmodels.Update) string {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.Username
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From.Username
	}
	return ""
}

// extractUserID gets the user ID from message and callback updates.
// Edited messages are not handled and yield zero.
func extractUserID(update *tgmodels.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From.ID
	}
	return 0
}

// extractChatID gets the chat the update belongs to.
func extractChatID(update *tgmodels.Update) int64 {
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil {
		if msg := update.CallbackQuery.Message.Message; msg != nil {
			return msg.Chat.ID
		}
		return update.CallbackQuery.From.ID
	}
	return 0
}
