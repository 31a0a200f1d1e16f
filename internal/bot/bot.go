// Package bot provides the Telegram bot initialization and handlers.
package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"gitlab.com/yelinaung/budget-bot/internal/config"
	"gitlab.com/yelinaung/budget-bot/internal/conversation"
	"gitlab.com/yelinaung/budget-bot/internal/logger"
	"gitlab.com/yelinaung/budget-bot/internal/models"
	"gitlab.com/yelinaung/budget-bot/internal/repository"
	"gitlab.com/yelinaung/budget-bot/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	// defaultInsertLimit bounds concurrent expense inserts for one submission.
	defaultInsertLimit = 4
	// webhookShutdownTimeout bounds graceful shutdown of the webhook server.
	webhookShutdownTimeout = 10 * time.Second
)

// UserStore resolves chat participants to stored users.
type UserStore interface {
	EnsureByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	ListWithoutExpensesSince(ctx context.Context, since time.Time) ([]models.User, error)
}

// MonthStore persists month budgets.
type MonthStore interface {
	Upsert(ctx context.Context, userID int64, month string, budget int64) (*models.MonthBudget, error)
	Get(ctx context.Context, userID int64, month string) (*models.MonthBudget, error)
	ListByUser(ctx context.Context, userID int64) ([]models.MonthBudget, error)
}

// ExpenseStore persists expenses.
type ExpenseStore interface {
	Create(ctx context.Context, expense *models.Expense) error
	ListByUser(ctx context.Context, userID int64) ([]models.Expense, error)
	ListByUserBetween(ctx context.Context, userID int64, start, end time.Time) ([]models.Expense, error)
	ListRecentBetween(ctx context.Context, userID int64, start, end time.Time, limit int) ([]models.Expense, error)
	DeleteOwned(ctx context.Context, userID, id int64) (*models.Expense, error)
}

// MonthResetter atomically clears one month of a user's data.
type MonthResetter interface {
	ResetMonth(ctx context.Context, userID int64, month string, start, end time.Time) (repository.ResetResult, error)
}

// Bot wraps the Telegram bot with application dependencies.
type Bot struct {
	bot           *bot.Bot
	cfg           *config.Config
	users         UserStore
	months        MonthStore
	expenses      ExpenseStore
	resetter      MonthResetter
	sessions      *conversation.Store
	messageSender TelegramAPI
	metrics       *telemetry.Metrics
	tracer        trace.Tracer
	loc           *time.Location
	now           func() time.Time
	insertLimit   int
}

// New creates a new Bot instance backed by the given pool.
func New(cfg *config.Config, pool *pgxpool.Pool) (*Bot, error) {
	metrics, err := telemetry.NewMetrics(otel.Meter(telemetry.InstrumentationName))
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	b := &Bot{
		cfg:         cfg,
		users:       repository.NewUserRepository(pool),
		months:      repository.NewMonthRepository(pool),
		expenses:    repository.NewExpenseRepository(pool),
		resetter:    repository.NewMonthResetter(pool),
		sessions:    conversation.NewStore(),
		metrics:     metrics,
		tracer:      otel.Tracer(telemetry.InstrumentationName),
		loc:         cfg.Location(),
		now:         time.Now,
		insertLimit: defaultInsertLimit,
	}

	opts := []bot.Option{
		bot.WithMiddlewares(b.tracingMiddleware, b.accessMiddleware),
		bot.WithDefaultHandler(b.defaultHandler),
	}
	if cfg.BotMode == config.ModeWebhook {
		opts = append(opts, bot.WithWebhookSecretToken(cfg.WebhookSecret))
	}

	telegramBot, err := bot.New(cfg.TelegramBotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b.bot = telegramBot
	b.messageSender = telegramBot
	b.registerHandlers()

	return b, nil
}

// Start runs the bot until ctx is cancelled, using long polling or a webhook server.
func (b *Bot) Start(ctx context.Context) error {
	go b.startDailyReminderLoop(ctx)

	if b.cfg.BotMode == config.ModeWebhook {
		return b.startWebhook(ctx)
	}

	if _, err := b.bot.DeleteWebhook(ctx, &bot.DeleteWebhookParams{}); err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to delete webhook before polling")
	}
	logger.Log.Info().Msg("Bot started polling")
	b.bot.Start(ctx)
	return nil
}

func (b *Bot) startWebhook(ctx context.Context) error {
	if _, err := b.bot.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:         b.cfg.WebhookURL,
		SecretToken: b.cfg.WebhookSecret,
	}); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	go b.bot.StartWebhook(ctx)

	srv := &http.Server{
		Addr:              b.cfg.WebhookListenAddr,
		Handler:           otelhttp.NewHandler(b.bot.WebhookHandler(), "telegram.webhook"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Log.Info().Str("addr", srv.Addr).Msg("Webhook server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), webhookShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down webhook server: %w", err)
		}
		return nil
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("webhook server failed: %w", err)
	}
}

// registerHandlers sets up callback handlers. Text goes through the default handler.
func (b *Bot) registerHandlers() {
	b.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, deleteCallbackPrefix, bot.MatchTypePrefix, b.handleDeleteCallback)
	b.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, subcategoryCallbackPrefix, bot.MatchTypePrefix, b.handleSubcategoryCallback)
}

// defaultHandler routes every text message through the conversation and
// rejects callbacks no other handler claimed.
func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.defaultHandlerCore(ctx, tgBot, update)
}

func (b *Bot) defaultHandlerCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	switch {
	case update.Message != nil:
		b.handleMessageCore(ctx, tg, update)
	case update.CallbackQuery != nil:
		b.answerAlert(ctx, tg, update.CallbackQuery.ID, malformedCallbackText)
	}
}
