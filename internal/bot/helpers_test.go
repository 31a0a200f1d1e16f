package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	tgmodels "github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/budget-bot/internal/bot/mocks"
	"gitlab.com/yelinaung/budget-bot/internal/config"
	"gitlab.com/yelinaung/budget-bot/internal/conversation"
	"gitlab.com/yelinaung/budget-bot/internal/logger"
	"gitlab.com/yelinaung/budget-bot/internal/models"
	"gitlab.com/yelinaung/budget-bot/internal/repository"
	"gitlab.com/yelinaung/budget-bot/internal/telemetry"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// testNow is the fixed clock for bot tests: 15 March 2024, noon in UTC.
var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type monthKey struct {
	userID int64
	month  string
}

// fakeStore is an in-memory datastore for bot tests. It serves expenses through expenseView.
type fakeStore struct {
	mu sync.Mutex

	users    map[int64]*models.User
	months   map[monthKey]*models.MonthBudget
	expenses []models.Expense

	nextUserID    int64
	nextExpenseID int64

	// err fails every operation when set.
	err error
	// createErr fails Create for the expenses it returns an error for.
	createErr func(e *models.Expense) error
}

var (
	_ UserStore     = (*fakeStore)(nil)
	_ MonthStore    = (*fakeStore)(nil)
	_ ExpenseStore  = expenseView{}
	_ MonthResetter = (*fakeStore)(nil)
)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  make(map[int64]*models.User),
		months: make(map[monthKey]*models.MonthBudget),
	}
}

func (s *fakeStore) failWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *fakeStore) EnsureByTelegramID(_ context.Context, telegramID int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[telegramID]; ok {
		cp := *u
		return &cp, nil
	}
	s.nextUserID++
	u := &models.User{ID: s.nextUserID, TelegramID: telegramID, CreatedAt: testNow}
	s.users[telegramID] = u
	cp := *u
	return &cp, nil
}

func (s *fakeStore) ListWithoutExpensesSince(_ context.Context, since time.Time) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	active := make(map[int64]bool)
	for _, e := range s.expenses {
		if !e.CreatedAt.Before(since) {
			active[e.UserID] = true
		}
	}
	var out []models.User
	for _, u := range s.users {
		if !active[u.ID] {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) Upsert(_ context.Context, userID int64, month string, budget int64) (*models.MonthBudget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	mb := &models.MonthBudget{UserID: userID, Month: month, Budget: budget, CreatedAt: testNow}
	s.months[monthKey{userID, month}] = mb
	cp := *mb
	return &cp, nil
}

func (s *fakeStore) Get(_ context.Context, userID int64, month string) (*models.MonthBudget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	mb, ok := s.months[monthKey{userID, month}]
	if !ok {
		return nil, fmt.Errorf("month %s: %w", month, repository.ErrNotFound)
	}
	cp := *mb
	return &cp, nil
}

func (s *fakeStore) ListByUser(_ context.Context, userID int64) ([]models.MonthBudget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []models.MonthBudget
	for k, mb := range s.months {
		if k.userID == userID {
			out = append(out, *mb)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out, nil
}

func (s *fakeStore) Create(_ context.Context, e *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.createErr != nil {
		if err := s.createErr(e); err != nil {
			return err
		}
	}
	s.nextExpenseID++
	e.ID = s.nextExpenseID
	if e.CreatedAt.IsZero() {
		e.CreatedAt = testNow
	}
	s.expenses = append(s.expenses, *e)
	return nil
}

func (s *fakeStore) listExpenses(userID int64, keep func(models.Expense) bool) []models.Expense {
	var out []models.Expense
	for _, e := range s.expenses {
		if e.UserID == userID && keep(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func inWindow(start, end time.Time) func(models.Expense) bool {
	return func(e models.Expense) bool {
		return !e.CreatedAt.Before(start) && e.CreatedAt.Before(end)
	}
}

func (s *fakeStore) DeleteOwned(_ context.Context, userID, id int64) (*models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for i, e := range s.expenses {
		if e.ID == id && e.UserID == userID {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return &e, nil
		}
	}
	return nil, fmt.Errorf("expense %d: %w", id, repository.ErrNotFound)
}

func (s *fakeStore) ResetMonth(_ context.Context, userID int64, month string, start, end time.Time) (repository.ResetResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return repository.ResetResult{}, s.err
	}
	var res repository.ResetResult
	kept := s.expenses[:0]
	for _, e := range s.expenses {
		if e.UserID == userID && inWindow(start, end)(e) {
			res.ExpensesDeleted++
			continue
		}
		kept = append(kept, e)
	}
	s.expenses = kept
	if _, ok := s.months[monthKey{userID, month}]; ok {
		delete(s.months, monthKey{userID, month})
		res.BudgetDeleted = true
	}
	return res, nil
}

func (s *fakeStore) userByTelegramID(telegramID int64) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[telegramID]
}

func (s *fakeStore) allExpenses() []models.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Expense(nil), s.expenses...)
}

// expenseView adapts fakeStore to ExpenseStore, whose ListByUser differs from MonthStore's.
type expenseView struct{ *fakeStore }

func (v expenseView) ListByUser(_ context.Context, userID int64) ([]models.Expense, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return nil, v.err
	}
	return v.listExpenses(userID, func(models.Expense) bool { return true }), nil
}

func (v expenseView) ListByUserBetween(_ context.Context, userID int64, start, end time.Time) ([]models.Expense, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return nil, v.err
	}
	return v.listExpenses(userID, inWindow(start, end)), nil
}

func (v expenseView) ListRecentBetween(_ context.Context, userID int64, start, end time.Time, limit int) ([]models.Expense, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return nil, v.err
	}
	all := v.listExpenses(userID, inWindow(start, end))
	out := make([]models.Expense, 0, min(limit, len(all)))
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

var saltOnce sync.Once

type testBot struct {
	*Bot
	store *fakeStore
	tg    *mocks.MockBot
}

// newTestBot builds a Bot over the in-memory store with a fixed clock.
func newTestBot(t *testing.T) *testBot {
	t.Helper()
	saltOnce.Do(func() {
		logger.InitHashSaltForTesting("test-salt-for-bot-package-tests-0123456789")
	})

	metrics, err := telemetry.NewMetrics(metricnoop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	store := newFakeStore()
	tg := mocks.NewMockBot()
	b := &Bot{
		cfg: &config.Config{
			TelegramBotToken: "test-token",
			DatabaseURL:      "test-url",
			ReminderHour:     20,
		},
		users:         store,
		months:        store,
		expenses:      expenseView{store},
		resetter:      store,
		sessions:      conversation.NewStore(),
		messageSender: tg,
		metrics:       metrics,
		tracer:        tracenoop.NewTracerProvider().Tracer("test"),
		loc:           time.UTC,
		now:           func() time.Time { return testNow },
		insertLimit:   defaultInsertLimit,
	}

	return &testBot{Bot: b, store: store, tg: tg}
}

// say sends a text message from the given user in their private chat.
func (tb *testBot) say(t *testing.T, telegramID int64, text string) {
	t.Helper()
	tb.sayIn(t, telegramID, telegramID, text)
}

// sayIn sends a text message from telegramID in chatID.
func (tb *testBot) sayIn(t *testing.T, chatID, telegramID int64, text string) {
	t.Helper()
	tb.deliver(t, mocks.MessageUpdate(chatID, telegramID, text))
}

// deliver passes a message update through admission and the default handler.
func (tb *testBot) deliver(t *testing.T, update *tgmodels.Update) {
	t.Helper()
	ctx, ok := tb.admit(context.Background(), tb.tg, update)
	require.True(t, ok, "update should be admitted")
	tb.defaultHandlerCore(ctx, tb.tg, update)
}

func messageFrom(telegramID int64, text string) *tgmodels.Update {
	return mocks.MessageUpdate(telegramID, telegramID, text)
}

func callbackFrom(telegramID int64, data string) *tgmodels.Update {
	return mocks.CallbackQueryUpdate(telegramID, telegramID, 1, data)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func (tb *testBot) state(chatID int64) conversation.State {
	return tb.sessions.Peek(chatID)
}

// press taps an inline button, dispatching the way registerHandlers does.
func (tb *testBot) press(t *testing.T, telegramID int64, messageID int, data string) {
	t.Helper()
	tb.pressIn(t, telegramID, telegramID, messageID, data)
}

// pressIn taps an inline button as telegramID in chatID.
func (tb *testBot) pressIn(t *testing.T, chatID, telegramID int64, messageID int, data string) {
	t.Helper()
	update := mocks.CallbackQueryUpdate(chatID, telegramID, messageID, data)
	ctx, ok := tb.admit(context.Background(), tb.tg, update)
	require.True(t, ok, "callback should be admitted")

	switch {
	case strings.HasPrefix(data, deleteCallbackPrefix):
		tb.handleDeleteCallbackCore(ctx, tb.tg, update)
	case strings.HasPrefix(data, subcategoryCallbackPrefix):
		tb.handleSubcategoryCallbackCore(ctx, tb.tg, update)
	default:
		tb.defaultHandlerCore(ctx, tb.tg, update)
	}
}

func (tb *testBot) seedBudget(t *testing.T, telegramID int64, month string, budget int64) {
	t.Helper()
	ctx := context.Background()
	user, err := tb.store.EnsureByTelegramID(ctx, telegramID)
	require.NoError(t, err)
	_, err = tb.store.Upsert(ctx, user.ID, month, budget)
	require.NoError(t, err)
}

func (tb *testBot) seedExpense(t *testing.T, telegramID, amount int64, category string, at time.Time) models.Expense {
	t.Helper()
	ctx := context.Background()
	user, err := tb.store.EnsureByTelegramID(ctx, telegramID)
	require.NoError(t, err)
	e := &models.Expense{UserID: user.ID, Amount: amount, Category: category, CreatedAt: at}
	require.NoError(t, tb.store.Create(ctx, e))
	return *e
}

// texts returns every message text sent so far.
func (tb *testBot) texts() []string {
	out := make([]string, 0, tb.tg.SentMessageCount())
	for _, m := range tb.tg.SentMessages {
		out = append(out, m.Text)
	}
	return out
}

func (tb *testBot) lastText(t *testing.T) string {
	t.Helper()
	msg := tb.tg.LastSentMessage()
	require.NotNil(t, msg, "expected a sent message")
	return msg.Text
}
