package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentationName identifies spans and metrics emitted by the bot.
const InstrumentationName = "gitlab.com/yelinaung/budget-bot"

// Metrics holds the bot's counters.
type Metrics struct {
	updates        metric.Int64Counter
	expensesSaved  metric.Int64Counter
	linesFailed    metric.Int64Counter
	datastoreError metric.Int64Counter
	resets         metric.Int64Counter
}

// NewMetrics registers the bot's instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	var err, e error

	m.updates, e = meter.Int64Counter("budgetbot.updates",
		metric.WithDescription("Telegram updates handled, by kind"))
	err = errors.Join(err, e)
	m.expensesSaved, e = meter.Int64Counter("budgetbot.expenses.saved",
		metric.WithDescription("Expenses written to the datastore"))
	err = errors.Join(err, e)
	m.linesFailed, e = meter.Int64Counter("budgetbot.expenses.failed_lines",
		metric.WithDescription("Submitted expense lines that could not be parsed or written"))
	err = errors.Join(err, e)
	m.datastoreError, e = meter.Int64Counter("budgetbot.datastore.errors",
		metric.WithDescription("Datastore failures, by operation"))
	err = errors.Join(err, e)
	m.resets, e = meter.Int64Counter("budgetbot.month.resets",
		metric.WithDescription("Completed month resets"))
	err = errors.Join(err, e)

	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateHandled counts one update of the given kind (message, callback).
func (m *Metrics) UpdateHandled(ctx context.Context, kind string) {
	m.updates.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// ExpensesSaved counts successfully written expenses.
func (m *Metrics) ExpensesSaved(ctx context.Context, n int) {
	if n > 0 {
		m.expensesSaved.Add(ctx, int64(n))
	}
}

// LinesFailed counts expense lines that were rejected or failed to write.
func (m *Metrics) LinesFailed(ctx context.Context, n int) {
	if n > 0 {
		m.linesFailed.Add(ctx, int64(n))
	}
}

// DatastoreError counts a failed datastore operation.
func (m *Metrics) DatastoreError(ctx context.Context, op string) {
	m.datastoreError.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

// MonthReset counts a completed month reset.
func (m *Metrics) MonthReset(ctx context.Context) {
	m.resets.Add(ctx, 1)
}
