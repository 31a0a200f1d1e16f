package bot

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-analyze/charts"
	"gitlab.com/yelinaung/budget-bot/internal/expense"
	"gitlab.com/yelinaung/budget-bot/internal/ledger"
)

var errNothingToChart = errors.New("no expenses to chart")

// GenerateTrendsChart renders category totals as a pie chart.
// Returns PNG image as bytes.
func GenerateTrendsChart(totals []ledger.CategoryTotal) ([]byte, error) {
	if len(totals) == 0 {
		return nil, errNothingToChart
	}

	values := make([]float64, 0, len(totals))
	names := make([]string, 0, len(totals))
	for _, c := range totals {
		values = append(values, float64(c.Total))
		names = append(names, chartLabel(c))
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{
			Text: "Expenses by category",
		}),
		charts.LegendLabelsOptionFunc(names),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	return buf, nil
}

// chartLabel is the legend text; emoji glyphs are left out since the chart font lacks them.
func chartLabel(c ledger.CategoryTotal) string {
	if c.Subcategory == "" {
		return c.Category
	}
	return fmt.Sprintf("%s (%s)", c.Category, expense.SubcategoryName(c.Subcategory))
}

// trendsChartFilename creates filename like "trends_2026-01-31.png".
func trendsChartFilename(now time.Time) string {
	return fmt.Sprintf("trends_%s.png", now.Format("2006-01-02"))
}
