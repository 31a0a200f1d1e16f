//go:build ignore
// +build ignore

package main

import (
	"fmt"
	"os"
	"time"

	"gitlab.com/yelinaung/budget-bot/internal/bot"
	"gitlab.com/yelinaung/budget-bot/internal/ledger"
	"gitlab.com/yelinaung/budget-bot/internal/models"
)

func main() {
	at := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	wolt := "wolt"
	expenses := []models.Expense{
		{ID: 1, Amount: 15050, Category: "еда", Subcategory: &wolt, CreatedAt: at},
		{ID: 2, Amount: 13050, Category: "еда", CreatedAt: at},
		{ID: 3, Amount: 6000, Category: "такси", CreatedAt: at},
		{ID: 4, Amount: 2500, Category: "кино", CreatedAt: at},
		{ID: 5, Amount: 12000, Category: "коммуналка", CreatedAt: at},
	}

	chartData, err := bot.GenerateTrendsChart(ledger.Trends(expenses))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile("graph.png", chartData, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✓ Created graph.png - Example category trends chart")
}
