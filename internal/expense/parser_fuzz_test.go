package expense

import (
	"strconv"
	"strings"
	"testing"

	"gitlab.com/yelinaung/budget-bot/internal/models"
)

func FuzzParseLine(f *testing.F) {
	f.Add("еда 5000")
	f.Add("компы - ночь 4000")
	f.Add("ресторан, 12000")
	f.Add("кофе-латте 900")
	f.Add("такси - 1500")
	f.Add("")
	f.Add("5000")
	f.Add("еда")
	f.Add("еда 0")
	f.Add("еда 4.50")
	f.Add("- 500")
	f.Add(", , , 1")
	f.Add("еда 99999999999999999999")

	f.Fuzz(func(t *testing.T, input string) {
		got, err := ParseLine(input)
		if err != nil {
			return
		}

		// Invariant 1: amount stays within bounds.
		if got.Amount <= 0 || got.Amount > models.MaxAmount {
			t.Errorf("ParseLine(%q) returned out-of-range amount %d", input, got.Amount)
		}

		// Invariant 2: category is non-empty and trimmed.
		if got.Category == "" || got.Category != strings.TrimSpace(got.Category) {
			t.Errorf("ParseLine(%q) returned bad category %q", input, got.Category)
		}

		// Invariant 3: the amount is the trailing digit run of the input.
		if !strings.HasSuffix(strings.TrimSpace(input), strconv.FormatInt(got.Amount, 10)) {
			t.Errorf("ParseLine(%q) amount %d is not the trailing number", input, got.Amount)
		}

		// Invariant 4: comments are never empty strings.
		if got.Comment != nil && *got.Comment == "" {
			t.Errorf("ParseLine(%q) returned empty non-nil comment", input)
		}
	})
}
