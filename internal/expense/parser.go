// Package expense parses free-text expense lines and classifies categories.
package expense

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"gitlab.com/yelinaung/budget-bot/internal/models"
)

var (
	// ErrUnparseable is returned when a line matches neither expense pattern.
	ErrUnparseable = errors.New("line does not look like an expense")
	// ErrInvalidAmount is returned when the trailing amount is zero or too large.
	ErrInvalidAmount = errors.New("amount out of range")
)

// fullLineRegex matches "<category>-<comment> <amount>" and "<category>, <comment> <amount>".
var fullLineRegex = regexp.MustCompile(`^(.+?)[-,]\s*(.*?)\s+(\d+)$`)

// simpleLineRegex matches "<category> <amount>".
var simpleLineRegex = regexp.MustCompile(`^(.+)\s+(\d+)$`)

// Candidate is a parsed but not yet persisted expense.
type Candidate struct {
	Category string
	Comment  *string
	Amount   int64
}

// CommentText returns the comment or an empty string.
func (c Candidate) CommentText() string {
	if c.Comment == nil {
		return ""
	}
	return *c.Comment
}

// ParseLine parses a single line like "компы - ночь 4000" or "еда 5000".
// The full pattern is tried first, then the simple one.
func ParseLine(line string) (Candidate, error) {
	trimmed := strings.TrimSpace(line)

	if m := fullLineRegex.FindStringSubmatch(trimmed); m != nil {
		var comment *string
		if c := strings.TrimSpace(m[2]); c != "" {
			comment = &c
		}
		return newCandidate(m[1], comment, m[3])
	}

	if m := simpleLineRegex.FindStringSubmatch(trimmed); m != nil {
		return newCandidate(m[1], nil, m[2])
	}

	return Candidate{}, ErrUnparseable
}

func newCandidate(category string, comment *string, digits string) (Candidate, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return Candidate{}, ErrUnparseable
	}

	amount, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || amount <= 0 || amount > models.MaxAmount {
		return Candidate{}, ErrInvalidAmount
	}

	return Candidate{Category: category, Comment: comment, Amount: amount}, nil
}

// ParsedLine is a successfully parsed line of a multi-line submission.
type ParsedLine struct {
	Number    int
	Raw       string
	Candidate Candidate
}

// FailedLine is a rejected line of a multi-line submission.
type FailedLine struct {
	Number int
	Raw    string
	Err    error
}

// Batch holds the outcome of parsing a multi-line submission.
type Batch struct {
	Parsed []ParsedLine
	Failed []FailedLine
}

// ParseLines splits text on newlines and parses every non-blank line on its own.
// Line numbers are 1-based and count blank lines too, so they match what the user typed.
func ParseLines(text string) Batch {
	var batch Batch
	for i, raw := range strings.Split(text, "\n") {
		raw = strings.TrimRight(raw, "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}

		candidate, err := ParseLine(raw)
		if err != nil {
			batch.Failed = append(batch.Failed, FailedLine{Number: i + 1, Raw: strings.TrimSpace(raw), Err: err})
			continue
		}
		batch.Parsed = append(batch.Parsed, ParsedLine{Number: i + 1, Raw: strings.TrimSpace(raw), Candidate: candidate})
	}
	return batch
}
