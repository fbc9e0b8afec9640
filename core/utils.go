package core

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the layout of the calendar dates (exam, payment and transaction dates).
const DateLayout = "2006-01-02"

func init() {
	// amounts are written as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// CleanString trims `s`, collapses inner runs of whitespace to a single space and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Round2 rounds f to 2 decimal places.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Today returns the current date formatted with DateLayout.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// ParseDate parses a DateLayout date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// InDateRange reports whether the DateLayout date `date` is within [from, to]; empty bounds are open.
func InDateRange(date, from, to string) bool {
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}

// MonthOf returns the year and month of a DateLayout date, or zeros if it cannot be parsed.
func MonthOf(date string) (int, time.Month) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, 0
	}
	return t.Year(), t.Month()
}
