package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Mr Teacher", CleanString("  Mr Teacher \n"))
	assert.Equal(t, "mr teacher", CleanString(" Mr Teacher ", true))
	assert.Equal(t, "", CleanString("   "))
	assert.Equal(t, "Amine Haddad", CleanString(" Amine \t  Haddad\n"))
	assert.Equal(t, "amine haddad", CleanString("AMINE   Haddad", true))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 6.79, Round2(47.5/7))
	assert.Equal(t, 66.67, Round2(200.0/3))
	assert.Equal(t, 7.0, Round2(7))
}

func TestInDateRange(t *testing.T) {
	tests := []struct {
		date, from, to string
		want           bool
	}{
		{"2024-10-01", "", "", true},
		{"2024-10-01", "2024-10-01", "2024-10-01", true},
		{"2024-10-01", "2024-10-02", "", false},
		{"2024-10-01", "", "2024-09-30", false},
		{"2024-10-01", "2024-09-01", "2024-10-31", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InDateRange(tt.date, tt.from, tt.to), "InDateRange(%s, %s, %s)", tt.date, tt.from, tt.to)
	}
}

func TestMonthOf(t *testing.T) {
	y, m := MonthOf("2024-10-15")
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.October, m)

	y, m = MonthOf("15/10/2024")
	assert.Zero(t, y)
	assert.Zero(t, m)
}

func TestToday(t *testing.T) {
	assert.Equal(t, "2024-10-05", Today(time.Date(2024, 10, 5, 23, 0, 0, 0, time.UTC)))
}
