package finance

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/abdel28fr/ecole-pwa/core"
)

type (
	// Totals sums the transactions of a period.
	Totals struct {
		TotalIncome   decimal.Decimal `json:"totalIncome"`
		TotalExpenses decimal.Decimal `json:"totalExpenses"`
		NetProfit     decimal.Decimal `json:"netProfit"`
		Count         int             `json:"transactionCount"`
	}

	MonthlyStat struct {
		Month    int             `json:"month"` // 1 - 12
		Income   decimal.Decimal `json:"income"`
		Expenses decimal.Decimal `json:"expenses"`
		Net      decimal.Decimal `json:"net"`
	}

	CategoryStat struct {
		CategoryID int             `json:"categoryId"`
		Name       string          `json:"name"`
		Type       string          `json:"type"`
		Color      string          `json:"color"`
		Amount     decimal.Decimal `json:"amount"`
		Count      int             `json:"count"`
	}
)

// ComputeTotals sums the transactions dated within [from, to]; empty bounds are open.
func ComputeTotals(txs []Transaction, from, to string) Totals {
	totals := Totals{TotalIncome: decimal.Zero, TotalExpenses: decimal.Zero}
	for _, tx := range txs {
		if !core.InDateRange(tx.Date, from, to) {
			continue
		}
		totals.Count++
		switch tx.Type {
		case TypeIncome:
			totals.TotalIncome = totals.TotalIncome.Add(tx.Amount)
		case TypeExpense:
			totals.TotalExpenses = totals.TotalExpenses.Add(tx.Amount)
		}
	}
	totals.NetProfit = totals.TotalIncome.Sub(totals.TotalExpenses)
	return totals
}

// ComputeMonthlyStats returns the 12 monthly stats of a year.
func ComputeMonthlyStats(txs []Transaction, year int) []MonthlyStat {
	stats := make([]MonthlyStat, 12)
	for i := range stats {
		stats[i] = MonthlyStat{Month: i + 1, Income: decimal.Zero, Expenses: decimal.Zero, Net: decimal.Zero}
	}
	for _, tx := range txs {
		y, m := core.MonthOf(tx.Date)
		if y != year || m == 0 {
			continue
		}
		st := &stats[m-1]
		switch tx.Type {
		case TypeIncome:
			st.Income = st.Income.Add(tx.Amount)
		case TypeExpense:
			st.Expenses = st.Expenses.Add(tx.Amount)
		}
		st.Net = st.Income.Sub(st.Expenses)
	}
	return stats
}

// ComputeCategoryStats sums the transactions dated within [from, to] per category.
// Every category is listed, with a zero amount if nothing matches; the biggest amounts come first.
func ComputeCategoryStats(txs []Transaction, cats []Category, from, to string) []CategoryStat {
	byID := make(map[int]*CategoryStat, len(cats))
	order := make([]int, 0, len(cats))
	for _, cat := range cats {
		byID[cat.ID] = &CategoryStat{
			CategoryID: cat.ID,
			Name:       cat.Name,
			Type:       cat.Type,
			Color:      cat.Color,
			Amount:     decimal.Zero,
		}
		order = append(order, cat.ID)
	}
	for _, tx := range txs {
		if !core.InDateRange(tx.Date, from, to) {
			continue
		}
		if st, ok := byID[tx.CategoryID]; ok {
			st.Amount = st.Amount.Add(tx.Amount)
			st.Count++
		}
	}

	stats := make([]CategoryStat, 0, len(order))
	for _, id := range order {
		stats = append(stats, *byID[id])
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Amount.GreaterThan(stats[j].Amount) })
	return stats
}

// SortByDateDesc sorts transactions newest first; the most recently created first on the same date.
func SortByDateDesc(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Date != txs[j].Date {
			return txs[i].Date > txs[j].Date
		}
		return txs[i].ID > txs[j].ID
	})
}
