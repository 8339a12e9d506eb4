// Package aggregate derives monthly and annual summaries from a flat list of
// transactions. Every function is pure: no side effects, deterministic for
// the same inputs, recomputable at any time against the current data set.
package aggregate

import (
	"sort"

	"fintrack/internal/core"
)

// totals accumulates per-type sums in cents. Transactions with an
// unrecognized type are left out of the sums but still returned in the
// transaction lists.
type totals struct {
	income      int64
	expenses    int64
	savings     int64
	investments int64
}

func (t *totals) add(tx core.Transaction) {
	switch tx.Type {
	case core.TypeIncome:
		t.income += tx.Amount.Cents
	case core.TypeExpense:
		t.expenses += tx.Amount.Cents
	case core.TypeSavings:
		t.savings += tx.Amount.Cents
	case core.TypeInvestment:
		t.investments += tx.Amount.Cents
	}
}

// MonthlyData returns the transactions dated in the given YYYY-MM month plus
// their per-type sums.
func MonthlyData(txs []core.Transaction, month string) core.MonthlyData {
	picked := make([]core.Transaction, 0)
	var sum totals
	for _, tx := range txs {
		if tx.Date.MonthKey() != month {
			continue
		}
		picked = append(picked, tx)
		sum.add(tx)
	}
	return core.MonthlyData{
		Month:            month,
		Transactions:     picked,
		TotalIncome:      core.Money{Cents: sum.income},
		TotalExpenses:    core.Money{Cents: sum.expenses},
		TotalSavings:     core.Money{Cents: sum.savings},
		TotalInvestments: core.Money{Cents: sum.investments},
	}
}

// AnnualData returns the transactions dated in the given year, their per-type
// sums and the net balance (income − expenses − savings − investments).
func AnnualData(txs []core.Transaction, year int) core.AnnualData {
	picked := make([]core.Transaction, 0)
	var sum totals
	for _, tx := range txs {
		if tx.Date.Year() != year {
			continue
		}
		picked = append(picked, tx)
		sum.add(tx)
	}
	return core.AnnualData{
		Year:             year,
		Transactions:     picked,
		TotalIncome:      core.Money{Cents: sum.income},
		TotalExpenses:    core.Money{Cents: sum.expenses},
		TotalSavings:     core.Money{Cents: sum.savings},
		TotalInvestments: core.Money{Cents: sum.investments},
		NetBalance:       core.Money{Cents: sum.income - sum.expenses - sum.savings - sum.investments},
	}
}

// MonthlyBreakdown returns exactly twelve entries for the year, months 1..12
// in order. Months without data carry zero totals, so callers can render a
// full calendar year without gap handling.
func MonthlyBreakdown(txs []core.Transaction, year int) []core.MonthSummary {
	out := make([]core.MonthSummary, 0, 12)
	for month := 1; month <= 12; month++ {
		key := core.MonthKeyOf(year, month)
		var sum totals
		for _, tx := range txs {
			if tx.Date.MonthKey() == key {
				sum.add(tx)
			}
		}
		out = append(out, core.MonthSummary{
			Month:            key,
			TotalIncome:      core.Money{Cents: sum.income},
			TotalExpenses:    core.Money{Cents: sum.expenses},
			TotalSavings:     core.Money{Cents: sum.savings},
			TotalInvestments: core.Money{Cents: sum.investments},
			Balance:          core.Money{Cents: sum.income - sum.expenses},
			NetBalance:       core.Money{Cents: sum.income - sum.expenses - sum.savings - sum.investments},
		})
	}
	return out
}

// MonthsWithData lists the distinct YYYY-MM months present, most recent
// first. The YYYY-MM form sorts lexicographically in chronological order.
func MonthsWithData(txs []core.Transaction) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, tx := range txs {
		key := tx.Date.MonthKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// YearsWithData lists the distinct years present in either the transaction
// or the goals collection, most recent first.
func YearsWithData(txs []core.Transaction, goals []core.AnnualGoals) []int {
	seen := make(map[int]struct{})
	out := make([]int, 0)
	for _, tx := range txs {
		y := tx.Date.Year()
		if _, ok := seen[y]; !ok {
			seen[y] = struct{}{}
			out = append(out, y)
		}
	}
	for _, g := range goals {
		if _, ok := seen[g.Year]; !ok {
			seen[g.Year] = struct{}{}
			out = append(out, g.Year)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// CategoryAmount is a per-category expense sum for one month.
type CategoryAmount struct {
	Name   string     `json:"name"`
	Amount core.Money `json:"amount"`
}

// CategoryBreakdown sums the month's expenses by normalized category, largest
// first. Empty categories group under the "uncategorized" sentinel.
func CategoryBreakdown(txs []core.Transaction, month string) []CategoryAmount {
	sums := make(map[string]int64)
	order := make([]string, 0)
	for _, tx := range txs {
		if tx.Type != core.TypeExpense || tx.Date.MonthKey() != month {
			continue
		}
		name := tx.NormalizedCategory()
		if _, ok := sums[name]; !ok {
			order = append(order, name)
		}
		sums[name] += tx.Amount.Cents
	}
	out := make([]CategoryAmount, 0, len(order))
	for _, name := range order {
		out = append(out, CategoryAmount{Name: name, Amount: core.Money{Cents: sums[name]}})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.Cents > out[j].Amount.Cents
	})
	return out
}
