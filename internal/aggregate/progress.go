package aggregate

import "fintrack/internal/core"

// AnnualProgress computes the four progress ratios of a year's actuals
// against its goals. Ratios are raw percentages, possibly above 100; a ratio
// is nil when its target is zero. Callers that have no goals for the year
// must not call this at all — absence of goals means "undefined", not 0%.
func AnnualProgress(data core.AnnualData, goals core.AnnualGoals) core.GoalProgress {
	return core.GoalProgress{
		Year:               goals.Year,
		IncomeProgress:     pct(data.TotalIncome, float64(goals.ExpectedProfit.Cents)),
		ExpenseProgress:    pct(data.TotalExpenses, float64(goals.MonthlyBudget.Cents)*12),
		SavingsProgress:    pct(data.TotalSavings, float64(goals.EmergencyReserve.Cents)),
		InvestmentProgress: pct(data.TotalInvestments, float64(goals.PlannedInvestments.Cents)),
	}
}

// MonthlyProgress is the single-month analogue: the expense target is the
// monthly budget itself, the annual targets are divided by twelve.
func MonthlyProgress(data core.MonthlyData, goals core.AnnualGoals) core.GoalProgress {
	return core.GoalProgress{
		Year:               goals.Year,
		IncomeProgress:     pct(data.TotalIncome, float64(goals.ExpectedProfit.Cents)/12),
		ExpenseProgress:    pct(data.TotalExpenses, float64(goals.MonthlyBudget.Cents)),
		SavingsProgress:    pct(data.TotalSavings, float64(goals.EmergencyReserve.Cents)/12),
		InvestmentProgress: pct(data.TotalInvestments, float64(goals.PlannedInvestments.Cents)/12),
	}
}

// pct returns actual/target as a percentage, or nil when the target is zero.
// Division by a zero target is undefined by contract, never a runtime error.
func pct(actual core.Money, targetCents float64) *float64 {
	if targetCents == 0 {
		return nil
	}
	v := float64(actual.Cents) / targetCents * 100
	return &v
}
