package core

// MonthlyData is the derived view of a single calendar month: the
// transactions whose date falls in that month plus per-type sums. It is
// recomputed on every query and never stored.
type MonthlyData struct {
	Month            string        `json:"month"` // YYYY-MM
	Transactions     []Transaction `json:"transactions"`
	TotalIncome      Money         `json:"totalIncome"`
	TotalExpenses    Money         `json:"totalExpenses"`
	TotalSavings     Money         `json:"totalSavings"`
	TotalInvestments Money         `json:"totalInvestments"`
}

// AnnualData is the same view over a full year. NetBalance is
// income − expenses − savings − investments.
type AnnualData struct {
	Year             int           `json:"year"`
	Transactions     []Transaction `json:"transactions"`
	TotalIncome      Money         `json:"totalIncome"`
	TotalExpenses    Money         `json:"totalExpenses"`
	TotalSavings     Money         `json:"totalSavings"`
	TotalInvestments Money         `json:"totalInvestments"`
	NetBalance       Money         `json:"netBalance"`
}

// MonthSummary is one entry of a twelve-month breakdown. Balance is the
// legacy income − expenses metric kept under its own name; NetBalance is the
// canonical one and additionally subtracts savings and investments.
type MonthSummary struct {
	Month            string `json:"month"` // YYYY-MM
	TotalIncome      Money  `json:"totalIncome"`
	TotalExpenses    Money  `json:"totalExpenses"`
	TotalSavings     Money  `json:"totalSavings"`
	TotalInvestments Money  `json:"totalInvestments"`
	Balance          Money  `json:"balance"`
	NetBalance       Money  `json:"netBalance"`
}

// Snapshot is the persisted document format: the full goals and transactions
// collections as one JSON object.
type Snapshot struct {
	Goals        []AnnualGoals `json:"goals"`
	Transactions []Transaction `json:"transactions"`
}

// GoalProgress holds the four progress ratios against a year's goals, in
// percent. A nil ratio means undefined: the corresponding target is zero.
// When no goals exist for a year there is no GoalProgress at all — callers
// must distinguish "no goal set" from 0%. Ratios are raw, never clamped.
type GoalProgress struct {
	Year               int      `json:"year"`
	IncomeProgress     *float64 `json:"incomeProgress"`
	ExpenseProgress    *float64 `json:"expenseProgress"`
	SavingsProgress    *float64 `json:"savingsProgress"`
	InvestmentProgress *float64 `json:"investmentProgress"`
}
