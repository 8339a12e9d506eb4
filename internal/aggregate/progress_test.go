package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func goals2024() core.AnnualGoals {
	return core.AnnualGoals{
		Year:               2024,
		ExpectedProfit:     core.Money{Cents: 6_000_000}, // 60000.00
		MonthlyBudget:      core.Money{Cents: 100_000},   // 1000.00 per month
		EmergencyReserve:   core.Money{Cents: 1_200_000}, // 12000.00 per year
		PlannedInvestments: core.Money{Cents: 2_400_000}, // 24000.00 per year
	}
}

func TestAnnualProgress(t *testing.T) {
	data := core.AnnualData{
		Year:             2024,
		TotalIncome:      core.Money{Cents: 3_000_000},
		TotalExpenses:    core.Money{Cents: 300_000}, // 3000.00 against 1000.00×12
		TotalSavings:     core.Money{Cents: 600_000},
		TotalInvestments: core.Money{Cents: 2_400_000},
	}
	got := AnnualProgress(data, goals2024())

	require.NotNil(t, got.IncomeProgress)
	assert.InDelta(t, 50, *got.IncomeProgress, 1e-9)
	require.NotNil(t, got.ExpenseProgress)
	assert.InDelta(t, 25, *got.ExpenseProgress, 1e-9)
	require.NotNil(t, got.SavingsProgress)
	assert.InDelta(t, 50, *got.SavingsProgress, 1e-9)
	require.NotNil(t, got.InvestmentProgress)
	assert.InDelta(t, 100, *got.InvestmentProgress, 1e-9)
}

func TestMonthlyProgress(t *testing.T) {
	data := core.MonthlyData{
		Month:            "2024-03",
		TotalIncome:      core.Money{Cents: 250_000},
		TotalExpenses:    core.Money{Cents: 50_000},  // half the monthly budget
		TotalSavings:     core.Money{Cents: 100_000}, // reserve/12 = 1000.00
		TotalInvestments: core.Money{Cents: 100_000}, // planned/12 = 2000.00
	}
	got := MonthlyProgress(data, goals2024())

	require.NotNil(t, got.ExpenseProgress)
	assert.InDelta(t, 50, *got.ExpenseProgress, 1e-9)
	require.NotNil(t, got.SavingsProgress)
	assert.InDelta(t, 100, *got.SavingsProgress, 1e-9)
	require.NotNil(t, got.InvestmentProgress)
	assert.InDelta(t, 50, *got.InvestmentProgress, 1e-9)
	require.NotNil(t, got.IncomeProgress)
	assert.InDelta(t, 50, *got.IncomeProgress, 1e-9)
}

func TestProgressZeroTargetIsUndefined(t *testing.T) {
	goals := core.AnnualGoals{Year: 2024, MonthlyBudget: core.Money{Cents: 100_000}}
	data := core.AnnualData{Year: 2024, TotalIncome: core.Money{Cents: 500}}

	got := AnnualProgress(data, goals)

	assert.Nil(t, got.IncomeProgress, "zero expected profit must yield an undefined ratio")
	assert.Nil(t, got.SavingsProgress)
	assert.Nil(t, got.InvestmentProgress)
	require.NotNil(t, got.ExpenseProgress)
	assert.InDelta(t, 0, *got.ExpenseProgress, 1e-9)
}

func TestProgressNotClamped(t *testing.T) {
	goals := goals2024()
	data := core.AnnualData{
		Year:          2024,
		TotalExpenses: core.Money{Cents: 3_600_000}, // triple the annualized budget
	}
	got := AnnualProgress(data, goals)

	require.NotNil(t, got.ExpenseProgress)
	assert.InDelta(t, 300, *got.ExpenseProgress, 1e-9)
}
