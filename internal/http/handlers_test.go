package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func decodeBody[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v))
	return v
}

func createTransaction(t *testing.T, srv *Server, token, date, txType, amount string) core.Transaction {
	t.Helper()
	body := fmt.Sprintf(`{"date":%q,"type":%q,"amount":%q,"description":"seed"}`, date, txType, amount)
	rec := doRequest(t, srv, http.MethodPost, "/transactions", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[core.Transaction](t, rec.Body.Bytes())
}

func TestCreateAndGetTransaction(t *testing.T) {
	srv := newTestServer(t)

	tx := createTransaction(t, srv, "alice-token", "2024-01-15", "income", "1000.00")
	assert.Equal(t, int64(100000), tx.Amount.Cents)

	rec := doRequest(t, srv, http.MethodGet, "/transactions/"+tx.ID.String(), "alice-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[core.Transaction](t, rec.Body.Bytes())
	assert.Equal(t, tx.ID, got.ID)
}

func TestCreateTransactionValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"unknown type", `{"date":"2024-01-15","type":"lottery","amount":"10.00","description":"x"}`},
		{"zero amount", `{"date":"2024-01-15","type":"income","amount":"0","description":"x"}`},
		{"negative amount", `{"date":"2024-01-15","type":"income","amount":"-5.00","description":"x"}`},
		{"blank description", `{"date":"2024-01-15","type":"income","amount":"10.00","description":"   "}`},
		{"malformed date", `{"date":"15/01/2024","type":"income","amount":"10.00","description":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/transactions", "alice-token", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
		})
	}
}

func TestUpdateTransactionPartialPatch(t *testing.T) {
	srv := newTestServer(t)
	tx := createTransaction(t, srv, "alice-token", "2024-01-15", "expense", "42.50")

	rec := doRequest(t, srv, http.MethodPut, "/transactions/"+tx.ID.String(), "alice-token",
		`{"description":"updated"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decodeBody[core.Transaction](t, rec.Body.Bytes())
	assert.Equal(t, "updated", got.Description)
	assert.Equal(t, tx.Amount, got.Amount)
	assert.Equal(t, tx.Date, got.Date)
	assert.Equal(t, tx.ID, got.ID)
}

func TestDeleteTransaction(t *testing.T) {
	srv := newTestServer(t)
	tx := createTransaction(t, srv, "alice-token", "2024-01-15", "expense", "42.50")

	rec := doRequest(t, srv, http.MethodDelete, "/transactions/"+tx.ID.String(), "alice-token", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, srv, http.MethodDelete, "/transactions/"+tx.ID.String(), "alice-token", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransactionsAreScopedPerUser(t *testing.T) {
	srv := newTestServer(t)
	tx := createTransaction(t, srv, "alice-token", "2024-01-15", "income", "1000.00")

	rec := doRequest(t, srv, http.MethodGet, "/transactions/"+tx.ID.String(), "bob-token", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/transactions", "bob-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decodeBody[map[string][]core.Transaction](t, rec.Body.Bytes())
	assert.Empty(t, listing["transactions"])
}

func TestMonthSummary(t *testing.T) {
	srv := newTestServer(t)
	createTransaction(t, srv, "alice-token", "2024-01-15", "income", "1000.00")
	createTransaction(t, srv, "alice-token", "2024-01-20", "expense", "300.00")
	createTransaction(t, srv, "alice-token", "2024-02-01", "expense", "500.00")

	rec := doRequest(t, srv, http.MethodGet, "/summary/month?month=2024-01", "alice-token", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody[core.MonthlyData](t, rec.Body.Bytes())
	assert.Equal(t, "2024-01", data.Month)
	assert.Equal(t, int64(100000), data.TotalIncome.Cents)
	assert.Equal(t, int64(30000), data.TotalExpenses.Cents)
	assert.Len(t, data.Transactions, 2)
}

func TestMonthSummaryRejectsBadMonth(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/summary/month?month=January", "alice-token", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMonthSummaryCacheInvalidatedByMutation(t *testing.T) {
	srv := newTestServer(t)
	createTransaction(t, srv, "alice-token", "2024-01-15", "income", "1000.00")

	rec := doRequest(t, srv, http.MethodGet, "/summary/month?month=2024-01", "alice-token", "")
	require.Equal(t, http.StatusOK, rec.Code)

	createTransaction(t, srv, "alice-token", "2024-01-16", "income", "500.00")

	rec = doRequest(t, srv, http.MethodGet, "/summary/month?month=2024-01", "alice-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody[core.MonthlyData](t, rec.Body.Bytes())
	assert.Equal(t, int64(150000), data.TotalIncome.Cents)
}

func TestYearSummaryNetBalance(t *testing.T) {
	srv := newTestServer(t)
	createTransaction(t, srv, "alice-token", "2024-01-15", "income", "1000.00")
	createTransaction(t, srv, "alice-token", "2024-03-10", "expense", "300.00")
	createTransaction(t, srv, "alice-token", "2024-06-01", "savings", "200.00")
	createTransaction(t, srv, "alice-token", "2024-09-01", "investment", "100.00")

	rec := doRequest(t, srv, http.MethodGet, "/summary/year?year=2024", "alice-token", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody[core.AnnualData](t, rec.Body.Bytes())
	assert.Equal(t, int64(40000), data.NetBalance.Cents)
}

func TestBreakdownAlwaysTwelveMonths(t *testing.T) {
	srv := newTestServer(t)
	createTransaction(t, srv, "alice-token", "2024-05-15", "income", "1000.00")

	rec := doRequest(t, srv, http.MethodGet, "/summary/breakdown?year=2024", "alice-token", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Year   int                 `json:"year"`
		Months []core.MonthSummary `json:"months"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Months, 12)
	assert.Equal(t, "2024-05", resp.Months[4].Month)
	assert.Equal(t, int64(100000), resp.Months[4].TotalIncome.Cents)
	assert.Equal(t, int64(0), resp.Months[0].TotalIncome.Cents)
}

func TestProgressWithoutGoalsIsNotFound(t *testing.T) {
	srv := newTestServer(t)
	createTransaction(t, srv, "alice-token", "2024-01-15", "income", "1000.00")

	rec := doRequest(t, srv, http.MethodGet, "/summary/progress?year=2024", "alice-token", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnnualProgress(t *testing.T) {
	srv := newTestServer(t)
	createTransaction(t, srv, "alice-token", "2024-01-15", "income", "25000.00")
	createTransaction(t, srv, "alice-token", "2024-02-15", "expense", "3000.00")

	rec := doRequest(t, srv, http.MethodPut, "/goals", "alice-token",
		`{"year":2024,"expectedProfit":"50000.00","monthlyBudget":"1000.00"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(t, srv, http.MethodGet, "/summary/progress?year=2024", "alice-token", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Progress core.GoalProgress `json:"progress"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Progress.IncomeProgress)
	assert.InDelta(t, 50.0, *resp.Progress.IncomeProgress, 0.001)
	require.NotNil(t, resp.Progress.ExpenseProgress)
	assert.InDelta(t, 25.0, *resp.Progress.ExpenseProgress, 0.001)
	assert.Nil(t, resp.Progress.SavingsProgress)
	assert.Nil(t, resp.Progress.InvestmentProgress)
}

func TestGoalsUpsertReplacesSameYear(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPut, "/goals", "alice-token",
		`{"year":2024,"monthlyBudget":"1000.00"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(t, srv, http.MethodPut, "/goals", "alice-token",
		`{"year":2024,"monthlyBudget":"2000.00"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/goals", "alice-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decodeBody[map[string][]core.AnnualGoals](t, rec.Body.Bytes())
	require.Len(t, listing["goals"], 1)
	assert.Equal(t, int64(200000), listing["goals"][0].MonthlyBudget.Cents)
}

func TestPeriodsIncludeGoalOnlyYears(t *testing.T) {
	srv := newTestServer(t)
	createTransaction(t, srv, "alice-token", "2024-03-15", "income", "1000.00")

	rec := doRequest(t, srv, http.MethodPut, "/goals", "alice-token",
		`{"year":2022,"monthlyBudget":"1000.00"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/periods", "alice-token", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Months []string `json:"months"`
		Years  []int    `json:"years"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"2024-03"}, resp.Months)
	assert.Equal(t, []int{2024, 2022}, resp.Years)
}

func TestCategoryBreakdown(t *testing.T) {
	srv := newTestServer(t)

	body := `{"date":"2024-01-10","type":"expense","amount":"60.00","description":"groceries","category":"food"}`
	rec := doRequest(t, srv, http.MethodPost, "/transactions", "alice-token", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	body = `{"date":"2024-01-12","type":"expense","amount":"40.00","description":"misc"}`
	rec = doRequest(t, srv, http.MethodPost, "/transactions", "alice-token", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/summary/categories?month=2024-01", "alice-token", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Categories []struct {
			Name   string     `json:"name"`
			Amount core.Money `json:"amount"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Categories, 2)
	assert.Equal(t, "food", resp.Categories[0].Name)
	assert.Equal(t, core.CategoryUncategorized, resp.Categories[1].Name)
}

func TestCategorySuggestionsRequireValidType(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/categories?type=lottery", "alice-token", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/categories?type=expense", "alice-token", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
