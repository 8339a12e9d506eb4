package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func draft(date string, typ core.TransactionType, cents int64, desc string) core.TransactionDraft {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.TransactionDraft{Date: d, Type: typ, Amount: core.Money{Cents: cents}, Description: desc}
}

func TestAddTransaction(t *testing.T) {
	repo := New()

	tx, err := repo.AddTransaction(draft("2024-03-05", core.TypeIncome, 100_000, "salary"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, tx.ID)
	assert.Equal(t, "salary", tx.Description)

	got, err := repo.Transaction(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx, got)
}

func TestAddTransactionRejectsInvalidDraft(t *testing.T) {
	repo := New()

	cases := []core.TransactionDraft{
		draft("2024-03-05", core.TypeIncome, -500, "negative"),
		draft("2024-03-05", core.TypeIncome, 0, "zero"),
		draft("2024-03-05", "transfer", 100, "bad type"),
		draft("2024-03-05", core.TypeExpense, 100, ""),
	}
	for _, d := range cases {
		_, err := repo.AddTransaction(d)
		var verr *core.ValidationError
		require.ErrorAs(t, err, &verr)
	}
	assert.Empty(t, repo.Transactions(), "failed inserts must not touch the collection")
}

func TestUpdateTransactionMergesPatch(t *testing.T) {
	repo := New()
	tx, err := repo.AddTransaction(draft("2024-03-05", core.TypeExpense, 1000, "lunch"))
	require.NoError(t, err)

	amount := core.Money{Cents: 5000}
	updated, err := repo.UpdateTransaction(tx.ID, core.TransactionPatch{Amount: &amount})
	require.NoError(t, err)

	// Identical to the prior record except the patched field.
	assert.Equal(t, int64(5000), updated.Amount.Cents)
	assert.Equal(t, tx.ID, updated.ID)
	assert.Equal(t, tx.Date, updated.Date)
	assert.Equal(t, tx.Type, updated.Type)
	assert.Equal(t, tx.Description, updated.Description)
	assert.Equal(t, tx.Category, updated.Category)
}

func TestUpdateTransactionNotFound(t *testing.T) {
	repo := New()
	_, err := repo.UpdateTransaction(uuid.New(), core.TransactionPatch{})
	var nf *core.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestUpdateTransactionRejectsInvalidMerge(t *testing.T) {
	repo := New()
	tx, err := repo.AddTransaction(draft("2024-03-05", core.TypeExpense, 1000, "lunch"))
	require.NoError(t, err)

	empty := ""
	_, err = repo.UpdateTransaction(tx.ID, core.TransactionPatch{Description: &empty})
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)

	// The stored record is unchanged after a failed merge.
	got, err := repo.Transaction(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "lunch", got.Description)
}

func TestDeleteTransaction(t *testing.T) {
	repo := New()
	tx, err := repo.AddTransaction(draft("2024-03-05", core.TypeExpense, 1000, "lunch"))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteTransaction(tx.ID))
	_, err = repo.Transaction(tx.ID)
	var nf *core.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestDeleteAbsentIDFailsAndMutatesNothing(t *testing.T) {
	repo := New()
	kept, err := repo.AddTransaction(draft("2024-03-05", core.TypeExpense, 1000, "lunch"))
	require.NoError(t, err)

	err = repo.DeleteTransaction(uuid.New())
	var nf *core.NotFoundError
	require.ErrorAs(t, err, &nf)

	// Deleting again after a successful delete is an error too, not a no-op.
	require.NoError(t, repo.DeleteTransaction(kept.ID))
	err = repo.DeleteTransaction(kept.ID)
	require.ErrorAs(t, err, &nf)
}

func TestTransactionsSortedMostRecentFirst(t *testing.T) {
	repo := New()
	_, err := repo.AddTransaction(draft("2024-01-10", core.TypeExpense, 100, "a"))
	require.NoError(t, err)
	_, err = repo.AddTransaction(draft("2024-03-01", core.TypeExpense, 100, "b"))
	require.NoError(t, err)
	_, err = repo.AddTransaction(draft("2023-12-31", core.TypeExpense, 100, "c"))
	require.NoError(t, err)

	got := repo.Transactions()
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].Description)
	assert.Equal(t, "a", got[1].Description)
	assert.Equal(t, "c", got[2].Description)
}

func TestUpsertGoalsReplacesByYear(t *testing.T) {
	repo := New()

	first := core.AnnualGoals{Year: 2024, MonthlyBudget: core.Money{Cents: 100_000}}
	_, err := repo.UpsertGoals(first)
	require.NoError(t, err)

	second := core.AnnualGoals{Year: 2024, MonthlyBudget: core.Money{Cents: 200_000}}
	_, err = repo.UpsertGoals(second)
	require.NoError(t, err)

	_, err = repo.UpsertGoals(core.AnnualGoals{Year: 2023})
	require.NoError(t, err)

	got, ok := repo.GoalsForYear(2024)
	require.True(t, ok)
	assert.Equal(t, second, got, "most recent upsert wins")
	assert.Len(t, repo.Goals(), 2, "one record per distinct year")
}

func TestGoalsForYearAbsent(t *testing.T) {
	repo := New()
	_, ok := repo.GoalsForYear(1999)
	assert.False(t, ok)
}

func TestChangeNotifications(t *testing.T) {
	repo := New()
	var changes []Change
	repo.OnChange(func(c Change) { changes = append(changes, c) })

	tx, err := repo.AddTransaction(draft("2024-03-05", core.TypeIncome, 100, "x"))
	require.NoError(t, err)
	amount := core.Money{Cents: 200}
	_, err = repo.UpdateTransaction(tx.ID, core.TransactionPatch{Amount: &amount})
	require.NoError(t, err)
	require.NoError(t, repo.DeleteTransaction(tx.ID))
	_, err = repo.UpsertGoals(core.AnnualGoals{Year: 2024})
	require.NoError(t, err)

	require.Len(t, changes, 4)
	assert.Equal(t, TransactionAdded, changes[0].Kind)
	assert.Equal(t, TransactionUpdated, changes[1].Kind)
	assert.Equal(t, TransactionDeleted, changes[2].Kind)
	assert.Equal(t, GoalsUpserted, changes[3].Kind)
	assert.Equal(t, 2024, changes[3].Year)
}

func TestReplaceAll(t *testing.T) {
	repo := New()
	_, err := repo.AddTransaction(draft("2020-01-01", core.TypeExpense, 1, "stale"))
	require.NoError(t, err)

	fresh, err := core.ParseDate("2024-06-01")
	require.NoError(t, err)
	snap := core.Snapshot{
		Goals: []core.AnnualGoals{{Year: 2024}},
		Transactions: []core.Transaction{{
			ID:          uuid.New(),
			Date:        fresh,
			Type:        core.TypeIncome,
			Amount:      core.Money{Cents: 500},
			Description: "reloaded",
		}},
	}
	repo.ReplaceAll(snap)

	got := repo.Transactions()
	require.Len(t, got, 1)
	assert.Equal(t, "reloaded", got[0].Description)
	_, ok := repo.GoalsForYear(2024)
	assert.True(t, ok)
}
