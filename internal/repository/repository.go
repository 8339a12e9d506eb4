// Package repository owns the authoritative in-memory collection of
// transactions and goals. All mutation goes through it; every successful
// mutation is immediately visible to the next read. Durable persistence is a
// downstream concern handled by the sync layer.
package repository

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// ChangeKind identifies what a mutation did.
type ChangeKind string

const (
	TransactionAdded   ChangeKind = "transaction_added"
	TransactionUpdated ChangeKind = "transaction_updated"
	TransactionDeleted ChangeKind = "transaction_deleted"
	GoalsUpserted      ChangeKind = "goals_upserted"
	SnapshotReplaced   ChangeKind = "snapshot_replaced"
)

// Change describes one applied mutation, for sync listeners.
type Change struct {
	Kind          ChangeKind
	TransactionID uuid.UUID // set for transaction changes
	Year          int       // set for goals changes
}

// Repository is safe for concurrent use. Writers are serialized by the
// mutex, so two concurrent partial updates to the same id cannot lose fields.
type Repository struct {
	mu           sync.RWMutex
	transactions []core.Transaction
	index        map[uuid.UUID]int
	goals        map[int]core.AnnualGoals

	listenerMu sync.RWMutex
	listeners  []func(Change)
}

func New() *Repository {
	return &Repository{
		index: make(map[uuid.UUID]int),
		goals: make(map[int]core.AnnualGoals),
	}
}

// OnChange registers a listener invoked after every successful mutation. The
// listener runs outside the collection lock.
func (r *Repository) OnChange(fn func(Change)) {
	r.listenerMu.Lock()
	defer r.listenerMu.Unlock()
	r.listeners = append(r.listeners, fn)
}

func (r *Repository) notify(c Change) {
	r.listenerMu.RLock()
	defer r.listenerMu.RUnlock()
	for _, fn := range r.listeners {
		fn(c)
	}
}

// AddTransaction validates the draft, assigns a fresh id and appends the
// record. The draft is never silently altered: an invalid draft fails with a
// ValidationError and the collection stays untouched.
func (r *Repository) AddTransaction(draft core.TransactionDraft) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}

	tx := core.Transaction{
		ID:          uuid.New(),
		Date:        draft.Date,
		Type:        draft.Type,
		Amount:      draft.Amount,
		Description: draft.Description,
		Category:    draft.Category,
	}

	r.mu.Lock()
	r.index[tx.ID] = len(r.transactions)
	r.transactions = append(r.transactions, tx)
	r.mu.Unlock()

	r.notify(Change{Kind: TransactionAdded, TransactionID: tx.ID})
	return tx, nil
}

// UpdateTransaction merges the patch into the stored record and re-validates
// the result. Fields the patch leaves nil keep their current value.
func (r *Repository) UpdateTransaction(id uuid.UUID, patch core.TransactionPatch) (core.Transaction, error) {
	r.mu.Lock()
	pos, ok := r.index[id]
	if !ok {
		r.mu.Unlock()
		return core.Transaction{}, &core.NotFoundError{Kind: "transaction", ID: id.String()}
	}

	merged := patch.ApplyTo(r.transactions[pos])
	merged.ID = id // the id is immutable, whatever the patch carries
	if err := merged.Validate(); err != nil {
		r.mu.Unlock()
		return core.Transaction{}, err
	}
	r.transactions[pos] = merged
	r.mu.Unlock()

	r.notify(Change{Kind: TransactionUpdated, TransactionID: id})
	return merged, nil
}

// DeleteTransaction removes the record. Deleting an absent id is an explicit
// NotFoundError, never a silent no-op.
func (r *Repository) DeleteTransaction(id uuid.UUID) error {
	r.mu.Lock()
	pos, ok := r.index[id]
	if !ok {
		r.mu.Unlock()
		return &core.NotFoundError{Kind: "transaction", ID: id.String()}
	}

	r.transactions = append(r.transactions[:pos], r.transactions[pos+1:]...)
	delete(r.index, id)
	for i := pos; i < len(r.transactions); i++ {
		r.index[r.transactions[i].ID] = i
	}
	r.mu.Unlock()

	r.notify(Change{Kind: TransactionDeleted, TransactionID: id})
	return nil
}

// Transaction returns the record for id.
func (r *Repository) Transaction(id uuid.UUID) (core.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pos, ok := r.index[id]
	if !ok {
		return core.Transaction{}, &core.NotFoundError{Kind: "transaction", ID: id.String()}
	}
	return r.transactions[pos], nil
}

// Transactions returns a copy of the collection, most recent date first
// (stable for equal dates).
func (r *Repository) Transactions() []core.Transaction {
	r.mu.RLock()
	out := make([]core.Transaction, len(r.transactions))
	copy(out, r.transactions)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.String() > out[j].Date.String()
	})
	return out
}

// UpsertGoals replaces any existing record for goals.Year or inserts a new
// one. There is no partial form: callers always submit the full target set.
func (r *Repository) UpsertGoals(goals core.AnnualGoals) (core.AnnualGoals, error) {
	if err := goals.Validate(); err != nil {
		return core.AnnualGoals{}, err
	}

	r.mu.Lock()
	r.goals[goals.Year] = goals
	r.mu.Unlock()

	r.notify(Change{Kind: GoalsUpserted, Year: goals.Year})
	return goals, nil
}

// GoalsForYear reports the goals for a year, if any were set.
func (r *Repository) GoalsForYear(year int) (core.AnnualGoals, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.goals[year]
	return g, ok
}

// Goals returns all goal records, most recent year first.
func (r *Repository) Goals() []core.AnnualGoals {
	r.mu.RLock()
	out := make([]core.AnnualGoals, 0, len(r.goals))
	for _, g := range r.goals {
		out = append(out, g)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out
}

// Snapshot captures the current collections in the persisted document shape.
func (r *Repository) Snapshot() core.Snapshot {
	return core.Snapshot{
		Goals:        r.Goals(),
		Transactions: r.Transactions(),
	}
}

// ReplaceAll swaps the whole collection for the given snapshot. This is the
// reconciliation entry point for remote change notifications: the last full
// reload wins, there is no field-level merge.
func (r *Repository) ReplaceAll(snap core.Snapshot) {
	txs := make([]core.Transaction, len(snap.Transactions))
	copy(txs, snap.Transactions)
	index := make(map[uuid.UUID]int, len(txs))
	for i, tx := range txs {
		index[tx.ID] = i
	}
	goals := make(map[int]core.AnnualGoals, len(snap.Goals))
	for _, g := range snap.Goals {
		goals[g.Year] = g
	}

	r.mu.Lock()
	r.transactions = txs
	r.index = index
	r.goals = goals
	r.mu.Unlock()

	r.notify(Change{Kind: SnapshotReplaced})
}
