// Package memory is an in-process remote store used for development and
// tests. It honors the full Store contract, including change subscriptions.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/remote"
)

type Store struct {
	mu        sync.Mutex
	data      map[auth.UserID]*core.Snapshot
	listeners map[auth.UserID][]func()
}

var (
	_ remote.Store      = (*Store)(nil)
	_ remote.Subscriber = (*Store)(nil)
)

func New() *Store {
	return &Store{
		data:      make(map[auth.UserID]*core.Snapshot),
		listeners: make(map[auth.UserID][]func()),
	}
}

// NewFromSnapshot seeds a single user's collection, for tests and local runs.
func NewFromSnapshot(user auth.UserID, snap core.Snapshot) *Store {
	s := New()
	s.data[user] = &snap
	return s
}

func (s *Store) snapshotFor(user auth.UserID) *core.Snapshot {
	snap, ok := s.data[user]
	if !ok {
		snap = &core.Snapshot{}
		s.data[user] = snap
	}
	return snap
}

func (s *Store) LoadAll(_ context.Context, user auth.UserID) (core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshotFor(user)
	out := core.Snapshot{
		Goals:        append([]core.AnnualGoals(nil), snap.Goals...),
		Transactions: append([]core.Transaction(nil), snap.Transactions...),
	}
	return out, nil
}

func (s *Store) InsertTransaction(_ context.Context, user auth.UserID, tx core.Transaction) error {
	s.mu.Lock()
	snap := s.snapshotFor(user)
	snap.Transactions = append(snap.Transactions, tx)
	s.mu.Unlock()

	s.notify(user)
	return nil
}

func (s *Store) UpdateTransaction(_ context.Context, user auth.UserID, tx core.Transaction) error {
	s.mu.Lock()
	snap := s.snapshotFor(user)
	found := false
	for i := range snap.Transactions {
		if snap.Transactions[i].ID == tx.ID {
			snap.Transactions[i] = tx
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return &core.NotFoundError{Kind: "transaction", ID: tx.ID.String()}
	}
	s.notify(user)
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, user auth.UserID, id uuid.UUID) error {
	s.mu.Lock()
	snap := s.snapshotFor(user)
	found := false
	for i := range snap.Transactions {
		if snap.Transactions[i].ID == id {
			snap.Transactions = append(snap.Transactions[:i], snap.Transactions[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return &core.NotFoundError{Kind: "transaction", ID: id.String()}
	}
	s.notify(user)
	return nil
}

func (s *Store) UpsertGoals(_ context.Context, user auth.UserID, goals core.AnnualGoals) error {
	s.mu.Lock()
	snap := s.snapshotFor(user)
	replaced := false
	for i := range snap.Goals {
		if snap.Goals[i].Year == goals.Year {
			snap.Goals[i] = goals
			replaced = true
			break
		}
	}
	if !replaced {
		snap.Goals = append(snap.Goals, goals)
	}
	s.mu.Unlock()

	s.notify(user)
	return nil
}

// Subscribe registers onChange for the user. Notifications fire after every
// mutation until ctx is done.
func (s *Store) Subscribe(ctx context.Context, user auth.UserID, onChange func()) error {
	s.mu.Lock()
	s.listeners[user] = append(s.listeners[user], func() {
		if ctx.Err() == nil {
			onChange()
		}
	})
	s.mu.Unlock()
	return nil
}

func (s *Store) notify(user auth.UserID) {
	s.mu.Lock()
	listeners := append(([]func())(nil), s.listeners[user]...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}
