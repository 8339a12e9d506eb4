// Package remote declares the durable persistence boundary. The in-memory
// repository stays authoritative; a Store is a durability and sync sink,
// reconciled by full reload (last snapshot wins). Adapter failures surface as
// core.RemoteUnavailableError — the core never retries on its own.
package remote

import (
	"context"

	"github.com/google/uuid"

	"fintrack/internal/auth"
	"fintrack/internal/core"
)

// Store persists one collection per user.
type Store interface {
	// LoadAll returns the user's full persisted snapshot.
	LoadAll(ctx context.Context, user auth.UserID) (core.Snapshot, error)

	InsertTransaction(ctx context.Context, user auth.UserID, tx core.Transaction) error
	UpdateTransaction(ctx context.Context, user auth.UserID, tx core.Transaction) error
	DeleteTransaction(ctx context.Context, user auth.UserID, id uuid.UUID) error
	UpsertGoals(ctx context.Context, user auth.UserID, goals core.AnnualGoals) error
}

// Subscriber is implemented by stores that can push remote-change
// notifications. onChange carries no payload: subscribers are expected to
// re-LoadAll and replace their collection wholesale.
type Subscriber interface {
	Subscribe(ctx context.Context, user auth.UserID, onChange func()) error
}

// Closer is implemented by stores holding external resources.
type Closer interface {
	Close() error
}

// Unavailable wraps an adapter failure in the error kind the core contracts
// on. Adapters use it at every outbound call site.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &core.RemoteUnavailableError{Op: op, Err: err}
}
