// Package worker applies change-feed messages to the durable remote store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/remote"
)

// ReloadNotifier tells server instances to refresh a user's collection after
// the worker has persisted a change.
type ReloadNotifier interface {
	PublishReload(ctx context.Context, user auth.UserID) error
}

// SyncWorker persists change messages to the remote store and notifies
// servers afterwards. Persist errors are retried by the broker via nack;
// stale messages (updates or deletes for ids the store no longer has) are
// dropped because a later reload supersedes them.
type SyncWorker struct {
	store    remote.Store
	notifier ReloadNotifier
}

func NewSyncWorker(store remote.Store, notifier ReloadNotifier) *SyncWorker {
	return &SyncWorker{store: store, notifier: notifier}
}

// HandleChange processes a single change message.
func (w *SyncWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	slog.InfoContext(ctx, "Processing change message", "user", msg.User, "kind", msg.Kind)

	if err := w.apply(ctx, msg); err != nil {
		var nf *core.NotFoundError
		if errors.As(err, &nf) {
			slog.WarnContext(ctx, "Dropping stale change message",
				"user", msg.User, "kind", msg.Kind, "id", nf.ID)
			return nil
		}
		return err
	}

	w.notifyReload(ctx, msg.User)
	return nil
}

func (w *SyncWorker) apply(ctx context.Context, msg *amqp.ChangeMessage) error {
	switch msg.Kind {
	case amqp.ChangeTransactionAdded:
		if msg.Transaction == nil {
			return fmt.Errorf("change %s without transaction payload", msg.Kind)
		}
		return w.store.InsertTransaction(ctx, msg.User, *msg.Transaction)

	case amqp.ChangeTransactionUpdated:
		if msg.Transaction == nil {
			return fmt.Errorf("change %s without transaction payload", msg.Kind)
		}
		return w.store.UpdateTransaction(ctx, msg.User, *msg.Transaction)

	case amqp.ChangeTransactionDeleted:
		id, err := uuid.Parse(msg.TransactionID)
		if err != nil {
			return fmt.Errorf("change %s with malformed id %q: %w", msg.Kind, msg.TransactionID, err)
		}
		return w.store.DeleteTransaction(ctx, msg.User, id)

	case amqp.ChangeGoalsUpserted:
		if msg.Goals == nil {
			return fmt.Errorf("change %s without goals payload", msg.Kind)
		}
		return w.store.UpsertGoals(ctx, msg.User, *msg.Goals)

	default:
		return fmt.Errorf("unknown change kind %q", msg.Kind)
	}
}

func (w *SyncWorker) notifyReload(ctx context.Context, user auth.UserID) {
	if w.notifier == nil {
		return
	}
	if err := w.notifier.PublishReload(ctx, user); err != nil {
		slog.ErrorContext(ctx, "Failed to publish reload notification",
			"user", user, "error", err)
	}
}
