// Package services orchestrates collection mutations across the in-memory
// repository, the change feed, and the local snapshot file.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/repository"
)

// ChangePublisher pushes mutations onto the change feed.
type ChangePublisher interface {
	PublishChange(ctx context.Context, msg *amqp.ChangeMessage) error
}

// SnapshotWriter persists the local warm-start snapshot.
type SnapshotWriter interface {
	Save(user auth.UserID, snap core.Snapshot) error
}

// FinanceService applies mutations to the authoritative in-memory collection
// first, then best-effort publishes the change and rewrites the snapshot.
// Publish and snapshot failures are logged, never surfaced: the mutation has
// already happened.
type FinanceService struct {
	repos     *auth.Registry
	publisher ChangePublisher
	snapshots SnapshotWriter
}

func NewFinanceService(repos *auth.Registry, publisher ChangePublisher, snapshots SnapshotWriter) *FinanceService {
	return &FinanceService{
		repos:     repos,
		publisher: publisher,
		snapshots: snapshots,
	}
}

func (s *FinanceService) Repository(user auth.UserID) *repository.Repository {
	return s.repos.Get(user)
}

func (s *FinanceService) AddTransaction(ctx context.Context, user auth.UserID, draft core.TransactionDraft) (core.Transaction, error) {
	repo := s.repos.Get(user)
	tx, err := repo.AddTransaction(draft)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}

	msg := amqp.NewChangeMessage(user, amqp.ChangeTransactionAdded)
	msg.Transaction = &tx
	s.publish(ctx, msg)
	s.writeSnapshot(ctx, user, repo)

	return tx, nil
}

func (s *FinanceService) UpdateTransaction(ctx context.Context, user auth.UserID, id uuid.UUID, patch core.TransactionPatch) (core.Transaction, error) {
	repo := s.repos.Get(user)
	tx, err := repo.UpdateTransaction(id, patch)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	msg := amqp.NewChangeMessage(user, amqp.ChangeTransactionUpdated)
	msg.Transaction = &tx
	s.publish(ctx, msg)
	s.writeSnapshot(ctx, user, repo)

	return tx, nil
}

func (s *FinanceService) DeleteTransaction(ctx context.Context, user auth.UserID, id uuid.UUID) error {
	repo := s.repos.Get(user)
	if err := repo.DeleteTransaction(id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	msg := amqp.NewChangeMessage(user, amqp.ChangeTransactionDeleted)
	msg.TransactionID = id.String()
	s.publish(ctx, msg)
	s.writeSnapshot(ctx, user, repo)

	return nil
}

func (s *FinanceService) UpsertGoals(ctx context.Context, user auth.UserID, goals core.AnnualGoals) (core.AnnualGoals, error) {
	repo := s.repos.Get(user)
	stored, err := repo.UpsertGoals(goals)
	if err != nil {
		return core.AnnualGoals{}, fmt.Errorf("upsert goals: %w", err)
	}

	msg := amqp.NewChangeMessage(user, amqp.ChangeGoalsUpserted)
	msg.Goals = &stored
	s.publish(ctx, msg)
	s.writeSnapshot(ctx, user, repo)

	return stored, nil
}

// ReplaceAll swaps the user's full collection, typically after a remote
// reload. It refreshes the snapshot but publishes nothing: the change came
// from the feed in the first place.
func (s *FinanceService) ReplaceAll(ctx context.Context, user auth.UserID, snap core.Snapshot) {
	repo := s.repos.Get(user)
	repo.ReplaceAll(snap)
	s.writeSnapshot(ctx, user, repo)
}

func (s *FinanceService) publish(ctx context.Context, msg *amqp.ChangeMessage) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Change feed not configured, skipping publish", "kind", msg.Kind)
		return
	}
	if err := s.publisher.PublishChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change message",
			"user", msg.User, "kind", msg.Kind, "error", err)
	}
}

func (s *FinanceService) writeSnapshot(ctx context.Context, user auth.UserID, repo *repository.Repository) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Save(user, repo.Snapshot()); err != nil {
		slog.ErrorContext(ctx, "Failed to write snapshot", "user", user, "error", err)
	}
}
