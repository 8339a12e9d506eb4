// Package sqlite persists per-user collections in a local SQLite database.
// It is the default durable backend: no credentials, a single file on disk.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/remote"
)

type Store struct {
	db *sql.DB
}

var (
	_ remote.Store  = (*Store)(nil)
	_ remote.Closer = (*Store)(nil)
)

func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) LoadAll(ctx context.Context, user auth.UserID) (core.Snapshot, error) {
	var snap core.Snapshot

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, type, amount_cents, description, category
		 FROM transactions WHERE user_id = ? ORDER BY date DESC, id`,
		string(user))
	if err != nil {
		return snap, remote.Unavailable("sqlite.load_transactions", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, date, txType, description, category string
			cents                                   int64
		)
		if err := rows.Scan(&id, &date, &txType, &cents, &description, &category); err != nil {
			return snap, remote.Unavailable("sqlite.scan_transaction", err)
		}

		parsedID, err := uuid.Parse(id)
		if err != nil {
			slog.WarnContext(ctx, "Skipping transaction with malformed id", "id", id, "user", user)
			continue
		}
		parsedDate, err := core.ParseDate(date)
		if err != nil {
			slog.WarnContext(ctx, "Skipping transaction with malformed date", "id", id, "date", date)
			continue
		}

		snap.Transactions = append(snap.Transactions, core.Transaction{
			ID:          parsedID,
			Date:        parsedDate,
			Type:        core.TransactionType(txType),
			Amount:      core.Money{Cents: cents},
			Description: description,
			Category:    category,
		})
	}
	if err := rows.Err(); err != nil {
		return snap, remote.Unavailable("sqlite.load_transactions", err)
	}

	goalRows, err := s.db.QueryContext(ctx,
		`SELECT year, expected_profit_cents, monthly_budget_cents,
		        emergency_reserve_cents, planned_investments_cents
		 FROM goals WHERE user_id = ? ORDER BY year DESC`,
		string(user))
	if err != nil {
		return snap, remote.Unavailable("sqlite.load_goals", err)
	}
	defer goalRows.Close()

	for goalRows.Next() {
		var g core.AnnualGoals
		if err := goalRows.Scan(&g.Year, &g.ExpectedProfit.Cents, &g.MonthlyBudget.Cents,
			&g.EmergencyReserve.Cents, &g.PlannedInvestments.Cents); err != nil {
			return snap, remote.Unavailable("sqlite.scan_goals", err)
		}
		snap.Goals = append(snap.Goals, g)
	}
	if err := goalRows.Err(); err != nil {
		return snap, remote.Unavailable("sqlite.load_goals", err)
	}

	return snap, nil
}

func (s *Store) InsertTransaction(ctx context.Context, user auth.UserID, tx core.Transaction) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, date, type, amount_cents, description, category)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.ID.String(), string(user), tx.Date.String(), string(tx.Type),
		tx.Amount.Cents, tx.Description, tx.Category)
	if err != nil {
		return remote.Unavailable("sqlite.insert_transaction", err)
	}

	slog.DebugContext(ctx, "Transaction persisted",
		"id", tx.ID, "user", user, "type", tx.Type, "amount_cents", tx.Amount.Cents)
	return nil
}

func (s *Store) UpdateTransaction(ctx context.Context, user auth.UserID, tx core.Transaction) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions
		 SET date = ?, type = ?, amount_cents = ?, description = ?, category = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		tx.Date.String(), string(tx.Type), tx.Amount.Cents, tx.Description, tx.Category,
		tx.ID.String(), string(user))
	if err != nil {
		return remote.Unavailable("sqlite.update_transaction", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &core.NotFoundError{Kind: "transaction", ID: tx.ID.String()}
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, user auth.UserID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`,
		id.String(), string(user))
	if err != nil {
		return remote.Unavailable("sqlite.delete_transaction", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &core.NotFoundError{Kind: "transaction", ID: id.String()}
	}
	return nil
}

func (s *Store) UpsertGoals(ctx context.Context, user auth.UserID, goals core.AnnualGoals) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO goals (user_id, year, expected_profit_cents, monthly_budget_cents,
		                    emergency_reserve_cents, planned_investments_cents)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, year) DO UPDATE SET
		     expected_profit_cents = excluded.expected_profit_cents,
		     monthly_budget_cents = excluded.monthly_budget_cents,
		     emergency_reserve_cents = excluded.emergency_reserve_cents,
		     planned_investments_cents = excluded.planned_investments_cents,
		     updated_at = CURRENT_TIMESTAMP`,
		string(user), goals.Year, goals.ExpectedProfit.Cents, goals.MonthlyBudget.Cents,
		goals.EmergencyReserve.Cents, goals.PlannedInvestments.Cents)
	if err != nil {
		return remote.Unavailable("sqlite.upsert_goals", err)
	}

	slog.DebugContext(ctx, "Goals persisted", "user", user, "year", goals.Year)
	return nil
}
