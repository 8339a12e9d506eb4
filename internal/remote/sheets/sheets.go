// Package sheets persists per-user collections in a Google Spreadsheet.
// One tab holds transactions, one holds goals; every row carries the user id
// so a single spreadsheet serves all users.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/remote"
)

const (
	defaultTransactionsSheet = "Transactions"
	defaultGoalsSheet        = "Goals"
)

// Transactions tab layout: A=id B=user C=date D=type E=amount F=description G=category.
// Goals tab layout: A=user B=year C=expected profit D=monthly budget E=emergency reserve F=planned investments.

type Store struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	goalsSheet        string

	mu       sync.Mutex
	sheetIDs map[string]int64
}

var (
	_ remote.Store  = (*Store)(nil)
	_ remote.Closer = (*Store)(nil)
)

// NewFromEnv creates a sheets-backed store from environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Store, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	transactionsSheet := strings.TrimSpace(os.Getenv("GOOGLE_TRANSACTIONS_SHEET_NAME"))
	if transactionsSheet == "" {
		transactionsSheet = defaultTransactionsSheet
	}
	goalsSheet := strings.TrimSpace(os.Getenv("GOOGLE_GOALS_SHEET_NAME"))
	if goalsSheet == "" {
		goalsSheet = defaultGoalsSheet
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Store{
		svc:               svc,
		spreadsheetID:     spreadsheetID,
		transactionsSheet: transactionsSheet,
		goalsSheet:        goalsSheet,
		sheetIDs:          make(map[string]int64),
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (s *Store) Close() error { return nil }

func (s *Store) LoadAll(ctx context.Context, user auth.UserID) (core.Snapshot, error) {
	var snap core.Snapshot

	txRows, err := s.readRows(ctx, s.transactionsSheet, "A:G")
	if err != nil {
		return snap, remote.Unavailable("sheets.load_transactions", err)
	}
	for _, cols := range txRows {
		if len(cols) < 5 || cols[1] != string(user) {
			continue
		}
		tx, ok := parseTransactionRow(ctx, cols)
		if !ok {
			continue
		}
		snap.Transactions = append(snap.Transactions, tx)
	}

	goalRows, err := s.readRows(ctx, s.goalsSheet, "A:F")
	if err != nil {
		return snap, remote.Unavailable("sheets.load_goals", err)
	}
	for _, cols := range goalRows {
		if len(cols) < 6 || cols[0] != string(user) {
			continue
		}
		g, ok := parseGoalsRow(cols)
		if !ok {
			continue
		}
		snap.Goals = append(snap.Goals, g)
	}

	return snap, nil
}

func (s *Store) InsertTransaction(ctx context.Context, user auth.UserID, tx core.Transaction) error {
	vr := &gsheet.ValueRange{Values: [][]any{transactionRow(user, tx)}}
	rng := fmt.Sprintf("%s!A:G", s.transactionsSheet)
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return remote.Unavailable("sheets.insert_transaction", err)
	}
	return nil
}

func (s *Store) UpdateTransaction(ctx context.Context, user auth.UserID, tx core.Transaction) error {
	row, err := s.findTransactionRow(ctx, user, tx.ID)
	if err != nil {
		return err
	}
	rng := fmt.Sprintf("%s!A%d:G%d", s.transactionsSheet, row, row)
	vr := &gsheet.ValueRange{Values: [][]any{transactionRow(user, tx)}}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return remote.Unavailable("sheets.update_transaction", err)
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, user auth.UserID, id uuid.UUID) error {
	row, err := s.findTransactionRow(ctx, user, id)
	if err != nil {
		return err
	}
	sheetID, err := s.sheetID(ctx, s.transactionsSheet)
	if err != nil {
		return remote.Unavailable("sheets.delete_transaction", err)
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
				},
			},
		}},
	}
	_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return remote.Unavailable("sheets.delete_transaction", err)
	}
	return nil
}

func (s *Store) UpsertGoals(ctx context.Context, user auth.UserID, goals core.AnnualGoals) error {
	rows, err := s.readRows(ctx, s.goalsSheet, "A:F")
	if err != nil {
		return remote.Unavailable("sheets.upsert_goals", err)
	}

	values := []any{
		string(user), goals.Year,
		goals.ExpectedProfit.String(), goals.MonthlyBudget.String(),
		goals.EmergencyReserve.String(), goals.PlannedInvestments.String(),
	}

	for i, cols := range rows {
		if len(cols) < 2 || cols[0] != string(user) {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(cols[1]))
		if err != nil || year != goals.Year {
			continue
		}
		rng := fmt.Sprintf("%s!A%d:F%d", s.goalsSheet, i+1, i+1)
		vr := &gsheet.ValueRange{Values: [][]any{values}}
		_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return remote.Unavailable("sheets.upsert_goals", err)
		}
		return nil
	}

	rng := fmt.Sprintf("%s!A:F", s.goalsSheet)
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	_, err = s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return remote.Unavailable("sheets.upsert_goals", err)
	}
	return nil
}

// findTransactionRow returns the 1-based row of the transaction, or a
// NotFoundError when the id is absent for this user.
func (s *Store) findTransactionRow(ctx context.Context, user auth.UserID, id uuid.UUID) (int, error) {
	rows, err := s.readRows(ctx, s.transactionsSheet, "A:B")
	if err != nil {
		return 0, remote.Unavailable("sheets.find_transaction", err)
	}
	want := id.String()
	for i, cols := range rows {
		if len(cols) >= 2 && cols[0] == want && cols[1] == string(user) {
			return i + 1, nil
		}
	}
	return 0, &core.NotFoundError{Kind: "transaction", ID: want}
}

func (s *Store) readRows(ctx context.Context, sheetName, cols string) ([][]string, error) {
	rng := fmt.Sprintf("%s!%s", sheetName, cols)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	out := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = strings.TrimSpace(fmt.Sprint(v))
		}
		out[i] = cells
	}
	return out, nil
}

// sheetID resolves and caches the numeric id behind a tab name.
func (s *Store) sheetID(ctx context.Context, sheetName string) (int64, error) {
	s.mu.Lock()
	id, ok := s.sheetIDs[sheetName]
	s.mu.Unlock()
	if ok {
		return id, nil
	}

	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet metadata: %w", err)
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == sheetName {
			s.mu.Lock()
			s.sheetIDs[sheetName] = sh.Properties.SheetId
			s.mu.Unlock()
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", sheetName)
}

func transactionRow(user auth.UserID, tx core.Transaction) []any {
	return []any{
		tx.ID.String(), string(user), tx.Date.String(), string(tx.Type),
		tx.Amount.String(), tx.Description, tx.Category,
	}
}

func parseTransactionRow(ctx context.Context, cols []string) (core.Transaction, bool) {
	id, err := uuid.Parse(cols[0])
	if err != nil {
		return core.Transaction{}, false
	}
	date, err := core.ParseDate(cols[2])
	if err != nil {
		slog.WarnContext(ctx, "Skipping row with malformed date", "id", cols[0], "date", cols[2])
		return core.Transaction{}, false
	}
	amount, err := core.ParseMoney(cols[4])
	if err != nil {
		slog.WarnContext(ctx, "Skipping row with malformed amount", "id", cols[0], "amount", cols[4])
		return core.Transaction{}, false
	}

	tx := core.Transaction{
		ID:     id,
		Date:   date,
		Type:   core.TransactionType(cols[3]),
		Amount: amount,
	}
	if len(cols) > 5 {
		tx.Description = cols[5]
	}
	if len(cols) > 6 {
		tx.Category = cols[6]
	}
	return tx, true
}

func parseGoalsRow(cols []string) (core.AnnualGoals, bool) {
	year, err := strconv.Atoi(cols[1])
	if err != nil || year <= 0 {
		return core.AnnualGoals{}, false
	}
	g := core.AnnualGoals{Year: year}
	targets := []*core.Money{
		&g.ExpectedProfit, &g.MonthlyBudget, &g.EmergencyReserve, &g.PlannedInvestments,
	}
	for i, target := range targets {
		cell := cols[2+i]
		if cell == "" {
			continue
		}
		m, err := core.ParseMoney(cell)
		if err != nil {
			return core.AnnualGoals{}, false
		}
		*target = m
	}
	return g, true
}
