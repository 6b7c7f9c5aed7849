// Package store persists indexer state to postgres.
//
// One processing cycle commits in a single transaction: account balances are
// upserted, then balance snapshots and enriched transfers are appended. A
// failed cycle rolls back completely, so retrying it cannot collide with its
// own rows. The append-only tables keep their plain primary-key constraint:
// a duplicate id means an already-committed batch was fed in again, and that
// surfaces as a failed transaction rather than a silent skip.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glmrscan/transfer-indexer/internal/model"
)

// Store reads and writes indexer state through a shared connection pool.
type Store struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// New creates a store over the given pool.
func New(db *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// LoadAccounts fetches the persisted accounts for the given ids. Unknown ids
// are simply absent from the result; the caller materializes them at zero.
func (s *Store) LoadAccounts(ctx context.Context, ids []string) (map[string]*model.Account, error) {
	if len(ids) == 0 {
		return map[string]*model.Account{}, nil
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, balance FROM accounts WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]*model.Account, len(ids))
	for rows.Next() {
		var (
			id      string
			balance pgtype.Numeric
		)
		if err := rows.Scan(&id, &balance); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		v, err := bigFromNumeric(balance)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", id, err)
		}
		accounts[id] = &model.Account{ID: id, Balance: v}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	return accounts, nil
}

// PersistBatch commits one cycle's output atomically: accounts first so the
// snapshot and transfer foreign keys resolve, then balance history, then
// transfers.
func (s *Store) PersistBatch(ctx context.Context, accounts []*model.Account, balances []*model.HistoricalBalance, transfers []*model.Transfer) error {
	start := time.Now()

	batch := &pgx.Batch{}
	for _, a := range accounts {
		batch.Queue(`
			INSERT INTO accounts (id, balance)
			VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET balance = EXCLUDED.balance
		`, a.ID, numericFromBig(a.Balance))
	}
	for _, b := range balances {
		batch.Queue(`
			INSERT INTO historical_balances (id, account_id, balance, date)
			VALUES ($1, $2, $3, $4)
		`, b.ID, b.AccountID, numericFromBig(b.Balance), b.Date)
	}
	for _, t := range transfers {
		batch.Queue(`
			INSERT INTO transfers (id, from_id, to_id, amount, date, price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, t.ID, t.FromID, t.ToID, numericFromBig(t.Amount), t.Date, numericFromDecimal(t.Price))
	}

	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("statement %d: %w", i, err)
			}
		}
		return results.Close()
	})
	if err != nil {
		return fmt.Errorf("persist batch: %w", err)
	}

	s.logger.Debug("batch persisted",
		"accounts", len(accounts),
		"balances", len(balances),
		"transfers", len(transfers),
		"duration", time.Since(start),
	)
	return nil
}
