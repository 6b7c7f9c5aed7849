// Package processor turns a batch of transfer events into the records the
// store persists: updated accounts, per-side balance snapshots, and
// price-enriched transfers.
//
// Events are applied strictly in delivery order. The output of a batch is
// deterministic for a given seed and event sequence; record ids derive from
// event ids, so reprocessing the same delivery produces the same rows.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/glmrscan/transfer-indexer/internal/ledger"
	"github.com/glmrscan/transfer-indexer/internal/model"
)

// PriceResolver resolves a calendar day to the asset's daily quote.
// *pricing.Resolver satisfies it.
type PriceResolver interface {
	Resolve(ctx context.Context, day model.Day) (decimal.Decimal, error)
}

// Result holds everything one batch produced, ready for a single atomic
// persist. Accounts carry final post-batch balances; Balances and Transfers
// are append-only rows in event order.
type Result struct {
	Accounts  []*model.Account
	Balances  []*model.HistoricalBalance
	Transfers []*model.Transfer
}

// Processor applies transfer batches against seeded account state.
type Processor struct {
	resolver    PriceResolver
	quotesBegin model.Day
	logger      *slog.Logger
}

// New creates a processor. Days before quotesBegin are priced at zero without
// consulting the resolver.
func New(resolver PriceResolver, quotesBegin model.Day, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		resolver:    resolver,
		quotesBegin: quotesBegin,
		logger:      logger,
	}
}

// ProcessBatch applies events in order on top of the seeded accounts and
// returns the accumulated records. It mutates the seeded accounts' balances.
//
// A resolver error aborts the batch with nothing partially produced for the
// caller to persist; the same events can be reprocessed from the same
// persisted seed.
func (p *Processor) ProcessBatch(ctx context.Context, events []model.TransferEvent, seed map[string]*model.Account) (*Result, error) {
	l := ledger.New(seed)

	res := &Result{
		Balances:  make([]*model.HistoricalBalance, 0, 2*len(events)),
		Transfers: make([]*model.Transfer, 0, len(events)),
	}

	for _, e := range events {
		from := l.Account(e.From)
		to := l.Account(e.To)
		l.Apply(from, to, e.Amount)

		at := e.Time()

		// Snapshots copy the balance; the ledger keeps mutating the
		// account's big.Int across later events.
		res.Balances = append(res.Balances,
			&model.HistoricalBalance{
				ID:        e.ID + model.SuffixFrom,
				AccountID: from.ID,
				Balance:   new(big.Int).Set(from.Balance),
				Date:      at,
			},
			&model.HistoricalBalance{
				ID:        e.ID + model.SuffixTo,
				AccountID: to.ID,
				Balance:   new(big.Int).Set(to.Balance),
				Date:      at,
			},
		)

		price, err := p.price(ctx, e.Day())
		if err != nil {
			return nil, fmt.Errorf("price transfer %s: %w", e.ID, err)
		}

		res.Transfers = append(res.Transfers, &model.Transfer{
			ID:     e.ID + model.SuffixTransfer,
			FromID: from.ID,
			ToID:   to.ID,
			Amount: e.Amount,
			Date:   at,
			Price:  price,
		})
	}

	res.Accounts = l.Accounts()
	return res, nil
}

// price returns the daily quote for day. Days before the quote cutoff are
// zero-priced locally; the resolver never sees them.
func (p *Processor) price(ctx context.Context, day model.Day) (decimal.Decimal, error) {
	if day.Before(p.quotesBegin) {
		return decimal.Zero, nil
	}
	return p.resolver.Resolve(ctx, day)
}
