// Package coordinator runs processing cycles: it loads the accounts a batch
// touches, hands the batch to the processor, and commits the result.
//
// A cycle either commits completely or leaves persisted state untouched, so
// a crashed or failed cycle is retried from the same seed.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/glmrscan/transfer-indexer/internal/metrics"
	"github.com/glmrscan/transfer-indexer/internal/model"
	"github.com/glmrscan/transfer-indexer/internal/processor"
)

// Store is the persistence surface a cycle needs. *store.Store satisfies it.
type Store interface {
	LoadAccounts(ctx context.Context, ids []string) (map[string]*model.Account, error)
	PersistBatch(ctx context.Context, accounts []*model.Account, balances []*model.HistoricalBalance, transfers []*model.Transfer) error
}

// BatchProcessor transforms events into persistable records.
// *processor.Processor satisfies it.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, events []model.TransferEvent, seed map[string]*model.Account) (*processor.Result, error)
}

// Coordinator drives load-process-persist cycles.
type Coordinator struct {
	store  Store
	proc   BatchProcessor
	logger *slog.Logger
}

// New creates a coordinator.
func New(store Store, proc BatchProcessor, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{store: store, proc: proc, logger: logger}
}

// RunCycle processes one delivery end to end. An empty delivery is a no-op.
func (c *Coordinator) RunCycle(ctx context.Context, events []model.TransferEvent) error {
	if len(events) == 0 {
		return nil
	}

	cycleID := uuid.NewString()
	logger := c.logger.With("cycle_id", cycleID)
	start := time.Now()

	seed, err := c.store.LoadAccounts(ctx, touchedAccounts(events))
	if err != nil {
		metrics.CyclesFailed.Inc()
		return fmt.Errorf("cycle %s: %w", cycleID, err)
	}

	res, err := c.proc.ProcessBatch(ctx, events, seed)
	if err != nil {
		metrics.CyclesFailed.Inc()
		return fmt.Errorf("cycle %s: %w", cycleID, err)
	}

	if err := c.store.PersistBatch(ctx, res.Accounts, res.Balances, res.Transfers); err != nil {
		metrics.CyclesFailed.Inc()
		return fmt.Errorf("cycle %s: %w", cycleID, err)
	}

	elapsed := time.Since(start)
	metrics.CyclesCommitted.Inc()
	metrics.CycleDuration.Observe(elapsed.Seconds())
	metrics.TransfersIndexed.Add(float64(len(res.Transfers)))

	logger.Info("cycle committed",
		"events", len(events),
		"accounts", len(res.Accounts),
		"transfers", len(res.Transfers),
		"duration", elapsed,
	)
	return nil
}

// touchedAccounts returns the distinct account ids a delivery references.
func touchedAccounts(events []model.TransferEvent) []string {
	seen := make(map[string]struct{}, 2*len(events))
	ids := make([]string, 0, 2*len(events))
	for _, e := range events {
		for _, id := range []string{e.From, e.To} {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
