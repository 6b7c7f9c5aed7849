// Package ledger maintains the authoritative in-memory account balances for
// one processing cycle.
//
// The ledger is seeded from persisted accounts, mutated strictly in event
// order, and handed back to the store when the cycle persists. Accounts are
// materialized lazily at balance zero on first reference and never deleted.
package ledger

import (
	"math/big"

	"github.com/glmrscan/transfer-indexer/internal/model"
)

// Ledger maps account ids to their running balances.
type Ledger struct {
	accounts map[string]*model.Account
}

// New creates a ledger seeded with persisted accounts. The seed map may be
// nil or missing ids; absent accounts are created on first reference.
func New(seed map[string]*model.Account) *Ledger {
	accounts := make(map[string]*model.Account, len(seed))
	for id, a := range seed {
		accounts[id] = a
	}
	return &Ledger{accounts: accounts}
}

// Account returns the account for id, creating it at balance zero when it
// has not been seen in this cycle or in persisted state.
func (l *Ledger) Account(id string) *model.Account {
	if a, ok := l.accounts[id]; ok {
		return a
	}
	a := model.NewAccount(id)
	l.accounts[id] = a
	return a
}

// Apply applies one transfer: amount leaves from and arrives at to.
//
// The protocol-level amount is unsigned but applied as a signed delta; no
// clamping happens, so a balance can go negative when the feed delivers
// events out of causal order. A self-transfer nets to zero.
func (l *Ledger) Apply(from, to *model.Account, amount *big.Int) {
	from.Balance.Sub(from.Balance, amount)
	to.Balance.Add(to.Balance, amount)
}

// Accounts returns every account touched or seeded in this cycle.
func (l *Ledger) Accounts() []*model.Account {
	out := make([]*model.Account, 0, len(l.accounts))
	for _, a := range l.accounts {
		out = append(out, a)
	}
	return out
}

// Len returns the number of tracked accounts.
func (l *Ledger) Len() int {
	return len(l.accounts)
}
