package model

import (
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Record ID suffixes derived from the source event id. Reprocessing the same
// event produces the same ids, so record identity is deterministic.
const (
	SuffixFrom     = "-from"
	SuffixTo       = "-to"
	SuffixTransfer = "-transfer"
)

// -----------------------------------------------------------------------------
// Persisted Types
// -----------------------------------------------------------------------------

// Account holds the running balance for a ledger address.
//
// Balance is the signed sum of every transfer effect applied to this id.
// It may go negative when the feed delivers events out of causal order;
// that signals an upstream inconsistency, not a ledger fault.
type Account struct {
	ID      string   // Primary key (opaque address)
	Balance *big.Int // Signed running balance, raw on-chain units
}

// NewAccount returns an account with a zero balance.
func NewAccount(id string) *Account {
	return &Account{ID: id, Balance: new(big.Int)}
}

// HistoricalBalance is an immutable snapshot of one account's balance taken
// strictly after a single transfer's effect. Two are produced per transfer,
// one per side. Append-only.
type HistoricalBalance struct {
	ID        string    // Primary key: "<event-id>-from" or "<event-id>-to"
	AccountID string    // Foreign key to Account
	Balance   *big.Int  // Post-transfer balance (copied, not aliased)
	Date      time.Time // Transfer timestamp
}

// Transfer is a ledger transfer enriched with the asset's market price on the
// transfer's date. Immutable once created. Append-only.
type Transfer struct {
	ID     string          // Primary key: "<event-id>-transfer"
	FromID string          // Foreign key to Account (debit side)
	ToID   string          // Foreign key to Account (credit side)
	Amount *big.Int        // Transferred amount, raw on-chain units
	Date   time.Time       // Transfer timestamp
	Price  decimal.Decimal // Daily quote; decimal.Zero when no quote exists
}

// -----------------------------------------------------------------------------
// Feed Types
// -----------------------------------------------------------------------------

// TransferEvent is one decoded transfer from the inbound feed. Not persisted.
// Addresses are opaque stable identifiers; the feed owns decoding.
type TransferEvent struct {
	ID        string   // Event id, unique within a delivery
	From      string   // Debit address
	To        string   // Credit address
	Amount    *big.Int // Unsigned at the protocol level
	Timestamp int64    // Milliseconds since Unix epoch
}

// Time returns the event timestamp as UTC time.
func (e TransferEvent) Time() time.Time {
	return time.UnixMilli(e.Timestamp).UTC()
}

// Day returns the calendar day of the event, the key for price lookups.
func (e TransferEvent) Day() Day {
	return DayOfMillis(e.Timestamp)
}

// ParseAmount parses a base-10 amount string into a big.Int. Amounts on the
// wire are unsigned decimal strings; values beyond 64 bits are routine.
func ParseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %q", s)
	}
	return v, nil
}
