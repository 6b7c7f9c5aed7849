// Package model defines shared data types used across the transfer indexer.
//
// All persisted types mirror the database schema in schema/schema.sql.
//
// Conventions:
//   - Balances and amounts: *big.Int (signed, raw on-chain units)
//   - Prices: decimal.Decimal (decimal.Zero = no quote known for the date)
//   - Event timestamps: int64 milliseconds since Unix epoch
//   - Record IDs: event id plus a side suffix ("-from", "-to", "-transfer")
package model
