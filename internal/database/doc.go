// Package database provides PostgreSQL connection pool management.
//
// One pool serves all three tables (accounts, historical_balances,
// transfers); the schema lives in schema/schema.sql.
package database
